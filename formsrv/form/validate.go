package form

import (
	"fmt"
	"sort"
	"strings"
)

// Value holds the input for a single field.  Single-value types use Text;
// checkbox fields use Selected, in the order the options were selected.
type Value struct {
	Text     string
	Selected []string
}

// IsEmpty reports whether the value counts as missing for a field of the
// given spec.
func (v Value) IsEmpty(spec TypeSpec) bool {
	if spec.Multi {
		return len(v.Selected) == 0
	}
	return strings.TrimSpace(v.Text) == ""
}

// Errors maps field IDs to a human readable error message.
type Errors map[string]string

// Has reports whether there is an error for the given field.
func (e Errors) Has(fieldID string) bool {
	return e[fieldID] != ""
}

// Error lists the messages sorted by field ID, so that Errors can be returned
// as an error.
func (e Errors) Error() string {
	ids := make([]string, 0, len(e))
	for id := range e {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	msgs := make([]string, len(ids))
	for idx, id := range ids {
		msgs[idx] = e[id]
	}
	return strings.Join(msgs, "; ")
}

// Validate checks each value against the rules of its field and returns the
// messages for all fields that failed.  Fields are checked independently.
// The returned map is empty (not nil) when all values are acceptable.
func Validate(fields []Field, values map[string]Value) Errors {
	errs := make(Errors)
	for _, f := range fields {
		if msg := Check(f, values[f.ID]); msg != "" {
			errs[f.ID] = msg
		}
	}
	return errs
}

// Check runs the rules of a single field against a value and returns an
// error message, or "" if the value is acceptable.
func Check(f Field, v Value) string {
	spec := f.Spec()
	msg := ""
	if f.Required && v.IsEmpty(spec) {
		msg = fmt.Sprintf("%s is required", f.Label)
	}
	// The type rule sees the raw text, so whitespace-only input still fails
	// an email check and replaces the required message.
	if spec.extra != nil && !spec.Multi && v.Text != "" {
		if extraMsg := spec.extra(v); extraMsg != "" {
			msg = extraMsg
		}
	}
	return msg
}
