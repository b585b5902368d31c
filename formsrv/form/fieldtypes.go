package form

import (
	"fmt"
	"regexp"
	"strings"
)

const (
	Text     FieldType = "text"
	Email    FieldType = "email"
	Number   FieldType = "number"
	TextArea FieldType = "textarea"
	Select   FieldType = "select"
	Checkbox FieldType = "checkbox"
	Radio    FieldType = "radio"
	Date     FieldType = "date"
)

// FieldType defines the type of a form field.  The set of types is fixed;
// each one has an entry in the type table that defines how it is rendered
// and validated.
type FieldType string

// TypeSpec describes how fields of one type are rendered and checked.
type TypeSpec struct {
	// Type is the field type the spec belongs to.
	Type FieldType
	// Title is the human readable name shown in the builder's type selector.
	Title string
	// Input is the HTML element used to render the field: an input type
	// (text, email, number, date), or one of textarea, select, radio,
	// checkbox.
	Input string
	// Choice types take their values from the field's Options.
	Choice bool
	// Multi types accept more than one selected option.
	Multi bool

	// extra runs after the required check for a value that is not empty and
	// returns an error message, or "" if the value is acceptable.
	extra func(v Value) string
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Messages used by the validation rules.
const (
	msgInvalidEmail = "Please enter a valid email address"
)

// typeTable is the single dispatch table for field types.  The order of the
// entries is the order in which types are offered in the builder.
var typeTable = []TypeSpec{
	{Type: Text, Title: "Text", Input: "text"},
	{Type: Email, Title: "Email", Input: "email", extra: checkEmail},
	{Type: Number, Title: "Number", Input: "number"},
	{Type: TextArea, Title: "Text Area", Input: "textarea"},
	{Type: Select, Title: "Dropdown", Input: "select", Choice: true},
	{Type: Checkbox, Title: "Checkbox", Input: "checkbox", Choice: true, Multi: true},
	{Type: Radio, Title: "Radio Buttons", Input: "radio", Choice: true},
	{Type: Date, Title: "Date", Input: "date"},
}

var typeIndex = func() map[FieldType]TypeSpec {
	idx := make(map[FieldType]TypeSpec, len(typeTable))
	for _, spec := range typeTable {
		idx[spec.Type] = spec
	}
	return idx
}()

// Types returns the specs of all field types in builder order.
func Types() []TypeSpec {
	specs := make([]TypeSpec, len(typeTable))
	copy(specs, typeTable)
	return specs
}

// Lookup returns the spec for the given field type.
func Lookup(t FieldType) (TypeSpec, bool) {
	spec, ok := typeIndex[t]
	return spec, ok
}

// ParseFieldType returns the FieldType with the given name.
func ParseFieldType(name string) (FieldType, error) {
	t := FieldType(strings.TrimSpace(name))
	if _, ok := typeIndex[t]; !ok {
		return "", fmt.Errorf("unknown field type %q", name)
	}
	return t, nil
}

func checkEmail(v Value) string {
	if !emailPattern.MatchString(v.Text) {
		return msgInvalidEmail
	}
	return ""
}
