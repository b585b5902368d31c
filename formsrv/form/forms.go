package form

import (
	"sort"
	"strings"
	"time"
)

// Form is the top level type for a merchant's form definition.  The fields of
// a form are stored separately (see Field) and are ordered by their
// OrderIndex.
type Form struct {
	// ID of the form (UUID).
	ID string `xorm:"pk"`
	// MerchantID is the ID of the user who owns the form.
	MerchantID string `xorm:"index"`
	// The Title appears at the top of the submission page and in the HTML
	// title.  Must not be empty for a published form.
	Title string
	// The Description appears under the Title on the submission page.
	Description string
	// Only published forms accept submissions.
	IsPublished bool
	// Time when the form was created.
	CreatedAt time.Time
	// Time when the form details or fields were last saved.
	UpdatedAt time.Time
}

// TableName returns the name of the table that stores forms.
func (Form) TableName() string {
	return "forms"
}

// Field represents a single form field.
type Field struct {
	// ID of the field (UUID).  A new ID is assigned every time the field is
	// inserted.
	ID string `xorm:"pk"`
	// FormID is the ID of the form the field belongs to.
	FormID string `xorm:"index"`
	// Type of the field.  Determines how the field is rendered and validated.
	Type FieldType `xorm:"'field_type'"`
	// The Label of the field as it appears on the rendered form and as the
	// column header in exports.  Must not be empty.
	Label string
	// An optional placeholder for the input.
	Placeholder string
	// Whether the field must be filled in by the submitter.
	Required bool
	// Options holds the choices for select, radio, and checkbox fields in the
	// order they are shown.  It is nil for every other type.
	Options []string
	// Position of the field in the form, starting at 0.
	OrderIndex int
}

// TableName returns the name of the table that stores form fields.
func (Field) TableName() string {
	return "form_fields"
}

// Spec returns the type specification for the field's type.  Unknown types
// fall back to text.
func (f Field) Spec() TypeSpec {
	if spec, ok := Lookup(f.Type); ok {
		return spec
	}
	spec, _ := Lookup(Text)
	return spec
}

// HasOption reports whether opt is one of the field's options.
func (f Field) HasOption(opt string) bool {
	for _, o := range f.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// SortFields sorts fields by their OrderIndex, keeping the relative order of
// fields with equal indices.
func SortFields(fields []Field) {
	sort.SliceStable(fields, func(i, j int) bool {
		return fields[i].OrderIndex < fields[j].OrderIndex
	})
}

// ParseOptions splits an option list entered one per line.  Blank lines are
// dropped.
func ParseOptions(text string) []string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	opts := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		opts = append(opts, line)
	}
	return opts
}
