// Package builder implements the editing state of the form builder: an
// ordered sequence of field configurations that is validated and persisted
// as a whole.
package builder

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/G-Node/formsrv/formsrv/form"
	"github.com/google/uuid"
)

// Direction for moving a field.
type Direction int

const (
	Up Direction = iota
	Down
)

// Policy decides how the fields of an existing form are written on save.
type Policy int

const (
	// Replace deletes all stored fields of the form and inserts the current
	// sequence with new IDs.
	Replace Policy = iota
	// Diff keeps the IDs of fields that are still present, deletes removed
	// fields and inserts new ones.
	Diff
)

// ParsePolicy returns the Policy with the given name ("replace" or "diff").
func ParsePolicy(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "replace":
		return Replace, nil
	case "diff":
		return Diff, nil
	}
	return Replace, fmt.Errorf("unknown field policy %q", name)
}

// Store is the persistence collaborator of the builder.  Every method is an
// independent write; the builder calls them in sequence and stops at the
// first failure.
type Store interface {
	InsertForm(ctx context.Context, f *form.Form) error
	UpdateForm(ctx context.Context, f *form.Form) error
	DeleteFields(ctx context.Context, formID string) error
	InsertFields(ctx context.Context, fields []form.Field) error
	SyncFields(ctx context.Context, formID string, fields []form.Field) error
}

// ValidationError is returned by Save when a precondition fails.  Message is
// shown to the user.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Builder holds the in-memory state of a form being created or edited.
type Builder struct {
	// FormID is empty for a form that has not been saved yet.
	FormID      string
	MerchantID  string
	Title       string
	Description string
	Fields      []form.Field
	Policy      Policy

	// published state and creation time of an existing form; kept so that
	// saving the details does not reset them.
	published bool
	created   time.Time
}

// New returns a builder for a new form owned by the given merchant.
func New(merchantID string) *Builder {
	return &Builder{MerchantID: merchantID, Fields: make([]form.Field, 0)}
}

// Edit returns a builder initialised with an existing form and its fields.
func Edit(f form.Form, fields []form.Field) *Builder {
	b := &Builder{
		FormID:      f.ID,
		MerchantID:  f.MerchantID,
		Title:       f.Title,
		Description: f.Description,
		Fields:      make([]form.Field, len(fields)),
		published:   f.IsPublished,
		created:     f.CreatedAt,
	}
	copy(b.Fields, fields)
	form.SortFields(b.Fields)
	return b
}

// IsNew reports whether the builder edits a form that has not been saved.
func (b *Builder) IsNew() bool {
	return b.FormID == ""
}

// Append adds an empty text field at the end of the sequence.
func (b *Builder) Append() {
	b.Fields = append(b.Fields, form.Field{
		Type:       form.Text,
		OrderIndex: len(b.Fields),
	})
}

// Remove deletes the field at the given position.  The order indices of the
// remaining fields are left as they are; Save writes positions.
func (b *Builder) Remove(idx int) error {
	if idx < 0 || idx >= len(b.Fields) {
		return fmt.Errorf("field index %d out of range", idx)
	}
	b.Fields = append(b.Fields[:idx], b.Fields[idx+1:]...)
	return nil
}

// Move swaps the field at the given position with its neighbour in the given
// direction and renumbers all fields by position.  Moving the first field up
// or the last field down does nothing.
func (b *Builder) Move(idx int, dir Direction) {
	target := idx - 1
	if dir == Down {
		target = idx + 1
	}
	if idx < 0 || idx >= len(b.Fields) || target < 0 || target >= len(b.Fields) {
		return
	}
	b.Fields[idx], b.Fields[target] = b.Fields[target], b.Fields[idx]
	b.renumber()
}

func (b *Builder) renumber() {
	for idx := range b.Fields {
		b.Fields[idx].OrderIndex = idx
	}
}

// Check returns a ValidationError if the builder state can't be saved.
func (b *Builder) Check() error {
	if strings.TrimSpace(b.Title) == "" {
		return &ValidationError{"Please enter a form title"}
	}
	if len(b.Fields) == 0 {
		return &ValidationError{"Please add at least one field"}
	}
	for _, f := range b.Fields {
		if strings.TrimSpace(f.Label) == "" {
			return &ValidationError{"Please provide labels for all fields"}
		}
	}
	for _, f := range b.Fields {
		if f.Spec().Choice && len(f.Options) == 0 {
			return &ValidationError{fmt.Sprintf("Please provide options for %s", f.Label)}
		}
	}
	return nil
}

// Save validates the builder state and writes it to the store.  Nothing is
// written if validation fails.  For a new form, the form is inserted first
// and its fields second.  For an existing form, the details are updated and
// the fields are written according to the builder's Policy.  The first
// failing write aborts the save; earlier writes are not undone.  The builder
// state is not changed by a failed save, so it can be retried.
func (b *Builder) Save(ctx context.Context, store Store) (*form.Form, error) {
	if err := b.Check(); err != nil {
		return nil, err
	}

	now := time.Now()
	f := &form.Form{
		ID:          b.FormID,
		MerchantID:  b.MerchantID,
		Title:       b.Title,
		Description: b.Description,
		IsPublished: b.published,
		CreatedAt:   b.created,
		UpdatedAt:   now,
	}

	if b.IsNew() {
		f.ID = uuid.New().String()
		f.CreatedAt = now
		if err := store.InsertForm(ctx, f); err != nil {
			return nil, fmt.Errorf("insert form: %w", err)
		}
		if err := store.InsertFields(ctx, b.rows(f.ID, false)); err != nil {
			return nil, fmt.Errorf("insert fields: %w", err)
		}
		b.FormID = f.ID
		b.created = f.CreatedAt
		return f, nil
	}

	if err := store.UpdateForm(ctx, f); err != nil {
		return nil, fmt.Errorf("update form: %w", err)
	}
	switch b.Policy {
	case Diff:
		if err := store.SyncFields(ctx, f.ID, b.rows(f.ID, true)); err != nil {
			return nil, fmt.Errorf("sync fields: %w", err)
		}
	default:
		if err := store.DeleteFields(ctx, f.ID); err != nil {
			return nil, fmt.Errorf("delete fields: %w", err)
		}
		if err := store.InsertFields(ctx, b.rows(f.ID, false)); err != nil {
			return nil, fmt.Errorf("insert fields: %w", err)
		}
	}
	return f, nil
}

// rows returns the fields to store for the form: order index set to the
// position, options only for choice types.  Field IDs are kept only if
// keepIDs is set; fields without an ID always get a new one.
func (b *Builder) rows(formID string, keepIDs bool) []form.Field {
	rows := make([]form.Field, len(b.Fields))
	for idx, f := range b.Fields {
		row := f
		row.FormID = formID
		row.OrderIndex = idx
		if !keepIDs || row.ID == "" {
			row.ID = uuid.New().String()
		}
		if row.Spec().Choice {
			row.Options = append([]string(nil), f.Options...)
		} else {
			row.Options = nil
		}
		rows[idx] = row
	}
	return rows
}
