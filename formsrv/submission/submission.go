// Package submission collects and validates input for a published form and
// records it as a submission with one answer per field.
package submission

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/G-Node/formsrv/formsrv/form"
	"github.com/google/uuid"
)

// Submission is one completed response to a form.
type Submission struct {
	ID     string `xorm:"pk"`
	FormID string `xorm:"index"`
	// ClientID is the ID of the signed in user who submitted the form, or ""
	// for an anonymous submission.
	ClientID    string `xorm:"index"`
	SubmittedAt time.Time
}

// TableName returns the name of the table that stores submissions.
func (Submission) TableName() string {
	return "submissions"
}

// Answer is the recorded value of one field within one submission.
type Answer struct {
	ID           string `xorm:"pk"`
	SubmissionID string `xorm:"index"`
	FieldID      string
	Value        string
}

// TableName returns the name of the table that stores answers.
func (Answer) TableName() string {
	return "submission_answers"
}

// Store persists a submission together with its answers.
type Store interface {
	CreateSubmission(ctx context.Context, sub *Submission, answers []Answer) error
}

// MultiSeparator joins the selected options of a checkbox field.
const MultiSeparator = ", "

// Answers returns one answer per field, in the order of the fields.  The
// answers have no IDs yet.
func Answers(fields []form.Field, values map[string]form.Value) []Answer {
	answers := make([]Answer, len(fields))
	for idx, f := range fields {
		v := values[f.ID]
		value := v.Text
		if f.Spec().Multi {
			value = strings.Join(v.Selected, MultiSeparator)
		}
		answers[idx] = Answer{FieldID: f.ID, Value: value}
	}
	return answers
}

// State of an Engine.
type State int

const (
	Editing State = iota
	Submitting
	Submitted
)

func (s State) String() string {
	switch s {
	case Editing:
		return "editing"
	case Submitting:
		return "submitting"
	case Submitted:
		return "submitted"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ErrNotEditing is returned when input or a submit is attempted while the
// engine is not in the Editing state.
var ErrNotEditing = errors.New("submission is not being edited")

// Engine holds the input for one submission of a form.
type Engine struct {
	form   form.Form
	fields []form.Field
	values map[string]form.Value
	errs   form.Errors
	state  State
}

// NewEngine returns an engine in the Editing state for the given form and
// fields.
func NewEngine(f form.Form, fields []form.Field) *Engine {
	sorted := make([]form.Field, len(fields))
	copy(sorted, fields)
	form.SortFields(sorted)
	return &Engine{
		form:   f,
		fields: sorted,
		values: make(map[string]form.Value),
		errs:   make(form.Errors),
	}
}

// Form returns the form the engine collects input for.
func (e *Engine) Form() form.Form {
	return e.form
}

// Fields returns the fields of the form in order.
func (e *Engine) Fields() []form.Field {
	return e.fields
}

// State returns the current state.
func (e *Engine) State() State {
	return e.state
}

// Errors returns the validation messages of the last submit attempt that
// have not been cleared by a change.
func (e *Engine) Errors() form.Errors {
	return e.errs
}

// Value returns the current input for a field.
func (e *Engine) Value(fieldID string) form.Value {
	return e.values[fieldID]
}

// SetText sets the text value of a field and clears its error.
func (e *Engine) SetText(fieldID, text string) error {
	if e.state != Editing {
		return ErrNotEditing
	}
	v := e.values[fieldID]
	v.Text = text
	e.values[fieldID] = v
	delete(e.errs, fieldID)
	return nil
}

// Toggle selects or deselects an option of a checkbox field and clears its
// error.  Selected options are kept in the order they were selected.
func (e *Engine) Toggle(fieldID, option string, on bool) error {
	if e.state != Editing {
		return ErrNotEditing
	}
	v := e.values[fieldID]
	selected := make([]string, 0, len(v.Selected)+1)
	for _, s := range v.Selected {
		if s != option {
			selected = append(selected, s)
		}
	}
	if on {
		selected = append(selected, option)
	}
	v.Selected = selected
	e.values[fieldID] = v
	delete(e.errs, fieldID)
	return nil
}

// Submit validates the input and, if it passes, records the submission in
// the store.  Validation failures keep the engine in the Editing state and
// are returned as form.Errors without calling the store.  A store failure
// returns the engine to Editing with the input kept.  On success the engine
// is Submitted and accepts no further input.  clientID may be empty.
func (e *Engine) Submit(ctx context.Context, store Store, clientID string) (*Submission, error) {
	if e.state != Editing {
		return nil, ErrNotEditing
	}
	e.errs = form.Validate(e.fields, e.values)
	if len(e.errs) > 0 {
		return nil, e.errs
	}

	e.state = Submitting
	sub := &Submission{
		ID:          uuid.New().String(),
		FormID:      e.form.ID,
		ClientID:    clientID,
		SubmittedAt: time.Now(),
	}
	answers := Answers(e.fields, e.values)
	for idx := range answers {
		answers[idx].ID = uuid.New().String()
		answers[idx].SubmissionID = sub.ID
	}
	if err := store.CreateSubmission(ctx, sub, answers); err != nil {
		e.state = Editing
		return nil, fmt.Errorf("store submission: %w", err)
	}
	e.state = Submitted
	return sub, nil
}
