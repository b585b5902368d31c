package db

import (
	"context"
	"fmt"
	"time"

	"github.com/G-Node/formsrv/formsrv/form"
)

// FormSummary is a form together with the number of its submissions, as
// listed on the merchant dashboard.
type FormSummary struct {
	form.Form
	Submissions int64
}

// InsertForm inserts a new form.  The fields are inserted separately.
func (conn *Connection) InsertForm(ctx context.Context, f *form.Form) error {
	_, err := conn.engine.Context(ctx).Insert(f)
	return err
}

// UpdateForm writes the title, description and modification time of an
// existing form.
func (conn *Connection) UpdateForm(ctx context.Context, f *form.Form) error {
	n, err := conn.engine.Context(ctx).ID(f.ID).Cols("title", "description", "updated_at").Update(f)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetForm retrieves a form given its ID.
func (conn *Connection) GetForm(ctx context.Context, id string) (*form.Form, error) {
	f := new(form.Form)
	if err := found(conn.engine.Context(ctx).ID(id).Get(f)); err != nil {
		return nil, err
	}
	return f, nil
}

// GetMerchantForm retrieves a form given its ID if it is owned by the given
// merchant.  ErrNotFound is returned for forms of other merchants.
func (conn *Connection) GetMerchantForm(ctx context.Context, id, merchantID string) (*form.Form, error) {
	f := new(form.Form)
	if err := found(conn.engine.Context(ctx).ID(id).Where("merchant_id = ?", merchantID).Get(f)); err != nil {
		return nil, err
	}
	return f, nil
}

// SetPublished sets the published flag of a form.
func (conn *Connection) SetPublished(ctx context.Context, id string, published bool) error {
	update := &form.Form{IsPublished: published, UpdatedAt: time.Now()}
	n, err := conn.engine.Context(ctx).ID(id).Cols("is_published", "updated_at").Update(update)
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteForm deletes a form.  Its fields, submissions and answers are
// removed by the store's cascade rules.
func (conn *Connection) DeleteForm(ctx context.Context, id string) error {
	n, err := conn.engine.Context(ctx).ID(id).Delete(new(form.Form))
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

type formCount struct {
	FormID string
	N      int64
}

// MerchantForms returns the forms of a merchant, most recently created
// first, with their submission counts.
func (conn *Connection) MerchantForms(ctx context.Context, merchantID string) ([]FormSummary, error) {
	forms := make([]form.Form, 0)
	err := conn.engine.Context(ctx).Where("merchant_id = ?", merchantID).Desc("created_at").Find(&forms)
	if err != nil {
		return nil, err
	}

	counts := make([]formCount, 0)
	err = conn.engine.Context(ctx).SQL(`SELECT s.form_id AS form_id, COUNT(*) AS n
		FROM submissions s JOIN forms f ON f.id = s.form_id
		WHERE f.merchant_id = ?
		GROUP BY s.form_id`, merchantID).Find(&counts)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	byForm := make(map[string]int64, len(counts))
	for _, c := range counts {
		byForm[c.FormID] = c.N
	}

	summaries := make([]FormSummary, len(forms))
	for idx, f := range forms {
		summaries[idx] = FormSummary{Form: f, Submissions: byForm[f.ID]}
	}
	return summaries, nil
}

// FormFields returns the fields of a form ordered by their order index.
func (conn *Connection) FormFields(ctx context.Context, formID string) ([]form.Field, error) {
	fields := make([]form.Field, 0)
	err := conn.engine.Context(ctx).Where("form_id = ?", formID).Asc("order_index").Find(&fields)
	if err != nil {
		return nil, err
	}
	return fields, nil
}

// DeleteFields deletes all fields of a form.
func (conn *Connection) DeleteFields(ctx context.Context, formID string) error {
	_, err := conn.engine.Context(ctx).Where("form_id = ?", formID).Delete(new(form.Field))
	return err
}

// InsertFields inserts the given fields.
func (conn *Connection) InsertFields(ctx context.Context, fields []form.Field) error {
	if len(fields) == 0 {
		return nil
	}
	_, err := conn.engine.Context(ctx).Insert(&fields)
	return err
}

var fieldCols = []string{"field_type", "label", "placeholder", "required", "options", "order_index"}

// SyncFields makes the stored fields of a form equal to the given fields in
// one transaction.  Stored fields whose ID is in the list are updated in
// place, the others are deleted, and fields with IDs that are not stored yet
// are inserted.
func (conn *Connection) SyncFields(ctx context.Context, formID string, fields []form.Field) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	sess.Context(ctx)
	if err := sess.Begin(); err != nil {
		return err
	}

	stored := make([]form.Field, 0)
	if err := sess.Where("form_id = ?", formID).Find(&stored); err != nil {
		sess.Rollback()
		return err
	}
	keep := make(map[string]bool, len(fields))
	for _, f := range fields {
		keep[f.ID] = true
	}
	existing := make(map[string]bool, len(stored))
	for _, f := range stored {
		if keep[f.ID] {
			existing[f.ID] = true
			continue
		}
		if _, err := sess.ID(f.ID).Delete(new(form.Field)); err != nil {
			sess.Rollback()
			return fmt.Errorf("delete field %s: %w", f.ID, err)
		}
	}

	for idx := range fields {
		f := &fields[idx]
		f.FormID = formID
		var err error
		if existing[f.ID] {
			_, err = sess.ID(f.ID).Cols(fieldCols...).Update(f)
		} else {
			_, err = sess.Insert(f)
		}
		if err != nil {
			sess.Rollback()
			return fmt.Errorf("write field %s: %w", f.ID, err)
		}
	}
	return sess.Commit()
}
