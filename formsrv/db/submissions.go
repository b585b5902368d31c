package db

import (
	"context"
	"fmt"
	"time"

	"github.com/G-Node/formsrv/formsrv/report"
	"github.com/G-Node/formsrv/formsrv/submission"
)

// ClientSubmission is a submission of a client together with the title and
// description of the form, as listed on the client dashboard.
type ClientSubmission struct {
	ID              string
	FormID          string
	FormTitle       string
	FormDescription string
	SubmittedAt     time.Time
}

// CreateSubmission inserts a submission and its answers in one transaction.
func (conn *Connection) CreateSubmission(ctx context.Context, sub *submission.Submission, answers []submission.Answer) error {
	sess := conn.engine.NewSession()
	defer sess.Close()
	sess.Context(ctx)
	if err := sess.Begin(); err != nil {
		return err
	}
	if _, err := sess.Insert(sub); err != nil {
		sess.Rollback()
		return fmt.Errorf("insert submission: %w", err)
	}
	if len(answers) > 0 {
		if _, err := sess.Insert(&answers); err != nil {
			sess.Rollback()
			return fmt.Errorf("insert answers: %w", err)
		}
	}
	return sess.Commit()
}

// SubmissionAnswers returns the answers of a submission in the order they
// were recorded.
func (conn *Connection) SubmissionAnswers(ctx context.Context, submissionID string) ([]submission.Answer, error) {
	answers := make([]submission.Answer, 0)
	err := conn.engine.Context(ctx).SQL(`SELECT id, submission_id, field_id, value
		FROM submission_answers WHERE submission_id = ? ORDER BY rowid`, submissionID).Find(&answers)
	if err != nil {
		return nil, err
	}
	return answers, nil
}

// ClientSubmissions returns the submissions made by a client, most recent
// first.
func (conn *Connection) ClientSubmissions(ctx context.Context, clientID string) ([]ClientSubmission, error) {
	subs := make([]ClientSubmission, 0)
	err := conn.engine.Context(ctx).SQL(`SELECT s.id AS id, s.form_id AS form_id,
			f.title AS form_title, f.description AS form_description,
			s.submitted_at AS submitted_at
		FROM submissions s JOIN forms f ON f.id = s.form_id
		WHERE s.client_id = ?
		ORDER BY s.submitted_at DESC, s.rowid DESC`, clientID).Find(&subs)
	if err != nil {
		return nil, err
	}
	return subs, nil
}

type reportRow struct {
	ID          string
	SubmittedAt time.Time
	HasAccount  int
	FullName    string
	Email       string
}

type answerRow struct {
	SubmissionID string
	Label        string
	Value        string
	Linked       int
}

// ReportSubmissions returns the submissions of a form for the submissions
// report, most recent first.  Each submission carries its submitter and its
// answers labelled with the current label of the field.  Answers whose field
// no longer exists are left out; their number is returned as orphaned.
func (conn *Connection) ReportSubmissions(ctx context.Context, formID string) (subs []report.Submission, orphaned int, err error) {
	rows := make([]reportRow, 0)
	err = conn.engine.Context(ctx).SQL(`SELECT s.id AS id, s.submitted_at AS submitted_at,
			CASE WHEN u.id IS NULL THEN 0 ELSE 1 END AS has_account,
			COALESCE(u.full_name, '') AS full_name, COALESCE(u.email, '') AS email
		FROM submissions s LEFT JOIN users u ON u.id = s.client_id
		WHERE s.form_id = ?
		ORDER BY s.submitted_at DESC, s.rowid DESC`, formID).Find(&rows)
	if err != nil {
		return nil, 0, fmt.Errorf("load submissions: %w", err)
	}

	answers := make([]answerRow, 0)
	err = conn.engine.Context(ctx).SQL(`SELECT a.submission_id AS submission_id,
			COALESCE(f.label, '') AS label, a.value AS value,
			CASE WHEN f.id IS NULL THEN 0 ELSE 1 END AS linked
		FROM submission_answers a
		JOIN submissions s ON s.id = a.submission_id
		LEFT JOIN form_fields f ON f.id = a.field_id
		WHERE s.form_id = ?
		ORDER BY a.rowid`, formID).Find(&answers)
	if err != nil {
		return nil, 0, fmt.Errorf("load answers: %w", err)
	}

	bySub := make(map[string][]report.Answer, len(rows))
	for _, a := range answers {
		if a.Linked == 0 {
			orphaned++
			continue
		}
		bySub[a.SubmissionID] = append(bySub[a.SubmissionID], report.Answer{Label: a.Label, Value: a.Value})
	}

	subs = make([]report.Submission, len(rows))
	for idx, r := range rows {
		subs[idx] = report.Submission{
			ID:          r.ID,
			SubmittedAt: r.SubmittedAt,
			HasAccount:  r.HasAccount == 1,
			FullName:    r.FullName,
			Email:       r.Email,
			Answers:     bySub[r.ID],
		}
	}
	return subs, orphaned, nil
}
