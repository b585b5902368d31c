// Package report builds the per-form submissions report and its CSV export.
package report

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Answer is one recorded value together with the label of the field it
// answers.
type Answer struct {
	Label string
	Value string
}

// Submission is a submission as it appears in the report.
type Submission struct {
	ID          string
	SubmittedAt time.Time
	// HasAccount is set when the submission was made by a signed in user.
	HasAccount bool
	FullName   string
	Email      string
	Answers    []Answer
}

// SubmitterName returns the name to show for the submitter: the full name,
// else the email address, else "Anonymous".
func (s Submission) SubmitterName() string {
	switch {
	case s.FullName != "":
		return s.FullName
	case s.Email != "":
		return s.Email
	default:
		return "Anonymous"
	}
}

// IsGuest reports whether the submitter has an account without a full name.
func (s Submission) IsGuest() bool {
	return s.HasAccount && s.FullName == ""
}

// Lookup returns the value answered under the given label, and whether there
// is one.
func (s Submission) Lookup(label string) (string, bool) {
	for _, a := range s.Answers {
		if a.Label == label {
			return a.Value, true
		}
	}
	return "", false
}

// Columns returns the distinct answer labels over all submissions, in the
// order they are first encountered.
func Columns(subs []Submission) []string {
	seen := make(map[string]bool)
	labels := make([]string, 0)
	for _, s := range subs {
		for _, a := range s.Answers {
			if seen[a.Label] {
				continue
			}
			seen[a.Label] = true
			labels = append(labels, a.Label)
		}
	}
	return labels
}

const previewLen = 50

// PreviewCount is the number of answers shown for each submission in the
// submission listing.
const PreviewCount = 3

// Preview returns the first n answers with long values shortened, and a
// note for the number of answers left out ("" if none).
func Preview(answers []Answer, n int) ([]Answer, string) {
	if n > len(answers) {
		n = len(answers)
	}
	short := make([]Answer, n)
	for idx := 0; idx < n; idx++ {
		short[idx] = Answer{Label: answers[idx].Label, Value: truncate(answers[idx].Value, previewLen)}
	}
	more := ""
	if rest := len(answers) - n; rest == 1 {
		more = "+1 more field"
	} else if rest > 1 {
		more = fmt.Sprintf("+%d more fields", rest)
	}
	return short, more
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
