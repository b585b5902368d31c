package report

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// TimeFormat is the layout used for submission timestamps in exports.
const TimeFormat = "1/2/2006, 3:04:05 PM"

// FileName returns the name of an export file created at the given time.
func FileName(now time.Time) string {
	return fmt.Sprintf("submissions-%d.csv", now.UnixMilli())
}

// Header returns the header row for the given label columns.
func Header(labels []string) []string {
	return append([]string{"Submitted At", "Submitted By"}, labels...)
}

// Row returns the export row of a submission for the given label columns.
// Labels the submission has no answer for produce empty cells.
func Row(s Submission, labels []string, loc *time.Location) []string {
	if loc == nil {
		loc = time.UTC
	}
	row := make([]string, 0, len(labels)+2)
	row = append(row, s.SubmittedAt.In(loc).Format(TimeFormat), s.SubmitterName())
	for _, label := range labels {
		value, _ := s.Lookup(label)
		row = append(row, value)
	}
	return row
}

// WriteCSV writes the export of the given submissions: a header row and one
// row per submission, in the given order.  Every cell is quoted; quote
// characters inside a value are doubled.
func WriteCSV(w io.Writer, subs []Submission, loc *time.Location) error {
	labels := Columns(subs)
	bw := bufio.NewWriter(w)
	if err := writeRecord(bw, Header(labels)); err != nil {
		return err
	}
	for _, s := range subs {
		if err := writeRecord(bw, Row(s, labels, loc)); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func writeRecord(w *bufio.Writer, cells []string) error {
	for idx, cell := range cells {
		if idx > 0 {
			if err := w.WriteByte(','); err != nil {
				return err
			}
		}
		if _, err := w.WriteString(quote(cell)); err != nil {
			return err
		}
	}
	_, err := w.WriteString("\n")
	return err
}

func quote(cell string) string {
	return `"` + strings.ReplaceAll(cell, `"`, `""`) + `"`
}
