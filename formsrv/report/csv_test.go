package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var testTime = time.Date(2024, time.March, 5, 14, 7, 9, 0, time.UTC)

func TestColumnsFirstEncountered(t *testing.T) {
	subs := []Submission{
		{Answers: []Answer{{Label: "Name"}, {Label: "Email"}}},
		{Answers: []Answer{{Label: "Phone"}, {Label: "Name"}}},
		{Answers: []Answer{{Label: "Email"}, {Label: "Old question"}}},
	}
	exp := []string{"Name", "Email", "Phone", "Old question"}
	if diff := cmp.Diff(exp, Columns(subs)); diff != "" {
		t.Fatalf("Unexpected columns (-want +got):\n%s", diff)
	}

	if cols := Columns(nil); cols == nil || len(cols) != 0 {
		t.Fatalf("Columns of no submissions should be an empty slice: %#v", cols)
	}
}

func TestSubmitterName(t *testing.T) {
	cases := []struct {
		sub   Submission
		name  string
		guest bool
	}{
		{Submission{HasAccount: true, FullName: "Alice", Email: "alice@example.org"}, "Alice", false},
		{Submission{HasAccount: true, Email: "bob@example.org"}, "bob@example.org", true},
		{Submission{}, "Anonymous", false},
	}
	for _, c := range cases {
		if name := c.sub.SubmitterName(); name != c.name {
			t.Errorf("Unexpected submitter name %q (expected %q)", name, c.name)
		}
		if guest := c.sub.IsGuest(); guest != c.guest {
			t.Errorf("Unexpected guest flag for %+v: %t", c.sub, guest)
		}
	}
}

func TestWriteCSVMissingAnswer(t *testing.T) {
	subs := []Submission{
		{
			SubmittedAt: testTime,
			HasAccount:  true,
			FullName:    "Alice",
			Answers:     []Answer{{Label: "Name", Value: "Alice"}, {Label: "Email", Value: "alice@example.org"}},
		},
		{
			SubmittedAt: testTime.Add(time.Hour),
			Answers:     []Answer{{Label: "Name", Value: "Bob"}},
		},
	}

	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, subs, time.UTC); err != nil {
		t.Fatalf("Failed to write CSV: %s", err.Error())
	}

	exp := strings.Join([]string{
		`"Submitted At","Submitted By","Name","Email"`,
		`"3/5/2024, 2:07:09 PM","Alice","Alice","alice@example.org"`,
		`"3/5/2024, 3:07:09 PM","Anonymous","Bob",""`,
	}, "\n") + "\n"
	if diff := cmp.Diff(exp, buf.String()); diff != "" {
		t.Fatalf("Unexpected CSV output (-want +got):\n%s", diff)
	}
}

func TestWriteCSVQuotes(t *testing.T) {
	subs := []Submission{
		{SubmittedAt: testTime, Answers: []Answer{{Label: `Say "hi"`, Value: `he said "hi", twice`}}},
	}
	buf := new(bytes.Buffer)
	if err := WriteCSV(buf, subs, nil); err != nil {
		t.Fatalf("Failed to write CSV: %s", err.Error())
	}
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("Unexpected number of lines: %d", len(lines))
	}
	if lines[0] != `"Submitted At","Submitted By","Say ""hi"""` {
		t.Fatalf("Unexpected header: %s", lines[0])
	}
	if !strings.HasSuffix(lines[1], `,"he said ""hi"", twice"`) {
		t.Fatalf("Quote characters not escaped: %s", lines[1])
	}
}

func TestWriteCSVTimezone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	row := Row(Submission{SubmittedAt: testTime}, nil, loc)
	if row[0] != "3/5/2024, 4:07:09 PM" {
		t.Fatalf("Timestamp not converted to location: %s", row[0])
	}
}

func TestFileName(t *testing.T) {
	if name := FileName(time.UnixMilli(1700000000123)); name != "submissions-1700000000123.csv" {
		t.Fatalf("Unexpected file name: %s", name)
	}
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("x", 60)
	answers := []Answer{{"A", long}, {"B", "b"}, {"C", "c"}, {"D", "d"}, {"E", "e"}}
	short, more := Preview(answers, PreviewCount)
	if len(short) != 3 {
		t.Fatalf("Unexpected preview length: %d", len(short))
	}
	if short[0].Value != strings.Repeat("x", 50)+"..." {
		t.Fatalf("Long value not truncated: %s", short[0].Value)
	}
	if more != "+2 more fields" {
		t.Fatalf("Unexpected remainder note: %q", more)
	}

	if _, more := Preview(answers[:4], PreviewCount); more != "+1 more field" {
		t.Fatalf("Unexpected remainder note: %q", more)
	}
	if short, more := Preview(answers[:2], PreviewCount); len(short) != 2 || more != "" {
		t.Fatalf("Unexpected preview of short list: %v %q", short, more)
	}
}
