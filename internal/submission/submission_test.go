package submission

import (
	"strings"
	"testing"

	"github.com/mkorolev/boolsearch/internal/index"
)

func TestReadQueries(t *testing.T) {
	data := "1\tcat dog\n2\t!(a|b)\n\n3\tterm\n"
	queries, err := ReadQueries(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadQueries: %v", err)
	}
	want := []Query{
		{ID: 1, Text: "cat dog"},
		{ID: 2, Text: "!(a|b)"},
		{ID: 3, Text: "term"},
	}
	if len(queries) != len(want) {
		t.Fatalf("got %d queries, want %d", len(queries), len(want))
	}
	for i := range want {
		if queries[i] != want[i] {
			t.Errorf("queries[%d] = %+v, want %+v", i, queries[i], want[i])
		}
	}
}

func TestReadQueriesTabInsideQuery(t *testing.T) {
	// Only the first tab separates id from text.
	queries, err := ReadQueries(strings.NewReader("7\ta\tb\n"))
	if err != nil {
		t.Fatalf("ReadQueries: %v", err)
	}
	if queries[0].Text != "a\tb" {
		t.Errorf("Text = %q, want %q", queries[0].Text, "a\tb")
	}
}

func TestReadQueriesMalformed(t *testing.T) {
	for _, data := range []string{"no-tab-here\n", "x\tquery\n"} {
		if _, err := ReadQueries(strings.NewReader(data)); err == nil {
			t.Errorf("ReadQueries(%q) succeeded, want error", data)
		}
	}
}

func TestResults(t *testing.T) {
	r := NewResults()
	r.Add(2, index.NewDocSet("d1", "d2"))
	r.Add(1, index.NewDocSet("d3"))

	if !r.Match(2, "d1") || !r.Match(1, "d3") {
		t.Error("recorded matches not found")
	}
	if r.Match(2, "d3") {
		t.Error("Match reported a document from another query")
	}
	if r.Match(99, "d1") {
		t.Error("Match reported a hit for an unknown query")
	}
	ids := r.QueryIDs()
	if len(ids) != 2 || ids[0] != 1 || ids[1] != 2 {
		t.Errorf("QueryIDs() = %v, want [1 2]", ids)
	}
	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
}

func TestWriteSubmission(t *testing.T) {
	results := NewResults()
	results.Add(1, index.NewDocSet("d1", "d3"))
	results.Add(2, index.NewDocSet("d2"))

	objects := strings.Join([]string{
		"ObjectId,QueryId,DocumentId",
		"10,1,d1",
		"11,1,d2",
		"12,2,d2",
		"13,3,d1", // query 3 was never evaluated
	}, "\n")

	var out strings.Builder
	if err := WriteSubmission(strings.NewReader(objects), &out, results); err != nil {
		t.Fatalf("WriteSubmission: %v", err)
	}

	want := strings.Join([]string{
		"ObjectId,Relevance",
		"10,1",
		"11,0",
		"12,1",
		"13,0",
	}, "\n") + "\n"
	if out.String() != want {
		t.Errorf("submission output:\n%s\nwant:\n%s", out.String(), want)
	}
}

func TestWriteSubmissionMalformedObjects(t *testing.T) {
	results := NewResults()
	for _, data := range []string{
		"ObjectId,QueryId,DocumentId\n10,1\n",
		"ObjectId,QueryId,DocumentId\n10,x,d1\n",
	} {
		var out strings.Builder
		if err := WriteSubmission(strings.NewReader(data), &out, results); err == nil {
			t.Errorf("WriteSubmission(%q) succeeded, want error", data)
		}
	}
}
