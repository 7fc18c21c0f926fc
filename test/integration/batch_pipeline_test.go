// Package integration contains tests that verify the interaction between
// multiple pipeline components. The batch pipeline test runs the full
// corpus-to-submission flow on temporary files with no external services.
package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/executor"
	"github.com/mkorolev/boolsearch/internal/submission"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

// TestBatchPipeline runs corpus loading, batch evaluation, and submission
// writing end to end. Document 1 mentions cats, document 2 dogs, document
// 3 both, document 4 neither.
func TestBatchPipeline(t *testing.T) {
	dir := t.TempDir()

	docsPath := writeFile(t, dir, "docs.tsv",
		"1\tcat care\tcats are independent animals\n"+
			"2\tdog care\tdogs need daily walks\n"+
			"3\tpets\tcats and dogs can share a home\n"+
			"4\tfish care\tfish live in tanks\n")
	queriesPath := writeFile(t, dir, "queries.tsv",
		"1\tcats\n"+
			"2\tcats dogs\n"+
			"3\tcats | dogs\n"+
			"4\t!cats\n"+
			"5\t(broken\n")
	objectsPath := writeFile(t, dir, "objects.csv",
		"ObjectId,QueryId,DocumentId\n"+
			"10,1,1\n"+
			"11,1,2\n"+
			"12,2,3\n"+
			"13,3,4\n"+
			"14,4,1\n"+
			"15,4,4\n"+
			"16,5,1\n")
	submissionPath := filepath.Join(dir, "submission.csv")

	ix, err := index.LoadCorpus(docsPath)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if ix.DocCount() != 4 {
		t.Fatalf("DocCount = %d, want 4", ix.DocCount())
	}

	queries, err := submission.ReadQueriesFile(queriesPath)
	if err != nil {
		t.Fatalf("ReadQueriesFile: %v", err)
	}
	if len(queries) != 5 {
		t.Fatalf("len(queries) = %d, want 5", len(queries))
	}

	exec := executor.New(ix, nil)
	results, failures, err := exec.ExecuteBatch(context.Background(), queries, 4)
	if err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	if len(failures) != 1 || failures[0].QueryID != 5 {
		t.Fatalf("failures = %v, want only query 5", failures)
	}
	if got := results.Docs(2).Sorted(); len(got) != 1 || got[0] != "3" {
		t.Errorf("query 2 docs = %v, want [3]", got)
	}
	if got := results.Docs(3).Len(); got != 3 {
		t.Errorf("query 3 matched %d docs, want 3", got)
	}

	if err := submission.WriteSubmissionFile(objectsPath, submissionPath, results); err != nil {
		t.Fatalf("WriteSubmissionFile: %v", err)
	}

	data, err := os.ReadFile(submissionPath)
	if err != nil {
		t.Fatalf("reading submission: %v", err)
	}
	want := "ObjectId,Relevance\n" +
		"10,1\n" + // doc 1 mentions cats
		"11,0\n" + // doc 2 does not
		"12,1\n" + // doc 3 mentions both
		"13,0\n" + // doc 4 mentions neither
		"14,0\n" + // doc 1 is excluded by the negation
		"15,1\n" +
		"16,0\n" // query 5 never evaluated
	if string(data) != want {
		t.Errorf("submission mismatch:\ngot:\n%s\nwant:\n%s", data, want)
	}
}
