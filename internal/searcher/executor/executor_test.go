package executor

import (
	"context"
	"errors"
	"testing"

	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/submission"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
)

func testIndex(t *testing.T) *index.Index {
	t.Helper()
	ix := index.New()
	ix.Add("1", []string{"cat"})
	ix.Add("2", []string{"dog"})
	ix.Add("3", []string{"cat", "dog"})
	ix.Add("4", []string{"fish"})
	ix.Freeze()
	return ix
}

func TestExecute(t *testing.T) {
	e := New(testIndex(t), nil)

	result, err := e.Execute(context.Background(), "cat|dog")
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	want := []string{"1", "2", "3"}
	if len(result.DocIDs) != len(want) {
		t.Fatalf("DocIDs = %v, want %v", result.DocIDs, want)
	}
	for i := range want {
		if result.DocIDs[i] != want[i] {
			t.Fatalf("DocIDs = %v, want %v (sorted)", result.DocIDs, want)
		}
	}
	if result.Canonical == "" {
		t.Error("Canonical is empty")
	}
}

func TestExecuteSyntaxError(t *testing.T) {
	e := New(testIndex(t), nil)
	_, err := e.Execute(context.Background(), "cat |")
	if !errors.Is(err, apperrors.ErrQuerySyntax) {
		t.Fatalf("Execute error = %v, want ErrQuerySyntax", err)
	}
}

func TestExecuteBatch(t *testing.T) {
	e := New(testIndex(t), nil)
	queries := []submission.Query{
		{ID: 1, Text: "cat"},
		{ID: 2, Text: "cat dog"},
		{ID: 3, Text: "!fish"},
	}

	results, failures, err := e.ExecuteBatch(context.Background(), queries, 4)
	if err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	if len(failures) != 0 {
		t.Fatalf("failures = %v", failures)
	}
	if results.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", results.Len())
	}
	if !results.Docs(1).Equal(index.NewDocSet("1", "3")) {
		t.Errorf("query 1 = %v", results.Docs(1).Sorted())
	}
	if !results.Docs(2).Equal(index.NewDocSet("3")) {
		t.Errorf("query 2 = %v", results.Docs(2).Sorted())
	}
	if !results.Docs(3).Equal(index.NewDocSet("1", "2", "3")) {
		t.Errorf("query 3 = %v", results.Docs(3).Sorted())
	}
}

func TestExecuteBatchIsolatesMalformedQueries(t *testing.T) {
	e := New(testIndex(t), nil)
	queries := []submission.Query{
		{ID: 1, Text: "cat"},
		{ID: 2, Text: "(broken"},
		{ID: 3, Text: "dog"},
	}

	results, failures, err := e.ExecuteBatch(context.Background(), queries, 2)
	if err != nil {
		t.Fatalf("ExecuteBatch: %v", err)
	}
	if len(failures) != 1 || failures[0].QueryID != 2 {
		t.Fatalf("failures = %v, want exactly query 2", failures)
	}
	if !errors.Is(failures[0].Err, apperrors.ErrQuerySyntax) {
		t.Errorf("failure error = %v, want ErrQuerySyntax", failures[0].Err)
	}
	if results.Len() != 2 {
		t.Errorf("Len() = %d, want 2", results.Len())
	}
	if results.Docs(2) != nil {
		t.Error("malformed query has recorded results")
	}
}

func TestExecuteBatchCancelled(t *testing.T) {
	e := New(testIndex(t), nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	queries := []submission.Query{{ID: 1, Text: "cat"}}
	_, _, err := e.ExecuteBatch(ctx, queries, 1)
	if err == nil {
		t.Fatal("ExecuteBatch succeeded with a cancelled context")
	}
}
