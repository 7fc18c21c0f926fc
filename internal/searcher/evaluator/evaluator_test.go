package evaluator

import (
	"testing"

	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/parser"
)

// buildIndex constructs the reference corpus used throughout:
//
//	doc1: cat        doc2: dog
//	doc3: cat dog    doc4: fish
func buildIndex(t *testing.T) *index.Index {
	t.Helper()
	ix := index.New()
	docs := map[string][]string{
		"1": {"cat"},
		"2": {"dog"},
		"3": {"cat", "dog"},
		"4": {"fish"},
	}
	for id, terms := range docs {
		if err := ix.Add(id, terms); err != nil {
			t.Fatalf("Add(%s): %v", id, err)
		}
	}
	ix.Freeze()
	return ix
}

func eval(t *testing.T, ix *index.Index, query string) index.DocSet {
	t.Helper()
	node, err := parser.Parse(query)
	if err != nil {
		t.Fatalf("Parse(%q): %v", query, err)
	}
	return Evaluate(node, ix)
}

func TestEvaluate(t *testing.T) {
	ix := buildIndex(t)

	tests := []struct {
		query string
		want  []string
	}{
		{"cat", []string{"1", "3"}},
		{"dog", []string{"2", "3"}},
		{"fish", []string{"4"}},
		{"cat dog", []string{"3"}},
		{"cat|dog", []string{"1", "2", "3"}},
		{"!cat", []string{"2", "4"}},
		{"cat !dog", []string{"1"}},
		{"!(cat|dog)", []string{"4"}},
		{"!!cat", []string{"1", "3"}},
		{"cat|!cat", []string{"1", "2", "3", "4"}},
		{"cat !cat", nil},
		{"(cat|fish) !dog", []string{"1", "4"}},
		// AND binds tighter than OR: cat | (dog !fish).
		{"cat|dog !fish", []string{"1", "2", "3"}},
		{"unknown", nil},
		{"!unknown", []string{"1", "2", "3", "4"}},
		{"cat unknown", nil},
	}
	for _, tt := range tests {
		got := eval(t, ix, tt.query)
		if !got.Equal(index.NewDocSet(tt.want...)) {
			t.Errorf("Evaluate(%q) = %v, want %v", tt.query, got.Sorted(), tt.want)
		}
	}
}

func TestEvaluateNilNode(t *testing.T) {
	ix := buildIndex(t)
	got := Evaluate(nil, ix)
	if got == nil || got.Len() != 0 {
		t.Fatalf("Evaluate(nil) = %v, want empty set", got)
	}
}

func TestEvaluateDeMorgan(t *testing.T) {
	ix := buildIndex(t)
	left := eval(t, ix, "!(cat|dog)")
	right := eval(t, ix, "!cat !dog")
	if !left.Equal(right) {
		t.Fatalf("!(cat|dog) = %v but !cat !dog = %v", left.Sorted(), right.Sorted())
	}

	left = eval(t, ix, "!(cat dog)")
	right = eval(t, ix, "!cat|!dog")
	if !left.Equal(right) {
		t.Fatalf("!(cat dog) = %v but !cat|!dog = %v", left.Sorted(), right.Sorted())
	}
}

func TestEvaluateCommutativity(t *testing.T) {
	ix := buildIndex(t)
	for _, pair := range [][2]string{
		{"cat dog", "dog cat"},
		{"cat|fish", "fish|cat"},
	} {
		a := eval(t, ix, pair[0])
		b := eval(t, ix, pair[1])
		if !a.Equal(b) {
			t.Errorf("%q = %v but %q = %v", pair[0], a.Sorted(), pair[1], b.Sorted())
		}
	}
}

func TestEvaluateDoesNotAliasPostings(t *testing.T) {
	ix := buildIndex(t)
	got := eval(t, ix, "cat")
	got.Add("999")
	again := eval(t, ix, "cat")
	if again.Contains("999") {
		t.Fatal("mutating a result leaked into the index postings")
	}
}

func TestEvaluateEmptyIndex(t *testing.T) {
	ix := index.New()
	ix.Freeze()
	if got := eval(t, ix, "!anything"); got.Len() != 0 {
		t.Fatalf("complement within an empty index = %v, want empty", got.Sorted())
	}
}
