package index

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReadCorpus(t *testing.T) {
	data := strings.Join([]string{
		"1\tCats\tthe cat sat",
		"2\tDogs\tthe dog barked",
		"",
		"3\tBoth\tcat dog",
	}, "\n")

	ix, err := ReadCorpus(strings.NewReader(data))
	if err != nil {
		t.Fatalf("ReadCorpus: %v", err)
	}
	if !ix.Frozen() {
		t.Fatal("ReadCorpus did not freeze the index")
	}
	if ix.DocCount() != 3 {
		t.Fatalf("DocCount() = %d, want 3", ix.DocCount())
	}
	if got := ix.Lookup("cat"); !got.Equal(NewDocSet("1", "3")) {
		t.Errorf("Lookup(cat) = %v", got.Sorted())
	}
	// Title terms are indexed too.
	if got := ix.Lookup("Dogs"); !got.Equal(NewDocSet("2")) {
		t.Errorf("Lookup(Dogs) = %v", got.Sorted())
	}
	if got := ix.AllDocIDs(); !got.Equal(NewDocSet("1", "2", "3")) {
		t.Errorf("AllDocIDs() = %v", got.Sorted())
	}
}

func TestReadCorpusMalformedLine(t *testing.T) {
	for _, data := range []string{
		"1\tmissing body field",
		"\ttitle\tbody",
	} {
		if _, err := ReadCorpus(strings.NewReader(data)); err == nil {
			t.Errorf("ReadCorpus(%q) succeeded, want error", data)
		}
	}
}

func TestAppendAndLoadCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.tsv")

	if err := AppendCorpus(path, "a", "First", "alpha beta"); err != nil {
		t.Fatalf("AppendCorpus: %v", err)
	}
	// Tabs and newlines inside fields must not break the line format.
	if err := AppendCorpus(path, "b", "Second\ttitle", "gamma\ndelta"); err != nil {
		t.Fatalf("AppendCorpus: %v", err)
	}

	ix, err := LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if ix.DocCount() != 2 {
		t.Fatalf("DocCount() = %d, want 2", ix.DocCount())
	}
	for _, term := range []string{"alpha", "Second", "title", "gamma", "delta"} {
		if ix.Lookup(term).Len() == 0 {
			t.Errorf("Lookup(%s) is empty after append-then-load", term)
		}
	}
	if got := ix.Lookup("delta"); !got.Equal(NewDocSet("b")) {
		t.Errorf("Lookup(delta) = %v", got.Sorted())
	}
}

func TestLoadCorpusMissingFile(t *testing.T) {
	if _, err := LoadCorpus(filepath.Join(t.TempDir(), "absent.tsv")); err == nil {
		t.Fatal("LoadCorpus succeeded on a missing file")
	}
}

func TestAppendCorpusCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "new.tsv")
	if err := AppendCorpus(path, "x", "t", "b"); err != nil {
		t.Fatalf("AppendCorpus: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if got, want := string(raw), "x\tt\tb\n"; got != want {
		t.Errorf("file contents = %q, want %q", got, want)
	}
}
