package indexer

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/mkorolev/boolsearch/internal/index"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
)

func TestWriterAppend(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.tsv")
	w, err := NewWriter(path, nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}

	terms, err := w.Append("d1", "hello world", "hello again")
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	if terms != 3 {
		t.Errorf("distinct terms = %d, want 3", terms)
	}
	if w.DocCount() != 1 {
		t.Errorf("DocCount() = %d, want 1", w.DocCount())
	}

	_, err = w.Append("d1", "dup", "dup")
	if !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Fatalf("duplicate Append error = %v, want ErrDocumentExists", err)
	}

	ix, err := index.LoadCorpus(path)
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}
	if ix.DocCount() != 1 {
		t.Errorf("corpus has %d documents, want 1", ix.DocCount())
	}
	if got := ix.Lookup("hello"); !got.Equal(index.NewDocSet("d1")) {
		t.Errorf("Lookup(hello) = %v", got.Sorted())
	}
}

func TestWriterResumesExistingCorpus(t *testing.T) {
	path := filepath.Join(t.TempDir(), "docs.tsv")

	w1, err := NewWriter(path, nil)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if _, err := w1.Append("d1", "t", "b"); err != nil {
		t.Fatalf("Append: %v", err)
	}

	// A fresh writer over the same file must see d1 and reject it.
	w2, err := NewWriter(path, nil)
	if err != nil {
		t.Fatalf("NewWriter (reopen): %v", err)
	}
	if w2.DocCount() != 1 {
		t.Errorf("reopened DocCount() = %d, want 1", w2.DocCount())
	}
	if _, err := w2.Append("d1", "t", "b"); !errors.Is(err, apperrors.ErrDocumentExists) {
		t.Fatalf("reopened duplicate Append error = %v, want ErrDocumentExists", err)
	}
	if _, err := w2.Append("d2", "t", "b"); err != nil {
		t.Fatalf("Append d2: %v", err)
	}
}
