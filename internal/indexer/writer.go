package indexer

import (
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mkorolev/boolsearch/internal/index"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
	"github.com/mkorolev/boolsearch/pkg/metrics"
)

// Writer appends documents to the tab-separated corpus file that searcher
// instances load on startup. Appends are serialized and duplicate document
// IDs are rejected, mirroring the frozen-index uniqueness rule.
type Writer struct {
	mu      sync.Mutex
	path    string
	seen    map[string]struct{}
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewWriter opens the corpus file at path, scanning any existing rows so
// duplicate document IDs can be rejected. The file is created if missing.
func NewWriter(path string, m *metrics.Metrics) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating corpus directory: %w", err)
	}
	w := &Writer{
		path:    path,
		seen:    make(map[string]struct{}),
		metrics: m,
		logger:  slog.Default().With("component", "corpus-writer"),
	}
	if err := w.loadExistingIDs(); err != nil {
		return nil, fmt.Errorf("scanning existing corpus: %w", err)
	}
	w.logger.Info("corpus writer ready", "path", path, "documents", len(w.seen))
	return w, nil
}

// Append writes one document row to the corpus file. It returns the number
// of distinct terms in the document, or an error wrapping
// errors.ErrDocumentExists if the ID was already written.
func (w *Writer) Append(docID, title, body string) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, dup := w.seen[docID]; dup {
		return 0, fmt.Errorf("%w: %s", apperrors.ErrDocumentExists, docID)
	}
	if err := index.AppendCorpus(w.path, docID, title, body); err != nil {
		return 0, err
	}
	w.seen[docID] = struct{}{}

	terms := make(map[string]struct{})
	for _, t := range strings.Fields(title) {
		terms[t] = struct{}{}
	}
	for _, t := range strings.Fields(body) {
		terms[t] = struct{}{}
	}

	if w.metrics != nil {
		w.metrics.DocsIndexedTotal.Inc()
	}
	return len(terms), nil
}

// DocCount returns the number of documents in the corpus file, including
// rows present before this writer was created.
func (w *Writer) DocCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.seen)
}

func (w *Writer) loadExistingIDs() error {
	f, err := os.Open(w.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		id, _, _ := strings.Cut(line, "\t")
		w.seen[id] = struct{}{}
	}
	return scanner.Err()
}
