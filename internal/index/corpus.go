package index

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
)

// maxCorpusLine bounds a single corpus line; document bodies can be
// large, so the scanner buffer is widened well past the bufio default.
const maxCorpusLine = 16 * 1024 * 1024

// LoadCorpus reads a tab-separated corpus file (docID, title, body per
// line), folds every document into a fresh index, and freezes it.
func LoadCorpus(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening corpus file %s: %w", path, err)
	}
	defer f.Close()

	start := time.Now()
	ix, err := ReadCorpus(f)
	if err != nil {
		return nil, fmt.Errorf("reading corpus file %s: %w", path, err)
	}
	slog.Default().With("component", "corpus").Info("corpus loaded",
		"path", path,
		"docs", ix.DocCount(),
		"terms", ix.TermCount(),
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return ix, nil
}

// ReadCorpus folds every corpus line from r into a new frozen index.
// Each line is docID, title, and body separated by tabs; title and body
// are whitespace-tokenized and indexed together.
func ReadCorpus(r io.Reader) (*Index, error) {
	ix := New()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxCorpusLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if line == "" {
			continue
		}
		docID, terms, err := parseCorpusLine(line)
		if err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", lineNo, err)
		}
		if err := ix.Add(docID, terms); err != nil {
			return nil, fmt.Errorf("corpus line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning corpus: %w", err)
	}
	ix.Freeze()
	return ix, nil
}

// AppendCorpus appends one document line to the corpus file, creating
// the file if needed. Tabs and newlines inside title or body would break
// the line format, so they are flattened to spaces.
func AppendCorpus(path, docID, title, body string) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("opening corpus file %s: %w", path, err)
	}
	defer f.Close()

	line := fmt.Sprintf("%s\t%s\t%s\n", docID, flatten(title), flatten(body))
	if _, err := f.WriteString(line); err != nil {
		return fmt.Errorf("appending to corpus file %s: %w", path, err)
	}
	return nil
}

func parseCorpusLine(line string) (string, []string, error) {
	parts := strings.SplitN(line, "\t", 3)
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("expected 3 tab-separated fields, got %d", len(parts))
	}
	docID := parts[0]
	if docID == "" {
		return "", nil, fmt.Errorf("empty document id")
	}
	terms := strings.Fields(parts[1])
	terms = append(terms, strings.Fields(parts[2])...)
	return docID, terms, nil
}

func flatten(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
