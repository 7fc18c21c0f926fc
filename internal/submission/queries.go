// Package submission handles the batch retrieval pipeline's I/O: the
// numbered query list, the accumulated (query, document) matches, and
// the relevance-labelled submission file derived from a candidate
// objects list.
package submission

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// Query is one numbered boolean query from the query list.
type Query struct {
	ID   int
	Text string
}

// ReadQueriesFile reads tab-separated (queryID, query) pairs from path.
func ReadQueriesFile(path string) ([]Query, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening queries file %s: %w", path, err)
	}
	defer f.Close()
	queries, err := ReadQueries(f)
	if err != nil {
		return nil, fmt.Errorf("reading queries file %s: %w", path, err)
	}
	return queries, nil
}

// ReadQueries reads tab-separated (queryID, query) pairs, one per line.
func ReadQueries(r io.Reader) ([]Query, error) {
	var queries []Query
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimRight(scanner.Text(), "\n")
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "\t", 2)
		if len(fields) != 2 {
			return nil, fmt.Errorf("queries line %d: expected 2 tab-separated fields", lineNo)
		}
		id, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("queries line %d: bad query id %q: %w", lineNo, fields[0], err)
		}
		queries = append(queries, Query{ID: id, Text: fields[1]})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning queries: %w", err)
	}
	return queries, nil
}
