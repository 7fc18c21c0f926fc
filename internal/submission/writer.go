package submission

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// WriteSubmissionFile reads the candidate objects CSV at objectsPath
// and writes the relevance-labelled submission CSV to outPath.
func WriteSubmissionFile(objectsPath, outPath string, results *Results) error {
	in, err := os.Open(objectsPath)
	if err != nil {
		return fmt.Errorf("opening objects file %s: %w", objectsPath, err)
	}
	defer in.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating submission file %s: %w", outPath, err)
	}
	defer out.Close()

	if err := WriteSubmission(in, out, results); err != nil {
		return fmt.Errorf("writing submission file %s: %w", outPath, err)
	}
	return nil
}

// WriteSubmission labels each candidate (ObjectId, QueryId, DocumentId)
// row as relevant (1) or not (0) according to the recorded results. The
// objects input carries an ObjectId header line, which becomes the
// "ObjectId,Relevance" header of the submission.
func WriteSubmission(objects io.Reader, out io.Writer, results *Results) error {
	w := bufio.NewWriter(out)
	scanner := bufio.NewScanner(objects)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "ObjectId") {
			if _, err := w.WriteString("ObjectId,Relevance\n"); err != nil {
				return fmt.Errorf("writing header: %w", err)
			}
			continue
		}
		fields := strings.Split(line, ",")
		if len(fields) != 3 {
			return fmt.Errorf("objects line %d: expected 3 comma-separated fields, got %d", lineNo, len(fields))
		}
		objectID := fields[0]
		queryID, err := strconv.Atoi(fields[1])
		if err != nil {
			return fmt.Errorf("objects line %d: bad query id %q: %w", lineNo, fields[1], err)
		}
		docID := fields[2]

		relevance := "0"
		if results.Match(queryID, docID) {
			relevance = "1"
		}
		if _, err := fmt.Fprintf(w, "%s,%s\n", objectID, relevance); err != nil {
			return fmt.Errorf("writing objects line %d: %w", lineNo, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("scanning objects: %w", err)
	}
	return w.Flush()
}
