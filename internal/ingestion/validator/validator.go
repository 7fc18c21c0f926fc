// Package validator provides input validation for ingestion requests. It
// enforces document identifier and content constraints and returns per-field
// error details.
package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/mkorolev/boolsearch/internal/ingestion"
)

const (
	maxDocIDLength = 128
	maxTitleLength = 1024
	maxBodyLength  = 1048576
	minBodyLength  = 1
)

// ValidationError holds per-field validation failure messages.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	var parts []string
	for field, msg := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s:%s", field, msg))
	}
	return strings.Join(parts, "; ")
}

// ValidateIngestRequest checks that the document identifier, title and body
// meet the format and length constraints and returns a ValidationError if not.
func ValidateIngestRequest(req *ingestion.IngestRequest) error {
	errs := make(map[string]string)

	docID := req.DocumentID
	switch {
	case docID == "":
		errs["doc_id"] = "doc_id is required"
	case len(docID) > maxDocIDLength:
		errs["doc_id"] = fmt.Sprintf("doc_id must be at most %d characters", maxDocIDLength)
	case containsSpace(docID):
		// Identifiers land in a tab-separated corpus file and in query
		// match listings, so whitespace inside them is not allowed.
		errs["doc_id"] = "doc_id must not contain whitespace"
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		errs["title"] = "title is required"
	} else if len(title) > maxTitleLength {
		errs["title"] = fmt.Sprintf("title must be at most %d characters", maxTitleLength)
	}
	body := strings.TrimSpace(req.Body)
	if len(body) < minBodyLength {
		errs["body"] = "body is required and must not be empty"
	} else if len(body) > maxBodyLength {
		errs["body"] = fmt.Sprintf("body must be at most %d characters", maxBodyLength)
	}
	if req.IdempotencyKey != "" && len(req.IdempotencyKey) > 255 {
		errs["idempotency_key"] = "idempotency key must be at most 255 characters"
	}
	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func containsSpace(s string) bool {
	return strings.IndexFunc(s, unicode.IsSpace) >= 0
}
