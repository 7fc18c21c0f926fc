package validator

import (
	"strings"
	"testing"

	"github.com/mkorolev/boolsearch/internal/ingestion"
)

func validRequest() *ingestion.IngestRequest {
	return &ingestion.IngestRequest{
		DocumentID: "doc-1",
		Title:      "A title",
		Body:       "some body text",
	}
}

func TestValidateIngestRequestOK(t *testing.T) {
	if err := ValidateIngestRequest(validRequest()); err != nil {
		t.Fatalf("valid request rejected: %v", err)
	}
}

func TestValidateIngestRequestFields(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ingestion.IngestRequest)
		field  string
	}{
		{"missing doc_id", func(r *ingestion.IngestRequest) { r.DocumentID = "" }, "doc_id"},
		{"doc_id with space", func(r *ingestion.IngestRequest) { r.DocumentID = "doc 1" }, "doc_id"},
		{"doc_id with tab", func(r *ingestion.IngestRequest) { r.DocumentID = "doc\t1" }, "doc_id"},
		{"doc_id too long", func(r *ingestion.IngestRequest) { r.DocumentID = strings.Repeat("x", 129) }, "doc_id"},
		{"missing title", func(r *ingestion.IngestRequest) { r.Title = "  " }, "title"},
		{"missing body", func(r *ingestion.IngestRequest) { r.Body = "" }, "body"},
		{"long idempotency key", func(r *ingestion.IngestRequest) { r.IdempotencyKey = strings.Repeat("k", 256) }, "idempotency_key"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)
			err := ValidateIngestRequest(req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			verr, ok := err.(*ValidationError)
			if !ok {
				t.Fatalf("error type %T, want *ValidationError", err)
			}
			if _, present := verr.Fields[tt.field]; !present {
				t.Errorf("expected failure on field %q, got %v", tt.field, verr.Fields)
			}
		})
	}
}
