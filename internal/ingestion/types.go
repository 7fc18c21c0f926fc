// Package ingestion defines the request/response types and Kafka event schemas
// used by the document ingestion pipeline.
package ingestion

import "time"

// IngestRequest is the JSON body accepted by the ingestion HTTP endpoint.
// DocumentID is the caller-chosen corpus identifier; it must be unique.
type IngestRequest struct {
	DocumentID     string `json:"doc_id"`
	Title          string `json:"title"`
	Body           string `json:"body"`
	IdempotencyKey string `json:"idempotency_key"`
}

// IngestResponse is returned to the caller after a document is accepted.
type IngestResponse struct {
	DocumentID string `json:"doc_id"`
	Status     string `json:"status"`
}

// IngestEvent is the Kafka message payload produced after a document is
// persisted and ready for indexing.
type IngestEvent struct {
	DocumentID string    `json:"doc_id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	IngestedAt time.Time `json:"ingested_at"`
}
