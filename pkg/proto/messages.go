// Package proto defines the shared message types used for internal RPC
// communication between services.
//
// The types use JSON struct tags for serialization over the lightweight
// JSON-over-TCP RPC layer (see pkg/rpc).
package proto

// ---------- Common ----------

// Document represents a document across all services.
type Document struct {
	DocID       string `json:"doc_id"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	ContentHash string `json:"content_hash"`
	ContentSize int32  `json:"content_size"`
	Status      string `json:"status"`
	CreatedAt   int64  `json:"created_at"`
	IndexedAt   int64  `json:"indexed_at,omitempty"`
}

// HealthCheckResponse mirrors the gRPC health check spec.
type HealthCheckResponse struct {
	Status string `json:"status"` // SERVING, NOT_SERVING, UNKNOWN
}

// ---------- Search ----------

// EvaluateRequest is the input to the Search.Evaluate RPC. Query is a
// boolean expression over corpus terms.
type EvaluateRequest struct {
	Query string `json:"query"`
}

// EvaluateResponse is the output of the Search.Evaluate RPC. DocIDs holds
// every matching document in lexicographic order.
type EvaluateResponse struct {
	Query     string   `json:"query"`
	Canonical string   `json:"canonical"`
	Total     int32    `json:"total"`
	DocIDs    []string `json:"doc_ids"`
	LatencyMs int64    `json:"latency_ms"`
}

// StatsRequest is the (empty) input to the Search.Stats RPC.
type StatsRequest struct{}

// StatsResponse contains index-level statistics.
type StatsResponse struct {
	TotalDocs  int64 `json:"total_docs"`
	TotalTerms int64 `json:"total_terms"`
	Frozen     bool  `json:"frozen"`
}
