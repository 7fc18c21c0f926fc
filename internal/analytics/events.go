package analytics

import "time"

type EventType string

const (
	EventQuery       EventType = "query"
	EventCacheHit    EventType = "cache_hit"
	EventCacheMiss   EventType = "cache_miss"
	EventSyntaxError EventType = "syntax_error"
	EventZeroResult  EventType = "zero_result"
	EventIndexDoc    EventType = "index_document"
)

// QueryEvent describes one boolean query evaluation.
type QueryEvent struct {
	Type      EventType `json:"type"`
	QueryID   int       `json:"query_id,omitempty"`
	Query     string    `json:"query"`
	Canonical string    `json:"canonical,omitempty"`
	Terms     []string  `json:"terms,omitempty"`
	Matches   int       `json:"matches"`
	LatencyMs int64     `json:"latency_ms"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id,omitempty"`
}

// IndexEvent describes one document folded into the corpus.
type IndexEvent struct {
	Type       EventType `json:"type"`
	DocumentID string    `json:"document_id"`
	TermCount  int       `json:"term_count"`
	Timestamp  time.Time `json:"timestamp"`
}
