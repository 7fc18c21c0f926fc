package analytics

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func handle(t *testing.T, agg *Aggregator, event any) {
	t.Helper()
	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if err := HandleEvent(agg)(context.Background(), nil, data); err != nil {
		t.Fatalf("HandleEvent: %v", err)
	}
}

func TestAggregatorQueryEvents(t *testing.T) {
	agg := NewAggregator(nil)

	handle(t, agg, QueryEvent{Type: EventCacheMiss, Query: "cat dog", Matches: 3, LatencyMs: 5, Timestamp: time.Now()})
	handle(t, agg, QueryEvent{Type: EventCacheHit, Query: "cat dog", Matches: 3, LatencyMs: 1, CacheHit: true, Timestamp: time.Now()})
	handle(t, agg, QueryEvent{Type: EventCacheMiss, Query: "rare term", Matches: 0, LatencyMs: 2, Timestamp: time.Now()})
	handle(t, agg, QueryEvent{Type: EventSyntaxError, Query: "(broken", Timestamp: time.Now()})

	stats := agg.Stats()
	if stats.TotalQueries != 4 {
		t.Errorf("TotalQueries = %d, want 4", stats.TotalQueries)
	}
	if stats.CacheHits != 1 || stats.CacheMisses != 2 {
		t.Errorf("cache hits/misses = %d/%d, want 1/2", stats.CacheHits, stats.CacheMisses)
	}
	if stats.SyntaxErrorCount != 1 {
		t.Errorf("SyntaxErrorCount = %d, want 1", stats.SyntaxErrorCount)
	}
	if stats.ZeroResultCount != 1 {
		t.Errorf("ZeroResultCount = %d, want 1", stats.ZeroResultCount)
	}
	if len(stats.TopQueries) == 0 || stats.TopQueries[0].Query != "cat dog" || stats.TopQueries[0].Count != 2 {
		t.Errorf("TopQueries = %v", stats.TopQueries)
	}
	if len(stats.ZeroResultQueries) != 1 || stats.ZeroResultQueries[0].Query != "rare term" {
		t.Errorf("ZeroResultQueries = %v", stats.ZeroResultQueries)
	}
}

func TestAggregatorIndexEvents(t *testing.T) {
	agg := NewAggregator(nil)

	handle(t, agg, IndexEvent{Type: EventIndexDoc, DocumentID: "d1", TermCount: 10, Timestamp: time.Now()})
	handle(t, agg, IndexEvent{Type: EventIndexDoc, DocumentID: "d2", TermCount: 4, Timestamp: time.Now()})

	stats := agg.Stats()
	if stats.TotalDocsIndexed != 2 {
		t.Errorf("TotalDocsIndexed = %d, want 2", stats.TotalDocsIndexed)
	}
	if stats.TotalQueries != 0 {
		t.Errorf("index events counted as queries: %d", stats.TotalQueries)
	}
}

func TestAggregatorDropsGarbage(t *testing.T) {
	agg := NewAggregator(nil)
	if err := HandleEvent(agg)(context.Background(), nil, []byte("not json")); err != nil {
		t.Fatalf("garbage event returned error: %v", err)
	}
	if stats := agg.Stats(); stats.TotalQueries != 0 || stats.TotalDocsIndexed != 0 {
		t.Errorf("garbage event was recorded: %+v", stats)
	}
}

func TestAggregatorLatencyPercentiles(t *testing.T) {
	agg := NewAggregator(nil)
	for i := int64(1); i <= 100; i++ {
		handle(t, agg, QueryEvent{Type: EventCacheMiss, Query: "q", Matches: 1, LatencyMs: i, Timestamp: time.Now()})
	}
	stats := agg.Stats()
	if stats.P50LatencyMs < 45 || stats.P50LatencyMs > 55 {
		t.Errorf("P50LatencyMs = %d", stats.P50LatencyMs)
	}
	if stats.P99LatencyMs < 95 {
		t.Errorf("P99LatencyMs = %d", stats.P99LatencyMs)
	}
	if stats.AvgLatencyMs < 50 || stats.AvgLatencyMs > 51 {
		t.Errorf("AvgLatencyMs = %f, want 50.5", stats.AvgLatencyMs)
	}
}
