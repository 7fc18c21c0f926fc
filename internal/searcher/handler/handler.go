package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/mkorolev/boolsearch/internal/analytics"
	"github.com/mkorolev/boolsearch/internal/searcher/cache"
	"github.com/mkorolev/boolsearch/internal/searcher/executor"
	"github.com/mkorolev/boolsearch/internal/searcher/parser"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
	"github.com/mkorolev/boolsearch/pkg/logger"
	"github.com/mkorolev/boolsearch/pkg/metrics"
	"github.com/mkorolev/boolsearch/pkg/middleware"
	"github.com/mkorolev/boolsearch/pkg/tracing"
)

type QueryExecutor interface {
	Execute(ctx context.Context, query string) (*executor.SearchResult, error)
}

type Handler struct {
	executor       QueryExecutor
	cache          *cache.QueryCache
	collector      *analytics.Collector
	metrics        *metrics.Metrics
	maxQueryLength int
	logger         *slog.Logger
}

func New(exec QueryExecutor, queryCache *cache.QueryCache, collector *analytics.Collector, m *metrics.Metrics, maxQueryLength int) *Handler {
	return &Handler{
		executor:       exec,
		cache:          queryCache,
		collector:      collector,
		metrics:        m,
		maxQueryLength: maxQueryLength,
		logger:         slog.Default().With("component", "search-handler"),
	}
}

func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	query := r.URL.Query().Get("q")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query parameter 'q' is required")
		return
	}
	if h.maxQueryLength > 0 && len(query) > h.maxQueryLength {
		h.writeError(w, http.StatusBadRequest,
			fmt.Sprintf("query exceeds maximum length of %d", h.maxQueryLength))
		return
	}

	// Parse up front so malformed queries are rejected before the cache
	// or executor is touched, and so the cache key is the canonical form.
	root, err := parser.Parse(query)
	if err != nil {
		log.Warn("malformed query rejected", "query", query, "error", err)
		h.trackQuery(ctx, analytics.EventSyntaxError, query, "", nil, 0, false, start)
		h.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	canonical := root.Canonical()

	ctx, span := tracing.StartSpan(ctx, "search", middleware.GetRequestID(ctx))
	defer span.End()

	var result *executor.SearchResult
	cacheHit := false

	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, canonical, func() (*executor.SearchResult, error) {
			return h.executor.Execute(ctx, query)
		})
	} else {
		result, err = h.executor.Execute(ctx, query)
	}

	if err != nil {
		if errors.Is(err, apperrors.ErrQuerySyntax) {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		log.Error("query execution failed", "query", query, "error", err)
		h.writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	log.Info("search completed",
		"query", query,
		"canonical", canonical,
		"matches", result.Total,
		"cache_hit", cacheHit,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	eventType := analytics.EventCacheMiss
	if cacheHit {
		eventType = analytics.EventCacheHit
		if h.metrics != nil {
			h.metrics.QueryLatency.WithLabelValues("hit").Observe(time.Since(start).Seconds())
		}
	}
	h.trackQuery(ctx, eventType, query, canonical, root.Terms(), result.Total, cacheHit, start)

	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) trackQuery(ctx context.Context, eventType analytics.EventType, query, canonical string, terms []string, matches int, cacheHit bool, start time.Time) {
	if h.collector == nil {
		return
	}
	h.collector.Track(analytics.QueryEvent{
		Type:      eventType,
		Query:     query,
		Canonical: canonical,
		Terms:     terms,
		Matches:   matches,
		LatencyMs: time.Since(start).Milliseconds(),
		CacheHit:  cacheHit,
		Timestamp: time.Now().UTC(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeJSON(w, http.StatusOK, map[string]string{"status": "disabled"})
		return
	}

	hits, misses := h.cache.Stats()
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}

	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"total":    total,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "caching is disabled")
		return
	}

	if err := h.cache.Invalidate(r.Context()); err != nil {
		h.logger.Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
