package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/evaluator"
	"github.com/mkorolev/boolsearch/internal/searcher/parser"
	"github.com/mkorolev/boolsearch/pkg/metrics"
	"github.com/mkorolev/boolsearch/pkg/tracing"
)

// SearchResult is the outcome of evaluating one boolean query.
type SearchResult struct {
	Query     string   `json:"query"`
	Canonical string   `json:"canonical"`
	Total     int      `json:"total"`
	DocIDs    []string `json:"doc_ids"`
}

// Executor evaluates boolean queries against a frozen index.
type Executor struct {
	ix      *index.Index
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates an Executor. m may be nil to disable instrumentation.
func New(ix *index.Index, m *metrics.Metrics) *Executor {
	return &Executor{
		ix:      ix,
		metrics: m,
		logger:  slog.Default().With("component", "query-executor"),
	}
}

// Execute parses the query and evaluates the resulting expression tree.
// Malformed queries fail with an error wrapping errors.ErrQuerySyntax;
// they are never evaluated best-effort.
func (e *Executor) Execute(ctx context.Context, query string) (*SearchResult, error) {
	start := time.Now()

	parseCtx, parseSpan := tracing.StartChildSpan(ctx, "parse")
	root, err := parser.Parse(query)
	parseSpan.End()
	if err != nil {
		e.countQuery("syntax_error")
		return nil, fmt.Errorf("parsing query %q: %w", query, err)
	}

	_, evalSpan := tracing.StartChildSpan(parseCtx, "evaluate")
	docs := evaluator.Evaluate(root, e.ix)
	evalSpan.SetAttr("matches", docs.Len())
	evalSpan.End()

	outcome := "ok"
	if docs.Len() == 0 {
		outcome = "zero_result"
	}
	e.countQuery(outcome)
	if e.metrics != nil {
		e.metrics.QueryResultSize.Observe(float64(docs.Len()))
		e.metrics.QueryLatency.WithLabelValues("miss").Observe(time.Since(start).Seconds())
	}

	e.logger.Debug("query evaluated",
		"query", query,
		"matches", docs.Len(),
		"elapsed", time.Since(start).Round(time.Microsecond),
	)
	return &SearchResult{
		Query:     query,
		Canonical: root.Canonical(),
		Total:     docs.Len(),
		DocIDs:    docs.Sorted(),
	}, nil
}

// Evaluate is like Execute but returns the raw document set, for
// callers that combine results rather than serve them.
func (e *Executor) Evaluate(ctx context.Context, query string) (index.DocSet, error) {
	root, err := parser.Parse(query)
	if err != nil {
		e.countQuery("syntax_error")
		return nil, fmt.Errorf("parsing query %q: %w", query, err)
	}
	docs := evaluator.Evaluate(root, e.ix)
	if docs.Len() == 0 {
		e.countQuery("zero_result")
	} else {
		e.countQuery("ok")
	}
	return docs, nil
}

func (e *Executor) countQuery(outcome string) {
	if e.metrics != nil {
		e.metrics.QueriesTotal.WithLabelValues(outcome).Inc()
	}
}
