package executor

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/mkorolev/boolsearch/pkg/errors"

	"github.com/mkorolev/boolsearch/internal/submission"
	"golang.org/x/sync/errgroup"
)

// QueryError records a query that could not be evaluated in a batch.
type QueryError struct {
	QueryID int
	Err     error
}

func (qe QueryError) Error() string {
	return fmt.Sprintf("query %d: %v", qe.QueryID, qe.Err)
}

// ExecuteBatch evaluates every query concurrently (at most workers at a
// time) and records each query's matches in the returned Results.
//
// Queries are isolated from one another: a malformed query is reported
// in the QueryError slice and skipped, never aborting the rest of the
// batch. Only context cancellation stops the run early.
func (e *Executor) ExecuteBatch(ctx context.Context, queries []submission.Query, workers int) (*submission.Results, []QueryError, error) {
	if workers <= 0 {
		workers = 1
	}
	results := submission.NewResults()
	failures := make([]QueryError, 0)
	failureCh := make(chan QueryError, len(queries))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, q := range queries {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := e.Evaluate(ctx, q.Text)
			if err != nil {
				if errors.Is(err, apperrors.ErrQuerySyntax) {
					failureCh <- QueryError{QueryID: q.ID, Err: err}
					return nil
				}
				return QueryError{QueryID: q.ID, Err: err}
			}
			results.Add(q.ID, docs)
			return nil
		})
	}
	err := g.Wait()
	close(failureCh)
	for qe := range failureCh {
		failures = append(failures, qe)
		e.logger.Warn("query skipped", "query_id", qe.QueryID, "error", qe.Err)
	}
	if err != nil {
		return nil, failures, fmt.Errorf("batch evaluation: %w", err)
	}

	e.logger.Info("batch evaluated",
		"queries", len(queries),
		"succeeded", results.Len(),
		"skipped", len(failures),
	)
	return results, failures, nil
}
