package submission

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkorolev/boolsearch/pkg/postgres"
	"github.com/mkorolev/boolsearch/pkg/resilience"
)

const saveTimeout = 30 * time.Second

// MatchStore persists (queryID, docID) matches to PostgreSQL so a batch
// run's output can be inspected and joined against later runs.
type MatchStore struct {
	db     *postgres.Client
	logger *slog.Logger
}

func NewMatchStore(db *postgres.Client) *MatchStore {
	return &MatchStore{
		db:     db,
		logger: slog.Default().With("component", "match-store"),
	}
}

// Save replaces the stored matches for every query present in results.
// The whole write runs in one transaction: a batch run either lands
// completely or not at all.
func (s *MatchStore) Save(ctx context.Context, results *Results) error {
	queryIDs := results.QueryIDs()
	if len(queryIDs) == 0 {
		return nil
	}
	start := time.Now()
	var rows int

	err := resilience.WithTimeout(ctx, saveTimeout, "save-matches", func(ctx context.Context) error {
		return s.db.InTx(ctx, func(tx *sql.Tx) error {
			stmt, err := tx.PrepareContext(ctx,
				`INSERT INTO query_matches (query_id, doc_id) VALUES ($1, $2)`)
			if err != nil {
				return fmt.Errorf("preparing insert: %w", err)
			}
			defer stmt.Close()

			for _, queryID := range queryIDs {
				if _, err := tx.ExecContext(ctx,
					`DELETE FROM query_matches WHERE query_id = $1`, queryID); err != nil {
					return fmt.Errorf("clearing matches for query %d: %w", queryID, err)
				}
				for _, docID := range results.Docs(queryID).Sorted() {
					if _, err := stmt.ExecContext(ctx, queryID, docID); err != nil {
						return fmt.Errorf("inserting match (%d, %s): %w", queryID, docID, err)
					}
					rows++
				}
			}
			return nil
		})
	})
	if err != nil {
		return fmt.Errorf("saving matches: %w", err)
	}

	s.logger.Info("matches saved",
		"queries", len(queryIDs),
		"rows", rows,
		"elapsed", time.Since(start).Round(time.Millisecond),
	)
	return nil
}
