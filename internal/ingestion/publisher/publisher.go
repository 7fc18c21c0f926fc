// Package publisher persists documents to PostgreSQL and publishes ingest
// events to Kafka for downstream indexing. It supports idempotent writes and
// retries transient Kafka failures with backoff.
package publisher

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkorolev/boolsearch/internal/ingestion"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
	"github.com/mkorolev/boolsearch/pkg/kafka"
	"github.com/mkorolev/boolsearch/pkg/postgres"
	"github.com/mkorolev/boolsearch/pkg/resilience"
)

// Publisher coordinates document persistence and Kafka event production.
type Publisher struct {
	db       *postgres.Client
	producer *kafka.Producer
	retry    resilience.RetryConfig
	logger   *slog.Logger
}

// New creates a Publisher with the given database and Kafka producer.
func New(db *postgres.Client, producer *kafka.Producer) *Publisher {
	return &Publisher{
		db:       db,
		producer: producer,
		retry: resilience.RetryConfig{
			MaxAttempts:    5,
			InitialDelay:   200 * time.Millisecond,
			MaxDelay:       5 * time.Second,
			Multiplier:     2.0,
			JitterFraction: 0.2,
		},
		logger: slog.Default().With("component", "publisher"),
	}
}

// Ingest persists the document in PostgreSQL and publishes an IngestEvent to
// Kafka. Duplicate idempotency keys return the previously accepted response
// without re-insertion; duplicate document IDs are rejected.
func (p *Publisher) Ingest(ctx context.Context, req *ingestion.IngestRequest) (*ingestion.IngestResponse, error) {
	contentHash := fmt.Sprintf("%x", sha256.Sum256([]byte(req.Body)))
	if req.IdempotencyKey != "" {
		existing, err := p.findByIdempotencyKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, fmt.Errorf("checking idempotency key: %w", err)
		}
		if existing != nil {
			p.logger.Info("duplicate ingestion detected",
				"idempotency_key", req.IdempotencyKey,
				"existing_id", existing.DocumentID,
			)
			return existing, nil
		}
	}

	err := p.db.InTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO documents (doc_id, title, content_hash, content_size, idempotency_key, status)
		VALUES ($1, $2, $3, $4, $5, 'PENDING')
		ON CONFLICT (doc_id) DO NOTHING`,
			req.DocumentID, req.Title, contentHash, len(req.Body), nullableString(req.IdempotencyKey))
		if err != nil {
			return err
		}
		inserted, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if inserted == 0 {
			return apperrors.Newf(apperrors.ErrDocumentExists, 409,
				"document %q already ingested", req.DocumentID)
		}
		return nil
	})
	if err != nil {
		if apperrors.HTTPStatusCode(err) == 409 {
			return nil, err
		}
		return nil, fmt.Errorf("inserting document: %w", err)
	}

	event := kafka.Event{
		Key: req.DocumentID,
		Value: ingestion.IngestEvent{
			DocumentID: req.DocumentID,
			Title:      req.Title,
			Body:       req.Body,
			IngestedAt: time.Now().UTC(),
		},
	}

	publishErr := resilience.Retry(ctx, "kafka-ingest-publish", p.retry, func() error {
		return p.producer.Publish(ctx, event)
	})
	if publishErr != nil {
		p.logger.Error("failed to publish to kafka, document stuck in PENDING",
			"doc_id", req.DocumentID,
			"error", publishErr,
		)
	}
	return &ingestion.IngestResponse{
		DocumentID: req.DocumentID,
		Status:     "PENDING",
	}, nil
}

// findByIdempotencyKey checks if a document with the given idempotency key
// already exists and returns its status.
func (p *Publisher) findByIdempotencyKey(ctx context.Context, key string) (*ingestion.IngestResponse, error) {
	var resp ingestion.IngestResponse
	err := p.db.DB.QueryRowContext(ctx,
		`SELECT doc_id, status FROM documents WHERE idempotency_key=$1`, key).Scan(&resp.DocumentID, &resp.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying by idempotency key: %w", err)
	}
	return &resp, nil
}

// nullableString converts a Go string to a sql.NullString, treating the
// empty string as NULL.
func nullableString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
