// Package consumer reads ingestion events from Kafka and folds them into the
// corpus file, updating document status in PostgreSQL along the way.
package consumer

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mkorolev/boolsearch/internal/analytics"
	"github.com/mkorolev/boolsearch/internal/indexer"
	"github.com/mkorolev/boolsearch/internal/ingestion"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
	"github.com/mkorolev/boolsearch/pkg/kafka"
)

// IndexConsumer wraps a Kafka consumer to drive the corpus append pipeline.
type IndexConsumer struct {
	consumer *kafka.Consumer
	logger   *slog.Logger
}

// New creates an IndexConsumer backed by the given Kafka consumer.
func New(kafkaConsumer *kafka.Consumer) *IndexConsumer {
	return &IndexConsumer{
		consumer: kafkaConsumer,
		logger:   slog.Default().With("component", "index-consumer"),
	}
}

// Start begins consuming Kafka messages. It blocks until ctx is cancelled.
func (ic *IndexConsumer) Start(ctx context.Context) error {
	ic.logger.Info("index consumer starting")
	return ic.consumer.Start(ctx)
}

// HandleMessage returns a Kafka MessageHandler that appends every ingest
// event to the corpus via the Writer. If db is non-nil, the document status
// is updated from PENDING to INDEXED in PostgreSQL after a successful
// append. If collector is non-nil, an IndexEvent is emitted per document.
func HandleMessage(writer *indexer.Writer, db *sql.DB, collector *analytics.Collector) kafka.MessageHandler {
	logger := slog.Default().With("component", "index-consumer")
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ingestion.IngestEvent](value)
		if err != nil {
			logger.Error("failed to decode ingest event",
				"error", err,
				"key", string(key),
			)
			return nil
		}

		termCount, err := writer.Append(event.DocumentID, event.Title, event.Body)
		if err != nil {
			if errors.Is(err, apperrors.ErrDocumentExists) {
				// Redelivered message; the document is already in the
				// corpus, so just make sure the status reflects that.
				logger.Warn("duplicate ingest event skipped", "doc_id", event.DocumentID)
				updateDocStatus(ctx, db, event.DocumentID, "INDEXED", logger)
				return nil
			}
			updateDocStatus(ctx, db, event.DocumentID, "FAILED", logger)
			return fmt.Errorf("appending document %s: %w", event.DocumentID, err)
		}

		updateDocStatus(ctx, db, event.DocumentID, "INDEXED", logger)

		if collector != nil {
			collector.Track(analytics.IndexEvent{
				Type:       analytics.EventIndexDoc,
				DocumentID: event.DocumentID,
				TermCount:  termCount,
				Timestamp:  time.Now().UTC(),
			})
		}

		logger.Info("document indexed",
			"doc_id", event.DocumentID,
			"term_count", termCount,
		)
		return nil
	}
}

// updateDocStatus updates the document's status and indexed_at timestamp in PostgreSQL.
// If db is nil, the update is silently skipped.
func updateDocStatus(ctx context.Context, db *sql.DB, docID, status string, logger *slog.Logger) {
	if db == nil {
		return
	}
	_, err := db.ExecContext(ctx,
		`UPDATE documents SET status = $1, indexed_at = NOW() WHERE doc_id = $2`,
		status, docID,
	)
	if err != nil {
		logger.Error("failed to update document status",
			"doc_id", docID,
			"status", status,
			"error", err,
		)
	}
}
