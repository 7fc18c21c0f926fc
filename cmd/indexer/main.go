package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/mkorolev/boolsearch/internal/analytics"
	"github.com/mkorolev/boolsearch/internal/indexer"
	"github.com/mkorolev/boolsearch/internal/indexer/consumer"
	"github.com/mkorolev/boolsearch/pkg/config"
	"github.com/mkorolev/boolsearch/pkg/kafka"
	"github.com/mkorolev/boolsearch/pkg/logger"
	"github.com/mkorolev/boolsearch/pkg/metrics"
	"github.com/mkorolev/boolsearch/pkg/postgres"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting indexer service", "corpus", cfg.Corpus.DocsPath)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	writer, err := indexer.NewWriter(cfg.Corpus.DocsPath, m)
	if err != nil {
		slog.Error("failed to open corpus for writing", "error", err)
		os.Exit(1)
	}

	var statusDB *sql.DB
	db, err := postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, document status tracking disabled", "error", err)
	} else {
		defer db.Close()
		statusDB = db.DB
		slog.Info("connected to postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer analyticsProducer.Close()
	collector := analytics.NewCollector(analyticsProducer, 1000)
	collector.Start(ctx)
	defer collector.Close()

	handler := consumer.HandleMessage(writer, statusDB, collector)
	kafkaConsumer := kafka.NewConsumer(
		cfg.Kafka,
		cfg.Kafka.Topics.DocumentIngest,
		handler,
	)

	indexConsumer := consumer.New(kafkaConsumer)

	slog.Info("indexer service ready, consuming from kafka",
		"topic", cfg.Kafka.Topics.DocumentIngest,
		"group", cfg.Kafka.ConsumerGroup,
		"documents", writer.DocCount(),
	)

	if err := indexConsumer.Start(ctx); err != nil {
		slog.Error("consumer error", "error", err)
	}

	slog.Info("indexer service stopped", "documents", writer.DocCount())
}
