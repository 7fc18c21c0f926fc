// Command batchsearch runs the offline retrieval pipeline: it loads the
// corpus, evaluates a file of boolean queries against it, and labels an
// objects file to produce a submission CSV.
//
// Usage:
//
//	go run ./cmd/batchsearch \
//	    -queries data/queries.numerate.txt \
//	    -objects data/objects.numerate.txt \
//	    -docs data/docs.tsv \
//	    -submission output.csv
//
// With -remote the queries are evaluated by a running searcher's RPC
// endpoint instead of a locally built index. With -save-matches the
// per-query match sets are also persisted to PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/mkorolev/boolsearch/internal/analytics"
	"github.com/mkorolev/boolsearch/internal/analytics/collector"
	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/executor"
	"github.com/mkorolev/boolsearch/internal/submission"
	"github.com/mkorolev/boolsearch/pkg/config"
	apperrors "github.com/mkorolev/boolsearch/pkg/errors"
	"github.com/mkorolev/boolsearch/pkg/kafka"
	"github.com/mkorolev/boolsearch/pkg/logger"
	"github.com/mkorolev/boolsearch/pkg/postgres"
	"github.com/mkorolev/boolsearch/pkg/proto"
	"github.com/mkorolev/boolsearch/pkg/rpc"
)

func main() {
	var (
		configPath  = flag.String("config", "", "path to config file (optional)")
		queriesPath = flag.String("queries", "data/queries.numerate.txt", "tab-separated query file (id<TAB>expression)")
		objectsPath = flag.String("objects", "data/objects.numerate.txt", "objects file (ObjectId,QueryId,DocumentId)")
		docsPath    = flag.String("docs", "", "corpus file; overrides the configured path")
		outPath     = flag.String("submission", "submission.csv", "output CSV path")
		workers     = flag.Int("workers", 0, "concurrent query evaluations (default from config)")
		remoteAddr  = flag.String("remote", "", "evaluate via a searcher RPC endpoint instead of a local index")
		saveMatches = flag.Bool("save-matches", false, "persist per-query match sets to PostgreSQL")
		publish     = flag.Bool("publish-events", false, "publish per-query analytics events to Kafka")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)

	corpusPath := cfg.Corpus.DocsPath
	if *docsPath != "" {
		corpusPath = *docsPath
	}
	if *workers <= 0 {
		*workers = cfg.Search.MaxConcurrentQueries
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	queries, err := submission.ReadQueriesFile(*queriesPath)
	if err != nil {
		slog.Error("failed to read queries", "path", *queriesPath, "error", err)
		os.Exit(1)
	}
	slog.Info("queries loaded", "path", *queriesPath, "count", len(queries))

	var results *submission.Results
	var failures []executor.QueryError

	if *remoteAddr != "" {
		results, failures, err = evaluateRemote(ctx, *remoteAddr, queries, *workers)
	} else {
		var ix *index.Index
		start := time.Now()
		ix, err = index.LoadCorpus(corpusPath)
		if err != nil {
			slog.Error("failed to load corpus", "path", corpusPath, "error", err)
			os.Exit(1)
		}
		slog.Info("corpus loaded",
			"path", corpusPath,
			"documents", ix.DocCount(),
			"terms", ix.TermCount(),
			"elapsed", time.Since(start).Round(time.Millisecond),
		)
		exec := executor.New(ix, nil)
		results, failures, err = exec.ExecuteBatch(ctx, queries, *workers)
	}
	if err != nil {
		slog.Error("batch evaluation failed", "error", err)
		os.Exit(1)
	}
	for _, f := range failures {
		slog.Warn("query skipped", "query_id", f.QueryID, "error", f.Err)
	}

	if *publish {
		publishEvents(ctx, cfg, queries, results)
	}

	if *saveMatches {
		db, err := postgres.New(cfg.Postgres)
		if err != nil {
			slog.Error("failed to connect to postgres", "error", err)
			os.Exit(1)
		}
		store := submission.NewMatchStore(db)
		if err := store.Save(ctx, results); err != nil {
			db.Close()
			slog.Error("failed to save matches", "error", err)
			os.Exit(1)
		}
		db.Close()
		slog.Info("match sets saved to postgres", "queries", results.Len())
	}

	if err := submission.WriteSubmissionFile(*objectsPath, *outPath, results); err != nil {
		slog.Error("failed to write submission", "error", err)
		os.Exit(1)
	}
	slog.Info("submission written",
		"path", *outPath,
		"queries", results.Len(),
		"skipped", len(failures),
	)
}

// evaluateRemote runs every query through a searcher's Search.Evaluate RPC.
// Queries rejected as malformed are reported as failures and skipped, like
// the local batch path; any other error aborts the run.
func evaluateRemote(ctx context.Context, addr string, queries []submission.Query, workers int) (*submission.Results, []executor.QueryError, error) {
	results := submission.NewResults()
	var mu sync.Mutex
	var failures []executor.QueryError

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	clients := make(chan *rpc.Client, workers)
	for i := 0; i < workers; i++ {
		c, err := rpc.Dial(addr)
		if err != nil {
			close(clients)
			for cl := range clients {
				cl.Close()
			}
			return nil, nil, fmt.Errorf("dialing %s: %w", addr, err)
		}
		clients <- c
	}
	defer func() {
		close(clients)
		for c := range clients {
			c.Close()
		}
	}()

	for _, q := range queries {
		q := q
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			c := <-clients
			var resp proto.EvaluateResponse
			err := c.Call("Search.Evaluate", &proto.EvaluateRequest{Query: q.Text}, &resp)
			clients <- c
			if err != nil {
				if strings.Contains(err.Error(), apperrors.ErrQuerySyntax.Error()) {
					mu.Lock()
					failures = append(failures, executor.QueryError{QueryID: q.ID, Err: err})
					mu.Unlock()
					return nil
				}
				return fmt.Errorf("evaluating query %d: %w", q.ID, err)
			}
			docs := index.NewDocSet(resp.DocIDs...)
			results.Add(q.ID, docs)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, failures, nil
}

// publishEvents emits one analytics event per evaluated query through the
// batching Kafka collector.
func publishEvents(ctx context.Context, cfg *config.Config, queries []submission.Query, results *submission.Results) {
	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	defer producer.Close()

	bc := collector.NewBatchCollector(producer, 500, 2*time.Second)
	bcCtx, cancel := context.WithCancel(ctx)
	bc.Start(bcCtx)

	now := time.Now().UTC()
	for _, q := range queries {
		docs := results.Docs(q.ID)
		if docs == nil {
			continue
		}
		bc.Track("query", analytics.QueryEvent{
			Type:      analytics.EventQuery,
			QueryID:   q.ID,
			Query:     q.Text,
			Matches:   docs.Len(),
			Timestamp: now,
		})
	}
	cancel()
	bc.Close()
	slog.Info("analytics events published", "count", results.Len())
}
