package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mkorolev/boolsearch/internal/analytics"
	"github.com/mkorolev/boolsearch/internal/index"
	"github.com/mkorolev/boolsearch/internal/searcher/cache"
	"github.com/mkorolev/boolsearch/internal/searcher/executor"
	"github.com/mkorolev/boolsearch/internal/searcher/handler"
	"github.com/mkorolev/boolsearch/pkg/config"
	"github.com/mkorolev/boolsearch/pkg/health"
	"github.com/mkorolev/boolsearch/pkg/kafka"
	"github.com/mkorolev/boolsearch/pkg/logger"
	"github.com/mkorolev/boolsearch/pkg/metrics"
	"github.com/mkorolev/boolsearch/pkg/middleware"
	"github.com/mkorolev/boolsearch/pkg/proto"
	pkgredis "github.com/mkorolev/boolsearch/pkg/redis"
	"github.com/mkorolev/boolsearch/pkg/rpc"
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
	slog.Info("starting search service", "port", cfg.Server.Port, "corpus", cfg.Corpus.DocsPath)

	m := metrics.New()
	if cfg.Metrics.Enabled {
		shutdownMetrics := metrics.StartServer(cfg.Metrics.Port)
		defer shutdownMetrics(context.Background())
	}

	loadStart := time.Now()
	ix, err := index.LoadCorpus(cfg.Corpus.DocsPath)
	if err != nil {
		slog.Error("failed to load corpus", "path", cfg.Corpus.DocsPath, "error", err)
		os.Exit(1)
	}
	m.IndexDocuments.Set(float64(ix.DocCount()))
	m.IndexTerms.Set(float64(ix.TermCount()))
	slog.Info("corpus loaded",
		"documents", ix.DocCount(),
		"terms", ix.TermCount(),
		"elapsed", time.Since(loadStart).Round(time.Millisecond),
	)

	var queryCache *cache.QueryCache
	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, query caching disabled", "error", err)
	} else {
		defer redisClient.Close()
		queryCache = cache.New(redisClient, cfg.Redis, m)
		slog.Info("query cache enabled",
			"addr", cfg.Redis.Addr,
			"ttl", cfg.Redis.CacheTTL,
		)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	analyticsProducer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents)
	collector := analytics.NewCollector(analyticsProducer, 10000)
	collector.Start(ctx)
	defer collector.Close()
	slog.Info("analytics collector started", "topic", cfg.Kafka.Topics.AnalyticsEvents)

	aggregator := analytics.NewAggregator(nil)
	aggregator.SetConsumer(kafka.NewConsumer(cfg.Kafka, cfg.Kafka.Topics.AnalyticsEvents,
		analytics.HandleEvent(aggregator)))
	analyticsH := analytics.NewHandler(aggregator)

	go func() {
		if err := aggregator.Start(ctx); err != nil {
			slog.Error("analytics aggregator error", "error", err)
		}
	}()
	slog.Info("analytics aggregator started")

	checker := health.NewChecker()
	checker.Register("index", func(ctx context.Context) health.ComponentHealth {
		if ix.Frozen() && ix.DocCount() > 0 {
			return health.ComponentHealth{
				Status:  health.StatusUp,
				Message: fmt.Sprintf("%d documents, %d terms", ix.DocCount(), ix.TermCount()),
			}
		}
		return health.ComponentHealth{Status: health.StatusDown, Message: "index empty or not frozen"}
	})
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	exec := executor.New(ix, m)
	h := handler.New(exec, queryCache, collector, m, cfg.Search.MaxQueryLength)

	rpcServer := rpc.NewServer()
	rpcServer.Register("Search.Evaluate", func(ctx context.Context, params json.RawMessage) (any, error) {
		var req proto.EvaluateRequest
		if err := json.Unmarshal(params, &req); err != nil {
			return nil, fmt.Errorf("decoding evaluate request: %w", err)
		}
		start := time.Now()
		result, err := exec.Execute(ctx, req.Query)
		if err != nil {
			return nil, err
		}
		return &proto.EvaluateResponse{
			Query:     result.Query,
			Canonical: result.Canonical,
			Total:     int32(result.Total),
			DocIDs:    result.DocIDs,
			LatencyMs: time.Since(start).Milliseconds(),
		}, nil
	})
	rpcServer.Register("Search.Stats", func(ctx context.Context, params json.RawMessage) (any, error) {
		return &proto.StatsResponse{
			TotalDocs:  int64(ix.DocCount()),
			TotalTerms: int64(ix.TermCount()),
			Frozen:     ix.Frozen(),
		}, nil
	})
	go func() {
		if err := rpcServer.Serve(fmt.Sprintf(":%d", cfg.Server.RPCPort)); err != nil {
			slog.Error("rpc server error", "error", err)
		}
	}()
	defer rpcServer.Stop()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/search", h.Search)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/invalidate", h.CacheInvalidate)
	mux.HandleFunc("GET /api/v1/analytics", analyticsH.Stats)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Metrics(m)(chain)
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.RequestID(chain)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("search service listening", "addr", server.Addr, "rpc_port", cfg.Server.RPCPort)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("search service stopped")
}
