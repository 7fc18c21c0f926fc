package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Server.RPCPort != 9000 {
		t.Errorf("Server.RPCPort = %d, want 9000", cfg.Server.RPCPort)
	}
	if cfg.Kafka.Topics.DocumentIngest != "document-ingest" {
		t.Errorf("Topics.DocumentIngest = %q", cfg.Kafka.Topics.DocumentIngest)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v", cfg.Redis.CacheTTL)
	}
	if cfg.Corpus.DocsPath != "data/docs.tsv" {
		t.Errorf("Corpus.DocsPath = %q", cfg.Corpus.DocsPath)
	}
	if cfg.Search.MaxQueryLength != 4096 {
		t.Errorf("Search.MaxQueryLength = %d", cfg.Search.MaxQueryLength)
	}
}

func TestLoadFromFile(t *testing.T) {
	content := `
server:
  port: 8181
  rpcPort: 9100
redis:
  addr: "redis.internal:6379"
corpus:
  docsPath: /var/lib/boolsearch/docs.tsv
search:
  maxQueryLength: 512
logging:
  level: debug
  format: text
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8181 {
		t.Errorf("Server.Port = %d, want 8181", cfg.Server.Port)
	}
	if cfg.Server.RPCPort != 9100 {
		t.Errorf("Server.RPCPort = %d, want 9100", cfg.Server.RPCPort)
	}
	if cfg.Redis.Addr != "redis.internal:6379" {
		t.Errorf("Redis.Addr = %q", cfg.Redis.Addr)
	}
	if cfg.Redis.CacheTTL != 60*time.Second {
		t.Errorf("Redis.CacheTTL = %v, want default 60s", cfg.Redis.CacheTTL)
	}
	if cfg.Corpus.DocsPath != "/var/lib/boolsearch/docs.tsv" {
		t.Errorf("Corpus.DocsPath = %q", cfg.Corpus.DocsPath)
	}
	if cfg.Search.MaxQueryLength != 512 {
		t.Errorf("Search.MaxQueryLength = %d, want 512", cfg.Search.MaxQueryLength)
	}
	if cfg.Logging.Level != "debug" || cfg.Logging.Format != "text" {
		t.Errorf("Logging = %+v", cfg.Logging)
	}
	// Unset fields keep their defaults.
	if cfg.Postgres.Port != 5432 {
		t.Errorf("Postgres.Port = %d, want default 5432", cfg.Postgres.Port)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("does-not-exist.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("BS_SERVER_PORT", "7070")
	t.Setenv("BS_POSTGRES_HOST", "pg.internal")
	t.Setenv("BS_KAFKA_BROKERS", "k1:9092,k2:9092")
	t.Setenv("BS_CORPUS_DOCS_PATH", "/data/docs.tsv")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 7070 {
		t.Errorf("Server.Port = %d, want 7070", cfg.Server.Port)
	}
	if cfg.Postgres.Host != "pg.internal" {
		t.Errorf("Postgres.Host = %q", cfg.Postgres.Host)
	}
	if len(cfg.Kafka.Brokers) != 2 || cfg.Kafka.Brokers[1] != "k2:9092" {
		t.Errorf("Kafka.Brokers = %v", cfg.Kafka.Brokers)
	}
	if cfg.Corpus.DocsPath != "/data/docs.tsv" {
		t.Errorf("Corpus.DocsPath = %q", cfg.Corpus.DocsPath)
	}
}

func TestEnvOverridesIgnoreBadNumbers(t *testing.T) {
	t.Setenv("BS_SERVER_PORT", "not-a-port")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("Server.Port = %d, want default 8080", cfg.Server.Port)
	}
}

func TestPostgresDSN(t *testing.T) {
	p := PostgresConfig{Host: "db", Port: 5433, User: "u", Password: "p", Database: "d", SSLMode: "disable"}
	want := "host=db port=5433 user=u password=p dbname=d sslmode=disable"
	if got := p.DSN(); got != want {
		t.Errorf("DSN() = %q, want %q", got, want)
	}
}
