package config

import "testing"

func TestDefaultsWithoutFileOrEnv(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != 8000 {
		t.Fatalf("App.Port = %d, want 8000", cfg.App.Port)
	}
	if cfg.Chunking.ChunkSize != 1000 || cfg.Chunking.ChunkOverlap != 200 {
		t.Fatalf("chunking defaults = %d/%d", cfg.Chunking.ChunkSize, cfg.Chunking.ChunkOverlap)
	}
	if cfg.Embedding.BatchSize != 50 || cfg.Embedding.MaxConcurrency != 5 {
		t.Fatalf("embedding defaults = %d/%d", cfg.Embedding.BatchSize, cfg.Embedding.MaxConcurrency)
	}
	if cfg.Retrieval.TopK != 10 {
		t.Fatalf("Retrieval.TopK = %d, want 10", cfg.Retrieval.TopK)
	}
	if !cfg.NeedsMySQL() {
		t.Fatal("default index backend should need mysql")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("APP_PORT", "9100")
	t.Setenv("INDEX_BACKEND", "memory")
	t.Setenv("CATALOG_ENABLED", "false")
	t.Setenv("RETRIEVAL_TOP_K", "not-a-number")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.App.Port != 9100 {
		t.Fatalf("App.Port = %d, want 9100", cfg.App.Port)
	}
	if cfg.Index.Backend != "memory" {
		t.Fatalf("Index.Backend = %q", cfg.Index.Backend)
	}
	if cfg.NeedsMySQL() {
		t.Fatal("memory index with catalog disabled should not need mysql")
	}
	// Unparseable ints fall back to the default.
	if cfg.Retrieval.TopK != 10 {
		t.Fatalf("Retrieval.TopK = %d, want 10", cfg.Retrieval.TopK)
	}
	if cfg.HTTPAddr() != "0.0.0.0:9100" {
		t.Fatalf("HTTPAddr = %q", cfg.HTTPAddr())
	}
}

func TestMySQLDSN(t *testing.T) {
	t.Setenv("CONFIG_FILE", "does-not-exist.toml")
	t.Setenv("MYSQL_USER", "rag")
	t.Setenv("MYSQL_PASSWORD", "secret")
	t.Setenv("MYSQL_DB", "chunks")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	want := "rag:secret@tcp(127.0.0.1:3306)/chunks?parseTime=true&loc=Local&charset=utf8mb4"
	if got := cfg.MySQLDSN(); got != want {
		t.Fatalf("MySQLDSN = %q, want %q", got, want)
	}
}
