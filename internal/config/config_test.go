package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:      HTTPConfig{Port: 8080},
		SPARQL:    SPARQLConfig{QueryURL: "http://localhost:3030/unibasq/query"},
		Embedding: EmbeddingConfig{BaseURL: "http://localhost:8081/v1"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "llama3.1:8b" {
		t.Errorf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.SPARQL.TimeoutSec != 30 || cfg.LLM.TimeoutSec != 120 {
		t.Errorf("unexpected timeouts: sparql=%d llm=%d", cfg.SPARQL.TimeoutSec, cfg.LLM.TimeoutSec)
	}
	if cfg.Cards.IndexFile != "content.parquet" || cfg.Cards.MetaFile != "content_meta.json" {
		t.Errorf("unexpected card files: %+v", cfg.Cards)
	}
	if cfg.Synthesis.Retries() != 2 || cfg.Synthesis.ContextK != 10 || cfg.Synthesis.ShortcutK != 25 {
		t.Errorf("unexpected synthesis defaults: %+v", cfg.Synthesis)
	}
	if cfg.Synthesis.TimeoutSec >= cfg.HTTP.WriteTimeoutSec {
		t.Errorf("ask timeout %ds must be below write timeout %ds", cfg.Synthesis.TimeoutSec, cfg.HTTP.WriteTimeoutSec)
	}
	if cfg.Cache.Enabled() {
		t.Error("cache should be disabled without addrs")
	}
}

func TestSynthesisRetries_ExplicitZero(t *testing.T) {
	zero := 0
	cfg := validConfig()
	cfg.Synthesis.MaxRetries = &zero

	if cfg.Synthesis.Retries() != 0 {
		t.Errorf("expected 0 retries, got %d", cfg.Synthesis.Retries())
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate(t *testing.T) {
	tooMany := 50
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"no sparql url", func(c *Config) { c.SPARQL.QueryURL = "" }, "sparql.query_url"},
		{"bad provider", func(c *Config) { c.LLM.Provider = "gemini" }, `llm.provider must be "ollama" or "openai", got "gemini"`},
		{"no embedding url", func(c *Config) { c.Embedding.BaseURL = "" }, "embedding.base_url"},
		{"too many retries", func(c *Config) { c.Synthesis.MaxRetries = &tooMany }, "synthesis.max_retries"},
		{"ask outlives write timeout", func(c *Config) { c.Synthesis.TimeoutSec = 300 }, "synthesis.timeout_sec (300) must be below http.write_timeout_sec (300)"},
		{"short write timeout", func(c *Config) { c.HTTP.WriteTimeoutSec = 60 }, "synthesis.timeout_sec"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Errorf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("GRAPHRAG_TEST_URL", "http://fuseki:3030/ds/query")
	t.Setenv("GRAPHRAG_TEST_EMPTY", "")

	got := string(expandEnvVars([]byte("a: ${GRAPHRAG_TEST_URL}\nb: ${GRAPHRAG_TEST_EMPTY:-fallback}\nc: ${GRAPHRAG_TEST_UNSET}")))
	want := "a: http://fuseki:3030/ds/query\nb: fallback\nc: "
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestLoad_Local(t *testing.T) {
	t.Setenv("GRAPHRAG_CONFIG", "")
	t.Setenv("SPARQL_QUERY_URL", "http://example.org/sparql")

	cfg, err := Load("local")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.SPARQL.QueryURL != "http://example.org/sparql" {
		t.Errorf("query url = %q", cfg.SPARQL.QueryURL)
	}
	if cfg.Synthesis.Retries() != 2 {
		t.Errorf("max retries = %d", cfg.Synthesis.Retries())
	}
}

func TestValidate_ReportsAllProblems(t *testing.T) {
	cfg := validConfig()
	cfg.HTTP.Port = -1
	cfg.SPARQL.QueryURL = ""

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	for _, want := range []string{"http.port", "sparql.query_url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("error %q does not mention %q", err.Error(), want)
		}
	}
}

func TestLoad_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	body := "http:\n  port: 9000\nsparql:\n  query_url: http://fuseki:3030/unibasq/sparql\nembedding:\n  base_url: http://tei:8080/v1\n"
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("GRAPHRAG_CONFIG", path)

	cfg, err := Load("ignored")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HTTP.Port != 9000 || cfg.LLM.Provider != "ollama" {
		t.Errorf("unexpected config: port=%d provider=%q", cfg.HTTP.Port, cfg.LLM.Provider)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("GRAPHRAG_ENV", "")
	t.Setenv("ENV", "prod")
	if got := GetEnv(); got != "prod" {
		t.Errorf("GetEnv() = %q", got)
	}
	t.Setenv("GRAPHRAG_ENV", "dev")
	if got := GetEnv(); got != "dev" {
		t.Errorf("GetEnv() = %q", got)
	}
}
