package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
)

// Config holds the service configuration.
type Config struct {
	HTTP      HTTPConfig      `yaml:"http"`
	SPARQL    SPARQLConfig    `yaml:"sparql"`
	LLM       LLMConfig       `yaml:"llm"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Cards     CardsConfig     `yaml:"cards"`
	Cache     CacheConfig     `yaml:"cache"`
	Synthesis SynthesisConfig `yaml:"synthesis"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// SPARQLConfig points at the triple store query endpoint.
type SPARQLConfig struct {
	QueryURL   string `yaml:"query_url"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// LLMConfig holds language model settings.
type LLMConfig struct {
	Provider             string  `yaml:"provider"` // ollama, openai (default: ollama)
	BaseURL              string  `yaml:"base_url"`
	Model                string  `yaml:"model"`
	APIKey               string  `yaml:"api_key"`
	TimeoutSec           int     `yaml:"timeout_sec"`
	VerbalizeTemperature float64 `yaml:"verbalize_temperature"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding server settings.
type EmbeddingConfig struct {
	Provider   string `yaml:"provider"` // metrics label, e.g. tei, ollama
	BaseURL    string `yaml:"base_url"`
	Model      string `yaml:"model"`
	APIKey     string `yaml:"api_key"`
	Dimensions int    `yaml:"dimensions"`
	BatchSize  int    `yaml:"batch_size"`
	TimeoutSec int    `yaml:"timeout_sec"`
}

// CardsConfig locates the card store artifact.
type CardsConfig struct {
	Dir       string `yaml:"dir"`
	IndexFile string `yaml:"index_file"`
	MetaFile  string `yaml:"meta_file"`
}

// CacheConfig holds the optional embedding cache. Empty Addrs disables it.
type CacheConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	TTLSec           int      `yaml:"ttl_sec"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// Enabled reports whether a cache is configured.
func (c CacheConfig) Enabled() bool { return len(c.Addrs) > 0 }

// SynthesisConfig tunes the question answering pipeline.
type SynthesisConfig struct {
	MaxRetries *int `yaml:"max_retries"` // nil means 2; 0 is a single attempt
	ContextK   int  `yaml:"context_k"`
	ShortcutK  int  `yaml:"shortcut_k"`
	// TimeoutSec bounds a whole question and must stay below http.write_timeout_sec.
	TimeoutSec int `yaml:"timeout_sec"`
}

// Retries returns the effective retry bound.
func (c SynthesisConfig) Retries() int {
	if c.MaxRetries == nil {
		return 2
	}
	return *c.MaxRetries
}

// Load reads config/<env>.yaml, or the file named by GRAPHRAG_CONFIG when
// set, expands ${VAR} references, applies defaults and validates the result.
func Load(env string) (Config, error) {
	path := os.Getenv("GRAPHRAG_CONFIG")
	if path == "" {
		path = findConfigPath(env)
	}

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(expandEnvVars(raw), &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

// GetEnv returns GRAPHRAG_ENV, then ENV, then "local".
func GetEnv() string {
	for _, key := range []string{"GRAPHRAG_ENV", "ENV"} {
		if env := os.Getenv(key); env != "" {
			return env
		}
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 300
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.SPARQL.TimeoutSec <= 0 {
		c.SPARQL.TimeoutSec = 30
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = "ollama"
	}
	if c.LLM.Model == "" {
		c.LLM.Model = "llama3.1:8b"
	}
	if c.LLM.TimeoutSec <= 0 {
		c.LLM.TimeoutSec = 120
	}
	if c.LLM.VerbalizeTemperature <= 0 {
		c.LLM.VerbalizeTemperature = 0.2
	}
	if c.Embedding.Provider == "" {
		c.Embedding.Provider = "tei"
	}
	vec := domain.DefaultVectorConfig()
	if c.Embedding.Model == "" {
		c.Embedding.Model = vec.Model
	}
	if c.Embedding.Dimensions <= 0 {
		c.Embedding.Dimensions = vec.Dimensions
	}
	if c.Embedding.BatchSize <= 0 {
		c.Embedding.BatchSize = 32
	}
	if c.Embedding.TimeoutSec <= 0 {
		c.Embedding.TimeoutSec = 30
	}
	if c.Cards.Dir == "" {
		c.Cards.Dir = "index"
	}
	if c.Cards.IndexFile == "" {
		c.Cards.IndexFile = "content.parquet"
	}
	if c.Cards.MetaFile == "" {
		c.Cards.MetaFile = "content_meta.json"
	}
	if c.Cache.TTLSec <= 0 {
		c.Cache.TTLSec = 7 * 24 * 3600
	}
	if c.Cache.ReadinessTimeout <= 0 {
		c.Cache.ReadinessTimeout = 10
	}
	if c.Synthesis.ContextK <= 0 {
		c.Synthesis.ContextK = 10
	}
	if c.Synthesis.ShortcutK <= 0 {
		c.Synthesis.ShortcutK = 25
	}
	if c.Synthesis.TimeoutSec <= 0 {
		c.Synthesis.TimeoutSec = 280
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port))
	}
	if c.SPARQL.QueryURL == "" {
		errs = append(errs, errors.New("sparql.query_url is required"))
	}
	switch c.LLM.Provider {
	case "ollama", "openai":
	default:
		errs = append(errs, fmt.Errorf("llm.provider must be \"ollama\" or \"openai\", got %q", c.LLM.Provider))
	}
	if c.Embedding.BaseURL == "" {
		errs = append(errs, errors.New("embedding.base_url is required"))
	}
	if r := c.Synthesis.Retries(); r < 0 || r > 10 {
		errs = append(errs, fmt.Errorf("synthesis.max_retries must be between 0 and 10, got %d", r))
	}
	if c.Synthesis.TimeoutSec >= c.HTTP.WriteTimeoutSec {
		errs = append(errs, fmt.Errorf("synthesis.timeout_sec (%d) must be below http.write_timeout_sec (%d)",
			c.Synthesis.TimeoutSec, c.HTTP.WriteTimeoutSec))
	}
	return errors.Join(errs...)
}

// findConfigPath prefers ./config and falls back to the repository's config
// directory, which lets tests run from any package.
func findConfigPath(env string) string {
	name := env + ".yaml"
	_, self, _, _ := runtime.Caller(0)
	root := filepath.Join(filepath.Dir(self), "..", "..")

	for _, dir := range []string{"config", filepath.Join(root, "config")} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join("config", name)
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

// expandEnvVars substitutes ${VAR} and ${VAR:-default}. An unset or empty VAR
// takes the default, or the empty string without one.
func expandEnvVars(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[2]
	})
}
