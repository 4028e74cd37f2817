package graphrag

import (
	"time"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	cardsDir  string
	indexFile string
	metaFile  string

	sparqlURL     string
	sparqlTimeout time.Duration

	llmProvider string // "ollama", "openai" or "custom"
	llmBaseURL  string
	llmModel    string
	llmAPIKey   string
	llmTimeout  time.Duration
	generator   Generator

	embBaseURL  string
	embAPIKey   string
	embModel    string
	embProvider string
	embBatch    int
	embTimeout  time.Duration
	embedder    Embedder

	cacheAddrs     []string
	cacheUsername  string
	cachePassword  string
	cacheTTL       time.Duration
	cacheReadiness time.Duration

	maxRetries           int
	askTimeout           time.Duration
	contextK             int
	shortcutK            int
	verbalizeTemperature float64
	noShortcut           bool

	logger *zap.Logger
	tracer trace.Tracer
}

// WithCardStore sets the card store directory. Empty file names use the defaults
// content.parquet and content_meta.json.
func WithCardStore(dir, indexFile, metaFile string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cardsDir = dir
		c.indexFile = indexFile
		c.metaFile = metaFile
	})
}

// WithSPARQL sets the query endpoint of the triple store.
func WithSPARQL(queryURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.sparqlURL = queryURL
	})
}

// WithSPARQLTimeout bounds a single query execution. Default: 30s.
func WithSPARQLTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.sparqlTimeout = d
	})
}

// WithOllama generates with an Ollama server's /api/generate endpoint.
func WithOllama(baseURL, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmProvider = "ollama"
		c.llmBaseURL = baseURL
		c.llmModel = model
	})
}

// WithOpenAI generates with an OpenAI-compatible chat completions endpoint.
func WithOpenAI(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmProvider = "openai"
		c.llmBaseURL = baseURL
		c.llmAPIKey = apiKey
		c.llmModel = model
	})
}

// WithLLMTimeout bounds a single generation call. Default: 120s.
func WithLLMTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmTimeout = d
	})
}

// WithAskTimeout bounds a whole question, retries included. Once it expires
// no further attempt starts. Zero leaves Ask bounded only by its context.
func WithAskTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.askTimeout = d
	})
}

// WithEmbeddingTimeout bounds a single embeddings request. Default: 30s.
func WithEmbeddingTimeout(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.embTimeout = d
	})
}

// WithGenerator plugs in a custom language model.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.llmProvider = "custom"
		c.generator = g
	})
}

// WithEmbeddingServer embeds questions with an OpenAI-compatible embeddings
// endpoint. It must serve the model the card store was built with.
func WithEmbeddingServer(baseURL, apiKey, model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embBaseURL = baseURL
		c.embAPIKey = apiKey
		c.embModel = model
	})
}

// WithEmbeddingProvider sets the provider label used in metrics. Default: tei.
func WithEmbeddingProvider(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embProvider = name
	})
}

// WithEmbeddingBatchSize caps texts per embeddings request. Default: 32.
func WithEmbeddingBatchSize(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.embBatch = n
	})
}

// WithEmbedder plugs in a custom embedder.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithCache caches question embeddings in Redis or Valkey.
func WithCache(addrs []string, password string, ttl time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheAddrs = addrs
		c.cachePassword = password
		c.cacheTTL = ttl
	})
}

// WithCacheUsername sets the ACL user for the cache connection.
func WithCacheUsername(username string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheUsername = username
	})
}

// WithCacheReadiness bounds how long New waits for the cache to answer PING. Default: 10s.
func WithCacheReadiness(d time.Duration) Option {
	return optionFunc(func(c *clientConfig) {
		c.cacheReadiness = d
	})
}

// WithSynthesis tunes the retry bound and how many context cards each prompt gets.
// Defaults: 2 retries, 10 cards.
func WithSynthesis(maxRetries, contextK int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxRetries = maxRetries
		c.contextK = contextK
	})
}

// WithShortcutK sets how many cards the threshold shortcut inspects. Default: 25.
func WithShortcutK(k int) Option {
	return optionFunc(func(c *clientConfig) {
		c.shortcutK = k
	})
}

// WithoutShortcut sends every question through query synthesis.
func WithoutShortcut() Option {
	return optionFunc(func(c *clientConfig) {
		c.noShortcut = true
	})
}

// WithVerbalizeTemperature sets the sampling temperature of the answer phrasing. Default: 0.2.
func WithVerbalizeTemperature(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.verbalizeTemperature = t
	})
}

// WithLogger enables structured logging. Default: no logging.
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithTracer records spans for every question and attempt. Default: the global provider.
func WithTracer(t trace.Tracer) Option {
	return optionFunc(func(c *clientConfig) {
		c.tracer = t
	})
}
