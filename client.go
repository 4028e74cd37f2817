package graphrag

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/OiherR/TFG-UNIBASQ/internal/cardstore"
	"github.com/OiherR/TFG-UNIBASQ/internal/db"
	dbRedis "github.com/OiherR/TFG-UNIBASQ/internal/db/redis"
	"github.com/OiherR/TFG-UNIBASQ/internal/domain"
	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
	"github.com/OiherR/TFG-UNIBASQ/internal/repository/embcache"
	chiTransport "github.com/OiherR/TFG-UNIBASQ/internal/transport/chi"
	"github.com/OiherR/TFG-UNIBASQ/internal/transport/ollama"
	openaiTransport "github.com/OiherR/TFG-UNIBASQ/internal/transport/openai"
	sparqlTransport "github.com/OiherR/TFG-UNIBASQ/internal/transport/sparql"
	askuc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/ask"
	embeddinguc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/embedding"
	healthuc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/health"
	"github.com/OiherR/TFG-UNIBASQ/internal/usecase/retrieval"
	"github.com/OiherR/TFG-UNIBASQ/internal/usecase/threshold"
)

// DefaultMaxRetries is the retry bound used when none is configured.
const DefaultMaxRetries = askuc.DefaultMaxRetries

const defaultReadinessTimeout = 10 * time.Second

// Client is the question answering entry point. It is safe for concurrent use.
type Client struct {
	cards  *cardstore.Store
	ask    *askuc.Service
	health *healthuc.Service
	cache  db.Store
	logger *zap.Logger
}

// New loads the card store and wires the pipeline. A missing or inconsistent
// card store fails with an error matching ErrConfiguration.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		maxRetries:           askuc.DefaultMaxRetries,
		contextK:             askuc.DefaultContextK,
		shortcutK:            threshold.DefaultK,
		verbalizeTemperature: askuc.DefaultVerbalizeTemperature,
		embProvider:          "tei",
		embBatch:             embeddinguc.DefaultMaxAPIBatchSize,
		llmProvider:          "ollama",
		cacheReadiness:       defaultReadinessTimeout,
	}
	for _, o := range opts {
		o.apply(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = zap.NewNop()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	cards, err := cardstore.Load(cfg.cardsDir, cfg.indexFile, cfg.metaFile)
	if err != nil {
		return nil, fmt.Errorf("graphrag: %w", err)
	}
	cfg.logger.Info("card store loaded",
		zap.String("dir", cfg.cardsDir),
		zap.Int("cards", cards.Len()),
		zap.Int("dimensions", cards.Dimensions()),
	)

	var cache db.Store
	if len(cfg.cacheAddrs) > 0 {
		cache, err = connectCache(ctx, cfg)
		if err != nil {
			return nil, err
		}
	}

	embedder, embHealth := buildEmbedder(cfg, cards.Dimensions(), cache)
	retriever := retrieval.New(cards, embedder)

	gen, llmPinger := buildGenerator(cfg)
	store := sparqlTransport.New(sparqlTransport.Config{
		QueryURL: cfg.sparqlURL,
		Timeout:  cfg.sparqlTimeout,
		Logger:   cfg.logger,
	})

	askOpts := []askuc.Option{askuc.WithLogger(cfg.logger)}
	if !cfg.noShortcut {
		askOpts = append(askOpts, askuc.WithShortcut(threshold.New(retriever, cfg.shortcutK)))
	}
	if cfg.tracer != nil {
		askOpts = append(askOpts, askuc.WithTracer(cfg.tracer))
	}
	askSvc := askuc.New(retriever, gen, store, askuc.Config{
		MaxRetries:           cfg.maxRetries,
		ContextK:             cfg.contextK,
		VerbalizeTemperature: cfg.verbalizeTemperature,
		Timeout:              cfg.askTimeout,
	}, askOpts...)

	deps := healthuc.Deps{Cards: cards, SPARQL: store, LLM: llmPinger, Embedding: embHealth}
	if cache != nil {
		deps.Cache = cache
	}

	return &Client{
		cards:  cards,
		ask:    askSvc,
		health: healthuc.New(deps),
		cache:  cache,
		logger: cfg.logger,
	}, nil
}

func (c *clientConfig) validate() error {
	if c.cardsDir == "" {
		return errors.New("graphrag: card store directory required (use WithCardStore)")
	}
	if c.sparqlURL == "" {
		return errors.New("graphrag: SPARQL endpoint required (use WithSPARQL)")
	}
	if c.embedder == nil && c.embBaseURL == "" {
		return errors.New("graphrag: embedder required (use WithEmbeddingServer or WithEmbedder)")
	}
	if c.llmProvider == "custom" && c.generator == nil {
		return errors.New("graphrag: WithGenerator needs a non-nil generator")
	}
	if c.maxRetries < 0 {
		return fmt.Errorf("graphrag: max retries must be >= 0, got %d", c.maxRetries)
	}
	return nil
}

func connectCache(ctx context.Context, cfg *clientConfig) (db.Store, error) {
	s, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.cacheAddrs,
		Username: cfg.cacheUsername,
		Password: cfg.cachePassword,
	})
	if err != nil {
		return nil, fmt.Errorf("graphrag: create cache store: %w", err)
	}
	if err := s.WaitForReady(ctx, cfg.cacheReadiness); err != nil {
		s.Close()
		return nil, fmt.Errorf("graphrag: cache not ready: %w", err)
	}
	return s, nil
}

// buildEmbedder assembles the decorator chain: provider -> cache -> instrumented.
func buildEmbedder(cfg *clientConfig, dims int, cache db.Store) (domain.Embedder, healthuc.EmbeddingChecker) {
	var base embcache.Embedder
	var checker healthuc.EmbeddingChecker
	if cfg.embedder != nil {
		a := &embedderAdapter{inner: cfg.embedder}
		base = a
	} else {
		e := openaiTransport.NewEmbedder(&openaiTransport.Config{
			APIKey:   cfg.embAPIKey,
			BaseURL:  cfg.embBaseURL,
			Model:    cfg.embModel,
			Provider: cfg.embProvider,
			Timeout:  cfg.embTimeout,
			Logger:   cfg.logger,
		})
		base = e
		checker = e
	}

	var embedder domain.Embedder = base
	if cache != nil {
		embedder = embcache.New(base, cache, embcache.Options{
			Model:      cfg.embModel,
			Dimensions: dims,
			TTL:        cfg.cacheTTL,
			CacheTotal: metrics.EmbeddingCacheTotal,
			Logger:     cfg.logger,
		})
	}

	return embeddinguc.NewInstrumentedEmbedder(
		embedder, cfg.embProvider, cfg.embModel, cfg.logger,
		embeddinguc.WithDimensions(dims),
		embeddinguc.WithMaxBatchSize(cfg.embBatch),
	), checker
}

func buildGenerator(cfg *clientConfig) (askuc.Generator, healthuc.Pinger) {
	switch cfg.llmProvider {
	case "custom":
		a := &generatorAdapter{inner: cfg.generator}
		return a, a
	case "openai":
		g := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
			APIKey:  cfg.llmAPIKey,
			BaseURL: cfg.llmBaseURL,
			Model:   cfg.llmModel,
			Timeout: cfg.llmTimeout,
			Logger:  cfg.logger,
		})
		return g, g
	default:
		g := ollama.New(ollama.Config{
			BaseURL: cfg.llmBaseURL,
			Model:   cfg.llmModel,
			Timeout: cfg.llmTimeout,
			Logger:  cfg.logger,
		})
		return g, g
	}
}

// Ask answers question using at most maxRetries+1 query generations.
// A negative maxRetries uses the configured bound.
func (c *Client) Ask(ctx context.Context, question string, maxRetries int) AskResult {
	return c.ask.Ask(ctx, question, maxRetries)
}

// Cards returns how many cards the loaded store holds.
func (c *Client) Cards() int { return c.cards.Len() }

// Handler serves the chat front end and the HTTP API for this client.
func (c *Client) Handler() http.Handler {
	return chiTransport.NewServer(c.ask, c.health, c.logger).Router()
}

// Close releases the cache connection, if any.
func (c *Client) Close() {
	if c.cache != nil {
		c.cache.Close()
	}
}
