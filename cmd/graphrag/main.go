package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	graphrag "github.com/OiherR/TFG-UNIBASQ"
	"github.com/OiherR/TFG-UNIBASQ/internal/config"
	logpkg "github.com/OiherR/TFG-UNIBASQ/internal/logger"
	"github.com/OiherR/TFG-UNIBASQ/internal/version"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// app is the state shared by every subcommand: the loaded config and logger.
type app struct {
	env      string
	logLevel string
	cfg      config.Config
	logger   *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "graphrag",
		Short:        "Answer questions about the UNIBASQ evaluation graph",
		Long:         "graphrag answers natural-language questions over a SPARQL knowledge graph by\nretrieving schema cards and synthesizing read-only queries with a language model.",
		Version:      version.String(),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.env, "env", config.GetEnv(), "Config environment (config/<env>.yaml)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "Override logging.level (debug, info, warn, error)")

	root.AddCommand(newServeCmd(a), newAskCmd(a), newIndexCmd(a))
	return root
}

func (a *app) load() error {
	cfg, err := config.Load(a.env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	logger, err := logpkg.NewLogger(a.env, level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	return nil
}

// clientOptions maps the file config onto the library options.
func clientOptions(cfg config.Config, logger *zap.Logger) []graphrag.Option {
	opts := []graphrag.Option{
		graphrag.WithLogger(logger),
		graphrag.WithCardStore(cfg.Cards.Dir, cfg.Cards.IndexFile, cfg.Cards.MetaFile),
		graphrag.WithSPARQL(cfg.SPARQL.QueryURL),
		graphrag.WithSPARQLTimeout(seconds(cfg.SPARQL.TimeoutSec)),
		graphrag.WithLLMTimeout(seconds(cfg.LLM.TimeoutSec)),
		graphrag.WithVerbalizeTemperature(cfg.LLM.VerbalizeTemperature),
		graphrag.WithEmbeddingServer(cfg.Embedding.BaseURL, cfg.Embedding.APIKey, cfg.Embedding.Model),
		graphrag.WithEmbeddingProvider(cfg.Embedding.Provider),
		graphrag.WithEmbeddingBatchSize(cfg.Embedding.BatchSize),
		graphrag.WithEmbeddingTimeout(seconds(cfg.Embedding.TimeoutSec)),
		graphrag.WithSynthesis(cfg.Synthesis.Retries(), cfg.Synthesis.ContextK),
		graphrag.WithShortcutK(cfg.Synthesis.ShortcutK),
		graphrag.WithAskTimeout(seconds(cfg.Synthesis.TimeoutSec)),
	}

	switch cfg.LLM.Provider {
	case "openai":
		opts = append(opts, graphrag.WithOpenAI(cfg.LLM.BaseURL, cfg.LLM.APIKey, cfg.LLM.Model))
	default:
		opts = append(opts, graphrag.WithOllama(cfg.LLM.BaseURL, cfg.LLM.Model))
	}

	if cfg.Cache.Enabled() {
		opts = append(opts,
			graphrag.WithCache(cfg.Cache.Addrs, cfg.Cache.Password, seconds(cfg.Cache.TTLSec)),
			graphrag.WithCacheUsername(cfg.Cache.Username),
			graphrag.WithCacheReadiness(seconds(cfg.Cache.ReadinessTimeout)),
		)
	}
	return opts
}

func seconds(n int) time.Duration { return time.Duration(n) * time.Second }
