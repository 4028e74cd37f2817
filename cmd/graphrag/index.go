package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OiherR/TFG-UNIBASQ/internal/metrics"
	openaiEmb "github.com/OiherR/TFG-UNIBASQ/internal/transport/openai"
	embeddinguc "github.com/OiherR/TFG-UNIBASQ/internal/usecase/embedding"
	"github.com/OiherR/TFG-UNIBASQ/internal/usecase/indexer"
)

func newIndexCmd(a *app) *cobra.Command {
	var (
		source      string
		outDir      string
		concurrency int
	)
	cmd := &cobra.Command{
		Use:   "index --source <cards.json>",
		Short: "Embed extracted cards and write the card store",
		Long: "index reads the card metadata produced by the extraction job, embeds every card\n" +
			"text with the configured embedding server and writes the vector index and\n" +
			"metadata into the card store directory.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger := a.cfg, a.logger
			if outDir == "" {
				outDir = cfg.Cards.Dir
			}

			metrics.Register()

			base := openaiEmb.NewEmbedder(&openaiEmb.Config{
				APIKey:     cfg.Embedding.APIKey,
				BaseURL:    cfg.Embedding.BaseURL,
				Model:      cfg.Embedding.Model,
				Dimensions: cfg.Embedding.Dimensions,
				Provider:   cfg.Embedding.Provider,
				Timeout:    seconds(cfg.Embedding.TimeoutSec),
				Logger:     logger,
			})
			embedder := embeddinguc.NewInstrumentedEmbedder(
				base, cfg.Embedding.Provider, cfg.Embedding.Model, logger,
				embeddinguc.WithDimensions(cfg.Embedding.Dimensions),
				embeddinguc.WithMaxBatchSize(cfg.Embedding.BatchSize),
			)

			svc := indexer.New(embedder, indexer.Options{
				BatchSize:   cfg.Embedding.BatchSize,
				Concurrency: concurrency,
				Logger:      logger,
			})
			n, err := svc.Build(cmd.Context(), source, outDir, cfg.Cards.IndexFile, cfg.Cards.MetaFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "indexed %d cards into %s\n", n, outDir)
			return nil
		},
	}
	cmd.Flags().StringVar(&source, "source", "", "Card metadata JSON written by the extraction job")
	cmd.Flags().StringVar(&outDir, "out", "", "Output directory (default: cards.dir)")
	cmd.Flags().IntVar(&concurrency, "concurrency", indexer.DefaultConcurrency, "Embedding requests in flight")
	_ = cmd.MarkFlagRequired("source")
	return cmd
}
