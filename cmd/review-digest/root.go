package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"matjip/apps/backend/internal/ai"
	"matjip/apps/backend/internal/config"
	"matjip/apps/backend/internal/logging"
	"matjip/apps/backend/internal/reviews"
)

func newRootCmd() *cobra.Command {
	var (
		input      string
		asJSON     bool
		model      string
		minReviews int
		maxReviews int
		mock       bool
	)

	cmd := &cobra.Command{
		Use:   "review-digest",
		Short: "Summarise store reviews into one or two sentences",
		Long: `review-digest reads a JSON-lines file of store cards
(store_name, review_count, merged_review) and prints a short summary for every
store whose review count is within [--min-reviews, --max-reviews).`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()
			logging.Init(logging.Config{
				Level:   cfg.LogLevel,
				Format:  cfg.LogFormat,
				Service: "review-digest",
				Output:  cmd.ErrOrStderr(),
			})
			if input == "" {
				return errors.New("--input is required")
			}
			if model == "" {
				model = cfg.OpenAIModel
			}

			var client ai.AIClient
			if mock || cfg.AIProvider == config.AIProviderMock {
				client = ai.MockAIClient{Model: model}
			} else {
				client = ai.NewOpenAIChatClient(cfg)
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open store cards: %w", err)
			}
			defer f.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			digester := reviews.NewDigester(client, reviews.Options{
				Model:      model,
				MinReviews: minReviews,
				MaxReviews: maxReviews,
			})
			stats, err := run(ctx, digester, f, cmd.OutOrStdout(), asJSON)
			logging.Info().
				Int("read", stats.Read).
				Int("skipped", stats.Skipped).
				Int("summarized", stats.Summarized).
				Int("failed", stats.Failed).
				Msg("review digest finished")
			return err
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "store-card JSON-lines file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print one JSON object per summary")
	cmd.Flags().StringVar(&model, "model", "", "model name (default: OPENAI_MODEL)")
	cmd.Flags().IntVar(&minReviews, "min-reviews", reviews.DefaultMinReviews, "smallest review count to summarise")
	cmd.Flags().IntVar(&maxReviews, "max-reviews", reviews.DefaultMaxReviews, "review count from which stores are skipped")
	cmd.Flags().BoolVar(&mock, "mock", false, "use the offline mock client")
	return cmd
}

func run(ctx context.Context, digester *reviews.Digester, in io.Reader, out io.Writer, asJSON bool) (reviews.Stats, error) {
	enc := json.NewEncoder(out)
	return digester.Digest(ctx, in, func(s reviews.Summary) error {
		if asJSON {
			return enc.Encode(s)
		}
		_, err := fmt.Fprintf(out, "%s (%d): %s\n", s.StoreName, s.ReviewCount, s.Summary)
		return err
	})
}
