// Package main provides the vinyl CLI: resolve album queries from the
// terminal, or inspect how the ranking scored every candidate page.
//
// Run with: go run ./cmd/cli resolve "Abbey Road"
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DoggoSantini/vinyl-service/internal/app"
	"github.com/DoggoSantini/vinyl-service/internal/config"
	"github.com/DoggoSantini/vinyl-service/internal/model"
	"github.com/DoggoSantini/vinyl-service/internal/service"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "vinyl-cli",
		Short:        "Resolve album queries against Wikipedia and Spotify",
		SilenceUsage: true,
	}

	root.AddCommand(resolveCmd())
	root.AddCommand(rankCmd())
	return root
}

func resolveCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "resolve <query>...",
		Short: "Resolve one or more queries into album cards",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *service.AlbumService) error {
				queries := make([]model.Query, len(args))
				for i, a := range args {
					queries[i] = model.Query(a)
				}
				results, err := svc.ResolveBatch(ctx, queries)
				if err != nil {
					return err
				}
				return printResults(cmd.OutOrStdout(), results, asJSON)
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")
	return cmd
}

func rankCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rank <query>",
		Short: "Show every candidate page with its score and matched signals",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withService(cmd.Context(), func(ctx context.Context, svc *service.AlbumService) error {
				ranked, err := svc.Candidates(ctx, model.Query(args[0]))
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderCandidates(ranked))
				return nil
			})
		},
	}
	return cmd
}

// withService loads config, builds the resolver and runs fn with a context
// cancelled on Ctrl+C.
func withService(parent context.Context, fn func(ctx context.Context, svc *service.AlbumService) error) error {
	cfg, err := config.Load(os.Getenv("VINYL_CONFIG_PATH"))
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The CLI always logs in development mode, to stderr.
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}
	if cfg.Log.Level != "debug" {
		logger = logger.WithOptions(zap.IncreaseLevel(zap.WarnLevel))
	}
	defer func() { _ = logger.Sync() }()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return fn(ctx, app.NewAlbumService(ctx, cfg, logger))
}

func printResults(w io.Writer, results []model.ResultRecord, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	rows := make([][]string, 0, len(results))
	for _, r := range results {
		image := "-"
		if r.ImageURL != nil {
			image = *r.ImageURL
		}
		rows = append(rows, []string{r.Query, r.DisplayText, image})
	}
	fmt.Fprintln(w, renderTable(
		[]string{"Query", "Card", "Image"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft},
	))
	return nil
}

func renderCandidates(ranked []model.ScoredCandidate) string {
	rows := make([][]string, 0, len(ranked))
	for i, c := range ranked {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			c.Page.Title,
			strconv.Itoa(c.Score),
			strings.Join(c.Signals, ", "),
		})
	}
	return renderTable(
		[]string{"#", "Title", "Score", "Signals"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignRight, alignLeft},
	)
}
