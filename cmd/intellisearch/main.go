package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"IntelliSearch/internal/app"
	"IntelliSearch/internal/config"
	"IntelliSearch/internal/logging"
)

var (
	configPath string
	logLevel   string
	strategy   string
	raterName  string
)

var rootCmd = &cobra.Command{
	Use:   "intellisearch",
	Short: "Search the news, rate what comes back and talk about it",
	Long: `intellisearch runs a news search, fetches every result, rates it and
renders a Markdown table.

Commands:
  search     one query, ranked table on stdout
  validate   credibility report for a single URL
  chat       interactive assistant grounded in search results
  watch      scheduled digests of watched queries to Telegram`,
	SilenceUsage: true,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML config file (overrides INTELLISEARCH_CONFIG)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&strategy, "strategy", "", "Search strategy: http, rod")
	rootCmd.PersistentFlags().StringVar(&raterName, "rater", "", "Article rater: quality, credibility")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Error: %v", err))
		os.Exit(1)
	}
}

// loadApplication applies the persistent flags on top of the loaded config.
func loadApplication(ctx context.Context) (*app.Application, error) {
	if configPath != "" {
		if err := os.Setenv("INTELLISEARCH_CONFIG", configPath); err != nil {
			return nil, err
		}
	}
	cfg := config.Load()
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if strategy != "" {
		cfg.Search.Strategy = strategy
	}
	if raterName != "" {
		cfg.Aggregator.Rater = raterName
	}

	logger := logging.NewWithWriter(os.Stderr, cfg.Logging.Level, cfg.Logging.Format)
	return app.New(ctx, cfg, logger)
}
