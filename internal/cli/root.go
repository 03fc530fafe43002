// Package cli provides the command-line interface for the legal advisor.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/client"
	"github.com/raphaelgruber/legal-advisor/internal/config"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/raphaelgruber/legal-advisor/internal/llm"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = config.AppVersion

	// Global flags
	verbose   bool
	serverURL string

	// Global config, logging and metrics
	cfg        config.Config
	logger     = slog.New(slog.DiscardHandler)
	logCleanup func() error
	collector  = metrics.NewCollector()
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "legal-advisor",
	Short: "AI legal assistant for questions and PDF documents",
	Long: `Legal Advisor answers legal questions and analyses PDF legal documents
with a large language model, keeping the conversation in memory.

Questions run locally against the configured LLM provider, or against a
running legal-advisor-server when --server is set.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip logging setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		stderrLevel := slog.LevelWarn
		if verbose || cfg.DebugMode {
			stderrLevel = slog.LevelDebug
		}
		logger, logCleanup = config.SetupSplitLogger(cfg.LogFile, stderrLevel, cfg.LogLevel)
		logger.Debug("command started", "command", cmd.Name(), "provider", cfg.LLMProvider, "model", cfg.LLMModel)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

// newAdvisor validates the configuration and builds a local advisor.
func newAdvisor(ctx context.Context, opts ...advisor.Option) (*advisor.Advisor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	model, err := llm.NewModel(ctx, cfg, llm.WithMetrics(collector), llm.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("init model: %w", err)
	}
	logger.Info("model initialized", "provider", cfg.LLMProvider, "model", model.Model())

	opts = append([]advisor.Option{
		advisor.WithExtractor(document.NewPDFExtractor(logger)),
		advisor.WithMetrics(collector),
		advisor.WithLogger(logger),
	}, opts...)
	return advisor.New(advisor.ConfigFrom(cfg), model, opts...)
}

// remote returns a web host client when --server is set.
func remote() (*client.Client, bool) {
	if serverURL == "" {
		return nil, false
	}
	return client.New(serverURL), true
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "use a running legal-advisor-server at this URL")

	// Add subcommands
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(glossaryCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
