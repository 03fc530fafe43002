package cli

import (
	"fmt"
	"io"

	"github.com/raphaelgruber/legal-advisor/internal/client"
	"github.com/raphaelgruber/legal-advisor/internal/metrics"
	"github.com/raphaelgruber/legal-advisor/internal/web"
	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show web host statistics",
	Long: `Show runtime statistics and token usage of a running legal-advisor-server.

The server is taken from --server, LEGAL_ADVISOR_URL, or http://localhost:8501.

Examples:
  legal-advisor stats
  legal-advisor stats --server http://advisor.internal:8501`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		stats, err := client.New(serverURL).Stats(cmd.Context())
		if err != nil {
			return fmt.Errorf("get server stats: %w", err)
		}
		printServerStats(cmd.OutOrStdout(), stats)
		return nil
	},
}

// printServerStats displays server runtime statistics.
func printServerStats(out io.Writer, stats *web.StatsView) {
	fmt.Fprintf(out, "Server Statistics (in-memory, since restart)\n")
	fmt.Fprintf(out, "═══════════════════════════════════════════════\n")
	fmt.Fprintf(out, "Uptime: %.1f seconds\n", stats.UptimeSeconds)
	fmt.Fprintf(out, "Active sessions: %d\n", stats.Sessions)

	if stats.Query != nil {
		fmt.Fprintf(out, "\nQueries:\n")
		printOpStats(out, stats.Query)
	}

	if stats.QueryFailed != nil {
		fmt.Fprintf(out, "\nFailed Queries:\n")
		printOpStats(out, stats.QueryFailed)
	}

	if stats.PDFExtract != nil {
		fmt.Fprintf(out, "\nPDF Extraction:\n")
		printOpStats(out, stats.PDFExtract)
	}

	if stats.LLMGenerate != nil {
		fmt.Fprintf(out, "\nLLM Generate:\n")
		printOpStats(out, stats.LLMGenerate)
		printTokenStats(out, stats.LLMGenerate)
	}
}

// printOpStats displays timing statistics for an operation.
func printOpStats(out io.Writer, op *metrics.OperationSnapshot) {
	fmt.Fprintf(out, "  Calls: %d, Total: %dms\n", op.Count, op.TotalTimeMs)
	fmt.Fprintf(out, "  Time: avg %.1fms, min %dms, max %dms\n",
		op.AvgTimeMs, op.MinTimeMs, op.MaxTimeMs)
}

// printTokenStats displays token statistics if available.
func printTokenStats(out io.Writer, op *metrics.OperationSnapshot) {
	if op.TotalInputTokens == nil || op.TotalOutputTokens == nil {
		return
	}
	fmt.Fprintf(out, "  Tokens In:  %d total", *op.TotalInputTokens)
	if op.AvgInputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgInputTokens)
	}
	if op.MinInputTokens != nil && op.MaxInputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinInputTokens, *op.MaxInputTokens)
	}
	fmt.Fprintln(out)

	fmt.Fprintf(out, "  Tokens Out: %d total", *op.TotalOutputTokens)
	if op.AvgOutputTokens != nil {
		fmt.Fprintf(out, ", avg %.0f", *op.AvgOutputTokens)
	}
	if op.MinOutputTokens != nil && op.MaxOutputTokens != nil {
		fmt.Fprintf(out, ", min %d, max %d", *op.MinOutputTokens, *op.MaxOutputTokens)
	}
	fmt.Fprintln(out)
}
