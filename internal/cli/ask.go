package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/legal-advisor/internal/advisor"
	"github.com/raphaelgruber/legal-advisor/internal/apperr"
	"github.com/raphaelgruber/legal-advisor/internal/client"
	"github.com/raphaelgruber/legal-advisor/internal/document"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	askDocument   string
	askOutputFile string
	analyzeQuery  string
)

var askCmd = &cobra.Command{
	Use:   "ask <question>",
	Short: "Ask a single legal question",
	Long: `Ask a single legal question and print the advisor's answer.

Optionally attach a PDF with --document; its text is included with the question.

Examples:
  legal-advisor ask "What is force majeure?"
  legal-advisor ask "Who bears the repair costs?" --document lease.pdf
  legal-advisor ask "What is a tort?" -o answer.md`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <pdf_path>",
	Short: "Analyze a PDF legal document",
	Long: `Analyze a PDF legal document and print a comprehensive summary.

Use --query to ask a specific question about the document instead.

Examples:
  legal-advisor analyze contract.pdf
  legal-advisor analyze contract.pdf --query "What are the termination clauses?"`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	askCmd.Flags().StringVarP(&askDocument, "document", "d", "", "PDF document to include with the question")
	askCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write output to file")
	analyzeCmd.Flags().StringVarP(&analyzeQuery, "query", "q", "", "question about the document")
	analyzeCmd.Flags().StringVarP(&askOutputFile, "output", "o", "", "write output to file")
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := args[0]
	ctx := cmd.Context()

	if askDocument != "" {
		if err := document.ValidateFileType(askDocument); err != nil {
			return err
		}
	}

	if c, ok := remote(); ok {
		answer, err := withRemoteSession(ctx, c, func(id string) (string, error) {
			if askDocument != "" {
				return c.Analyze(ctx, id, askDocument, question)
			}
			return c.Ask(ctx, id, question)
		})
		if err != nil {
			return err
		}
		return writeAnswer(cmd.OutOrStdout(), answer)
	}

	adv, err := newAdvisor(ctx)
	if err != nil {
		return err
	}
	req := advisor.QueryRequest{Query: question, DocumentPath: askDocument}
	answer, err := runLocal(ctx, adv, func(ctx context.Context) string {
		return adv.ProcessQuery(ctx, req)
	})
	if err != nil {
		return err
	}
	return writeAnswer(cmd.OutOrStdout(), answer)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx := cmd.Context()

	if err := document.ValidateFileType(path); err != nil {
		return err
	}
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("%w: %s", apperr.ErrDocumentNotFound, path)
	}

	if c, ok := remote(); ok {
		answer, err := withRemoteSession(ctx, c, func(id string) (string, error) {
			return c.Analyze(ctx, id, path, analyzeQuery)
		})
		if err != nil {
			return err
		}
		return writeAnswer(cmd.OutOrStdout(), answer)
	}

	adv, err := newAdvisor(ctx)
	if err != nil {
		return err
	}
	answer, err := runLocal(ctx, adv, func(ctx context.Context) string {
		if analyzeQuery == "" {
			return adv.AnalyzeDocument(ctx, path)
		}
		return adv.ProcessQuery(ctx, advisor.QueryRequest{Query: analyzeQuery, DocumentPath: path})
	})
	if err != nil {
		return err
	}
	return writeAnswer(cmd.OutOrStdout(), answer)
}

// runLocal shows stage progress on stderr when it is a terminal.
func runLocal(ctx context.Context, adv *advisor.Advisor, query func(context.Context) string) (string, error) {
	if !term.IsTerminal(int(os.Stderr.Fd())) {
		return query(ctx), nil
	}
	return RunWithProgress(ctx, adv, os.Stderr, query)
}

// withRemoteSession runs fn in a temporary session on the web host.
func withRemoteSession(ctx context.Context, c *client.Client, fn func(sessionID string) (string, error)) (string, error) {
	view, err := c.CreateSession(ctx)
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	defer func() {
		if err := c.DeleteSession(context.Background(), view.ID); err != nil {
			logger.Warn("failed to delete remote session", "session", view.ID, "error", err)
		}
	}()
	return fn(view.ID)
}

func writeAnswer(out io.Writer, answer string) error {
	if answer == "" {
		return nil
	}
	if askOutputFile != "" {
		if err := os.WriteFile(askOutputFile, []byte(answer+"\n"), 0o644); err != nil {
			return fmt.Errorf("write output: %w", err)
		}
		fmt.Fprintf(out, "Answer written to %s\n", askOutputFile)
		return nil
	}
	fmt.Fprintln(out, answer)
	return nil
}
