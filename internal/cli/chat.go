package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/legal-advisor/internal/glossary"
	"github.com/raphaelgruber/legal-advisor/internal/session"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

const (
	analyzePrefix = "analyze:"
	definePrefix  = "define:"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive legal advisor conversation",
	Long: `Start an interactive conversation with the legal advisor.

Commands inside the chat:
  exit                 end the conversation
  reset                clear conversation history
  analyze: <pdf_path>  analyze a PDF document
  define: <term>       look up a legal glossary term
  stats                show query statistics

Examples:
  legal-advisor chat
  legal-advisor chat --server http://localhost:8501`,
	Args: cobra.NoArgs,
	RunE: runChatCmd,
}

func runChatCmd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var b backend
	if c, ok := remote(); ok {
		rb, err := openRemote(ctx, c)
		if err != nil {
			return err
		}
		b = rb
	} else {
		adv, err := newAdvisor(ctx)
		if err != nil {
			return err
		}
		b = &localBackend{advisor: adv, glossary: glossary.Default(), metrics: collector}
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn("failed to close chat", "error", err)
		}
	}()

	logger.Info("starting interactive chat")
	echo := !term.IsTerminal(int(os.Stdin.Fd()))
	return runChat(ctx, os.Stdin, cmd.OutOrStdout(), b, echo)
}

var (
	bannerStyle  = lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Status)
	speakerStyle = lipgloss.NewStyle().Bold(true).Foreground(defaultTheme.Success)
	noticeStyle  = lipgloss.NewStyle().Foreground(defaultTheme.Hint).Italic(true)
)

// runChat reads commands from in until exit or EOF. When echo is set the
// input line is repeated after the prompt, for piped sessions.
func runChat(ctx context.Context, in io.Reader, out io.Writer, b backend, echo bool) error {
	fmt.Fprintln(out, bannerStyle.Render("\n===== INTERACTIVE LEGAL ADVISOR CHAT ====="))
	fmt.Fprintln(out, session.WelcomeMessage)
	fmt.Fprintln(out, "Type 'exit' to end the conversation.")
	fmt.Fprintln(out, "Type 'reset' to clear conversation history.")
	fmt.Fprintln(out, "Type 'analyze: [pdf_path]' to analyze a document.")
	fmt.Fprintln(out, "Type 'define: [term]' to look up a legal term, 'stats' for statistics.")
	fmt.Fprintln(out)

	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	for {
		fmt.Fprint(out, "You: ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if echo {
			fmt.Fprintln(out, line)
		}
		if line == "" {
			continue
		}

		lower := strings.ToLower(line)
		switch {
		case lower == "exit" || lower == "quit":
			fmt.Fprintln(out, "Ending conversation.")
			logger.Info("interactive chat ended by user")
			return nil

		case lower == "reset":
			if err := b.Reset(ctx); err != nil {
				return fmt.Errorf("reset conversation: %w", err)
			}
			fmt.Fprintln(out, noticeStyle.Render("Conversation history cleared."))
			continue

		case lower == "stats":
			lines, err := b.Stats(ctx)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintln(out, strings.Join(lines, "\n"))
			continue

		case strings.HasPrefix(lower, definePrefix):
			name := strings.TrimSpace(line[len(definePrefix):])
			entry, err := b.Define(ctx, name)
			if err != nil {
				fmt.Fprintf(out, "Error: %v\n", err)
				continue
			}
			fmt.Fprintf(out, "%s: %s\n", speakerStyle.Render(entry.Term), entry.Definition)
			continue
		}

		var answer string
		var err error
		if strings.HasPrefix(lower, analyzePrefix) {
			path := strings.TrimSpace(line[len(analyzePrefix):])
			if _, statErr := os.Stat(path); statErr != nil {
				answer = "Error: File not found at " + path
			} else {
				fmt.Fprintln(out, noticeStyle.Render("Analyzing document: "+path))
				answer, err = b.Analyze(ctx, path, "")
			}
		} else {
			answer, err = b.Ask(ctx, line)
		}
		if err != nil {
			return fmt.Errorf("chat: %w", err)
		}

		fmt.Fprintf(out, "\n%s %s\n\n", speakerStyle.Render("Legal Advisor:"), answer)
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read input: %w", err)
	}
	return nil
}
