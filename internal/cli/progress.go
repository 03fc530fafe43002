package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
	"github.com/raphaelgruber/legal-advisor/internal/advisor"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// stageMsg carries a pipeline stage transition.
type stageMsg advisor.Stage

// answerMsg carries the finished answer.
type answerMsg string

// progressModel is the bubbletea model for the query pipeline stages.
type progressModel struct {
	stage    advisor.Stage
	started  time.Time
	answer   string
	progress progress.Model
	theme    Theme
	done     bool
	quitting bool
}

// newProgressModel creates a new progress model.
func newProgressModel() progressModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return progressModel{
		stage:    advisor.StageIdle,
		started:  time.Now(),
		progress: prog,
		theme:    defaultTheme,
	}
}

// Init returns the initial command.
func (m progressModel) Init() tea.Cmd {
	return m.progress.Init()
}

// Update handles messages and returns the updated model.
func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			return m, tea.Quit
		}

	case stageMsg:
		m.stage = advisor.Stage(msg)
		return m, nil

	case answerMsg:
		m.answer = string(msg)
		m.done = true
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m progressModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m progressModel) renderContent() string {
	if m.done || m.quitting {
		return m.finalView()
	}

	status := m.theme.statusStyle().Render(fmt.Sprintf("[%s]", m.stage))
	bar := m.progress.ViewAs(stageFraction(m.stage))
	elapsed := time.Since(m.started).Truncate(100 * time.Millisecond)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to cancel")

	return fmt.Sprintf("%s %s %s\n%s\n", status, bar, elapsed, hint)
}

// finalView renders the completion line. The answer itself is printed after
// the program exits so it stays in the scrollback.
func (m progressModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render("Cancelled.\n")
	}
	if m.stage == advisor.StageError {
		return m.theme.errorStyle().Render("✗ Failed\n")
	}
	return m.theme.completedStyle().Render(fmt.Sprintf("✓ Completed in %s\n", time.Since(m.started).Truncate(100*time.Millisecond)))
}

// stageFraction maps a stage to its position in the pipeline.
func stageFraction(s advisor.Stage) float64 {
	if s.Terminal() {
		return 1
	}
	return float64(s) / float64(advisor.StageDone)
}

// RunWithProgress runs query on adv while showing the pipeline stages on out.
// The returned answer is empty when the user cancels.
func RunWithProgress(ctx context.Context, adv *advisor.Advisor, out io.Writer, query func(context.Context) string) (string, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newProgressModel(), tea.WithOutput(out), tea.WithContext(ctx))

	adv.SetObserver(func(s advisor.Stage) { p.Send(stageMsg(s)) })
	defer adv.SetObserver(nil)

	result := make(chan string, 1)
	go func() {
		answer := query(ctx)
		result <- answer
		p.Send(answerMsg(answer))
	}()

	finalModel, err := p.Run()
	if err != nil && ctx.Err() == nil {
		return "", fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(progressModel); ok && m.quitting {
		cancel()
		<-result
		return "", nil
	}
	return <-result, nil
}
