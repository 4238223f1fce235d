// Package tui provides the interactive pieces of artdiff: run and project
// pickers built on huh, and a Bubble Tea spinner shown while a batch of
// downloads runs.
package tui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Task is work reported by RunWithStatus. progress may be called from any
// goroutine.
type Task func(ctx context.Context, progress func(done, total int)) error

// Interactive reports whether f is a terminal.
func Interactive(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

type progressMsg struct{ done, total int }

type finishedMsg struct{ err error }

// StatusModel is a spinner with a title and a done/total counter.
type StatusModel struct {
	spinner spinner.Model
	title   string
	done    int
	total   int

	// Finished is set once the task returned.
	Finished bool
	// Aborted is set when the user pressed ctrl+c or esc.
	Aborted bool

	countStyle lipgloss.Style
}

// NewStatusModel creates a StatusModel.
func NewStatusModel(title string) StatusModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return StatusModel{
		spinner:    sp,
		title:      title,
		countStyle: lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// Init implements tea.Model.
func (m StatusModel) Init() tea.Cmd {
	return m.spinner.Tick
}

// Update implements tea.Model.
func (m StatusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.Aborted = true
			return m, tea.Quit
		}
	case progressMsg:
		m.done, m.total = msg.done, msg.total
	case finishedMsg:
		m.Finished = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model.
func (m StatusModel) View() string {
	if m.Finished || m.Aborted {
		return ""
	}
	s := fmt.Sprintf("%s %s", m.spinner.View(), m.title)
	if m.total > 0 {
		s += m.countStyle.Render(fmt.Sprintf(" (%d/%d)", m.done, m.total))
	}
	return s + "\n"
}

// RunWithStatus runs task behind a spinner written to out. Pressing
// ctrl+c cancels the task context.
func RunWithStatus(ctx context.Context, out io.Writer, title string, task Task) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(NewStatusModel(title), tea.WithOutput(out), tea.WithContext(ctx))

	result := make(chan error, 1)
	go func() {
		err := task(ctx, func(done, total int) {
			p.Send(progressMsg{done: done, total: total})
		})
		result <- err
		p.Send(finishedMsg{err: err})
	}()

	final, runErr := p.Run()
	if m, ok := final.(StatusModel); ok && m.Aborted {
		cancel()
	}
	err := <-result
	if err == nil && runErr != nil && ctx.Err() == nil {
		return fmt.Errorf("status display: %w", runErr)
	}
	return err
}

// RunPlain runs task and prints the title and progress lines to out.
func RunPlain(ctx context.Context, out io.Writer, title string, task Task) error {
	fmt.Fprintln(out, title)
	return task(ctx, func(done, total int) {
		fmt.Fprintf(out, "  %d/%d\n", done, total)
	})
}
