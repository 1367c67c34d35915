// Package progress shows a live spinner while jobs run on a terminal.
// Failing verdicts are printed above the spinner as soon as they arrive.
package progress

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dkoosis/difftest/internal/runner"
	"github.com/dkoosis/difftest/internal/workspace"
	"github.com/dkoosis/difftest/pkg/render"
)

const barWidth = 24

// Options configures the live view.
type Options struct {
	Out   io.Writer
	Theme render.Theme
	Total int
	// Line formats a verdict for printing above the view.
	Line func(runner.Verdict) string
}

// Work runs the jobs, calling start and done as each one begins and ends.
type Work func(ctx context.Context, start func(workspace.Job), done func(runner.Verdict)) error

type startedMsg struct{ id string }
type verdictMsg struct{ v runner.Verdict }
type finishedMsg struct{}

type model struct {
	opts    Options
	spinner spinner.Model
	cancel  context.CancelFunc

	done    int
	failed  int
	current string
	quit    bool
}

func newModel(opts Options, cancel context.CancelFunc) model {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(opts.Theme.Primary))
	return model{opts: opts, spinner: s, cancel: cancel}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
		}
	case tea.InterruptMsg:
		m.cancel()
	case startedMsg:
		m.current = msg.id
	case verdictMsg:
		m.done++
		if msg.v.Outcome.Failed() {
			m.failed++
		}
	case finishedMsg:
		m.quit = true
		m.current = ""
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	if m.quit {
		return ""
	}
	th := m.opts.Theme
	filled := 0
	if m.opts.Total > 0 {
		filled = m.done * barWidth / m.opts.Total
	}
	bar := th.Success.Render(strings.Repeat("█", filled)) + th.Muted.Render(strings.Repeat("░", barWidth-filled))

	status := fmt.Sprintf("%d/%d", m.done, m.opts.Total)
	if m.failed > 0 {
		status += " " + th.Error.Render(fmt.Sprintf("%d failed", m.failed))
	}
	return fmt.Sprintf("%s %s %s %s\n", m.spinner.View(), bar, status, th.Muted.Render(m.current))
}

// Run executes work under the live view and returns its error. The view
// closes once work returns. Lines are printed from the work goroutine so they
// reach the program before the final quit.
func Run(ctx context.Context, opts Options, work Work) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(newModel(opts, cancel), tea.WithOutput(opts.Out), tea.WithInput(nil))
	viewDone := make(chan struct{})

	// Program.Println blocks until the event loop reads it, even after the
	// program has exited.
	printAbove := func(line string) {
		sent := make(chan struct{})
		go func() {
			p.Println(line)
			close(sent)
		}()
		select {
		case <-sent:
		case <-viewDone:
		}
	}

	errc := make(chan error, 1)
	go func() {
		err := work(ctx,
			func(j workspace.Job) { p.Send(startedMsg{id: j.ID}) },
			func(v runner.Verdict) {
				if v.Outcome.Failed() && opts.Line != nil {
					printAbove(opts.Line(v))
				}
				p.Send(verdictMsg{v: v})
			},
		)
		errc <- err
		p.Send(finishedMsg{})
	}()

	_, err := p.Run()
	close(viewDone)
	if err != nil {
		cancel()
		<-errc
		return fmt.Errorf("live view: %w", err)
	}
	return <-errc
}
