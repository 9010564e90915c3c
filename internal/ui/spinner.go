package ui

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
)

// Operation is work run behind a spinner.
type Operation func(ctx context.Context) (string, error)

type opDoneMsg struct {
	result string
	err    error
}

// spinnerModel shows a spinner until its operation finishes, then quits.
type spinnerModel struct {
	spinner spinner.Model
	label   string
	run     tea.Cmd
	result  string
	err     error
	done    bool
}

func newSpinnerModel(ctx context.Context, label string, op Operation) spinnerModel {
	s := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle))
	return spinnerModel{
		spinner: s,
		label:   label,
		run: func() tea.Msg {
			result, err := op(ctx)
			return opDoneMsg{result: result, err: err}
		},
	}
}

// Init implements tea.Model
func (m spinnerModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.run)
}

// Update implements tea.Model
func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case opDoneMsg:
		m.result, m.err, m.done = msg.result, msg.err, true
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.err, m.done = context.Canceled, true
			return m, tea.Quit
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

// View implements tea.Model
func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("  %s %s\n", m.spinner.View(), SpinnerLabelStyle.Render(m.label+"..."))
}

// RunWithSpinner runs op while showing a spinner labelled label on out.
// When out is not a terminal the operation runs without animation.
func RunWithSpinner(ctx context.Context, out io.Writer, label string, op Operation) (string, error) {
	f, ok := out.(*os.File)
	if !ok || !IsTerminal(f) {
		return op(ctx)
	}

	p := tea.NewProgram(newSpinnerModel(ctx, label, op), tea.WithOutput(out), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil {
		return "", fmt.Errorf("spinner failed: %w", err)
	}
	m := final.(spinnerModel)
	return m.result, m.err
}
