package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wippyai/js-runtime/runtime"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

const historyWindow = 20

type replEntry struct {
	src    string
	output string
	isErr  bool
}

type replModel struct {
	rt      *runtime.Runtime
	ctx     *runtime.Context
	input   textinput.Model
	history []replEntry
	lineNo  int
	err     error
}

func newReplModel() *replModel {
	ti := textinput.New()
	ti.Prompt = "js> "
	ti.Focus()
	ti.Width = 80
	return &replModel{input: ti}
}

type readyMsg struct {
	err error
	rt  *runtime.Runtime
	ctx *runtime.Context
}

func (m *replModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.start)
}

func (m *replModel) start() tea.Msg {
	rt, err := runtime.New()
	if err != nil {
		return readyMsg{err: err}
	}
	ctx, err := rt.NewContext()
	if err != nil {
		rt.Close()
		return readyMsg{err: err}
	}
	return readyMsg{rt: rt, ctx: ctx}
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+d":
			if m.ctx != nil {
				m.ctx.Close()
			}
			if m.rt != nil {
				m.rt.Close()
			}
			return m, tea.Quit

		case "enter":
			src := strings.TrimSpace(m.input.Value())
			m.input.SetValue("")
			if src == "" {
				return m, nil
			}
			m.evaluate(src)
			return m, nil
		}

	case readyMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt = msg.rt
		m.ctx = msg.ctx
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *replModel) evaluate(src string) {
	if m.ctx == nil {
		return
	}
	m.lineNo++
	name := fmt.Sprintf("repl-%d.js", m.lineNo)

	entry := replEntry{src: src}
	result, err := m.ctx.Evaluate(src, name)
	if err == nil {
		err = drainJobs(m.ctx)
	}
	if err != nil {
		entry.output = err.Error()
		entry.isErr = true
	} else {
		entry.output = formatResult(result)
	}

	m.history = append(m.history, entry)
	if len(m.history) > historyWindow {
		m.history = m.history[len(m.history)-historyWindow:]
	}
}

func (m *replModel) View() string {
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress ctrl+c to quit.", m.err))
	}
	if m.ctx == nil {
		return "Starting engine..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("JS Runner"))
	b.WriteString("\n\n")

	for _, e := range m.history {
		b.WriteString(promptStyle.Render("js> "))
		b.WriteString(e.src)
		b.WriteString("\n")
		if e.isErr {
			b.WriteString(errorStyle.Render(e.output))
		} else {
			b.WriteString(resultStyle.Render(e.output))
		}
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.input.View())
	b.WriteString("\n\n")
	b.WriteString(helpStyle.Render(fmt.Sprintf(
		"%d live handles • enter evaluate • ctrl+c quit", m.ctx.TrackedValues())))
	return b.String()
}

func runInteractive() error {
	p := tea.NewProgram(newReplModel(), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
