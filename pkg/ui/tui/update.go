package tui

import (
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"bedownloader/pkg/models"
)

// StatusMsg replaces the status line
type StatusMsg string

// CountersMsg carries updated project counters
type CountersMsg models.Counters

// FinishedMsg carries the final status of the run
type FinishedMsg string

// ReadyMsg is sent once the run has released its resources
type ReadyMsg struct{}

// LogMsg adds a line to the log pane
type LogMsg struct {
	Level   string
	Message string
}

// Update handles all messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = progressWidth(msg.Width)
		return m, nil

	case spinner.TickMsg:
		if m.finished {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case StatusMsg:
		m.status = string(msg)
		return m, nil

	case CountersMsg:
		m.counters = models.Counters(msg)
		return m, nil

	case FinishedMsg:
		m.finished = true
		m.finalStatus = string(msg)
		m.status = string(msg)
		return m, nil

	case ReadyMsg:
		return m, tea.Quit

	case LogMsg:
		m.addLog(msg.Level, msg.Message)
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles keyboard input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "Q", "ctrl+c", "esc":
		if m.finished {
			return m, tea.Quit
		}
		m.abort()
		return m, nil

	case "?":
		m.showHelp = !m.showHelp
		return m, nil

	case "ctrl+l":
		m.logLines = nil
		return m, nil
	}

	return m, nil
}

func progressWidth(termWidth int) int {
	w := termWidth - 10
	if w > 80 {
		w = 80
	}
	if w < 10 {
		w = 10
	}
	return w
}
