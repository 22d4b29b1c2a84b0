package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"bedownloader/pkg/ui"
)

// View renders the entire TUI
func (m *Model) View() string {
	width := m.width
	if width == 0 {
		width = 80
	}

	sections := []string{
		logoStyle.Render(strings.Trim(ui.ASCIILogo, "\n")),
		m.renderStatus(),
		m.renderCounters(width),
		m.renderLogs(width),
	}

	if m.showHelp {
		sections = append(sections, m.renderHelp(width))
	} else {
		sections = append(sections, helpStyle.Render("q: abort / quit   ?: help"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderStatus() string {
	switch {
	case m.finished:
		return successStyle.Render("● ") + m.finalStatus
	case m.aborting:
		return warningStyle.Render(m.spinner.View()+" ") + m.status
	default:
		return m.spinner.View() + " " + m.status
	}
}

func (m *Model) renderCounters(width int) string {
	c := m.counters
	stats := []string{
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Projects:"), statsValueStyle.Render(fmt.Sprintf("%d/%d", c.Processed(), c.Total))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Completed:"), successStyle.Render(fmt.Sprint(c.Completed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Skipped:"), statsValueStyle.Render(fmt.Sprint(c.Skipped))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Failed:"), errorStyle.Render(fmt.Sprint(c.Failed))),
		fmt.Sprintf("%s %s", statsLabelStyle.Render("Elapsed:"), statsValueStyle.Render(formatDuration(time.Since(m.startTime)))),
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(" PROGRESS "),
		strings.Join(stats, "  "),
		m.progress.ViewAs(ui.Percent(c)),
	)
	return panelStyle.Width(width - 2).Render(content)
}

func (m *Model) renderLogs(width int) string {
	visible := 10
	if m.height > 0 {
		visible = m.height - 24
		if visible < 3 {
			visible = 3
		}
	}

	start := len(m.logLines) - visible
	if start < 0 {
		start = 0
	}

	maxMsgLen := width - 24
	var lines []string
	for _, line := range m.logLines[start:] {
		msg := line.Message
		if maxMsgLen > 3 && len(msg) > maxMsgLen {
			msg = msg[:maxMsgLen-3] + "..."
		}
		lines = append(lines, fmt.Sprintf("%s %s %s",
			logTimestampStyle.Render(line.Time.Format("15:04:05")),
			lipgloss.NewStyle().Foreground(levelColor(line.Level)).Bold(true).Render(fmt.Sprintf("[%-3s]", line.Level)),
			logMessageStyle.Render(msg),
		))
	}

	content := strings.Join(lines, "\n")
	if content == "" {
		content = logMessageStyle.Render("No logs yet...")
	}

	return panelStyle.Width(width - 2).Render(
		lipgloss.JoinVertical(lipgloss.Left, titleStyle.Render(" LOG "), content),
	)
}

func (m *Model) renderHelp(width int) string {
	help := `q, esc, ctrl+c   abort the run (quit once finished)
ctrl+l           clear the log pane
?                toggle this help`
	return panelStyle.Width(width - 2).Render(help)
}

// formatDuration formats a duration in a human-readable way
func formatDuration(d time.Duration) string {
	if d < 0 {
		return "00:00"
	}

	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60

	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}
