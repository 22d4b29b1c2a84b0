package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"bedownloader/pkg/models"
)

// LogLine is one entry of the log pane
type LogLine struct {
	Time    time.Time
	Level   string
	Message string
}

// Model is the bubbletea model of a single run
type Model struct {
	spinner  spinner.Model
	progress progress.Model

	status      string
	counters    models.Counters
	finalStatus string
	finished    bool
	aborting    bool
	startTime   time.Time

	logLines    []LogLine
	maxLogLines int

	width    int
	height   int
	showHelp bool

	onAbort func()
}

// NewModel creates a model. onAbort is called once when the user asks to
// stop a run that has not finished.
func NewModel(onAbort func()) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(accentCyan)

	p := progress.New(progress.WithDefaultGradient())
	p.Width = 40

	return &Model{
		spinner:     s,
		progress:    p,
		status:      "starting...",
		startTime:   time.Now(),
		maxLogLines: 200,
		onAbort:     onAbort,
	}
}

// Init starts the spinner
func (m *Model) Init() tea.Cmd {
	return m.spinner.Tick
}

// Status returns the current status line
func (m *Model) Status() string {
	return m.status
}

// Counters returns the latest counters
func (m *Model) Counters() models.Counters {
	return m.counters
}

// Finished reports whether the run has ended, and with which status
func (m *Model) Finished() (string, bool) {
	return m.finalStatus, m.finished
}

// Aborting reports whether the user asked to stop the run
func (m *Model) Aborting() bool {
	return m.aborting
}

// LogLines returns the log pane contents
func (m *Model) LogLines() []LogLine {
	return m.logLines
}

func (m *Model) addLog(level, message string) {
	m.logLines = append(m.logLines, LogLine{
		Time:    time.Now(),
		Level:   level,
		Message: message,
	})
	if len(m.logLines) > m.maxLogLines {
		m.logLines = m.logLines[len(m.logLines)-m.maxLogLines:]
	}
}

func (m *Model) abort() {
	if m.aborting || m.finished {
		return
	}
	m.aborting = true
	m.status = "aborting..."
	m.addLog("WRN", "abort requested, finishing current step")
	if m.onAbort != nil {
		m.onAbort()
	}
}
