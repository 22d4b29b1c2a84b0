package tui

import (
	"bufio"
	"bytes"
	"io"
	"strings"
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"bedownloader/pkg/models"
)

// TUI runs the bubbletea program and forwards run events to it. It
// implements ui.Reporter.
type TUI struct {
	program *tea.Program
	model   *Model
}

// NewTUI creates a TUI. onAbort is invoked when the user presses q while a
// run is in progress.
func NewTUI(onAbort func(), opts ...tea.ProgramOption) *TUI {
	model := NewModel(onAbort)
	if len(opts) == 0 {
		opts = []tea.ProgramOption{tea.WithAltScreen()}
	}
	return &TUI{
		program: tea.NewProgram(model, opts...),
		model:   model,
	}
}

// Run blocks until the program exits
func (t *TUI) Run() error {
	_, err := t.program.Run()
	return err
}

// Stop stops the TUI
func (t *TUI) Stop() {
	t.program.Quit()
}

// Send sends a message to the TUI
func (t *TUI) Send(msg tea.Msg) {
	if t.program != nil {
		t.program.Send(msg)
	}
}

func (t *TUI) StatusUpdate(message string) {
	t.Send(StatusMsg(message))
}

func (t *TUI) CompletedUpdate(counters models.Counters) {
	t.Send(CountersMsg(counters))
}

func (t *TUI) TaskFinished(status string) {
	t.Send(FinishedMsg(status))
}

func (t *TUI) ReadyForInput() {
	t.Send(ReadyMsg{})
}

// LogWriter returns a writer that feeds the log pane. Each line written is
// expected to be a console formatted log line: "<time> <LVL> message".
func (t *TUI) LogWriter() io.Writer {
	return &logWriter{send: t.Send}
}

type logWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	send func(tea.Msg)
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			break
		}
		if msg, ok := parseLogLine(strings.TrimRight(line, "\r\n")); ok {
			w.send(msg)
		}
	}
	return len(p), nil
}

// parseLogLine splits a zerolog console line into level and message
func parseLogLine(line string) (LogMsg, bool) {
	if strings.TrimSpace(line) == "" {
		return LogMsg{}, false
	}

	scanner := bufio.NewScanner(strings.NewReader(line))
	scanner.Split(bufio.ScanWords)

	var fields []string
	for scanner.Scan() && len(fields) < 2 {
		fields = append(fields, scanner.Text())
	}
	if len(fields) == 2 && isLevelTag(fields[1]) {
		rest := strings.TrimSpace(strings.SplitN(line, fields[1], 2)[1])
		return LogMsg{Level: fields[1], Message: rest}, true
	}
	return LogMsg{Level: "INF", Message: strings.TrimSpace(line)}, true
}

func isLevelTag(s string) bool {
	switch s {
	case "TRC", "DBG", "INF", "WRN", "ERR", "FTL", "PNC":
		return true
	}
	return false
}
