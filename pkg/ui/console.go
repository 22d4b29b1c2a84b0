package ui

import (
	"fmt"
	"io"
	"sync"
	"time"

	"bedownloader/pkg/models"
)

// ConsoleReporter prints run events as coloured terminal lines
type ConsoleReporter struct {
	mu       sync.Mutex
	out      io.Writer
	notifier *Notifier
	started  time.Time
	counters models.Counters
}

// NewConsoleReporter writes to out. A nil notifier disables desktop
// notifications.
func NewConsoleReporter(out io.Writer, notifier *Notifier) *ConsoleReporter {
	return &ConsoleReporter{out: out, notifier: notifier, started: time.Now()}
}

func (c *ConsoleReporter) StatusUpdate(message string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "%s %s\n", Dim(time.Now().Format("15:04:05")), message)
}

func (c *ConsoleReporter) CompletedUpdate(counters models.Counters) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if counters == c.counters {
		return
	}
	c.counters = counters
	fmt.Fprintf(c.out, "%s %s\n", Magenta("[PROJECTS]"), CountersBar(counters, 20))
}

func (c *ConsoleReporter) TaskFinished(status string) {
	c.mu.Lock()
	counters := c.counters
	elapsed := time.Since(c.started).Round(time.Second)
	c.mu.Unlock()

	title := "BeDownloader"
	switch {
	case counters.Failed > 0:
		fmt.Fprintln(c.out, Yellow(status))
	case counters.Total > 0 && counters.Total == counters.Completed+counters.Skipped:
		fmt.Fprintln(c.out, Green(status))
	default:
		fmt.Fprintln(c.out, Cyan(status))
	}
	fmt.Fprintf(c.out, "%s %s\n", Dim("elapsed"), elapsed)

	if c.notifier != nil {
		c.notifier.Notify(title, status)
	}
}

func (c *ConsoleReporter) ReadyForInput() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.started = time.Now()
	c.counters = models.Counters{}
}
