package ui

import (
	"fmt"
	"strings"

	"bedownloader/pkg/models"
)

const (
	ProgressBar   = "█"
	ProgressEmpty = "░"
)

// CountersBar renders processed projects against the total as a bar of the
// given width followed by the individual counters
func CountersBar(c models.Counters, width int) string {
	if width <= 0 {
		width = 20
	}

	filled := 0
	if c.Total > 0 {
		filled = c.Processed() * width / c.Total
		if filled > width {
			filled = width
		}
	}

	bar := strings.Repeat(ProgressBar, filled) + strings.Repeat(ProgressEmpty, width-filled)
	return fmt.Sprintf("[%s] %d/%d | completed %d | skipped %d | failed %d",
		bar, c.Processed(), c.Total, c.Completed, c.Skipped, c.Failed)
}

// Percent returns processed projects as a fraction of the total in [0, 1]
func Percent(c models.Counters) float64 {
	if c.Total == 0 {
		return 0
	}
	p := float64(c.Processed()) / float64(c.Total)
	if p > 1 {
		return 1
	}
	return p
}
