package browser

import (
	"context"
	"errors"
	"time"

	"bedownloader/pkg/retry"
)

// ErrScrollLimit is returned when MaxScrolls is reached before the page settled
var ErrScrollLimit = errors.New("scroll limit reached before page settled")

// ScrollOptions tunes the infinite-scroll loop
type ScrollOptions struct {
	// Step is the distance scrolled per iteration in pixels
	Step int
	// Delay is the pause after each step for new content to load
	Delay time.Duration
	// StableChecks is how many consecutive at-bottom readings end the loop
	StableChecks int
	// MaxScrolls caps the iterations. Zero means no cap.
	MaxScrolls int
}

// DefaultScrollOptions mirrors the timings listing pages need to lazy-load
func DefaultScrollOptions() ScrollOptions {
	return ScrollOptions{
		Step:         500,
		Delay:        200 * time.Millisecond,
		StableChecks: 50,
		MaxScrolls:   5000,
	}
}

// ScrollPosition is a reading of the document scroll state
type ScrollPosition struct {
	Top          float64
	ClientHeight float64
	ScrollHeight float64
}

// AtBottom reports whether the viewport touches the end of the document
func (p ScrollPosition) AtBottom() bool {
	return p.Top+p.ClientHeight >= p.ScrollHeight-1
}

// StepFunc scrolls once and reports the resulting position
type StepFunc func(ctx context.Context) (ScrollPosition, error)

// ScrollUntilStable calls step until StableChecks consecutive readings are
// at the bottom. Any reading away from the bottom, for example because
// more content loaded, resets the count.
func ScrollUntilStable(ctx context.Context, step StepFunc, opts ScrollOptions) (int, error) {
	if opts.StableChecks <= 0 {
		opts.StableChecks = 1
	}

	stable := 0
	for i := 1; ; i++ {
		pos, err := step(ctx)
		if err != nil {
			return i, err
		}

		if pos.AtBottom() {
			stable++
		} else {
			stable = 0
		}
		if stable >= opts.StableChecks {
			return i, nil
		}
		if opts.MaxScrolls > 0 && i >= opts.MaxScrolls {
			return i, ErrScrollLimit
		}

		if err := retry.Wait(ctx, opts.Delay); err != nil {
			return i, err
		}
	}
}
