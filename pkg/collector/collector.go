package collector

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/browser"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/models"
)

// Options controls listing extraction
type Options struct {
	GridSelectors    []string
	ProjectSelectors []string
	// ForceGallery treats every collected item as a full project
	ForceGallery      bool
	NavigationTimeout time.Duration
	Scroll            browser.ScrollOptions
}

// DefaultOptions returns the Behance selectors and scroll settings
func DefaultOptions() Options {
	return Options{
		GridSelectors:     behance.GridSelectors,
		ProjectSelectors:  behance.ProjectSelectors,
		NavigationTimeout: 60 * time.Second,
		Scroll:            browser.DefaultScrollOptions(),
	}
}

// Collector turns listing pages into project links
type Collector struct {
	page   browser.Page
	opts   Options
	logger logger.Logger
}

// New creates a collector driving page
func New(page browser.Page, opts Options, log logger.Logger) *Collector {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if len(opts.GridSelectors) == 0 {
		opts.GridSelectors = behance.GridSelectors
	}
	if len(opts.ProjectSelectors) == 0 {
		opts.ProjectSelectors = behance.ProjectSelectors
	}
	return &Collector{
		page:   page,
		opts:   opts,
		logger: log.WithField("component", "collector"),
	}
}

// CollectFromListingPage loads a profile, likes or moodboard page, scrolls
// until lazy loading settles and returns the projects found on it.
// A navigation failure is returned as an error; an empty page is not.
func (c *Collector) CollectFromListingPage(ctx context.Context, url string) ([]models.ProjectLink, error) {
	c.logger.DebugWithFields("loading listing page", map[string]interface{}{"url": url})

	if err := c.page.Navigate(ctx, url, c.opts.NavigationTimeout); err != nil {
		return nil, fmt.Errorf("load listing %s: %w", url, err)
	}

	steps, err := c.page.ScrollToBottom(ctx, c.opts.Scroll)
	switch {
	case errors.Is(err, browser.ErrScrollLimit):
		c.logger.WarnWithFields("scroll limit reached, using what is loaded", map[string]interface{}{
			"url":   url,
			"steps": steps,
		})
	case err != nil:
		return nil, fmt.Errorf("scroll listing %s: %w", url, err)
	}

	html, err := c.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read listing %s: %w", url, err)
	}

	links, err := ParseListing(html, url, c.opts)
	if err != nil {
		return nil, err
	}

	c.logger.InfoWithFields("collected projects", map[string]interface{}{
		"url":          url,
		"count":        len(links),
		"scroll_steps": steps,
	})
	return links, nil
}
