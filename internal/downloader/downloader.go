package downloader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bedownloader/pkg/behance"
	"bedownloader/pkg/browser"
	"bedownloader/pkg/collector"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/models"
	"bedownloader/pkg/retry"
	"bedownloader/pkg/ui"
)

// ImageSaver places images on disk
type ImageSaver interface {
	PathFor(project *models.ProjectData, imageURL string, index int) string
	Download(ctx context.Context, project *models.ProjectData, imageURL, finalPath string) (string, error)
}

// HistoryWriter persists finished gallery projects
type HistoryWriter interface {
	Append(url string) error
}

// Options controls pacing and page handling
type Options struct {
	NavigationTimeout    time.Duration
	ContentTimeout       time.Duration
	BetweenImagesDelay   time.Duration
	BetweenProjectsDelay time.Duration
	// TurboMode skips waiting for project content and uses TurboDelay
	// between projects
	TurboMode  bool
	TurboDelay time.Duration
}

// DefaultOptions returns the standard pacing
func DefaultOptions() Options {
	return Options{
		NavigationTimeout:    60 * time.Second,
		ContentTimeout:       30 * time.Second,
		BetweenImagesDelay:   500 * time.Millisecond,
		BetweenProjectsDelay: 2 * time.Second,
		TurboDelay:           10 * time.Second,
	}
}

// Downloader visits projects one after another and saves their images
type Downloader struct {
	page     browser.Page
	saver    ImageSaver
	history  HistoryWriter
	reporter ui.Reporter
	opts     Options
	logger   logger.Logger
}

// New creates a downloader. A nil reporter or logger is replaced by a no-op.
func New(page browser.Page, saver ImageSaver, history HistoryWriter, reporter ui.Reporter, opts Options, log logger.Logger) *Downloader {
	if reporter == nil {
		reporter = ui.NopReporter{}
	}
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Downloader{
		page:     page,
		saver:    saver,
		history:  history,
		reporter: reporter,
		opts:     opts,
		logger:   log.WithField("component", "downloader"),
	}
}

// DownloadAll processes every project in state sequentially. Abort is
// checked before each project and each image; an aborted project is never
// counted as completed. Only a failure to persist history is returned.
func (d *Downloader) DownloadAll(ctx context.Context, state *models.TaskState) error {
	projects := state.Projects()
	logger.LogComponentStart(d.logger, "downloader", map[string]interface{}{
		"projects": len(projects),
		"turbo":    d.opts.TurboMode,
	})

	for i, link := range projects {
		if d.aborted(ctx, state) {
			logger.LogComponentStop(d.logger, "downloader", "aborted")
			return nil
		}

		completed, err := d.downloadProject(ctx, state, link, i, len(projects))
		if err != nil {
			return err
		}

		if completed && i < len(projects)-1 {
			_ = retry.Wait(ctx, d.betweenProjects())
		}
	}

	logger.LogComponentStop(d.logger, "downloader", "done")
	return nil
}

func (d *Downloader) downloadProject(ctx context.Context, state *models.TaskState, link models.ProjectLink, pos, total int) (bool, error) {
	display := behance.FormatForDisplay(link.URL, 60)
	d.reporter.StatusUpdate(fmt.Sprintf("[%d/%d] loading project %s", pos+1, total, display))

	project, err := d.loadProject(ctx, link)
	if err != nil {
		if d.aborted(ctx, state) {
			return false, nil
		}
		d.logger.WithError(err).WarnWithFields("project failed", map[string]interface{}{"url": link.URL})
		d.fail(state)
		logger.LogProjectResult(d.logger, link.URL, "failed", 0)
		return false, nil
	}

	images := behance.SelectDownloadableImages(project.Images)
	if len(images) == 0 {
		d.logger.WarnWithFields("no downloadable images", map[string]interface{}{"url": link.URL})
	}

	saved := 0
	for i, imageURL := range images {
		if d.aborted(ctx, state) {
			d.logger.InfoWithFields("project interrupted", map[string]interface{}{
				"url":   link.URL,
				"saved": saved,
			})
			return false, nil
		}

		d.reporter.StatusUpdate(fmt.Sprintf("[%d/%d] %s image %d/%d", pos+1, total, display, i+1, len(images)))

		path := d.saver.PathFor(project, imageURL, i)
		final, err := d.saver.Download(ctx, project, imageURL, path)
		logger.LogImageDownload(d.logger, project.ID, imageURL, final, err)
		if err == nil {
			saved++
		}

		if i < len(images)-1 && !d.aborted(ctx, state) {
			_ = retry.Wait(ctx, d.opts.BetweenImagesDelay)
		}
	}

	if d.aborted(ctx, state) {
		return false, nil
	}

	counters := state.UpdateCounters(func(c *models.Counters) { c.Completed++ })
	d.reporter.CompletedUpdate(counters)
	logger.LogProjectResult(d.logger, link.URL, "completed", saved)

	if link.Variant == models.VariantGallery && state.AddToHistory(link.URL) && d.history != nil {
		if err := d.history.Append(link.URL); err != nil {
			return true, fmt.Errorf("record %s in history: %w", link.URL, err)
		}
	}
	return true, nil
}

// loadProject navigates to the project and extracts its data. Navigation
// errors are tolerated; the partially loaded page is still read.
func (d *Downloader) loadProject(ctx context.Context, link models.ProjectLink) (*models.ProjectData, error) {
	if err := d.page.Navigate(ctx, link.URL, d.opts.NavigationTimeout); err != nil {
		if errors.Is(err, browser.ErrClosed) {
			return nil, err
		}
		d.logger.WithError(err).WarnWithFields("project page did not finish loading", map[string]interface{}{"url": link.URL})
	}

	if !d.opts.TurboMode {
		if err := d.page.WaitForSelector(ctx, behance.ProjectContentSelector, d.opts.ContentTimeout); err != nil {
			d.logger.WithError(err).DebugWithFields("project content not found", map[string]interface{}{"url": link.URL})
		}
	}

	html, err := d.page.HTML(ctx)
	if err != nil {
		return nil, fmt.Errorf("read project page: %w", err)
	}
	return collector.ParseProject(html, link)
}

func (d *Downloader) fail(state *models.TaskState) {
	counters := state.UpdateCounters(func(c *models.Counters) { c.Failed++ })
	d.reporter.CompletedUpdate(counters)
}

func (d *Downloader) betweenProjects() time.Duration {
	if d.opts.TurboMode {
		return d.opts.TurboDelay
	}
	return d.opts.BetweenProjectsDelay
}

// aborted treats a cancelled context as a user abort
func (d *Downloader) aborted(ctx context.Context, state *models.TaskState) bool {
	if ctx.Err() != nil && !state.IsAborted() {
		state.Abort()
	}
	return state.IsAborted()
}
