package scraper

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"bedownloader/internal/downloader"
	"bedownloader/pkg/behance"
	"bedownloader/pkg/browser"
	"bedownloader/pkg/collector"
	"bedownloader/pkg/config"
	"bedownloader/pkg/history"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/models"
	"bedownloader/pkg/retry"
	"bedownloader/pkg/ui"
)

// ErrAlreadyRunning is returned by Run while another run is active
var ErrAlreadyRunning = errors.New("a download task is already running")

// State is the controller's lifecycle phase
type State string

const (
	StateIdle           State = "idle"
	StateLaunching      State = "launching"
	StateAuthenticating State = "authenticating"
	StateBuildingList   State = "building_list"
	StateDownloading    State = "downloading"
	StateFinalizing     State = "finalizing"
)

// IsActive reports whether a run is in progress
func (s State) IsActive() bool {
	return s != StateIdle && s != ""
}

// Options configures a run
type Options struct {
	// Token is the session token injected into localStorage. It is only
	// used when it contains behance.AuthTokenMarker.
	Token             string
	AuthSettleDelay   time.Duration
	NavigationTimeout time.Duration
	SkipByHistory     bool
	Launch            browser.LaunchOptions
	Collector         collector.Options
	Downloader        downloader.Options
}

// OptionsFromConfig maps configuration onto run options. workDir is used
// to look for a portable Chrome build.
func OptionsFromConfig(cfg *config.Config, workDir string) Options {
	scroll := browser.ScrollOptions{
		Step:         cfg.Browser.ScrollStep,
		Delay:        cfg.Browser.ScrollDelay,
		StableChecks: cfg.Browser.ScrollStableChecks,
		MaxScrolls:   cfg.Browser.MaxScrolls,
	}

	return Options{
		Token:             cfg.Behance.LocalStorageToken,
		AuthSettleDelay:   cfg.Behance.AuthSettleDelay,
		NavigationTimeout: cfg.Browser.NavigationTimeout,
		SkipByHistory:     cfg.Download.SkipProjectsByHistory,
		Launch: browser.LaunchOptions{
			ShowBrowser:  cfg.Browser.ShowBrowser,
			ExecPath:     browser.ResolveExecPath(cfg.Browser.ExecPath, cfg.Browser.UseSystemInstalledChrome, workDir),
			BlockMedia:   true,
			UserAgent:    cfg.Behance.UserAgent,
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Collector: collector.Options{
			GridSelectors:     behance.GridSelectors,
			ProjectSelectors:  behance.ProjectSelectors,
			ForceGallery:      cfg.Download.ModulesAsGalleries,
			NavigationTimeout: cfg.Browser.NavigationTimeout,
			Scroll:            scroll,
		},
		Downloader: downloader.Options{
			NavigationTimeout:    cfg.Browser.NavigationTimeout,
			ContentTimeout:       cfg.Browser.NavigationTimeout / 2,
			BetweenImagesDelay:   cfg.Download.BetweenImagesDelay,
			BetweenProjectsDelay: cfg.Download.BetweenProjectsDelay,
			TurboMode:            cfg.Download.TurboMode,
			TurboDelay:           cfg.Download.TimeoutBetweenPagesInTurboMode,
		},
	}
}

// Dependencies are the collaborators a controller drives
type Dependencies struct {
	Launcher browser.Launcher
	Saver    downloader.ImageSaver
	History  *history.Store
	Reporter ui.Reporter
	Logger   logger.Logger
}

// Result summarises a finished run
type Result struct {
	RunID    string
	Status   string
	Counters models.Counters
	Aborted  bool
	Duration time.Duration
}

// Controller sequences a download run: launch the browser, authenticate,
// build the project list, download, report. One run at a time.
type Controller struct {
	deps Dependencies
	opts Options

	mu      sync.Mutex
	state   State
	browser browser.Browser
	task    *models.TaskState
}

// NewController creates an idle controller
func NewController(deps Dependencies, opts Options) *Controller {
	if deps.Reporter == nil {
		deps.Reporter = ui.NopReporter{}
	}
	if deps.Logger == nil {
		deps.Logger = logger.NewNopLogger()
	}
	return &Controller{
		deps:  deps,
		opts:  opts,
		state: StateIdle,
		task:  models.NewTaskState(),
	}
}

// State returns the current phase
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
	c.deps.Logger.DebugWithFields("state changed", map[string]interface{}{"state": string(s)})
}

// Abort stops the active run at its next checkpoint and closes the
// browser so in-flight navigation fails fast. It does nothing when idle.
func (c *Controller) Abort() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.state.IsActive() {
		return
	}
	c.task.Abort()
	if c.browser != nil {
		if err := c.browser.Close(); err != nil {
			c.deps.Logger.WithError(err).Warn("closing browser on abort")
		}
	}
}

// Run executes one download task over seeds. Cancelling ctx aborts the
// run. The returned error is only set for failures that stopped the run
// unexpectedly: a browser that cannot start or history that cannot be
// written.
func (c *Controller) Run(ctx context.Context, seeds []string) (*Result, error) {
	c.mu.Lock()
	if c.state.IsActive() {
		c.mu.Unlock()
		return nil, ErrAlreadyRunning
	}
	c.state = StateLaunching
	c.task.Reset()
	c.mu.Unlock()

	runID := uuid.NewString()
	log := c.deps.Logger.WithField("run_id", runID)
	start := time.Now()
	reporter := c.deps.Reporter

	stop := context.AfterFunc(ctx, c.Abort)
	defer stop()

	log.InfoWithFields("run started", map[string]interface{}{"seeds": len(seeds)})

	if c.deps.History != nil {
		c.task.SetHistory(c.deps.History.Load())
	}

	reporter.StatusUpdate("launching browser...")
	b, err := c.deps.Launcher.Launch(ctx, c.opts.Launch)
	if err != nil {
		log.WithError(err).Error("browser failed to launch")
		result := c.finish(start, runID, StatusLaunchFailed, log)
		return result, fmt.Errorf("launch browser: %w", err)
	}

	c.mu.Lock()
	c.browser = b
	aborted := c.task.IsAborted()
	c.mu.Unlock()
	if aborted {
		_ = b.Close()
	}

	page := b.Page()

	c.loadHomePage(ctx, page, log)
	if strings.Contains(c.opts.Token, behance.AuthTokenMarker) {
		c.setState(StateAuthenticating)
		c.authenticate(ctx, page, log)
	}

	c.setState(StateBuildingList)
	col := collector.New(page, c.opts.Collector, log)
	BuildProjectList(ctx, seeds, c.task, col, c.opts.SkipByHistory, reporter, log)

	c.setState(StateDownloading)
	var hw downloader.HistoryWriter
	if c.deps.History != nil {
		hw = c.deps.History
	}
	dl := downloader.New(page, c.deps.Saver, hw, reporter, c.opts.Downloader, log)
	runErr := dl.DownloadAll(ctx, c.task)
	if runErr != nil {
		log.WithError(runErr).Error("download stopped unexpectedly")
	}

	status := FinalStatus(c.task.Counters(), c.task.IsAborted())
	return c.finish(start, runID, status, log), runErr
}

// finish closes the browser, reports the final status and returns the
// controller to idle with a clean state
func (c *Controller) finish(start time.Time, runID, status string, log logger.Logger) *Result {
	c.setState(StateFinalizing)

	c.mu.Lock()
	b := c.browser
	c.browser = nil
	c.mu.Unlock()
	if b != nil {
		if err := b.Close(); err != nil {
			log.WithError(err).Warn("closing browser")
		}
	}

	result := &Result{
		RunID:    runID,
		Status:   status,
		Counters: c.task.Counters(),
		Aborted:  c.task.IsAborted(),
		Duration: time.Since(start),
	}

	log.InfoWithFields("run finished", map[string]interface{}{
		"status":    status,
		"total":     result.Counters.Total,
		"completed": result.Counters.Completed,
		"skipped":   result.Counters.Skipped,
		"failed":    result.Counters.Failed,
		"duration":  result.Duration.Round(time.Millisecond).String(),
	})

	c.deps.Reporter.TaskFinished(status)
	c.deps.Reporter.ReadyForInput()

	c.mu.Lock()
	c.task.Reset()
	c.state = StateIdle
	c.mu.Unlock()

	return result
}

// loadHomePage opens the site once so later navigation carries its cookies.
// Failures are ignored.
func (c *Controller) loadHomePage(ctx context.Context, page browser.Page, log logger.Logger) {
	if c.task.IsAborted() {
		return
	}
	c.deps.Reporter.StatusUpdate("loading Behance main page... (please wait)")
	if err := page.Navigate(ctx, behance.HomePage, c.opts.NavigationTimeout); err != nil {
		log.WithError(err).Debug("main page did not load")
	}
}

// authenticate stores the session token in localStorage, reloads the page
// and gives the site time to exchange it. Failures are ignored and the run
// continues signed out.
func (c *Controller) authenticate(ctx context.Context, page browser.Page, log logger.Logger) {
	if c.task.IsAborted() {
		return
	}
	c.deps.Reporter.StatusUpdate("authenticating by user token... (please wait)")

	if err := page.SetLocalStorage(ctx, behance.AuthLocalStorageKey, c.opts.Token); err != nil {
		log.WithError(err).Warn("could not store session token")
		return
	}

	c.deps.Reporter.StatusUpdate("refreshing Behance main page after authentication... (please wait)")
	if err := page.Reload(ctx, c.opts.NavigationTimeout); err != nil {
		log.WithError(err).Warn("reload after authentication failed")
		return
	}

	_ = retry.Wait(ctx, c.opts.AuthSettleDelay)
	log.Info("authenticated with session token")
}
