package browser

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	errs "bedownloader/pkg/errors"
	"bedownloader/pkg/logger"

	"github.com/chromedp/chromedp"
)

// ChromeLauncher starts Chrome through the DevTools protocol
type ChromeLauncher struct {
	logger logger.Logger
}

// NewChromeLauncher creates a launcher
func NewChromeLauncher(log logger.Logger) *ChromeLauncher {
	if log == nil {
		log = logger.GetLogger()
	}
	return &ChromeLauncher{logger: log}
}

// Launch starts a browser with one page. The browser lives until Close or
// until ctx is cancelled.
func (l *ChromeLauncher) Launch(ctx context.Context, opts LaunchOptions) (Browser, error) {
	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.Flag("headless", !opts.ShowBrowser))
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if opts.WindowWidth > 0 && opts.WindowHeight > 0 {
		allocOpts = append(allocOpts, chromedp.WindowSize(opts.WindowWidth, opts.WindowHeight))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx,
		chromedp.WithLogf(func(format string, args ...interface{}) {
			l.logger.Debug(fmt.Sprintf(format, args...))
		}),
	)

	// the first Run starts the process
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	b := &chromeBrowser{
		ctx:           browserCtx,
		browserCancel: browserCancel,
		allocCancel:   allocCancel,
		logger:        l.logger,
	}
	b.page = &chromePage{ctx: browserCtx, logger: l.logger}

	if opts.BlockMedia {
		if err := enableMediaBlocking(browserCtx); err != nil {
			b.Close()
			return nil, fmt.Errorf("failed to enable request interception: %w", err)
		}
	}

	l.logger.InfoWithFields("browser started", map[string]interface{}{
		"headless":    !opts.ShowBrowser,
		"exec_path":   opts.ExecPath,
		"block_media": opts.BlockMedia,
	})
	return b, nil
}

type chromeBrowser struct {
	ctx           context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	page          *chromePage
	logger        logger.Logger
	closeOnce     sync.Once
}

func (b *chromeBrowser) Page() Page {
	return b.page
}

func (b *chromeBrowser) Close() error {
	var err error
	b.closeOnce.Do(func() {
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		done := make(chan error, 1)
		go func() { done <- chromedp.Cancel(b.ctx) }()
		select {
		case err = <-done:
		case <-cctx.Done():
			err = cctx.Err()
		}
		b.browserCancel()
		b.allocCancel()
		b.logger.Debug("browser closed")
	})
	return err
}

type chromePage struct {
	ctx    context.Context
	logger logger.Logger
}

// run executes actions on the tab, bounded by timeout and by the caller's ctx
func (p *chromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	if p.ctx.Err() != nil {
		return ErrClosed
	}

	var runCtx context.Context
	var cancel context.CancelFunc
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(p.ctx, timeout)
	} else {
		runCtx, cancel = context.WithCancel(p.ctx)
	}
	defer cancel()

	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	if err := chromedp.Run(runCtx, actions...); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if p.ctx.Err() != nil {
			return ErrClosed
		}
		return err
	}
	return nil
}

func (p *chromePage) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.Navigate(url)); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNavigation,
			Message: fmt.Sprintf("failed to load %s: %v", url, err),
			Err:     err,
		}
	}
	return nil
}

func (p *chromePage) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	return p.run(ctx, timeout, chromedp.WaitVisible(selector, chromedp.ByQuery))
}

const scrollScript = `(() => {
	window.scrollBy(0, %d);
	const el = document.scrollingElement || document.documentElement;
	return [el.scrollTop, el.clientHeight, el.scrollHeight];
})()`

func (p *chromePage) ScrollToBottom(ctx context.Context, opts ScrollOptions) (int, error) {
	step := func(ctx context.Context) (ScrollPosition, error) {
		var pos []float64
		if err := p.run(ctx, 10*time.Second, chromedp.Evaluate(fmt.Sprintf(scrollScript, opts.Step), &pos)); err != nil {
			return ScrollPosition{}, err
		}
		if len(pos) != 3 {
			return ScrollPosition{}, fmt.Errorf("unexpected scroll reading %v", pos)
		}
		return ScrollPosition{Top: pos[0], ClientHeight: pos[1], ScrollHeight: pos[2]}, nil
	}
	return ScrollUntilStable(ctx, step, opts)
}

func (p *chromePage) HTML(ctx context.Context) (string, error) {
	var html string
	if err := p.run(ctx, 30*time.Second, chromedp.OuterHTML("html", &html, chromedp.ByQuery)); err != nil {
		return "", err
	}
	return html, nil
}

func (p *chromePage) SetLocalStorage(ctx context.Context, key, value string) error {
	k, err := json.Marshal(key)
	if err != nil {
		return err
	}
	v, err := json.Marshal(value)
	if err != nil {
		return err
	}

	var ok bool
	script := fmt.Sprintf("(localStorage.setItem(%s, %s), true)", k, v)
	return p.run(ctx, 10*time.Second, chromedp.Evaluate(script, &ok))
}

func (p *chromePage) Reload(ctx context.Context, timeout time.Duration) error {
	if err := p.run(ctx, timeout, chromedp.Reload()); err != nil {
		return &errs.Error{
			Type:    errs.ErrorTypeNavigation,
			Message: fmt.Sprintf("failed to reload: %v", err),
			Err:     err,
		}
	}
	return nil
}
