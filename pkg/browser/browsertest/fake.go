// Package browsertest provides an in-memory browser for tests. Pages are
// canned HTML documents keyed by URL.
package browsertest

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bedownloader/pkg/browser"
)

// Page serves canned HTML
type Page struct {
	mu sync.Mutex

	// Documents maps a URL to the HTML returned after navigating to it
	Documents map[string]string
	// NavigateErrors maps a URL to the error its navigation returns
	NavigateErrors map[string]error
	// MissingSelectors makes WaitForSelector fail for these selectors
	MissingSelectors map[string]bool
	// OnNavigate runs after every navigation
	OnNavigate func(url string)

	current      string
	closed       bool
	navigations  []string
	scrolls      int
	reloads      int
	localStorage map[string]string
}

// NewPage creates a page serving docs
func NewPage(docs map[string]string) *Page {
	return &Page{
		Documents:        docs,
		NavigateErrors:   map[string]error{},
		MissingSelectors: map[string]bool{},
		localStorage:     map[string]string{},
	}
}

func (p *Page) Navigate(ctx context.Context, url string, timeout time.Duration) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return browser.ErrClosed
	}
	p.navigations = append(p.navigations, url)
	err := p.NavigateErrors[url]
	if err == nil {
		p.current = url
	}
	hook := p.OnNavigate
	p.mu.Unlock()

	if hook != nil {
		hook(url)
	}
	if err != nil {
		return err
	}
	return ctx.Err()
}

func (p *Page) WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}
	if p.MissingSelectors[selector] {
		return fmt.Errorf("selector %q not found", selector)
	}
	return nil
}

func (p *Page) ScrollToBottom(ctx context.Context, opts browser.ScrollOptions) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, browser.ErrClosed
	}
	p.scrolls++
	return 1, nil
}

func (p *Page) HTML(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return "", browser.ErrClosed
	}
	doc, ok := p.Documents[p.current]
	if !ok {
		return "<html><head></head><body></body></html>", nil
	}
	return doc, nil
}

func (p *Page) SetLocalStorage(ctx context.Context, key, value string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}
	p.localStorage[key] = value
	return nil
}

func (p *Page) Reload(ctx context.Context, timeout time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return browser.ErrClosed
	}
	p.reloads++
	return nil
}

// Close marks the page closed
func (p *Page) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
}

// Navigations returns every URL navigated to, in order
func (p *Page) Navigations() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.navigations...)
}

// LocalStorage returns the value stored under key
func (p *Page) LocalStorage(key string) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	v, ok := p.localStorage[key]
	return v, ok
}

// Reloads returns how many times the page was reloaded
func (p *Page) Reloads() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reloads
}

// Scrolls returns how many scroll loops ran
func (p *Page) Scrolls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.scrolls
}

// Browser wraps a Page
type Browser struct {
	page   *Page
	mu     sync.Mutex
	closes int
}

// NewBrowser wraps page
func NewBrowser(page *Page) *Browser {
	return &Browser{page: page}
}

func (b *Browser) Page() browser.Page {
	return b.page
}

func (b *Browser) Close() error {
	b.mu.Lock()
	b.closes++
	b.mu.Unlock()
	b.page.Close()
	return nil
}

// Closed reports whether Close was called
func (b *Browser) Closed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closes > 0
}

// Launcher hands out a prepared Browser
type Launcher struct {
	Browser *Browser
	Err     error

	mu      sync.Mutex
	options []browser.LaunchOptions
}

// NewLauncher returns a launcher for page
func NewLauncher(page *Page) *Launcher {
	return &Launcher{Browser: NewBrowser(page)}
}

func (l *Launcher) Launch(ctx context.Context, opts browser.LaunchOptions) (browser.Browser, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.options = append(l.options, opts)
	if l.Err != nil {
		return nil, l.Err
	}
	return l.Browser, nil
}

// LastOptions returns the options of the most recent launch
func (l *Launcher) LastOptions() browser.LaunchOptions {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.options) == 0 {
		return browser.LaunchOptions{}
	}
	return l.options[len(l.options)-1]
}
