package browser

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"
)

// ErrClosed is returned by page operations after the browser was closed
var ErrClosed = errors.New("browser closed")

// Page is the single tab a run drives
type Page interface {
	// Navigate loads url and waits for the load event
	Navigate(ctx context.Context, url string, timeout time.Duration) error
	// WaitForSelector waits until selector matches a visible element
	WaitForSelector(ctx context.Context, selector string, timeout time.Duration) error
	// ScrollToBottom scrolls until the page stops growing. It returns the
	// number of scroll steps taken.
	ScrollToBottom(ctx context.Context, opts ScrollOptions) (int, error)
	// HTML returns the rendered document
	HTML(ctx context.Context) (string, error)
	SetLocalStorage(ctx context.Context, key, value string) error
	Reload(ctx context.Context, timeout time.Duration) error
}

// Browser owns the browser process and its page
type Browser interface {
	Page() Page
	// Close terminates the browser. In-flight page operations fail.
	// Calling it more than once is safe.
	Close() error
}

// Launcher starts browsers
type Launcher interface {
	Launch(ctx context.Context, opts LaunchOptions) (Browser, error)
}

// LaunchOptions configures a browser process
type LaunchOptions struct {
	ShowBrowser bool
	// ExecPath is the Chrome binary. Empty means the driver's default lookup.
	ExecPath string
	// BlockMedia fails image and media requests so pages load faster.
	// Image URLs are still present in the DOM.
	BlockMedia   bool
	UserAgent    string
	WindowWidth  int
	WindowHeight int
}

// portableChromeCandidates are checked, relative to the working directory,
// when the system Chrome is not wanted
var portableChromeCandidates = []string{
	filepath.Join("chrome", "chrome"),
	filepath.Join("chrome", "chrome.exe"),
	filepath.Join("chrome-linux", "chrome"),
	filepath.Join("chrome-win", "chrome.exe"),
	filepath.Join("chrome-mac", "Chromium.app", "Contents", "MacOS", "Chromium"),
}

// ResolveExecPath picks the Chrome binary: an explicit path wins, then a
// portable build next to the working directory unless the system Chrome is
// preferred. An empty result means the default lookup.
func ResolveExecPath(explicit string, useSystemChrome bool, workDir string) string {
	if explicit != "" {
		return explicit
	}
	if useSystemChrome {
		return ""
	}
	for _, candidate := range portableChromeCandidates {
		p := filepath.Join(workDir, candidate)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p
		}
	}
	return ""
}
