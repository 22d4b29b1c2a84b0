package browser

import (
	"context"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/fetch"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

// blockedResourceTypes are failed at request time
var blockedResourceTypes = []network.ResourceType{
	network.ResourceTypeImage,
	network.ResourceTypeMedia,
}

// IsBlockedResource reports whether requests of type t are dropped
func IsBlockedResource(t network.ResourceType) bool {
	for _, blocked := range blockedResourceTypes {
		if t == blocked {
			return true
		}
	}
	return false
}

// enableMediaBlocking pauses image and media requests in the Fetch domain
// and fails them. Anything else that gets paused is let through.
func enableMediaBlocking(ctx context.Context) error {
	chromedp.ListenTarget(ctx, func(ev interface{}) {
		paused, ok := ev.(*fetch.EventRequestPaused)
		if !ok {
			return
		}
		go func() {
			c := chromedp.FromContext(ctx)
			if c == nil || c.Target == nil {
				return
			}
			exec := cdp.WithExecutor(ctx, c.Target)
			if IsBlockedResource(paused.ResourceType) {
				_ = fetch.FailRequest(paused.RequestID, network.ErrorReasonBlockedByClient).Do(exec)
				return
			}
			_ = fetch.ContinueRequest(paused.RequestID).Do(exec)
		}()
	})

	patterns := make([]*fetch.RequestPattern, 0, len(blockedResourceTypes))
	for _, t := range blockedResourceTypes {
		patterns = append(patterns, &fetch.RequestPattern{
			URLPattern:   "*",
			ResourceType: t,
			RequestStage: fetch.RequestStageRequest,
		})
	}
	return chromedp.Run(ctx, fetch.Enable().WithPatterns(patterns))
}
