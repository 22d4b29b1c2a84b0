// Package retry provides backoff and retry logic for transient failures in
// image downloads.
//
//	data, err := retry.DoWithResult(func() ([]byte, error) {
//		return fetch(ctx, url)
//	}, &retry.Config{
//		MaxAttempts: 3,
//		Backoff:     retry.DefaultExponentialBackoff(),
//		RetryIf:     retry.DefaultRetryIf,
//		Context:     ctx,
//	})
//
// Typed errors from bedownloader/pkg/errors decide retryability: network,
// rate limit and 5xx failures are retried, 4xx failures are not. Wait is the
// context-aware sleep shared with the downloader's fixed delays.
package retry
