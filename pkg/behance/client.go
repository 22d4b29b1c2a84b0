package behance

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	errs "bedownloader/pkg/errors"
	"bedownloader/pkg/logger"
	"bedownloader/pkg/retry"
)

// Client downloads image files from the CDN
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	retries    int
	backoff    retry.BackoffStrategy
	logger     logger.Logger
}

// NewClient creates an image client. timeout bounds each attempt.
func NewClient(timeout time.Duration, retries int, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36",
			"Accept":          "image/avif,image/webp,image/apng,image/*,*/*;q=0.8",
			"Accept-Language": "en-US,en;q=0.9",
			"Referer":         HomePage,
		},
		retries: retries,
		backoff: retry.DefaultExponentialBackoff(),
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetBackoff replaces the retry backoff strategy
func (c *Client) SetBackoff(b retry.BackoffStrategy) {
	c.backoff = b
}

// Fetch opens the image body. The caller must close it. Network failures,
// 429 and 5xx responses are retried; other statuses fail immediately.
func (c *Client) Fetch(ctx context.Context, imageURL string) (io.ReadCloser, error) {
	cfg := &retry.Config{
		MaxAttempts: c.retries + 1,
		Backoff:     c.backoff,
		RetryIf:     retry.DefaultRetryIf,
		Context:     ctx,
		Logger:      c.logger.WithField("url", imageURL),
	}

	resp, err := retry.DoWithResult(func() (*http.Response, error) {
		return c.get(ctx, imageURL)
	}, cfg)
	if err != nil {
		return nil, err
	}
	return resp.Body, nil
}

func (c *Client) get(ctx context.Context, imageURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeUnknown, err, "failed to create request")
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, "request failed")
	}

	c.logger.DebugWithFields("image response", map[string]interface{}{
		"url":      imageURL,
		"status":   resp.StatusCode,
		"duration": time.Since(start),
	})

	if typed := errs.FromStatusCode(resp.StatusCode, imageURL); typed != nil {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		resp.Body.Close()
		return nil, typed
	}
	return resp, nil
}

// FetchBytes reads the whole image into memory
func (c *Client) FetchBytes(ctx context.Context, imageURL string) ([]byte, error) {
	body, err := c.Fetch(ctx, imageURL)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return nil, errs.Wrap(errs.ErrorTypeNetwork, err, fmt.Sprintf("failed to read %s", imageURL))
	}
	return data, nil
}
