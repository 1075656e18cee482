package notifier

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"time"
)

const (
	maxRetries    = 3
	baseBackoff   = 100 * time.Millisecond
	backoffFactor = 2.0
)

// HTTPClient handles webhook delivery with retry logic
type HTTPClient struct {
	url        string
	httpClient *http.Client
}

// NewHTTPClient creates a new HTTP client
func NewHTTPClient(url string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		url: url,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// Send sends payload to the webhook URL with retry logic
func (c *HTTPClient) Send(ctx context.Context, payload []byte) error {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(math.Pow(backoffFactor, float64(attempt-1))) * baseBackoff

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.url, bytes.NewReader(payload))
		if err != nil {
			lastErr = fmt.Errorf("failed to create request: %w", err)
			continue
		}

		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed (attempt %d/%d): %w", attempt+1, maxRetries, err)
			log.Printf("Webhook notification failed: %v", lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return nil
		}

		lastErr = fmt.Errorf("request failed with status %d (attempt %d/%d): %s",
			resp.StatusCode, attempt+1, maxRetries, string(body))
		log.Printf("Webhook notification failed: %v", lastErr)
	}

	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
