// internal/common/http/client.go
package http

import (
	"context"
	"net/http"
	"time"
)

// Client is the shared outbound HTTP client; every upstream call goes through
// a single timeout-bearing client instead of http.DefaultClient.
type Client struct {
	httpClient *http.Client
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient.Do(req)
}

func (c *Client) DoWithContext(ctx context.Context, req *http.Request) (*http.Response, error) {
	req = req.WithContext(ctx)
	return c.httpClient.Do(req)
}
