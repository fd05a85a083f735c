package client

import (
	"context"
	"net/http"
	"time"
)

// Health checks liveness. It succeeds whenever the process is serving.
func (c *Client) Health(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/healthz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// Ready checks readiness. A 503 comes back as an *APIError with code SERVICE_UNAVAILABLE.
func (c *Client) Ready(ctx context.Context) (*HealthResponse, error) {
	var health HealthResponse
	if err := c.doRequest(ctx, http.MethodGet, "/readyz", nil, &health); err != nil {
		return nil, err
	}
	return &health, nil
}

// WaitReady polls Ready every interval until it succeeds or ctx ends
func (c *Client) WaitReady(ctx context.Context, interval time.Duration) (*HealthResponse, error) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		health, err := c.Ready(ctx)
		if err == nil {
			return health, nil
		}
		select {
		case <-ctx.Done():
			return nil, err
		case <-ticker.C:
		}
	}
}

// Ping is a simple connectivity test
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Health(ctx)
	return err
}
