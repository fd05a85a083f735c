package client

import "context"

// Usage returns the caller's storage and credit usage
func (c *Client) Usage(ctx context.Context) (*UsageSummary, error) {
	var summary UsageSummary
	if err := c.doRequest(ctx, "GET", "/api/v1/usage", nil, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}
