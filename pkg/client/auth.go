package client

import "context"

// TokenResponse is returned by a token refresh
type TokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	User         *User  `json:"user,omitempty"`
}

// MeResponse is the signed-in user with their effective identity
type MeResponse struct {
	User     *User     `json:"user"`
	Identity *Identity `json:"identity"`
}

// Providers lists the OAuth providers the server accepts
func (c *Client) Providers(ctx context.Context) ([]string, error) {
	var resp struct {
		Providers []string `json:"providers"`
	}
	if err := c.doRequest(ctx, "GET", "/api/v1/auth/providers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Providers, nil
}

// LoginURL returns the browser URL that starts sign-in with a provider
func (c *Client) LoginURL(provider string) string {
	return c.baseURL + "/api/v1/auth/" + provider + "/login"
}

// Me retrieves the currently authenticated user
func (c *Client) Me(ctx context.Context) (*MeResponse, error) {
	var resp MeResponse
	if err := c.doRequest(ctx, "GET", "/api/v1/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefreshToken exchanges a refresh token and keeps the new access token
func (c *Client) RefreshToken(ctx context.Context, refreshToken string) (*TokenResponse, error) {
	req := map[string]string{
		"refreshToken": refreshToken,
	}

	var resp TokenResponse
	if err := c.doRequest(ctx, "POST", "/api/v1/auth/refresh", req, &resp); err != nil {
		return nil, err
	}

	if resp.AccessToken != "" {
		c.SetToken(resp.AccessToken)
	}

	return &resp, nil
}

// Logout clears the server session and the stored token
func (c *Client) Logout(ctx context.Context) error {
	if err := c.doRequest(ctx, "POST", "/api/v1/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetToken("")
	return nil
}
