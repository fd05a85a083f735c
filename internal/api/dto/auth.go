package dto

import "github.com/pratik-mahalle/lessonplanner/internal/domain/user"

// AuthResponse represents an authentication response
type AuthResponse struct {
	AccessToken  string   `json:"accessToken"`
	RefreshToken string   `json:"refreshToken"`
	User         *UserDTO `json:"user"`
}

// RefreshTokenRequest represents a refresh token request. Browsers may
// omit the body and rely on the refresh cookie.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"omitempty,jwt"`
}

// MeResponse is the signed-in principal with its effective entitlements
type MeResponse struct {
	User     *UserDTO       `json:"user"`
	Identity *user.Identity `json:"identity"`
}

// ProvidersResponse lists the configured OAuth providers
type ProvidersResponse struct {
	Providers []string `json:"providers"`
}
