package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/pratik-mahalle/lessonplanner/internal/api/dto"
	"github.com/pratik-mahalle/lessonplanner/internal/api/middleware"
	"github.com/pratik-mahalle/lessonplanner/internal/auth"
	"github.com/pratik-mahalle/lessonplanner/internal/config"
	"github.com/pratik-mahalle/lessonplanner/internal/domain/user"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/errors"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/utils"
	"github.com/pratik-mahalle/lessonplanner/internal/pkg/validator"
)

const (
	refreshTokenCookie = "refreshToken"
	oauthStateCookie   = "oauthState"
	oauthStateMaxAge   = 600
)

// AuthHandler handles OAuth sign-in and session tokens
type AuthHandler struct {
	userService user.Service
	providers   *auth.Registry
	config      *config.Config
	logger      *logger.Logger
	validator   *validator.Validator
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(
	userService user.Service,
	providers *auth.Registry,
	cfg *config.Config,
	log *logger.Logger,
	val *validator.Validator,
) *AuthHandler {
	return &AuthHandler{
		userService: userService,
		providers:   providers,
		config:      cfg,
		logger:      log,
		validator:   val,
	}
}

// Providers lists configured OAuth providers
// @Summary List sign-in providers
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.ProvidersResponse
// @Router /auth/providers [get]
func (h *AuthHandler) Providers(w http.ResponseWriter, r *http.Request) {
	utils.WriteSuccess(w, http.StatusOK, dto.ProvidersResponse{Providers: h.providers.Names()})
}

// Login redirects to the provider's consent page
// @Summary Start OAuth sign-in
// @Tags Auth
// @Param provider path string true "google or github"
// @Success 302 "Redirect to provider"
// @Failure 404 {object} utils.ErrorResponse "Provider not configured"
// @Router /auth/{provider}/login [get]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers.Get(chi.URLParam(r, "provider"))
	if !ok {
		utils.WriteError(w, errors.NotFound("Sign-in provider"))
		return
	}

	state := auth.RandomState()
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		SameSite: http.SameSiteLaxMode,
		Path:     "/api/v1/auth",
		MaxAge:   oauthStateMaxAge,
	})

	http.Redirect(w, r, provider.AuthCodeURL(state), http.StatusFound)
}

// Callback completes OAuth sign-in, sets session cookies and redirects to the frontend
// @Summary OAuth callback
// @Tags Auth
// @Param provider path string true "google or github"
// @Param code query string true "Authorization code"
// @Param state query string true "State echoed by the provider"
// @Success 302 "Redirect to frontend"
// @Router /auth/{provider}/callback [get]
func (h *AuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers.Get(chi.URLParam(r, "provider"))
	if !ok {
		utils.WriteError(w, errors.NotFound("Sign-in provider"))
		return
	}

	q := r.URL.Query()
	cookie, err := r.Cookie(oauthStateCookie)
	h.clearCookie(w, oauthStateCookie, "/api/v1/auth")
	if err != nil || cookie.Value == "" || subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(q.Get("state"))) != 1 {
		h.logger.WithFields(map[string]interface{}{
			"provider": provider.Name(),
		}).Warn("OAuth state mismatch")
		h.redirectWithError(w, r, "invalid_state")
		return
	}
	if e := q.Get("error"); e != "" {
		h.redirectWithError(w, r, e)
		return
	}
	code := q.Get("code")
	if code == "" {
		h.redirectWithError(w, r, "missing_code")
		return
	}

	profile, err := provider.Exchange(r.Context(), code)
	if err != nil {
		h.logger.WithFields(map[string]interface{}{
			"provider": provider.Name(),
			"error":    err.Error(),
		}).Error("OAuth exchange failed")
		h.redirectWithError(w, r, "exchange_failed")
		return
	}

	u, err := h.userService.SignIn(r.Context(), *profile)
	if err != nil {
		h.logger.ErrorWithErr(err, "Sign-in failed")
		h.redirectWithError(w, r, "signin_failed")
		return
	}

	if _, err := h.issueTokens(w, u); err != nil {
		h.redirectWithError(w, r, "token_failed")
		return
	}

	h.logger.WithFields(map[string]interface{}{
		"user_id":  u.ID,
		"provider": provider.Name(),
	}).Info("User signed in")

	http.Redirect(w, r, strings.TrimRight(h.config.Server.FrontendURL, "/")+"/dashboard", http.StatusFound)
}

// Refresh exchanges a refresh token for a new token pair
// @Summary Refresh session
// @Tags Auth
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest false "Refresh token; the cookie is used when omitted"
// @Success 200 {object} dto.AuthResponse
// @Failure 400 {object} utils.ErrorResponse "Malformed refresh token"
// @Failure 401 {object} utils.ErrorResponse "Invalid refresh token"
// @Router /auth/refresh [post]
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req dto.RefreshTokenRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 8<<10)).Decode(&req); err != nil {
			utils.WriteError(w, errors.BadRequest("Invalid request body"))
			return
		}
	}
	if req.RefreshToken == "" {
		if c, err := r.Cookie(refreshTokenCookie); err == nil {
			req.RefreshToken = c.Value
		}
	}
	if req.RefreshToken == "" {
		utils.WriteError(w, errors.Unauthorized("Missing refresh token"))
		return
	}
	if err := h.validator.ValidateVar(req.RefreshToken, "jwt"); err != nil {
		utils.WriteError(w, errors.BadRequest("Malformed refresh token"))
		return
	}

	claims, err := auth.ParseTyped(req.RefreshToken, h.config.Auth.JWTSecret, auth.TokenTypeRefresh)
	if err != nil {
		utils.WriteError(w, errors.Unauthorized("Invalid or expired refresh token"))
		return
	}

	u, err := h.userService.GetByID(r.Context(), claims.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			utils.WriteError(w, errors.Unauthorized("Account no longer exists"))
			return
		}
		utils.WriteErr(w, err, "Failed to load user")
		return
	}

	tokens, err := h.issueTokens(w, u)
	if err != nil {
		utils.WriteError(w, errors.Internal("Failed to generate tokens", err))
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.AuthResponse{
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
		User:         dto.FromUser(u),
	})
}

// Logout clears the session cookies
// @Summary Sign out
// @Tags Auth
// @Success 200 {object} utils.SuccessResponse
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.clearCookie(w, middleware.AccessTokenCookie, "/")
	h.clearCookie(w, refreshTokenCookie, "/")
	utils.WriteSuccessWithMessage(w, http.StatusOK, "Signed out", nil)
}

// Me returns the signed-in user with their effective role and entitlements
// @Summary Current user
// @Tags Auth
// @Produce json
// @Success 200 {object} dto.MeResponse
// @Failure 401 {object} utils.ErrorResponse
// @Failure 503 {object} utils.ErrorResponse "Storage unavailable"
// @Security BearerAuth
// @Router /auth/me [get]
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireUser(w, r)
	if !ok {
		return
	}
	email, ok := requireEmail(w, r)
	if !ok {
		return
	}

	identity, err := h.userService.Resolve(r.Context(), email)
	if err != nil {
		utils.WriteErr(w, err, "Failed to resolve identity")
		return
	}

	u, err := h.userService.GetByID(r.Context(), userID)
	if err != nil && !errors.IsNotFound(err) {
		utils.WriteErr(w, err, "Failed to load user")
		return
	}

	utils.WriteSuccess(w, http.StatusOK, dto.MeResponse{
		User:     dto.FromUser(u),
		Identity: identity,
	})
}

func (h *AuthHandler) issueTokens(w http.ResponseWriter, u *user.User) (auth.TokenPair, error) {
	tokens, err := auth.MintTokens(
		u.ID,
		u.Email,
		h.config.Auth.JWTSecret,
		h.config.Auth.AccessTokenExpiry,
		h.config.Auth.RefreshTokenExpiry,
	)
	if err != nil {
		h.logger.ErrorWithErr(err, "Failed to generate tokens")
		return auth.TokenPair{}, err
	}

	secure := h.config.Server.IsProduction()
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookie,
		Value:    tokens.AccessToken,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(h.config.Auth.AccessTokenExpiry.Seconds()),
	})
	http.SetCookie(w, &http.Cookie{
		Name:     refreshTokenCookie,
		Value:    tokens.RefreshToken,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
		Path:     "/",
		MaxAge:   int(h.config.Auth.RefreshTokenExpiry.Seconds()),
	})
	return tokens, nil
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		HttpOnly: true,
		Secure:   h.config.Server.IsProduction(),
		Path:     path,
		MaxAge:   -1,
	})
}

func (h *AuthHandler) redirectWithError(w http.ResponseWriter, r *http.Request, reason string) {
	target := strings.TrimRight(h.config.Server.FrontendURL, "/") + "/login?error=" + url.QueryEscape(reason)
	http.Redirect(w, r, target, http.StatusFound)
}
