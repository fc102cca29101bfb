package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/auth"
	"github.com/bitbattle/bitbattle/pkg/services"
)

const oauthStateCookie = "oauth_state"

// Callback error codes appended to the frontend redirect.
const (
	callbackErrAuth     = "auth_failed"
	callbackErrUserInfo = "user_info_failed"
	callbackErrDB       = "db_error"
	callbackErrToken    = "token_error"
)

// googleLoginHandler handles GET /auth/google: sets the CSRF state cookie
// and redirects to the Google consent screen.
func (s *Server) googleLoginHandler(c *echo.Context) error {
	state := uuid.NewString()
	c.SetCookie(&http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   c.Request().TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	return c.Redirect(http.StatusTemporaryRedirect, s.google.AuthURL(state))
}

func (s *Server) frontendErrorRedirect(c *echo.Context, code string) error {
	return c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/auth/error?error=%s", s.cfg.FrontendURL, code))
}

// googleCallbackHandler handles GET /auth/callback. Failures redirect to the
// frontend with a coarse error code; details stay in the server log.
func (s *Server) googleCallbackHandler(c *echo.Context) error {
	ctx := c.Request().Context()

	if errParam := c.QueryParam("error"); errParam != "" {
		return s.frontendErrorRedirect(c, callbackErrAuth)
	}
	code := c.QueryParam("code")
	if code == "" {
		return s.frontendErrorRedirect(c, callbackErrAuth)
	}
	if cookie, err := c.Request().Cookie(oauthStateCookie); err != nil || cookie.Value == "" ||
		cookie.Value != c.QueryParam("state") {
		return s.frontendErrorRedirect(c, callbackErrAuth)
	}

	token, err := s.google.Exchange(ctx, code)
	if err != nil {
		return s.frontendErrorRedirect(c, callbackErrAuth)
	}
	info, err := s.google.FetchUserInfo(ctx, token)
	if err != nil {
		return s.frontendErrorRedirect(c, callbackErrUserInfo)
	}

	user, err := s.users.FindByGoogleID(ctx, info.ID)
	isNew := false
	if errors.Is(err, services.ErrNotFound) {
		var avatar *string
		if info.Picture != "" {
			avatar = &info.Picture
		}
		user, err = s.users.Create(ctx, info.ID, info.Email, info.Name, avatar)
		isNew = true
	}
	if err != nil {
		return s.frontendErrorRedirect(c, callbackErrDB)
	}

	pair, tokenID, err := s.tokens.CreateTokenPair(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return s.frontendErrorRedirect(c, callbackErrToken)
	}
	if err := s.storeSession(c, tokenID, user.ID); err != nil {
		return s.frontendErrorRedirect(c, callbackErrToken)
	}

	q := url.Values{}
	q.Set("access_token", pair.AccessToken)
	q.Set("refresh_token", pair.RefreshToken)
	if isNew {
		q.Set("is_new", "true")
	}
	return c.Redirect(http.StatusTemporaryRedirect,
		fmt.Sprintf("%s/auth/callback?%s", s.cfg.FrontendURL, q.Encode()))
}

func (s *Server) storeSession(c *echo.Context, tokenID, userID uuid.UUID) error {
	var userAgent, ip *string
	if ua := c.Request().UserAgent(); ua != "" {
		userAgent = &ua
	}
	if addr := clientIP(c.Request()); addr != "" {
		ip = &addr
	}
	return s.sessions.Create(c.Request().Context(), tokenID, userID,
		time.Now().Add(s.tokens.RefreshTTL()), userAgent, ip)
}

// meHandler handles GET /auth/me: the authenticated user's own record.
func (s *Server) meHandler(c *echo.Context) error {
	principal := auth.PrincipalFrom(c)
	user, err := s.users.FindByID(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// refreshHandler handles POST /auth/refresh: rotates the refresh token and
// issues a fresh pair.
func (s *Server) refreshHandler(c *echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return services.NewValidationError("refresh_token", "Refresh token is required")
	}
	ctx := c.Request().Context()

	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return err
	}
	if _, err := s.sessions.Validate(ctx, claims.TokenID); err != nil {
		return err
	}
	userID, err := claims.UserID()
	if err != nil {
		return fmt.Errorf("bad subject claim: %w", services.ErrInvalidToken)
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	// Rotation: the old session dies with the old token.
	if err := s.sessions.Revoke(ctx, claims.TokenID); err != nil {
		return err
	}
	pair, tokenID, err := s.tokens.CreateTokenPair(user.ID, user.Email, user.DisplayName)
	if err != nil {
		return err
	}
	if err := s.storeSession(c, tokenID, user.ID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, pair)
}

// logoutHandler handles POST /auth/logout: revokes the presented refresh
// token's session.
func (s *Server) logoutHandler(c *echo.Context) error {
	var req refreshRequest
	if err := c.Bind(&req); err != nil || req.RefreshToken == "" {
		return services.NewValidationError("refresh_token", "Refresh token is required")
	}
	claims, err := s.tokens.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		return err
	}
	if err := s.sessions.Revoke(c.Request().Context(), claims.TokenID); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success": true,
		"message": "Logged out",
	})
}

// logoutAllHandler handles POST /auth/logout-all: revokes every session of
// the authenticated user.
func (s *Server) logoutAllHandler(c *echo.Context) error {
	principal := auth.PrincipalFrom(c)
	revoked, err := s.sessions.RevokeAllForUser(c.Request().Context(), principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]any{
		"success":          true,
		"sessions_revoked": revoked,
	})
}

type setUsernameRequest struct {
	Username string `json:"username"`
}

// setUsernameHandler handles POST /auth/set-username.
func (s *Server) setUsernameHandler(c *echo.Context) error {
	var req setUsernameRequest
	if err := c.Bind(&req); err != nil {
		return services.NewValidationError("username", "Username is required")
	}
	username, err := services.ValidateUsername(req.Username)
	if err != nil {
		return err
	}

	principal := auth.PrincipalFrom(c)
	ctx := c.Request().Context()
	if err := s.users.UpdateDisplayName(ctx, principal.UserID, username); err != nil {
		return err
	}
	user, err := s.users.FindByID(ctx, principal.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, user)
}
