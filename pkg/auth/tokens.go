// Package auth issues and verifies the JWT pair (short-lived access,
// revocable refresh) and drives the Google OAuth exchange.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/services"
)

// Token type claim values.
const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

// AccessClaims are the access-token claims.
type AccessClaims struct {
	Email     string `json:"email"`
	Name      string `json:"name"`
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// RefreshClaims are the refresh-token claims. TokenID keys the durable
// revocation row.
type RefreshClaims struct {
	TokenID   uuid.UUID `json:"token_id"`
	TokenType string    `json:"token_type"`
	jwt.RegisteredClaims
}

// TokenPair is the issued pair returned to clients.
type TokenPair struct {
	AccessToken           string `json:"access_token"`
	RefreshToken          string `json:"refresh_token"`
	AccessTokenExpiresIn  int64  `json:"access_token_expires_in"`
	RefreshTokenExpiresIn int64  `json:"refresh_token_expires_in"`
}

// TokenManager signs and verifies tokens with a shared HMAC secret.
type TokenManager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewTokenManager creates a manager. accessTTL defaults to 15 minutes and
// refreshTTL to 7 days when zero.
func NewTokenManager(secret string, accessTTL, refreshTTL time.Duration) *TokenManager {
	if accessTTL == 0 {
		accessTTL = 15 * time.Minute
	}
	if refreshTTL == 0 {
		refreshTTL = 7 * 24 * time.Hour
	}
	return &TokenManager{secret: []byte(secret), accessTTL: accessTTL, refreshTTL: refreshTTL}
}

// CreateAccessToken issues a short-lived access token.
func (m *TokenManager) CreateAccessToken(userID uuid.UUID, email, name string) (string, error) {
	now := time.Now()
	claims := AccessClaims{
		Email:     email,
		Name:      name,
		TokenType: TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return token, nil
}

// CreateRefreshToken issues a long-lived refresh token and returns the token
// id used for revocation tracking.
func (m *TokenManager) CreateRefreshToken(userID uuid.UUID) (string, uuid.UUID, error) {
	now := time.Now()
	tokenID := uuid.New()
	claims := RefreshClaims{
		TokenID:   tokenID,
		TokenType: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.refreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return token, tokenID, nil
}

// CreateTokenPair issues both tokens. The returned token id identifies the
// refresh token's revocation row.
func (m *TokenManager) CreateTokenPair(userID uuid.UUID, email, name string) (*TokenPair, uuid.UUID, error) {
	access, err := m.CreateAccessToken(userID, email, name)
	if err != nil {
		return nil, uuid.Nil, err
	}
	refresh, tokenID, err := m.CreateRefreshToken(userID)
	if err != nil {
		return nil, uuid.Nil, err
	}
	return &TokenPair{
		AccessToken:           access,
		RefreshToken:          refresh,
		AccessTokenExpiresIn:  int64(m.accessTTL.Seconds()),
		RefreshTokenExpiresIn: int64(m.refreshTTL.Seconds()),
	}, tokenID, nil
}

// RefreshTTL returns the refresh token lifetime, used to stamp the durable
// revocation row.
func (m *TokenManager) RefreshTTL() time.Duration {
	return m.refreshTTL
}

// ValidateAccessToken verifies signature and expiry and rejects anything but
// an access token.
func (m *TokenManager) ValidateAccessToken(token string) (*AccessClaims, error) {
	claims := &AccessClaims{}
	if err := m.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeAccess {
		return nil, fmt.Errorf("not an access token: %w", services.ErrInvalidToken)
	}
	return claims, nil
}

// ValidateRefreshToken verifies signature and expiry and rejects anything
// but a refresh token.
func (m *TokenManager) ValidateRefreshToken(token string) (*RefreshClaims, error) {
	claims := &RefreshClaims{}
	if err := m.parse(token, claims); err != nil {
		return nil, err
	}
	if claims.TokenType != TokenTypeRefresh {
		return nil, fmt.Errorf("not a refresh token: %w", services.ErrInvalidToken)
	}
	return claims, nil
}

func (m *TokenManager) parse(token string, claims jwt.Claims) error {
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return fmt.Errorf("token expired: %w", services.ErrTokenExpired)
		}
		return fmt.Errorf("token validation failed: %w", services.ErrInvalidToken)
	}
	return nil
}

// UserID extracts the subject uuid from access claims.
func (c *AccessClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// UserID extracts the subject uuid from refresh claims.
func (c *RefreshClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}
