package auth

import (
	"fmt"
	"strings"

	echo "github.com/labstack/echo/v5"
	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/services"
)

// principalKey is the echo context key the middleware stores the caller under.
const principalKey = "auth.principal"

// Principal is the authenticated caller extracted from an access token.
type Principal struct {
	UserID uuid.UUID
	Email  string
	Name   string
}

// PrincipalFrom returns the authenticated caller, or nil when the request
// carried no valid token.
func PrincipalFrom(c *echo.Context) *Principal {
	p, _ := c.Get(principalKey).(*Principal)
	return p
}

// Required rejects requests without a valid bearer access token.
func Required(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			principal, err := principalFromRequest(tokens, c)
			if err != nil {
				return err
			}
			c.Set(principalKey, principal)
			return next(c)
		}
	}
}

// Optional attaches a principal when a valid bearer token is present and
// lets the request through anonymously otherwise.
func Optional(tokens *TokenManager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			if principal, err := principalFromRequest(tokens, c); err == nil {
				c.Set(principalKey, principal)
			}
			return next(c)
		}
	}
}

func principalFromRequest(tokens *TokenManager, c *echo.Context) (*Principal, error) {
	header := c.Request().Header.Get("Authorization")
	if header == "" {
		return nil, fmt.Errorf("missing authorization header: %w", services.ErrUnauthorized)
	}
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		return nil, fmt.Errorf("invalid authorization header format: %w", services.ErrUnauthorized)
	}

	claims, err := tokens.ValidateAccessToken(token)
	if err != nil {
		return nil, err
	}
	userID, err := claims.UserID()
	if err != nil {
		return nil, fmt.Errorf("bad subject claim: %w", services.ErrInvalidToken)
	}
	return &Principal{UserID: userID, Email: claims.Email, Name: claims.Name}, nil
}
