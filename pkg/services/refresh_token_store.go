package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/models"
)

// RefreshTokenStore tracks the server-side session rows behind refresh JWTs.
type RefreshTokenStore struct {
	db *database.Client
}

// NewRefreshTokenStore creates a refresh token store.
func NewRefreshTokenStore(db *database.Client) *RefreshTokenStore {
	return &RefreshTokenStore{db: db}
}

// Create records a newly issued refresh token.
func (s *RefreshTokenStore) Create(ctx context.Context, tokenID, userID uuid.UUID, expiresAt time.Time, userAgent, ipAddress *string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO refresh_tokens (token_id, user_id, expires_at, user_agent, ip_address)
		VALUES ($1, $2, $3, $4, $5)`,
		tokenID, userID, expiresAt, userAgent, ipAddress)
	if err != nil {
		return fmt.Errorf("failed to store refresh token: %w", err)
	}
	return nil
}

// Validate checks that the token row exists, is unrevoked, and is unexpired.
// Revoked or missing rows map to ErrSessionRevoked so the client knows to
// sign in again rather than retry.
func (s *RefreshTokenStore) Validate(ctx context.Context, tokenID uuid.UUID) (*models.RefreshToken, error) {
	var t models.RefreshToken
	err := s.db.GetContext(ctx, &t, `SELECT * FROM refresh_tokens WHERE token_id = $1`, tokenID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("refresh token %s: %w", tokenID, ErrSessionRevoked)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query refresh token: %w", err)
	}
	if t.RevokedAt != nil {
		return nil, fmt.Errorf("refresh token %s: %w", tokenID, ErrSessionRevoked)
	}
	if time.Now().After(t.ExpiresAt) {
		return nil, fmt.Errorf("refresh token %s: %w", tokenID, ErrTokenExpired)
	}
	return &t, nil
}

// Revoke marks one token unusable.
func (s *RefreshTokenStore) Revoke(ctx context.Context, tokenID uuid.UUID) error {
	_, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE token_id = $1 AND revoked_at IS NULL`,
		tokenID)
	if err != nil {
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RevokeAllForUser invalidates every live session and reports how many.
func (s *RefreshTokenStore) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`UPDATE refresh_tokens SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`,
		userID)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke sessions: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// DeleteExpired drops rows past their expiry; revoked rows are kept until
// they expire so audits can still see them.
func (s *RefreshTokenStore) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM refresh_tokens WHERE expires_at < NOW()`)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}
