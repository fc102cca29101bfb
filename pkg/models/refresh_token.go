package models

import (
	"time"

	"github.com/google/uuid"
)

// RefreshToken is a server-side session record backing a refresh JWT.
// A token is usable while it is neither revoked nor past expires_at.
type RefreshToken struct {
	TokenID   uuid.UUID  `db:"token_id" json:"token_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	ExpiresAt time.Time  `db:"expires_at" json:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at" json:"revoked_at"`
	UserAgent *string    `db:"user_agent" json:"-"`
	IPAddress *string    `db:"ip_address" json:"-"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
