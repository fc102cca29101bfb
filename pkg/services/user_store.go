package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/models"
)

// UserStore persists accounts and their aggregate stats.
type UserStore struct {
	db *database.Client
}

// NewUserStore creates a user store.
func NewUserStore(db *database.Client) *UserStore {
	return &UserStore{db: db}
}

// FindByGoogleID looks an account up by its Google subject id.
func (s *UserStore) FindByGoogleID(ctx context.Context, googleID string) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE google_id = $1`, googleID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user with google id: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// FindByID looks an account up by primary key.
func (s *UserStore) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var u models.User
	err := s.db.GetContext(ctx, &u, `SELECT * FROM users WHERE id = $1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user: %w", err)
	}
	return &u, nil
}

// Create inserts the account and its zeroed stats row.
func (s *UserStore) Create(ctx context.Context, googleID, email, displayName string, avatarURL *string) (*models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var u models.User
	err = tx.GetContext(ctx, &u, `
		INSERT INTO users (google_id, email, display_name, avatar_url)
		VALUES ($1, $2, $3, $4)
		RETURNING *`,
		googleID, email, displayName, avatarURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `INSERT INTO user_stats (user_id) VALUES ($1)`, u.ID); err != nil {
		return nil, fmt.Errorf("failed to create user stats: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit user creation: %w", err)
	}
	return &u, nil
}

// UpdateDisplayName sets the chosen username.
func (s *UserStore) UpdateDisplayName(ctx context.Context, userID uuid.UUID, displayName string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE users SET display_name = $1, updated_at = NOW() WHERE id = $2`,
		displayName, userID)
	if err != nil {
		return fmt.Errorf("failed to update display name: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("user %s: %w", userID, ErrNotFound)
	}
	return nil
}

// StatsByUserID loads the aggregate stats row.
func (s *UserStore) StatsByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error) {
	var st models.UserStats
	err := s.db.GetContext(ctx, &st, `SELECT * FROM user_stats WHERE user_id = $1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("stats for user %s: %w", userID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query user stats: %w", err)
	}
	return &st, nil
}

// ratingColumns maps a lowercase difficulty to its ladder column prefix.
// Anything unknown rates on the medium ladder, same as "any" queue games.
func ratingPrefix(difficulty string) string {
	switch difficulty {
	case "easy":
		return "easy"
	case "hard":
		return "hard"
	default:
		return "medium"
	}
}

// ApplyRating moves one player's ladder rating after a ranked game. The new
// rating is clamped at the 100 floor and the peak column tracks the clamped
// value. Runs on the given ext so callers can group all players in one
// transaction.
func (s *UserStore) ApplyRating(ctx context.Context, ext sqlx.ExtContext, userID uuid.UUID, delta int, won bool, difficulty string) error {
	p := ratingPrefix(difficulty)
	query := fmt.Sprintf(`
		UPDATE user_stats
		SET %[1]s_rating = GREATEST(100, %[1]s_rating + $2),
		    %[1]s_peak_rating = GREATEST(%[1]s_peak_rating, GREATEST(100, %[1]s_rating + $2)),
		    %[1]s_ranked_games = %[1]s_ranked_games + 1,
		    %[1]s_ranked_wins = %[1]s_ranked_wins + $3,
		    updated_at = NOW()
		WHERE user_id = $1`, p)

	wins := 0
	if won {
		wins = 1
	}
	if ext == nil {
		ext = s.db
	}
	if _, err := ext.ExecContext(ctx, query, userID, delta, wins); err != nil {
		return fmt.Errorf("failed to apply rating: %w", err)
	}
	return nil
}

// Beginx exposes transaction creation for multi-store operations.
func (s *UserStore) Beginx(ctx context.Context) (*sqlx.Tx, error) {
	return s.db.BeginTxx(ctx, nil)
}

// RatingUpdate is one player's ladder movement after a ranked game.
type RatingUpdate struct {
	UserID uuid.UUID
	Delta  int
	Won    bool
}

// ApplyRatings moves every player's ladder rating in one transaction so a
// ranked game never half-applies.
func (s *UserStore) ApplyRatings(ctx context.Context, difficulty string, updates []RatingUpdate) error {
	if len(updates) == 0 {
		return nil
	}
	tx, err := s.Beginx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin rating transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, u := range updates {
		if err := s.ApplyRating(ctx, tx, u.UserID, u.Delta, u.Won, difficulty); err != nil {
			return err
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit rating updates: %w", err)
	}
	return nil
}
