// Package models defines the persistent and wire-level data types shared
// across services, stores, and API handlers.
package models

import (
	"time"

	"github.com/google/uuid"
)

// User is an authenticated account created through Google sign-in.
type User struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GoogleID    string    `db:"google_id" json:"-"`
	Email       string    `db:"email" json:"email"`
	DisplayName string    `db:"display_name" json:"display_name"`
	AvatarURL   *string   `db:"avatar_url" json:"avatar_url"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// UserStats is the per-user aggregate row, including the per-difficulty
// ranked ladder columns.
type UserStats struct {
	UserID           uuid.UUID  `db:"user_id" json:"user_id"`
	GamesPlayed      int        `db:"games_played" json:"games_played"`
	GamesWon         int        `db:"games_won" json:"games_won"`
	GamesLost        int        `db:"games_lost" json:"games_lost"`
	ProblemsSolved   int        `db:"problems_solved" json:"problems_solved"`
	TotalSubmissions int        `db:"total_submissions" json:"total_submissions"`
	FastestSolveMs   *int64     `db:"fastest_solve_ms" json:"fastest_solve_ms"`
	CurrentStreak    int        `db:"current_streak" json:"current_streak"`
	LongestStreak    int        `db:"longest_streak" json:"longest_streak"`
	LastPlayedAt     *time.Time `db:"last_played_at" json:"last_played_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`

	EasyRating       int `db:"easy_rating" json:"easy_rating"`
	EasyPeakRating   int `db:"easy_peak_rating" json:"easy_peak_rating"`
	EasyRankedGames  int `db:"easy_ranked_games" json:"easy_ranked_games"`
	EasyRankedWins   int `db:"easy_ranked_wins" json:"easy_ranked_wins"`
	MediumRating     int `db:"medium_rating" json:"medium_rating"`
	MediumPeakRating int `db:"medium_peak_rating" json:"medium_peak_rating"`
	MediumRankedGames int `db:"medium_ranked_games" json:"medium_ranked_games"`
	MediumRankedWins int `db:"medium_ranked_wins" json:"medium_ranked_wins"`
	HardRating       int `db:"hard_rating" json:"hard_rating"`
	HardPeakRating   int `db:"hard_peak_rating" json:"hard_peak_rating"`
	HardRankedGames  int `db:"hard_ranked_games" json:"hard_ranked_games"`
	HardRankedWins   int `db:"hard_ranked_wins" json:"hard_ranked_wins"`
}

// RatingFor returns the ladder rating for a difficulty string. Unknown
// difficulties fall back to medium, matching how queue-wide "any" games
// are rated.
func (s *UserStats) RatingFor(difficulty string) int {
	switch difficulty {
	case "easy":
		return s.EasyRating
	case "hard":
		return s.HardRating
	default:
		return s.MediumRating
	}
}

// RankedGamesFor returns the ranked game count used for K-factor selection.
func (s *UserStats) RankedGamesFor(difficulty string) int {
	switch difficulty {
	case "easy":
		return s.EasyRankedGames
	case "hard":
		return s.HardRankedGames
	default:
		return s.MediumRankedGames
	}
}
