package models

import (
	"time"

	"github.com/google/uuid"
)

// GameResult is one finished submission outcome tied to a room.
type GameResult struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	RoomID       string     `db:"room_id" json:"room_id"`
	ProblemID    string     `db:"problem_id" json:"problem_id"`
	UserID       *uuid.UUID `db:"user_id" json:"user_id"`
	Placement    int        `db:"placement" json:"placement"`
	TotalPlayers int        `db:"total_players" json:"total_players"`
	SolveTimeMs  *int64     `db:"solve_time_ms" json:"solve_time_ms"`
	PassedTests  int        `db:"passed_tests" json:"passed_tests"`
	TotalTests   int        `db:"total_tests" json:"total_tests"`
	Language     string     `db:"language" json:"language"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// ProblemBest aggregates a user's best outcome for one problem.
type ProblemBest struct {
	ProblemID      string `db:"problem_id" json:"problem_id"`
	BestSolveMs    int64  `db:"best_solve_ms" json:"best_solve_ms"`
	Attempts       int    `db:"attempts" json:"attempts"`
	MaxPassedTests int    `db:"max_passed_tests" json:"max_passed_tests"`
	MaxTotalTests  int    `db:"max_total_tests" json:"max_total_tests"`
}

// RatingChange is the per-player Elo movement included in the game_over
// broadcast. Guests carry a zero Change.
type RatingChange struct {
	OldRating int `json:"old_rating"`
	NewRating int `json:"new_rating"`
	Change    int `json:"change"`
}
