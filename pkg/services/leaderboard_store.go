package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/database"
)

// Leaderboard sort keys.
const (
	SortByWins           = "wins"
	SortByProblemsSolved = "problems_solved"
	SortByFastest        = "fastest"
	SortByStreak         = "streak"
)

// LeaderboardEntry is one ranked row.
type LeaderboardEntry struct {
	Rank           int       `db:"-" json:"rank"`
	UserID         uuid.UUID `db:"user_id" json:"user_id"`
	DisplayName    string    `db:"display_name" json:"display_name"`
	AvatarURL      *string   `db:"avatar_url" json:"avatar_url"`
	GamesPlayed    int       `db:"games_played" json:"games_played"`
	GamesWon       int       `db:"games_won" json:"games_won"`
	ProblemsSolved int       `db:"problems_solved" json:"problems_solved"`
	FastestSolveMs *int64    `db:"fastest_solve_ms" json:"fastest_solve_ms"`
	LongestStreak  int       `db:"longest_streak" json:"longest_streak"`
	WinRate        float64   `db:"win_rate" json:"win_rate"`
}

// LeaderboardStore serves the global rankings.
type LeaderboardStore struct {
	db *database.Client
}

// NewLeaderboardStore creates a leaderboard store.
func NewLeaderboardStore(db *database.Client) *LeaderboardStore {
	return &LeaderboardStore{db: db}
}

func orderClause(sortBy string) (string, error) {
	switch sortBy {
	case SortByProblemsSolved:
		return "s.problems_solved DESC", nil
	case SortByFastest:
		return "s.fastest_solve_ms ASC NULLS LAST", nil
	case SortByStreak:
		return "s.longest_streak DESC", nil
	case SortByWins:
		return "s.games_won DESC", nil
	default:
		return "", NewValidationError("sort_by",
			"Invalid sort field. Valid options: wins, problems_solved, fastest, streak")
	}
}

// Top returns one page of rankings plus the total count of ranked players.
// Only players with at least one game appear.
func (s *LeaderboardStore) Top(ctx context.Context, sortBy string, limit, offset int) ([]LeaderboardEntry, int, error) {
	order, err := orderClause(sortBy)
	if err != nil {
		return nil, 0, err
	}

	entries := []LeaderboardEntry{}
	query := fmt.Sprintf(`
		SELECT
			u.id AS user_id,
			u.display_name,
			u.avatar_url,
			s.games_played,
			s.games_won,
			s.problems_solved,
			s.fastest_solve_ms,
			s.longest_streak,
			CASE WHEN s.games_played > 0
				THEN ROUND(s.games_won::NUMERIC / s.games_played * 100, 1)::FLOAT8
				ELSE 0 END AS win_rate
		FROM user_stats s
		JOIN users u ON u.id = s.user_id
		WHERE s.games_played > 0
		ORDER BY %s
		LIMIT $1 OFFSET $2`, order)
	if err := s.db.SelectContext(ctx, &entries, query, limit, offset); err != nil {
		return nil, 0, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	var total int
	if err := s.db.GetContext(ctx, &total,
		`SELECT COUNT(*) FROM user_stats WHERE games_played > 0`); err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard: %w", err)
	}

	for i := range entries {
		entries[i].Rank = offset + i + 1
	}
	return entries, total, nil
}
