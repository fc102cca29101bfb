package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/models"
)

// GameResultStore persists submission outcomes and rolls them into stats.
type GameResultStore struct {
	db *database.Client
}

// NewGameResultStore creates a game result store.
func NewGameResultStore(db *database.Client) *GameResultStore {
	return &GameResultStore{db: db}
}

// Create records one finished submission.
func (s *GameResultStore) Create(ctx context.Context, r *models.GameResult) (*models.GameResult, error) {
	var out models.GameResult
	err := s.db.GetContext(ctx, &out, `
		INSERT INTO game_results
		(room_id, problem_id, user_id, placement, total_players, solve_time_ms, passed_tests, total_tests, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING *`,
		r.RoomID, r.ProblemID, r.UserID, r.Placement, r.TotalPlayers,
		r.SolveTimeMs, r.PassedTests, r.TotalTests, r.Language)
	if err != nil {
		return nil, fmt.Errorf("failed to create game result: %w", err)
	}
	return &out, nil
}

// FindByUser returns the newest results for a user, newest first.
func (s *GameResultStore) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]models.GameResult, error) {
	results := []models.GameResult{}
	err := s.db.SelectContext(ctx, &results,
		`SELECT * FROM game_results WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`,
		userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query game history: %w", err)
	}
	return results, nil
}

// ProblemBests aggregates per-problem personal bests over solved attempts.
func (s *GameResultStore) ProblemBests(ctx context.Context, userID uuid.UUID) ([]models.ProblemBest, error) {
	bests := []models.ProblemBest{}
	err := s.db.SelectContext(ctx, &bests, `
		SELECT
			problem_id,
			MIN(solve_time_ms) AS best_solve_ms,
			COUNT(*) AS attempts,
			MAX(passed_tests) AS max_passed_tests,
			MAX(total_tests) AS max_total_tests
		FROM game_results
		WHERE user_id = $1 AND solve_time_ms IS NOT NULL
		GROUP BY problem_id
		ORDER BY problem_id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query problem bests: %w", err)
	}
	return bests, nil
}

// UpdateStatsAfterGame rolls one submission into the aggregate counters.
// Wins also advance the daily streak: a win today or the day after the last
// play extends it, anything later resets it to 1.
func (s *GameResultStore) UpdateStatsAfterGame(ctx context.Context, userID uuid.UUID, isWin, passed bool, solveTimeMs *int64) error {
	// Streak decisions read last_played_at before this update stamps it.
	var lastPlayed *time.Time
	if isWin {
		if err := s.db.GetContext(ctx, &lastPlayed,
			`SELECT last_played_at FROM user_stats WHERE user_id = $1`, userID); err != nil {
			return fmt.Errorf("failed to read last played: %w", err)
		}
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE user_stats SET
			games_played = games_played + 1,
			games_won = games_won + CASE WHEN $2 THEN 1 ELSE 0 END,
			games_lost = games_lost + CASE WHEN NOT $2 THEN 1 ELSE 0 END,
			problems_solved = problems_solved + CASE WHEN $3 THEN 1 ELSE 0 END,
			total_submissions = total_submissions + 1,
			fastest_solve_ms = CASE
				WHEN $4::BIGINT IS NOT NULL AND (fastest_solve_ms IS NULL OR $4 < fastest_solve_ms)
				THEN $4 ELSE fastest_solve_ms END,
			last_played_at = NOW(),
			updated_at = NOW()
		WHERE user_id = $1`,
		userID, isWin, passed, solveTimeMs)
	if err != nil {
		return fmt.Errorf("failed to update user stats: %w", err)
	}

	if isWin {
		if err := s.updateStreak(ctx, userID, lastPlayed); err != nil {
			return err
		}
	}
	return nil
}

func (s *GameResultStore) updateStreak(ctx context.Context, userID uuid.UUID, lastPlayed *time.Time) error {
	increment := true
	if lastPlayed != nil {
		increment = daysBetween(lastPlayed.UTC(), time.Now().UTC()) <= 1
	}

	var err error
	if increment {
		_, err = s.db.ExecContext(ctx, `
			UPDATE user_stats SET
				current_streak = current_streak + 1,
				longest_streak = GREATEST(longest_streak, current_streak + 1)
			WHERE user_id = $1`, userID)
	} else {
		_, err = s.db.ExecContext(ctx,
			`UPDATE user_stats SET current_streak = 1 WHERE user_id = $1`, userID)
	}
	if err != nil {
		return fmt.Errorf("failed to update streak: %w", err)
	}
	return nil
}

// daysBetween counts whole calendar days from a to b in UTC.
func daysBetween(a, b time.Time) int {
	aDay := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bDay := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bDay.Sub(aDay).Hours() / 24)
}
