package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"

	"github.com/bitbattle/bitbattle/pkg/database"
	"github.com/bitbattle/bitbattle/pkg/problems"
)

// AI problem lifecycle statuses.
const (
	AIStatusPendingValidation = "pending_validation"
	AIStatusValidating        = "validating"
	AIStatusValidated         = "validated"
	AIStatusRejected          = "rejected"
)

// MaxValidationAttempts bounds how often a pending problem is retried before
// it is rejected.
const MaxValidationAttempts = 3

// AIProblem is the persisted form of a generated problem. Problem content
// columns are JSONB and round-trip through problems.Problem.
type AIProblem struct {
	ID                  string         `db:"id"`
	Title               string         `db:"title"`
	Description         string         `db:"description"`
	Difficulty          string         `db:"difficulty"`
	Examples            types.JSONText `db:"examples"`
	TestCases           types.JSONText `db:"test_cases"`
	StarterCode         types.JSONText `db:"starter_code"`
	TimeLimitMinutes    *int           `db:"time_limit_minutes"`
	Tags                types.JSONText `db:"tags"`
	Status              string         `db:"status"`
	ValidationAttempts  int            `db:"validation_attempts"`
	LastValidationError *string        `db:"last_validation_error"`
	TimesUsed           int            `db:"times_used"`
	RefSolutionLanguage string         `db:"reference_solution_language"`
	RefSolutionCode     string         `db:"reference_solution_code"`
	CreatedAt           time.Time      `db:"created_at"`
	ValidatedAt         *time.Time     `db:"validated_at"`
}

// ToProblem decodes the JSONB columns into a playable problem.
func (p *AIProblem) ToProblem() (*problems.Problem, error) {
	out := &problems.Problem{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Difficulty:       problems.Difficulty(p.Difficulty),
		TimeLimitMinutes: p.TimeLimitMinutes,
	}
	if err := json.Unmarshal(p.Examples, &out.Examples); err != nil {
		return nil, fmt.Errorf("failed to decode examples: %w", err)
	}
	if err := json.Unmarshal(p.TestCases, &out.TestCases); err != nil {
		return nil, fmt.Errorf("failed to decode test cases: %w", err)
	}
	if err := json.Unmarshal(p.StarterCode, &out.StarterCode); err != nil {
		return nil, fmt.Errorf("failed to decode starter code: %w", err)
	}
	if err := json.Unmarshal(p.Tags, &out.Tags); err != nil {
		return nil, fmt.Errorf("failed to decode tags: %w", err)
	}
	return out, nil
}

// AIProblemStore persists generated problems and their validation lifecycle.
type AIProblemStore struct {
	db *database.Client
}

// NewAIProblemStore creates an AI problem store.
func NewAIProblemStore(db *database.Client) *AIProblemStore {
	return &AIProblemStore{db: db}
}

var _ problems.AIStore = (*AIProblemStore)(nil)

// Insert stores a freshly generated candidate with its reference solution.
func (s *AIProblemStore) Insert(ctx context.Context, p *AIProblem) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO ai_problems
		(id, title, description, difficulty, examples, test_cases, starter_code,
		 time_limit_minutes, tags, status, validation_attempts, last_validation_error,
		 reference_solution_language, reference_solution_code, validated_at)
		VALUES
		(:id, :title, :description, :difficulty, :examples, :test_cases, :starter_code,
		 :time_limit_minutes, :tags, :status, :validation_attempts, :last_validation_error,
		 :reference_solution_language, :reference_solution_code, :validated_at)`,
		p)
	if err != nil {
		return fmt.Errorf("failed to insert ai problem: %w", err)
	}
	return nil
}

// PoolCounts returns how many validated problems exist per difficulty.
func (s *AIProblemStore) PoolCounts(ctx context.Context) (map[string]int, error) {
	rows := []struct {
		Difficulty string `db:"difficulty"`
		Count      int    `db:"count"`
	}{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT difficulty, COUNT(*) AS count
		FROM ai_problems
		WHERE status = $1
		GROUP BY difficulty`,
		AIStatusValidated)
	if err != nil {
		return nil, fmt.Errorf("failed to count ai problem pool: %w", err)
	}
	counts := make(map[string]int, len(rows))
	for _, r := range rows {
		counts[r.Difficulty] = r.Count
	}
	return counts, nil
}

// FindUnseen picks a validated problem of the difficulty that none of the
// players has seen, preferring the least-used one and randomizing ties.
func (s *AIProblemStore) FindUnseen(ctx context.Context, difficulty problems.Difficulty, playerIDs []uuid.UUID) (*problems.Problem, error) {
	var row AIProblem
	var err error

	if len(playerIDs) == 0 {
		err = s.db.GetContext(ctx, &row, `
			SELECT * FROM ai_problems
			WHERE status = $1 AND difficulty = $2
			ORDER BY times_used ASC, RANDOM()
			LIMIT 1`,
			AIStatusValidated, string(difficulty))
	} else {
		var query string
		var args []any
		query, args, err = sqlx.In(`
			SELECT * FROM ai_problems p
			WHERE p.status = ? AND p.difficulty = ?
			  AND NOT EXISTS (
			    SELECT 1 FROM player_problem_history h
			    WHERE h.problem_id = p.id AND h.user_id IN (?)
			  )
			ORDER BY p.times_used ASC, RANDOM()
			LIMIT 1`,
			AIStatusValidated, string(difficulty), playerIDs)
		if err != nil {
			return nil, fmt.Errorf("failed to build unseen query: %w", err)
		}
		err = s.db.GetContext(ctx, &row, s.db.Rebind(query), args...)
	}

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no unseen %s ai problem: %w", difficulty, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query unseen ai problem: %w", err)
	}
	return row.ToProblem()
}

// FindByID loads one validated problem by id, used to resolve submissions
// against AI problems.
func (s *AIProblemStore) FindByID(ctx context.Context, id string) (*problems.Problem, error) {
	var row AIProblem
	err := s.db.GetContext(ctx, &row,
		`SELECT * FROM ai_problems WHERE id = $1 AND status = $2`,
		id, AIStatusValidated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("ai problem %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query ai problem: %w", err)
	}
	return row.ToProblem()
}

// MarkUsed bumps the usage counter and records history for each player.
func (s *AIProblemStore) MarkUsed(ctx context.Context, problemID string, playerIDs []uuid.UUID) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE ai_problems SET times_used = times_used + 1 WHERE id = $1`, problemID); err != nil {
		return fmt.Errorf("failed to mark ai problem used: %w", err)
	}
	for _, uid := range playerIDs {
		if _, err := s.db.ExecContext(ctx, `
			INSERT INTO player_problem_history (user_id, problem_id)
			VALUES ($1, $2)
			ON CONFLICT DO NOTHING`,
			uid, problemID); err != nil {
			return fmt.Errorf("failed to record problem history: %w", err)
		}
	}
	return nil
}

// ClaimPending atomically claims the oldest retryable pending problem and
// flips it to validating. SKIP LOCKED keeps concurrent validators from
// grabbing the same row.
func (s *AIProblemStore) ClaimPending(ctx context.Context) (*AIProblem, error) {
	var row AIProblem
	err := s.db.GetContext(ctx, &row, `
		UPDATE ai_problems SET status = $1
		WHERE id = (
			SELECT id FROM ai_problems
			WHERE status = $2 AND validation_attempts < $3
			ORDER BY created_at ASC
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING *`,
		AIStatusValidating, AIStatusPendingValidation, MaxValidationAttempts)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("no pending ai problem: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending ai problem: %w", err)
	}
	return &row, nil
}

// UpdateStatus records a validation outcome and bumps the attempt counter.
// validated_at is stamped only on success.
func (s *AIProblemStore) UpdateStatus(ctx context.Context, id, status string, validationErr *string) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE ai_problems SET
			status = $2,
			last_validation_error = $3,
			validation_attempts = validation_attempts + 1,
			validated_at = CASE WHEN $2 = $4 THEN NOW() ELSE validated_at END
		WHERE id = $1`,
		id, status, validationErr, AIStatusValidated)
	if err != nil {
		return fmt.Errorf("failed to update ai problem status: %w", err)
	}
	return nil
}
