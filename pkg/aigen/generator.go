package aigen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx/types"

	"github.com/bitbattle/bitbattle/pkg/llm"
	"github.com/bitbattle/bitbattle/pkg/problems"
	"github.com/bitbattle/bitbattle/pkg/services"
)

// Store is the slice of the AI problem store the generator needs.
type Store interface {
	PoolCounts(ctx context.Context) (map[string]int, error)
	Insert(ctx context.Context, p *services.AIProblem) error
	ClaimPending(ctx context.Context) (*services.AIProblem, error)
	UpdateStatus(ctx context.Context, id, status string, validationErr *string) error
}

// Floors are the minimum validated pool sizes per difficulty.
type Floors struct {
	Easy   int
	Medium int
	Hard   int
}

// For returns the floor for a tier.
func (f Floors) For(d problems.Difficulty) int {
	switch d {
	case problems.Easy:
		return f.Easy
	case problems.Hard:
		return f.Hard
	default:
		return f.Medium
	}
}

// Generator is the background loop that tops up the problem pools and
// retries pending validations.
type Generator struct {
	store     Store
	provider  llm.Provider
	validator *Validator
	floors    Floors
	interval  time.Duration

	cancel context.CancelFunc
	done   chan struct{}
}

// NewGenerator creates the generation loop.
func NewGenerator(store Store, provider llm.Provider, validator *Validator, floors Floors, interval time.Duration) *Generator {
	return &Generator{
		store:     store,
		provider:  provider,
		validator: validator,
		floors:    floors,
		interval:  interval,
	}
}

// Start launches the background loop.
func (g *Generator) Start(ctx context.Context) {
	if g.cancel != nil {
		return
	}
	ctx, g.cancel = context.WithCancel(ctx)
	g.done = make(chan struct{})

	go g.run(ctx)

	slog.Info("AI problem generator started",
		"provider", g.provider.Name(),
		"model", g.provider.Model(),
		"interval", g.interval)
}

// Stop signals the loop to exit and waits for it to finish.
func (g *Generator) Stop() {
	if g.cancel == nil {
		return
	}
	g.cancel()
	<-g.done
	slog.Info("AI problem generator stopped")
}

func (g *Generator) run(ctx context.Context) {
	defer close(g.done)

	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			g.tick(ctx)
		}
	}
}

func (g *Generator) tick(ctx context.Context) {
	if err := g.checkAndGenerate(ctx); err != nil {
		slog.Error("Problem generation pass failed", "error", err)
	}
	if err := g.validatePending(ctx); err != nil {
		slog.Error("Pending validation pass failed", "error", err)
	}
}

// checkAndGenerate tops up every difficulty pool below its floor by one
// problem per tick.
func (g *Generator) checkAndGenerate(ctx context.Context) error {
	counts, err := g.store.PoolCounts(ctx)
	if err != nil {
		return err
	}

	for _, d := range []problems.Difficulty{problems.Easy, problems.Medium, problems.Hard} {
		// PoolCounts keys match the stored difficulty column ("Easy", not "easy").
		have := counts[string(d)]
		floor := g.floors.For(d)
		if have >= floor {
			continue
		}
		slog.Info("Problem pool low, generating", "difficulty", d, "have", have, "floor", floor)
		if err := g.GenerateProblem(ctx, d); err != nil {
			var rateErr *llm.RateLimitedError
			if errors.As(err, &rateErr) {
				slog.Warn("LLM rate limited, backing off",
					"retry_after_seconds", rateErr.RetryAfterSeconds)
				return nil
			}
			if errors.Is(err, llm.ErrContentFiltered) {
				slog.Warn("Generation discarded by content filter", "difficulty", d)
				continue
			}
			return err
		}
	}
	return nil
}

// GenerateProblem requests one problem from the LLM, validates it, and
// persists it with the matching status.
func (g *Generator) GenerateProblem(ctx context.Context, difficulty problems.Difficulty) error {
	resp, err := g.provider.Complete(ctx, SystemPrompt, GenerationPrompt(difficulty))
	if err != nil {
		return fmt.Errorf("LLM error: %w", err)
	}
	if resp.Usage != nil {
		slog.Info("LLM tokens used",
			"prompt", resp.Usage.PromptTokens,
			"completion", resp.Usage.CompletionTokens,
			"total", resp.Usage.TotalTokens)
	}

	generated, err := ParseGenerated(resp.Content)
	if err != nil {
		return fmt.Errorf("failed to parse LLM response: %w", err)
	}
	slog.Info("Generated problem", "title", generated.Title, "difficulty", difficulty)

	problemID := fmt.Sprintf("ai-%s-%d", Slugify(generated.Title), time.Now().UnixMilli()%10000)

	row, err := toRow(problemID, difficulty, generated)
	if err != nil {
		return err
	}

	status := services.AIStatusValidated
	var validationErr *string
	var validatedAt *time.Time
	if err := g.validator.Validate(ctx, generated); err != nil {
		status = services.AIStatusPendingValidation
		msg := err.Error()
		validationErr = &msg
		slog.Warn("Problem failed validation", "problem", problemID, "error", msg)
	} else {
		now := time.Now()
		validatedAt = &now
		slog.Info("Problem validated", "problem", problemID)
	}
	row.Status = status
	row.LastValidationError = validationErr
	row.ValidatedAt = validatedAt

	if err := g.store.Insert(ctx, row); err != nil {
		return err
	}
	return nil
}

// validatePending claims one pending candidate and re-runs its stored
// reference solution. Candidates at the attempt cap are rejected by the
// claim query itself never returning them; the bump to the cap happens via
// UpdateStatus.
func (g *Generator) validatePending(ctx context.Context) error {
	row, err := g.store.ClaimPending(ctx)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			return nil
		}
		return err
	}
	slog.Info("Re-validating pending problem", "problem", row.ID, "attempts", row.ValidationAttempts)

	generated, err := fromRow(row)
	if err != nil {
		msg := err.Error()
		return g.store.UpdateStatus(ctx, row.ID, services.AIStatusRejected, &msg)
	}

	if err := g.validator.Validate(ctx, generated); err != nil {
		msg := err.Error()
		status := services.AIStatusPendingValidation
		if row.ValidationAttempts+1 >= services.MaxValidationAttempts {
			status = services.AIStatusRejected
			slog.Warn("Problem rejected after max attempts", "problem", row.ID)
		}
		return g.store.UpdateStatus(ctx, row.ID, status, &msg)
	}

	slog.Info("Pending problem validated", "problem", row.ID)
	return g.store.UpdateStatus(ctx, row.ID, services.AIStatusValidated, nil)
}

func toRow(problemID string, difficulty problems.Difficulty, p *GeneratedProblem) (*services.AIProblem, error) {
	examples, err := json.Marshal(p.Examples)
	if err != nil {
		return nil, fmt.Errorf("failed to encode examples: %w", err)
	}
	testCases, err := json.Marshal(p.TestCases)
	if err != nil {
		return nil, fmt.Errorf("failed to encode test cases: %w", err)
	}
	starterCode, err := json.Marshal(p.StarterCode)
	if err != nil {
		return nil, fmt.Errorf("failed to encode starter code: %w", err)
	}
	tags, err := json.Marshal(p.Tags)
	if err != nil {
		return nil, fmt.Errorf("failed to encode tags: %w", err)
	}

	return &services.AIProblem{
		ID:                  problemID,
		Title:               p.Title,
		Description:         p.Description,
		Difficulty:          string(difficulty),
		Examples:            types.JSONText(examples),
		TestCases:           types.JSONText(testCases),
		StarterCode:         types.JSONText(starterCode),
		TimeLimitMinutes:    p.TimeLimitMinutes,
		Tags:                types.JSONText(tags),
		RefSolutionLanguage: p.ReferenceSolution.Language,
		RefSolutionCode:     p.ReferenceSolution.Code,
	}, nil
}

// fromRow rebuilds the generated form so a pending row can be re-validated
// with its persisted reference solution.
func fromRow(row *services.AIProblem) (*GeneratedProblem, error) {
	prob, err := row.ToProblem()
	if err != nil {
		return nil, err
	}
	return &GeneratedProblem{
		Title:            prob.Title,
		Description:      prob.Description,
		Examples:         prob.Examples,
		TestCases:        prob.TestCases,
		StarterCode:      prob.StarterCode,
		TimeLimitMinutes: prob.TimeLimitMinutes,
		Tags:             prob.Tags,
		ReferenceSolution: ReferenceSolution{
			Language: row.RefSolutionLanguage,
			Code:     row.RefSolutionCode,
		},
	}, nil
}
