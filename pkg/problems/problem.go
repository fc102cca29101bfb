// Package problems holds the coding-problem catalog: the compiled-in static
// set plus validated AI-generated problems served through a pluggable store.
package problems

import (
	"context"
	"math/rand"

	"github.com/google/uuid"
)

// Difficulty is the problem tier. The wire form is capitalized
// ("Easy"/"Medium"/"Hard"); queue-level strings are lowercase and parsed
// with ParseDifficulty.
type Difficulty string

const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// ParseDifficulty maps a lowercase difficulty string to its tier.
// Unknown values return ok=false.
func ParseDifficulty(s string) (Difficulty, bool) {
	switch s {
	case "easy":
		return Easy, true
	case "medium":
		return Medium, true
	case "hard":
		return Hard, true
	default:
		return "", false
	}
}

// Lower returns the lowercase form used in queue parameters and rating
// columns.
func (d Difficulty) Lower() string {
	switch d {
	case Easy:
		return "easy"
	case Medium:
		return "medium"
	case Hard:
		return "hard"
	default:
		return "medium"
	}
}

// TestCase is a single input/expected-output pair. Examples shown to players
// reuse the same shape with a human-readable input.
type TestCase struct {
	Input          string  `json:"input"`
	ExpectedOutput string  `json:"expected_output"`
	Explanation    *string `json:"explanation"`
}

// Problem is a playable coding problem.
type Problem struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Difficulty  Difficulty        `json:"difficulty"`
	Examples    []TestCase        `json:"examples"`
	TestCases   []TestCase        `json:"test_cases"`
	StarterCode map[string]string `json:"starter_code"`
	TimeLimitMinutes *int         `json:"time_limit_minutes"`
	Tags        []string          `json:"tags"`
}

// AIStore is the slice of the AI-problem store the registry needs: picking a
// validated problem nobody in the room has seen and recording its use.
type AIStore interface {
	// FindUnseen returns a validated problem of the given difficulty that no
	// listed player has in their history, preferring the least-used one.
	// Returns services.ErrNotFound-compatible errors when the pool is empty.
	FindUnseen(ctx context.Context, difficulty Difficulty, playerIDs []uuid.UUID) (*Problem, error)
	// MarkUsed increments the usage counter and records history rows for the
	// given players.
	MarkUsed(ctx context.Context, problemID string, playerIDs []uuid.UUID) error
}

// Registry serves problems from the static catalog, falling back between
// tiers the way room creation expects.
type Registry struct {
	static  map[string]*Problem
	order   []string
	aiStore AIStore
}

// NewRegistry builds a registry over the compiled-in problems. aiStore may be
// nil when AI problems are disabled.
func NewRegistry(aiStore AIStore) *Registry {
	r := &Registry{
		static:  make(map[string]*Problem),
		aiStore: aiStore,
	}
	for _, p := range defaultProblems() {
		r.add(p)
	}
	return r
}

func (r *Registry) add(p *Problem) {
	if _, ok := r.static[p.ID]; !ok {
		r.order = append(r.order, p.ID)
	}
	r.static[p.ID] = p
}

// Get returns the static problem with the given id, or nil.
func (r *Registry) Get(id string) *Problem {
	return r.static[id]
}

// IDs returns static problem ids in load order.
func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// RandomByDifficulty picks a random static problem of the given lowercase
// difficulty. An empty or "random" difficulty picks from the whole catalog.
func (r *Registry) RandomByDifficulty(difficulty string) *Problem {
	var pool []*Problem
	if d, ok := ParseDifficulty(difficulty); ok {
		for _, id := range r.order {
			if p := r.static[id]; p.Difficulty == d {
				pool = append(pool, p)
			}
		}
	}
	if len(pool) == 0 {
		for _, id := range r.order {
			pool = append(pool, r.static[id])
		}
	}
	if len(pool) == 0 {
		return nil
	}
	return pool[rand.Intn(len(pool))]
}

// PickForPlayers resolves the problem for a new game. It prefers a validated
// AI problem none of the players has seen; when the AI pool has nothing to
// offer it falls back to the static catalog. Selection of an AI problem
// increments its usage counter and records per-player history.
func (r *Registry) PickForPlayers(ctx context.Context, difficulty string, playerIDs []uuid.UUID) *Problem {
	if r.aiStore != nil {
		if d, ok := ParseDifficulty(difficulty); ok {
			if p, err := r.aiStore.FindUnseen(ctx, d, playerIDs); err == nil && p != nil {
				_ = r.aiStore.MarkUsed(ctx, p.ID, playerIDs)
				return p
			}
		}
	}
	return r.RandomByDifficulty(difficulty)
}
