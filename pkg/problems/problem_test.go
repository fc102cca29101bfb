package problems

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryGet(t *testing.T) {
	r := NewRegistry(nil)

	for _, id := range []string{"two-sum", "reverse-string", "valid-parentheses"} {
		p := r.Get(id)
		require.NotNil(t, p, "expected static problem %s", id)
		assert.Equal(t, id, p.ID)
		assert.NotEmpty(t, p.Title)
		assert.NotEmpty(t, p.TestCases)
	}

	assert.Nil(t, r.Get("no-such-problem"))
}

func TestRegistryRandomByDifficulty(t *testing.T) {
	r := NewRegistry(nil)

	p := r.RandomByDifficulty("easy")
	require.NotNil(t, p)
	assert.Equal(t, Easy, p.Difficulty)

	// No hard problems in the static set: fall back to the whole catalog.
	p = r.RandomByDifficulty("hard")
	require.NotNil(t, p)

	p = r.RandomByDifficulty("random")
	require.NotNil(t, p)
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in   string
		want Difficulty
		ok   bool
	}{
		{"easy", Easy, true},
		{"medium", Medium, true},
		{"hard", Hard, true},
		{"any", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseDifficulty(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

type fakeAIStore struct {
	problem *Problem
	err     error
	marked  []string
}

func (f *fakeAIStore) FindUnseen(_ context.Context, _ Difficulty, _ []uuid.UUID) (*Problem, error) {
	return f.problem, f.err
}

func (f *fakeAIStore) MarkUsed(_ context.Context, problemID string, _ []uuid.UUID) error {
	f.marked = append(f.marked, problemID)
	return nil
}

func TestPickForPlayersPrefersAIPool(t *testing.T) {
	aiProblem := &Problem{ID: "ai-sum-of-digits-1234", Title: "Sum of Digits", Difficulty: Easy}
	store := &fakeAIStore{problem: aiProblem}
	r := NewRegistry(store)

	got := r.PickForPlayers(context.Background(), "easy", []uuid.UUID{uuid.New()})
	require.NotNil(t, got)
	assert.Equal(t, aiProblem.ID, got.ID)
	assert.Equal(t, []string{aiProblem.ID}, store.marked)
}

func TestPickForPlayersFallsBackToStatic(t *testing.T) {
	store := &fakeAIStore{err: errors.New("pool empty")}
	r := NewRegistry(store)

	got := r.PickForPlayers(context.Background(), "easy", nil)
	require.NotNil(t, got)
	assert.Equal(t, Easy, got.Difficulty)
	assert.Empty(t, store.marked)
}
