package api

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/models"
)

func TestUserProfile(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.seedUser(t, "alice")

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/users/%s/profile", u.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		User  models.User      `json:"user"`
		Stats models.UserStats `json:"stats"`
	}](t, rec)
	assert.Equal(t, u.ID, body.User.ID)
	assert.Equal(t, "alice", body.User.DisplayName)
	assert.Equal(t, 1250, body.Stats.EasyRating)
}

func TestUserProfileNotFound(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, fmt.Sprintf("/users/%s/profile", uuid.New()), nil, nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, CodeNotFound, body.Code)
}

func TestUserProfileRejectsBadID(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/users/not-a-uuid/profile", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, "user_id", body.Field)
}

func TestUserHistory(t *testing.T) {
	env := newTestEnv(t)
	u, _ := env.seedUser(t, "alice")
	env.history.results = []models.GameResult{
		{UserID: &u.ID, ProblemID: "two-sum", Placement: 1, TotalPlayers: 2},
		{UserID: &u.ID, ProblemID: "reverse-string", Placement: 0, TotalPlayers: 2},
	}
	env.history.bests = []models.ProblemBest{
		{ProblemID: "two-sum", BestSolveMs: 4200, Attempts: 3},
	}

	rec := env.do(t, http.MethodGet, fmt.Sprintf("/users/%s/history", u.ID), nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Results      []models.GameResult  `json:"results"`
		ProblemBests []models.ProblemBest `json:"problem_bests"`
	}](t, rec)
	assert.Len(t, body.Results, 2)
	require.Len(t, body.ProblemBests, 1)
	assert.Equal(t, int64(4200), body.ProblemBests[0].BestSolveMs)
}
