package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/services"
)

func TestLeaderboardDefaults(t *testing.T) {
	env := newTestEnv(t)
	env.board.entries = []services.LeaderboardEntry{
		{DisplayName: "alice", GamesWon: 10},
		{DisplayName: "bob", GamesWon: 7},
	}

	rec := env.do(t, http.MethodGet, "/leaderboard", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Entries []services.LeaderboardEntry `json:"entries"`
		Total   int                         `json:"total"`
		SortBy  string                      `json:"sort_by"`
		Limit   int                         `json:"limit"`
		Offset  int                         `json:"offset"`
	}](t, rec)
	assert.Equal(t, services.SortByWins, body.SortBy)
	assert.Equal(t, defaultLeaderboardLimit, body.Limit)
	assert.Equal(t, 0, body.Offset)
	assert.Equal(t, 2, body.Total)
	require.Len(t, body.Entries, 2)
	assert.Equal(t, "alice", body.Entries[0].DisplayName)
}

func TestLeaderboardClampsLimit(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/leaderboard?limit=9999", nil, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	body := decodeBody[struct {
		Limit int `json:"limit"`
	}](t, rec)
	assert.Equal(t, defaultLeaderboardLimit, body.Limit, "out-of-range limits fall back to the default")
}

func TestLeaderboardRejectsUnknownSort(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/leaderboard?sort_by=charm", nil, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	body := decodeBody[ErrorResponse](t, rec)
	assert.Equal(t, CodeValidation, body.Code)
	assert.Equal(t, "sort_by", body.Field)
}
