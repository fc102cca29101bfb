package services

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/game"
	"github.com/bitbattle/bitbattle/pkg/models"
	"github.com/bitbattle/bitbattle/pkg/problems"
)

type stubRunner struct {
	pass    bool
	lastReq executor.SubmissionRequest
}

func (r *stubRunner) ExecuteSubmission(_ context.Context, req executor.SubmissionRequest, problem *problems.Problem) *executor.SubmissionResult {
	r.lastReq = req
	passed := 0
	if r.pass {
		passed = len(problem.TestCases)
	}
	return &executor.SubmissionResult{
		Username:        req.Username,
		ProblemID:       req.ProblemID,
		Passed:          r.pass,
		TotalTests:      len(problem.TestCases),
		PassedTests:     passed,
		ExecutionTimeMs: 1234,
	}
}

type stubRatings struct {
	stats             map[uuid.UUID]*models.UserStats
	applied           []RatingUpdate
	appliedDifficulty string
}

func (s *stubRatings) StatsByUserID(_ context.Context, userID uuid.UUID) (*models.UserStats, error) {
	if st, ok := s.stats[userID]; ok {
		return st, nil
	}
	return nil, ErrNotFound
}

func (s *stubRatings) ApplyRatings(_ context.Context, difficulty string, updates []RatingUpdate) error {
	s.appliedDifficulty = difficulty
	s.applied = append(s.applied, updates...)
	return nil
}

type stubResults struct {
	created []*models.GameResult
	stats   []struct {
		userID uuid.UUID
		isWin  bool
		passed bool
	}
}

func (s *stubResults) Create(_ context.Context, r *models.GameResult) (*models.GameResult, error) {
	s.created = append(s.created, r)
	return r, nil
}

func (s *stubResults) UpdateStatsAfterGame(_ context.Context, userID uuid.UUID, isWin, passed bool, _ *int64) error {
	s.stats = append(s.stats, struct {
		userID uuid.UUID
		isWin  bool
		passed bool
	}{userID, isWin, passed})
	return nil
}

func submissionService(runner Runner, rooms *game.Manager, users ratingStore, results resultStore) *SubmissionService {
	return &SubmissionService{
		registry: problems.NewRegistry(nil),
		runner:   runner,
		rooms:    rooms,
		users:    users,
		results:  results,
	}
}

func joinTwo(t *testing.T, rooms *game.Manager, code, mode string, ids map[string]*uuid.UUID) *game.Room {
	t.Helper()
	registry := problems.NewRegistry(nil)
	room := rooms.Create(code, registry.Get("two-sum"), 2, mode)
	for _, name := range []string{"alice", "bob"} {
		sub := room.Subscribe()
		require.True(t, room.Join(name, ids[name], sub))
	}
	require.True(t, room.Started())
	return room
}

func submitReq(room string) executor.SubmissionRequest {
	r := room
	return executor.SubmissionRequest{
		Username:  "alice",
		ProblemID: "two-sum",
		Code:      "print(1)",
		Language:  "python",
		RoomID:    &r,
	}
}

func TestSubmitValidation(t *testing.T) {
	svc := submissionService(&stubRunner{}, game.NewManager(), nil, nil)

	tests := []struct {
		name   string
		mutate func(*executor.SubmissionRequest)
		field  string
	}{
		{"empty username", func(r *executor.SubmissionRequest) { r.Username = "" }, "username"},
		{"empty code", func(r *executor.SubmissionRequest) { r.Code = "" }, "code"},
		{"empty problem", func(r *executor.SubmissionRequest) { r.ProblemID = "" }, "problem_id"},
		{"bad language", func(r *executor.SubmissionRequest) { r.Language = "cobol" }, "language"},
		{"unknown problem", func(r *executor.SubmissionRequest) { r.ProblemID = "no-such-problem" }, "problem_id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := submitReq("ROOM-1234")
			tt.mutate(&req)
			_, err := svc.Submit(context.Background(), req, nil)
			require.Error(t, err)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestSubmitWinningBroadcastsGameOver(t *testing.T) {
	rooms := game.NewManager()
	room := joinTwo(t, rooms, "SWIFT-CODER-1234", "casual", nil)

	watcher := room.Subscribe()
	defer room.Unsubscribe(watcher)

	svc := submissionService(&stubRunner{pass: true}, rooms, nil, nil)
	result, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)
	assert.True(t, result.Passed)

	require.True(t, room.Ended())
	require.NotNil(t, room.Winner())
	assert.Equal(t, "alice", *room.Winner())

	var sawGameOver, sawResult bool
	for len(watcher.C) > 0 {
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(<-watcher.C, &env))
		switch env.Type {
		case "game_over":
			sawGameOver = true
			var over GameOver
			require.NoError(t, json.Unmarshal(env.Data, &over))
			assert.Equal(t, "alice", over.Winner)
			assert.Equal(t, int64(1234), over.SolveTimeMs)
			assert.Equal(t, "two-sum", over.ProblemID)
			assert.Equal(t, "easy", over.Difficulty)
			assert.Equal(t, "casual", over.GameMode)
			assert.Empty(t, over.RatingChanges, "casual games carry no rating changes")
			assert.ElementsMatch(t, []string{"alice", "bob"}, over.Players)
		case "submission_result":
			sawResult = true
		}
	}
	assert.True(t, sawGameOver)
	assert.True(t, sawResult)
}

func TestSubmitFailingDoesNotEndGame(t *testing.T) {
	rooms := game.NewManager()
	room := joinTwo(t, rooms, "SWIFT-CODER-1234", "casual", nil)

	svc := submissionService(&stubRunner{pass: false}, rooms, nil, nil)
	result, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)
	assert.False(t, result.Passed)
	assert.False(t, room.Ended())
}

func TestSubmitSecondWinnerRejected(t *testing.T) {
	rooms := game.NewManager()
	room := joinTwo(t, rooms, "SWIFT-CODER-1234", "casual", nil)

	svc := submissionService(&stubRunner{pass: true}, rooms, nil, nil)
	_, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)

	req := submitReq("SWIFT-CODER-1234")
	req.Username = "bob"
	_, err = svc.Submit(context.Background(), req, nil)
	require.NoError(t, err)
	assert.Equal(t, "alice", *room.Winner(), "first passing submission keeps the win")
}

func TestSubmitRankedRatings(t *testing.T) {
	aliceID, bobID := uuid.New(), uuid.New()
	rooms := game.NewManager()
	room := joinTwo(t, rooms, "SWIFT-CODER-1234", "ranked",
		map[string]*uuid.UUID{"alice": &aliceID, "bob": &bobID})

	users := &stubRatings{stats: map[uuid.UUID]*models.UserStats{
		aliceID: {UserID: aliceID, EasyRating: 1200, EasyRankedGames: 50},
		bobID:   {UserID: bobID, EasyRating: 1200, EasyRankedGames: 50},
	}}

	watcher := room.Subscribe()
	defer room.Unsubscribe(watcher)

	svc := submissionService(&stubRunner{pass: true}, rooms, users, nil)
	_, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)

	// Equal ratings at K=24 move 12 points each way.
	require.Len(t, users.applied, 2)
	assert.Equal(t, "easy", users.appliedDifficulty)
	byID := map[uuid.UUID]RatingUpdate{}
	for _, u := range users.applied {
		byID[u.UserID] = u
	}
	assert.Equal(t, 12, byID[aliceID].Delta)
	assert.True(t, byID[aliceID].Won)
	assert.Equal(t, -12, byID[bobID].Delta)
	assert.False(t, byID[bobID].Won)

	var over *GameOver
	for len(watcher.C) > 0 {
		var env struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		require.NoError(t, json.Unmarshal(<-watcher.C, &env))
		if env.Type == "game_over" {
			over = &GameOver{}
			require.NoError(t, json.Unmarshal(env.Data, over))
		}
	}
	require.NotNil(t, over)
	assert.Equal(t, models.RatingChange{OldRating: 1200, NewRating: 1212, Change: 12}, over.RatingChanges["alice"])
	assert.Equal(t, models.RatingChange{OldRating: 1200, NewRating: 1188, Change: -12}, over.RatingChanges["bob"])
}

func TestSubmitRankedGuestsNotPersisted(t *testing.T) {
	aliceID := uuid.New()
	rooms := game.NewManager()
	joinTwo(t, rooms, "SWIFT-CODER-1234", "ranked",
		map[string]*uuid.UUID{"alice": &aliceID})

	users := &stubRatings{stats: map[uuid.UUID]*models.UserStats{}}
	svc := submissionService(&stubRunner{pass: true}, rooms, users, nil)
	_, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)

	// Only alice has an identity; bob the guest moves from 1200 on paper only.
	require.Len(t, users.applied, 1)
	assert.Equal(t, aliceID, users.applied[0].UserID)
}

func TestSubmitRecordsAuthenticatedResult(t *testing.T) {
	userID := uuid.New()
	rooms := game.NewManager()
	joinTwo(t, rooms, "SWIFT-CODER-1234", "casual", nil)

	results := &stubResults{}
	svc := submissionService(&stubRunner{pass: true}, rooms, nil, results)
	_, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), &userID)
	require.NoError(t, err)

	require.Len(t, results.created, 1)
	r := results.created[0]
	assert.Equal(t, "SWIFT-CODER-1234", r.RoomID)
	assert.Equal(t, "two-sum", r.ProblemID)
	assert.Equal(t, 1, r.Placement)
	assert.Equal(t, 2, r.TotalPlayers)
	require.NotNil(t, r.SolveTimeMs)
	assert.Equal(t, int64(1234), *r.SolveTimeMs)

	require.Len(t, results.stats, 1)
	assert.True(t, results.stats[0].isWin)
	assert.True(t, results.stats[0].passed)
}

func TestSubmitGuestNotRecorded(t *testing.T) {
	rooms := game.NewManager()
	joinTwo(t, rooms, "SWIFT-CODER-1234", "casual", nil)

	results := &stubResults{}
	svc := submissionService(&stubRunner{pass: true}, rooms, nil, results)
	_, err := svc.Submit(context.Background(), submitReq("SWIFT-CODER-1234"), nil)
	require.NoError(t, err)
	assert.Empty(t, results.created)
}

func TestSubmitFallsBackToProblemRoom(t *testing.T) {
	rooms := game.NewManager()
	registry := problems.NewRegistry(nil)
	room := rooms.Create("TWO-SUM", registry.Get("two-sum"), 1, "casual")
	sub := room.Subscribe()
	require.True(t, room.Join("alice", nil, sub))

	svc := submissionService(&stubRunner{pass: true}, rooms, nil, nil)
	req := submitReq("two-sum")
	req.RoomID = nil
	_, err := svc.Submit(context.Background(), req, nil)
	require.NoError(t, err)
	assert.True(t, room.Ended())
}
