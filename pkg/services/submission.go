package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/executor"
	"github.com/bitbattle/bitbattle/pkg/game"
	"github.com/bitbattle/bitbattle/pkg/models"
	"github.com/bitbattle/bitbattle/pkg/problems"
	"github.com/bitbattle/bitbattle/pkg/rating"
)

// DefaultRating is the ladder rating assumed for guests and players with no
// stats row.
const DefaultRating = 1200

// Runner abstracts the sandbox executor.
type Runner interface {
	ExecuteSubmission(ctx context.Context, req executor.SubmissionRequest, problem *problems.Problem) *executor.SubmissionResult
}

// AIProblemFinder resolves AI-generated problems by id for submissions.
type AIProblemFinder interface {
	FindByID(ctx context.Context, id string) (*problems.Problem, error)
}

// ratingStore is the slice of UserStore the submission pipeline needs.
type ratingStore interface {
	StatsByUserID(ctx context.Context, userID uuid.UUID) (*models.UserStats, error)
	ApplyRatings(ctx context.Context, difficulty string, updates []RatingUpdate) error
}

// resultStore is the slice of GameResultStore the submission pipeline needs.
type resultStore interface {
	Create(ctx context.Context, r *models.GameResult) (*models.GameResult, error)
	UpdateStatsAfterGame(ctx context.Context, userID uuid.UUID, isWin, passed bool, solveTimeMs *int64) error
}

// GameOver is the payload broadcast when a submission ends the game.
type GameOver struct {
	Winner        string                         `json:"winner"`
	SolveTimeMs   int64                          `json:"solve_time_ms"`
	ProblemID     string                         `json:"problem_id"`
	Difficulty    string                         `json:"difficulty"`
	GameMode      string                         `json:"game_mode"`
	RatingChanges map[string]models.RatingChange `json:"rating_changes,omitempty"`
	Players       []string                       `json:"players"`
}

// SubmissionService runs the full submission pipeline: validate, resolve the
// problem, execute in the sandbox, and on the winning submission close out
// the game with ratings, persistence, and broadcasts.
type SubmissionService struct {
	registry   *problems.Registry
	aiProblems AIProblemFinder
	runner     Runner
	rooms      *game.Manager
	users      ratingStore
	results    resultStore
}

// NewSubmissionService wires the pipeline. aiProblems may be nil when AI
// problems are disabled.
func NewSubmissionService(registry *problems.Registry, aiProblems AIProblemFinder, runner Runner,
	rooms *game.Manager, users *UserStore, results *GameResultStore) *SubmissionService {
	s := &SubmissionService{
		registry:   registry,
		aiProblems: aiProblems,
		runner:     runner,
		rooms:      rooms,
	}
	if users != nil {
		s.users = users
	}
	if results != nil {
		s.results = results
	}
	return s
}

// Submit validates and executes one submission. userID is nil for guests.
func (s *SubmissionService) Submit(ctx context.Context, req executor.SubmissionRequest, userID *uuid.UUID) (*executor.SubmissionResult, error) {
	username, err := ValidateUsername(req.Username)
	if err != nil {
		return nil, err
	}
	req.Username = username

	if err := ValidateCode(req.Code); err != nil {
		return nil, err
	}
	problemID, err := ValidateProblemID(req.ProblemID)
	if err != nil {
		return nil, err
	}
	req.ProblemID = problemID
	language, err := ValidateLanguage(req.Language)
	if err != nil {
		return nil, err
	}
	req.Language = language
	if req.RoomID != nil {
		roomID, err := ValidateRoomCode(*req.RoomID)
		if err != nil {
			return nil, err
		}
		req.RoomID = &roomID
	}

	problem, err := s.resolveProblem(ctx, req.ProblemID)
	if err != nil {
		return nil, err
	}

	result := s.runner.ExecuteSubmission(ctx, req, problem)

	room := s.findRoom(req)
	if room != nil {
		room.BroadcastEnvelope("submission_result", result)
	}

	wonGame := false
	if result.Passed && room != nil && room.TryFinish(req.Username) {
		wonGame = true
		s.finishGame(ctx, room, problem, result)
	}

	s.recordResult(ctx, req, userID, result, room, wonGame)
	return result, nil
}

func (s *SubmissionService) resolveProblem(ctx context.Context, problemID string) (*problems.Problem, error) {
	if p := s.registry.Get(problemID); p != nil {
		return p, nil
	}
	if s.aiProblems != nil && strings.HasPrefix(problemID, "ai-") {
		if p, err := s.aiProblems.FindByID(ctx, problemID); err == nil {
			return p, nil
		}
	}
	return nil, NewValidationError("problem_id", "Problem not found")
}

// findRoom resolves the room a submission belongs to: the explicit room id,
// then the problem id (solo rooms are keyed that way), then the default room.
func (s *SubmissionService) findRoom(req executor.SubmissionRequest) *game.Room {
	if req.RoomID != nil {
		if room, ok := s.rooms.Get(*req.RoomID); ok {
			return room
		}
	}
	if room, ok := s.rooms.Get(strings.ToUpper(req.ProblemID)); ok {
		return room
	}
	room, _ := s.rooms.Get(game.DefaultRoomCode)
	return room
}

// finishGame runs once per room, guarded by TryFinish. It resolves ranked
// rating movement and broadcasts game_over.
func (s *SubmissionService) finishGame(ctx context.Context, room *game.Room, problem *problems.Problem, result *executor.SubmissionResult) {
	over := GameOver{
		Winner:      result.Username,
		SolveTimeMs: result.ExecutionTimeMs,
		ProblemID:   problem.ID,
		Difficulty:  problem.Difficulty.Lower(),
		GameMode:    room.GameMode,
		Players:     room.Players(),
	}

	if room.GameMode == matchmakingRanked {
		over.RatingChanges = s.resolveRatings(ctx, room, result.Username, over.Difficulty)
	}

	slog.Info("Game over",
		"room", room.Code,
		"winner", result.Username,
		"problem", problem.ID,
		"mode", room.GameMode)
	room.BroadcastEnvelope("game_over", over)
}

const matchmakingRanked = "ranked"

type playerRating struct {
	username string
	userID   *uuid.UUID
	rating   int
	games    int
}

// resolveRatings computes Elo movement for every player in a ranked room.
// The winner is rated against the average opponent, each loser against the
// winner. Guests and players without stats move from the 1200 default and
// are reported but never persisted.
func (s *SubmissionService) resolveRatings(ctx context.Context, room *game.Room, winner, difficulty string) map[string]models.RatingChange {
	players := room.Players()
	ids := room.PlayerIDs()

	ratings := make([]playerRating, 0, len(players))
	for _, name := range players {
		pr := playerRating{username: name, rating: DefaultRating}
		if id, ok := ids[name]; ok {
			uid := id
			pr.userID = &uid
			if s.users != nil {
				if stats, err := s.users.StatsByUserID(ctx, id); err == nil {
					pr.rating = stats.RatingFor(difficulty)
					pr.games = stats.RankedGamesFor(difficulty)
				}
			}
		}
		ratings = append(ratings, pr)
	}

	var winnerRating int
	opponentSum, opponents := 0, 0
	for _, pr := range ratings {
		if pr.username == winner {
			winnerRating = pr.rating
		} else {
			opponentSum += pr.rating
			opponents++
		}
	}
	avgOpponent := DefaultRating
	if opponents > 0 {
		avgOpponent = opponentSum / opponents
	}

	changes := make(map[string]models.RatingChange, len(ratings))
	updates := make([]RatingUpdate, 0, len(ratings))
	for _, pr := range ratings {
		won := pr.username == winner
		var delta int
		if won {
			delta = rating.EloDelta(pr.rating, avgOpponent, true, pr.games)
		} else {
			delta = rating.EloDelta(pr.rating, winnerRating, false, pr.games)
		}
		next := rating.Apply(pr.rating, delta)
		changes[pr.username] = models.RatingChange{
			OldRating: pr.rating,
			NewRating: next,
			Change:    next - pr.rating,
		}
		if pr.userID != nil {
			updates = append(updates, RatingUpdate{UserID: *pr.userID, Delta: delta, Won: won})
		}
	}

	if s.users != nil && len(updates) > 0 {
		if err := s.users.ApplyRatings(ctx, difficulty, updates); err != nil {
			slog.Error("Failed to persist rating changes", "room", room.Code, "error", err)
		}
	}
	return changes
}

// recordResult persists the attempt and rolls stats for authenticated users.
func (s *SubmissionService) recordResult(ctx context.Context, req executor.SubmissionRequest, userID *uuid.UUID,
	result *executor.SubmissionResult, room *game.Room, wonGame bool) {
	if userID == nil || s.results == nil {
		return
	}

	roomID := req.ProblemID
	if room != nil {
		roomID = room.Code
	}
	placement := 0
	if wonGame {
		placement = 1
	}
	totalPlayers := 1
	if room != nil {
		totalPlayers = len(room.Players())
	}
	var solveTime *int64
	if result.Passed {
		ms := result.ExecutionTimeMs
		solveTime = &ms
	}

	if _, err := s.results.Create(ctx, &models.GameResult{
		RoomID:       roomID,
		ProblemID:    req.ProblemID,
		UserID:       userID,
		Placement:    placement,
		TotalPlayers: totalPlayers,
		SolveTimeMs:  solveTime,
		PassedTests:  result.PassedTests,
		TotalTests:   result.TotalTests,
		Language:     req.Language,
	}); err != nil {
		slog.Error("Failed to record game result", "user", userID, "error", err)
	}
	if err := s.results.UpdateStatsAfterGame(ctx, *userID, wonGame, result.Passed, solveTime); err != nil {
		slog.Error("Failed to update user stats", "user", userID, "error", err)
	}
}
