// Package game holds the live room state: rosters, code mirrors, the
// broadcast bus, and the single-winner game transition.
package game

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// subscriberBuffer bounds each subscriber's pending messages. A subscriber
// that lags past the bound is dropped and its channel closed, which tears
// down the owning socket writer.
const subscriberBuffer = 100

// Subscriber is one attachment to a room's broadcast bus.
type Subscriber struct {
	id int
	C  chan []byte
}

// Room is a single game session.
type Room struct {
	Code            string
	Problem         *problems.Problem
	RequiredPlayers int
	GameMode        string
	IsPublic        bool
	CreatedAt       time.Time

	mu          sync.RWMutex
	users       []string
	userIDs     map[string]uuid.UUID
	userCodes   map[string]string
	gameStarted bool
	gameEnded   bool
	winner      *string
	endedAt     time.Time

	spectators atomic.Int64

	subMu   sync.Mutex
	subs    map[int]chan []byte
	nextSub int
}

// NewRoom creates a room in the lobby state.
func NewRoom(code string, problem *problems.Problem, requiredPlayers int, gameMode string) *Room {
	return &Room{
		Code:            code,
		Problem:         problem,
		RequiredPlayers: requiredPlayers,
		GameMode:        gameMode,
		IsPublic:        true,
		CreatedAt:       time.Now(),
		userIDs:         make(map[string]uuid.UUID),
		userCodes:       make(map[string]string),
		subs:            make(map[int]chan []byte),
	}
}

// Subscribe attaches a new subscriber to the broadcast bus.
func (r *Room) Subscribe() *Subscriber {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	r.nextSub++
	ch := make(chan []byte, subscriberBuffer)
	r.subs[r.nextSub] = ch
	return &Subscriber{id: r.nextSub, C: ch}
}

// Unsubscribe detaches a subscriber and closes its channel. Safe to call
// after the subscriber was already dropped for lagging.
func (r *Room) Unsubscribe(s *Subscriber) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	if ch, ok := r.subs[s.id]; ok {
		delete(r.subs, s.id)
		close(ch)
	}
}

// Broadcast fans a serialized message out to every subscriber. Subscribers
// whose buffer is full are dropped.
func (r *Room) Broadcast(msg []byte) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		select {
		case ch <- msg:
		default:
			slog.Warn("Dropping slow room subscriber", "room", r.Code, "subscriber", id)
			delete(r.subs, id)
			close(ch)
		}
	}
}

// BroadcastEnvelope marshals and broadcasts a typed message.
func (r *Room) BroadcastEnvelope(msgType string, data any) {
	r.Broadcast(Marshal(msgType, data))
}

// send delivers a message to a single subscriber, dropping it when full.
func (r *Room) send(s *Subscriber, msg []byte) {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	ch, ok := r.subs[s.id]
	if !ok {
		return
	}
	select {
	case ch <- msg:
	default:
		slog.Warn("Dropping slow room subscriber", "room", r.Code, "subscriber", s.id)
		delete(r.subs, s.id)
		close(ch)
	}
}

// Join admits a player. When the game has started or the roster is at
// capacity, the joiner alone receives a room_full message and Join reports
// false. Otherwise: the existing roster is replayed to the joiner, the join
// is broadcast, the joiner receives the problem, everyone receives the new
// player count, and the game starts once the roster reaches capacity.
func (r *Room) Join(username string, userID *uuid.UUID, joiner *Subscriber) bool {
	r.mu.Lock()

	if r.gameStarted || len(r.users) >= r.RequiredPlayers {
		current := len(r.users)
		r.mu.Unlock()
		r.send(joiner, Marshal("room_full", map[string]any{
			"message":  "This room is full. The game has already started.",
			"current":  current,
			"required": r.RequiredPlayers,
		}))
		return false
	}

	existing := make([]string, len(r.users))
	copy(existing, r.users)

	r.users = append(r.users, username)
	if userID != nil {
		r.userIDs[username] = *userID
	}
	current := len(r.users)
	started := current >= r.RequiredPlayers
	if started {
		r.gameStarted = true
	}
	r.mu.Unlock()

	for _, u := range existing {
		r.send(joiner, Marshal("user_joined", map[string]string{"username": u}))
	}

	r.BroadcastEnvelope("user_joined", map[string]string{"username": username})

	if r.Problem != nil {
		r.send(joiner, Marshal("problem_assigned", map[string]any{
			"problem": newProblemPayload(r.Problem),
		}))
	}

	r.BroadcastEnvelope("player_count", map[string]int{
		"current":  current,
		"required": r.RequiredPlayers,
	})

	if started {
		slog.Info("All players joined, starting game", "room", r.Code, "players", current)
		r.BroadcastEnvelope("game_start", map[string]any{})
	}
	return true
}

// CodeChange stores the player's latest code snapshot and rebroadcasts the
// original message so every mirror stays in sync.
func (r *Room) CodeChange(username, code string, raw []byte) {
	r.mu.Lock()
	r.userCodes[username] = code
	r.mu.Unlock()
	r.Broadcast(raw)
}

// Leave removes a player and their code snapshot, then rebroadcasts the
// original user_left message.
func (r *Room) Leave(username string, raw []byte) {
	r.mu.Lock()
	for i, u := range r.users {
		if u == username {
			r.users = append(r.users[:i], r.users[i+1:]...)
			break
		}
	}
	delete(r.userCodes, username)
	r.mu.Unlock()
	r.Broadcast(raw)
}

// TryFinish attempts the single-winner transition. Only the first caller on
// an active game succeeds; later submissions see false and emit no game_over.
func (r *Room) TryFinish(winner string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.gameStarted || r.gameEnded {
		return false
	}
	r.gameEnded = true
	r.winner = &winner
	r.endedAt = time.Now()
	return true
}

// Started reports whether the game is running or has finished.
func (r *Room) Started() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameStarted
}

// Ended reports whether a winner has been decided.
func (r *Room) Ended() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gameEnded
}

// Winner returns the winning username once the game has ended.
func (r *Room) Winner() *string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.winner
}

// Players returns a copy of the roster.
func (r *Room) Players() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, len(r.users))
	copy(out, r.users)
	return out
}

// PlayerIDs returns the authenticated identity map (username to user id).
// Guests have no entry.
func (r *Room) PlayerIDs() map[string]uuid.UUID {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]uuid.UUID, len(r.userIDs))
	for k, v := range r.userIDs {
		out[k] = v
	}
	return out
}

// SpectatorCount returns the current number of attached spectators.
func (r *Room) SpectatorCount() int64 {
	return r.spectators.Load()
}

// AttachSpectator increments the spectator count and sends the state
// snapshot to the new subscriber. The caller must already hold a
// subscription; DetachSpectator must be called on disconnect.
func (r *Room) AttachSpectator(sub *Subscriber) {
	r.spectators.Add(1)

	r.mu.RLock()
	players := make([]string, len(r.users))
	copy(players, r.users)
	codes := make(map[string]string, len(r.userCodes))
	for k, v := range r.userCodes {
		codes[k] = v
	}
	started, ended, winner := r.gameStarted, r.gameEnded, r.winner
	r.mu.RUnlock()

	var prob *publicProblem
	if r.Problem != nil {
		prob = &publicProblem{
			ID:          r.Problem.ID,
			Title:       r.Problem.Title,
			Description: r.Problem.Description,
			Difficulty:  r.Problem.Difficulty,
			Examples:    r.Problem.Examples,
		}
	}

	r.send(sub, Marshal("spectate_init", map[string]any{
		"room_id":         r.Code,
		"players":         players,
		"game_mode":       r.GameMode,
		"game_started":    started,
		"game_ended":      ended,
		"winner":          winner,
		"problem":         prob,
		"player_codes":    codes,
		"spectator_count": r.SpectatorCount(),
	}))
}

// DetachSpectator decrements the spectator count.
func (r *Room) DetachSpectator() {
	r.spectators.Add(-1)
}

// idle reports whether the reaper may remove this room: an empty lobby or a
// finished game, either one older than ttl.
func (r *Room) idle(now time.Time, ttl time.Duration) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gameEnded {
		return now.Sub(r.endedAt) > ttl
	}
	if !r.gameStarted && len(r.users) == 0 {
		return now.Sub(r.CreatedAt) > ttl
	}
	return false
}

// closeSubscribers closes every subscriber channel, used when a room is
// reaped.
func (r *Room) closeSubscribers() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	for id, ch := range r.subs {
		delete(r.subs, id)
		close(ch)
	}
}
