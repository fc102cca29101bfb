// Package matchmaking pairs queued players by mode, difficulty, and (for
// ranked) a rating window that widens with wait time.
package matchmaking

import (
	"fmt"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// QueueDifficulty is the difficulty preference in the queue. Unlike problem
// difficulties it includes the Any wildcard and is lowercase on the wire.
type QueueDifficulty string

const (
	QueueEasy   QueueDifficulty = "easy"
	QueueMedium QueueDifficulty = "medium"
	QueueHard   QueueDifficulty = "hard"
	QueueAny    QueueDifficulty = "any"
)

// Matches reports whether two preferences are compatible; Any matches
// anything.
func (d QueueDifficulty) Matches(other QueueDifficulty) bool {
	if d == QueueAny || other == QueueAny {
		return true
	}
	return d == other
}

// ProblemDifficulty maps the preference to a concrete problem tier.
// Any returns ok=false, meaning a random tier.
func (d QueueDifficulty) ProblemDifficulty() (problems.Difficulty, bool) {
	switch d {
	case QueueEasy:
		return problems.Easy, true
	case QueueMedium:
		return problems.Medium, true
	case QueueHard:
		return problems.Hard, true
	default:
		return "", false
	}
}

// Game modes.
const (
	ModeCasual = "casual"
	ModeRanked = "ranked"
)

// QueuedPlayer is one waiting player.
type QueuedPlayer struct {
	UserID       *uuid.UUID      `json:"user_id"`
	Username     string          `json:"username"`
	Rating       int             `json:"rating"`
	Difficulty   QueueDifficulty `json:"difficulty"`
	GameMode     string          `json:"game_mode"`
	QueuedAt     time.Time       `json:"queued_at"`
	ConnectionID string          `json:"connection_id"`
}

// Match is a successful pairing.
type Match struct {
	ID         string          `json:"id"`
	Players    []QueuedPlayer  `json:"players"`
	Difficulty QueueDifficulty `json:"difficulty"`
	GameMode   string          `json:"game_mode"`
	RoomCode   string          `json:"room_code"`
	CreatedAt  time.Time       `json:"created_at"`
}

const (
	baseRatingThreshold = 200
	maxWaitSeconds      = 60
	thresholdExpansion  = 500
	recentMatchLimit    = 100
	roomCodeAttempts    = 10
)

// Queue is the matchmaking queue plus the recent-match ring players poll for
// their pairing.
type Queue struct {
	mu      sync.RWMutex
	players map[string]QueuedPlayer

	recentMu sync.RWMutex
	recent   []Match

	// roomTaken reports whether a generated room code collides with a live
	// room. Nil means no collision checking.
	roomTaken func(code string) bool
}

// NewQueue creates an empty queue. roomTaken may be nil.
func NewQueue(roomTaken func(code string) bool) *Queue {
	return &Queue{
		players:   make(map[string]QueuedPlayer),
		roomTaken: roomTaken,
	}
}

// Join adds a player, replacing any prior entry for the same connection.
func (q *Queue) Join(p QueuedPlayer) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.players[p.ConnectionID] = p
}

// Leave removes a player. Returns the removed entry, if any.
func (q *Queue) Leave(connectionID string) (QueuedPlayer, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	p, ok := q.players[connectionID]
	if ok {
		delete(q.players, connectionID)
	}
	return p, ok
}

// Position returns the player's FIFO position (0-based), or false when not
// queued.
func (q *Queue) Position(connectionID string) (int, bool) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	for i, p := range q.sortedLocked() {
		if p.ConnectionID == connectionID {
			return i, true
		}
	}
	return 0, false
}

// Size returns the number of waiting players.
func (q *Queue) Size() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	return len(q.players)
}

// SizeFor counts waiting players compatible with the given preference.
func (q *Queue) SizeFor(difficulty QueueDifficulty, gameMode string) int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	n := 0
	for _, p := range q.players {
		if p.Difficulty.Matches(difficulty) && p.GameMode == gameMode {
			n++
		}
	}
	return n
}

// sortedLocked returns players ordered by queue time. Caller holds q.mu.
func (q *Queue) sortedLocked() []QueuedPlayer {
	out := make([]QueuedPlayer, 0, len(q.players))
	for _, p := range q.players {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].QueuedAt.Before(out[j].QueuedAt) })
	return out
}

// ProcessQueue runs one pairing pass and returns the matches made. Matched
// players are removed from the queue and the matches appended to the recent
// ring.
func (q *Queue) ProcessQueue() []Match {
	q.mu.Lock()
	now := time.Now()
	players := q.sortedLocked()

	var matches []Match
	matched := make(map[string]bool)

	for i := 0; i < len(players); i++ {
		p1 := players[i]
		if matched[p1.ConnectionID] {
			continue
		}
		threshold := ratingThreshold(now.Sub(p1.QueuedAt))

		for j := i + 1; j < len(players); j++ {
			p2 := players[j]
			if matched[p2.ConnectionID] {
				continue
			}
			if !compatible(p1, p2, threshold) {
				continue
			}
			matches = append(matches, Match{
				ID:         uuid.New().String(),
				Players:    []QueuedPlayer{p1, p2},
				Difficulty: ResolveDifficulty(p1.Difficulty, p2.Difficulty),
				GameMode:   p1.GameMode,
				RoomCode:   q.generateRoomCode(),
				CreatedAt:  now,
			})
			matched[p1.ConnectionID] = true
			matched[p2.ConnectionID] = true
			break
		}
	}

	for id := range matched {
		delete(q.players, id)
	}
	q.mu.Unlock()

	if len(matches) > 0 {
		q.recentMu.Lock()
		q.recent = append(q.recent, matches...)
		if n := len(q.recent); n > recentMatchLimit {
			q.recent = q.recent[n-recentMatchLimit:]
		}
		q.recentMu.Unlock()
	}
	return matches
}

// MatchForPlayer finds a recent match containing the given connection.
func (q *Queue) MatchForPlayer(connectionID string) (Match, bool) {
	q.recentMu.RLock()
	defer q.recentMu.RUnlock()
	for _, m := range q.recent {
		for _, p := range m.Players {
			if p.ConnectionID == connectionID {
				return m, true
			}
		}
	}
	return Match{}, false
}

// ratingThreshold widens the ranked rating window as a player waits, capping
// the expansion at thresholdExpansion after maxWaitSeconds.
func ratingThreshold(wait time.Duration) int {
	factor := wait.Seconds() / maxWaitSeconds
	if factor > 1 {
		factor = 1
	}
	return baseRatingThreshold + int(factor*thresholdExpansion)
}

func compatible(p1, p2 QueuedPlayer, threshold int) bool {
	if p1.GameMode != p2.GameMode {
		return false
	}
	if !p1.Difficulty.Matches(p2.Difficulty) {
		return false
	}
	if p1.GameMode == ModeRanked {
		diff := p1.Rating - p2.Rating
		if diff < 0 {
			diff = -diff
		}
		if diff > threshold {
			return false
		}
	}
	return true
}

var (
	roomCodeAdjectives = []string{"SWIFT", "SHARP", "QUICK", "SMART", "BRAVE", "FAST", "COOL", "EPIC"}
	roomCodeNouns      = []string{"CODER", "HACKER", "NINJA", "MASTER", "WIZARD", "GENIUS", "HERO", "CHAMP"}
)

// generateRoomCode produces a WORD-WORD-NNNN code, retrying on collision
// with live rooms.
func (q *Queue) generateRoomCode() string {
	var code string
	for i := 0; i < roomCodeAttempts; i++ {
		code = fmt.Sprintf("%s-%s-%d",
			roomCodeAdjectives[rand.Intn(len(roomCodeAdjectives))],
			roomCodeNouns[rand.Intn(len(roomCodeNouns))],
			1000+rand.Intn(9000))
		if q.roomTaken == nil || !q.roomTaken(code) {
			return code
		}
	}
	return code
}

// ResolveDifficulty picks the concrete difficulty for a match. Both Any
// picks one uniformly at random.
func ResolveDifficulty(d1, d2 QueueDifficulty) QueueDifficulty {
	if d1 == QueueAny && d2 == QueueAny {
		concrete := []QueueDifficulty{QueueEasy, QueueMedium, QueueHard}
		return concrete[rand.Intn(len(concrete))]
	}
	if d1 == QueueAny {
		return d2
	}
	return d1
}
