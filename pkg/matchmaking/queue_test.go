package matchmaking

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlayer(id string, rating int, difficulty QueueDifficulty, gameMode string) QueuedPlayer {
	return QueuedPlayer{
		Username:     "player_" + id,
		Rating:       rating,
		Difficulty:   difficulty,
		GameMode:     gameMode,
		QueuedAt:     time.Now(),
		ConnectionID: id,
	}
}

func TestJoinAndLeaveQueue(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueMedium, ModeCasual))
	assert.Equal(t, 1, q.Size())

	_, ok := q.Leave("1")
	assert.True(t, ok)
	assert.Equal(t, 0, q.Size())

	_, ok = q.Leave("1")
	assert.False(t, ok)
}

func TestMatchTwoPlayersCasual(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueMedium, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueMedium, ModeCasual))

	matches := q.ProcessQueue()
	require.Len(t, matches, 1)
	assert.Len(t, matches[0].Players, 2)
	assert.Equal(t, QueueMedium, matches[0].Difficulty)
	assert.Equal(t, ModeCasual, matches[0].GameMode)
	assert.Equal(t, 0, q.Size())
}

func TestNoMatchDifferentGameModes(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueMedium, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueMedium, ModeRanked))

	assert.Empty(t, q.ProcessQueue())
	assert.Equal(t, 2, q.Size())
}

func TestNoMatchDifferentDifficulties(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueEasy, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueHard, ModeCasual))

	assert.Empty(t, q.ProcessQueue())
}

func TestAnyDifficultyMatches(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueAny, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueHard, ModeCasual))

	matches := q.ProcessQueue()
	require.Len(t, matches, 1)
	assert.Equal(t, QueueHard, matches[0].Difficulty)
}

func TestRatingThresholdRanked(t *testing.T) {
	q := NewQueue(nil)

	// A 600 point gap exceeds the base threshold of 200 for fresh joiners.
	q.Join(testPlayer("1", 1200, QueueMedium, ModeRanked))
	q.Join(testPlayer("2", 1800, QueueMedium, ModeRanked))

	assert.Empty(t, q.ProcessQueue())
	assert.Equal(t, 2, q.Size())
}

func TestRatingThresholdExpandsWithWait(t *testing.T) {
	q := NewQueue(nil)

	p1 := testPlayer("1", 1200, QueueMedium, ModeRanked)
	p1.QueuedAt = time.Now().Add(-2 * time.Minute)
	q.Join(p1)
	q.Join(testPlayer("2", 1800, QueueMedium, ModeRanked))

	// After 60+ seconds the window is 200+500=700, enough for a 600 gap.
	matches := q.ProcessQueue()
	require.Len(t, matches, 1)
}

func TestRatingThreshold(t *testing.T) {
	assert.Equal(t, 200, ratingThreshold(0))
	assert.Equal(t, 450, ratingThreshold(30*time.Second))
	assert.Equal(t, 700, ratingThreshold(60*time.Second))
	assert.Equal(t, 700, ratingThreshold(5*time.Minute))
}

func TestQueueDifficultyMatches(t *testing.T) {
	assert.True(t, QueueAny.Matches(QueueEasy))
	assert.True(t, QueueAny.Matches(QueueMedium))
	assert.True(t, QueueAny.Matches(QueueHard))
	assert.True(t, QueueEasy.Matches(QueueAny))

	assert.True(t, QueueEasy.Matches(QueueEasy))
	assert.False(t, QueueEasy.Matches(QueueMedium))
	assert.False(t, QueueEasy.Matches(QueueHard))
}

func TestOldestWaiterMatchedFirst(t *testing.T) {
	q := NewQueue(nil)

	oldest := testPlayer("old", 1200, QueueMedium, ModeCasual)
	oldest.QueuedAt = time.Now().Add(-time.Minute)
	q.Join(oldest)
	q.Join(testPlayer("mid", 1200, QueueMedium, ModeCasual))
	q.Join(testPlayer("new", 1200, QueueMedium, ModeCasual))

	matches := q.ProcessQueue()
	require.Len(t, matches, 1)
	assert.Equal(t, "old", matches[0].Players[0].ConnectionID)
	assert.Equal(t, 1, q.Size())

	pos, ok := q.Position("new")
	require.True(t, ok)
	assert.Equal(t, 0, pos)
}

func TestMatchForPlayer(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueMedium, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueMedium, ModeCasual))
	require.Len(t, q.ProcessQueue(), 1)

	m, ok := q.MatchForPlayer("1")
	require.True(t, ok)
	assert.NotEmpty(t, m.RoomCode)

	m2, ok := q.MatchForPlayer("2")
	require.True(t, ok)
	assert.Equal(t, m.ID, m2.ID)

	_, ok = q.MatchForPlayer("ghost")
	assert.False(t, ok)
}

func TestRoomCodeShape(t *testing.T) {
	q := NewQueue(nil)
	pattern := regexp.MustCompile(`^[A-Z]+-[A-Z]+-\d{4}$`)
	for i := 0; i < 20; i++ {
		assert.Regexp(t, pattern, q.generateRoomCode())
	}
}

func TestRoomCodeCollisionRetry(t *testing.T) {
	calls := 0
	q := NewQueue(func(code string) bool {
		calls++
		return calls < 3 // first two candidates collide
	})
	code := q.generateRoomCode()
	assert.NotEmpty(t, code)
	assert.Equal(t, 3, calls)
}

func TestResolveDifficulty(t *testing.T) {
	assert.Equal(t, QueueHard, ResolveDifficulty(QueueAny, QueueHard))
	assert.Equal(t, QueueHard, ResolveDifficulty(QueueHard, QueueAny))
	assert.Equal(t, QueueEasy, ResolveDifficulty(QueueEasy, QueueEasy))

	got := ResolveDifficulty(QueueAny, QueueAny)
	assert.Contains(t, []QueueDifficulty{QueueEasy, QueueMedium, QueueHard}, got)
}

func TestSizeFor(t *testing.T) {
	q := NewQueue(nil)
	q.Join(testPlayer("1", 1200, QueueMedium, ModeCasual))
	q.Join(testPlayer("2", 1200, QueueAny, ModeCasual))
	q.Join(testPlayer("3", 1200, QueueMedium, ModeRanked))

	assert.Equal(t, 2, q.SizeFor(QueueMedium, ModeCasual))
	assert.Equal(t, 1, q.SizeFor(QueueHard, ModeCasual))
	assert.Equal(t, 1, q.SizeFor(QueueMedium, ModeRanked))
}
