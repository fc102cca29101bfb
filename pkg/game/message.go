package game

import (
	"encoding/json"
	"log/slog"

	"github.com/bitbattle/bitbattle/pkg/problems"
)

// Envelope is the wire form of every room message. Data is free-form; the
// broadcast bus fans messages out without interpreting them.
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Marshal builds a serialized envelope. Marshal failures are a programming
// error on our own payload types; they are logged and produce an empty
// message rather than a panic in the socket path.
func Marshal(msgType string, data any) []byte {
	raw, err := json.Marshal(data)
	if err != nil {
		slog.Error("Failed to marshal room message", "type", msgType, "error", err)
		raw = []byte("{}")
	}
	out, err := json.Marshal(Envelope{Type: msgType, Data: raw})
	if err != nil {
		slog.Error("Failed to marshal room envelope", "type", msgType, "error", err)
		return []byte("{}")
	}
	return out
}

// problemPayload is the full problem view sent to players on join.
type problemPayload struct {
	ID               string              `json:"id"`
	Title            string              `json:"title"`
	Description      string              `json:"description"`
	Difficulty       problems.Difficulty `json:"difficulty"`
	Examples         []problems.TestCase `json:"examples"`
	StarterCode      map[string]string   `json:"starter_code"`
	TimeLimitMinutes *int                `json:"time_limit_minutes"`
	Tags             []string            `json:"tags"`
}

func newProblemPayload(p *problems.Problem) problemPayload {
	return problemPayload{
		ID:               p.ID,
		Title:            p.Title,
		Description:      p.Description,
		Difficulty:       p.Difficulty,
		Examples:         p.Examples,
		StarterCode:      p.StarterCode,
		TimeLimitMinutes: p.TimeLimitMinutes,
		Tags:             p.Tags,
	}
}

// publicProblem is the reduced problem view given to spectators: no starter
// code, no hidden details beyond the worked examples.
type publicProblem struct {
	ID          string              `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Difficulty  problems.Difficulty `json:"difficulty"`
	Examples    []problems.TestCase `json:"examples"`
}
