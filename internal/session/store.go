// Package session holds per-session conversation history with bounded
// retention. History is intentionally not durable: the default store lives
// in process memory and dies with it.
package session

import (
	"context"
	"errors"
)

// MaxTurns bounds retained history to the most recent 10 exchanges. Older
// context is dropped on purpose: it caps memory use and the LLM context
// window at the cost of long-range recall.
const MaxTurns = 20

var ErrUnknownSession = errors.New("unknown session")

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a session, exclusively owned by it.
type Turn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type Store interface {
	// Create allocates a fresh session with an empty history.
	Create(ctx context.Context) (string, error)

	// Append adds turns to the session and re-trims retention. Fails with
	// ErrUnknownSession when the session does not exist.
	Append(ctx context.Context, sessionID string, turns ...Turn) error

	// History returns the full retained sequence, oldest first. Fails with
	// ErrUnknownSession when the session does not exist.
	History(ctx context.Context, sessionID string) ([]Turn, error)

	// Clear removes the session entirely. Idempotent: clearing an unknown
	// session is not an error.
	Clear(ctx context.Context, sessionID string) error
}

// trimTurns enforces retention: keep the last MaxTurns turns, then drop
// leading assistant turns so the sequence still starts with a user turn.
func trimTurns(turns []Turn) []Turn {
	if len(turns) > MaxTurns {
		turns = turns[len(turns)-MaxTurns:]
	}
	for len(turns) > 0 && turns[0].Role != RoleUser {
		turns = turns[1:]
	}
	return turns
}
