// Package session keeps per-session conversation history in process memory.
// Sessions are created implicitly on first append and live until the process
// exits; nothing is ever written to disk.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Role identifies who produced a turn.
type Role string

const (
	// RoleUser marks a turn written by the user.
	RoleUser Role = "user"
	// RoleAssistant marks a turn produced by a model backend.
	RoleAssistant Role = "assistant"
)

// Turn is one message in a conversation. Turns are immutable once appended.
type Turn struct {
	// ID is the unique identifier for this turn.
	ID string `json:"id"`
	// Role indicates who produced the turn.
	Role Role `json:"role"`
	// Text is the turn content.
	Text string `json:"text"`
	// Timestamp is when the turn was appended.
	Timestamp time.Time `json:"timestamp"`
}

// Store holds ordered turn history keyed by session ID.
// Store is safe for concurrent use across sessions; requests for the same
// session are expected to be serialized by the caller, so two simultaneous
// appends to one session may interleave in either order.
type Store struct {
	mu       sync.RWMutex
	sessions map[string][]Turn
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string][]Turn),
	}
}

// Append adds a turn to a session's history, creating the session if it does
// not exist yet. It returns the stored turn with its assigned ID and timestamp.
func (s *Store) Append(sessionID string, role Role, text string) Turn {
	turn := Turn{
		ID:        uuid.New().String(),
		Role:      role,
		Text:      text,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	s.sessions[sessionID] = append(s.sessions[sessionID], turn)
	s.mu.Unlock()

	return turn
}

// History returns a copy of the session's turns in append order.
// Unknown sessions yield an empty slice, never an error.
func (s *Store) History(sessionID string) []Turn {
	s.mu.RLock()
	defer s.mu.RUnlock()

	turns := s.sessions[sessionID]
	out := make([]Turn, len(turns))
	copy(out, turns)
	return out
}

// Len returns the number of turns in a session.
func (s *Store) Len(sessionID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions[sessionID])
}

// Sessions returns the number of known sessions.
func (s *Store) Sessions() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Window truncates history to at most maxTurns turns, dropping from the
// oldest end. A non-positive maxTurns returns the history unchanged.
func Window(turns []Turn, maxTurns int) []Turn {
	if maxTurns <= 0 || len(turns) <= maxTurns {
		return turns
	}
	return turns[len(turns)-maxTurns:]
}

// WindowTokens truncates history to an estimated token budget, dropping the
// oldest turns first. Backends with token-denominated context windows use
// this instead of Window.
func WindowTokens(turns []Turn, maxTokens int) []Turn {
	if maxTokens <= 0 {
		return turns
	}

	total := 0
	for i := len(turns) - 1; i >= 0; i-- {
		total += EstimateTokens(turns[i].Text)
		if total > maxTokens {
			return turns[i+1:]
		}
	}
	return turns
}

// EstimateTokens gives a rough token count for text.
// 1 token ≈ 4 characters for English; backends with real tokenizers should
// treat this as an upper-bound heuristic only.
func EstimateTokens(text string) int {
	return len(text) / 4
}
