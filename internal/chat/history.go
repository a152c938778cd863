// Package chat runs one persona chat turn and keeps short-term history.
package chat

import (
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"

	"github.com/easeaico/tsukuyomi/internal/types"
)

// History keeps the most recent turns per session in memory. Idle sessions
// expire after the TTL and the least recently used are evicted past the cap.
type History struct {
	// mu serializes Append's read-modify-write.
	mu    sync.Mutex
	limit int
	turns *expirable.LRU[string, []types.ChatTurn]
}

// NewHistory keeps at most limit turns per session; zero keeps none.
// maxSessions and ttl of zero mean unbounded and no expiry.
func NewHistory(limit, maxSessions int, ttl time.Duration) *History {
	if limit < 0 {
		limit = 0
	}
	if maxSessions < 0 {
		maxSessions = 0
	}
	if ttl < 0 {
		ttl = 0
	}
	return &History{
		limit: limit,
		turns: expirable.NewLRU[string, []types.ChatTurn](maxSessions, nil, ttl),
	}
}

// Get returns a copy of the session's turns, oldest first.
func (h *History) Get(sessionID string) []types.ChatTurn {
	turns, _ := h.turns.Get(sessionID)
	return append([]types.ChatTurn(nil), turns...)
}

// Append records a turn and drops the oldest beyond the limit.
func (h *History) Append(sessionID string, turn types.ChatTurn) {
	if h.limit == 0 {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()

	prev, _ := h.turns.Get(sessionID)
	turns := make([]types.ChatTurn, 0, len(prev)+1)
	turns = append(turns, prev...)
	turns = append(turns, turn)
	if len(turns) > h.limit {
		turns = turns[len(turns)-h.limit:]
	}
	h.turns.Add(sessionID, turns)
}

// Clear forgets the session's turns.
func (h *History) Clear(sessionID string) {
	h.turns.Remove(sessionID)
}

// Len is the number of sessions with history.
func (h *History) Len() int {
	return h.turns.Len()
}
