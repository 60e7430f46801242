package services

import (
	"sync"

	"support-backend-go/models"
)

// HistoryService keeps the per-session conversation in memory. Nothing is
// persisted: history belongs to one login session and disappears on
// restart. Sessions are keyed by the session id embedded in the token.
type HistoryService struct {
	mu       sync.RWMutex
	sessions map[string][]models.ChatTurn
}

func NewHistoryService() *HistoryService {
	return &HistoryService{
		sessions: make(map[string][]models.ChatTurn),
	}
}

// AppendTurn records one conversation turn for a session. The caller
// appends the user turn as soon as a draft is submitted and the
// assistant turn only when the rewrite succeeds, so a user turn is
// followed by at most one assistant turn.
func (h *HistoryService) AppendTurn(sessionID, role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.sessions[sessionID] = append(h.sessions[sessionID],
		models.ChatTurn{Role: role, Content: content},
	)
}

// Turns returns a copy of the session's conversation in order.
func (h *HistoryService) Turns(sessionID string) []models.ChatTurn {
	h.mu.RLock()
	defer h.mu.RUnlock()

	turns := h.sessions[sessionID]
	out := make([]models.ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// Clear discards a session's conversation.
func (h *HistoryService) Clear(sessionID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions, sessionID)
}

// SessionCount reports the number of sessions holding history.
func (h *HistoryService) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// MessageCount reports the total number of turns across all sessions.
func (h *HistoryService) MessageCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, turns := range h.sessions {
		total += len(turns)
	}
	return total
}
