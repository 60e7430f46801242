package services

import "sync"

var (
	Rewriter *RewriteService
	History  *HistoryService

	initChatOnce sync.Once
)

// InitChatServices wires the rewrite client and the in-memory history as
// singletons for the serving process.
func InitChatServices() {
	initChatOnce.Do(func() {
		Rewriter = NewRewriteService()
		History = NewHistoryService()
	})
}

// GetAdminMetrics:
// - total_users -> from the credential store
// - active_sessions -> sessions currently holding history
// - total_messages -> turns across all sessions
func GetAdminMetrics(store *UserStore, history *HistoryService) map[string]int64 {
	return map[string]int64{
		"total_users":     int64(store.Len()),
		"active_sessions": int64(history.SessionCount()),
		"total_messages":  int64(history.MessageCount()),
	}
}
