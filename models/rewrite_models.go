package models

// ==== Rewrite request & response ====

type RewriteRequest struct {
	Text     string `json:"text" binding:"required"`
	Language string `json:"language" binding:"required"`
}

type RewriteResponse struct {
	Rewritten string `json:"rewritten"`
	Language  string `json:"language"`
}

// ==== Chat history ====

// ChatTurn is one entry of a session's in-memory conversation.
// Role is "user" or "assistant".
type ChatTurn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}
