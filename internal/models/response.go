package models

// SessionResponse is returned by GET /api/chat/session
type SessionResponse struct {
	SessionID string `json:"session_id"`
}

// HistoryResult is returned by GET /api/chat/history
type HistoryResult struct {
	Success bool      `json:"success"`
	History []Message `json:"history"`
	Error   string    `json:"error,omitempty"`
}

// SendRequest is the body of POST /api/chat/message
type SendRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// SendResult is returned by POST /api/chat/message. On failure Success is
// false and Error may carry the server's explanation.
type SendResult struct {
	Success   bool   `json:"success"`
	Response  string `json:"response,omitempty"`
	SessionID string `json:"session_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// PromptsResult is returned by GET /api/dag/prompts
type PromptsResult struct {
	Success bool     `json:"success"`
	Prompts []Prompt `json:"prompts"`
	Error   string   `json:"error,omitempty"`
}

// CreatePromptResult is returned by POST /api/dag/prompts
type CreatePromptResult struct {
	Success  bool   `json:"success"`
	PromptID int64  `json:"prompt_id,omitempty"`
	Error    string `json:"error,omitempty"`
}

// GenerateResult is returned by POST /api/dag/generate/{id}
type GenerateResult struct {
	Success bool   `json:"success"`
	DagID   string `json:"dag_id,omitempty"`
	Error   string `json:"error,omitempty"`
}

// StatusResult is the bare {success, error} envelope (DELETE replies).
type StatusResult struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}
