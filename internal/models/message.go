package models

// Role identifies who authored a transcript entry.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem marks client-generated notices (errors, warnings). The
	// server never returns it in history.
	RoleSystem Role = "system"
)

// Message is one entry of a chat transcript.
type Message struct {
	ID        int64  `json:"id,omitempty"`
	Role      Role   `json:"role"`
	Content   string `json:"content"`
	Timestamp string `json:"timestamp,omitempty"`
}
