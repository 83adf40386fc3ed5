package domain

import "time"

// MessageRole represents the sender of a message
type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
)

// Valid reports whether the role is one of the two accepted values.
func (r MessageRole) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// Message represents one stored conversation turn. Content may be the
// empty string; a message is never stored without a content column.
type Message struct {
	ID        int64       `json:"id"`
	SessionID string      `json:"session_id"`
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}
