package domain

import (
	"context"
	"time"
)

// Session represents a named conversation thread
type Session struct {
	ID           string    `json:"session_id"`
	Name         string    `json:"session_name"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
}

// DefaultHistoryLimit bounds the number of turns replayed to the model
// per request.
const DefaultHistoryLimit = 100

// ConversationRepository defines the interface for conversation storage
type ConversationRepository interface {
	// CreateSession inserts a session row if it does not already exist.
	CreateSession(ctx context.Context, id, name string) error

	// UpdateSessionName sets the session name and bumps updated_at.
	// A missing session is tolerated silently.
	UpdateSessionName(ctx context.Context, id, name string) error

	// GetSessionInfo returns the session, or (nil, nil) if it does not exist.
	GetSessionInfo(ctx context.Context, id string) (*Session, error)

	// AddMessage appends a message, creating the session row first if absent.
	AddMessage(ctx context.Context, sessionID string, role MessageRole, content string) error

	// History returns messages oldest first, ties broken by insertion order.
	// limit <= 0 means unbounded.
	History(ctx context.Context, sessionID string, limit int) ([]Message, error)

	// ClearSession deletes all messages for the session and the session row,
	// in a single transaction.
	ClearSession(ctx context.Context, id string) error

	// ListSessions returns all sessions with message counts,
	// newest created first.
	ListSessions(ctx context.Context) ([]Session, error)
}
