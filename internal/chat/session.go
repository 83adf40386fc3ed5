package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandria/chatvault/internal/domain"
)

// SessionManager creates chat sessions
type SessionManager struct {
	repo domain.ConversationRepository
}

// NewSessionManager creates a new session manager
func NewSessionManager(repo domain.ConversationRepository) *SessionManager {
	return &SessionManager{repo: repo}
}

// CreateNewSession generates a fresh session identifier and registers it.
// The id combines a timestamp with a short random suffix; collisions are
// treated as negligible and not checked for.
func (m *SessionManager) CreateNewSession(ctx context.Context) (string, error) {
	id := fmt.Sprintf("session_%s_%s",
		time.Now().Format("20060102_150405"),
		uuid.New().String()[:8],
	)
	if err := m.repo.CreateSession(ctx, id, ""); err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return id, nil
}
