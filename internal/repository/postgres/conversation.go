package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/sandria/chatvault/internal/domain"
)

// ConversationRepository implements domain.ConversationRepository on Postgres
type ConversationRepository struct {
	pool *pgxpool.Pool
}

// NewConversationRepository creates a new conversation repository
func NewConversationRepository(db *DB) *ConversationRepository {
	return &ConversationRepository{pool: db.Pool}
}

func (r *ConversationRepository) CreateSession(ctx context.Context, id, name string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty: %w", domain.ErrInvalidArgument)
	}

	now := time.Now().UTC()
	query := `
		INSERT INTO sessions (session_id, session_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (session_id) DO NOTHING
	`
	var sessionName *string
	if name != "" {
		sessionName = &name
	}
	if _, err := r.pool.Exec(ctx, query, id, sessionName, now, now); err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

func (r *ConversationRepository) UpdateSessionName(ctx context.Context, id, name string) error {
	if id == "" || name == "" {
		return fmt.Errorf("session id and name cannot be empty: %w", domain.ErrInvalidArgument)
	}

	query := `
		UPDATE sessions
		SET session_name = $1, updated_at = $2
		WHERE session_id = $3
	`
	if _, err := r.pool.Exec(ctx, query, name, time.Now().UTC(), id); err != nil {
		return fmt.Errorf("failed to update session name: %w", err)
	}
	return nil
}

func (r *ConversationRepository) GetSessionInfo(ctx context.Context, id string) (*domain.Session, error) {
	if id == "" {
		return nil, nil
	}

	query := `
		SELECT s.session_id,
		       COALESCE(s.session_name, s.session_id),
		       s.created_at,
		       s.updated_at,
		       COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON s.session_id = m.session_id
		WHERE s.session_id = $1
		GROUP BY s.session_id, s.session_name, s.created_at, s.updated_at
	`
	var s domain.Session
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&s.ID,
		&s.Name,
		&s.CreatedAt,
		&s.UpdatedAt,
		&s.MessageCount,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	return &s, nil
}

func (r *ConversationRepository) AddMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) error {
	if sessionID == "" {
		return fmt.Errorf("session id cannot be empty: %w", domain.ErrInvalidArgument)
	}
	if !role.Valid() {
		return fmt.Errorf("invalid role %q: %w", role, domain.ErrInvalidArgument)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	now := time.Now().UTC()

	if _, err := tx.Exec(ctx,
		`INSERT INTO sessions (session_id, created_at, updated_at) VALUES ($1, $2, $3)
		 ON CONFLICT (session_id) DO NOTHING`,
		sessionID, now, now,
	); err != nil {
		return fmt.Errorf("failed to ensure session: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`INSERT INTO messages (session_id, role, content, timestamp) VALUES ($1, $2, $3, $4)`,
		sessionID, string(role), content, now,
	); err != nil {
		return fmt.Errorf("failed to add message: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit message: %w", err)
	}
	return nil
}

func (r *ConversationRepository) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	if sessionID == "" {
		return []domain.Message{}, nil
	}

	query := `
		SELECT id, session_id, role, content, timestamp
		FROM messages
		WHERE session_id = $1
		ORDER BY timestamp ASC, id ASC
	`
	args := []any{sessionID}
	if limit > 0 {
		query += " LIMIT $2"
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var m domain.Message
		var roleStr string
		if err := rows.Scan(&m.ID, &m.SessionID, &roleStr, &m.Content, &m.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		m.Role = domain.MessageRole(roleStr)
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return messages, nil
}

func (r *ConversationRepository) ClearSession(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("session id cannot be empty: %w", domain.ErrInvalidArgument)
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM messages WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete messages: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM sessions WHERE session_id = $1`, id); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit clear: %w", err)
	}
	return nil
}

func (r *ConversationRepository) ListSessions(ctx context.Context) ([]domain.Session, error) {
	query := `
		SELECT s.session_id,
		       COALESCE(s.session_name, s.session_id),
		       s.created_at,
		       s.updated_at,
		       COUNT(m.id)
		FROM sessions s
		LEFT JOIN messages m ON s.session_id = m.session_id
		GROUP BY s.session_id, s.session_name, s.created_at, s.updated_at
		ORDER BY s.created_at DESC, s.session_id DESC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		var s domain.Session
		if err := rows.Scan(&s.ID, &s.Name, &s.CreatedAt, &s.UpdatedAt, &s.MessageCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read sessions: %w", err)
	}
	return sessions, nil
}
