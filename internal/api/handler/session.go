package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/sandria/chatvault/internal/api/response"
	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/domain"
)

// SessionHandler exposes session management endpoints
type SessionHandler struct {
	repo     domain.ConversationRepository
	sessions *chat.SessionManager
	handler  *chat.MessageHandler
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(repo domain.ConversationRepository, sessions *chat.SessionManager, handler *chat.MessageHandler) *SessionHandler {
	return &SessionHandler{repo: repo, sessions: sessions, handler: handler}
}

// List returns all sessions with message counts, newest first
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.repo.ListSessions(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to list sessions")
		return
	}
	response.OK(w, sessions)
}

// Create creates a new session, optionally with a name
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name string `json:"name"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		// Optional body
	}

	id, err := h.sessions.CreateNewSession(r.Context())
	if err != nil {
		response.InternalError(w, "Failed to create session")
		return
	}

	if req.Name != "" {
		if err := h.repo.UpdateSessionName(r.Context(), id, req.Name); err != nil {
			response.InternalError(w, "Failed to name session")
			return
		}
	}

	info, err := h.repo.GetSessionInfo(r.Context(), id)
	if err != nil || info == nil {
		response.InternalError(w, "Failed to load session")
		return
	}
	response.Created(w, info)
}

// Get returns a single session
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	info, err := h.repo.GetSessionInfo(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to get session")
		return
	}
	if info == nil {
		response.NotFound(w, "Session not found")
		return
	}
	response.OK(w, info)
}

// History returns a session's messages oldest first
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	limit := domain.DefaultHistoryLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v >= 0 {
			limit = v
		}
	}

	history, err := h.repo.History(r.Context(), id, limit)
	if err != nil {
		response.InternalError(w, "Failed to get history")
		return
	}
	response.OK(w, history)
}

// Delete clears a session and all its messages
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	if err := h.repo.ClearSession(r.Context(), id); err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			response.BadRequest(w, "Session ID is required")
			return
		}
		response.InternalError(w, "Failed to clear session")
		return
	}
	response.NoContent(w)
}

// Tokens returns the estimated token count of a session's history
func (h *SessionHandler) Tokens(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")

	tokens, err := h.handler.EstimateSessionTokens(r.Context(), id)
	if err != nil {
		response.InternalError(w, "Failed to estimate tokens")
		return
	}
	response.OK(w, map[string]int{"estimated_tokens": tokens})
}
