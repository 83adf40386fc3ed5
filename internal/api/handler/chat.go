package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/sandria/chatvault/internal/api/response"
	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/domain"
)

var validate = validator.New()

// ChatHandler forwards user messages to the message handler
type ChatHandler struct {
	handler  *chat.MessageHandler
	sessions *chat.SessionManager
}

// NewChatHandler creates a new chat handler
func NewChatHandler(handler *chat.MessageHandler, sessions *chat.SessionManager) *ChatHandler {
	return &ChatHandler{handler: handler, sessions: sessions}
}

type chatRequest struct {
	SessionID string `json:"session_id"`
	Message   string `json:"message" validate:"required,min=1"`
}

type chatResponse struct {
	SessionID string `json:"session_id"`
	Reply     string `json:"reply"`
}

// Send handles one conversation turn. A missing session_id starts a new
// session; the id is returned so the client can continue the thread.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		if validationErrors, ok := err.(validator.ValidationErrors); ok {
			errs := make(map[string]string)
			for _, e := range validationErrors {
				switch e.Tag() {
				case "required":
					errs[e.Field()] = "field is required"
				case "min":
					errs[e.Field()] = "must be at least " + e.Param() + " characters"
				default:
					errs[e.Field()] = "validation failed on " + e.Tag()
				}
			}
			response.BadRequest(w, errs)
			return
		}
		response.BadRequest(w, err.Error())
		return
	}

	sessionID := req.SessionID
	if sessionID == "" {
		id, err := h.sessions.CreateNewSession(r.Context())
		if err != nil {
			response.InternalError(w, "Failed to create session")
			return
		}
		sessionID = id
	}

	reply, err := h.handler.SendMessage(r.Context(), sessionID, req.Message, nil)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidArgument) {
			response.BadRequest(w, err.Error())
			return
		}
		response.BadGateway(w, "Error getting AI response: "+err.Error())
		return
	}

	response.OK(w, chatResponse{SessionID: sessionID, Reply: reply})
}
