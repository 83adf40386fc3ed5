package chat

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sandria/chatvault/internal/domain"
	"github.com/sandria/chatvault/internal/llm"
	"github.com/sandria/chatvault/internal/tool"
)

// MessageHandler orchestrates one conversation turn: context assembly,
// streaming completion, persistence and first-exchange session naming.
type MessageHandler struct {
	repo         domain.ConversationRepository
	router       *llm.Router
	tools        *tool.Registry
	model        string
	historyLimit int
}

// NewMessageHandler creates a new message handler
func NewMessageHandler(
	repo domain.ConversationRepository,
	router *llm.Router,
	tools *tool.Registry,
	model string,
	historyLimit int,
) *MessageHandler {
	if historyLimit <= 0 {
		historyLimit = domain.DefaultHistoryLimit
	}
	return &MessageHandler{
		repo:         repo,
		router:       router,
		tools:        tools,
		model:        model,
		historyLimit: historyLimit,
	}
}

// SendMessage sends user input for a session and returns the accumulated
// model response. onChunk, if non-nil, is invoked for each text fragment as
// it arrives. Nothing is persisted when the model call fails.
func (h *MessageHandler) SendMessage(ctx context.Context, sessionID, input string, onChunk func(string)) (string, error) {
	if sessionID == "" {
		return "", fmt.Errorf("session id cannot be empty: %w", domain.ErrInvalidArgument)
	}

	turns, err := h.buildTurns(ctx, sessionID, input)
	if err != nil {
		return "", err
	}

	provider, err := h.router.GetProvider("")
	if err != nil {
		return "", err
	}

	stream, err := provider.GenerateStream(ctx, llm.Request{
		Model: h.model,
		Turns: turns,
		Tools: h.tools.All(),
	})
	if err != nil {
		return "", fmt.Errorf("failed to get AI response: %w", err)
	}
	defer stream.Close()

	var response string
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("failed to get AI response: %w", err)
		}
		response += chunk
		if onChunk != nil {
			onChunk(chunk)
		}
	}

	// The user turn is persisted first so history replays in order.
	if err := h.repo.AddMessage(ctx, sessionID, domain.RoleUser, input); err != nil {
		return "", err
	}
	if err := h.repo.AddMessage(ctx, sessionID, domain.RoleAssistant, response); err != nil {
		return "", err
	}

	h.maybeNameSession(ctx, sessionID, input, response)

	return response, nil
}

// EstimateSessionTokens approximates the token count of a session's history
// at roughly four characters per token.
func (h *MessageHandler) EstimateSessionTokens(ctx context.Context, sessionID string) (int, error) {
	history, err := h.repo.History(ctx, sessionID, h.historyLimit)
	if err != nil {
		return 0, err
	}

	totalChars := 0
	for _, m := range history {
		totalChars += len(m.Content)
	}
	return totalChars / 4, nil
}

// buildTurns maps stored history into role-tagged turns and appends the new
// user input.
func (h *MessageHandler) buildTurns(ctx context.Context, sessionID, input string) ([]llm.Turn, error) {
	history, err := h.repo.History(ctx, sessionID, h.historyLimit)
	if err != nil {
		return nil, err
	}

	turns := make([]llm.Turn, 0, len(history)+1)
	for _, m := range history {
		role := llm.RoleUser
		if m.Role == domain.RoleAssistant {
			role = llm.RoleModel
		}
		turns = append(turns, llm.Turn{Role: role, Text: m.Content})
	}
	turns = append(turns, llm.Turn{Role: llm.RoleUser, Text: input})

	return turns, nil
}

// maybeNameSession runs auto-naming after the first completed exchange.
// Failures are absorbed; a deterministic fallback name is always applied.
// The first-exchange check uses the stored message count, not the replay
// window, so it fires exactly once whatever the history limit is.
func (h *MessageHandler) maybeNameSession(ctx context.Context, sessionID, input, response string) {
	info, err := h.repo.GetSessionInfo(ctx, sessionID)
	if err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to load session for naming")
		return
	}
	if info == nil || info.MessageCount != 2 {
		return
	}

	name := h.generateSessionName(ctx, input, response)
	if err := h.repo.UpdateSessionName(ctx, sessionID, name); err != nil {
		log.Warn().Err(err).Str("session", sessionID).Msg("failed to update session name")
	}
}
