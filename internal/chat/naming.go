package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sandria/chatvault/internal/llm"
)

const (
	maxTitleLength  = 50
	maxPromptSample = 200
	titleTokenCap   = 20
)

// generateSessionName asks the model for a short conversation title, falling
// back to the first words of the user's input when that fails.
func (h *MessageHandler) generateSessionName(ctx context.Context, userInput, aiResponse string) string {
	if userInput == "" || aiResponse == "" {
		return FallbackTitle(userInput)
	}

	provider, err := h.router.GetProvider("")
	if err != nil {
		return FallbackTitle(userInput)
	}

	prompt := fmt.Sprintf(`Create a short, descriptive title (2-4 words) for this conversation topic. Return only the title, no quotes or extra text.

User: %s
AI: %s

Title:`, truncateRunes(userInput, maxPromptSample), truncateRunes(aiResponse, maxPromptSample))

	resp, err := provider.Generate(ctx, llm.Request{
		Model:           h.model,
		Turns:           []llm.Turn{{Role: llm.RoleUser, Text: prompt}},
		MaxOutputTokens: titleTokenCap,
	})
	if err != nil {
		log.Warn().Err(err).Msg("AI session naming failed, using fallback")
		return FallbackTitle(userInput)
	}

	if name := SanitizeTitle(resp.Text); name != "" {
		return name
	}
	return FallbackTitle(userInput)
}

// SanitizeTitle strips quotes and truncates overlong titles with an
// ellipsis marker.
func SanitizeTitle(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, `"`, "")
	s = strings.ReplaceAll(s, "'", "")

	runes := []rune(s)
	if len(runes) > maxTitleLength {
		return string(runes[:maxTitleLength-3]) + "..."
	}
	return s
}

// FallbackTitle derives a session name from the first three words of the
// user's input, or "New Conversation" when there is none.
func FallbackTitle(userInput string) string {
	words := strings.Fields(userInput)
	if len(words) == 0 {
		return "New Conversation"
	}
	if len(words) > 3 {
		return strings.Join(words[:3], " ") + "..."
	}
	return strings.Join(words, " ")
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
