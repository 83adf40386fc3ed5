package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/sandria/chatvault/internal/chat"
	"github.com/sandria/chatvault/internal/domain"
)

// CLI is the interactive chat loop. It owns the notion of a current
// session; everything else goes through the chat layer.
type CLI struct {
	repo     domain.ConversationRepository
	sessions *chat.SessionManager
	handler  *chat.MessageHandler

	in  *bufio.Scanner
	out io.Writer

	currentID string
	storeDesc string
}

// New creates a CLI bound to the given input and output streams.
func New(
	repo domain.ConversationRepository,
	sessions *chat.SessionManager,
	handler *chat.MessageHandler,
	in io.Reader,
	out io.Writer,
	storeDesc string,
) *CLI {
	return &CLI{
		repo:      repo,
		sessions:  sessions,
		handler:   handler,
		in:        bufio.NewScanner(in),
		out:       out,
		storeDesc: storeDesc,
	}
}

// Run starts a fresh session and processes input until /quit or EOF.
func (c *CLI) Run(ctx context.Context) error {
	id, err := c.sessions.CreateNewSession(ctx)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	c.currentID = id
	fmt.Fprintf(c.out, "🆕 New session created: %s\n", id)

	info, err := c.repo.GetSessionInfo(ctx, c.currentID)
	if err != nil {
		return fmt.Errorf("failed to load session: %w", err)
	}
	if info == nil {
		return fmt.Errorf("current session not found")
	}

	fmt.Fprintln(c.out, "🚀 AI Chat with Memory Started!")
	fmt.Fprintf(c.out, "💾 Storage: %s\n", c.storeDesc)
	fmt.Fprintf(c.out, "📝 Current Session: %s\n", info.Name)
	fmt.Fprintf(c.out, "🆔 Session ID: %s\n", c.currentID)
	c.printHelp()
	fmt.Fprintln(c.out, strings.Repeat("-", 60))

	for {
		fmt.Fprint(c.out, "\n👤 You: ")
		if !c.in.Scan() {
			fmt.Fprintln(c.out, "\n👋 Goodbye!")
			return c.in.Err()
		}
		input := strings.TrimSpace(c.in.Text())
		if input == "" {
			continue
		}

		switch strings.ToLower(input) {
		case "/quit", "/exit":
			fmt.Fprintln(c.out, "👋 Goodbye!")
			return nil
		case "/help":
			c.printHelp()
			continue
		case "/history":
			c.showHistory(ctx)
			continue
		case "/sessions":
			c.listSessions(ctx)
			continue
		case "/switch":
			c.switchSession(ctx)
			continue
		case "/current":
			c.showCurrent(ctx)
			continue
		case "/new":
			c.newSession(ctx)
			continue
		case "/clear":
			c.clearSession(ctx)
			continue
		case "/tokens":
			c.showTokens(ctx)
			continue
		}

		fmt.Fprintln(c.out, "\n🤖 AI:")
		_, err := c.handler.SendMessage(ctx, c.currentID, input, func(chunk string) {
			fmt.Fprint(c.out, chunk)
		})
		fmt.Fprintln(c.out)
		if err != nil {
			fmt.Fprintf(c.out, "❌ Error: %v\n", err)
		}
	}
}

func (c *CLI) printHelp() {
	fmt.Fprintln(c.out, "\nCommands:")
	fmt.Fprintln(c.out, "  /history - Show conversation history")
	fmt.Fprintln(c.out, "  /sessions - List all sessions")
	fmt.Fprintln(c.out, "  /switch - Switch to a different session")
	fmt.Fprintln(c.out, "  /current - Show current session info")
	fmt.Fprintln(c.out, "  /new - Start new session")
	fmt.Fprintln(c.out, "  /clear - Clear current session")
	fmt.Fprintln(c.out, "  /tokens - Show estimated token usage")
	fmt.Fprintln(c.out, "  /quit or /exit - Exit chat")
}

func (c *CLI) showHistory(ctx context.Context) {
	history, err := c.repo.History(ctx, c.currentID, domain.DefaultHistoryLimit)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error loading history: %v\n", err)
		return
	}
	if len(history) == 0 {
		fmt.Fprintln(c.out, "📝 No conversation history for this session.")
		return
	}

	display := c.currentID
	if info, err := c.repo.GetSessionInfo(ctx, c.currentID); err == nil && info != nil {
		display = info.Name
	}

	fmt.Fprintf(c.out, "\n📋 Conversation History: %s\n", display)
	fmt.Fprintln(c.out, strings.Repeat("-", 60))
	for _, msg := range history {
		fmt.Fprintf(c.out, "%s %s: %s\n", roleEmoji(msg.Role), roleName(msg.Role), msg.Content)
		fmt.Fprintf(c.out, "   ⏰ %s\n\n", msg.Timestamp.Format("2006-01-02 15:04:05"))
	}
}

func (c *CLI) listSessions(ctx context.Context) {
	sessions, err := c.repo.ListSessions(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error listing sessions: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.out, "📝 No previous sessions found.")
		return
	}

	fmt.Fprintln(c.out, "\n📚 Available Sessions:")
	for i, s := range sessions {
		marker := ""
		if s.ID == c.currentID {
			marker = " (current)"
		}
		fmt.Fprintf(c.out, "%d. %s%s\n", i+1, s.Name, marker)
	}
}

func (c *CLI) switchSession(ctx context.Context) {
	sessions, err := c.repo.ListSessions(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error listing sessions: %v\n", err)
		return
	}
	if len(sessions) == 0 {
		fmt.Fprintln(c.out, "📝 No previous sessions found.")
		return
	}

	fmt.Fprintln(c.out, "\n📚 Available Sessions:")
	for i, s := range sessions {
		marker := ""
		if s.ID == c.currentID {
			marker = " (current)"
		}
		fmt.Fprintf(c.out, "%d. %s%s\n", i+1, s.Name, marker)
	}

	fmt.Fprint(c.out, "Enter session number to switch to (or press Enter to cancel): ")
	if !c.in.Scan() {
		return
	}
	choice := strings.TrimSpace(c.in.Text())
	if choice == "" {
		fmt.Fprintln(c.out, "❌ Switch cancelled.")
		return
	}

	n, err := strconv.Atoi(choice)
	if err != nil || n < 1 || n > len(sessions) {
		fmt.Fprintln(c.out, "❌ Invalid session number.")
		return
	}

	selected := sessions[n-1]
	c.currentID = selected.ID
	fmt.Fprintf(c.out, "✅ Switched to session: '%s'\n", selected.Name)
	fmt.Fprintf(c.out, "🆔 Session ID: %s\n", selected.ID)

	// Small preview of where the conversation left off.
	history, err := c.repo.History(ctx, selected.ID, domain.DefaultHistoryLimit)
	if err == nil && len(history) > 0 {
		fmt.Fprintln(c.out, "\n📖 Recent conversation:")
		start := len(history) - 4
		if start < 0 {
			start = 0
		}
		for _, msg := range history[start:] {
			fmt.Fprintf(c.out, "   %s %s: %s\n", roleEmoji(msg.Role), roleName(msg.Role), preview(msg.Content, 80))
		}
		fmt.Fprintln(c.out)
	}
}

func (c *CLI) showCurrent(ctx context.Context) {
	info, err := c.repo.GetSessionInfo(ctx, c.currentID)
	if err != nil || info == nil {
		fmt.Fprintln(c.out, "❌ Current session not found.")
		return
	}

	fmt.Fprintln(c.out, "\n📋 Current Session Information:")
	fmt.Fprintln(c.out, strings.Repeat("-", 40))
	fmt.Fprintf(c.out, "📝 Name: %s\n", info.Name)
	fmt.Fprintf(c.out, "🆔 ID: %s\n", c.currentID)
	fmt.Fprintf(c.out, "📅 Created: %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"))

	history, err := c.repo.History(ctx, c.currentID, 0)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error loading history: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "💬 Messages: %d\n", len(history))
	if len(history) > 0 {
		fmt.Fprintf(c.out, "⏰ Last activity: %s\n", history[len(history)-1].Timestamp.Format("2006-01-02 15:04:05"))
	}
	fmt.Fprintln(c.out)
}

func (c *CLI) newSession(ctx context.Context) {
	id, err := c.sessions.CreateNewSession(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error creating session: %v\n", err)
		return
	}
	c.currentID = id
	fmt.Fprintf(c.out, "🆕 New session created: %s\n", id)
	fmt.Fprintln(c.out, "✅ Now in new session")
}

func (c *CLI) clearSession(ctx context.Context) {
	fmt.Fprint(c.out, "⚠️ Are you sure you want to clear this session? (y/N): ")
	if !c.in.Scan() {
		return
	}
	confirm := strings.ToLower(strings.TrimSpace(c.in.Text()))
	if confirm != "y" && confirm != "yes" {
		fmt.Fprintln(c.out, "❌ Clear cancelled.")
		return
	}

	if err := c.repo.ClearSession(ctx, c.currentID); err != nil {
		fmt.Fprintf(c.out, "❌ Error clearing session: %v\n", err)
		return
	}
	fmt.Fprintln(c.out, "🗑️ Session cleared!")

	id, err := c.sessions.CreateNewSession(ctx)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error creating session: %v\n", err)
		return
	}
	c.currentID = id
	fmt.Fprintf(c.out, "🆕 New session created: %s\n", id)
	fmt.Fprintln(c.out, "✅ Started fresh session")
}

func (c *CLI) showTokens(ctx context.Context) {
	tokens, err := c.handler.EstimateSessionTokens(ctx, c.currentID)
	if err != nil {
		fmt.Fprintf(c.out, "❌ Error estimating tokens: %v\n", err)
		return
	}
	fmt.Fprintf(c.out, "📊 Estimated session tokens: ~%d\n", tokens)
}

// preview truncates to at most n runes, never splitting a multibyte
// character.
func preview(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}

func roleEmoji(role domain.MessageRole) string {
	if role == domain.RoleUser {
		return "👤"
	}
	return "🤖"
}

func roleName(role domain.MessageRole) string {
	if role == domain.RoleUser {
		return "You"
	}
	return "AI"
}
