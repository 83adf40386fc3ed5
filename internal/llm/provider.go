package llm

import (
	"context"

	"github.com/sandria/chatvault/internal/tool"
)

// Role identifies the author of a turn as the model API sees it
type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// Turn is one role-tagged unit of conversation text
type Turn struct {
	Role Role
	Text string
}

// Request contains completion parameters
type Request struct {
	Model           string
	Turns           []Turn
	MaxOutputTokens int32
	Tools           []tool.Descriptor
}

// Response contains a single-shot completion result
type Response struct {
	Text       string
	Model      string
	TokensUsed int
}

// Stream yields response text fragments as they arrive. It is finite,
// single-pass and not restartable; Next returns io.EOF when exhausted.
// Close releases the underlying connection so an abandoned stream does not
// leak it; calling it after exhaustion is a no-op.
type Stream interface {
	Next() (string, error)
	Close() error
}

// Provider defines the interface for LLM providers
type Provider interface {
	// Name returns the provider identifier
	Name() string

	// DefaultModel returns the default model
	DefaultModel() string

	// IsConfigured checks if provider has valid credentials
	IsConfigured() bool

	// Generate produces a single text completion
	Generate(ctx context.Context, req Request) (*Response, error)

	// GenerateStream produces a streaming completion. Tool calls requested
	// by the model are resolved internally; the stream carries text only.
	GenerateStream(ctx context.Context, req Request) (Stream, error)
}
