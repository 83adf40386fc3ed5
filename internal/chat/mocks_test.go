package chat

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"github.com/sandria/chatvault/internal/domain"
	"github.com/sandria/chatvault/internal/llm"
)

// MockConversationRepository mocks domain.ConversationRepository
type MockConversationRepository struct {
	mock.Mock
}

func (m *MockConversationRepository) CreateSession(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockConversationRepository) UpdateSessionName(ctx context.Context, id, name string) error {
	args := m.Called(ctx, id, name)
	return args.Error(0)
}

func (m *MockConversationRepository) GetSessionInfo(ctx context.Context, id string) (*domain.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockConversationRepository) AddMessage(ctx context.Context, sessionID string, role domain.MessageRole, content string) error {
	args := m.Called(ctx, sessionID, role, content)
	return args.Error(0)
}

func (m *MockConversationRepository) History(ctx context.Context, sessionID string, limit int) ([]domain.Message, error) {
	args := m.Called(ctx, sessionID, limit)
	return args.Get(0).([]domain.Message), args.Error(1)
}

func (m *MockConversationRepository) ClearSession(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockConversationRepository) ListSessions(ctx context.Context) ([]domain.Session, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Session), args.Error(1)
}

// fakeStream yields scripted chunks, then an optional error or io.EOF.
type fakeStream struct {
	chunks []string
	err    error
	pos    int
	closed bool
}

func (s *fakeStream) Next() (string, error) {
	if s.pos < len(s.chunks) {
		chunk := s.chunks[s.pos]
		s.pos++
		return chunk, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *fakeStream) Close() error {
	s.closed = true
	return nil
}

// fakeProvider is a scripted llm.Provider.
type fakeProvider struct {
	chunks    []string
	chunkErr  error
	streamErr error

	titleText string
	titleErr  error

	generateCalls int
	lastStreamReq llm.Request
	lastStream    *fakeStream
}

func (p *fakeProvider) Name() string         { return "fake" }
func (p *fakeProvider) DefaultModel() string { return "fake-model" }
func (p *fakeProvider) IsConfigured() bool   { return true }

func (p *fakeProvider) Generate(ctx context.Context, req llm.Request) (*llm.Response, error) {
	p.generateCalls++
	if p.titleErr != nil {
		return nil, p.titleErr
	}
	return &llm.Response{Text: p.titleText, Model: req.Model}, nil
}

func (p *fakeProvider) GenerateStream(ctx context.Context, req llm.Request) (llm.Stream, error) {
	p.lastStreamReq = req
	if p.streamErr != nil {
		return nil, p.streamErr
	}
	p.lastStream = &fakeStream{chunks: p.chunks, err: p.chunkErr}
	return p.lastStream, nil
}
