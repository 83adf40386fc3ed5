package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandria/chatvault/internal/domain"
	"github.com/sandria/chatvault/internal/llm"
	"github.com/sandria/chatvault/internal/tool"
)

func newTestHandler(repo domain.ConversationRepository, provider llm.Provider) *MessageHandler {
	router := llm.NewRouter("fake")
	router.RegisterProvider(provider)
	return NewMessageHandler(repo, router, tool.NewRegistry(), "fake-model", domain.DefaultHistoryLimit)
}

func TestSendMessageSuccessAndAutoName(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{
		chunks:    []string{"Hello", " there"},
		titleText: `"Greeting Chat"`,
	}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{}, nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "hi").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "Hello there").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 2}, nil).Once()
	repo.On("UpdateSessionName", ctx, "s1", "Greeting Chat").Return(nil).Once()

	var streamed []string
	got, err := handler.SendMessage(ctx, "s1", "hi", func(chunk string) {
		streamed = append(streamed, chunk)
	})

	require.NoError(t, err)
	assert.Equal(t, "Hello there", got)
	assert.Equal(t, []string{"Hello", " there"}, streamed)
	assert.True(t, provider.lastStream.closed)
	repo.AssertExpectations(t)

	// User turn persisted before the assistant turn.
	var roles []domain.MessageRole
	for _, call := range repo.Calls {
		if call.Method == "AddMessage" {
			roles = append(roles, call.Arguments.Get(2).(domain.MessageRole))
		}
	}
	assert.Equal(t, []domain.MessageRole{domain.RoleUser, domain.RoleAssistant}, roles)
}

func TestSendMessageTurnMapping(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{chunks: []string{"ok"}}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{
			{Role: domain.RoleUser, Content: "earlier question"},
			{Role: domain.RoleAssistant, Content: "earlier answer"},
		}, nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "followup").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "ok").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 4}, nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "followup", nil)
	require.NoError(t, err)

	turns := provider.lastStreamReq.Turns
	require.Len(t, turns, 3)
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Text: "earlier question"}, turns[0])
	assert.Equal(t, llm.Turn{Role: llm.RoleModel, Text: "earlier answer"}, turns[1])
	assert.Equal(t, llm.Turn{Role: llm.RoleUser, Text: "followup"}, turns[2])
}

func TestNoAutoNameAfterFirstExchange(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{chunks: []string{"reply"}, titleText: "unwanted"}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return(make([]domain.Message, 2), nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "more").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "reply").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 4}, nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "more", nil)
	require.NoError(t, err)

	assert.Zero(t, provider.generateCalls)
	repo.AssertNotCalled(t, "UpdateSessionName", ctx, "s1", "unwanted")
}

func TestAutoNameFallbackOnTitleFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{
		chunks:   []string{"generics are fine"},
		titleErr: errors.New("title model unavailable"),
	}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{}, nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "Tell me about Go generics").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "generics are fine").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 2}, nil).Once()
	repo.On("UpdateSessionName", ctx, "s1", "Tell me about...").Return(nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "Tell me about Go generics", nil)
	require.NoError(t, err)
	repo.AssertExpectations(t)
}

func TestAutoNameOnceWithSmallHistoryLimit(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{
		chunks:    []string{"Hello"},
		titleText: "Greeting Chat",
	}
	router := llm.NewRouter("fake")
	router.RegisterProvider(provider)
	// Replay window smaller than two stored exchanges.
	handler := NewMessageHandler(repo, router, tool.NewRegistry(), "fake-model", 2)

	repo.On("History", ctx, "s1", 2).Return([]domain.Message{}, nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "hi").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "Hello").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 2}, nil).Once()
	repo.On("UpdateSessionName", ctx, "s1", "Greeting Chat").Return(nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "hi", nil)
	require.NoError(t, err)

	repo.On("History", ctx, "s1", 2).
		Return(make([]domain.Message, 2), nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleUser, "again").Return(nil).Once()
	repo.On("AddMessage", ctx, "s1", domain.RoleAssistant, "Hello").Return(nil).Once()
	repo.On("GetSessionInfo", ctx, "s1").
		Return(&domain.Session{ID: "s1", MessageCount: 4}, nil).Once()

	_, err = handler.SendMessage(ctx, "s1", "again", nil)
	require.NoError(t, err)

	assert.Equal(t, 1, provider.generateCalls)
	repo.AssertNumberOfCalls(t, "UpdateSessionName", 1)
}

func TestSendMessageStreamFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{
		chunks:   []string{"partial"},
		chunkErr: errors.New("connection reset"),
	}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{}, nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "hi", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get AI response")
	repo.AssertNotCalled(t, "AddMessage", ctx, "s1", domain.RoleUser, "hi")
	assert.True(t, provider.lastStream.closed)
}

func TestSendMessageProviderFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	provider := &fakeProvider{streamErr: errors.New("api unreachable")}
	handler := newTestHandler(repo, provider)

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{}, nil).Once()

	_, err := handler.SendMessage(ctx, "s1", "hi", nil)
	require.Error(t, err)
	repo.AssertNotCalled(t, "AddMessage", ctx, "s1", domain.RoleUser, "hi")
}

func TestSendMessageEmptySessionID(t *testing.T) {
	repo := new(MockConversationRepository)
	handler := newTestHandler(repo, &fakeProvider{})

	_, err := handler.SendMessage(context.Background(), "", "hi", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestEstimateSessionTokens(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	handler := newTestHandler(repo, &fakeProvider{})

	repo.On("History", ctx, "s1", domain.DefaultHistoryLimit).
		Return([]domain.Message{
			{Content: "0123456789"},
			{Content: "0123456789"},
		}, nil).Once()

	tokens, err := handler.EstimateSessionTokens(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, 5, tokens)
}
