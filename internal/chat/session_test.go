package chat

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCreateNewSession(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	repo.On("CreateSession", ctx, mock.AnythingOfType("string"), "").Return(nil)

	manager := NewSessionManager(repo)

	first, err := manager.CreateNewSession(ctx)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(first, "session_"))

	second, err := manager.CreateNewSession(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	repo.AssertNumberOfCalls(t, "CreateSession", 2)
}

func TestCreateNewSessionRepositoryFailure(t *testing.T) {
	ctx := context.Background()
	repo := new(MockConversationRepository)
	repo.On("CreateSession", ctx, mock.AnythingOfType("string"), "").
		Return(assert.AnError)

	manager := NewSessionManager(repo)

	_, err := manager.CreateNewSession(ctx)
	assert.Error(t, err)
}
