package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sandria/chatvault/internal/domain"
)

func newTestRepo(t *testing.T) *ConversationRepository {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(db))
	return NewConversationRepository(db)
}

func TestMigrateIdempotent(t *testing.T) {
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	defer db.Close()

	require.NoError(t, Migrate(db))
	require.NoError(t, Migrate(db))
}

func TestCreateSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	t.Run("empty id", func(t *testing.T) {
		err := repo.CreateSession(ctx, "", "name")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("idempotent insert", func(t *testing.T) {
		require.NoError(t, repo.CreateSession(ctx, "s1", "first"))
		require.NoError(t, repo.CreateSession(ctx, "s1", "second"))

		info, err := repo.GetSessionInfo(ctx, "s1")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "first", info.Name)
	})

	t.Run("name defaults to id", func(t *testing.T) {
		require.NoError(t, repo.CreateSession(ctx, "unnamed", ""))

		info, err := repo.GetSessionInfo(ctx, "unnamed")
		require.NoError(t, err)
		require.NotNil(t, info)
		assert.Equal(t, "unnamed", info.Name)
	})
}

func TestAddMessageCreatesSessionImplicitly(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddMessage(ctx, "implicit", domain.RoleUser, "hello"))

	info, err := repo.GetSessionInfo(ctx, "implicit")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "implicit", info.Name)
	assert.Equal(t, 1, info.MessageCount)
}

func TestAddMessageValidation(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	err := repo.AddMessage(ctx, "", domain.RoleUser, "x")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	err = repo.AddMessage(ctx, "s1", domain.MessageRole("system"), "x")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)

	// Nothing written by the failed calls.
	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestHistoryOrderingAndLimit(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		require.NoError(t, repo.AddMessage(ctx, "s1", role, fmt.Sprintf("msg-%d", i)))
	}

	history, err := repo.History(ctx, "s1", domain.DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 5)
	for i, m := range history {
		assert.Equal(t, fmt.Sprintf("msg-%d", i), m.Content)
		if i > 0 {
			assert.Greater(t, m.ID, history[i-1].ID)
			assert.False(t, m.Timestamp.Before(history[i-1].Timestamp))
		}
	}

	limited, err := repo.History(ctx, "s1", 3)
	require.NoError(t, err)
	require.Len(t, limited, 3)
	assert.Equal(t, "msg-0", limited[0].Content)
	assert.Equal(t, "msg-2", limited[2].Content)

	unbounded, err := repo.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Len(t, unbounded, 5)
}

func TestHistoryUnknownSession(t *testing.T) {
	repo := newTestRepo(t)

	history, err := repo.History(context.Background(), "nope", domain.DefaultHistoryLimit)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestEmptyContentRoundTrip(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddMessage(ctx, "s1", domain.RoleAssistant, ""))

	history, err := repo.History(ctx, "s1", 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.RoleAssistant, history[0].Role)
	assert.Equal(t, "", history[0].Content)
}

func TestClearSession(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddMessage(ctx, "s1", domain.RoleUser, "hi"))
	require.NoError(t, repo.AddMessage(ctx, "s1", domain.RoleAssistant, "hello"))

	require.NoError(t, repo.ClearSession(ctx, "s1"))

	history, err := repo.History(ctx, "s1", 0)
	require.NoError(t, err)
	assert.Empty(t, history)

	info, err := repo.GetSessionInfo(ctx, "s1")
	require.NoError(t, err)
	assert.Nil(t, info)

	err = repo.ClearSession(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestListSessionsCounts(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.AddMessage(ctx, "a", domain.RoleUser, "1"))
	require.NoError(t, repo.AddMessage(ctx, "a", domain.RoleAssistant, "2"))
	require.NoError(t, repo.AddMessage(ctx, "a", domain.RoleUser, "3"))
	require.NoError(t, repo.AddMessage(ctx, "b", domain.RoleUser, "1"))
	require.NoError(t, repo.CreateSession(ctx, "empty", ""))

	counts := func() map[string]int {
		sessions, err := repo.ListSessions(ctx)
		require.NoError(t, err)
		got := map[string]int{}
		for _, s := range sessions {
			got[s.ID] = s.MessageCount
		}
		return got
	}

	assert.Equal(t, map[string]int{"a": 3, "b": 1, "empty": 0}, counts())

	// Clearing one session leaves the others' counts untouched.
	require.NoError(t, repo.ClearSession(ctx, "b"))
	assert.Equal(t, map[string]int{"a": 3, "empty": 0}, counts())
}

func TestUpdateSessionName(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, "s1", ""))
	require.NoError(t, repo.UpdateSessionName(ctx, "s1", "Weather Talk"))

	info, err := repo.GetSessionInfo(ctx, "s1")
	require.NoError(t, err)
	require.NotNil(t, info)
	assert.Equal(t, "Weather Talk", info.Name)

	// Unknown session is a silent no-op.
	require.NoError(t, repo.UpdateSessionName(ctx, "missing", "x"))

	assert.ErrorIs(t, repo.UpdateSessionName(ctx, "", "x"), domain.ErrInvalidArgument)
	assert.ErrorIs(t, repo.UpdateSessionName(ctx, "s1", ""), domain.ErrInvalidArgument)
}

func TestGetSessionInfoMissing(t *testing.T) {
	repo := newTestRepo(t)

	info, err := repo.GetSessionInfo(context.Background(), "missing")
	require.NoError(t, err)
	assert.Nil(t, info)
}

func TestConversationScenario(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.CreateSession(ctx, "S1", ""))
	require.NoError(t, repo.AddMessage(ctx, "S1", domain.RoleUser, "Hi"))
	require.NoError(t, repo.AddMessage(ctx, "S1", domain.RoleAssistant, "Hello!"))

	history, err := repo.History(ctx, "S1", domain.DefaultHistoryLimit)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.RoleUser, history[0].Role)
	assert.Equal(t, "Hi", history[0].Content)
	assert.Equal(t, domain.RoleAssistant, history[1].Role)
	assert.Equal(t, "Hello!", history[1].Content)

	sessions, err := repo.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "S1", sessions[0].ID)
	assert.Equal(t, 2, sessions[0].MessageCount)
}
