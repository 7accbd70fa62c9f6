package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStore_SQLite(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	s := Open(path)
	require.True(t, s.Persistent())

	now := time.Now().UTC().Truncate(time.Second)
	s.Save(ctx, Message{SessionID: "a", Role: "user", Content: "xin chào", CreatedAt: now})
	s.Save(ctx, Message{SessionID: "b", Role: "user", Content: "other", CreatedAt: now})
	s.Save(ctx, Message{SessionID: "a", Role: "assistant", Content: "Chào bạn!", CreatedAt: now})
	require.NoError(t, s.Close())

	reopened := Open(path)
	defer reopened.Close()

	msgs := reopened.List(ctx, "a")
	require.Len(t, msgs, 2)
	require.Equal(t, "user", msgs[0].Role)
	require.Equal(t, "xin chào", msgs[0].Content)
	require.Equal(t, "assistant", msgs[1].Role)
	require.Less(t, msgs[0].ID, msgs[1].ID)

	require.NoError(t, reopened.Clear(ctx, "a"))
	require.Empty(t, reopened.List(ctx, "a"))
	require.Len(t, reopened.List(ctx, "b"), 1)
}

func TestStore_MemoryOnly(t *testing.T) {
	ctx := context.Background()
	s := Open("")
	require.False(t, s.Persistent())

	s.Save(ctx, Message{SessionID: "a", Role: "user", Content: "hi"})
	s.Save(ctx, Message{SessionID: "b", Role: "user", Content: "hey"})

	msgs := s.List(ctx, "a")
	require.Len(t, msgs, 1)
	require.Equal(t, "hi", msgs[0].Content)
	require.Empty(t, s.List(ctx, "missing"))
	require.NoError(t, s.Close())
}

func TestStore_FallsBackWhenDBUnusable(t *testing.T) {
	ctx := context.Background()
	s := Open(filepath.Join(t.TempDir(), "missing-dir", "history.db"))
	require.False(t, s.Persistent())

	s.Save(ctx, Message{SessionID: "a", Role: "user", Content: "still here"})
	require.Len(t, s.List(ctx, "a"), 1)
}
