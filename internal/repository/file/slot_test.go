package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-widget/internal/domain"
)

func TestSlotRepository_SaveLoad(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "nested")

	repo, err := NewSlotRepository(dir)
	require.NoError(t, err)
	require.NoError(t, repo.Ping(ctx))

	_, err = repo.Load(ctx, domain.ConversationsKey)
	assert.ErrorIs(t, err, domain.ErrSlotEmpty)

	require.NoError(t, repo.Save(ctx, domain.ConversationsKey, []byte(`[{"id":"a"}]`)))
	require.NoError(t, repo.Save(ctx, domain.ConversationsKey, []byte(`[]`)))

	got, err := repo.Load(ctx, domain.ConversationsKey)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "temp files must not be left behind")
	assert.Equal(t, "chatConversations.json", entries[0].Name())
}

func TestSlotRepository_KeyIsSanitized(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	repo, err := NewSlotRepository(dir)
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, "../escape", []byte(`x`)))

	_, err = os.Stat(filepath.Join(dir, ".._escape.json"))
	assert.NoError(t, err)
}

func TestSlotRepository_PingMissingDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "gone")
	repo, err := NewSlotRepository(dir)
	require.NoError(t, err)
	require.NoError(t, os.RemoveAll(dir))

	assert.Error(t, repo.Ping(context.Background()))
}
