package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-widget/internal/domain"
)

func TestSlotRepository(t *testing.T) {
	dsn := os.Getenv("POSTGRES_TEST_DSN")
	if dsn == "" {
		t.Skip("Requires PostgreSQL connection (set POSTGRES_TEST_DSN)")
	}

	ctx := context.Background()
	require.NoError(t, RunMigrations(dsn, "file://../../../migrations"))

	pool, err := pgxpool.New(ctx, dsn)
	require.NoError(t, err)
	repo := NewSlotRepository(&DB{Pool: pool})
	defer repo.Close()

	key := "test-" + t.Name()
	require.NoError(t, repo.Save(ctx, key, []byte(`[1]`)))
	require.NoError(t, repo.Save(ctx, key, []byte(`[2]`)))

	got, err := repo.Load(ctx, key)
	require.NoError(t, err)
	assert.Equal(t, `[2]`, string(got))

	_, err = repo.Load(ctx, key+"-missing")
	assert.ErrorIs(t, err, domain.ErrSlotEmpty)
}
