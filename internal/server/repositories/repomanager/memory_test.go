package repomanager

import (
	"context"
	"errors"
	"testing"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryRepositoryManager(t *testing.T) {
	ctx := context.Background()
	m := NewInMemoryRepositoryManager()
	var _ RepositoryManager = m

	require.NoError(t, m.RunMigrations(ctx))
	require.NoError(t, m.Ping(ctx))

	a, err := m.Repositories().Users().Create(ctx, &models.Account{UserName: "alice", Email: "alice@meroni.com"})
	require.NoError(t, err)

	err = m.WithTx(ctx, func(ctx context.Context, r Repositories) error {
		return r.Users().SetAssetKey(ctx, a.ID, "avatars/k")
	})
	require.NoError(t, err)

	got, err := m.Repositories().Users().GetByID(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "avatars/k", got.AssetKey)

	boom := errors.New("boom")
	assert.ErrorIs(t, m.WithTx(ctx, func(context.Context, Repositories) error { return boom }), boom)
	require.NoError(t, m.Close())
}
