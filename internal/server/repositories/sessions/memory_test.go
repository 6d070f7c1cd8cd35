package sessions

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRepository_Lifecycle(t *testing.T) {
	ctx := context.Background()
	r := NewMemoryRepository()
	now := time.Now()

	require.NoError(t, r.Create(ctx, []byte("h1"), &models.Session{Token: "secret", AccountID: "u-1", Authenticated: true, ExpiresAt: now.Add(time.Hour)}))
	require.NoError(t, r.Create(ctx, []byte("h2"), &models.Session{AccountID: "u-2", ExpiresAt: now.Add(-time.Second)}))
	assert.ErrorIs(t, r.Create(ctx, []byte("h1"), &models.Session{}), common.ErrAlreadyExists)

	s, err := r.Get(ctx, []byte("h1"))
	require.NoError(t, err)
	assert.Equal(t, "u-1", s.AccountID)
	assert.Empty(t, s.Token, "plaintext token must not be kept")

	n, err := r.DeleteExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 1, r.Len())

	require.NoError(t, r.Delete(ctx, []byte("h1")))
	require.NoError(t, r.Delete(ctx, []byte("h1")))

	_, err = r.Get(ctx, []byte("h1"))
	assert.ErrorIs(t, err, common.ErrNotFound)
}
