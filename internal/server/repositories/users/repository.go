// Package users declares the account repository contract and its PostgreSQL
// and in-memory implementations.
package users

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository persists accounts. Lookups return common.ErrNotFound when no
// account matches; Create returns common.ErrAlreadyExists on a duplicate
// username or email.
type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByLogin(ctx context.Context, login string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// LockAssetKey reads the committed asset key and holds the row until the
	// surrounding transaction ends.
	LockAssetKey(ctx context.Context, id string) (string, error)
	SetAssetKey(ctx context.Context, id, key string) error
}
