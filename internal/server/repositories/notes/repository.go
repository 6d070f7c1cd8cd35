// Package notes provides account-scoped note persistence.
package notes

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository stores notes. Every query is scoped to an owning account.
type Repository interface {
	Create(ctx context.Context, note *models.Note) (*models.Note, error)
	ListByAccount(ctx context.Context, accountID string) ([]*models.Note, error)
	// Delete removes the note only when accountID owns it; otherwise
	// common.ErrNotFound.
	Delete(ctx context.Context, accountID, id string) error
}
