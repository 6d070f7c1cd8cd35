// Package sessions declares the server-side repository contract for session
// records. Records are keyed by a digest of the session token; the plaintext
// token never reaches storage.
package sessions

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// Repository defines operations for storing, retrieving and removing sessions.
type Repository interface {
	// Create stores s under tokenHash. s.Token is ignored.
	Create(ctx context.Context, tokenHash []byte, s *models.Session) error

	// Get returns the record stored under tokenHash, or common.ErrNotFound.
	// Expiry is not checked here.
	Get(ctx context.Context, tokenHash []byte) (*models.Session, error)

	// Delete removes the record. Deleting a missing record is not an error.
	Delete(ctx context.Context, tokenHash []byte) error

	// DeleteExpired removes records with expires_at at or before now and
	// reports how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}
