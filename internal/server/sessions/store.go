// Package sessions issues, resolves and revokes server-side sessions.
//
// A session token is 32 random bytes, hex encoded. Only the SHA-256 digest of
// the token is persisted, so a leaked sessions table cannot be replayed.
// Sessions have a fixed lifetime from creation; expiry is enforced on every
// lookup and expired records are additionally purged by a background sweeper.
package sessions

import (
	"context"
	"crypto/sha256"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/logging"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	sessionrepo "github.com/dmitrijs2005/notekeeper/internal/server/repositories/sessions"
)

// TokenBytes is the amount of randomness in a session token.
const TokenBytes = 32

// Store manages session lifecycle on top of a session repository.
type Store struct {
	repo   sessionrepo.Repository
	ttl    time.Duration
	logger logging.Logger
	now    func() time.Time
}

func NewStore(repo sessionrepo.Repository, ttl time.Duration, logger logging.Logger) *Store {
	return &Store{repo: repo, ttl: ttl, logger: logger, now: time.Now}
}

// HashToken returns the storage key of token.
func HashToken(token string) []byte {
	h := sha256.Sum256([]byte(token))
	return h[:]
}

func wellFormed(token string) bool {
	return common.IsHexString(token, 2*TokenBytes)
}

// Create issues a new authenticated session for accountID. The returned
// session is the only place the plaintext token appears.
func (s *Store) Create(ctx context.Context, accountID string) (*models.Session, error) {
	if accountID == "" {
		return nil, fmt.Errorf("%w: empty account id", common.ErrValidation)
	}

	token, err := common.MakeRandHexString(TokenBytes)
	if err != nil {
		return nil, fmt.Errorf("generate session token: %w", err)
	}

	now := s.now().UTC()
	sess := &models.Session{
		Token:         token,
		AccountID:     accountID,
		Authenticated: true,
		CreatedAt:     now,
		ExpiresAt:     now.Add(s.ttl),
	}

	if err := s.repo.Create(ctx, HashToken(token), sess); err != nil {
		return nil, storeError(err)
	}
	return sess, nil
}

// Get resolves token to a usable session. Empty, malformed, unknown,
// unauthenticated and expired tokens all yield common.ErrNotFound; a failing
// repository yields common.ErrStoreUnavailable.
func (s *Store) Get(ctx context.Context, token string) (*models.Session, error) {
	if !wellFormed(token) {
		return nil, common.ErrNotFound
	}

	sess, err := s.repo.Get(ctx, HashToken(token))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, storeError(err)
	}

	if !sess.Usable(s.now()) {
		return nil, common.ErrNotFound
	}

	sess.Token = token
	return sess, nil
}

// Destroy revokes token. Revoking an unknown or already revoked token succeeds.
func (s *Store) Destroy(ctx context.Context, token string) error {
	if !wellFormed(token) {
		return nil
	}
	if err := s.repo.Delete(ctx, HashToken(token)); err != nil {
		return storeError(err)
	}
	return nil
}

// Sweep deletes expired sessions and reports how many were removed.
func (s *Store) Sweep(ctx context.Context) (int64, error) {
	n, err := s.repo.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, storeError(err)
	}
	return n, nil
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := s.Sweep(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				s.logger.Error(ctx, "session sweep failed", "error", err)
				continue
			}
			if n > 0 {
				s.logger.Info(ctx, "expired sessions removed", "removed", n)
			}
		}
	}
}

func storeError(err error) error {
	if errors.Is(err, common.ErrStoreUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %w", common.ErrStoreUnavailable, err)
}
