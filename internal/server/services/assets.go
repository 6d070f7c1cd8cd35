package services

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/repomanager"
)

// AssetKeyStore gives the image pipeline transactional access to an
// account's asset key.
type AssetKeyStore struct {
	repomanager repomanager.RepositoryManager
}

func NewAssetKeyStore(m repomanager.RepositoryManager) *AssetKeyStore {
	return &AssetKeyStore{repomanager: m}
}

func (s *AssetKeyStore) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return s.repomanager.Repositories().Users().GetByID(ctx, id)
}

// CommitAssetKey locks the account row, swaps in key and returns the key it
// replaced, all in one transaction.
func (s *AssetKeyStore) CommitAssetKey(ctx context.Context, accountID, key string) (string, error) {
	var previous string
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		prev, err := r.Users().LockAssetKey(ctx, accountID)
		if err != nil {
			return err
		}
		if err := r.Users().SetAssetKey(ctx, accountID, key); err != nil {
			return err
		}
		previous = prev
		return nil
	})
	if err != nil {
		return "", err
	}
	return previous, nil
}

// ClearAssetKey empties the account's asset key if it still equals expected.
func (s *AssetKeyStore) ClearAssetKey(ctx context.Context, accountID, expected string) (bool, error) {
	var cleared bool
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, r repomanager.Repositories) error {
		current, err := r.Users().LockAssetKey(ctx, accountID)
		if err != nil {
			return err
		}
		if current != expected {
			return nil
		}
		if err := r.Users().SetAssetKey(ctx, accountID, ""); err != nil {
			return err
		}
		cleared = true
		return nil
	})
	if err != nil {
		return false, err
	}
	return cleared, nil
}
