package users

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps accounts in process memory. It backs the "memory"
// store type and tests. LockAssetKey does not lock; callers serialize
// commits through the repository manager.
type MemoryRepository struct {
	mu   sync.RWMutex
	byID map[string]models.Account
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{byID: make(map[string]models.Account)}
}

func (r *MemoryRepository) Create(_ context.Context, a *models.Account) (*models.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, x := range r.byID {
		if x.UserName == a.UserName || x.Email == a.Email {
			return nil, common.ErrAlreadyExists
		}
	}

	a.ID = uuid.NewString()
	a.CreatedAt = time.Now().UTC()
	r.byID[a.ID] = *a
	return a, nil
}

func (r *MemoryRepository) GetByLogin(_ context.Context, login string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	email := strings.ToLower(login)
	for _, x := range r.byID {
		if x.UserName == login || x.Email == email {
			return &x, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryRepository) GetByID(_ context.Context, id string) (*models.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	x, ok := r.byID[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &x, nil
}

func (r *MemoryRepository) LockAssetKey(ctx context.Context, id string) (string, error) {
	a, err := r.GetByID(ctx, id)
	if err != nil {
		return "", err
	}
	return a.AssetKey, nil
}

func (r *MemoryRepository) SetAssetKey(_ context.Context, id, key string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	x, ok := r.byID[id]
	if !ok {
		return common.ErrNotFound
	}
	x.AssetKey = key
	r.byID[id] = x
	return nil
}
