package notes

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
	"github.com/google/uuid"
)

// MemoryRepository keeps notes in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Note
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Note)}
}

func (r *MemoryRepository) Create(_ context.Context, n *models.Note) (*models.Note, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	n.ID = uuid.NewString()
	n.CreatedAt = time.Now().UTC()
	r.items[n.ID] = *n
	return n, nil
}

func (r *MemoryRepository) ListByAccount(_ context.Context, accountID string) ([]*models.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := []*models.Note{}
	for _, n := range r.items {
		if n.AccountID == accountID {
			result = append(result, &n)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

func (r *MemoryRepository) Delete(_ context.Context, accountID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	n, ok := r.items[id]
	if !ok || n.AccountID != accountID {
		return common.ErrNotFound
	}
	delete(r.items, id)
	return nil
}
