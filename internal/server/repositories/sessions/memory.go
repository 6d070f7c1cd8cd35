package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/notekeeper/internal/common"
	"github.com/dmitrijs2005/notekeeper/internal/server/models"
)

// MemoryRepository keeps session records in process memory.
type MemoryRepository struct {
	mu    sync.RWMutex
	items map[string]models.Session
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{items: make(map[string]models.Session)}
}

func (r *MemoryRepository) Create(_ context.Context, tokenHash []byte, s *models.Session) error {
	rec := *s
	rec.Token = ""

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[string(tokenHash)]; ok {
		return common.ErrAlreadyExists
	}
	r.items[string(tokenHash)] = rec
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, tokenHash []byte) (*models.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.items[string(tokenHash)]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &s, nil
}

func (r *MemoryRepository) Delete(_ context.Context, tokenHash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.items, string(tokenHash))
	return nil
}

func (r *MemoryRepository) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for k, s := range r.items {
		if !now.Before(s.ExpiresAt) {
			delete(r.items, k)
			n++
		}
	}
	return n, nil
}

// Len reports the number of stored records.
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.items)
}
