package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

// InMemoryRepositoryManager keeps all data in process memory. WithTx
// serializes callers but does not undo writes made before fn fails.
type InMemoryRepositoryManager struct {
	txMu     sync.Mutex
	users    *users.MemoryRepository
	sessions *sessions.MemoryRepository
	notes    *notes.MemoryRepository
}

func NewInMemoryRepositoryManager() *InMemoryRepositoryManager {
	return &InMemoryRepositoryManager{
		users:    users.NewMemoryRepository(),
		sessions: sessions.NewMemoryRepository(),
		notes:    notes.NewMemoryRepository(),
	}
}

func (m *InMemoryRepositoryManager) Users() users.Repository       { return m.users }
func (m *InMemoryRepositoryManager) Sessions() sessions.Repository { return m.sessions }
func (m *InMemoryRepositoryManager) Notes() notes.Repository       { return m.notes }

func (m *InMemoryRepositoryManager) RunMigrations(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Repositories() Repositories { return m }

func (m *InMemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error {
	m.txMu.Lock()
	defer m.txMu.Unlock()
	return fn(ctx, m)
}

func (m *InMemoryRepositoryManager) Ping(context.Context) error { return nil }

func (m *InMemoryRepositoryManager) Close() error { return nil }
