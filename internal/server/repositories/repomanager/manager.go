// Package repomanager vends the server repositories bound to one connection
// or transaction, for PostgreSQL and for an in-memory store.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/notes"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/sessions"
	"github.com/dmitrijs2005/notekeeper/internal/server/repositories/users"
)

// Repositories is the set of repositories sharing one handle.
type Repositories interface {
	Users() users.Repository
	Sessions() sessions.Repository
	Notes() notes.Repository
}

// RepositoryManager owns the backing store.
type RepositoryManager interface {
	RunMigrations(ctx context.Context) error

	// Repositories returns repositories that run each call on its own.
	Repositories() Repositories

	// WithTx runs fn with repositories bound to a single transaction. It
	// commits when fn returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, r Repositories) error) error

	Ping(ctx context.Context) error
	Close() error
}
