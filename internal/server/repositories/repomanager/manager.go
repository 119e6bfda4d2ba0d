package repomanager

import (
	"context"

	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/decks"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/flashcards"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/users"
)

// Repositories is a set of repositories bound to the same handle: either the
// database itself or one transaction.
type Repositories struct {
	Users      users.Repository
	Decks      decks.Repository
	Flashcards flashcards.Repository
}

// RepositoryManager owns a storage backend and vends repositories for it.
type RepositoryManager interface {
	// RunMigrations brings the storage schema up to date.
	RunMigrations(ctx context.Context) error
	// Repositories returns repositories that run each call on its own.
	Repositories() Repositories
	// WithTx runs fn with repositories bound to a single transaction that is
	// committed when fn returns nil and rolled back otherwise.
	WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error
	Close() error
}
