package repomanager

import (
	"context"

	"github.com/dgraph-io/badger/v4"

	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/decks"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/flashcards"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/users"
)

// schemaKey records the key layout version of a badger store.
const (
	schemaKey     = "meta:schema-version"
	schemaVersion = "1"
)

// BadgerRepositoryManager vends repositories over an embedded badger
// database.
type BadgerRepositoryManager struct {
	db    *badger.DB
	store *kvx.Store
}

func NewBadgerRepositoryManager(db *badger.DB) *BadgerRepositoryManager {
	return &BadgerRepositoryManager{db: db, store: kvx.NewStore(db)}
}

// OpenBadger opens (or creates) a badger database at path; an empty path
// yields an in-memory store.
func OpenBadger(path string) (*BadgerRepositoryManager, error) {
	db, err := kvx.Open(path)
	if err != nil {
		return nil, err
	}
	return NewBadgerRepositoryManager(db), nil
}

func (m *BadgerRepositoryManager) bind(store *kvx.Store) Repositories {
	return Repositories{
		Users:      users.NewBadgerRepository(store),
		Decks:      decks.NewBadgerRepository(store),
		Flashcards: flashcards.NewBadgerRepository(store),
	}
}

func (m *BadgerRepositoryManager) Repositories() Repositories {
	return m.bind(m.store)
}

// WithTx runs fn inside one badger read-write transaction (see kvx.WithTx).
func (m *BadgerRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, repos Repositories) error) error {
	return kvx.WithTx(ctx, m.db, func(ctx context.Context, txn *badger.Txn) error {
		return fn(ctx, m.bind(m.store.Bind(txn)))
	})
}

// RunMigrations stamps the key layout version. Badger has no schema, so
// there is nothing else to migrate yet.
func (m *BadgerRepositoryManager) RunMigrations(ctx context.Context) error {
	return m.store.Update(func(txn *badger.Txn) error {
		return kvx.SetRaw(txn, schemaKey, []byte(schemaVersion))
	})
}

func (m *BadgerRepositoryManager) Close() error {
	return m.db.Close()
}

var (
	_ RepositoryManager = (*BadgerRepositoryManager)(nil)
	_ RepositoryManager = (*PostgresRepositoryManager)(nil)
)
