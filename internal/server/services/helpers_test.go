package services

import (
	"context"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/auth"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

// testEnv wires every service over one in-memory badger store.
type testEnv struct {
	db     *badger.DB
	m      repomanager.RepositoryManager
	tokens *auth.JWTIssuer
	users  *UserService
	decks  *DeckService
	cards  *FlashcardService
	coord  *Coordinator
	maint  *MaintenanceService
}

func newEnvFromDB(db *badger.DB) *testEnv {
	m := repomanager.NewBadgerRepositoryManager(db)
	log := logging.Nop{}
	tokens := auth.NewJWTIssuer("test-secret", time.Hour)
	coord := NewCoordinator(m, log)
	return &testEnv{
		db:     db,
		m:      m,
		tokens: tokens,
		users:  NewUserService(m, auth.NewBcryptHasher(bcrypt.MinCost), tokens, log),
		decks:  NewDeckService(m, coord, log),
		cards:  NewFlashcardService(m, coord, log),
		coord:  coord,
		maint:  NewMaintenanceService(m, coord, log),
	}
}

func newEnv(t *testing.T) *testEnv {
	t.Helper()
	db, err := kvx.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return newEnvFromDB(db)
}

func (e *testEnv) register(t *testing.T, name string) string {
	t.Helper()
	u, _, err := e.users.Register(context.Background(), name, name+"@example.com", "secret1")
	require.NoError(t, err)
	return u.ID
}

// defaultDeck creates a system-owned deck with one system-owned card.
func (e *testEnv) defaultDeck(t *testing.T, name string) (*models.Deck, *models.Flashcard) {
	t.Helper()
	card := &models.Flashcard{Owner: models.SystemOwned(), Question: "Q", Answer: "A", Difficulty: models.DifficultyEasy}
	deck, err := e.coord.CreateDeckWithCards(context.Background(),
		&models.Deck{Name: name, Owner: models.SystemOwned()}, []*models.Flashcard{card})
	require.NoError(t, err)
	return deck, card
}

func strPtr(s string) *string { return &s }
