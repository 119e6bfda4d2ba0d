package flashcards

import (
	"context"

	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// Repository stores flashcards. It never touches a deck's card set; linkage
// is maintained by the caller inside the same transaction.
type Repository interface {
	Create(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error)
	GetByID(ctx context.Context, id string) (*models.Flashcard, error)
	ListByDeck(ctx context.Context, deckID string) ([]*models.Flashcard, error)
	ListByOwner(ctx context.Context, userID string) ([]*models.Flashcard, error)
	ListAll(ctx context.Context) ([]*models.Flashcard, error)
	// Update persists the mutable content fields. DeckID and Owner are fixed
	// at creation.
	Update(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error)
	Delete(ctx context.Context, id string) error
	// DeleteByDeck removes every card referencing deckID and reports how many
	// were removed.
	DeleteByDeck(ctx context.Context, deckID string) (int64, error)
}
