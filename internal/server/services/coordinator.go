package services

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

// Coordinator keeps deck card sets and card deck references in step. It is
// the only code that changes a deck's card set, and every change it makes
// runs in one transaction.
type Coordinator struct {
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCoordinator(m repomanager.RepositoryManager, logger logging.Logger) *Coordinator {
	return &Coordinator{repomanager: m, logger: logger.With("module", "coordinator")}
}

// AddCard persists card and appends it to its deck's card set. The deck must
// exist.
func (c *Coordinator) AddCard(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {
	var created *models.Flashcard

	err := c.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if _, err := repos.Decks.GetByID(ctx, card.DeckID); err != nil {
			return err
		}

		var err error
		created, err = repos.Flashcards.Create(ctx, card)
		if err != nil {
			return err
		}

		return repos.Decks.AddCard(ctx, card.DeckID, created.ID)
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

// RemoveCard takes card out of its deck's card set and deletes it. A card
// already missing from the set, or a deck that is gone, is tolerated.
func (c *Coordinator) RemoveCard(ctx context.Context, card *models.Flashcard) error {
	return c.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		if err := repos.Decks.RemoveCard(ctx, card.DeckID, card.ID); err != nil {
			return err
		}
		return repos.Flashcards.Delete(ctx, card.ID)
	})
}

// DeleteDeck deletes every card referencing deck, then the deck itself, and
// reports how many cards went with it.
func (c *Coordinator) DeleteDeck(ctx context.Context, deck *models.Deck) (int64, error) {
	var n int64

	err := c.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		var err error
		n, err = repos.Flashcards.DeleteByDeck(ctx, deck.ID)
		if err != nil {
			return err
		}
		return repos.Decks.Delete(ctx, deck.ID)
	})
	if err != nil {
		return 0, err
	}

	c.logger.Info(ctx, "deck deleted", "deck_id", deck.ID, "cards", n)
	return n, nil
}

// CreateDeckWithCards creates deck and all of cards in it as one unit. Card
// owners must already match the deck.
func (c *Coordinator) CreateDeckWithCards(ctx context.Context, deck *models.Deck, cards []*models.Flashcard) (*models.Deck, error) {
	var created *models.Deck

	err := c.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		var err error
		created, err = createDeckWithCards(ctx, repos, deck, cards)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("error creating deck %q: %w", deck.Name, err)
	}

	return created, nil
}

// createDeckWithCards is the body of CreateDeckWithCards for callers that
// already hold a transaction.
func createDeckWithCards(ctx context.Context, repos repomanager.Repositories, deck *models.Deck, cards []*models.Flashcard) (*models.Deck, error) {
	created, err := repos.Decks.Create(ctx, deck)
	if err != nil {
		return nil, err
	}

	for _, card := range cards {
		card.DeckID = created.ID
		if _, err := repos.Flashcards.Create(ctx, card); err != nil {
			return nil, err
		}
		if err := repos.Decks.AddCard(ctx, created.ID, card.ID); err != nil {
			return nil, err
		}
		created.AddCard(card.ID)
	}
	return created, nil
}

// LinkRef names one deck/card link.
type LinkRef struct {
	DeckID string `json:"deckId"`
	CardID string `json:"cardId"`
}

// ReconcileReport lists the link problems found by Reconcile.
//
//   - OrphanCards: cards whose deck no longer exists (deleted on repair).
//   - DanglingLinks: ids in a deck's card set with no card pointing back
//     (removed from the set on repair).
//   - MissingLinks: cards absent from their deck's card set (added on repair).
//   - OwnershipMismatches: cards whose owner does not match their deck's kind.
//     These are reported only.
type ReconcileReport struct {
	OrphanCards         []string  `json:"orphanCards"`
	DanglingLinks       []LinkRef `json:"danglingLinks"`
	MissingLinks        []LinkRef `json:"missingLinks"`
	OwnershipMismatches []string  `json:"ownershipMismatches"`
	Repaired            bool      `json:"repaired"`
}

// Clean reports whether no repairable problem was found.
func (r *ReconcileReport) Clean() bool {
	return len(r.OrphanCards) == 0 && len(r.DanglingLinks) == 0 && len(r.MissingLinks) == 0
}

// Reconcile scans every deck and card for broken links and, unless dryRun
// is set, repairs them in the same transaction.
func (c *Coordinator) Reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	var report *ReconcileReport

	err := c.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		// fn may run again after a commit conflict; start from scratch each time.
		report = &ReconcileReport{
			OrphanCards:         []string{},
			DanglingLinks:       []LinkRef{},
			MissingLinks:        []LinkRef{},
			OwnershipMismatches: []string{},
		}

		decks, err := repos.Decks.ListAll(ctx)
		if err != nil {
			return err
		}
		cards, err := repos.Flashcards.ListAll(ctx)
		if err != nil {
			return err
		}

		deckByID := make(map[string]*models.Deck, len(decks))
		for _, d := range decks {
			deckByID[d.ID] = d
		}
		cardByID := make(map[string]*models.Flashcard, len(cards))
		for _, card := range cards {
			cardByID[card.ID] = card
		}

		for _, card := range cards {
			deck, ok := deckByID[card.DeckID]
			if !ok {
				report.OrphanCards = append(report.OrphanCards, card.ID)
				continue
			}
			if !deck.HasCard(card.ID) {
				report.MissingLinks = append(report.MissingLinks, LinkRef{DeckID: deck.ID, CardID: card.ID})
			}
			if card.Owner.IsSystem() != (deck.Kind() == models.DeckKindDefault) {
				report.OwnershipMismatches = append(report.OwnershipMismatches, card.ID)
			}
		}

		for _, deck := range decks {
			for _, id := range deck.CardIDs {
				card, ok := cardByID[id]
				if !ok || card.DeckID != deck.ID {
					report.DanglingLinks = append(report.DanglingLinks, LinkRef{DeckID: deck.ID, CardID: id})
				}
			}
		}

		if dryRun || report.Clean() {
			return nil
		}

		for _, id := range report.OrphanCards {
			if err := repos.Flashcards.Delete(ctx, id); err != nil {
				return err
			}
		}
		for _, l := range report.DanglingLinks {
			if err := repos.Decks.RemoveCard(ctx, l.DeckID, l.CardID); err != nil {
				return err
			}
		}
		for _, l := range report.MissingLinks {
			if err := repos.Decks.AddCard(ctx, l.DeckID, l.CardID); err != nil {
				return err
			}
		}
		report.Repaired = true
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error reconciling: %w", err)
	}

	return report, nil
}
