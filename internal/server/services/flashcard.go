package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/authz"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

// FlashcardInput holds the fields of a new card. An empty Difficulty means
// medium.
type FlashcardInput struct {
	DeckID     string
	Question   string
	Answer     string
	Details    string
	Images     []string
	Difficulty string
	Tags       []string
}

// FlashcardPatch holds the card fields to change; nil fields are left alone.
// The deck a card belongs to cannot be changed.
type FlashcardPatch struct {
	Question   *string
	Answer     *string
	Details    *string
	Images     *[]string
	Difficulty *string
	Tags       *[]string
}

type FlashcardService struct {
	repomanager repomanager.RepositoryManager
	coordinator *Coordinator
	logger      logging.Logger
}

func NewFlashcardService(m repomanager.RepositoryManager, c *Coordinator, logger logging.Logger) *FlashcardService {
	return &FlashcardService{repomanager: m, coordinator: c, logger: logger.With("module", "flashcards")}
}

// ListByDeck returns the cards of a deck the actor can read.
func (s *FlashcardService) ListByDeck(ctx context.Context, deckID, actor string) ([]*models.Flashcard, error) {
	repos := s.repomanager.Repositories()

	deck, err := repos.Decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(actor, authz.ReadDeck, authz.Target{Deck: deck}).Err(); err != nil {
		return nil, err
	}

	cards, err := repos.Flashcards.ListByDeck(ctx, deck.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	return cards, nil
}

// ListByOwner returns the cards owned by actor.
func (s *FlashcardService) ListByOwner(ctx context.Context, actor string) ([]*models.Flashcard, error) {
	cards, err := s.repomanager.Repositories().Flashcards.ListByOwner(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("error listing cards: %w", err)
	}
	return cards, nil
}

// Get returns a card the actor can read. System-owned cards are readable
// only through a default parent deck.
func (s *FlashcardService) Get(ctx context.Context, id, actor string) (*models.Flashcard, error) {
	repos := s.repomanager.Repositories()

	card, err := repos.Flashcards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	target := authz.Target{Card: card}
	if card.Owner.IsSystem() {
		parent, err := repos.Decks.GetByID(ctx, card.DeckID)
		if err != nil && !errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("error loading deck: %w", err)
		}
		target.Deck = parent
	}

	if err := authz.Decide(actor, authz.ReadCard, target).Err(); err != nil {
		return nil, err
	}
	return card, nil
}

// Create adds a card to a deck. Cards added to a default deck are
// system-owned and read-only from then on.
func (s *FlashcardService) Create(ctx context.Context, actor string, in FlashcardInput) (*models.Flashcard, error) {
	deckID := strings.TrimSpace(in.DeckID)
	if deckID == "" {
		return nil, common.NewValidationError("please provide question, answer and deckId", "deckId")
	}

	deck, err := s.repomanager.Repositories().Decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(actor, authz.CreateCard, authz.Target{Deck: deck}).Err(); err != nil {
		return nil, err
	}

	card := &models.Flashcard{
		DeckID:  deck.ID,
		Owner:   authz.CardOwnerFor(actor, deck),
		Details: strings.TrimSpace(in.Details),
		Images:  normalizeList(in.Images),
		Tags:    normalizeList(in.Tags),
	}

	var missing []string
	card.Question = strings.TrimSpace(in.Question)
	if card.Question == "" {
		missing = append(missing, "question")
	}
	card.Answer = strings.TrimSpace(in.Answer)
	if card.Answer == "" {
		missing = append(missing, "answer")
	}
	if len(missing) > 0 {
		return nil, common.NewValidationError("please provide question, answer and deckId", missing...)
	}

	card.Difficulty, err = parseDifficulty(in.Difficulty)
	if err != nil {
		return nil, err
	}

	created, err := s.coordinator.AddCard(ctx, card)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating card: %w", err)
	}

	s.logger.Info(ctx, "card created", "card_id", created.ID, "deck_id", deck.ID, "user_id", actor)
	return created, nil
}

// Update merges patch into a card the actor owns.
func (s *FlashcardService) Update(ctx context.Context, id, actor string, patch FlashcardPatch) (*models.Flashcard, error) {
	repos := s.repomanager.Repositories()

	card, err := repos.Flashcards.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := authz.Decide(actor, authz.UpdateCard, authz.Target{Card: card}).Err(); err != nil {
		return nil, err
	}

	if patch.Question != nil {
		q := strings.TrimSpace(*patch.Question)
		if q == "" {
			return nil, common.NewValidationError("question must not be empty", "question")
		}
		card.Question = q
	}
	if patch.Answer != nil {
		a := strings.TrimSpace(*patch.Answer)
		if a == "" {
			return nil, common.NewValidationError("answer must not be empty", "answer")
		}
		card.Answer = a
	}
	if patch.Details != nil {
		card.Details = strings.TrimSpace(*patch.Details)
	}
	if patch.Images != nil {
		card.Images = normalizeList(*patch.Images)
	}
	if patch.Tags != nil {
		card.Tags = normalizeList(*patch.Tags)
	}
	if patch.Difficulty != nil {
		d, err := parseDifficulty(*patch.Difficulty)
		if err != nil {
			return nil, err
		}
		card.Difficulty = d
	}

	updated, err := repos.Flashcards.Update(ctx, card)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("error updating card: %w", err)
	}
	return updated, nil
}

// Delete removes a card the actor owns and unlinks it from its deck.
func (s *FlashcardService) Delete(ctx context.Context, id, actor string) error {
	card, err := s.repomanager.Repositories().Flashcards.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := authz.Decide(actor, authz.DeleteCard, authz.Target{Card: card}).Err(); err != nil {
		return err
	}

	if err := s.coordinator.RemoveCard(ctx, card); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return err
		}
		return fmt.Errorf("error deleting card: %w", err)
	}
	return nil
}

func parseDifficulty(s string) (models.Difficulty, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return models.DifficultyMedium, nil
	}
	d := models.Difficulty(s)
	if !d.Valid() {
		return "", common.NewValidationError("difficulty must be one of easy, medium, hard", "difficulty")
	}
	return d, nil
}

// normalizeList trims entries, drops empty ones and duplicates, and keeps
// first-seen order. The result is never nil.
func normalizeList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
