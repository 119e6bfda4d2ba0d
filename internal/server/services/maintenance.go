package services

import (
	"context"
	_ "embed"
	"errors"
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/logging"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/repositories/repomanager"
)

//go:embed seed/default_decks.yaml
var defaultDecksYAML []byte

// SeedDeck is one default deck definition.
type SeedDeck struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Cards       []SeedCard `yaml:"cards"`
}

type SeedCard struct {
	Question   string   `yaml:"question"`
	Answer     string   `yaml:"answer"`
	Details    string   `yaml:"details"`
	Difficulty string   `yaml:"difficulty"`
	Tags       []string `yaml:"tags"`
}

// ParseSeedDecks decodes a YAML list of deck definitions.
func ParseSeedDecks(data []byte) ([]SeedDeck, error) {
	var decks []SeedDeck
	if err := yaml.Unmarshal(data, &decks); err != nil {
		return nil, fmt.Errorf("error parsing seed decks: %w", err)
	}
	for _, d := range decks {
		if _, err := normalizeDeckName(d.Name); err != nil {
			return nil, fmt.Errorf("seed deck: %w", err)
		}
		for _, c := range d.Cards {
			if _, err := parseDifficulty(c.Difficulty); err != nil {
				return nil, fmt.Errorf("seed deck %q: %w", d.Name, err)
			}
		}
	}
	return decks, nil
}

// DefaultSeedDecks returns the built-in default decks.
func DefaultSeedDecks() []SeedDeck {
	decks, err := ParseSeedDecks(defaultDecksYAML)
	if err != nil {
		panic(err)
	}
	return decks
}

// DeckSummary names a deck and how many cards reference it.
type DeckSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Cards int    `json:"cards"`
}

// SeedReport lists the default decks that were created, or that already
// existed when seeding was refused.
type SeedReport struct {
	Decks []DeckSummary `json:"decks"`
}

// MaintenanceService runs operator tasks: seeding default decks and
// repairing deck/card links.
type MaintenanceService struct {
	repomanager repomanager.RepositoryManager
	coordinator *Coordinator
	logger      logging.Logger
}

func NewMaintenanceService(m repomanager.RepositoryManager, c *Coordinator, logger logging.Logger) *MaintenanceService {
	return &MaintenanceService{repomanager: m, coordinator: c, logger: logger.With("module", "maintenance")}
}

// Seed creates the given default decks with their cards. Seeding happens at
// most once: if any default deck exists it returns the existing decks with
// common.ErrorAlreadySeeded.
func (s *MaintenanceService) Seed(ctx context.Context, decks []SeedDeck) (*SeedReport, error) {
	type draft struct {
		deck  *models.Deck
		cards []*models.Flashcard
	}

	drafts := make([]draft, 0, len(decks))
	for _, sd := range decks {
		cards := make([]*models.Flashcard, 0, len(sd.Cards))
		for _, sc := range sd.Cards {
			difficulty, err := parseDifficulty(sc.Difficulty)
			if err != nil {
				return nil, err
			}
			cards = append(cards, &models.Flashcard{
				Owner:      models.SystemOwned(),
				Question:   sc.Question,
				Answer:     sc.Answer,
				Details:    sc.Details,
				Images:     []string{},
				Difficulty: difficulty,
				Tags:       normalizeList(sc.Tags),
			})
		}
		drafts = append(drafts, draft{
			deck:  &models.Deck{Name: sd.Name, Description: sd.Description, Owner: models.SystemOwned()},
			cards: cards,
		})
	}

	var report *SeedReport

	// The whole default set is created in one transaction.
	err := s.repomanager.WithTx(ctx, func(ctx context.Context, repos repomanager.Repositories) error {
		existing, err := repos.Decks.ListDefault(ctx)
		if err != nil {
			return fmt.Errorf("error listing default decks: %w", err)
		}

		if len(existing) > 0 {
			report = &SeedReport{Decks: make([]DeckSummary, 0, len(existing))}
			for _, d := range existing {
				cards, err := repos.Flashcards.ListByDeck(ctx, d.ID)
				if err != nil {
					return fmt.Errorf("error counting cards: %w", err)
				}
				report.Decks = append(report.Decks, DeckSummary{ID: d.ID, Name: d.Name, Cards: len(cards)})
			}
			return common.ErrorAlreadySeeded
		}

		report = &SeedReport{Decks: make([]DeckSummary, 0, len(drafts))}
		for _, d := range drafts {
			created, err := createDeckWithCards(ctx, repos, d.deck, d.cards)
			if err != nil {
				return fmt.Errorf("error creating deck %q: %w", d.deck.Name, err)
			}
			report.Decks = append(report.Decks, DeckSummary{ID: created.ID, Name: created.Name, Cards: len(d.cards)})
		}
		return nil
	})
	if errors.Is(err, common.ErrorAlreadySeeded) {
		s.logger.Warn(ctx, "default decks already exist, skipping seed", "decks", len(report.Decks))
		return report, common.ErrorAlreadySeeded
	}
	if err != nil {
		return nil, err
	}

	for _, d := range report.Decks {
		s.logger.Info(ctx, "default deck seeded", "deck", d.Name, "cards", d.Cards)
	}
	return report, nil
}

// Reconcile reports broken deck/card links and repairs them unless dryRun
// is set.
func (s *MaintenanceService) Reconcile(ctx context.Context, dryRun bool) (*ReconcileReport, error) {
	report, err := s.coordinator.Reconcile(ctx, dryRun)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "reconcile finished",
		"orphan_cards", len(report.OrphanCards),
		"dangling_links", len(report.DanglingLinks),
		"missing_links", len(report.MissingLinks),
		"ownership_mismatches", len(report.OwnershipMismatches),
		"repaired", report.Repaired,
		"dry_run", dryRun)
	return report, nil
}
