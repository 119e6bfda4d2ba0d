package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/kvx"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

// linkMachine drives random deck and card operations from several actors
// and checks after every step that deck card sets, card deck references and
// card ownership agree.
type linkMachine struct {
	e      *testEnv
	actors []string
	decks  []string
	cards  []string
}

func (m *linkMachine) pick(t *rapid.T, ids []string, label string) string {
	if len(ids) == 0 || rapid.Bool().Draw(t, label+"-missing") {
		return "missing-" + label
	}
	return rapid.SampledFrom(ids).Draw(t, label)
}

func (m *linkMachine) actor(t *rapid.T) string {
	return rapid.SampledFrom(m.actors).Draw(t, "actor")
}

// allowedErr reports whether err is one of the outcomes a request may
// legitimately end with.
func allowedErr(err error) bool {
	for _, target := range []error{
		common.ErrorNotFound,
		common.ErrorForbidden,
		common.ErrorImmutableDefault,
		common.ErrorValidation,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func (m *linkMachine) check(t *rapid.T, err error) {
	if err != nil && !allowedErr(err) {
		t.Fatalf("unexpected error: %v", err)
	}
}

func (m *linkMachine) createDeck(t *rapid.T) {
	name := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "name")
	deck, err := m.e.decks.Create(context.Background(), m.actor(t), DeckInput{Name: name})
	m.check(t, err)
	if err == nil {
		m.decks = append(m.decks, deck.ID)
	}
}

func (m *linkMachine) createDefaultDeck(t *rapid.T) {
	deck, err := m.e.coord.CreateDeckWithCards(context.Background(),
		&models.Deck{Name: "default", Owner: models.SystemOwned()}, nil)
	require.NoError(t, err)
	m.decks = append(m.decks, deck.ID)
}

func (m *linkMachine) createCard(t *rapid.T) {
	in := FlashcardInput{
		DeckID:   m.pick(t, m.decks, "deck"),
		Question: rapid.SampledFrom([]string{"q", "", "why?"}).Draw(t, "question"),
		Answer:   "a",
	}
	card, err := m.e.cards.Create(context.Background(), m.actor(t), in)
	m.check(t, err)
	if err == nil {
		m.cards = append(m.cards, card.ID)
	}
}

func (m *linkMachine) updateCard(t *rapid.T) {
	answer := rapid.SampledFrom([]string{"b", " "}).Draw(t, "answer")
	_, err := m.e.cards.Update(context.Background(), m.pick(t, m.cards, "card"), m.actor(t), FlashcardPatch{Answer: &answer})
	m.check(t, err)
}

func (m *linkMachine) deleteCard(t *rapid.T) {
	m.check(t, m.e.cards.Delete(context.Background(), m.pick(t, m.cards, "card"), m.actor(t)))
}

func (m *linkMachine) updateDeck(t *rapid.T) {
	name := rapid.StringMatching(`[a-z]{0,8}`).Draw(t, "name")
	_, err := m.e.decks.Update(context.Background(), m.pick(t, m.decks, "deck"), m.actor(t), DeckPatch{Name: &name})
	m.check(t, err)
}

func (m *linkMachine) deleteDeck(t *rapid.T) {
	m.check(t, m.e.decks.Delete(context.Background(), m.pick(t, m.decks, "deck"), m.actor(t)))
}

func (m *linkMachine) invariants(t *rapid.T) {
	ctx := context.Background()
	repos := m.e.m.Repositories()

	decks, err := repos.Decks.ListAll(ctx)
	require.NoError(t, err)
	cards, err := repos.Flashcards.ListAll(ctx)
	require.NoError(t, err)

	deckByID := map[string]*models.Deck{}
	for _, d := range decks {
		deckByID[d.ID] = d
	}
	cardByID := map[string]*models.Flashcard{}
	for _, c := range cards {
		cardByID[c.ID] = c
	}

	for _, c := range cards {
		d, ok := deckByID[c.DeckID]
		if !ok {
			t.Fatalf("card %s references missing deck %s", c.ID, c.DeckID)
		}
		if !d.HasCard(c.ID) {
			t.Fatalf("card %s missing from deck %s card set", c.ID, d.ID)
		}
		if d.Owner.IsSystem() {
			if !c.Owner.IsSystem() {
				t.Fatalf("card %s in default deck %s is user-owned", c.ID, d.ID)
			}
		} else if c.Owner != d.Owner {
			t.Fatalf("card %s owner differs from deck %s owner", c.ID, d.ID)
		}
	}

	for _, d := range decks {
		seen := map[string]bool{}
		for _, id := range d.CardIDs {
			if seen[id] {
				t.Fatalf("deck %s lists card %s twice", d.ID, id)
			}
			seen[id] = true
			c, ok := cardByID[id]
			if !ok || c.DeckID != d.ID {
				t.Fatalf("deck %s lists card %s that does not point back", d.ID, id)
			}
		}
	}

	report, err := m.e.coord.Reconcile(ctx, true)
	require.NoError(t, err)
	if !report.Clean() || len(report.OwnershipMismatches) > 0 {
		t.Fatalf("reconcile found problems: %+v", report)
	}
}

func TestLinksStayConsistent(t *testing.T) {
	db, err := kvx.Open("")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	rapid.Check(t, func(t *rapid.T) {
		if err := db.DropAll(); err != nil {
			t.Fatalf("drop all: %v", err)
		}
		m := &linkMachine{e: newEnvFromDB(db), actors: []string{"alice", "bob", "carol"}}

		t.Repeat(map[string]func(*rapid.T){
			"createDeck":        m.createDeck,
			"createDefaultDeck": m.createDefaultDeck,
			"createCard":        m.createCard,
			"updateCard":        m.updateCard,
			"deleteCard":        m.deleteCard,
			"updateDeck":        m.updateDeck,
			"deleteDeck":        m.deleteDeck,
			"":                  m.invariants,
		})
	})
}
