package rest

import (
	"time"

	"github.com/dmitrijs2005/flashdeck/internal/server/models"
	"github.com/dmitrijs2005/flashdeck/internal/server/services"
)

type userDTO struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserDTO(u *models.User) userDTO {
	return userDTO{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

// deckDTO renders a deck. Owner is null for default decks.
type deckDTO struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Owner       models.Ownership `json:"userId"`
	Type        models.DeckKind  `json:"type"`
	Flashcards  []string         `json:"flashcards"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

func toDeckDTO(d *models.Deck) deckDTO {
	ids := d.CardIDs
	if ids == nil {
		ids = []string{}
	}
	return deckDTO{
		ID:          d.ID,
		Name:        d.Name,
		Description: d.Description,
		Owner:       d.Owner,
		Type:        d.Kind(),
		Flashcards:  ids,
		CreatedAt:   d.CreatedAt,
		UpdatedAt:   d.UpdatedAt,
	}
}

func toDeckDTOs(decks []*models.Deck) []deckDTO {
	out := make([]deckDTO, 0, len(decks))
	for _, d := range decks {
		out = append(out, toDeckDTO(d))
	}
	return out
}

// deckDetailDTO is a deck with its cards expanded.
type deckDetailDTO struct {
	deckDTO
	Flashcards []flashcardDTO `json:"flashcards"`
}

func toDeckDetailDTO(d *services.DeckWithCards) deckDetailDTO {
	return deckDetailDTO{deckDTO: toDeckDTO(d.Deck), Flashcards: toFlashcardDTOs(d.Cards)}
}

type flashcardDTO struct {
	ID         string            `json:"id"`
	DeckID     string            `json:"deckId"`
	Owner      models.Ownership  `json:"userId"`
	Question   string            `json:"question"`
	Answer     string            `json:"answer"`
	Details    string            `json:"details"`
	Images     []string          `json:"images"`
	Difficulty models.Difficulty `json:"difficulty"`
	Tags       []string          `json:"tags"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
}

func toFlashcardDTO(c *models.Flashcard) flashcardDTO {
	return flashcardDTO{
		ID:         c.ID,
		DeckID:     c.DeckID,
		Owner:      c.Owner,
		Question:   c.Question,
		Answer:     c.Answer,
		Details:    c.Details,
		Images:     nonNil(c.Images),
		Difficulty: c.Difficulty,
		Tags:       nonNil(c.Tags),
		CreatedAt:  c.CreatedAt,
		UpdatedAt:  c.UpdatedAt,
	}
}

func toFlashcardDTOs(cards []*models.Flashcard) []flashcardDTO {
	out := make([]flashcardDTO, 0, len(cards))
	for _, c := range cards {
		out = append(out, toFlashcardDTO(c))
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type deckRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type deckPatchRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

type flashcardRequest struct {
	DeckID     string   `json:"deckId"`
	Question   string   `json:"question"`
	Answer     string   `json:"answer"`
	Details    string   `json:"details"`
	Images     []string `json:"images"`
	Difficulty string   `json:"difficulty"`
	Tags       []string `json:"tags"`
}

// flashcardPatchRequest is the body of PUT /flashcards/:id. Absent fields
// are kept; deckId is ignored.
type flashcardPatchRequest struct {
	Question   *string   `json:"question"`
	Answer     *string   `json:"answer"`
	Details    *string   `json:"details"`
	Images     *[]string `json:"images"`
	Difficulty *string   `json:"difficulty"`
	Tags       *[]string `json:"tags"`
}
