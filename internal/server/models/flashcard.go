package models

import "time"

// Difficulty is the self-assessed difficulty of a flashcard.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// Flashcard belongs to exactly one deck for its whole life. Owner is
// system-owned exactly when the deck is a default deck.
type Flashcard struct {
	ID         string
	DeckID     string
	Owner      Ownership
	Question   string
	Answer     string
	Details    string
	Images     []string
	Difficulty Difficulty
	Tags       []string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
