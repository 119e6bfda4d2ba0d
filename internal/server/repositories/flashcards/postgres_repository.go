package flashcards

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/flashdeck/internal/common"
	"github.com/dmitrijs2005/flashdeck/internal/dbx"
	"github.com/dmitrijs2005/flashdeck/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const selectCards = `SELECT id, deck_id, owner_id, question, answer, details, images, difficulty, tags, created_at, updated_at
  FROM flashcards`

const orderCards = ` ORDER BY created_at, id`

func ownerArg(o models.Ownership) any {
	if id, ok := o.UserID(); ok {
		return id
	}
	return nil
}

// jsonList encodes a string list for a JSONB column, never as null.
func jsonList(v []string) (string, error) {
	if v == nil {
		v = []string{}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (r *PostgresRepository) Create(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {

	if card.ID == "" {
		card.ID = uuid.NewString()
	}

	images, err := jsonList(card.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	tags, err := jsonList(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query :=
		`INSERT INTO flashcards (id, deck_id, owner_id, question, answer, details, images, difficulty, tags)
         VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING created_at, updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		card.ID, card.DeckID, ownerArg(card.Owner), card.Question, card.Answer, card.Details,
		images, string(card.Difficulty), tags).Scan(&card.CreatedAt, &card.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return card, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Flashcard, error) {
	list, err := r.list(ctx, selectCards+" WHERE id = $1", id)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, err
	}
	if len(list) == 0 {
		return nil, common.ErrorNotFound
	}
	return list[0], nil
}

func (r *PostgresRepository) ListByDeck(ctx context.Context, deckID string) ([]*models.Flashcard, error) {
	return r.list(ctx, selectCards+" WHERE deck_id = $1"+orderCards, deckID)
}

func (r *PostgresRepository) ListByOwner(ctx context.Context, userID string) ([]*models.Flashcard, error) {
	return r.list(ctx, selectCards+" WHERE owner_id = $1"+orderCards, userID)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Flashcard, error) {
	return r.list(ctx, selectCards+orderCards)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Flashcard, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Flashcard, 0)

	for rows.Next() {
		var (
			card         models.Flashcard
			ownerID      sql.NullString
			images, tags []byte
			difficulty   string
		)
		if err := rows.Scan(&card.ID, &card.DeckID, &ownerID, &card.Question, &card.Answer, &card.Details,
			&images, &difficulty, &tags, &card.CreatedAt, &card.UpdatedAt); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if ownerID.Valid {
			card.Owner = models.OwnedBy(ownerID.String)
		}
		card.Difficulty = models.Difficulty(difficulty)
		if err := json.Unmarshal(images, &card.Images); err != nil {
			return nil, fmt.Errorf("db error: images of %s: %w", card.ID, err)
		}
		if err := json.Unmarshal(tags, &card.Tags); err != nil {
			return nil, fmt.Errorf("db error: tags of %s: %w", card.ID, err)
		}
		result = append(result, &card)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, card *models.Flashcard) (*models.Flashcard, error) {
	images, err := jsonList(card.Images)
	if err != nil {
		return nil, fmt.Errorf("encode images: %w", err)
	}
	tags, err := jsonList(card.Tags)
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}

	query :=
		`UPDATE flashcards
		 SET question = $2, answer = $3, details = $4, images = $5, difficulty = $6, tags = $7, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err = r.db.QueryRowContext(ctx, query,
		card.ID, card.Question, card.Answer, card.Details, images, string(card.Difficulty), tags).Scan(&card.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return card, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE id = $1`, id)
	if err != nil {
		if dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}

func (r *PostgresRepository) DeleteByDeck(ctx context.Context, deckID string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM flashcards WHERE deck_id = $1`, deckID)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
