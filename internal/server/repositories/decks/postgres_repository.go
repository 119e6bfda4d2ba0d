package decks

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

// selectDecks aggregates each deck's card set in insertion order.
const selectDecks = `SELECT d.id, d.name, d.description, d.owner_id, d.created_at, d.updated_at,
       COALESCE(json_agg(dc.card_id ORDER BY dc.added_at, dc.card_id) FILTER (WHERE dc.card_id IS NOT NULL), '[]'::json)
  FROM decks d
  LEFT JOIN deck_cards dc ON dc.deck_id = d.id
`

const groupDecks = ` GROUP BY d.id
 ORDER BY d.created_at, d.id`

func ownerArg(o models.Ownership) any {
	if id, ok := o.UserID(); ok {
		return id
	}
	return nil
}

func (r *PostgresRepository) Create(ctx context.Context, deck *models.Deck) (*models.Deck, error) {

	if deck.ID == "" {
		deck.ID = uuid.NewString()
	}

	query :=
		`INSERT INTO decks (id, name, description, owner_id)
         VALUES ($1, $2, $3, $4)
		 RETURNING created_at, updated_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		deck.ID, deck.Name, deck.Description, ownerArg(deck.Owner)).Scan(&deck.CreatedAt, &deck.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	deck.CardIDs = []string{}
	return deck, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Deck, error) {
	list, err := r.list(ctx, selectDecks+" WHERE d.id = $1"+groupDecks, id)
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

func (r *PostgresRepository) ListVisible(ctx context.Context, userID string) ([]*models.Deck, error) {
	return r.list(ctx, selectDecks+" WHERE d.owner_id IS NULL OR d.owner_id = $1"+groupDecks, userID)
}

func (r *PostgresRepository) ListDefault(ctx context.Context) ([]*models.Deck, error) {
	return r.list(ctx, selectDecks+" WHERE d.owner_id IS NULL"+groupDecks)
}

func (r *PostgresRepository) ListAll(ctx context.Context) ([]*models.Deck, error) {
	return r.list(ctx, selectDecks+groupDecks)
}

func (r *PostgresRepository) list(ctx context.Context, query string, args ...any) ([]*models.Deck, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	result := make([]*models.Deck, 0)

	for rows.Next() {
		var (
			deck    models.Deck
			ownerID sql.NullString
			cardIDs []byte
		)
		if err := rows.Scan(&deck.ID, &deck.Name, &deck.Description, &ownerID,
			&deck.CreatedAt, &deck.UpdatedAt, &cardIDs); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		if ownerID.Valid {
			deck.Owner = models.OwnedBy(ownerID.String)
		}
		deck.CardIDs = []string{}
		if err := json.Unmarshal(cardIDs, &deck.CardIDs); err != nil {
			return nil, fmt.Errorf("db error: card set of %s: %w", deck.ID, err)
		}
		result = append(result, &deck)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return result, nil
}

func (r *PostgresRepository) Update(ctx context.Context, deck *models.Deck) (*models.Deck, error) {
	query :=
		`UPDATE decks SET name = $2, description = $3, updated_at = now()
		 WHERE id = $1
		 RETURNING updated_at
		 `

	err := r.db.QueryRowContext(ctx, query, deck.ID, deck.Name, deck.Description).Scan(&deck.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidTextRepresentation(err) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return deck, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM decks WHERE id = $1`, id)
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

func (r *PostgresRepository) AddCard(ctx context.Context, deckID, cardID string) error {
	query :=
		`INSERT INTO deck_cards (deck_id, card_id)
		 VALUES ($1, $2)
		 ON CONFLICT (deck_id, card_id) DO NOTHING
		 `

	if _, err := r.db.ExecContext(ctx, query, deckID, cardID); err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidTextRepresentation(err) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) RemoveCard(ctx context.Context, deckID, cardID string) error {
	query := `DELETE FROM deck_cards WHERE deck_id = $1 AND card_id = $2`

	if _, err := r.db.ExecContext(ctx, query, deckID, cardID); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
