package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"mesto-api/internal/domain"
	"mesto-api/internal/repository"
)

const (
	createCardsTable = `
CREATE TABLE IF NOT EXISTS cards (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	link TEXT NOT NULL,
	owner_id TEXT NOT NULL REFERENCES users(id),
	created_at DATETIME NOT NULL
);
`
	createCardLikesTable = `
CREATE TABLE IF NOT EXISTS card_likes (
	card_id TEXT NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
	user_id TEXT NOT NULL,
	PRIMARY KEY (card_id, user_id)
);
`
)

type CardRepository struct {
	db *sql.DB
}

func NewCardRepository(db *sql.DB) repository.CardRepository {
	return &CardRepository{db: db}
}

func (r *CardRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createCardsTable); err != nil {
		return fmt.Errorf("create cards table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createCardLikesTable); err != nil {
		return fmt.Errorf("create card likes table: %w", err)
	}
	return nil
}

func (r *CardRepository) Create(ctx context.Context, card *domain.Card) error {
	card.CreatedAt = time.Now().UTC()

	_, err := r.db.ExecContext(ctx, `
INSERT INTO cards (id, name, link, owner_id, created_at)
VALUES (?, ?, ?, ?, ?)`,
		card.ID,
		card.Name,
		card.Link,
		card.Owner,
		card.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert card: %w", err)
	}
	return nil
}

func (r *CardRepository) GetByID(ctx context.Context, id string) (*domain.Card, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT id, name, link, owner_id, created_at
FROM cards
WHERE id = ?`,
		id,
	)

	var card domain.Card
	if err := row.Scan(&card.ID, &card.Name, &card.Link, &card.Owner, &card.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrCardNotFound
		}
		return nil, fmt.Errorf("scan card: %w", err)
	}

	likes, err := r.likes(ctx, card.ID)
	if err != nil {
		return nil, err
	}
	card.Likes = likes
	return &card, nil
}

func (r *CardRepository) List(ctx context.Context) ([]domain.Card, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, link, owner_id, created_at
FROM cards
ORDER BY created_at DESC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	defer rows.Close()

	var cards []domain.Card
	for rows.Next() {
		var card domain.Card
		if err := rows.Scan(&card.ID, &card.Name, &card.Link, &card.Owner, &card.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		cards = append(cards, card)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range cards {
		likes, err := r.likes(ctx, cards[i].ID)
		if err != nil {
			return nil, err
		}
		cards[i].Likes = likes
	}
	return cards, nil
}

func (r *CardRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM cards WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete card rows affected: %w", err)
	}
	if affected == 0 {
		return repository.ErrCardNotFound
	}
	return nil
}

func (r *CardRepository) AddLike(ctx context.Context, cardID, userID string) error {
	if err := r.ensureCard(ctx, cardID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
INSERT INTO card_likes (card_id, user_id) VALUES (?, ?)
ON CONFLICT (card_id, user_id) DO NOTHING`,
		cardID, userID,
	)
	if err != nil {
		return fmt.Errorf("add like: %w", err)
	}
	return nil
}

func (r *CardRepository) RemoveLike(ctx context.Context, cardID, userID string) error {
	if err := r.ensureCard(ctx, cardID); err != nil {
		return err
	}
	_, err := r.db.ExecContext(ctx, `
DELETE FROM card_likes WHERE card_id = ? AND user_id = ?`,
		cardID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove like: %w", err)
	}
	return nil
}

func (r *CardRepository) ensureCard(ctx context.Context, cardID string) error {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM cards WHERE id = ?`, cardID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return repository.ErrCardNotFound
	}
	if err != nil {
		return fmt.Errorf("check card: %w", err)
	}
	return nil
}

func (r *CardRepository) likes(ctx context.Context, cardID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT user_id FROM card_likes WHERE card_id = ? ORDER BY user_id`,
		cardID,
	)
	if err != nil {
		return nil, fmt.Errorf("list likes: %w", err)
	}
	defer rows.Close()

	var likes []string
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return nil, fmt.Errorf("scan like: %w", err)
		}
		likes = append(likes, userID)
	}
	return likes, rows.Err()
}
