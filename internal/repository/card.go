package repository

import (
	"context"
	"errors"

	"mesto-api/internal/domain"
)

// ErrCardNotFound is returned when no card matches the lookup.
var ErrCardNotFound = errors.New("card not found")

// CardRepository defines persistence operations for Card entities. Likes are
// stored as a set of user ids per card; AddLike and RemoveLike are
// idempotent.
type CardRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, card *domain.Card) error
	GetByID(ctx context.Context, id string) (*domain.Card, error)
	List(ctx context.Context) ([]domain.Card, error)
	Delete(ctx context.Context, id string) error
	AddLike(ctx context.Context, cardID, userID string) error
	RemoveLike(ctx context.Context, cardID, userID string) error
}
