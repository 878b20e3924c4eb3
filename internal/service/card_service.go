package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"mesto-api/internal/domain"
	"mesto-api/internal/repository"
)

const (
	msgCardNotFound  = "card with the given id not found"
	msgNotCardOwner  = "cannot delete another user's card"
	msgBadCardFields = "invalid card data"
)

// CardService covers card CRUD and likes. Any authenticated user may create
// or like a card; only the owner may delete one.
type CardService interface {
	Create(ctx context.Context, ownerID, name, link string) (*domain.Card, error)
	List(ctx context.Context) ([]domain.Card, error)
	Delete(ctx context.Context, callerID, cardID string) (*domain.Card, error)
	Like(ctx context.Context, callerID, cardID string) (*domain.Card, error)
	Unlike(ctx context.Context, callerID, cardID string) (*domain.Card, error)
}

type cardService struct {
	cards repository.CardRepository
}

func NewCardService(cards repository.CardRepository) CardService {
	return &cardService{cards: cards}
}

func (s *cardService) Create(ctx context.Context, ownerID, name, link string) (*domain.Card, error) {
	name, err := requiredProfileField("name", name)
	if err != nil {
		return nil, domain.E(domain.KindValidation, msgBadCardFields)
	}
	if !linkPattern.MatchString(link) {
		return nil, domain.E(domain.KindValidation, msgBadCardFields)
	}

	card := &domain.Card{
		ID:    uuid.NewString(),
		Name:  name,
		Link:  link,
		Owner: ownerID,
	}
	if err := s.cards.Create(ctx, card); err != nil {
		return nil, err
	}
	return card, nil
}

func (s *cardService) List(ctx context.Context) ([]domain.Card, error) {
	return s.cards.List(ctx)
}

// Delete enforces the ownership guard: the card must belong to callerID.
func (s *cardService) Delete(ctx context.Context, callerID, cardID string) (*domain.Card, error) {
	card, err := s.get(ctx, cardID)
	if err != nil {
		return nil, err
	}
	if card.Owner != callerID {
		return nil, domain.E(domain.KindForbidden, msgNotCardOwner)
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return nil, s.translate(err)
	}
	return card, nil
}

func (s *cardService) Like(ctx context.Context, callerID, cardID string) (*domain.Card, error) {
	if err := s.cards.AddLike(ctx, cardID, callerID); err != nil {
		return nil, s.translate(err)
	}
	return s.get(ctx, cardID)
}

func (s *cardService) Unlike(ctx context.Context, callerID, cardID string) (*domain.Card, error) {
	if err := s.cards.RemoveLike(ctx, cardID, callerID); err != nil {
		return nil, s.translate(err)
	}
	return s.get(ctx, cardID)
}

func (s *cardService) get(ctx context.Context, cardID string) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, s.translate(err)
	}
	return card, nil
}

func (s *cardService) translate(err error) error {
	if errors.Is(err, repository.ErrCardNotFound) {
		return domain.E(domain.KindNotFound, msgCardNotFound)
	}
	return err
}
