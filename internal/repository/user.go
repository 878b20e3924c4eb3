package repository

import (
	"context"
	"errors"

	"mesto-api/internal/domain"
)

var (
	// ErrEmailTaken is returned when the unique email index rejects a create.
	ErrEmailTaken = errors.New("email already taken")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("user not found")
)

// UserRepository defines persistence operations for User entities. Reads
// never populate PasswordHash except GetByEmailWithPassword, which exists
// only for the login path.
type UserRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmailWithPassword(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, id, name, about string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, id, avatar string) (*domain.User, error)
}
