package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"mesto-api/internal/auth"
	"mesto-api/internal/domain"
	"mesto-api/internal/repository"
)

const (
	msgAuthError    = "authorization error"
	msgUserNotFound = "user with the given id not found"
	msgEmailTaken   = "user with this email already exists"
)

var (
	// permissive RFC-like pattern, same spirit as the legacy Joi rule
	emailPattern = regexp.MustCompile(`^[A-Za-z0-9]([A-Za-z0-9._%+-]*[A-Za-z0-9])?@([A-Za-z0-9-]+\.)+[A-Za-z]{2,6}$`)
	linkPattern  = regexp.MustCompile(`^https?://(www\.)?[A-Za-z0-9][^\s]*\.[^\s]{2,}$`)
)

// RegisterInput carries a sign-up payload. Optional profile fields fall back
// to the schema defaults.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	About    string
	Avatar   string
}

// UserService covers account lifecycle: registration with auto-login,
// credential verification, profile reads and self-updates.
type UserService interface {
	Register(ctx context.Context, in RegisterInput) (string, error)
	Login(ctx context.Context, email, password string) (string, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
	UpdateProfile(ctx context.Context, callerID, name, about string) (*domain.User, error)
	UpdateAvatar(ctx context.Context, callerID, avatar string) (*domain.User, error)
}

type userService struct {
	users  repository.UserRepository
	hasher *auth.Hasher
	tokens *auth.TokenManager
}

func NewUserService(users repository.UserRepository, hasher *auth.Hasher, tokens *auth.TokenManager) UserService {
	return &userService{users: users, hasher: hasher, tokens: tokens}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (string, error) {
	in.Email = strings.TrimSpace(in.Email)
	if in.Email == "" || !emailPattern.MatchString(in.Email) {
		return "", domain.E(domain.KindValidation, "invalid email")
	}
	if in.Password == "" {
		return "", domain.E(domain.KindValidation, "password is required")
	}

	name, err := profileField("name", in.Name, domain.DefaultName)
	if err != nil {
		return "", err
	}
	about, err := profileField("about", in.About, domain.DefaultAbout)
	if err != nil {
		return "", err
	}
	avatar := strings.TrimSpace(in.Avatar)
	if avatar == "" {
		avatar = domain.DefaultAvatar
	} else if !linkPattern.MatchString(avatar) {
		return "", domain.E(domain.KindValidation, "avatar must be an http(s) URL")
	}

	hash, err := s.hasher.Hash(ctx, in.Password)
	if err != nil {
		return "", err
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: hash,
		Name:         name,
		About:        about,
		Avatar:       avatar,
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailTaken) {
			return "", domain.E(domain.KindConflict, msgEmailTaken)
		}
		return "", err
	}

	return s.tokens.Issue(user.ID)
}

// Login verifies credentials and issues a token. An unknown email and a
// wrong password produce the exact same error so accounts cannot be
// enumerated.
func (s *userService) Login(ctx context.Context, email, password string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", domain.E(domain.KindUnauthorized, msgAuthError)
	}

	user, err := s.users.GetByEmailWithPassword(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", domain.E(domain.KindUnauthorized, msgAuthError)
		}
		return "", err
	}

	ok, err := s.hasher.Verify(ctx, password, user.PasswordHash)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", domain.E(domain.KindUnauthorized, msgAuthError)
	}

	return s.tokens.Issue(user.ID)
}

func (s *userService) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.E(domain.KindNotFound, msgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// UpdateProfile mutates the caller's own record only; there is no way to
// address another user regardless of payload content.
func (s *userService) UpdateProfile(ctx context.Context, callerID, name, about string) (*domain.User, error) {
	name, err := requiredProfileField("name", name)
	if err != nil {
		return nil, err
	}
	about, err = requiredProfileField("about", about)
	if err != nil {
		return nil, err
	}

	user, err := s.users.UpdateProfile(ctx, callerID, name, about)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.E(domain.KindNotFound, msgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateAvatar(ctx context.Context, callerID, avatar string) (*domain.User, error) {
	avatar = strings.TrimSpace(avatar)
	if !linkPattern.MatchString(avatar) {
		return nil, domain.E(domain.KindValidation, "avatar must be an http(s) URL")
	}

	user, err := s.users.UpdateAvatar(ctx, callerID, avatar)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, domain.E(domain.KindNotFound, msgUserNotFound)
		}
		return nil, err
	}
	return user, nil
}

func profileField(field, value, fallback string) (string, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return fallback, nil
	}
	return requiredProfileField(field, value)
}

func requiredProfileField(field, value string) (string, error) {
	value = strings.TrimSpace(value)
	if n := len([]rune(value)); n < 2 || n > 30 {
		return "", domain.E(domain.KindValidation, fmt.Sprintf("%s must be 2 to 30 characters", field))
	}
	return value, nil
}
