package sqlite

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"mesto-api/internal/domain"
	"mesto-api/internal/repository"
)

func newTestDB(t *testing.T) *UserRepository {
	t.Helper()

	db, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := NewUserRepository(db).(*UserRepository)
	require.NoError(t, repo.Init(context.Background()))
	return repo
}

func newTestUser(email string) *domain.User {
	return &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: "$2a$10$fakefakefakefakefakefake",
		Name:         domain.DefaultName,
		About:        domain.DefaultAbout,
		Avatar:       domain.DefaultAvatar,
	}
}

func TestUserRepository_CreateAndGet(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	user := newTestUser("a@b.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "a@b.com", got.Email)
	require.Empty(t, got.PasswordHash, "plain reads must not expose the hash")
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("a@b.com")))

	err := repo.Create(ctx, newTestUser("a@b.com"))
	require.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestUserRepository_GetByEmailWithPassword(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	user := newTestUser("a@b.com")
	require.NoError(t, repo.Create(ctx, user))

	got, err := repo.GetByEmailWithPassword(ctx, "a@b.com")
	require.NoError(t, err)
	require.Equal(t, user.PasswordHash, got.PasswordHash)

	_, err = repo.GetByEmailWithPassword(ctx, "missing@b.com")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_Updates(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	user := newTestUser("a@b.com")
	require.NoError(t, repo.Create(ctx, user))

	updated, err := repo.UpdateProfile(ctx, user.ID, "Marie", "Chemist")
	require.NoError(t, err)
	require.Equal(t, "Marie", updated.Name)
	require.Equal(t, "Chemist", updated.About)

	updated, err = repo.UpdateAvatar(ctx, user.ID, "https://example.com/a.png")
	require.NoError(t, err)
	require.Equal(t, "https://example.com/a.png", updated.Avatar)

	_, err = repo.UpdateProfile(ctx, "no-such-id", "x", "y")
	require.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestUserRepository_List(t *testing.T) {
	repo := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, repo.Create(ctx, newTestUser("a@b.com")))
	require.NoError(t, repo.Create(ctx, newTestUser("c@d.com")))

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
