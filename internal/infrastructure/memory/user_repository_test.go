package memory

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

func mustEmail(t *testing.T, raw string) valueobject.ValidEmailAddress {
	t.Helper()
	e, err := valueobject.ParseEmailAddress(raw)
	require.NoError(t, err)
	return e
}

func mustHash(t *testing.T, raw string) valueobject.HashedPassword {
	t.Helper()
	pw, err := valueobject.ParsePassword(raw)
	require.NoError(t, err)
	salt, err := valueobject.NewValidPasswordSalt("12345678901235467890123456789012")
	require.NoError(t, err)
	return valueobject.NewHashedPassword(pw, salt)
}

func TestCreateAndFind(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	id, err := repo.CreateUser(ctx, mustEmail(t, "bill@microsoft.com"), mustHash(t, "password123"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	u, err := repo.FindUser(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "bill@microsoft.com", u.Email.Address())

	byEmail, err := repo.FindUserByEmail(ctx, mustEmail(t, "bill@microsoft.com"))
	require.NoError(t, err)
	assert.Equal(t, id, byEmail.ID)

	_, err = repo.FindUser(ctx, 99)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.FindUserByEmail(ctx, mustEmail(t, "nobody@example.com"))
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCreateRejectsActiveDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	email := mustEmail(t, "bill@microsoft.com")

	id, err := repo.CreateUser(ctx, email, mustHash(t, "password123"))
	require.NoError(t, err)

	_, err = repo.CreateUser(ctx, email, mustHash(t, "password123"))
	assert.ErrorIs(t, err, repository.ErrEmailTaken)

	require.NoError(t, repo.DeleteUser(ctx, id))
	second, err := repo.CreateUser(ctx, email, mustHash(t, "password123"))
	require.NoError(t, err)
	assert.NotEqual(t, id, second)
}

func TestSoftDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	a, err := repo.CreateUser(ctx, mustEmail(t, "a@example.com"), mustHash(t, "password123"))
	require.NoError(t, err)
	b, err := repo.CreateUser(ctx, mustEmail(t, "b@example.com"), mustHash(t, "password123"))
	require.NoError(t, err)

	require.NoError(t, repo.DeleteUser(ctx, a))

	_, err = repo.FindUser(ctx, a)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	_, err = repo.FindUserByEmail(ctx, mustEmail(t, "a@example.com"))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, b, users[0].ID)

	assert.ErrorIs(t, repo.DeleteUser(ctx, a), repository.ErrNotFound)
	assert.Len(t, repo.rows, 2)
}

func TestUpdateUser(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	a, err := repo.CreateUser(ctx, mustEmail(t, "a@example.com"), mustHash(t, "password123"))
	require.NoError(t, err)
	_, err = repo.CreateUser(ctx, mustEmail(t, "b@example.com"), mustHash(t, "password123"))
	require.NoError(t, err)

	u, err := repo.FindUser(ctx, a)
	require.NoError(t, err)

	assert.ErrorIs(t, repo.UpdateUser(ctx, u.WithEmail(mustEmail(t, "b@example.com"))), repository.ErrEmailTaken)
	require.NoError(t, repo.UpdateUser(ctx, u.WithEmail(mustEmail(t, "c@example.com"))))

	got, err := repo.FindUser(ctx, a)
	require.NoError(t, err)
	assert.Equal(t, "c@example.com", got.Email.Address())

	missing := *u
	missing.ID = 42
	assert.ErrorIs(t, repo.UpdateUser(ctx, missing), repository.ErrNotFound)
}

func TestListUsersOrderedByID(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	for _, raw := range []string{"a@x.io", "b@x.io", "c@x.io", "d@x.io"} {
		_, err := repo.CreateUser(ctx, mustEmail(t, raw), mustHash(t, "password123"))
		require.NoError(t, err)
	}

	users, err := repo.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 4)
	for i, u := range users {
		assert.Equal(t, int64(i+1), u.ID)
	}
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	repo := NewUserRepository()

	_, err := repo.CreateUser(ctx, mustEmail(t, "a@x.io"), mustHash(t, "password123"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, repo.rows)
}

func TestConcurrentCreatesKeepEmailUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()
	email := mustEmail(t, "race@example.com")
	hash := mustHash(t, "password123")

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := repo.CreateUser(ctx, email, hash); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}
