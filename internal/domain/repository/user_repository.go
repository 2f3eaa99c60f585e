package repository

import (
	"context"
	"errors"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

var (
	ErrNotFound = errors.New("repository: user not found")
	// ErrEmailTaken is returned when a write would give two active users the same email.
	ErrEmailTaken     = errors.New("repository: email already taken")
	ErrCreationFailed = errors.New("repository: user creation failed")
	ErrUpdateFailed   = errors.New("repository: user update failed")
	ErrDeletionFailed = errors.New("repository: user deletion failed")
	ErrLookupFailed   = errors.New("repository: user lookup failed")
)

// UserRepository defines the interface for user-related database operations.
// Soft-deleted users are invisible to every method.
type UserRepository interface {
	CreateUser(ctx context.Context, email valueobject.ValidEmailAddress, hash valueobject.HashedPassword) (int64, error)
	FindUser(ctx context.Context, id int64) (*entity.User, error)
	FindUserByEmail(ctx context.Context, email valueobject.ValidEmailAddress) (*entity.User, error)
	// ListUsers returns active users ordered by id.
	ListUsers(ctx context.Context) ([]entity.User, error)
	// UpdateUser replaces the stored email and hash of the user with u.ID.
	UpdateUser(ctx context.Context, u entity.User) error
	// DeleteUser flags the user as deleted; the row is kept.
	DeleteUser(ctx context.Context, id int64) error
}
