package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

// Querier is the subset of *pgxpool.Pool used by the repository.
type Querier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type UserRepository struct {
	db Querier
}

func NewUserRepository(db Querier) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) CreateUser(ctx context.Context, email valueobject.ValidEmailAddress, hash valueobject.HashedPassword) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `
		INSERT INTO users (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id
	`, email.Address(), hash.Hash()).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("%w: %v", repository.ErrEmailTaken, err)
		}
		return 0, fmt.Errorf("%w: %w", repository.ErrCreationFailed, err)
	}
	return id, nil
}

func (r *UserRepository) FindUser(ctx context.Context, id int64) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password
		FROM users
		WHERE id = $1 AND NOT is_deleted
	`, id)
	return scanUser(row)
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email valueobject.ValidEmailAddress) (*entity.User, error) {
	row := r.db.QueryRow(ctx, `
		SELECT id, email, hashed_password
		FROM users
		WHERE email = $1 AND NOT is_deleted
	`, email.Address())
	return scanUser(row)
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, email, hashed_password
		FROM users
		WHERE NOT is_deleted
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrLookupFailed, err)
	}
	defer rows.Close()

	users := make([]entity.User, 0)
	for rows.Next() {
		var u entity.User
		if err := rows.Scan(&u.ID, &u.Email, &u.HashedPassword); err != nil {
			return nil, fmt.Errorf("%w: %w", repository.ErrLookupFailed, err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", repository.ErrLookupFailed, err)
	}
	return users, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, u entity.User) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET email = $1, hashed_password = $2, updated_at = now()
		WHERE id = $3 AND NOT is_deleted
	`, u.Email.Address(), u.HashedPassword.Hash(), u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: %v", repository.ErrEmailTaken, err)
		}
		return fmt.Errorf("%w: %w", repository.ErrUpdateFailed, err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	res, err := r.db.Exec(ctx, `
		UPDATE users
		SET is_deleted = TRUE, updated_at = now()
		WHERE id = $1 AND NOT is_deleted
	`, id)
	if err != nil {
		return fmt.Errorf("%w: %w", repository.ErrDeletionFailed, err)
	}
	if res.RowsAffected() == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Ping reports whether the database answers; used by the health check.
func (r *UserRepository) Ping(ctx context.Context) error {
	var one int
	return r.db.QueryRow(ctx, `SELECT 1`).Scan(&one)
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.HashedPassword); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %w", repository.ErrLookupFailed, err)
	}
	return u, nil
}

var _ repository.UserRepository = (*UserRepository)(nil)
