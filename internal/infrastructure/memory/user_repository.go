package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

type record struct {
	user    entity.User
	deleted bool
}

// UserRepository keeps users in process memory. Deleted users stay in the map with
// the deleted flag set, mirroring the soft delete of the postgres implementation.
type UserRepository struct {
	mu     sync.RWMutex
	nextID int64
	rows   map[int64]*record
}

func NewUserRepository() *UserRepository {
	return &UserRepository{rows: make(map[int64]*record)}
}

// emailTakenLocked reports whether an active user other than exceptID owns email.
func (r *UserRepository) emailTakenLocked(email valueobject.ValidEmailAddress, exceptID int64) bool {
	for id, rec := range r.rows {
		if !rec.deleted && id != exceptID && rec.user.Email == email {
			return true
		}
	}
	return false
}

func (r *UserRepository) CreateUser(ctx context.Context, email valueobject.ValidEmailAddress, hash valueobject.HashedPassword) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.emailTakenLocked(email, 0) {
		return 0, repository.ErrEmailTaken
	}
	r.nextID++
	id := r.nextID
	r.rows[id] = &record{user: entity.NewUser(id, email, hash)}
	return id, nil
}

func (r *UserRepository) FindUser(ctx context.Context, id int64) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.rows[id]
	if !ok || rec.deleted {
		return nil, repository.ErrNotFound
	}
	u := rec.user
	return &u, nil
}

func (r *UserRepository) FindUserByEmail(ctx context.Context, email valueobject.ValidEmailAddress) (*entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.rows {
		if !rec.deleted && rec.user.Email == email {
			u := rec.user
			return &u, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *UserRepository) ListUsers(ctx context.Context) ([]entity.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]entity.User, 0, len(r.rows))
	for _, rec := range r.rows {
		if !rec.deleted {
			out = append(out, rec.user)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *UserRepository) UpdateUser(ctx context.Context, u entity.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[u.ID]
	if !ok || rec.deleted {
		return repository.ErrNotFound
	}
	if r.emailTakenLocked(u.Email, u.ID) {
		return repository.ErrEmailTaken
	}
	rec.user = u
	return nil
}

func (r *UserRepository) DeleteUser(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.rows[id]
	if !ok || rec.deleted {
		return repository.ErrNotFound
	}
	rec.deleted = true
	return nil
}

// Ping only fails when ctx is done.
func (r *UserRepository) Ping(ctx context.Context) error { return ctx.Err() }

var _ repository.UserRepository = (*UserRepository)(nil)
