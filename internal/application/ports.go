package application

import (
	"context"
	"time"

	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/entity"
)

// UserDTO is the external view of a user. It never carries password data.
type UserDTO struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func UserDTOFrom(u entity.User) UserDTO {
	return UserDTO{ID: u.ID, Email: u.Email.Address()}
}

// UserCache stores UserDTOs by id. Implementations may drop entries at any time.
//
// Every id has a generation that Hold and Invalidate advance. A reader takes the
// generation before it loads from the store and passes it to Set, which writes
// nothing if the generation moved or a hold is in place. That keeps a load that
// raced a write from caching the pre-write row.
type UserCache interface {
	Get(ctx context.Context, id int64) (UserDTO, bool, error)
	Generation(ctx context.Context, id int64) (int64, error)
	Set(ctx context.Context, dto UserDTO, gen int64) error
	// Hold drops the entry and blocks Set for id until Invalidate or the hold expires.
	Hold(ctx context.Context, id int64) error
	// Invalidate drops the entry and releases any hold.
	Invalidate(ctx context.Context, id int64) error
}

type UserEventType string

const (
	UserCreated UserEventType = "user.created"
	UserUpdated UserEventType = "user.updated"
	UserDeleted UserEventType = "user.deleted"
)

// UserEvent is published after a successful mutation.
type UserEvent struct {
	Type       UserEventType `json:"type"`
	UserID     int64         `json:"user_id"`
	Email      string        `json:"email,omitempty"`
	OccurredAt time.Time     `json:"occurred_at"`
}

type EventPublisher interface {
	Publish(ctx context.Context, evt UserEvent) error
}

// UserSearcher finds users by a free-text query over their email.
type UserSearcher interface {
	Search(ctx context.Context, query string, size int) ([]UserDTO, error)
}
