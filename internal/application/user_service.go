package application

import (
	"context"
	"errors"
	"expvar"
	"fmt"
	"io"
	"time"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
)

// outcomes counts service results per operation, exposed on /debug/vars.
var outcomes = expvar.NewMap("user_service_outcomes")

func countOutcome(op, outcome string) {
	outcomes.Add(op+"."+outcome, 1)
}

const sideEffectTimeout = 3 * time.Second

type UserService struct {
	repo   repo.UserRepository
	salt   valueobject.ValidPasswordSalt
	logger *logrus.Logger
	cache  UserCache
	events EventPublisher
	search UserSearcher
	now    func() time.Time
}

type Option func(*UserService)

func WithLogger(l *logrus.Logger) Option {
	return func(s *UserService) {
		if l != nil {
			s.logger = l
		}
	}
}

func WithCache(c UserCache) Option { return func(s *UserService) { s.cache = c } }

func WithEvents(p EventPublisher) Option { return func(s *UserService) { s.events = p } }

func WithSearch(q UserSearcher) Option { return func(s *UserService) { s.search = q } }

// NewUserService validates the process-wide salt once. Cache, events and search are
// optional. Their failures are logged, except a cache that cannot hold an id, which
// fails the update or delete before the store is touched.
func NewUserService(r repo.UserRepository, salt string, opts ...Option) (*UserService, error) {
	if r == nil {
		panic("application: nil user repository")
	}
	validSalt, err := valueobject.NewValidPasswordSalt(salt)
	if err != nil {
		return nil, err
	}
	discard := logrus.New()
	discard.SetOutput(io.Discard)

	s := &UserService{repo: r, salt: validSalt, logger: discard, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateUser returns the new user's id, ErrEmailReserved or ErrUserCreationFailed.
//
// The email lookup is only a pre-check: two concurrent creates can both pass it, and
// the repository's uniqueness constraint (repo.ErrEmailTaken) decides the loser.
func (s *UserService) CreateUser(ctx context.Context, cmd CreateUserCommand) (int64, error) {
	existing, err := s.repo.FindUserByEmail(ctx, cmd.EmailAddress)
	switch {
	case err == nil && existing != nil:
		countOutcome("create_user", "email_reserved")
		return 0, ErrEmailReserved
	case err != nil && !errors.Is(err, repo.ErrNotFound):
		s.logger.WithError(err).Error("create user: email lookup failed")
		countOutcome("create_user", "failed")
		return 0, fmt.Errorf("%w: %w", ErrUserCreationFailed, err)
	}

	hash := valueobject.NewHashedPassword(cmd.Password, s.salt)
	id, err := s.repo.CreateUser(ctx, cmd.EmailAddress, hash)
	if err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			countOutcome("create_user", "email_reserved")
			return 0, ErrEmailReserved
		}
		s.logger.WithError(err).Error("create user: persist failed")
		countOutcome("create_user", "failed")
		return 0, fmt.Errorf("%w: %w", ErrUserCreationFailed, err)
	}

	countOutcome("create_user", "success")
	s.logger.WithField("user_id", id).Info("user created")
	s.publish(ctx, UserEvent{Type: UserCreated, UserID: id, Email: cmd.EmailAddress.Address()})
	return id, nil
}

// FindUser returns the user's DTO, ErrUserNotFound or ErrLookupFailed.
func (s *UserService) FindUser(ctx context.Context, id int64) (UserDTO, error) {
	gen, cacheable := int64(0), false
	if s.cache != nil {
		dto, ok, err := s.cache.Get(ctx, id)
		switch {
		case err != nil:
			s.logger.WithError(err).WithField("user_id", id).Warn("user cache get failed")
		case ok:
			countOutcome("find_user", "cache_hit")
			return dto, nil
		default:
			if gen, err = s.cache.Generation(ctx, id); err != nil {
				s.logger.WithError(err).WithField("user_id", id).Warn("user cache generation failed")
			} else {
				cacheable = true
			}
		}
	}

	u, err := s.repo.FindUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			countOutcome("find_user", "not_found")
			return UserDTO{}, ErrUserNotFound
		}
		s.logger.WithError(err).WithField("user_id", id).Error("find user failed")
		countOutcome("find_user", "failed")
		return UserDTO{}, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	dto := UserDTOFrom(*u)
	if cacheable {
		if err := s.cache.Set(ctx, dto, gen); err != nil {
			s.logger.WithError(err).WithField("user_id", id).Warn("user cache set failed")
		}
	}
	countOutcome("find_user", "success")
	return dto, nil
}

// ListUsers returns every active user in repository order, or ErrLookupFailed.
func (s *UserService) ListUsers(ctx context.Context) ([]UserDTO, error) {
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		s.logger.WithError(err).Error("list users failed")
		countOutcome("list_users", "failed")
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}
	out := make([]UserDTO, 0, len(users))
	for _, u := range users {
		out = append(out, UserDTOFrom(u))
	}
	countOutcome("list_users", "success")
	return out, nil
}

// UpdateUser returns nil, ErrUserNotFound, ErrEmailReserved or ErrUserUpdateFailed.
// Keeping a user's own current email is not a conflict.
func (s *UserService) UpdateUser(ctx context.Context, cmd UpdateUserCommand) error {
	current, err := s.repo.FindUser(ctx, cmd.ID())
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			countOutcome("update_user", "not_found")
			return ErrUserNotFound
		}
		s.logger.WithError(err).WithField("user_id", cmd.ID()).Error("update user: lookup failed")
		countOutcome("update_user", "failed")
		return fmt.Errorf("%w: %w", ErrUserUpdateFailed, err)
	}

	updated := *current
	if email, ok := cmd.EmailAddress(); ok {
		owner, err := s.repo.FindUserByEmail(ctx, email)
		switch {
		case err == nil && owner != nil && owner.ID != updated.ID:
			countOutcome("update_user", "email_reserved")
			return ErrEmailReserved
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			s.logger.WithError(err).WithField("user_id", cmd.ID()).Error("update user: email lookup failed")
			countOutcome("update_user", "failed")
			return fmt.Errorf("%w: %w", ErrUserUpdateFailed, err)
		}
		updated = updated.WithEmail(email)
	}
	if pw, ok := cmd.Password(); ok {
		updated = updated.WithHashedPassword(valueobject.NewHashedPassword(pw, s.salt))
	}

	if err := s.hold(ctx, updated.ID); err != nil {
		countOutcome("update_user", "failed")
		return fmt.Errorf("%w: %w", ErrUserUpdateFailed, err)
	}
	defer s.invalidate(ctx, updated.ID)

	if err := s.repo.UpdateUser(ctx, updated); err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			countOutcome("update_user", "not_found")
			return ErrUserNotFound
		case errors.Is(err, repo.ErrEmailTaken):
			countOutcome("update_user", "email_reserved")
			return ErrEmailReserved
		}
		s.logger.WithError(err).WithField("user_id", cmd.ID()).Error("update user: persist failed")
		countOutcome("update_user", "failed")
		return fmt.Errorf("%w: %w", ErrUserUpdateFailed, err)
	}

	countOutcome("update_user", "success")
	s.publish(ctx, UserEvent{Type: UserUpdated, UserID: updated.ID, Email: updated.Email.Address()})
	return nil
}

// DeleteUser soft-deletes the user. Returns nil, ErrUserNotFound or ErrUserDeletionFailed.
func (s *UserService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.hold(ctx, id); err != nil {
		countOutcome("delete_user", "failed")
		return fmt.Errorf("%w: %w", ErrUserDeletionFailed, err)
	}
	defer s.invalidate(ctx, id)

	if err := s.repo.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			countOutcome("delete_user", "not_found")
			return ErrUserNotFound
		}
		s.logger.WithError(err).WithField("user_id", id).Error("delete user failed")
		countOutcome("delete_user", "failed")
		return fmt.Errorf("%w: %w", ErrUserDeletionFailed, err)
	}

	countOutcome("delete_user", "success")
	s.publish(ctx, UserEvent{Type: UserDeleted, UserID: id})
	return nil
}

// SearchUsers queries the search index and resolves every hit through the
// repository, so users deleted since they were indexed are dropped and emails
// are current. Without an index it returns an empty list.
func (s *UserService) SearchUsers(ctx context.Context, q string, size int) ([]UserDTO, error) {
	if s.search == nil {
		return []UserDTO{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	hits, err := s.search.Search(ctx, q, size)
	if err != nil {
		s.logger.WithError(err).WithField("query", q).Warn("search users failed")
		return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
	}

	res := make([]UserDTO, 0, len(hits))
	for _, hit := range hits {
		u, err := s.repo.FindUser(ctx, hit.ID)
		switch {
		case errors.Is(err, repo.ErrNotFound):
			s.logger.WithField("user_id", hit.ID).Debug("search hit no longer resolves")
			continue
		case err != nil:
			s.logger.WithError(err).WithField("user_id", hit.ID).Error("search users: lookup failed")
			return nil, fmt.Errorf("%w: %w", ErrLookupFailed, err)
		}
		res = append(res, UserDTOFrom(*u))
	}
	return res, nil
}

// hold must succeed before a write reaches the store; otherwise a cached copy
// of the old row could outlive the write.
func (s *UserService) hold(ctx context.Context, id int64) error {
	if s.cache == nil {
		return nil
	}
	c, cancel := context.WithTimeout(ctx, sideEffectTimeout)
	defer cancel()
	if err := s.cache.Hold(c, id); err != nil {
		s.logger.WithError(err).WithField("user_id", id).Error("user cache hold failed")
		return err
	}
	return nil
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.cache.Invalidate(c, id); err != nil {
		s.logger.WithError(err).WithField("user_id", id).Warn("user cache invalidate failed, entry stays held until the hold expires")
	}
}

func (s *UserService) publish(ctx context.Context, evt UserEvent) {
	if s.events == nil {
		return
	}
	evt.OccurredAt = s.now().UTC()
	c, cancel := context.WithTimeout(context.WithoutCancel(ctx), sideEffectTimeout)
	defer cancel()
	if err := s.events.Publish(c, evt); err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{"user_id": evt.UserID, "type": evt.Type}).Warn("publish user event failed")
	}
}
