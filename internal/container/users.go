package container

import (
	"context"
	"fmt"

	"github.com/oksasatya/go-ddd-user-accounts/config"
	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/repository"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/cache"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/events"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/memory"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/search"
)

// UserStore is a user repository that can report whether it is reachable.
type UserStore interface {
	repository.UserRepository
	Ping(ctx context.Context) error
}

// NewUserStore picks the repository for the configured storage driver.
func NewUserStore() (UserStore, error) {
	switch d := GetConfig().StorageDriver; d {
	case config.StorageMemory:
		return memory.NewUserRepository(), nil
	case config.StoragePostgres:
		if pgPool == nil {
			return nil, fmt.Errorf("container: storage driver %q needs a postgres pool", d)
		}
		return postgres.NewUserRepository(pgPool), nil
	default:
		return nil, fmt.Errorf("container: unknown storage driver %q", d)
	}
}

// NewUserService wires the optional cache, event publisher and search index
// from whichever clients are set.
func NewUserService(store repository.UserRepository) (*application.UserService, error) {
	c := GetConfig()
	opts := []application.Option{application.WithLogger(GetLogger())}
	if redisClient != nil {
		opts = append(opts, application.WithCache(cache.NewUserCache(redisClient, c.UserCacheTTL)))
	}
	if rabbitPub != nil {
		opts = append(opts, application.WithEvents(events.NewPublisher(rabbitPub)))
	}
	if esClient != nil {
		opts = append(opts, application.WithSearch(search.NewUserIndex(esClient, c.ESUsersIndex)))
	}
	return application.NewUserService(store, c.PasswordSalt, opts...)
}
