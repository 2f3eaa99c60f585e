package main

import (
	"context"
	"errors"
	"flag"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-accounts/config"
	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/internal/container"
	"github.com/oksasatya/go-ddd-user-accounts/internal/domain/valueobject"
	pginfra "github.com/oksasatya/go-ddd-user-accounts/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
)

// seed creates a demo user through UserService so the same validation and
// hashing apply as for API requests. Migrations must already have run.
func main() {
	email := flag.String("email", "demo@example.com", "email of the seeded user")
	password := flag.String("password", "password123", "password of the seeded user")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	cfg.StorageDriver = config.StoragePostgres
	logger := helpers.NewLogger(cfg.AppName+"-seed", cfg.Env)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{MaxConns: 2, MinConns: 1, MaxConnLife: time.Minute})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetPGPool(pool)
	if cfg.EventsEnabled {
		pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQUserEventsQueue)
		if err != nil {
			logger.Fatalf("failed to connect to rabbitmq: %v", err)
		}
		defer pub.Close()
		container.SetRabbitPub(pub)
	}

	store, err := container.NewUserStore()
	if err != nil {
		logger.Fatalf("user store: %v", err)
	}
	svc, err := container.NewUserService(store)
	if err != nil {
		logger.Fatalf("user service: %v", err)
	}

	validEmail, err := valueobject.ParseEmailAddress(*email)
	if err != nil {
		logger.Fatalf("email: %v", err)
	}
	validPassword, err := valueobject.ParsePassword(*password)
	if err != nil {
		logger.Fatalf("password: %v", err)
	}

	id, err := svc.CreateUser(ctx, application.NewCreateUserCommand(validEmail, validPassword))
	switch {
	case errors.Is(err, application.ErrEmailReserved):
		logger.WithField("email", validEmail.Address()).Info("user already seeded")
	case err != nil:
		logger.Fatalf("failed to seed user: %v", err)
	default:
		logger.WithFields(logrus.Fields{"id": id, "email": validEmail.Address()}).Info("seeded user")
	}
}
