package router

import (
	"github.com/oksasatya/go-ddd-user-accounts/internal/container"
	handlers "github.com/oksasatya/go-ddd-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-accounts/internal/router/modules"
)

// InitModules builds the user store and service from the container and
// registers every module. Call once during startup, after the container is set.
func InitModules(r *Registry) error {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	store, err := container.NewUserStore()
	if err != nil {
		return err
	}
	svc, err := container.NewUserService(store)
	if err != nil {
		return err
	}

	r.Add("", modules.NewHealthModule(handlers.NewHealthHandler(store, logger)))
	r.Add("/v1", modules.NewUserModule(handlers.NewUserHandler(svc, logger), cfg.RateLimitPerMinute))
	if cfg.DebugMetricsEnabled {
		r.Add("/api", modules.NewDebugModule())
	}
	return nil
}
