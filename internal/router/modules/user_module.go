package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-ddd-user-accounts/internal/container"
	handlers "github.com/oksasatya/go-ddd-user-accounts/internal/interface/http"
	"github.com/oksasatya/go-ddd-user-accounts/internal/interface/middleware"
)

// UserModule wires the user handlers under <prefix>/user:
// POST /user, GET /user, GET /user/search, GET /user/:id, PUT /user/:id, DELETE /user/:id
type UserModule struct {
	Handler *handlers.UserHandler
	PerMin  int
}

func NewUserModule(h *handlers.UserHandler, perMinute int) *UserModule {
	return &UserModule{Handler: h, PerMin: perMinute}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	reads := middleware.RateLimit(rdb, m.PerMin, time.Minute, middleware.KeyByIP(), nil)
	// writes get a quarter of the read budget, per route
	writes := middleware.RateLimit(rdb, max(1, m.PerMin/4), time.Minute, middleware.KeyByIPAndPath(), nil)

	users := rg.Group("/user")
	{
		users.POST("", writes, m.Handler.Create)
		users.GET("", reads, m.Handler.List)
		users.GET("/search", reads, m.Handler.Search)
		users.GET("/:id", reads, m.Handler.Get)
		users.PUT("/:id", writes, m.Handler.Update)
		users.DELETE("/:id", writes, m.Handler.Delete)
	}
}
