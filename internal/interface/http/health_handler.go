package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-user-accounts/pkg/response"
)

// Pinger is implemented by both user repositories.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	Store  Pinger
	Logger *logrus.Logger
}

func NewHealthHandler(store Pinger, logger *logrus.Logger) *HealthHandler {
	return &HealthHandler{Store: store, Logger: logger}
}

func (h *HealthHandler) Check(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()
	if err := h.Store.Ping(ctx); err != nil {
		h.Logger.WithError(err).Warn("health check failed")
		response.Error[any](c, http.StatusServiceUnavailable, "store unreachable", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"status": "ok"}, "healthy", nil)
}
