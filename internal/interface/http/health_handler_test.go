package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func newHealthRouter(p Pinger) (*gin.Engine, *test.Hook) {
	gin.SetMode(gin.TestMode)
	logger, hook := test.NewNullLogger()
	r := gin.New()
	r.GET("/healthz", NewHealthHandler(p, logger).Check)
	return r, hook
}

func TestHealthCheckOK(t *testing.T) {
	r, hook := newHealthRouter(pingerFunc(func(ctx context.Context) error {
		_, hasDeadline := ctx.Deadline()
		assert.True(t, hasDeadline)
		return nil
	}))

	w, env := do(t, r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok"}`, string(env.Data))
	assert.Empty(t, hook.Entries)
}

func TestHealthCheckStoreDown(t *testing.T) {
	r, hook := newHealthRouter(pingerFunc(func(context.Context) error {
		return errors.New("dial tcp: connection refused")
	}))

	w, env := do(t, r, http.MethodGet, "/healthz", "")

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.False(t, env.Success)
	assert.Equal(t, "store unreachable", env.Message)
	require.Len(t, hook.Entries, 1)
	assert.Contains(t, hook.LastEntry().Message, "health check failed")
}
