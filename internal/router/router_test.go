package router

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-ddd-user-accounts/config"
	"github.com/oksasatya/go-ddd-user-accounts/internal/container"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/validation"
)

func newTestEngine(t *testing.T, debug bool) *gin.Engine {
	t.Helper()
	t.Cleanup(container.Reset)
	container.Reset()

	logger := logrus.New()
	logger.SetOutput(io.Discard)
	container.SetLogger(logger)
	container.SetConfig(&config.Config{
		StorageDriver:       config.StorageMemory,
		PasswordSalt:        config.DefaultPasswordSalt,
		RateLimitPerMinute:  100,
		DebugMetricsEnabled: debug,
	})

	gin.SetMode(gin.TestMode)
	validation.Init()
	r := gin.New()
	reg := NewRegistry(r)
	require.NoError(t, InitModules(reg))
	reg.RegisterAll()
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRoutesAreMounted(t *testing.T) {
	r := newTestEngine(t, true)

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/healthz", "").Code)

	w := serve(r, http.MethodPost, "/v1/user", `{"email":"bill@microsoft.com","password":"password123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "/v1/user/1", w.Header().Get("Location"))

	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/v1/user/1", "").Code)

	w = serve(r, http.MethodGet, "/api/debug/vars", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "user_service_outcomes")
}

func TestDebugModuleIsOptional(t *testing.T) {
	r := newTestEngine(t, false)

	assert.Equal(t, http.StatusNotFound, serve(r, http.MethodGet, "/api/debug/vars", "").Code)
}

func TestInitModulesRejectsBadSalt(t *testing.T) {
	t.Cleanup(container.Reset)
	container.Reset()
	container.SetConfig(&config.Config{StorageDriver: config.StorageMemory, PasswordSalt: "short"})

	assert.Error(t, InitModules(NewRegistry(gin.New())))
}
