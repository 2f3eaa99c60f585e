package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// counterRedis implements the calls the limiter makes.
type counterRedis struct {
	redis.Cmdable
	mu     sync.Mutex
	counts map[string]int64
	fail   bool
}

func (f *counterRedis) incr(keys []string) *redis.Cmd {
	if f.fail {
		return redis.NewCmdResult(nil, errors.New("redis down"))
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.counts == nil {
		f.counts = map[string]int64{}
	}
	f.counts[keys[0]]++
	return redis.NewCmdResult(f.counts[keys[0]], nil)
}

func (f *counterRedis) EvalSha(_ context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.incr(keys)
}

func (f *counterRedis) Eval(_ context.Context, _ string, keys []string, _ ...interface{}) *redis.Cmd {
	return f.incr(keys)
}

func (f *counterRedis) PTTL(context.Context, string) *redis.DurationCmd {
	return redis.NewDurationResult(1500*time.Millisecond, nil)
}

const testProxy = "203.0.113.9"

func newEngine(mw ...gin.HandlerFunc) *gin.Engine {
	return newEngineTrusting([]string{testProxy}, false, mw...)
}

func newEngineTrusting(proxies []string, cloudflare bool, mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if err := TrustProxies(r, proxies, cloudflare); err != nil {
		panic(err)
	}
	r.Use(RequestIDMiddleware(), RealIP())
	r.Use(mw...)
	r.GET("/v1/user", func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(RealIPKey))
	})
	return r
}

func get(r http.Handler, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/user", nil)
	req.RemoteAddr = testProxy + ":4000"
	for k, v := range header {
		req.Header.Set(k, v[0])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitBlocksAfterMax(t *testing.T) {
	rdb := &counterRedis{}
	r := newEngine(RateLimit(rdb, 2, time.Minute, KeyByIP(), nil))

	w1 := get(r, nil)
	w2 := get(r, nil)
	w3 := get(r, nil)

	assert.Equal(t, http.StatusOK, w1.Code)
	assert.Equal(t, "1", w1.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Equal(t, http.StatusTooManyRequests, w3.Code)
	assert.Equal(t, "0", w3.Header().Get("X-RateLimit-Remaining"))
	assert.Equal(t, "2", w3.Header().Get("Retry-After"))
	assert.Contains(t, rdb.counts, "rl:ip:203.0.113.9")
}

func TestRateLimitFailsOpen(t *testing.T) {
	r := newEngine(RateLimit(&counterRedis{fail: true}, 1, time.Minute, KeyByIP(), nil))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
}

func TestRateLimitDisabledWithoutRedis(t *testing.T) {
	r := newEngine(RateLimit(nil, 1, time.Minute, KeyByIP(), nil))

	assert.Equal(t, http.StatusOK, get(r, nil).Code)
	assert.Equal(t, http.StatusOK, get(r, nil).Code)
}

func TestAllowPrivateIPBypassesLimit(t *testing.T) {
	rdb := &counterRedis{}
	r := newEngine(RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	private := http.Header{"X-Forwarded-For": {"10.1.2.3"}}

	assert.Equal(t, http.StatusOK, get(r, private).Code)
	assert.Equal(t, http.StatusOK, get(r, private).Code)
	assert.Empty(t, rdb.counts)
}

func TestRealIPFromTrustedProxy(t *testing.T) {
	r := newEngine()

	assert.Equal(t, "192.0.2.1", get(r, http.Header{"X-Forwarded-For": {"192.0.2.1"}}).Body.String())
	assert.Equal(t, "192.0.2.1", get(r, http.Header{
		"CF-Connecting-IP": {"198.51.100.7"},
		"X-Forwarded-For":  {"192.0.2.1"},
	}).Body.String(), "cloudflare header ignored unless enabled")
	assert.Equal(t, testProxy, get(r, nil).Body.String())
}

func TestRealIPIgnoresHeadersFromUntrustedPeer(t *testing.T) {
	r := newEngineTrusting(nil, false)

	assert.Equal(t, testProxy, get(r, http.Header{"X-Forwarded-For": {"192.0.2.1"}}).Body.String())
	assert.Equal(t, testProxy, get(r, http.Header{"X-Real-IP": {"10.0.0.1"}}).Body.String())
}

func TestRealIPCloudflare(t *testing.T) {
	r := newEngineTrusting(nil, true)

	assert.Equal(t, "198.51.100.7", get(r, http.Header{"CF-Connecting-IP": {"198.51.100.7"}}).Body.String())
}

func TestSpoofedPrivateIPDoesNotBypassLimit(t *testing.T) {
	rdb := &counterRedis{}
	r := newEngineTrusting(nil, false, RateLimit(rdb, 1, time.Minute, KeyByIP(), AllowPrivateIP()))
	spoofed := http.Header{"X-Forwarded-For": {"10.1.2.3"}}

	assert.Equal(t, http.StatusOK, get(r, spoofed).Code)
	assert.Equal(t, http.StatusTooManyRequests, get(r, spoofed).Code)
	assert.Contains(t, rdb.counts, "rl:ip:"+testProxy)
}

func TestRequestID(t *testing.T) {
	r := newEngine()

	generated := get(r, nil).Header().Get(RequestIDHeader)
	_, err := uuid.Parse(generated)
	require.NoError(t, err)

	incoming := uuid.NewString()
	assert.Equal(t, incoming, get(r, http.Header{RequestIDHeader: {incoming}}).Header().Get(RequestIDHeader))
	assert.NotEqual(t, "not-a-uuid", get(r, http.Header{RequestIDHeader: {"not-a-uuid"}}).Header().Get(RequestIDHeader))
}

func TestAccessLog(t *testing.T) {
	logger, hook := test.NewNullLogger()
	r := newEngine(AccessLog(logger))

	get(r, nil)

	require.Len(t, hook.Entries, 1)
	e := hook.LastEntry()
	assert.Equal(t, logrus.InfoLevel, e.Level)
	assert.Equal(t, "/v1/user", e.Data["path"])
	assert.Equal(t, http.StatusOK, e.Data["status"])
}
