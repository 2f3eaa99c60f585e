package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-ddd-user-accounts/internal/application"
	"github.com/oksasatya/go-ddd-user-accounts/pkg/helpers"
)

const (
	// HoldTTL bounds how long a write in flight blocks fills for its id.
	HoldTTL = 30 * time.Second
	// generations outlive any read that could still be in flight
	generationTTL = 24 * time.Hour
)

// UserCache keeps UserDTOs in redis under user:dto:<id>, with the fill guard in
// user:gen:<id> and user:hold:<id>.
type UserCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewUserCache(rdb redis.Cmdable, ttl time.Duration) *UserCache {
	return &UserCache{rdb: rdb, ttl: ttl}
}

func userKey(id int64) string {
	return "user:dto:" + strconv.FormatInt(id, 10)
}

func genKey(id int64) string {
	return "user:gen:" + strconv.FormatInt(id, 10)
}

func holdKey(id int64) string {
	return "user:hold:" + strconv.FormatInt(id, 10)
}

func keys(id int64) []string {
	return []string{userKey(id), genKey(id), holdKey(id)}
}

// KEYS: dto, gen, hold. ARGV: expected gen, payload, ttl ms (0 = no expiry).
var setScript = redis.NewScript(`
local gen = redis.call("GET", KEYS[2]) or "0"
if gen ~= ARGV[1] or redis.call("EXISTS", KEYS[3]) == 1 then
  return 0
end
if tonumber(ARGV[3]) > 0 then
  redis.call("SET", KEYS[1], ARGV[2], "PX", ARGV[3])
else
  redis.call("SET", KEYS[1], ARGV[2])
end
return 1
`)

// KEYS: dto, gen, hold. ARGV: gen ttl ms, hold ttl ms (0 = release).
var bumpScript = redis.NewScript(`
redis.call("INCR", KEYS[2])
redis.call("PEXPIRE", KEYS[2], ARGV[1])
if tonumber(ARGV[2]) > 0 then
  redis.call("SET", KEYS[3], "1", "PX", ARGV[2])
else
  redis.call("DEL", KEYS[3])
end
redis.call("DEL", KEYS[1])
return 1
`)

func (c *UserCache) Get(ctx context.Context, id int64) (application.UserDTO, bool, error) {
	var dto application.UserDTO
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, userKey(id), &dto)
	if err != nil || !ok {
		return application.UserDTO{}, false, err
	}
	return dto, true, nil
}

func (c *UserCache) Generation(ctx context.Context, id int64) (int64, error) {
	gen, err := c.rdb.Get(ctx, genKey(id)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return gen, err
}

// Set is a no-op when gen is stale or the id is held.
func (c *UserCache) Set(ctx context.Context, dto application.UserDTO, gen int64) error {
	b, err := json.Marshal(dto)
	if err != nil {
		return err
	}
	return setScript.Run(ctx, c.rdb, keys(dto.ID), gen, b, c.ttl.Milliseconds()).Err()
}

func (c *UserCache) Hold(ctx context.Context, id int64) error {
	return bumpScript.Run(ctx, c.rdb, keys(id), generationTTL.Milliseconds(), HoldTTL.Milliseconds()).Err()
}

func (c *UserCache) Invalidate(ctx context.Context, id int64) error {
	return bumpScript.Run(ctx, c.rdb, keys(id), generationTTL.Milliseconds(), 0).Err()
}

var _ application.UserCache = (*UserCache)(nil)
