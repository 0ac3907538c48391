package lock

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// releaseScript deletes the key only while it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisConfig configures a Redis lock
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Key      string
	TTL      time.Duration
}

// Redis is a Lock stored under a single key with an expiry, so a crashed
// holder frees it after TTL
type Redis struct {
	rdb   redis.UniversalClient
	key   string
	ttl   time.Duration
	owned bool

	mu    sync.Mutex
	token string
}

var _ Lock = (*Redis)(nil)

// NewRedis connects to Redis and returns a lock owning the client
func NewRedis(cfg RedisConfig) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Username: cfg.Username,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	l := NewRedisWithClient(rdb, cfg.Key, cfg.TTL)
	l.owned = true
	return l
}

// NewRedisWithClient returns a lock on key using an existing client.
// Close leaves the client open.
func NewRedisWithClient(rdb redis.UniversalClient, key string, ttl time.Duration) *Redis {
	return &Redis{
		rdb: rdb,
		key: key,
		ttl: ttl,
	}
}

// TryAcquire implements Lock
func (r *Redis) TryAcquire(ctx context.Context) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token != "" {
		return false, nil
	}

	token := uuid.NewString()
	ok, err := r.rdb.SetNX(ctx, r.key, token, r.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire lock %s: %w", r.key, err)
	}
	if ok {
		r.token = token
	}
	return ok, nil
}

// Release implements Lock. It returns ErrNotHeld when the key expired or
// was taken over by another holder.
func (r *Redis) Release(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.token == "" {
		return ErrNotHeld
	}
	token := r.token
	r.token = ""

	deleted, err := releaseScript.Run(ctx, r.rdb, []string{r.key}, token).Int()
	if err != nil {
		return fmt.Errorf("failed to release lock %s: %w", r.key, err)
	}
	if deleted == 0 {
		return ErrNotHeld
	}
	return nil
}

// Close implements Lock
func (r *Redis) Close() error {
	if !r.owned {
		return nil
	}
	return r.rdb.Close()
}
