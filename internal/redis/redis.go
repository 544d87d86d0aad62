package redis

import (
	"context"
	"sync"
	"time"

	"github.com/paulettemal/dashboardFin/internal/config"
	redisv9 "github.com/redis/go-redis/v9"
)

var (
	client *redisv9.Client
	once   sync.Once
)

// GetClient returns the process-wide client for the configured address.
func GetClient() *redisv9.Client {
	once.Do(func() {
		client = NewClient(config.GetRedisAddr())
	})
	return client
}

// NewClient builds a client for addr with short timeouts: the cache sits in
// front of a single HTTP call and must never be slower than the call itself.
func NewClient(addr string) *redisv9.Client {
	return redisv9.NewClient(&redisv9.Options{
		Addr:         addr,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	})
}

// Ping reports whether the cache answers within the context deadline.
func Ping(ctx context.Context, c redisv9.UniversalClient) error {
	return c.Ping(ctx).Err()
}

// ResetClientForTest resets the Redis client singleton. Use only in tests.
func ResetClientForTest() {
	once = sync.Once{}
	client = nil
}
