package adapter

import (
	"context"
	"time"

	"github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
)

// RedisClient defines the Redis operations the rate limiter needs
//
//go:generate mockgen -source=redis.go -destination=../mocks/redis.go -package=mocks -mock_names=RedisClient=MockRedisClient,RedisRateLimiter=MockRedisRateLimiter
type RedisClient interface {
	// Ping checks if Redis is reachable
	Ping(ctx context.Context) *redis.StatusCmd

	// NewRateLimiter creates a GCRA rate limiter backed by this client
	NewRateLimiter() RedisRateLimiter

	Close() error
}

// RedisRateLimiter defines distributed rate limiting operations
type RedisRateLimiter interface {
	// Allow takes one token of key under limit
	Allow(ctx context.Context, key string, limit redis_rate.Limit) (*redis_rate.Result, error)
}

// RedisOptions holds the connection settings of a Redis client
type RedisOptions struct {
	Addr        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// RealRedisClient wraps the go-redis client
type RealRedisClient struct {
	client *redis.Client
}

// NewRedisClient creates a new Redis client. No connection is made until first use.
func NewRedisClient(opts RedisOptions) RedisClient {
	return &RealRedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:        opts.Addr,
			Password:    opts.Password,
			DB:          opts.DB,
			DialTimeout: opts.DialTimeout,
		}),
	}
}

func (r *RealRedisClient) Ping(ctx context.Context) *redis.StatusCmd {
	return r.client.Ping(ctx)
}

func (r *RealRedisClient) NewRateLimiter() RedisRateLimiter {
	return redis_rate.NewLimiter(r.client)
}

func (r *RealRedisClient) Close() error {
	return r.client.Close()
}
