package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alitto/pond/v2"
	"github.com/go-redis/redis_rate/v10"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/feral-file/ff-agent-registry/internal/adapter"
	"github.com/feral-file/ff-agent-registry/internal/logger"
)

const (
	DEFAULT_REDIS_KEY_PREFIX      = "ff:registry:limiter:"
	DEFAULT_MAX_QUEUE_TIME        = 5 * time.Minute
	DEFAULT_MAX_QUEUE_SIZE        = 10000
	DEFAULT_FALLBACK_MULTIPLIER   = 0.5
	DEFAULT_HEALTH_CHECK_INTERVAL = 10 * time.Second
	retryPollInterval             = 100 * time.Millisecond
)

// ErrProxyClosed is returned for requests submitted after Close
var ErrProxyClosed = errors.New("rate limit proxy is closed")

// RequestFunc performs the actual API request
type RequestFunc func(ctx context.Context) (interface{}, error)

type requestResult struct {
	value interface{}
	err   error
}

// Config holds the rate limiting configuration.
// Every key gets its own bucket of RequestsPerSecond with Burst.
type Config struct {
	RequestsPerSecond int
	Burst             int
	// MaxQueueTime bounds how long a request waits for a token
	MaxQueueTime   time.Duration
	RedisKeyPrefix string
	MaxWorkers     int
	MaxQueueSize   int
	// EnableLocalFallback limits in-process when Redis is unreachable
	EnableLocalFallback bool
	// LocalFallbackMultiplier scales the local rate so several processes stay under the shared quota
	LocalFallbackMultiplier float64
	HealthCheckInterval     time.Duration
}

// Proxy defines the interface for the rate-limiting proxy
//
//go:generate mockgen -source=proxy.go -destination=../mocks/ratelimit_proxy.go -package=mocks -mock_names=Proxy=MockRateLimitProxy
type Proxy interface {
	// Request runs fn once a token for key is acquired
	Request(ctx context.Context, key string, fn RequestFunc) (interface{}, error)

	// Close gracefully shuts down the proxy
	Close() error
}

type proxy struct {
	config         Config
	pool           pond.ResultPool[*requestResult]
	redis          adapter.RedisClient
	distributed    adapter.RedisRateLimiter
	clock          adapter.Clock
	mu             sync.Mutex
	limiters       map[string]*keyLimiter
	closed         atomic.Bool
	closeOnce      sync.Once
	done           chan struct{}
	redisAvailable atomic.Bool
}

// keyLimiter holds the local rate limiting state of a single key
type keyLimiter struct {
	key       string
	local     *rate.Limiter
	preFilter *rate.Limiter
}

// NewProxy creates a rate-limiting proxy. A nil Redis client limits in-process only.
func NewProxy(cfg Config, rc adapter.RedisClient, clock adapter.Clock) (Proxy, error) {
	if err := validateConfig(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	p := &proxy{
		config:   cfg,
		redis:    rc,
		clock:    clock,
		limiters: make(map[string]*keyLimiter),
		done:     make(chan struct{}),
		pool: pond.NewResultPool[*requestResult](
			cfg.MaxWorkers,
			pond.WithQueueSize(cfg.MaxQueueSize),
		),
	}

	if rc == nil {
		if !cfg.EnableLocalFallback {
			p.pool.StopAndWait()
			return nil, errors.New("no redis client and local fallback disabled")
		}
		logger.Info("Rate limit proxy running in local mode",
			zap.Int("requests_per_second", cfg.RequestsPerSecond),
		)
		return p, nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisAvailable := true
	if err := rc.Ping(ctx).Err(); err != nil {
		redisAvailable = false
		if !cfg.EnableLocalFallback {
			p.pool.StopAndWait()
			return nil, fmt.Errorf("redis unavailable and fallback disabled: %w", err)
		}
		logger.Warn("Redis unavailable, will use local fallback", zap.Error(err))
	}
	p.redisAvailable.Store(redisAvailable)
	p.distributed = rc.NewRateLimiter()

	go p.monitorRedisHealth()

	logger.Info("Rate limit proxy initialized",
		zap.Int("requests_per_second", cfg.RequestsPerSecond),
		zap.Int("burst", cfg.Burst),
		zap.Int("max_workers", cfg.MaxWorkers),
		zap.Bool("local_fallback", cfg.EnableLocalFallback),
	)

	return p, nil
}

// Request runs fn through p and returns its typed result. A nil proxy runs fn directly.
func Request[T any](ctx context.Context, p Proxy, key string, fn func(ctx context.Context) (T, error)) (T, error) {
	if p == nil {
		return fn(ctx)
	}

	var zero T
	result, err := p.Request(ctx, key, func(ctx context.Context) (interface{}, error) {
		return fn(ctx)
	})
	if err != nil {
		return zero, err
	}
	if result == nil {
		return zero, nil
	}
	return result.(T), nil
}

// Request blocks until a token is acquired and fn completes, the context is canceled,
// or the maximum queue time is exceeded
func (p *proxy) Request(ctx context.Context, key string, fn RequestFunc) (interface{}, error) {
	if p.closed.Load() {
		return nil, ErrProxyClosed
	}

	limiter := p.limiterFor(key)

	queueCtx, cancel := context.WithTimeout(ctx, p.config.MaxQueueTime)
	defer cancel()

	task := p.pool.Submit(func() *requestResult {
		if err := p.acquireToken(queueCtx, limiter); err != nil {
			return &requestResult{err: err}
		}
		value, err := fn(ctx)
		return &requestResult{value: value, err: err}
	})

	result, err := task.Wait()
	if err != nil {
		return nil, err
	}
	return result.value, result.err
}

// limiterFor returns the local state of key, creating it on first use
func (p *proxy) limiterFor(key string) *keyLimiter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if l, ok := p.limiters[key]; ok {
		return l
	}

	localRate := max(float64(p.config.RequestsPerSecond)*p.config.LocalFallbackMultiplier, 1.0)
	l := &keyLimiter{
		key:       key,
		local:     rate.NewLimiter(rate.Limit(localRate), p.config.Burst),
		preFilter: rate.NewLimiter(rate.Limit(p.config.RequestsPerSecond), p.config.Burst),
	}
	p.limiters[key] = l
	return l
}

// acquireToken blocks until a token is available
func (p *proxy) acquireToken(ctx context.Context, limiter *keyLimiter) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.redisAvailable.Load() {
			allowed, retryAfter, err := p.tryDistributedLimit(ctx, limiter)
			switch {
			case err != nil:
				if ctx.Err() != nil {
					return ctx.Err()
				}

				p.redisAvailable.Store(false)
				if !p.config.EnableLocalFallback {
					return fmt.Errorf("redis rate limiter unavailable: %w", err)
				}
				logger.Warn("Redis rate limiter error, falling back to local",
					zap.String("key", limiter.key),
					zap.Error(err),
				)
			case allowed:
				return nil
			case retryAfter > 0:
				// 50-150% of retryAfter spreads the retries of concurrent workers
				jitter := time.Duration(float64(retryAfter) * (0.5 + rand.Float64())) //nolint:gosec,G404
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-p.clock.After(jitter):
					continue
				}
			}
		}

		if !p.redisAvailable.Load() && p.config.EnableLocalFallback {
			return limiter.local.Wait(ctx)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-p.clock.After(retryPollInterval):
		}
	}
}

// tryDistributedLimit asks Redis for a token of limiter's key
func (p *proxy) tryDistributedLimit(ctx context.Context, limiter *keyLimiter) (bool, time.Duration, error) {
	if p.distributed == nil {
		return false, 0, errors.New("distributed limiter not available")
	}

	// The pre-filter keeps a single process from hammering Redis
	if err := limiter.preFilter.Wait(ctx); err != nil {
		return false, 0, err
	}

	limit := redis_rate.Limit{
		Rate:   p.config.RequestsPerSecond,
		Burst:  p.config.Burst,
		Period: time.Second,
	}
	res, err := p.distributed.Allow(ctx, p.config.RedisKeyPrefix+limiter.key, limit)
	if err != nil {
		return false, 0, err
	}

	if res.Allowed == 0 {
		logger.Debug("Rate limit token unavailable, waiting",
			zap.String("key", limiter.key),
			zap.Duration("retry_after", res.RetryAfter),
		)
		return false, res.RetryAfter, nil
	}

	return true, 0, nil
}

// monitorRedisHealth re-enables the distributed limiter once Redis answers again
func (p *proxy) monitorRedisHealth() {
	for {
		select {
		case <-p.done:
			return
		case <-p.clock.After(p.config.HealthCheckInterval):
		}

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := p.redis.Ping(ctx).Err()
		cancel()

		available := err == nil
		if wasAvailable := p.redisAvailable.Swap(available); !wasAvailable && available {
			logger.Info("Redis connection restored")
		}
	}
}

// Close waits for in-flight requests and releases the Redis connection
func (p *proxy) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		close(p.done)

		logger.Info("Shutting down rate limit proxy")

		if waitErr := p.pool.Stop().Wait(); waitErr != nil {
			logger.Warn("Error waiting for pool tasks to complete", zap.Error(waitErr))
			err = waitErr
		}

		if p.redis != nil {
			if closeErr := p.redis.Close(); closeErr != nil {
				logger.Warn("Error closing Redis connection", zap.Error(closeErr))
				err = closeErr
			}
		}
	})
	return err
}

// validateConfig validates and sets defaults for the configuration
func validateConfig(cfg *Config) error {
	if cfg.RequestsPerSecond <= 0 {
		return errors.New("requests_per_second must be positive")
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.RequestsPerSecond
	}
	if cfg.MaxQueueTime <= 0 {
		cfg.MaxQueueTime = DEFAULT_MAX_QUEUE_TIME
	}
	if cfg.RedisKeyPrefix == "" {
		cfg.RedisKeyPrefix = DEFAULT_REDIS_KEY_PREFIX
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = runtime.NumCPU() * 10
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = DEFAULT_MAX_QUEUE_SIZE
	}
	if cfg.LocalFallbackMultiplier <= 0 {
		cfg.LocalFallbackMultiplier = DEFAULT_FALLBACK_MULTIPLIER
	}
	if cfg.HealthCheckInterval <= 0 {
		cfg.HealthCheckInterval = DEFAULT_HEALTH_CHECK_INTERVAL
	}
	return nil
}
