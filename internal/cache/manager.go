// Package cache implements the exact-tier cache client: a pooled Redis
// connection exposing the three-valued get/set/flush/ping surface the
// request pipeline drives.
package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Manager is the exact-tier cache client, backed by a single pooled
// *redis.Client shared across every request path. go-redis reconnects
// automatically on transport failure, so Manager never tears down and
// rebuilds its pool.
type Manager struct {
	redis  *redis.Client
	config Config
	logger *zap.Logger
	mu     sync.RWMutex
	closed bool
}

// Config configures the pooled Redis connection.
type Config struct {
	Addr                string        `json:"addr"`
	Password            string        `json:"password"`
	DB                  int           `json:"db"`
	DefaultTTL          time.Duration `json:"default_ttl"`
	MaxRetries          int           `json:"max_retries"`
	PoolSize            int           `json:"pool_size"`
	MinIdleConns        int           `json:"min_idle_conns"`
	HealthCheckInterval time.Duration `json:"health_check_interval"`
}

// DefaultConfig returns sane pool defaults for the exact-tier client.
func DefaultConfig() Config {
	return Config{
		Addr:                "localhost:6379",
		DefaultTTL:          24 * time.Hour,
		MaxRetries:          3,
		PoolSize:            10,
		MinIdleConns:        2,
		HealthCheckInterval: 30 * time.Second,
	}
}

// ErrCacheMiss signals the key is absent — distinct from a transport or
// protocol error, per the three-valued get contract.
var ErrCacheMiss = errors.New("cache miss")

// IsCacheMiss reports whether err is ErrCacheMiss.
func IsCacheMiss(err error) bool {
	return errors.Is(err, ErrCacheMiss)
}

// NewManager dials Redis, verifies connectivity with one PING, and
// starts a background health-check loop.
func NewManager(config Config, logger *zap.Logger) (*Manager, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         config.Addr,
		Password:     config.Password,
		DB:           config.DB,
		MaxRetries:   config.MaxRetries,
		PoolSize:     config.PoolSize,
		MinIdleConns: config.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	m := &Manager{
		redis:  client,
		config: config,
		logger: logger.With(zap.String("component", "exact_cache")),
	}

	if config.HealthCheckInterval > 0 {
		go m.healthCheckLoop()
	}

	logger.Info("exact cache client initialized",
		zap.String("addr", config.Addr),
		zap.Int("pool_size", config.PoolSize),
	)

	return m, nil
}

// Get returns the raw stored value for key. It distinguishes absent
// (ErrCacheMiss) from a transport/protocol error so callers can apply
// the spec's graceful-degradation policy ("absent or error, both
// continue as a miss").
func (m *Manager) Get(ctx context.Context, key string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return "", fmt.Errorf("exact cache client is closed")
	}

	val, err := m.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrCacheMiss
	}
	if err != nil {
		m.logger.Warn("exact cache get failed", zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("exact cache get failed: %w", err)
	}

	return val, nil
}

// Set stores value under key with the given TTL. Failures are returned
// for the caller to log; the pipeline never surfaces them to the client.
func (m *Manager) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("exact cache client is closed")
	}

	if ttl == 0 {
		ttl = m.config.DefaultTTL
	}

	if err := m.redis.Set(ctx, key, value, ttl).Err(); err != nil {
		m.logger.Warn("exact cache set failed", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("exact cache set failed: %w", err)
	}

	return nil
}

// FlushAll removes every exact-tier entry. The vector tier is untouched.
func (m *Manager) FlushAll(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("exact cache client is closed")
	}

	if err := m.redis.FlushDB(ctx).Err(); err != nil {
		m.logger.Error("exact cache flush failed", zap.Error(err))
		return fmt.Errorf("exact cache flush failed: %w", err)
	}

	return nil
}

// Ping reports whether the exact-tier store is reachable.
func (m *Manager) Ping(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.closed {
		return fmt.Errorf("exact cache client is closed")
	}

	return m.redis.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil
	}

	m.closed = true
	m.logger.Info("closing exact cache client")

	return m.redis.Close()
}

func (m *Manager) healthCheckLoop() {
	ticker := time.NewTicker(m.config.HealthCheckInterval)
	defer ticker.Stop()

	for range ticker.C {
		m.mu.RLock()
		if m.closed {
			m.mu.RUnlock()
			return
		}
		m.mu.RUnlock()

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := m.Ping(ctx); err != nil {
			m.logger.Warn("exact cache health check failed", zap.Error(err))
		}
		cancel()
	}
}
