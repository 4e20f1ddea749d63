// Package cache provides a small key/value store with expiry. Redis is used
// when REDIS_ADDR is set; otherwise values live in process memory.
package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/pkg/logger"
)

// ErrMiss is returned by Get when the key is absent or expired.
var ErrMiss = errors.New("cache: miss")

// Store is implemented by the redis and memory drivers.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Exists(ctx context.Context, key string) (bool, error)
	Del(ctx context.Context, keys ...string) error
}

// Open picks a driver from config. A Redis that does not answer the ping is
// logged and replaced by the memory driver.
func Open(ctx context.Context) Store {
	addr := config.RedisAddr()
	if addr == "" {
		return NewMemory()
	}
	rs, err := NewRedis(ctx, addr, config.RedisPassword())
	if err != nil {
		logger.Warn("cache: redis unavailable, using memory", "addr", addr, "error", err)
		return NewMemory()
	}
	return rs
}

type entry struct {
	value     []byte
	expiresAt time.Time
}

// Memory is a mutex-guarded map. Expired keys are dropped lazily on read.
type Memory struct {
	mu   sync.Mutex
	data map[string]entry
	now  func() time.Time
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string]entry), now: time.Now}
}

func (m *Memory) lookup(key string) (entry, bool) {
	e, ok := m.data[key]
	if !ok {
		return entry{}, false
	}
	if !e.expiresAt.IsZero() && !m.now().Before(e.expiresAt) {
		delete(m.data, key)
		return entry{}, false
	}
	return e, true
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.lookup(key)
	if !ok {
		return nil, ErrMiss
	}
	return append([]byte(nil), e.value...), nil
}

func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = m.now().Add(ttl)
	}
	m.data[key] = e
	return nil
}

func (m *Memory) Exists(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

func (m *Memory) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
	return nil
}
