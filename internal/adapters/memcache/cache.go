package memcachead

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/bradfitz/gomemcache/memcache"

	"booking_snapshots/internal/adapters/observability"
)

// Client is the slice of *memcache.Client this adapter uses.
type Client interface {
	Get(key string) (*memcache.Item, error)
	Set(item *memcache.Item) error
	Delete(key string) error
}

// Cache stores JSON values in memcached. The context is not forwarded:
// gomemcache bounds each call with its own Timeout.
type Cache struct {
	mc     Client
	prefix string
}

func New(addrs ...string) *Cache {
	return NewFromClient(memcache.New(addrs...))
}

func NewFromClient(mc Client) *Cache {
	return &Cache{mc: mc, prefix: "snapshots:"}
}

func (m *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	it, err := m.mc.Get(m.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		observability.ObserveCache("memcache", "miss")
		return false, nil
	}
	if err != nil {
		observability.ObserveCache("memcache", "error")
		return false, err
	}
	if err := json.Unmarshal(it.Value, dst); err != nil {
		observability.ObserveCache("memcache", "miss")
		return false, nil
	}
	observability.ObserveCache("memcache", "hit")
	return true, nil
}

func (m *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if ttlSec < 0 {
		ttlSec = 0
	}
	observability.ObserveCache("memcache", "set")
	return m.mc.Set(&memcache.Item{Key: m.prefix + key, Value: b, Expiration: int32(ttlSec)})
}

func (m *Cache) Del(ctx context.Context, key string) error {
	observability.ObserveCache("memcache", "del")
	err := m.mc.Delete(m.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil
	}
	return err
}
