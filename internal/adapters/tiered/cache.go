package tiered

import (
	"context"
	"encoding/json"
	"time"

	"github.com/karlseguin/ccache/v3"

	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/domain"
)

// Cache keeps a bounded in-process copy (L1) in front of a shared cache (L2).
// L1 holds the encoded bytes so callers never share decoded values.
type Cache struct {
	local  *ccache.Cache[[]byte]
	remote domain.Cache // may be nil: L1 only
	ttl    time.Duration
}

// New builds a tiered cache. maxItems bounds L1; localTTL caps how long an
// entry lives in L1 regardless of the ttl given to Set.
func New(remote domain.Cache, maxItems int, localTTL time.Duration) *Cache {
	if maxItems <= 0 {
		maxItems = 1000
	}
	if localTTL <= 0 {
		localTTL = 5 * time.Minute
	}
	return &Cache{
		local:  ccache.New(ccache.Configure[[]byte]().MaxSize(int64(maxItems))),
		remote: remote,
		ttl:    localTTL,
	}
}

func (c *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	if it := c.local.Get(key); it != nil && !it.Expired() {
		if err := json.Unmarshal(it.Value(), dst); err == nil {
			observability.ObserveCache("local", "hit")
			return true, nil
		}
		c.local.Delete(key)
	}
	observability.ObserveCache("local", "miss")

	if c.remote == nil {
		return false, nil
	}
	var raw json.RawMessage
	ok, err := c.remote.Get(ctx, key, &raw)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, nil
	}
	c.local.Set(key, []byte(raw), c.ttl)
	return true, nil
}

func (c *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	lt := c.ttl
	if d := time.Duration(ttlSec) * time.Second; d > 0 && d < lt {
		lt = d
	}
	c.local.Set(key, b, lt)
	if c.remote == nil {
		return nil
	}
	return c.remote.Set(ctx, key, json.RawMessage(b), ttlSec)
}

func (c *Cache) Del(ctx context.Context, key string) error {
	c.local.Delete(key)
	if c.remote == nil {
		return nil
	}
	return c.remote.Del(ctx, key)
}

func (c *Cache) Stop() { c.local.Stop() }
