package shared

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("VERSION_SOURCE", "")
	t.Setenv("CACHE_BACKEND", "")
	c := Load()
	if c.VersionSource != "http" || c.CacheBackend != "redis" {
		t.Fatalf("defaults: %s/%s", c.VersionSource, c.CacheBackend)
	}
	if c.VerifySnapshotHash {
		t.Fatalf("hash verification must be opt-in")
	}
	if c.RequestTimeout <= c.BatchTimeout {
		t.Fatalf("request timeout %v must exceed batch timeout %v", c.RequestTimeout, c.BatchTimeout)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("VERSION_SOURCE", "MySQL")
	t.Setenv("CACHE_BACKEND", "bogus")
	t.Setenv("FANOUT_WORKERS", "3")
	t.Setenv("VERIFY_SNAPSHOT_HASH", "true")
	t.Setenv("BATCH_TIMEOUT_SECONDS", "20")
	t.Setenv("REQUEST_TIMEOUT_SECONDS", "5")
	t.Setenv("MEMCACHE_ADDR", "a:1,b:2")
	t.Setenv("OUTBOUND_RPS", "x")

	c := Load()
	if c.VersionSource != "mysql" || c.CacheBackend != "none" {
		t.Fatalf("sources: %s/%s", c.VersionSource, c.CacheBackend)
	}
	if c.FanoutWorkers != 3 || !c.VerifySnapshotHash || c.OutboundRPS != 20 {
		t.Fatalf("numbers: %+v", c)
	}
	if c.RequestTimeout != 25*time.Second {
		t.Fatalf("request timeout: %v", c.RequestTimeout)
	}
	if len(c.MemcacheAddrs) != 2 {
		t.Fatalf("memcache addrs: %v", c.MemcacheAddrs)
	}
}
