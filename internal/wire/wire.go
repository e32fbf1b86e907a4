// Package wire builds the collaborators both binaries share from Config.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/rs/zerolog/log"

	memcachead "booking_snapshots/internal/adapters/memcache"
	"booking_snapshots/internal/adapters/rentalapi"
	redisad "booking_snapshots/internal/adapters/redis"
	"booking_snapshots/internal/adapters/tiered"
	"booking_snapshots/internal/app"
	"booking_snapshots/internal/domain"
	"booking_snapshots/internal/shared"
	mysqlstore "booking_snapshots/internal/storage/mysql"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps holds what New built. Close releases everything in reverse order.
type Deps struct {
	Bookings domain.BookingSource
	Locator  *app.VersionLocator
	Pingers  map[string]Pinger
	closers  []func()
}

func (d *Deps) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func New(cfg shared.Config) (*Deps, error) {
	d := &Deps{Pingers: map[string]Pinger{}}

	bookings, err := rentalapi.NewBookingClient(cfg.BookingBase, cfg.ServiceToken, cfg.OutboundRPS)
	if err != nil {
		return nil, err
	}
	d.Bookings = bookings

	versions, err := d.versionSource(cfg)
	if err != nil {
		d.Close()
		return nil, err
	}

	cache := d.cache(cfg)
	d.Locator = app.NewVersionLocator(versions, cache, cfg.CacheTTL)

	log.Info().
		Str("version_source", cfg.VersionSource).
		Str("cache", cfg.CacheBackend).
		Dur("cache_ttl", cfg.CacheTTL).
		Msg("snapshot dependencies ready")
	return d, nil
}

func (d *Deps) versionSource(cfg shared.Config) (domain.VersionSource, error) {
	if cfg.VersionSource != "mysql" {
		return rentalapi.NewListingClient(cfg.ListingBase, cfg.ServiceToken, cfg.OutboundRPS)
	}

	db, err := sql.Open("mysql", cfg.ListingDSN)
	if err != nil {
		return nil, fmt.Errorf("open listing db: %w", err)
	}
	db.SetMaxOpenConns(cfg.FanoutWorkers * 2)
	db.SetConnMaxLifetime(5 * time.Minute)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping listing db: %w", err)
	}
	d.closers = append(d.closers, func() { _ = db.Close() })

	store := mysqlstore.New(db)
	d.Pingers["mysql"] = store
	return store, nil
}

// cache returns the L2 backend behind a local ccache tier.
func (d *Deps) cache(cfg shared.Config) domain.Cache {
	var remote domain.Cache
	switch cfg.CacheBackend {
	case "redis":
		rc := redisad.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		d.closers = append(d.closers, func() { _ = rc.Close() })
		d.Pingers["redis"] = rc
		remote = rc
	case "memcache":
		remote = memcachead.New(cfg.MemcacheAddrs...)
	}
	if cfg.LocalCacheSize <= 0 {
		return remote
	}
	t := tiered.New(remote, cfg.LocalCacheSize, cfg.CacheTTL)
	d.closers = append(d.closers, t.Stop)
	return t
}
