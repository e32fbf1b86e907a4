package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"booking_snapshots/internal/domain"
)

// VersionLocator reads property versions through an optional cache. Versions
// never change once written, so a cached copy is always authoritative.
type VersionLocator struct {
	src      domain.VersionSource
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewVersionLocator(src domain.VersionSource, c domain.Cache, ttl time.Duration) *VersionLocator {
	return &VersionLocator{src: src, cache: c, cacheTTL: ttl}
}

// Locate returns the version, an error wrapping domain.ErrNotFound, or a
// *domain.TransportError. It never retries.
func (l *VersionLocator) Locate(ctx context.Context, versionID int64) (domain.PropertyVersion, error) {
	key := versionKey(versionID)
	var v domain.PropertyVersion
	if l.cache != nil {
		if ok, err := l.cache.Get(ctx, key, &v); ok && err == nil {
			return v, nil
		}
	}

	v, err := l.src.FetchVersion(ctx, versionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.PropertyVersion{}, fmt.Errorf("version %d: %w", versionID, err)
		}
		return domain.PropertyVersion{}, &domain.TransportError{Op: fmt.Sprintf("fetch version %d", versionID), Err: err}
	}

	if l.cache != nil {
		_ = l.cache.Set(ctx, key, v, int(l.cacheTTL.Seconds()))
	}
	return v, nil
}

func versionKey(id int64) string { return fmt.Sprintf("version:%d", id) }
