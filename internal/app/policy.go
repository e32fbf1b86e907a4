package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/domain"
)

type Locator interface {
	Locate(ctx context.Context, versionID int64) (domain.PropertyVersion, error)
}

type Decoder interface {
	Decode(v domain.PropertyVersion) (domain.PropertySnapshot, error)
}

// DegradationPolicy runs locate+decode for one booking and turns every
// failure into a placeholder, so Resolve always has a snapshot to hand over.
type DegradationPolicy struct {
	locator Locator
	decoder Decoder
}

func NewDegradationPolicy(l Locator, d Decoder) *DegradationPolicy {
	return &DegradationPolicy{locator: l, decoder: d}
}

func (p *DegradationPolicy) Resolve(ctx context.Context, b domain.Booking) domain.SnapshotResult {
	if !b.HasVersion() {
		return degrade(b, domain.ReasonNoVersion, nil)
	}

	v, err := p.locator.Locate(ctx, *b.VersionID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return degrade(b, domain.ReasonNotFound, err)
		}
		return degrade(b, domain.ReasonTransport, err)
	}

	if err := correlate(b, v); err != nil {
		return degrade(b, domain.ReasonDecode, err)
	}

	s, err := p.decoder.Decode(v)
	if err != nil {
		return degrade(b, domain.ReasonDecode, err)
	}

	observability.ObserveSnapshot(string(domain.SnapshotDecoded), "")
	return domain.Decoded{Snapshot: s}
}

// correlate rejects a version that belongs to another property or answers
// for a different id. Zero ids on the version side are not checked.
func correlate(b domain.Booking, v domain.PropertyVersion) error {
	if v.VersionID != 0 && v.VersionID != *b.VersionID {
		return &domain.DecodeError{Part: "version", Err: fmt.Errorf("asked for version %d, got %d", *b.VersionID, v.VersionID)}
	}
	if v.PropertyID != 0 && b.PropertyID != 0 && v.PropertyID != b.PropertyID {
		return &domain.DecodeError{Part: "version", Err: fmt.Errorf("version %d belongs to property %d, booking is for %d", v.VersionID, v.PropertyID, b.PropertyID)}
	}
	return nil
}

func degrade(b domain.Booking, reason domain.DegradeReason, err error) domain.Degraded {
	ev := log.Warn()
	if reason == domain.ReasonNoVersion {
		ev = log.Info()
	}
	ev.Int64("booking_id", b.ID).
		Str("reason", string(reason)).
		Str("err_type", observability.LabelErr(err)).
		Err(err).
		Msg("snapshot degraded")
	observability.ObserveSnapshot(string(domain.SnapshotDegraded), string(reason))
	return domain.Degrade(b, reason, err)
}
