package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/domain"
)

// WarmService pre-loads the version cache when a booking appears, so the
// first render of that booking does not pay for the listing round-trip.
type WarmService struct {
	bookings domain.BookingSource
	locator  Locator
}

func NewWarmService(bs domain.BookingSource, l Locator) *WarmService {
	return &WarmService{bookings: bs, locator: l}
}

// Warm returns nil for bookings that cannot be warmed (unknown booking, no
// version, version gone, no access). Only unexpected failures bubble up so the
// caller can decide whether to retry the event.
func (s *WarmService) Warm(ctx context.Context, bookingID int64) error {
	b, err := s.bookings.FetchBooking(ctx, bookingID)
	if err != nil {
		if isMiss(err) {
			log.Info().Int64("booking_id", bookingID).Err(err).Msg("warm: booking miss")
			observability.ObserveWarm("miss")
			return nil
		}
		observability.ObserveWarm("failed")
		return err
	}

	if !b.HasVersion() {
		observability.ObserveWarm("skipped")
		return nil
	}

	if _, err := s.locator.Locate(ctx, *b.VersionID); err != nil {
		if isMiss(err) {
			log.Info().
				Int64("booking_id", bookingID).
				Int64("version_id", *b.VersionID).
				Msg("warm: version miss")
			observability.ObserveWarm("miss")
			return nil
		}
		observability.ObserveWarm("failed")
		return err
	}

	observability.ObserveWarm("warmed")
	return nil
}

func isMiss(err error) bool {
	return errors.Is(err, domain.ErrNotFound) ||
		errors.Is(err, domain.ErrUnauthorized) ||
		errors.Is(err, domain.ErrForbidden)
}
