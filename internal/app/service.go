package app

import (
	"context"
	"fmt"

	"booking_snapshots/internal/domain"
)

// BookingSnapshotService fetches bookings and hands them to the orchestrator.
// Booking-source failures are returned as is: without a booking there is
// nothing to degrade to.
type BookingSnapshotService struct {
	bookings domain.BookingSource
	orch     *Orchestrator
}

func NewBookingSnapshotService(bs domain.BookingSource, o *Orchestrator) *BookingSnapshotService {
	return &BookingSnapshotService{bookings: bs, orch: o}
}

func (s *BookingSnapshotService) BookingWithSnapshot(ctx context.Context, id int64) (domain.BookingWithSnapshot, error) {
	b, err := s.bookings.FetchBooking(ctx, id)
	if err != nil {
		return domain.BookingWithSnapshot{}, fmt.Errorf("fetch booking %d: %w", id, err)
	}
	return s.orch.ComposeOne(ctx, b)
}

func (s *BookingSnapshotService) MyBookingsWithSnapshots(ctx context.Context) ([]domain.BookingWithSnapshot, error) {
	bs, err := s.bookings.FetchBookingsForCurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch current user bookings: %w", err)
	}
	return s.orch.ComposeMany(ctx, bs)
}

// ComposeMany exposes the orchestrator for callers that already hold bookings.
func (s *BookingSnapshotService) ComposeMany(ctx context.Context, bs []domain.Booking) ([]domain.BookingWithSnapshot, error) {
	return s.orch.ComposeMany(ctx, bs)
}
