package app

import (
	"fmt"

	"booking_snapshots/internal/domain"
)

// Compose merges booking-native fields with whichever snapshot r carries.
// It performs no I/O and cannot fail.
func Compose(b domain.Booking, r domain.SnapshotResult) domain.BookingWithSnapshot {
	out := domain.BookingWithSnapshot{
		BookingID:      b.ID,
		PropertyID:     b.PropertyID,
		UserID:         b.UserID,
		VersionID:      b.VersionID,
		CheckIn:        b.CheckInDate,
		CheckOut:       b.CheckOutDate,
		TotalNights:    b.TotalNights,
		NumGuests:      b.NumGuests,
		TotalPrice:     b.PriceBreakdown.TotalAmount,
		PriceBreakdown: b.PriceBreakdown,
		Status:         b.Status,
		CreatedAt:      b.CreatedAt,
	}

	switch res := r.(type) {
	case domain.Decoded:
		out.PropertySnapshot = res.Snapshot
		out.SnapshotStatus = domain.SnapshotDecoded
	case domain.Degraded:
		out.PropertySnapshot = res.Placeholder
		out.SnapshotStatus = domain.SnapshotDegraded
		out.DegradedReason = res.Reason
	default:
		panic(fmt.Sprintf("app: unknown snapshot result %T", r))
	}
	return out
}
