package domain

import "context"

// BookingSource serves bookings. Implementations return ErrNotFound for
// unknown ids.
type BookingSource interface {
	FetchBooking(ctx context.Context, id int64) (Booking, error)
	FetchBookingsForCurrentUser(ctx context.Context) ([]Booking, error)
}

// VersionSource serves immutable property versions. Implementations return
// ErrNotFound for unknown ids; any other error is a transport failure.
type VersionSource interface {
	FetchVersion(ctx context.Context, versionID int64) (PropertyVersion, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
	Del(ctx context.Context, key string) error
}
