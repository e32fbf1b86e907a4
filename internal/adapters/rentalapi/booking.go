package rentalapi

import (
	"context"
	"fmt"

	"booking_snapshots/internal/domain"
)

// BookingClient reads reservations from the booking service.
type BookingClient struct{ c *Client }

func NewBookingClient(base, token string, rps int, opts ...Option) (*BookingClient, error) {
	c, err := New("booking", base, token, rps, opts...)
	if err != nil {
		return nil, err
	}
	return &BookingClient{c: c}, nil
}

func (b *BookingClient) FetchBooking(ctx context.Context, id int64) (domain.Booking, error) {
	var out domain.Booking
	if err := b.c.getFirst(ctx, "booking", []string{fmt.Sprintf("/bookings/%d", id)}, &out); err != nil {
		return domain.Booking{}, err
	}
	return out, nil
}

// FetchBookingsForCurrentUser needs a user token on ctx (see WithBearerToken);
// the service token has no "current user".
func (b *BookingClient) FetchBookingsForCurrentUser(ctx context.Context) ([]domain.Booking, error) {
	if bearerFrom(ctx) == "" {
		return nil, fmt.Errorf("booking user/me: %w", domain.ErrUnauthorized)
	}
	out := []domain.Booking{}
	if err := b.c.getFirst(ctx, "booking-user-me", []string{"/bookings/user/me"}, &out); err != nil {
		return nil, err
	}
	return out, nil
}
