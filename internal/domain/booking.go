package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingConfirmed BookingStatus = "CONFIRMED"
	BookingCheckedIn BookingStatus = "CHECKED_IN"
	BookingCompleted BookingStatus = "COMPLETED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingRefunded  BookingStatus = "REFUNDED"
)

// Booking is a reservation as served by the booking service. Read-only here.
type Booking struct {
	ID                  int64          `json:"id"`
	PropertyID          int64          `json:"propertyId"`
	VersionID           *int64         `json:"versionId,omitempty"` // property version captured at booking time
	UserID              int64          `json:"userId"`
	CheckInDate         Timestamp      `json:"checkInDate"`
	CheckOutDate        Timestamp      `json:"checkOutDate"`
	TotalNights         int            `json:"totalNights"`
	NumGuests           int            `json:"numGuests"`
	Status              BookingStatus  `json:"status"`
	CancelledAt         *Timestamp     `json:"cancelledAt,omitempty"`
	CreatedAt           Timestamp      `json:"createdAt"`
	PriceBreakdown      PriceBreakdown `json:"priceBreakdown"`
	BlockchainTxHash    *string        `json:"blockchainTxHash,omitempty"`
	EscrowReleased      bool           `json:"escrowReleased"`
	EscrowReleaseTxHash *string        `json:"escrowReleaseTxHash,omitempty"`
}

type PriceBreakdown struct {
	LockedPricePerNight   float64 `json:"lockedPricePerNight"`
	BaseAmount            float64 `json:"baseAmount"`
	DiscountAmount        float64 `json:"discountAmount"`
	CleaningFee           float64 `json:"cleaningFee"`
	PetFee                float64 `json:"petFee"`
	ServiceFee            float64 `json:"serviceFee"`
	TotalAmount           float64 `json:"totalAmount"`
	PlatformFeePercentage float64 `json:"platformFeePercentage"`
}

// HasVersion reports whether the booking points at a property version.
// A zero id is treated as absent, the booking service emits 0 for legacy rows.
func (b Booking) HasVersion() bool {
	return b.VersionID != nil && *b.VersionID > 0
}

// Validate checks the structural contract callers must honour.
func (b Booking) Validate() error {
	if b.ID <= 0 {
		return fmt.Errorf("%w: id must be positive, got %d", ErrInvalidBooking, b.ID)
	}
	return nil
}

// Timestamp accepts both RFC 3339 and the zone-less local date-times emitted
// by the upstream services (2025-01-15T14:00:00). Zone-less values are UTC.
type Timestamp struct{ time.Time }

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

func NewTimestamp(t time.Time) Timestamp { return Timestamp{Time: t.UTC()} }

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*t = Timestamp{}
		return nil
	}
	for _, layout := range timestampLayouts {
		if v, err := time.Parse(layout, s); err == nil {
			t.Time = v.UTC()
			return nil
		}
	}
	return fmt.Errorf("unsupported timestamp %q", s)
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}
