package app_test

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"

	"booking_snapshots/internal/domain"
)

// ---- fakes ----

type fakeVersions struct {
	mu       sync.Mutex
	versions map[int64]domain.PropertyVersion
	errs     map[int64]error
	calls    int32
}

func (f *fakeVersions) FetchVersion(ctx context.Context, id int64) (domain.PropertyVersion, error) {
	atomic.AddInt32(&f.calls, 1)
	f.mu.Lock()
	defer f.mu.Unlock()
	if err, ok := f.errs[id]; ok {
		return domain.PropertyVersion{}, err
	}
	v, ok := f.versions[id]
	if !ok {
		return domain.PropertyVersion{}, domain.ErrNotFound
	}
	return v, nil
}

type fakeBookings struct {
	byID  map[int64]domain.Booking
	mine  []domain.Booking
	err   error
	calls int32
}

func (f *fakeBookings) FetchBooking(ctx context.Context, id int64) (domain.Booking, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return domain.Booking{}, f.err
	}
	b, ok := f.byID[id]
	if !ok {
		return domain.Booking{}, domain.ErrNotFound
	}
	return b, nil
}

func (f *fakeBookings) FetchBookingsForCurrentUser(ctx context.Context) ([]domain.Booking, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return nil, f.err
	}
	return f.mine, nil
}

// jsonCache round-trips through JSON like the real backends do.
type jsonCache struct {
	mu    sync.Mutex
	store map[string][]byte
	sets  int
}

func (c *jsonCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(b, dst)
}

func (c *jsonCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.store == nil {
		c.store = map[string][]byte{}
	}
	c.store[key] = b
	c.sets++
	return nil
}

func (c *jsonCache) Del(ctx context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.store, key)
	return nil
}

// ---- fixtures ----

func ptr[T any](v T) *T { return &v }

func booking(id int64, versionID *int64, locked, total float64) domain.Booking {
	return domain.Booking{
		ID:         id,
		PropertyID: 7,
		VersionID:  versionID,
		UserID:     99,
		Status:     domain.BookingConfirmed,
		PriceBreakdown: domain.PriceBreakdown{
			LockedPricePerNight: locked,
			TotalAmount:         total,
		},
	}
}

// loftVersion is the version a booking for "Loft" captured.
func loftVersion(id int64) domain.PropertyVersion {
	return domain.PropertyVersion{
		VersionID:  id,
		PropertyID: 7,
		NumVersion: 3,
		General: &domain.GeneralSubDocument{
			GeneralJSON: `{"title":"Loft","pricePerNight":55}`,
		},
		Photos: &domain.PhotosSubDocument{
			PhotosJSON: `[{"photoUrl":"a.jpg","isCover":true,"displayOrder":1}]`,
		},
		Amenities: &domain.AmenitiesSubDocument{
			AmenitiesJSON: `[{"amenityId":3,"name":"WiFi"}]`,
		},
		Rules: &domain.RulesSubDocument{PetsAllowed: ptr(false)},
	}
}
