//go:build integration || !unit

package integration

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"

	server "booking_snapshots/internal/adapters/http_server"
	"booking_snapshots/internal/adapters/rentalapi"
	redisad "booking_snapshots/internal/adapters/redis"
	"booking_snapshots/internal/adapters/tiered"
	"booking_snapshots/internal/app"
	"booking_snapshots/internal/domain"
)

// ---------- upstream fakes ----------

// bookingService serves three bookings to the user "guest".
func bookingService(t *testing.T) *httptest.Server {
	t.Helper()
	bookings := map[int64]string{
		1: `{"id":1,"propertyId":7,"versionId":10,"userId":5,"checkInDate":"2025-03-01T15:00:00","checkOutDate":"2025-03-04T11:00:00","totalNights":3,"status":"CONFIRMED","priceBreakdown":{"lockedPricePerNight":50,"totalAmount":150}}`,
		2: `{"id":2,"propertyId":7,"versionId":null,"userId":5,"status":"PENDING","priceBreakdown":{"lockedPricePerNight":40,"totalAmount":80}}`,
		3: `{"id":3,"propertyId":8,"versionId":404,"userId":5,"status":"CONFIRMED","priceBreakdown":{"lockedPricePerNight":30,"totalAmount":60}}`,
	}
	r := chi.NewRouter()
	r.Get("/bookings/user/me", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer guest" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		fmt.Fprintf(w, "[%s,%s,%s]", bookings[1], bookings[2], bookings[3])
	})
	r.Get("/bookings/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, _ := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
		b, ok := bookings[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(b))
	})
	return httptest.NewServer(r)
}

// listingService knows version 10 only and counts hits.
func listingService(t *testing.T, hits *int32) *httptest.Server {
	t.Helper()
	version := map[string]any{
		"versionId":  10,
		"propertyId": 7,
		"numVersion": 4,
		"createdAt":  "2025-01-10T09:00:00",
		"generalSnapshot": map[string]any{
			"snapshotId":  1,
			"generalJson": `{"title":"Loft","pricePerNight":55,"city":"Lyon"}`,
		},
		"photosSnapshot": map[string]any{
			"snapshotId": 1,
			"photosJson": `[{"photoUrl":"a.jpg","isCover":true,"displayOrder":1}]`,
		},
		"amenitiesSnapshot": map[string]any{
			"snapshotId":    1,
			"amenitiesJson": `[{"amenityId":3,"name":"WiFi"}]`,
		},
		"rulesSnapshot": map[string]any{"snapshotId": 1, "petsAllowed": false},
	}
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		if r.URL.Path != "/property-versions/10" {
			http.NotFound(w, r)
			return
		}
		_ = json.NewEncoder(w).Encode(version)
	}))
}

// ---------- the test ----------

func TestE2E_MyBookingsWithSnapshots(t *testing.T) {
	bsrv := bookingService(t)
	defer bsrv.Close()
	var listingHits int32
	lsrv := listingService(t, &listingHits)
	defer lsrv.Close()
	mr := miniredis.RunT(t)

	bookings, err := rentalapi.NewBookingClient(bsrv.URL, "svc", 100)
	if err != nil {
		t.Fatalf("booking client: %v", err)
	}
	listing, err := rentalapi.NewListingClient(lsrv.URL, "svc", 100)
	if err != nil {
		t.Fatalf("listing client: %v", err)
	}
	cache := tiered.New(redisad.New(mr.Addr(), "", 0), 100, time.Minute)
	defer cache.Stop()

	loc := app.NewVersionLocator(listing, cache, time.Hour)
	pol := app.NewDegradationPolicy(loc, app.NewSnapshotDecoder())
	svc := app.NewBookingSnapshotService(bookings, app.NewOrchestrator(pol, app.WithWorkers(2)))

	srv := server.New(5 * time.Second)
	srv.MountHandlers(&server.Handlers{Svc: svc, BatchTimeout: 2 * time.Second})
	api := httptest.NewServer(srv.Mux())
	defer api.Close()

	get := func(path, token string) (*http.Response, []byte) {
		t.Helper()
		req, _ := http.NewRequest(http.MethodGet, api.URL+path, nil)
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatalf("GET %s: %v", path, err)
		}
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		if err != nil {
			t.Fatalf("read %s: %v", path, err)
		}
		return resp, b
	}

	// unauthenticated list is rejected by the booking service
	if resp, _ := get("/v1/bookings/me/snapshots", ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("anonymous: want 401, got %d", resp.StatusCode)
	}

	resp, body := get("/v1/bookings/me/snapshots", "guest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d: %s", resp.StatusCode, body)
	}
	var out []domain.BookingWithSnapshot
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out) != 3 {
		t.Fatalf("want 3 results, got %d", len(out))
	}

	first := out[0]
	if first.BookingID != 1 || first.SnapshotStatus != domain.SnapshotDecoded {
		t.Fatalf("booking 1: %+v", first)
	}
	if first.PropertySnapshot.Title != "Loft" || first.PropertySnapshot.PricePerNight != 55 || first.TotalPrice != 150 {
		t.Fatalf("booking 1 snapshot: %+v", first.PropertySnapshot)
	}
	if first.CheckIn.Day() != 1 || first.PropertySnapshot.NumVersion != 4 {
		t.Fatalf("booking 1 dates/provenance: %+v", first)
	}

	if out[1].DegradedReason != domain.ReasonNoVersion || out[1].PropertySnapshot.PricePerNight != 40 {
		t.Fatalf("booking 2: %+v", out[1])
	}
	if out[2].DegradedReason != domain.ReasonNotFound || out[2].PropertySnapshot.Title != domain.UnavailableTitle {
		t.Fatalf("booking 3: %+v", out[2])
	}

	// version 10 is now cached: a single booking read must not hit the listing service again
	before := atomic.LoadInt32(&listingHits)
	resp, body = get("/v1/bookings/1/snapshot", "guest")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("single: status %d: %s", resp.StatusCode, body)
	}
	if after := atomic.LoadInt32(&listingHits); after != before {
		t.Fatalf("cached version refetched: %d -> %d", before, after)
	}
	if !mr.Exists("snapshots:version:10") {
		t.Fatalf("version not written through to redis: %v", mr.Keys())
	}

	if resp, _ := get("/v1/bookings/99/snapshot", "guest"); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown booking: want 404, got %d", resp.StatusCode)
	}
}
