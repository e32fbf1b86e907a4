// internal/adapters/http_server/handlers.go
package httpserver

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"booking_snapshots/internal/adapters/rentalapi"
	"booking_snapshots/internal/domain"
)

const (
	maxBatch    = 200
	maxBodySize = 1 << 20
)

type SnapshotService interface {
	BookingWithSnapshot(ctx context.Context, id int64) (domain.BookingWithSnapshot, error)
	MyBookingsWithSnapshots(ctx context.Context) ([]domain.BookingWithSnapshot, error)
	ComposeMany(ctx context.Context, bs []domain.Booking) ([]domain.BookingWithSnapshot, error)
}

// Pinger is a dependency /healthz checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handlers struct {
	Svc          SnapshotService
	BatchTimeout time.Duration
	Deps         map[string]Pinger
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", h.healthz)
	s.mux.Route("/v1/bookings", func(r chi.Router) {
		r.Use(forwardAuth)
		r.Get("/me/snapshots", h.mySnapshots)
		r.Get("/{id}/snapshot", h.bookingSnapshot)
		r.Post("/snapshots", h.composeSnapshots)
	})
}

// forwardAuth hands the caller's Authorization header to outbound calls.
func forwardAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a := r.Header.Get("Authorization"); a != "" {
			r = r.WithContext(rentalapi.WithBearerToken(r.Context(), a))
		}
		next.ServeHTTP(w, r)
	})
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

// writeError maps domain errors onto problem responses.
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidBooking):
		writeProblem(w, http.StatusBadRequest, "Invalid Booking", err.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeProblem(w, http.StatusNotFound, "Not Found", "booking not found")
	case errors.Is(err, domain.ErrUnauthorized):
		writeProblem(w, http.StatusUnauthorized, "Unauthorized", "")
	case errors.Is(err, domain.ErrForbidden):
		writeProblem(w, http.StatusForbidden, "Forbidden", "")
	case errors.Is(err, context.DeadlineExceeded):
		writeProblem(w, http.StatusGatewayTimeout, "Upstream Timeout", "")
	default:
		log.Error().Err(err).Msg("booking source failed")
		writeProblem(w, http.StatusBadGateway, "Upstream Failure", "booking service unavailable")
	}
}

// calcETagAndBody marshals once and hashes once.
func calcETagAndBody(v any) (string, []byte) {
	body, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal object for ETag/body")
		return "", nil
	}
	sum := sha1.Sum(body)
	return `W/"` + hex.EncodeToString(sum[:]) + `"`, body
}

func writeJSON(w http.ResponseWriter, r *http.Request, v any) {
	etag, body := calcETagAndBody(v)
	if body == nil {
		writeProblem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	if inm := r.Header.Get("If-None-Match"); inm != "" && inm == etag {
		w.Header().Set("ETag", etag)
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("ETag", etag)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Error().Err(err).Str("path", r.URL.Path).Msg("failed to write body")
	}
}

func (h *Handlers) batchCtx(r *http.Request) (context.Context, context.CancelFunc) {
	if h.BatchTimeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.BatchTimeout)
}

func (h *Handlers) bookingSnapshot(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeProblem(w, http.StatusBadRequest, "Invalid ID", "id must be a positive number")
		return
	}
	out, err := h.Svc.BookingWithSnapshot(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) mySnapshots(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.batchCtx(r)
	defer cancel()
	out, err := h.Svc.MyBookingsWithSnapshots(ctx)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) composeSnapshots(w http.ResponseWriter, r *http.Request) {
	var in []domain.Booking
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(&in); err != nil {
		writeProblem(w, http.StatusBadRequest, "Invalid Body", "body must be a JSON array of bookings")
		return
	}
	if len(in) > maxBatch {
		writeProblem(w, http.StatusRequestEntityTooLarge, "Batch Too Large", "at most "+strconv.Itoa(maxBatch)+" bookings per request")
		return
	}

	ctx, cancel := h.batchCtx(r)
	defer cancel()
	out, err := h.Svc.ComposeMany(ctx, in)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, r, out)
}

func (h *Handlers) healthz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	for name, p := range h.Deps {
		if err := p.Ping(ctx); err != nil {
			log.Warn().Err(err).Str("dep", name).Msg("health check failed")
			writeProblem(w, http.StatusServiceUnavailable, "Unhealthy", name+" unreachable")
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
