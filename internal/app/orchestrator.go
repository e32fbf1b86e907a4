package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/semaphore"

	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/domain"
)

type Resolver interface {
	Resolve(ctx context.Context, b domain.Booking) domain.SnapshotResult
}

// Orchestrator composes bookings with their snapshots, one pipeline per
// booking. Pipelines settle on their own (failures become placeholders), so a
// batch is a plain wait-for-all join that never aborts early.
type Orchestrator struct {
	policy  Resolver
	workers int
}

type OrchestratorOption func(*Orchestrator)

// WithWorkers caps how many pipelines of one batch run at once. n <= 0 runs
// the whole batch concurrently.
func WithWorkers(n int) OrchestratorOption {
	return func(o *Orchestrator) { o.workers = n }
}

func NewOrchestrator(p Resolver, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{policy: p}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// ComposeOne fails only when b itself is malformed (domain.ErrInvalidBooking).
func (o *Orchestrator) ComposeOne(ctx context.Context, b domain.Booking) (domain.BookingWithSnapshot, error) {
	if err := b.Validate(); err != nil {
		return domain.BookingWithSnapshot{}, err
	}
	return Compose(b, o.policy.Resolve(ctx, b)), nil
}

// ComposeMany returns one result per booking, result[i] for bookings[i].
// Every booking is validated before any collaborator is called.
func (o *Orchestrator) ComposeMany(ctx context.Context, bookings []domain.Booking) ([]domain.BookingWithSnapshot, error) {
	out := make([]domain.BookingWithSnapshot, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}
	for i, b := range bookings {
		if err := b.Validate(); err != nil {
			return nil, fmt.Errorf("booking at index %d: %w", i, err)
		}
	}

	batchID := uuid.NewString()
	start := time.Now()

	limit := o.workers
	if limit <= 0 || limit > len(bookings) {
		limit = len(bookings)
	}
	sem := semaphore.NewWeighted(int64(limit))
	var wg sync.WaitGroup

	for i, b := range bookings {
		// acquire before launching the goroutine; release inside it
		if err := sem.Acquire(ctx, 1); err != nil {
			// ctx ended before this pipeline started
			out[i] = Compose(b, degrade(b, domain.ReasonTransport, err))
			continue
		}

		wg.Add(1)
		go func(i int, b domain.Booking) {
			defer wg.Done()
			defer sem.Release(1)
			out[i] = Compose(b, o.policy.Resolve(ctx, b))
		}(i, b)
	}

	wg.Wait()

	dur := time.Since(start)
	observability.ObserveFanout(len(bookings), dur)
	log.Debug().
		Str("batch_id", batchID).
		Int("size", len(bookings)).
		Int("workers", limit).
		Dur("duration", dur).
		Msg("compose batch settled")
	return out, nil
}
