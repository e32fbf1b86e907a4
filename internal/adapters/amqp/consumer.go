package amqpad

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/streadway/amqp"
	"golang.org/x/sync/semaphore"

	"booking_snapshots/internal/adapters/observability"
)

const (
	Exchange     = "booking.exchange"
	DefaultQueue = "booking.snapshots.warm.queue"
)

// WarmKeys are the routing keys that mean "a booking now points at a version".
var WarmKeys = []string{"booking.created", "booking.confirmed"}

// Event is the booking service's event body. Extra fields are ignored.
type Event struct {
	EventType     string `json:"eventType"`
	ReservationID int64  `json:"reservationId"`
	PropertyID    int64  `json:"propertyId"`
	UserID        int64  `json:"userId"`
}

var ErrBadEvent = errors.New("malformed booking event")

func DecodeEvent(body []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(body, &e); err != nil {
		return Event{}, fmt.Errorf("%w: %v", ErrBadEvent, err)
	}
	if e.ReservationID <= 0 {
		return Event{}, fmt.Errorf("%w: reservationId %d", ErrBadEvent, e.ReservationID)
	}
	return e, nil
}

type Handler func(ctx context.Context, e Event) error

type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	handleTime time.Duration
}

// Dial connects, declares the topic exchange and a durable queue, and binds
// the queue for each key.
func Dial(url, queue string, keys []string) (*Consumer, error) {
	if queue == "" {
		queue = DefaultQueue
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("amqp dial: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("amqp channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf("amqp %s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(Exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		return fail("declare queue", err)
	}
	for _, k := range keys {
		if err := ch.QueueBind(queue, k, Exchange, false, nil); err != nil {
			return fail("bind "+k, err)
		}
	}

	log.Info().Str("queue", queue).Strs("keys", keys).Msg("amqp consumer ready")
	return &Consumer{conn: conn, ch: ch, queue: queue, handleTime: 30 * time.Second}, nil
}

// Run consumes until ctx ends or the channel closes, handling at most workers
// deliveries at once. In-flight handlers are awaited before it returns.
func (c *Consumer) Run(ctx context.Context, workers int, h Handler) error {
	if workers <= 0 {
		workers = 1
	}
	if err := c.ch.Qos(workers, 0, false); err != nil {
		return fmt.Errorf("amqp qos: %w", err)
	}
	msgs, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("amqp consume: %w", err)
	}

	sem := semaphore.NewWeighted(int64(workers))
	var wg sync.WaitGroup
	defer wg.Wait()

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("amqp delivery channel closed")
			}
			if err := sem.Acquire(ctx, 1); err != nil {
				_ = d.Nack(false, true)
				return nil
			}
			wg.Add(1)
			go func(d amqp.Delivery) {
				defer wg.Done()
				defer sem.Release(1)
				hctx, cancel := context.WithTimeout(context.Background(), c.handleTime)
				defer cancel()
				process(hctx, d.Body, d, h)
			}(d)
		}
	}
}

func (c *Consumer) Close() error {
	var errs []error
	if c.ch != nil {
		errs = append(errs, c.ch.Close())
	}
	if c.conn != nil {
		errs = append(errs, c.conn.Close())
	}
	return errors.Join(errs...)
}

type acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// process acks handled events, drops malformed ones and requeues the rest.
func process(ctx context.Context, body []byte, a acknowledger, h Handler) {
	e, err := DecodeEvent(body)
	if err != nil {
		log.Warn().Err(err).Msg("amqp: dropping event")
		observability.ObserveWarm("malformed")
		_ = a.Nack(false, false)
		return
	}
	if err := h(ctx, e); err != nil {
		log.Error().Err(err).Int64("booking_id", e.ReservationID).Str("event", e.EventType).Msg("amqp: handler failed, requeueing")
		_ = a.Nack(false, true)
		return
	}
	if err := a.Ack(false); err != nil {
		log.Error().Err(err).Int64("booking_id", e.ReservationID).Msg("amqp: ack failed")
	}
}
