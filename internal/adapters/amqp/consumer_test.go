package amqpad

import (
	"context"
	"errors"
	"testing"
)

type ackRecorder struct {
	acked   bool
	nacked  bool
	requeue bool
}

func (a *ackRecorder) Ack(bool) error { a.acked = true; return nil }
func (a *ackRecorder) Nack(_ bool, requeue bool) error {
	a.nacked, a.requeue = true, requeue
	return nil
}

func TestDecodeEvent(t *testing.T) {
	e, err := DecodeEvent([]byte(`{"eventType":"BOOKING_CREATED","reservationId":12,"propertyId":7,"userId":3,"totalPrice":150}`))
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if e.ReservationID != 12 || e.PropertyID != 7 || e.EventType != "BOOKING_CREATED" {
		t.Fatalf("event: %+v", e)
	}

	for _, body := range []string{`{`, `{"eventType":"BOOKING_CREATED"}`, `{"reservationId":"12"}`} {
		if _, err := DecodeEvent([]byte(body)); !errors.Is(err, ErrBadEvent) {
			t.Fatalf("%s: want ErrBadEvent, got %v", body, err)
		}
	}
}

func TestProcess(t *testing.T) {
	ok := func(ctx context.Context, e Event) error { return nil }
	failing := func(ctx context.Context, e Event) error { return errors.New("listing down") }

	cases := []struct {
		name    string
		body    string
		h       Handler
		acked   bool
		requeue bool
	}{
		{"handled", `{"reservationId":1}`, ok, true, false},
		{"malformed dropped", `nope`, ok, false, false},
		{"handler error requeued", `{"reservationId":1}`, failing, false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := &ackRecorder{}
			process(context.Background(), []byte(tc.body), a, tc.h)
			if a.acked != tc.acked || a.nacked == tc.acked || a.requeue != tc.requeue {
				t.Fatalf("ack=%v nack=%v requeue=%v", a.acked, a.nacked, a.requeue)
			}
		})
	}
}
