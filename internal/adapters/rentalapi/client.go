// internal/adapters/rentalapi/client.go
package rentalapi

import (
	"context"
	crand "crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"booking_snapshots/internal/adapters/observability"
	"booking_snapshots/internal/domain"
)

const maxAttempts = 4

// Client is the shared HTTP core behind the booking and listing adapters:
// client-side rate limit, bounded retries on 429/5xx, and status codes mapped
// onto domain errors.
type Client struct {
	service string // metrics label: "booking" | "listing"
	base    string
	hc      *http.Client
	token   string // service token, used when the request carries none
	rl      *rate.Limiter
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.hc = hc } }

func New(service, base, token string, rps int, opts ...Option) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("%s: base URL is required", service)
	}
	if rps <= 0 {
		rps = 20
	}
	c := &Client{
		service: service,
		base:    strings.TrimRight(base, "/"),
		hc:      &http.Client{Timeout: 10 * time.Second},
		token:   token,
		rl:      rate.NewLimiter(rate.Limit(rps), rps),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ---- caller credentials ----

type tokenKey struct{}

// WithBearerToken attaches the end user's token to ctx. Requests made with
// that ctx are sent on the user's behalf instead of with the service token.
func WithBearerToken(ctx context.Context, token string) context.Context {
	token = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(token), "Bearer "))
	if token == "" {
		return ctx
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func bearerFrom(ctx context.Context) string {
	s, _ := ctx.Value(tokenKey{}).(string)
	return s
}

// ---- internals ----

// getFirst tries each path in order; only a 404 moves on to the next one.
func (c *Client) getFirst(ctx context.Context, endpoint string, paths []string, out any) error {
	var last error
	for _, p := range paths {
		err := c.get(ctx, endpoint, c.base+p, out)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		last = err
	}
	if last != nil {
		return last
	}
	return errors.New("no candidate path")
}

// get performs one logical GET with up to maxAttempts tries and decodes JSON
// into out.
func (c *Client) get(ctx context.Context, endpoint, url string, out any) error {
	if err := c.rl.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for i := 0; i < maxAttempts; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}
		if tok := bearerFrom(ctx); tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		} else if c.token != "" {
			req.Header.Set("Authorization", "Bearer "+c.token)
		}
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "booking-snapshots/1.0")

		start := time.Now()
		resp, err := c.hc.Do(req)
		if err != nil {
			observability.ObserveExternal(c.service, endpoint, 0, time.Since(start))
			if ctx.Err() != nil {
				return ctx.Err()
			}
			lastErr = err
			if i < maxAttempts-1 && sleepCtx(ctx, backoff(i)) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr
		}
		observability.ObserveExternal(c.service, endpoint, resp.StatusCode, time.Since(start))

		switch resp.StatusCode {
		case http.StatusOK:
			err := json.NewDecoder(resp.Body).Decode(out)
			resp.Body.Close()
			if err != nil {
				return fmt.Errorf("%s %s: decode body: %w", c.service, endpoint, err)
			}
			return nil

		case http.StatusNotFound:
			drain(resp)
			return fmt.Errorf("%s %s: %w", c.service, endpoint, domain.ErrNotFound)

		case http.StatusUnauthorized:
			drain(resp)
			return fmt.Errorf("%s %s: %w", c.service, endpoint, domain.ErrUnauthorized)

		case http.StatusForbidden:
			drain(resp)
			return fmt.Errorf("%s %s: %w", c.service, endpoint, domain.ErrForbidden)

		case http.StatusTooManyRequests, http.StatusInternalServerError,
			http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			wait := retryAfter(resp)
			drain(resp)
			if wait == 0 {
				wait = backoff(i)
			}
			lastErr = fmt.Errorf("%s %s: remote %d", c.service, endpoint, resp.StatusCode)
			if i < maxAttempts-1 && sleepCtx(ctx, wait) {
				continue
			}
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return lastErr

		default:
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			resp.Body.Close()
			return fmt.Errorf("%s %s: bad status %d: %s", c.service, endpoint, resp.StatusCode, strings.TrimSpace(string(b)))
		}
	}
	return lastErr
}

func drain(resp *http.Response) {
	io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

// sleepCtx waits for d or returns false if ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return true
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// retryAfter parses Retry-After (seconds or HTTP-date); 0 when absent.
func retryAfter(resp *http.Response) time.Duration {
	h := strings.TrimSpace(resp.Header.Get("Retry-After"))
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second
	}
	if t, err := http.ParseTime(h); err == nil {
		if d := time.Until(t); d > 0 {
			return d
		}
	}
	return 0
}

// backoff doubles from 100ms per attempt with up to +50% jitter.
func backoff(i int) time.Duration {
	base := time.Duration(1<<i) * 100 * time.Millisecond
	var b [1]byte
	if _, err := crand.Read(b[:]); err != nil {
		return base
	}
	return base + time.Duration(0.5*float64(b[0])/255.0*float64(base))
}
