package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// ErrStreamEnded is reported when the server closes a stream cleanly.
var ErrStreamEnded = errors.New("stream ended by server")

// ErrRetriesExhausted is returned by Backoff.Wait once the attempt limit is hit.
var ErrRetriesExhausted = errors.New("retry limit reached")

// Frame is one delivery from a transport: either a payload or a transport error.
type Frame struct {
	Payload []byte
	Err     error
}

// Transport opens a live event stream for an application key.
type Transport interface {
	// Name identifies the transport in the header ("sse", "websocket").
	Name() string
	// Stream delivers frames to out until ctx is cancelled or retries are
	// exhausted. It does not close out.
	Stream(ctx context.Context, key string, out chan<- Frame)
}

// Backoff is an exponential reconnect delay. Each Wait doubles the delay up to
// Max; Reset returns it to Initial after a successful connect. Limit caps the
// number of consecutive waits (0 = unlimited). The SSE transport hands the same
// settings to go-sse instead of calling Wait.
type Backoff struct {
	Initial time.Duration
	Max     time.Duration
	Limit   int

	attempts int
	next     time.Duration
}

// Wait sleeps for the current delay. It returns ctx.Err() if cancelled first,
// or ErrRetriesExhausted once Limit consecutive waits have been spent.
func (b *Backoff) Wait(ctx context.Context) error {
	if b.Limit > 0 && b.attempts >= b.Limit {
		return ErrRetriesExhausted
	}
	if b.next <= 0 {
		b.next = b.Initial
	}
	delay := b.next
	b.attempts++
	b.next *= 2
	if b.Max > 0 && b.next > b.Max {
		b.next = b.Max
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reset forgets prior failures.
func (b *Backoff) Reset() {
	b.attempts = 0
	b.next = b.Initial
}

// connectFunc runs one connection attempt. It calls emit for each payload and
// returns whether the connection was established along with the reason it ended.
type connectFunc func(ctx context.Context, emit func([]byte) bool) (connected bool, err error)

// streamWithRetry drives connect in a reconnect loop. Every failed or dropped
// connection produces exactly one error frame.
func streamWithRetry(ctx context.Context, b Backoff, log *logrus.Entry, out chan<- Frame, connect connectFunc) {
	emit := func(p []byte) bool {
		select {
		case out <- Frame{Payload: p}:
			return true
		case <-ctx.Done():
			return false
		}
	}

	for {
		connected, err := connect(ctx, emit)
		if ctx.Err() != nil {
			return
		}
		if connected {
			b.Reset()
		}
		if err == nil {
			err = ErrStreamEnded
		}
		log.WithError(err).WithField("connected", connected).Warn("stream connection lost")

		select {
		case out <- Frame{Err: err}:
		case <-ctx.Done():
			return
		}

		if werr := b.Wait(ctx); werr != nil {
			if errors.Is(werr, ErrRetriesExhausted) {
				log.WithField("attempts", b.Limit).Warn("giving up on stream")
			}
			return
		}
	}
}

// statusError describes a non-2xx handshake response.
func statusError(code int, body []byte) error {
	if len(body) > 0 {
		return fmt.Errorf("server returned HTTP %d: %s", code, truncateBody(body))
	}
	return fmt.Errorf("server returned HTTP %d", code)
}

func truncateBody(b []byte) string {
	const max = 200
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}
