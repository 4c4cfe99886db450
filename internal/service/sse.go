package service

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tmaxmax/go-sse"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/version"
)

// sseMultiplier matches the doubling of the websocket Backoff.
const sseMultiplier = 2

// SSETransport reads log events from a text/event-stream endpoint. Reconnects
// are driven by the go-sse connection; every failed attempt becomes an error frame.
type SSETransport struct {
	URL     func(key string) string // stream URL for an application key
	Auth    auth.Authenticator
	Client  *http.Client
	Backoff Backoff
	Log     *logrus.Entry
}

func (t *SSETransport) Name() string { return "sse" }

// Stream implements Transport.
func (t *SSETransport) Stream(ctx context.Context, key string, out chan<- Frame) {
	log := t.logger(key)

	send := func(f Frame) bool {
		select {
		case out <- f:
			return true
		case <-ctx.Done():
			return false
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.URL(key), nil)
	if err != nil {
		send(Frame{Err: err})
		return
	}
	req.Header.Set("User-Agent", version.UserAgent())
	if t.Auth != nil {
		t.Auth.Authorize(req.Header)
	}

	client := &sse.Client{
		HTTPClient:        t.Client,
		ResponseValidator: validateStream,
		Backoff:           t.Backoff.sseBackoff(),
		OnRetry: func(err error, next time.Duration) {
			if errors.Is(err, io.EOF) {
				err = ErrStreamEnded
			}
			log.WithError(err).WithField("retry_in", next).Warn("stream connection lost")
			send(Frame{Err: err})
		},
	}
	conn := client.NewConnection(req)
	conn.SubscribeToAll(func(ev sse.Event) {
		if ev.Data == "" {
			return
		}
		send(Frame{Payload: []byte(ev.Data)})
	})

	err = conn.Connect()
	if ctx.Err() != nil {
		return
	}
	log.WithError(err).Warn("giving up on stream")
	send(Frame{Err: err})
}

// validateStream rejects non-200 handshakes. go-sse treats validation errors
// as permanent, so a rejected stream is not retried.
func validateStream(resp *http.Response) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return statusError(resp.StatusCode, body)
}

// sseBackoff maps the retry settings onto go-sse's. go-sse counts 0 retries as
// unlimited and negative as none, the same as Limit.
func (b Backoff) sseBackoff() sse.Backoff {
	limit := b.Limit
	if limit < 0 {
		limit = -1
	}
	return sse.Backoff{
		InitialInterval: b.Initial,
		Multiplier:      sseMultiplier,
		MaxInterval:     b.Max,
		MaxRetries:      limit,
	}
}

func (t *SSETransport) logger(key string) *logrus.Entry {
	log := t.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return log.WithFields(logrus.Fields{"transport": "sse", "application": key})
}
