package service

import (
	"context"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/version"
)

// WebSocketTransport reads log events as websocket text frames.
type WebSocketTransport struct {
	URL     func(key string) string // ws:// or wss:// URL for an application key
	Auth    auth.Authenticator
	Dialer  *websocket.Dialer
	Backoff Backoff
	Log     *logrus.Entry
}

func (t *WebSocketTransport) Name() string { return "websocket" }

// Stream implements Transport.
func (t *WebSocketTransport) Stream(ctx context.Context, key string, out chan<- Frame) {
	log := t.Log
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	log = log.WithFields(logrus.Fields{"transport": "websocket", "application": key})

	streamWithRetry(ctx, t.Backoff, log, out, func(ctx context.Context, emit func([]byte) bool) (bool, error) {
		return t.connect(ctx, key, emit)
	})
}

func (t *WebSocketTransport) connect(ctx context.Context, key string, emit func([]byte) bool) (bool, error) {
	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())
	if t.Auth != nil {
		t.Auth.Authorize(header)
	}

	dialer := t.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	conn, resp, err := dialer.DialContext(ctx, t.URL(key), header)
	if err != nil {
		if resp != nil {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
			resp.Body.Close()
			return false, statusError(resp.StatusCode, body)
		}
		return false, err
	}
	defer conn.Close()

	// ReadMessage does not observe ctx; closing the conn unblocks it.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		mt, message, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return true, nil
			}
			return true, err
		}
		if mt != websocket.TextMessage || len(message) == 0 {
			continue
		}
		if !emit(message) {
			return true, ctx.Err()
		}
	}
}
