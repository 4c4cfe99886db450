package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/internal/logging"
)

func fastBackoff(limit int) Backoff {
	return Backoff{Initial: time.Millisecond, Max: 4 * time.Millisecond, Limit: limit}
}

// collect runs a transport to completion and returns every frame.
func collect(t *testing.T, tr Transport, key string) []Frame {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	s := StartTail(ctx, 1, SinglePod{Name: key}, tr)
	var frames []Frame
	for f := range s.Frames() {
		frames = append(frames, f)
	}
	require.NoError(t, ctx.Err(), "transport did not finish")
	return frames
}

func TestBackoffDoublesAndCaps(t *testing.T) {
	b := Backoff{Initial: time.Millisecond, Max: 3 * time.Millisecond, Limit: 3}
	ctx := context.Background()
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 2*time.Millisecond, b.next)
	require.NoError(t, b.Wait(ctx))
	assert.Equal(t, 3*time.Millisecond, b.next)
	require.NoError(t, b.Wait(ctx))
	assert.ErrorIs(t, b.Wait(ctx), ErrRetriesExhausted)

	b.Reset()
	assert.Equal(t, time.Millisecond, b.next)
	assert.NoError(t, b.Wait(ctx))
}

func TestBackoffHonoursContext(t *testing.T) {
	b := Backoff{Initial: time.Hour}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, b.Wait(ctx), context.Canceled)
}

func TestSSETransportStreamsAndRetries(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := requests.Add(1)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.Equal(t, "text/event-stream", r.Header.Get("Accept"))
		if n > 1 {
			http.Error(w, "gone", http.StatusInternalServerError)
			return
		}
		assert.Equal(t, `{"name":"api"}`, r.URL.Query().Get("application"))
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"row\":\"one\"}\n\n")
		fmt.Fprint(w, ": keepalive\n\n")
		fmt.Fprint(w, "data: {\"message\":\"two\"}\n\n")
		w.(http.Flusher).Flush()
	}))
	defer srv.Close()

	tr := &SSETransport{
		URL:     func(key string) string { return srv.URL + "/stream?application=" + url.QueryEscape(key) },
		Auth:    auth.NewAPITokenAuth("tok"),
		Backoff: fastBackoff(1),
		Log:     logging.Discard(),
	}
	frames := collect(t, tr, "api")

	require.Len(t, frames, 4)
	assert.Equal(t, `{"row":"one"}`, string(frames[0].Payload))
	assert.Equal(t, `{"message":"two"}`, string(frames[1].Payload))
	assert.ErrorIs(t, frames[2].Err, ErrStreamEnded)
	require.Error(t, frames[3].Err)
	assert.Contains(t, frames[3].Err.Error(), "500")
	assert.Equal(t, int32(2), requests.Load())
}

func TestSSETransportDoesNotRetryRejectedHandshake(t *testing.T) {
	var requests atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	tr := &SSETransport{
		URL:     func(string) string { return srv.URL },
		Backoff: fastBackoff(0),
		Log:     logging.Discard(),
	}
	frames := collect(t, tr, "api")

	require.Len(t, frames, 1)
	require.Error(t, frames[0].Err)
	assert.Contains(t, frames[0].Err.Error(), "403")
	assert.Equal(t, int32(1), requests.Load())
}

func TestBackoffMapsOntoSSE(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 8 * time.Second, Limit: 5}.sseBackoff()
	assert.Equal(t, time.Second, b.InitialInterval)
	assert.Equal(t, 8*time.Second, b.MaxInterval)
	assert.Equal(t, 5, b.MaxRetries)
	assert.Equal(t, float64(2), b.Multiplier)

	assert.Equal(t, 0, Backoff{}.sseBackoff().MaxRetries, "zero stays unlimited")
}

func TestSSETransportStopsOnCancel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"row\":\"hi\"}\n\n")
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	tr := &SSETransport{
		URL:     func(string) string { return srv.URL },
		Backoff: fastBackoff(0),
		Log:     logging.Discard(),
	}
	s := StartTail(context.Background(), 1, SinglePod{Name: "a"}, tr)
	f := <-s.Frames()
	assert.Equal(t, `{"row":"hi"}`, string(f.Payload))

	s.Stop()
	s.Stop()
	done := make(chan struct{})
	go func() {
		for range s.Frames() {
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("frames channel not closed after Stop")
	}
	assert.Equal(t, StateClosed, s.State())
}

func TestWebSocketTransportStreamsAndRetries(t *testing.T) {
	var requests atomic.Int32
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) > 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		conn.WriteMessage(websocket.TextMessage, []byte(`{"row":"ws1"}`))
		conn.WriteMessage(websocket.BinaryMessage, []byte{0x1})
		conn.WriteMessage(websocket.TextMessage, []byte(`{"row":"ws2","replaceLastRow":true}`))
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		conn.ReadMessage()
	}))
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http")
	tr := &WebSocketTransport{
		URL:     func(string) string { return wsURL },
		Backoff: fastBackoff(1),
		Log:     logging.Discard(),
	}
	frames := collect(t, tr, "api")

	require.Len(t, frames, 4)
	assert.Equal(t, `{"row":"ws1"}`, string(frames[0].Payload))
	assert.Equal(t, `{"row":"ws2","replaceLastRow":true}`, string(frames[1].Payload))
	assert.ErrorIs(t, frames[2].Err, ErrStreamEnded)
	require.Error(t, frames[3].Err)
	assert.Contains(t, frames[3].Err.Error(), "403")
}

func TestConsoleClosesWhenRetriesExhausted(t *testing.T) {
	// Nothing listens here, so every attempt fails to connect.
	srv := httptest.NewServer(http.NotFoundHandler())
	unreachable := srv.URL
	srv.Close()

	tr := &SSETransport{
		URL:     func(string) string { return unreachable },
		Backoff: fastBackoff(2),
		Log:     logging.Discard(),
	}
	c := NewConsole(tr, WithLogger(logging.Discard()))
	s := c.Select(context.Background(), SinglePod{Name: "a"})
	for f := range s.Frames() {
		c.Apply(s.ID, f)
	}
	require.True(t, c.Closed(s.ID))

	assert.Equal(t, []string{
		"system:Connected to application: a",
		"system:Connection error",
		"system:Connection error",
		"system:Connection error",
		"system:Connection closed",
	}, contents(c.Lines()))
	assert.Equal(t, StateClosed, c.State())
}
