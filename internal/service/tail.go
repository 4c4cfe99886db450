package service

import (
	"context"
	"sync"
)

const framesBuffer = 64

// SessionState is the lifecycle position of a tail session.
type SessionState int

const (
	StateIdle SessionState = iota
	StateConnecting
	StateStreaming
	StateError
	StateClosed
)

func (s SessionState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateStreaming:
		return "live"
	case StateError:
		return "error"
	case StateClosed:
		return "closed"
	default:
		return "idle"
	}
}

// TailSession owns one live stream for a selected application.
type TailSession struct {
	ID  uint64 // monotonic generation; later selections get larger IDs
	App Application

	state  SessionState
	cancel context.CancelFunc
	frames chan Frame
	once   sync.Once
}

// StartTail opens a session and starts streaming in the background. The frames
// channel is closed once the transport gives up or the session is stopped.
func StartTail(ctx context.Context, id uint64, app Application, t Transport) *TailSession {
	streamCtx, cancel := context.WithCancel(ctx)
	s := &TailSession{
		ID:     id,
		App:    app,
		state:  StateConnecting,
		cancel: cancel,
		frames: make(chan Frame, framesBuffer),
	}

	go func() {
		defer close(s.frames)
		t.Stream(streamCtx, app.Key(), s.frames)
	}()

	return s
}

// Frames returns the channel that receives stream frames.
func (s *TailSession) Frames() <-chan Frame {
	return s.frames
}

// State returns the current lifecycle state.
func (s *TailSession) State() SessionState {
	return s.state
}

// Stop releases the connection. Safe to call more than once.
func (s *TailSession) Stop() {
	s.once.Do(func() {
		s.cancel()
		s.state = StateClosed
	})
}
