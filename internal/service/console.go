package service

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
)

// Console is the session context a view owns: the line buffer, the active
// tail session and the generation counter used to ignore superseded streams.
// It is not safe for concurrent use; drive it from a single event loop.
type Console struct {
	lines     *LineBuffer
	active    *TailSession
	nextID    uint64
	transport Transport
	log       *logrus.Entry
	now       func() time.Time
}

// ConsoleOption customises a Console.
type ConsoleOption func(*Console)

// WithMaxLines bounds the buffer; 0 keeps it unbounded.
func WithMaxLines(n int) ConsoleOption {
	return func(c *Console) { c.lines = NewLineBuffer(n) }
}

// WithClock overrides the time source used for generated timestamps.
func WithClock(now func() time.Time) ConsoleOption {
	return func(c *Console) { c.now = now }
}

// WithLogger sets the logger used for decode drops and state changes.
func WithLogger(log *logrus.Entry) ConsoleOption {
	return func(c *Console) { c.log = log }
}

// NewConsole creates an idle console streaming through t.
func NewConsole(t Transport, opts ...ConsoleOption) *Console {
	c := &Console{
		lines:     NewLineBuffer(0),
		transport: t,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.log == nil {
		c.log = logrus.NewEntry(logrus.StandardLogger())
	}
	return c
}

// Select closes any prior session, resets the buffer to the connected notice
// and opens a new session for app.
func (c *Console) Select(ctx context.Context, app Application) *TailSession {
	if c.active != nil {
		c.active.Stop()
		c.log.WithField("session", c.active.ID).Debug("session superseded")
	}

	c.lines.Reset(SystemLine("Connected to application: "+app.Label(), c.now()))

	c.nextID++
	c.active = StartTail(ctx, c.nextID, app, c.transport)
	c.log.WithFields(logrus.Fields{
		"session":     c.active.ID,
		"application": app.Label(),
		"transport":   c.transport.Name(),
	}).Info("session started")
	return c.active
}

// Current reports whether sessionID belongs to the live session.
func (c *Console) Current(sessionID uint64) bool {
	return c.active != nil && c.active.ID == sessionID && c.active.state != StateClosed
}

// Apply feeds one frame from session sessionID into the buffer. Frames from a
// superseded or closed session are ignored. It reports whether the buffer changed.
func (c *Console) Apply(sessionID uint64, f Frame) bool {
	if !c.Current(sessionID) {
		return false
	}

	if f.Err != nil {
		c.active.state = StateError
		c.log.WithError(f.Err).WithField("session", sessionID).Warn("transport error")
		c.lines.Append(SystemLine("Connection error", c.now()))
		return true
	}

	c.active.state = StateStreaming
	msg, err := DecodeMessage(f.Payload, c.now())
	if err != nil {
		c.log.WithError(err).WithFields(logrus.Fields{
			"session": sessionID,
			"payload": truncateBody(f.Payload),
		}).Debug("dropping undecodable event")
		return false
	}
	ApplyMessage(c.lines, msg)
	return true
}

// Closed handles the end of a session's frame stream. It reports whether a
// notice was appended.
func (c *Console) Closed(sessionID uint64) bool {
	if !c.Current(sessionID) {
		return false
	}
	c.active.Stop()
	c.lines.Append(SystemLine("Connection closed", c.now()))
	c.log.WithField("session", sessionID).Info("session closed by transport")
	return true
}

// Teardown closes the active session, if any. Idempotent.
func (c *Console) Teardown() {
	if c.active != nil {
		c.active.Stop()
	}
}

// Clear empties the buffer without touching the connection.
func (c *Console) Clear() {
	c.lines.Clear()
}

// Notice appends a System line, e.g. a directory fetch failure.
func (c *Console) Notice(text string) {
	c.lines.Append(SystemLine(text, c.now()))
}

// Lines returns a copy of the buffer.
func (c *Console) Lines() []Line {
	return c.lines.Lines()
}

// Len returns the buffer length.
func (c *Console) Len() int {
	return c.lines.Len()
}

// Active returns the current session, or nil before any selection.
func (c *Console) Active() *TailSession {
	return c.active
}

// State returns the state of the current session, or Idle.
func (c *Console) State() SessionState {
	if c.active == nil {
		return StateIdle
	}
	return c.active.state
}

// TransportName returns the name of the configured transport.
func (c *Console) TransportName() string {
	return c.transport.Name()
}
