package service

import "time"

// TimestampLayout is UTC at second precision with no zone suffix.
const TimestampLayout = "2006-01-02T15:04:05"

// LineKind distinguishes streamed output from notices generated by podtail.
type LineKind int

const (
	LineData LineKind = iota
	LineSystem
)

func (k LineKind) String() string {
	if k == LineSystem {
		return "system"
	}
	return "data"
}

// Line is one timestamped unit of terminal output.
type Line struct {
	Content   string
	Timestamp string
	Kind      LineKind
}

// Timestamp formats t the way lines carry it.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// SystemLine builds a System line stamped at t.
func SystemLine(text string, t time.Time) Line {
	return Line{Content: text, Timestamp: Timestamp(t), Kind: LineSystem}
}

// LineBuffer is the ordered sequence of displayed lines.
// With maxLines > 0 the oldest lines are evicted once the cap is reached;
// with 0 it grows without bound.
type LineBuffer struct {
	lines    []Line
	maxLines int
}

// NewLineBuffer creates an empty buffer. maxLines <= 0 means unbounded.
func NewLineBuffer(maxLines int) *LineBuffer {
	if maxLines < 0 {
		maxLines = 0
	}
	return &LineBuffer{maxLines: maxLines}
}

// Reset replaces the whole contents with the single seed line.
func (b *LineBuffer) Reset(seed Line) {
	b.lines = append(b.lines[:0:0], seed)
}

// Append adds a line at the end.
func (b *LineBuffer) Append(l Line) {
	b.lines = append(b.lines, l)
	if b.maxLines > 0 && len(b.lines) > b.maxLines {
		b.lines = b.lines[len(b.lines)-b.maxLines:]
	}
}

// ReplaceLast overwrites the final line in place, or appends when empty.
func (b *LineBuffer) ReplaceLast(l Line) {
	if len(b.lines) == 0 {
		b.Append(l)
		return
	}
	b.lines[len(b.lines)-1] = l
}

// Clear empties the buffer.
func (b *LineBuffer) Clear() {
	b.lines = nil
}

// Len returns the number of lines held.
func (b *LineBuffer) Len() int { return len(b.lines) }

// Lines returns a copy of the current contents.
func (b *LineBuffer) Lines() []Line {
	cp := make([]Line, len(b.lines))
	copy(cp, b.lines)
	return cp
}
