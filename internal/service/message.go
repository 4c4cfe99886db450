package service

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// ErrUnknownKind is returned for payloads that are neither data nor system messages.
var ErrUnknownKind = errors.New("unknown message kind")

// Message is one decoded stream event.
type Message struct {
	Kind           LineKind
	Text           string // row for data, message for system
	Timestamp      string
	ReplaceLastRow bool
}

// Line converts the message into the buffer line it produces.
func (m Message) Line() Line {
	return Line{Content: m.Text, Timestamp: m.Timestamp, Kind: m.Kind}
}

// DecodeMessage parses one event payload.
//
// An explicit "type" field ("data" or "system") selects the kind. Without it the
// kind is inferred: a "row" field means data, a "message" field means system.
// A missing timestamp is filled from now.
func DecodeMessage(payload []byte, now time.Time) (Message, error) {
	if !gjson.ValidBytes(payload) {
		return Message{}, fmt.Errorf("payload is not JSON: %w", ErrMalformed)
	}
	doc := gjson.ParseBytes(payload)
	if !doc.IsObject() {
		return Message{}, fmt.Errorf("payload is not an object: %w", ErrMalformed)
	}

	row := doc.Get("row")
	message := doc.Get("message")

	var kind LineKind
	switch t := doc.Get("type"); {
	case t.Exists():
		switch strings.ToLower(t.String()) {
		case "data":
			kind = LineData
		case "system":
			kind = LineSystem
		default:
			return Message{}, fmt.Errorf("type %q: %w", t.String(), ErrUnknownKind)
		}
	case row.Exists():
		kind = LineData
	case message.Exists():
		kind = LineSystem
	default:
		return Message{}, ErrUnknownKind
	}

	msg := Message{Kind: kind, Timestamp: Timestamp(now)}
	if ts := doc.Get("timestamp"); ts.Exists() {
		if ts.Type != gjson.String {
			return Message{}, fmt.Errorf("timestamp must be a string: %w", ErrMalformed)
		}
		msg.Timestamp = ts.String()
	}

	switch kind {
	case LineData:
		if row.Type != gjson.String {
			return Message{}, fmt.Errorf("data message needs a string row: %w", ErrMalformed)
		}
		msg.Text = row.String()
		if r := doc.Get("replaceLastRow"); r.Exists() {
			if r.Type != gjson.True && r.Type != gjson.False {
				return Message{}, fmt.Errorf("replaceLastRow must be a boolean: %w", ErrMalformed)
			}
			msg.ReplaceLastRow = r.Bool()
		}
	case LineSystem:
		if message.Type != gjson.String {
			return Message{}, fmt.Errorf("system message needs a string message: %w", ErrMalformed)
		}
		msg.Text = message.String()
	}
	return msg, nil
}

// ApplyMessage performs the buffer mutation a decoded message calls for.
func ApplyMessage(b *LineBuffer, m Message) {
	if m.Kind == LineData && m.ReplaceLastRow {
		b.ReplaceLast(m.Line())
		return
	}
	b.Append(m.Line())
}
