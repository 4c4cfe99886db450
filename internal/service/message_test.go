package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

func TestDecodeMessage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    Message
	}{
		{
			name:    "data append",
			payload: `{"row":"hello","timestamp":"2024-01-01T00:00:00","replaceLastRow":false}`,
			want:    Message{Kind: LineData, Text: "hello", Timestamp: "2024-01-01T00:00:00"},
		},
		{
			name:    "data replace",
			payload: `{"row":"50%","timestamp":"2024-01-01T00:00:01","replaceLastRow":true}`,
			want:    Message{Kind: LineData, Text: "50%", Timestamp: "2024-01-01T00:00:01", ReplaceLastRow: true},
		},
		{
			name:    "system",
			payload: `{"message":"pod restarted","timestamp":"2024-01-01T00:00:02"}`,
			want:    Message{Kind: LineSystem, Text: "pod restarted", Timestamp: "2024-01-01T00:00:02"},
		},
		{
			name:    "explicit type",
			payload: `{"type":"System","message":"done"}`,
			want:    Message{Kind: LineSystem, Text: "done", Timestamp: "2024-01-02T03:04:05"},
		},
		{
			name:    "missing timestamp uses now",
			payload: `{"row":"x"}`,
			want:    Message{Kind: LineData, Text: "x", Timestamp: "2024-01-02T03:04:05"},
		},
		{
			name:    "empty row is valid",
			payload: `{"row":""}`,
			want:    Message{Kind: LineData, Text: "", Timestamp: "2024-01-02T03:04:05"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeMessage([]byte(tt.payload), fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecodeMessageFailures(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    error
	}{
		{"not json", `row=hello`, ErrMalformed},
		{"array", `[1,2]`, ErrMalformed},
		{"unknown shape", `{"level":"info"}`, ErrUnknownKind},
		{"unknown type", `{"type":"metric","row":"x"}`, ErrUnknownKind},
		{"row not string", `{"row":42}`, ErrMalformed},
		{"data type without row", `{"type":"data","message":"x"}`, ErrMalformed},
		{"replace not bool", `{"row":"x","replaceLastRow":"yes"}`, ErrMalformed},
		{"timestamp not string", `{"message":"x","timestamp":12}`, ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeMessage([]byte(tt.payload), fixedNow)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestApplyMessageSystemNeverReplaces(t *testing.T) {
	b := NewLineBuffer(0)
	b.Append(dataLine("a"))
	ApplyMessage(b, Message{Kind: LineSystem, Text: "n", ReplaceLastRow: true})
	assert.Equal(t, 2, b.Len())
}
