package service

import (
	"errors"
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// Application identifies a stream target. It is a closed set: SinglePod or MultiPod.
type Application interface {
	// Key is the transport-safe serialized form sent to the stream endpoint.
	// Two applications are the same target iff their keys match.
	Key() string
	// Label is the human-readable name shown in the selector and headers.
	Label() string

	isApplication()
}

// SinglePod is an application that runs as a single process.
type SinglePod struct {
	Name string
}

// MultiPod is one pod of an application that runs several.
type MultiPod struct {
	Application string
	PodName     string
}

func (SinglePod) isApplication() {}
func (MultiPod) isApplication()  {}

func (a SinglePod) Key() string {
	k, _ := sjson.Set("", "name", a.Name)
	return k
}

func (a MultiPod) Key() string {
	k, _ := sjson.Set("", "application", a.Application)
	k, _ = sjson.Set(k, "podName", a.PodName)
	return k
}

func (a SinglePod) Label() string { return a.Name }
func (a MultiPod) Label() string  { return a.Application + " - " + a.PodName }

// SameApplication reports whether a and b address the same stream target.
func SameApplication(a, b Application) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Key() == b.Key()
}

// ErrMalformed is returned when a JSON document does not have the expected shape.
var ErrMalformed = errors.New("malformed payload")

// ParseApplication reads one directory entry. Entries carrying "application"
// are pods of a multi-pod app; entries carrying only "name" are single pods.
func ParseApplication(r gjson.Result) (Application, error) {
	if !r.IsObject() {
		return nil, fmt.Errorf("application entry is not an object: %w", ErrMalformed)
	}
	if app := r.Get("application"); app.Exists() {
		pod := r.Get("podName")
		if app.Type != gjson.String || pod.Type != gjson.String {
			return nil, fmt.Errorf("multi-pod entry needs string application and podName: %w", ErrMalformed)
		}
		return MultiPod{Application: app.String(), PodName: pod.String()}, nil
	}
	if name := r.Get("name"); name.Type == gjson.String {
		return SinglePod{Name: name.String()}, nil
	}
	return nil, fmt.Errorf("application entry has neither name nor application: %w", ErrMalformed)
}
