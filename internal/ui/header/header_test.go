package header

import (
	"strings"
	"testing"

	"github.com/oarafat/podtail/internal/config"
	svc "github.com/oarafat/podtail/internal/service"
)

func TestViewShowsTargetAndState(t *testing.T) {
	cfg := config.Default()
	cfg.ServerURL = "https://logs.example.com"
	m := New(cfg)
	m.SetWidth(120)
	m.SetTarget("shop - shop-0", svc.StateStreaming)

	view := m.View()
	for _, want := range []string{"podtail", "shop - shop-0", "live", "logs.example.com", "sse"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q: %s", want, view)
		}
	}
}

func TestBadge(t *testing.T) {
	tests := map[svc.SessionState]string{
		svc.StateIdle:       "idle",
		svc.StateConnecting: "connecting",
		svc.StateStreaming:  "live",
		svc.StateError:      "error",
		svc.StateClosed:     "closed",
	}
	for state, want := range tests {
		if got := Badge(state); !strings.Contains(got, want) {
			t.Errorf("Badge(%v) = %q, want %q", state, got, want)
		}
	}
}

func TestTokenHintFollowsCredentials(t *testing.T) {
	tests := []struct {
		name   string
		method config.AuthMethod
		token  string
		want   bool
	}{
		{"token", config.AuthMethodAPIToken, "secret", true},
		{"method without token", config.AuthMethodAPIToken, "", false},
		{"no auth", config.AuthMethodNone, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.AuthMethod = tt.method
			cfg.APIToken = tt.token
			m := New(cfg)
			m.SetWidth(120)
			if got := strings.Contains(m.View(), "· token"); got != tt.want {
				t.Errorf("token hint shown = %v, want %v", got, tt.want)
			}
		})
	}
}
