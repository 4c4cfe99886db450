package auth

import (
	"fmt"
	"net/http"

	"github.com/oarafat/podtail/internal/config"
)

// Authenticator attaches credentials to outgoing log-server requests.
type Authenticator interface {
	// Method returns which auth method this authenticator uses.
	Method() config.AuthMethod

	// Authorize sets the credential headers on h. Directory requests, stream
	// requests and the websocket handshake all pass through here.
	Authorize(h http.Header)
}

// NoAuth sends requests without credentials.
type NoAuth struct{}

func (NoAuth) Method() config.AuthMethod { return config.AuthMethodNone }
func (NoAuth) Authorize(http.Header)     {}

// New creates an Authenticator from the given config.
func New(cfg *config.Config) (Authenticator, error) {
	switch cfg.AuthMethod {
	case config.AuthMethodNone:
		return NoAuth{}, nil
	case config.AuthMethodAPIToken:
		return NewAPITokenAuth(cfg.APIToken), nil
	default:
		return nil, fmt.Errorf("unknown auth method: %s", cfg.AuthMethod)
	}
}
