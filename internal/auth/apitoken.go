package auth

import (
	"net/http"

	"github.com/oarafat/podtail/internal/config"
)

// APITokenAuth authenticates using a static API token (Bearer).
type APITokenAuth struct {
	token string
}

// NewAPITokenAuth creates a new API Token authenticator.
func NewAPITokenAuth(token string) *APITokenAuth {
	return &APITokenAuth{token: token}
}

func (a *APITokenAuth) Method() config.AuthMethod { return config.AuthMethodAPIToken }

// Authorize sets the Authorization header unless one is already present.
func (a *APITokenAuth) Authorize(h http.Header) {
	if a.token == "" || h.Get("Authorization") != "" {
		return
	}
	h.Set("Authorization", "Bearer "+a.token)
}
