package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/internal/config"
	svc "github.com/oarafat/podtail/internal/service"
)

func TestClientListApplications(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/applications", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		w.Write([]byte(`[{"name":"api"},{"application":"shop","podName":"shop-1"},{"application":"shop","podName":"shop-2"}]`))
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.ServerURL = srv.URL
	c := NewClient(auth.NewAPITokenAuth("tok"), cfg, nil)

	apps, err := c.ListApplications(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []svc.Application{
		svc.SinglePod{Name: "api"},
		svc.MultiPod{Application: "shop", PodName: "shop-1"},
		svc.MultiPod{Application: "shop", PodName: "shop-2"},
	}, apps)
}

func TestClientListApplicationsHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := &Client{URL: srv.URL}
	_, err := c.ListApplications(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "502")
}

func TestParseApplications(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr bool
	}{
		{"array", `[{"name":"a"}]`, 1, false},
		{"wrapped", `{"applications":[{"name":"a"},{"name":"b"}]}`, 2, false},
		{"empty", `[]`, 0, false},
		{"bad entry", `[{"name":"a"},{"pod":"x"}]`, 0, true},
		{"no list", `{"items":[]}`, 0, true},
		{"not json", `<html>`, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			apps, err := ParseApplications([]byte(tt.body))
			if tt.wantErr {
				assert.ErrorIs(t, err, svc.ErrMalformed)
				return
			}
			require.NoError(t, err)
			assert.Len(t, apps, tt.want)
		})
	}
}

func TestFileDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apps.jsonc")
	doc := `{
  // local cluster
  "applications": [
    {"name": "api"},
    {"application": "worker", "podName": "worker-0"}, // trailing comma
  ],
}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0600))

	cfg := config.Default()
	cfg.DirectoryFile = path
	dir := NewDirectory(auth.NoAuth{}, cfg, nil)
	require.IsType(t, &FileDirectory{}, dir)

	apps, err := dir.ListApplications(context.Background())
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, "worker - worker-0", apps[1].Label())
}

func TestFileDirectoryMissing(t *testing.T) {
	d := &FileDirectory{Path: filepath.Join(t.TempDir(), "nope.jsonc")}
	_, err := d.ListApplications(context.Background())
	assert.Error(t, err)
}
