package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/oarafat/podtail/internal/auth"
	"github.com/oarafat/podtail/internal/config"
	svc "github.com/oarafat/podtail/internal/service"
	"github.com/oarafat/podtail/version"
)

const maxDirectoryBody = 4 << 20

// Directory lists the applications that can be tailed.
type Directory interface {
	ListApplications(ctx context.Context) ([]svc.Application, error)
}

// Client fetches the application directory from the log server.
type Client struct {
	URL  string
	Auth auth.Authenticator
	HTTP *http.Client
	Log  *logrus.Entry
}

// NewClient creates a directory client from the given authenticator and config.
func NewClient(a auth.Authenticator, cfg *config.Config, log *logrus.Entry) *Client {
	return &Client{
		URL:  cfg.ApplicationsURL(),
		Auth: a,
		HTTP: &http.Client{Timeout: 15 * time.Second},
		Log:  log,
	}
}

// NewDirectory picks the file-backed directory when one is configured,
// otherwise the HTTP client.
func NewDirectory(a auth.Authenticator, cfg *config.Config, log *logrus.Entry) Directory {
	if cfg.DirectoryFile != "" {
		return &FileDirectory{Path: cfg.DirectoryFile}
	}
	return NewClient(a, cfg, log)
}

// ListApplications returns the selectable applications in server order.
func (c *Client) ListApplications(ctx context.Context) ([]svc.Application, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())
	if c.Auth != nil {
		c.Auth.Authorize(req.Header)
	}

	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to list applications: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDirectoryBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list applications: HTTP %d", resp.StatusCode)
	}

	apps, err := ParseApplications(body)
	if err != nil {
		return nil, err
	}
	if c.Log != nil {
		c.Log.WithField("count", len(apps)).Debug("fetched application directory")
	}
	return apps, nil
}

// ParseApplications decodes a directory document. It accepts a bare array or an
// object wrapping the array under "applications".
func ParseApplications(body []byte) ([]svc.Application, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("directory response is not JSON: %w", svc.ErrMalformed)
	}
	doc := gjson.ParseBytes(body)
	if doc.IsObject() {
		doc = doc.Get("applications")
	}
	if !doc.IsArray() {
		return nil, fmt.Errorf("directory response has no application list: %w", svc.ErrMalformed)
	}

	var (
		apps   []svc.Application
		outErr error
	)
	doc.ForEach(func(idx, entry gjson.Result) bool {
		app, err := svc.ParseApplication(entry)
		if err != nil {
			outErr = fmt.Errorf("application %d: %w", idx.Int(), err)
			return false
		}
		apps = append(apps, app)
		return true
	})
	if outErr != nil {
		return nil, outErr
	}
	return apps, nil
}
