package api

import (
	"context"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	svc "github.com/oarafat/podtail/internal/service"
)

// FileDirectory serves the application list from a local JSONC file, for
// servers without a directory endpoint. Comments and trailing commas are allowed.
type FileDirectory struct {
	Path string
}

// ListApplications re-reads the file on every call so edits show up on refresh.
func (d *FileDirectory) ListApplications(ctx context.Context) ([]svc.Application, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(d.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory file: %w", err)
	}
	apps, err := ParseApplications(jsonc.ToJSON(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", d.Path, err)
	}
	return apps, nil
}
