// Package upload publishes report artifacts to a pre-signed HTTPS endpoint
// after a run completes.
package upload

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/vk/critgridgo/internal/ctxlog"
)

// httpClient is shared across uploads to reuse TCP connections.
var httpClient = &http.Client{}

// File uploads a single file with a PUT request, inferring the content type
// from the file extension.
func File(ctx context.Context, uploadURL, filePath string) error {
	logger := ctxlog.FromContext(ctx).With("url", uploadURL)

	file, err := os.Open(filePath)
	if err != nil {
		return fmt.Errorf("failed to open artifact '%s': %w", filePath, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat artifact '%s': %w", filePath, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading artifact.", "source", filePath, "size", stat.Size(), "contentType", contentType)

	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("upload of '%s' failed with status: %s", filePath, resp.Status)
	}
	logger.Info("Artifact uploaded.", "status", resp.Status)
	return nil
}

// Bundle uploads the named files from dir, appending each file name to the
// endpoint's path.
func Bundle(ctx context.Context, endpoint, dir string, files []string) error {
	base, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("invalid publish url: %w", err)
	}
	for _, name := range files {
		target := *base
		target.Path = path.Join(target.Path, name)
		if err := File(ctx, target.String(), filepath.Join(dir, name)); err != nil {
			return err
		}
	}
	return nil
}
