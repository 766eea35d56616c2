package transfer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
)

// FetchBundle makes sure dest holds the bundle served at sourceURL and
// reports whether it had to download it. An existing dest is used as is. The download lands in a temporary file next
// to dest and is renamed into place, so dest is never left half written.
func FetchBundle(ctx context.Context, client *http.Client, sourceURL, dest string) (bool, error) {
	logger := ctxlog.FromContext(ctx).With("component", "transfer", "url", sourceURL)

	if _, err := os.Stat(dest); err == nil {
		logger.Debug("Using cached bundle.", "path", dest)
		return false, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("failed to stat cached bundle '%s': %w", dest, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}

	logger.Info("Downloading bundle", "dest", dest)
	resp, err := client.Do(req)
	if err != nil {
		return false, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false, fmt.Errorf("bundle download failed with status: %s", resp.Status)
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("failed to create cache directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".bundle-*")
	if err != nil {
		return false, fmt.Errorf("failed to create temporary file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return false, fmt.Errorf("failed to read response body: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return false, fmt.Errorf("failed to move bundle into place: %w", err)
	}

	logger.Info("Bundle downloaded", "bytes", n, "status", resp.Status)
	return true, nil
}
