package transfer

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/specialistvlad/scriptbridge/internal/ctxlog"
)

// Upload PUTs the file at path to a pre-signed URL. The content type comes
// from the file extension.
func Upload(ctx context.Context, client *http.Client, path, uploadURL string) error {
	logger := ctxlog.FromContext(ctx).With("component", "transfer", "action", "upload")

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open source file '%s': %w", path, err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to get file stats for '%s': %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, uploadURL, file)
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = stat.Size()

	logger.Info("Uploading file", "source", path, "size", stat.Size(), "contentType", contentType)

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute upload request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("upload failed with status: %s", resp.Status)
	}

	logger.Info("Successfully uploaded file", "status", resp.Status)
	return nil
}
