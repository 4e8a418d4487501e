package results

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// DownloadError reports a result file that could not be fetched or written.
type DownloadError struct {
	URL        string
	Path       string
	StatusCode int
	Err        error
}

func (e *DownloadError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("download of %s failed: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("download of %s to %s failed: %v", e.URL, e.Path, e.Err)
}

func (e *DownloadError) Unwrap() error { return e.Err }

// Download streams url into dest. The response must be 200 OK.
// A file left behind by a failed copy is not removed.
func Download(ctx context.Context, client *http.Client, url, dest string) error {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return &DownloadError{URL: url, Path: dest, Err: err}
	}
	resp, err := client.Do(req)
	if err != nil {
		return &DownloadError{URL: url, Path: dest, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &DownloadError{URL: url, Path: dest, StatusCode: resp.StatusCode}
	}

	f, err := os.Create(dest)
	if err != nil {
		return &DownloadError{URL: url, Path: dest, Err: err}
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return &DownloadError{URL: url, Path: dest, Err: err}
	}
	if err := f.Close(); err != nil {
		return &DownloadError{URL: url, Path: dest, Err: err}
	}
	return nil
}
