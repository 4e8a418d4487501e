package imaging

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"

	"go.uber.org/zap"
)

// FileReadError reports a local image that could not be read.
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	return fmt.Sprintf("failed to read image %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error { return e.Err }

// FetchError reports a remote image that could not be downloaded.
// StatusCode is zero when the request itself failed.
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("failed to fetch image %s: status %d", e.URL, e.StatusCode)
	}
	return fmt.Sprintf("failed to fetch image %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Resolver turns an image reference (local path, http(s) URL or data URI)
// into a self-contained data URI.
//
// Nothing is cached: every Resolve call performs exactly one file read or
// one HTTP GET. A Resolver is safe for concurrent use.
type Resolver struct {
	client *http.Client
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil client means http.DefaultClient,
// a nil logger disables logging.
func NewResolver(client *http.Client, logger *zap.Logger) *Resolver {
	if client == nil {
		client = http.DefaultClient
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{client: client, logger: logger}
}

// IsDataURI reports whether ref is already an inline encoded image.
func IsDataURI(ref string) bool {
	return strings.HasPrefix(ref, "data:")
}

// IsRemote reports whether ref is an http or https URL (case-insensitive scheme).
func IsRemote(ref string) bool {
	lower := strings.ToLower(ref)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// EncodeDataURI builds "data:<mime>;base64,<payload>".
func EncodeDataURI(mime string, data []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// Resolve returns ref encoded as a data URI.
//
// Data URIs are returned unchanged. URLs are fetched and typed from the
// Content-Type header, then the URL extension. Local paths are read relative
// to the working directory and typed from their extension. Anything
// undeterminable becomes image/jpeg.
func (r *Resolver) Resolve(ctx context.Context, ref string) (string, error) {
	switch {
	case IsDataURI(ref):
		return ref, nil
	case IsRemote(ref):
		return r.fetch(ctx, ref)
	default:
		return r.readFile(ref)
	}
}

func (r *Resolver) readFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", &FileReadError{Path: path, Err: err}
	}
	mime := detectMIME(mimeHint{Path: path}, localStrategies)
	r.logger.Debug("resolved local image", zap.String("path", path), zap.String("mime", mime), zap.Int("bytes", len(data)))
	return EncodeDataURI(mime, data), nil
}

func (r *Resolver) fetch(ctx context.Context, rawURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	resp, err := r.client.Do(req)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", &FetchError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", &FetchError{URL: rawURL, Err: err}
	}

	hint := mimeHint{ContentType: resp.Header.Get("Content-Type")}
	if u, err := url.Parse(rawURL); err == nil {
		hint.Path = u.Path
	}
	mime := detectMIME(hint, remoteStrategies)
	r.logger.Debug("resolved remote image", zap.String("url", rawURL), zap.String("mime", mime), zap.Int("bytes", len(data)))
	return EncodeDataURI(mime, data), nil
}
