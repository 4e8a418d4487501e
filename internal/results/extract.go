package results

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/ironsheep/vision-tools-mcp/internal/gradio"
)

// Extractor downloads the files named in a prediction envelope.
type Extractor struct {
	client *http.Client
	logger *zap.Logger
}

// NewExtractor creates an Extractor. A nil client means http.DefaultClient.
func NewExtractor(client *http.Client, logger *zap.Logger) *Extractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Extractor{client: client, logger: logger}
}

// FileName is the local name of item j of group i.
func FileName(group, item int, name string) string {
	base := path.Base(strings.ReplaceAll(name, `\`, "/"))
	return fmt.Sprintf("result_%d_%d_%s", group, item, base)
}

// FileURL is where the backend serves a result file.
func FileURL(endpoint, name string) string {
	return strings.TrimRight(endpoint, "/") + "/file=" + name
}

// Extract downloads every downloadable entry of env into outputDir and
// returns the saved paths in group order, then item order.
//
// An envelope without a data array yields no paths and no error. The first
// failed download aborts extraction with *DownloadError; files saved before
// it stay on disk.
func (x *Extractor) Extract(ctx context.Context, env *gradio.Envelope, endpoint, outputDir string) ([]string, error) {
	groups := env.Groups()
	if groups == nil {
		x.logger.Debug("envelope has no result groups")
		return []string{}, nil
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, &DownloadError{Path: outputDir, Err: fmt.Errorf("create output directory: %w", err)}
	}

	saved := []string{}
	for i, group := range groups {
		for j, ref := range group {
			if !ref.Downloadable() {
				continue
			}
			url := FileURL(endpoint, ref.Name)
			dest := filepath.Join(outputDir, FileName(i, j, ref.Name))
			if err := Download(ctx, x.client, url, dest); err != nil {
				x.logger.Warn("result download failed",
					zap.String("url", url),
					zap.Int("saved_before_failure", len(saved)),
					zap.Error(err))
				return saved, err
			}
			x.logger.Debug("saved result", zap.String("path", dest))
			saved = append(saved, dest)
		}
	}
	return saved, nil
}
