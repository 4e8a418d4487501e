package imaging

import (
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
)

// Supported MIME types for encoded images.
const (
	MIMEPNG  = "image/png"
	MIMEJPEG = "image/jpeg"
	MIMEGIF  = "image/gif"
	MIMEWebP = "image/webp"
)

// DefaultMIME is used when no strategy can determine the type.
const DefaultMIME = MIMEJPEG

var supportedMIME = map[string]bool{
	MIMEPNG:  true,
	MIMEJPEG: true,
	MIMEGIF:  true,
	MIMEWebP: true,
}

var formatMIME = map[imaging.Format]string{
	imaging.JPEG: MIMEJPEG,
	imaging.PNG:  MIMEPNG,
	imaging.GIF:  MIMEGIF,
}

// mimeHint carries whatever is known about an image's origin.
type mimeHint struct {
	// ContentType is the raw Content-Type header of a fetched image, if any.
	ContentType string
	// Path is a filesystem path or the path component of a URL.
	Path string
}

// mimeStrategy tries to name the MIME type from a hint.
type mimeStrategy func(h mimeHint) (string, bool)

var (
	remoteStrategies = []mimeStrategy{mimeFromContentType, mimeFromExtension}
	localStrategies  = []mimeStrategy{mimeFromExtension}
)

// detectMIME runs strategies in order and returns the first answer,
// falling back to DefaultMIME.
func detectMIME(h mimeHint, strategies []mimeStrategy) string {
	for _, strategy := range strategies {
		if mime, ok := strategy(h); ok {
			return mime
		}
	}
	return DefaultMIME
}

// mimeFromContentType accepts a header naming one of the supported image types.
// Parameters such as "; charset=..." are ignored.
func mimeFromContentType(h mimeHint) (string, bool) {
	mediaType, _, _ := strings.Cut(h.ContentType, ";")
	mediaType = strings.ToLower(strings.TrimSpace(mediaType))
	if !strings.HasPrefix(mediaType, "image/") {
		return "", false
	}
	return mediaType, supportedMIME[mediaType]
}

// mimeFromExtension maps the file extension. WebP is handled here because
// the imaging library does not know it.
func mimeFromExtension(h mimeHint) (string, bool) {
	if h.Path == "" {
		return "", false
	}
	if strings.EqualFold(filepath.Ext(h.Path), ".webp") {
		return MIMEWebP, true
	}
	format, err := imaging.FormatFromFilename(h.Path)
	if err != nil {
		return "", false
	}
	mime, ok := formatMIME[format]
	return mime, ok
}
