package imaging

import (
	"bytes"
	"fmt"
	"image/color"
	"sync"

	"github.com/disintegration/imaging"
)

// MaskSize is the edge length in pixels of the placeholder mask.
const MaskSize = 10

var placeholderMask = sync.OnceValues(func() (string, error) {
	img := imaging.New(MaskSize, MaskSize, color.NRGBA{})

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return "", fmt.Errorf("failed to encode placeholder mask: %w", err)
	}
	return EncodeDataURI(MIMEPNG, buf.Bytes()), nil
})

// PlaceholderMask returns a fully transparent MaskSize x MaskSize PNG as a
// data URI. The backend requires a mask even when the task ignores it.
func PlaceholderMask() (string, error) {
	return placeholderMask()
}
