// Package capture provides screen region capture
package capture

import (
	"image"

	"github.com/kbinani/screenshot"

	"github.com/colortrig/colortrig/internal/config"
	apperrors "github.com/colortrig/colortrig/internal/errors"
)

// Screen grabs pixel buffers through the OS screenshot facility.
type Screen struct{}

// NewScreen creates a screen capturer.
func NewScreen() *Screen { return &Screen{} }

// Capture grabs the region and returns its RGBA pixel buffer. The
// buffer is fresh on every call and may be discarded by the caller.
func (s *Screen) Capture(region config.Region) (*image.RGBA, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, apperrors.Newf(apperrors.CodeRegionInvalid,
			"region %dx%d must have positive dimensions", region.Width, region.Height)
	}

	rect := image.Rect(region.Left, region.Top, region.Left+region.Width, region.Top+region.Height)
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, apperrors.Wrapf(err, apperrors.CodeCaptureFailed,
			"capture region (%d,%d) %dx%d", region.Left, region.Top, region.Width, region.Height)
	}
	return img, nil
}

// Displays returns the number of active displays. Zero means capture
// cannot work (headless session).
func Displays() int {
	return screenshot.NumActiveDisplays()
}
