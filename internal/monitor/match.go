package monitor

import (
	"image"

	"github.com/colortrig/colortrig/internal/config"
)

// MatchRatio returns the percentage of pixels whose color lies within
// tolerance of target on every channel. A pixel matches iff all three
// per-channel absolute differences are <= tolerance (inclusive).
func MatchRatio(frame *image.RGBA, target config.Color, tolerance int) float64 {
	bounds := frame.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return 0
	}

	matched := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		idx := frame.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if absDiff(frame.Pix[idx], target.R) <= tolerance &&
				absDiff(frame.Pix[idx+1], target.G) <= tolerance &&
				absDiff(frame.Pix[idx+2], target.B) <= tolerance {
				matched++
			}
			idx += 4
		}
	}

	return float64(matched) / float64(total) * 100
}

func absDiff(a uint8, b int) int {
	d := int(a) - b
	if d < 0 {
		return -d
	}
	return d
}
