package snapshot

import (
	"context"
	"image"
	"image/color"
	"os"
	"strings"
	"testing"

	"github.com/colortrig/colortrig/internal/config"
	apperrors "github.com/colortrig/colortrig/internal/errors"
)

type frameCapturer struct {
	frames []*image.RGBA
	errs   []error
	calls  int
}

func (c *frameCapturer) Capture(region config.Region) (*image.RGBA, error) {
	i := c.calls
	c.calls++
	if i < len(c.errs) && c.errs[i] != nil {
		return nil, c.errs[i]
	}
	return c.frames[i], nil
}

// gradientFrame and checkerFrame produce structurally distinct images
// so their perceptual hashes differ.
func gradientFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			img.SetRGBA(x, y, color.RGBA{uint8(x * 4), uint8(y * 4), 0, 255})
		}
	}
	return img
}

func checkerFrame() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			if (x/8+y/8)%2 == 0 {
				img.SetRGBA(x, y, color.RGBA{255, 255, 255, 255})
			} else {
				img.SetRGBA(x, y, color.RGBA{0, 0, 0, 255})
			}
		}
	}
	return img
}

func region() config.Region {
	return config.Region{Left: 0, Top: 0, Width: 64, Height: 64}
}

func TestWriterSavesPNG(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(&frameCapturer{frames: []*image.RGBA{gradientFrame()}}, dir)

	res, err := w.Save(context.Background(), region())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if res.Duplicate {
		t.Error("first snapshot reported duplicate")
	}
	if !strings.HasSuffix(res.Path, ".png") {
		t.Errorf("path = %q, want .png file", res.Path)
	}
	if _, err := os.Stat(res.Path); err != nil {
		t.Errorf("snapshot file missing: %v", err)
	}
}

func TestWriterDeduplicatesIdenticalFrames(t *testing.T) {
	dir := t.TempDir()
	w := NewWriter(&frameCapturer{frames: []*image.RGBA{gradientFrame(), gradientFrame()}}, dir)

	first, err := w.Save(context.Background(), region())
	if err != nil {
		t.Fatalf("first Save: %v", err)
	}
	second, err := w.Save(context.Background(), region())
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if !second.Duplicate {
		t.Error("identical frame not reported as duplicate")
	}
	if second.Path != "" {
		t.Errorf("duplicate wrote file %q", second.Path)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("dir has %d files, want 1 (%v and dedup)", len(entries), first.Path)
	}
}

func TestWriterSavesDistinctFrames(t *testing.T) {
	w := NewWriter(&frameCapturer{frames: []*image.RGBA{gradientFrame(), checkerFrame()}}, t.TempDir())

	if _, err := w.Save(context.Background(), region()); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	res, err := w.Save(context.Background(), region())
	if err != nil {
		t.Fatalf("second Save: %v", err)
	}
	if res.Duplicate {
		t.Error("structurally different frame reported as duplicate")
	}
}

func TestWriterWrapsCaptureError(t *testing.T) {
	cause := apperrors.New(apperrors.CodeCaptureFailed, "no display")
	w := NewWriter(&frameCapturer{errs: []error{cause}}, t.TempDir())

	_, err := w.Save(context.Background(), region())
	if !apperrors.IsCode(err, apperrors.CodeSnapshotFailed) {
		t.Errorf("Save error = %v, want SNAPSHOT_FAILED", err)
	}
}

func TestAverageColor(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 1))
	img.SetRGBA(0, 0, color.RGBA{100, 0, 200, 255})
	img.SetRGBA(1, 0, color.RGBA{200, 50, 0, 255})

	got := averageColor(img)
	want := config.Color{R: 150, G: 25, B: 100}
	if got != want {
		t.Errorf("averageColor = %+v, want %+v", got, want)
	}
}
