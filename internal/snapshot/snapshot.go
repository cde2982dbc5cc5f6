// Package snapshot saves frames of the monitored region for tuning
package snapshot

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/corona10/goimagehash"

	"github.com/colortrig/colortrig/internal/config"
	apperrors "github.com/colortrig/colortrig/internal/errors"
	"github.com/colortrig/colortrig/internal/trace"
)

const (
	// MaxHashDistance is the Hamming distance at or below which two
	// frames count as the same picture and the newer one is dropped.
	MaxHashDistance = 5

	filePrefix = "snapshot"
	timeFormat = "20060102_150405"
)

// Capturer grabs one frame of a screen region.
type Capturer interface {
	Capture(region config.Region) (*image.RGBA, error)
}

// Result describes one snapshot request.
type Result struct {
	Path      string       // written file, empty when Duplicate
	Duplicate bool         // frame matched the previous snapshot
	Average   config.Color // mean color over the frame
}

// Writer captures the configured region on demand and writes it as a
// timestamped PNG. Perceptually identical consecutive frames are
// deduplicated so a held hotkey does not flood the directory.
type Writer struct {
	capturer Capturer
	dir      string

	mu       sync.Mutex
	lastHash *goimagehash.ImageHash
}

// NewWriter creates a writer that stores snapshots under dir.
func NewWriter(capturer Capturer, dir string) *Writer {
	return &Writer{capturer: capturer, dir: dir}
}

// Save captures the region and persists it. The returned result
// carries the file path, or Duplicate=true when the frame was
// indistinguishable from the previous snapshot.
func (w *Writer) Save(ctx context.Context, region config.Region) (Result, error) {
	ctx, span := trace.StartSpan(ctx, "snapshot_save")
	defer span.End()

	frame, err := w.capturer.Capture(region)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeSnapshotFailed, "capture snapshot")
	}

	res := Result{Average: averageColor(frame)}
	if w.isDuplicate(frame) {
		span.SetAttr("duplicate", "true")
		res.Duplicate = true
		return res, nil
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeSnapshotFailed, "create snapshot dir")
	}

	name := fmt.Sprintf("%s_%s.png", filePrefix, time.Now().Format(timeFormat))
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return Result{}, apperrors.Wrap(err, apperrors.CodeSnapshotFailed, "create snapshot file")
	}
	defer f.Close()

	if err := png.Encode(f, frame); err != nil {
		os.Remove(path)
		return Result{}, apperrors.Wrap(err, apperrors.CodeSnapshotFailed, "encode snapshot")
	}

	span.SetAttr("path", path)
	trace.Logger(ctx).Info("snapshot saved",
		"path", path, "region", region, "avg_color", res.Average)
	res.Path = path
	return res, nil
}

// isDuplicate compares the frame's perceptual hash against the
// previous snapshot. The stored hash only advances when the frame is
// new, so a slow drift away from the last saved picture still
// registers once it accumulates.
func (w *Writer) isDuplicate(frame image.Image) bool {
	hash, err := goimagehash.PerceptionHash(frame)
	if err != nil {
		return false
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.lastHash == nil {
		w.lastHash = hash
		return false
	}

	dist, err := w.lastHash.Distance(hash)
	if err != nil {
		w.lastHash = hash
		return false
	}
	if dist <= MaxHashDistance {
		return true
	}

	w.lastHash = hash
	return false
}

// averageColor returns the mean RGB over the frame, used to suggest a
// target color for the sampled region.
func averageColor(frame *image.RGBA) config.Color {
	bounds := frame.Bounds()
	total := bounds.Dx() * bounds.Dy()
	if total == 0 {
		return config.Color{}
	}

	var r, g, b uint64
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		idx := frame.PixOffset(bounds.Min.X, y)
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r += uint64(frame.Pix[idx])
			g += uint64(frame.Pix[idx+1])
			b += uint64(frame.Pix[idx+2])
			idx += 4
		}
	}

	n := uint64(total)
	return config.Color{R: int(r / n), G: int(g / n), B: int(b / n)}
}
