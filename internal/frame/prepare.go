package frame

import (
	"errors"
	"fmt"
	"image"
	"math"

	xdraw "golang.org/x/image/draw"

	"github.com/rashedsumon/instagram-teaser/internal/system"
)

// Supersample renders prepared frames at twice the canvas so the zoom
// window always downsamples, never upsamples (same trick the segment
// filter relies on for crisp motion).
const Supersample = 2

var errEmptyImage = errors.New("source image has zero dimensions")

// PreparedFrame is a cover-scaled still: its pixel dimensions exceed the
// supersampled canvas on both axes, aspect ratio preserved, with enough
// overscan margin that the maximum zoom never exposes canvas edges.
type PreparedFrame struct {
	Image *image.RGBA
	Scale float64
}

// Release returns the pixel buffer to the shared pool. The frame must
// not be used afterwards.
func (f *PreparedFrame) Release() {
	system.PutImage(f.Image)
	f.Image = nil
}

// Prepare cover-scales one source image for a targetW x targetH canvas.
// The uniform scale factor is max(W/srcW, H/srcH) * overscan against the
// supersampled canvas, resampled with Catmull-Rom. Pure transform.
func Prepare(src image.Image, targetW, targetH int, overscan float64) (*PreparedFrame, error) {
	b := src.Bounds()
	srcW, srcH := b.Dx(), b.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, errEmptyImage
	}
	if overscan < 1 {
		return nil, fmt.Errorf("overscan %.3f below 1.0", overscan)
	}

	canvasW := float64(targetW * Supersample)
	canvasH := float64(targetH * Supersample)
	scale := math.Max(canvasW/float64(srcW), canvasH/float64(srcH)) * overscan

	dstW := int(math.Ceil(float64(srcW) * scale))
	dstH := int(math.Ceil(float64(srcH) * scale))

	dst := system.GetImage(image.Rect(0, 0, dstW, dstH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Src, nil)

	return &PreparedFrame{Image: dst, Scale: scale}, nil
}

// Covers reports whether the frame still covers the supersampled canvas,
// i.e. whether zooming by up to maxZoom can expose uncovered area.
func (f *PreparedFrame) Covers(targetW, targetH int) bool {
	b := f.Image.Bounds()
	return b.Dx() >= targetW*Supersample && b.Dy() >= targetH*Supersample
}
