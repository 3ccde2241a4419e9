package frame

import (
	"image"
	"image/color"
	"math"
	"testing"
)

func solidImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, color.RGBA{R: 200, G: 40, B: 40, A: 255})
		}
	}
	return img
}

func TestPrepareCoversCanvas(t *testing.T) {
	cases := []struct {
		name       string
		srcW, srcH int
	}{
		{"landscape", 1600, 900},
		{"portrait", 900, 1600},
		{"square", 1000, 1000},
		{"tiny", 64, 48},
		{"already huge", 5000, 5000},
	}

	for _, tc := range cases {
		pf, err := Prepare(solidImage(tc.srcW, tc.srcH), 1080, 1920, 1.10)
		if err != nil {
			t.Fatalf("%s: Prepare failed: %v", tc.name, err)
		}

		b := pf.Image.Bounds()
		if b.Dx() < 1080*Supersample || b.Dy() < 1920*Supersample {
			t.Errorf("%s: %dx%d does not cover the supersampled canvas", tc.name, b.Dx(), b.Dy())
		}
		if !pf.Covers(1080, 1920) {
			t.Errorf("%s: Covers reports false", tc.name)
		}

		// Aspect must survive: cover-scaling is uniform, never a stretch.
		srcAspect := float64(tc.srcW) / float64(tc.srcH)
		dstAspect := float64(b.Dx()) / float64(b.Dy())
		if math.Abs(srcAspect-dstAspect) > 0.01 {
			t.Errorf("%s: aspect drifted from %.3f to %.3f", tc.name, srcAspect, dstAspect)
		}

		pf.Release()
	}
}

func TestPrepareOverscanMargin(t *testing.T) {
	pf, err := Prepare(solidImage(1080, 1920), 1080, 1920, 1.10)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	defer pf.Release()

	// The margin must exceed the maximum zoom so the moving window
	// never leaves the picture.
	b := pf.Image.Bounds()
	if float64(b.Dx()) < 1080*Supersample*1.06 || float64(b.Dy()) < 1920*Supersample*1.06 {
		t.Errorf("overscan margin too thin: %dx%d", b.Dx(), b.Dy())
	}
}

func TestPrepareErrors(t *testing.T) {
	if _, err := Prepare(image.NewRGBA(image.Rect(0, 0, 0, 0)), 1080, 1920, 1.10); err == nil {
		t.Error("zero-size source should fail")
	}
	if _, err := Prepare(solidImage(100, 100), 1080, 1920, 0.5); err == nil {
		t.Error("overscan below 1.0 should fail")
	}
}

func TestPrepareIsPure(t *testing.T) {
	src := solidImage(320, 240)
	a, err := Prepare(src, 1080, 1920, 1.10)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	b, err := Prepare(src, 1080, 1920, 1.10)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if a.Image.Bounds() != b.Image.Bounds() || a.Scale != b.Scale {
		t.Error("same input should produce the same prepared frame")
	}
	a.Release()
	b.Release()
}
