package system

import (
	"image"
	"testing"
)

func TestImagePoolReuse(t *testing.T) {
	rect := image.Rect(0, 0, 64, 64)

	img := GetImage(rect)
	if img == nil || img.Bounds() != rect {
		t.Fatalf("got %v", img)
	}
	img.Pix[0] = 42
	PutImage(img)

	again := GetImage(rect)
	if again.Bounds() != rect {
		t.Errorf("recycled buffer has bounds %v", again.Bounds())
	}
	PutImage(again)
}

func TestImagePoolDistinctSizes(t *testing.T) {
	a := GetImage(image.Rect(0, 0, 10, 10))
	b := GetImage(image.Rect(0, 0, 20, 20))
	if a.Bounds() == b.Bounds() {
		t.Error("pools must be keyed by size")
	}
	PutImage(a)
	PutImage(b)
}

func TestPutImageNil(t *testing.T) {
	// Must not panic.
	PutImage(nil)
}
