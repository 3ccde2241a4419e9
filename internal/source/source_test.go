package source

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
)

func encodePNG(t *testing.T, c color.RGBA, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("png encode: %v", err)
	}
	return buf.Bytes()
}

func TestBufferSourcePreservesOrder(t *testing.T) {
	colors := []color.RGBA{
		{255, 0, 0, 255},
		{0, 255, 0, 255},
		{0, 0, 255, 255},
	}
	buffers := make([][]byte, len(colors))
	for i, c := range colors {
		buffers[i] = encodePNG(t, c, 4, 4)
	}

	src, err := NewBufferSource(buffers)
	if err != nil {
		t.Fatalf("NewBufferSource failed: %v", err)
	}
	defer src.Close()

	if src.Count() != 3 {
		t.Fatalf("expected 3 images, got %d", src.Count())
	}
	for i, want := range colors {
		img, err := src.Render(i)
		if err != nil {
			t.Fatalf("Render(%d): %v", i, err)
		}
		r, g, b, _ := img.At(0, 0).RGBA()
		got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 255}
		if got != want {
			t.Errorf("image %d: upload order broken, got %v want %v", i, got, want)
		}
	}
}

func TestBufferSourceRejectsBadData(t *testing.T) {
	_, err := NewBufferSource([][]byte{
		encodePNG(t, color.RGBA{255, 0, 0, 255}, 4, 4),
		[]byte("definitely not an image"),
	})
	if err == nil {
		t.Fatal("malformed upload should fail eagerly")
	}
	t.Logf("error: %v", err)
}

func TestBufferSourceEmpty(t *testing.T) {
	if _, err := NewBufferSource(nil); err == nil {
		t.Error("empty upload set should fail")
	}
}

func TestDirSourceSortsAndFilters(t *testing.T) {
	dir := t.TempDir()
	files := []string{"c.png", "a.png", "b.jpg", "notes.txt"}
	for _, name := range files {
		data := encodePNG(t, color.RGBA{10, 10, 10, 255}, 2, 2)
		if err := os.WriteFile(filepath.Join(dir, name), data, 0644); err != nil {
			t.Fatal(err)
		}
	}

	src, err := NewDirSource(dir)
	if err != nil {
		t.Fatalf("NewDirSource failed: %v", err)
	}
	if src.Count() != 3 {
		t.Errorf("expected 3 images (txt filtered), got %d", src.Count())
	}
}

func TestSolidSource(t *testing.T) {
	brand := color.RGBA{0xFF, 0x6B, 0x6B, 0xFF}
	src := NewSolidSource(brand, 1080, 1920)

	if src.Count() != 1 {
		t.Fatalf("solid source is a single frame, got %d", src.Count())
	}
	w, h, err := src.Dimensions(0)
	if err != nil || w != 1080 || h != 1920 {
		t.Errorf("dimensions: %fx%f, err=%v", w, h, err)
	}
	img, err := src.Render(0)
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	r, g, b, _ := img.At(500, 900).RGBA()
	got := color.RGBA{uint8(r >> 8), uint8(g >> 8), uint8(b >> 8), 0xFF}
	if got != brand {
		t.Errorf("canvas color %v, want %v", got, brand)
	}
}

func TestFallbackPrefersPlaceholder(t *testing.T) {
	placeholder := filepath.Join(t.TempDir(), "placeholder.png")
	data := encodePNG(t, color.RGBA{1, 2, 3, 255}, 8, 8)
	if err := os.WriteFile(placeholder, data, 0644); err != nil {
		t.Fatal(err)
	}

	src, err := Fallback(placeholder, color.RGBA{255, 0, 0, 255}, 1080, 1920)
	if err != nil {
		t.Fatalf("Fallback failed: %v", err)
	}
	if _, ok := src.(*DirSource); !ok {
		t.Errorf("bundled placeholder should win, got %T", src)
	}
}

func TestFallbackSynthesizesSolid(t *testing.T) {
	src, err := Fallback("/nowhere/placeholder.png", color.RGBA{255, 0, 0, 255}, 1080, 1920)
	if err != nil {
		t.Fatalf("Fallback failed: %v", err)
	}
	if _, ok := src.(*SolidSource); !ok {
		t.Errorf("missing placeholder should fall back to solid, got %T", src)
	}
}
