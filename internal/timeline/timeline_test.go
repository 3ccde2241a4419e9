package timeline

import (
	"errors"
	"math"
	"testing"
)

func TestAllocateSeamArithmetic(t *testing.T) {
	// Two clips over 6s with a 0.5s crossfade: each standalone clip is
	// 3.25s and the overlap brings the sequence back to 6s exactly.
	alloc, err := Allocate(2, 6.0, 0.5, 1.5, 24)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	if alloc.Used != 2 {
		t.Fatalf("expected 2 clips, got %d", alloc.Used)
	}
	for i, d := range alloc.Durations {
		if math.Abs(d-3.25) > 0.0001 {
			t.Errorf("clip %d: expected 3.25s, got %f", i, d)
		}
	}

	sum := 0.0
	for _, d := range alloc.Durations {
		sum += d
	}
	total := sum - float64(alloc.Used-1)*alloc.Crossfade
	if math.Abs(total-6.0) > 0.0001 {
		t.Errorf("expected total 6.0s, got %f", total)
	}
}

func TestAllocateInvariant(t *testing.T) {
	cases := []struct {
		n     int
		total float64
		fade  float64
		fps   int
	}{
		{1, 5, 0.5, 24},
		{2, 6, 0.5, 24},
		{3, 9, 0.5, 30},
		{4, 10, 0.5, 25},
		{4, 5, 0.5, 24},
	}

	for _, tc := range cases {
		alloc, err := Allocate(tc.n, tc.total, tc.fade, 1.5, tc.fps)
		if err != nil {
			t.Fatalf("Allocate(%d, %.1f) failed: %v", tc.n, tc.total, err)
		}

		sum := 0.0
		for _, d := range alloc.Durations {
			sum += d
			if d < 1.5-0.0001 {
				t.Errorf("n=%d total=%.1f: clip duration %f below floor", tc.n, tc.total, d)
			}
		}
		got := sum - float64(alloc.Used-1)*alloc.Crossfade
		if math.Abs(got-tc.total) > 0.0001 {
			t.Errorf("n=%d total=%.1f: timeline sums to %f", tc.n, tc.total, got)
		}
	}
}

func TestAllocateFloorDropsClips(t *testing.T) {
	// 5 images into 5 seconds cannot give everyone 1.5s: only the
	// first 3 images get a slot.
	alloc, err := Allocate(5, 5.0, 0.5, 1.5, 24)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if alloc.Used != 3 {
		t.Errorf("expected 3 clips after floor, got %d", alloc.Used)
	}
	t.Logf("durations: %v, crossfade %.2f", alloc.Durations, alloc.Crossfade)
}

func TestAllocateShrinksCrossfade(t *testing.T) {
	alloc, err := Allocate(2, 5.0, 5.0, 1.5, 24)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if alloc.Crossfade >= 5.0 {
		t.Errorf("crossfade not shrunk: %f", alloc.Crossfade)
	}
	sum := 0.0
	for _, d := range alloc.Durations {
		sum += d
	}
	if got := sum - float64(alloc.Used-1)*alloc.Crossfade; math.Abs(got-5.0) > 0.0001 {
		t.Errorf("total after shrink: %f", got)
	}
}

func TestAllocateSingleClipHasNoFade(t *testing.T) {
	alloc, err := Allocate(1, 7.0, 0.5, 1.5, 24)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}
	if alloc.Crossfade != 0 {
		t.Errorf("single clip should carry no crossfade, got %f", alloc.Crossfade)
	}
	if alloc.Durations[0] != 7.0 {
		t.Errorf("single clip should own the whole duration, got %f", alloc.Durations[0])
	}
}

func TestAllocateErrors(t *testing.T) {
	if _, err := Allocate(0, 6, 0.5, 1.5, 24); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("n=0: expected ErrInvalidDuration, got %v", err)
	}
	if _, err := Allocate(2, 0, 0.5, 1.5, 24); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("total=0: expected ErrInvalidDuration, got %v", err)
	}
	if _, err := Allocate(2, -3, 0.5, 1.5, 24); !errors.Is(err, ErrInvalidDuration) {
		t.Errorf("total<0: expected ErrInvalidDuration, got %v", err)
	}
}

func TestComposeOffsetsAndOrder(t *testing.T) {
	alloc, err := Allocate(3, 9.0, 0.5, 1.5, 24)
	if err != nil {
		t.Fatalf("Allocate failed: %v", err)
	}

	tl, err := Compose(testFrames(3), alloc, 9.0, 0.06)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	if len(tl.Clips) != 3 {
		t.Fatalf("expected 3 clips, got %d", len(tl.Clips))
	}
	for i, c := range tl.Clips {
		if c.Index != i {
			t.Errorf("clip %d: insertion order broken, index %d", i, c.Index)
		}
	}
	if tl.Clips[0].StartOffset != 0 {
		t.Errorf("first clip starts at %f", tl.Clips[0].StartOffset)
	}

	wantStart := tl.Clips[0].Duration - alloc.Crossfade
	if math.Abs(tl.Clips[1].StartOffset-wantStart) > 0.0001 {
		t.Errorf("second clip: expected start %f, got %f", wantStart, tl.Clips[1].StartOffset)
	}

	seams := tl.SeamOffsets()
	if len(seams) != 2 {
		t.Fatalf("expected 2 seams, got %d", len(seams))
	}
	t.Logf("seam offsets: %v", seams)
}

func TestAttachOverlayNoop(t *testing.T) {
	alloc, _ := Allocate(1, 6.0, 0.5, 1.5, 24)
	tl, err := Compose(testFrames(1), alloc, 6.0, 0.06)
	if err != nil {
		t.Fatalf("Compose failed: %v", err)
	}

	got := tl.AttachOverlay("", 96, "#FF6B6B", "")
	if got != tl {
		t.Error("empty text should return the same timeline")
	}
	if tl.Overlay != nil {
		t.Error("empty text must not add a layer")
	}

	tl.AttachOverlay("Brand Teaser", 96, "#FF6B6B", "")
	if tl.Overlay == nil || tl.Overlay.Text != "Brand Teaser" {
		t.Error("overlay not attached")
	}
}

func TestClipZoomAt(t *testing.T) {
	c := &Clip{Duration: 4.0, ZoomGain: 0.06}

	if z := c.ZoomAt(0); z != 1.0 {
		t.Errorf("zoom at t=0: %f", z)
	}
	if z := c.ZoomAt(4.0); math.Abs(z-1.06) > 0.0001 {
		t.Errorf("zoom at t=d: %f", z)
	}
	if z := c.ZoomAt(2.0); math.Abs(z-1.03) > 0.0001 {
		t.Errorf("zoom at midpoint: %f", z)
	}
	// Same inputs, same answer: the mapping carries no state.
	if c.ZoomAt(2.0) != c.ZoomAt(2.0) {
		t.Error("zoom mapping is not deterministic")
	}
}
