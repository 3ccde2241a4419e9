package render

import (
	"fmt"
	"strings"

	"github.com/rashedsumon/instagram-teaser/internal/config"
	"github.com/rashedsumon/instagram-teaser/internal/frame"
)

// ZoomAt is the zoom factor at time t within a clip of the given
// duration: a pure mapping, no per-clip state. t is clamped to [0,d].
func ZoomAt(t, duration, gain float64) float64 {
	if duration <= 0 {
		return 1
	}
	if t < 0 {
		t = 0
	}
	if t > duration {
		t = duration
	}
	return 1 + gain*(t/duration)
}

// KenBurnsFilter builds the per-segment filter chain: a centered crop of
// the prepared (already cover-scaled, supersampled) still to the exact
// supersampled canvas, then a continuous centered zoompan down to the
// delivery size. Every output frame is exactly Width x Height.
func KenBurnsFilter(p config.SegmentParams) string {
	cw := p.Width * frame.Supersample
	ch := p.Height * frame.Supersample

	totalFrames := int(p.Duration * float64(p.FPS))
	if totalFrames < 1 {
		totalFrames = 1
	}

	cropFilter := fmt.Sprintf("crop=%d:%d", cw, ch)

	zFormula := fmt.Sprintf("1+%f*(on/%d)", p.ZoomGain, totalFrames)
	zoomFilter := fmt.Sprintf(
		"zoompan=z='%s':d=%d:s=%dx%d:x='iw/2-(iw/zoom/2)':y='ih/2-(ih/zoom/2)':fps=%d",
		zFormula, totalFrames, p.Width, p.Height, p.FPS,
	)

	return fmt.Sprintf("%s,%s", cropFilter, zoomFilter)
}

// CrossfadeGraph builds the xfade chain joining N already-encoded
// segments. durations holds each segment's standalone length; every seam
// overlaps by fade seconds. The returned graph ends in outLabel.
func CrossfadeGraph(durations []float64, fade float64, outLabel string) string {
	if len(durations) < 2 {
		return ""
	}

	var sb strings.Builder
	lastOut := "[0:v]"
	currentOffset := 0.0

	for i := 1; i < len(durations); i++ {
		currentOffset += durations[i-1] - fade

		nextIn := fmt.Sprintf("[%d:v]", i)
		name := fmt.Sprintf("[v%d]", i)
		if i == len(durations)-1 {
			name = outLabel
		}
		sb.WriteString(fmt.Sprintf("%s%sxfade=transition=fade:duration=%f:offset=%f%s;",
			lastOut, nextIn, fade, currentOffset, name))
		lastOut = name
	}

	return strings.TrimSuffix(sb.String(), ";")
}

// EscapeText escapes a string for use inside a drawtext filter argument.
func EscapeText(s string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`'`, `\'`,
		`:`, `\:`,
		`%`, `\%`,
	)
	return r.Replace(s)
}
