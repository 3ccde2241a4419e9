package render

import "os"

// Font resolution is a capability probe, not error handling: a missing
// font is an expected condition and must never fail a run. ResolveFont
// walks an ordered preference list and returns the first file that
// exists; "" means drawtext falls back to ffmpeg's built-in default.

var defaultFontCandidates = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
	"/Library/Fonts/Arial Bold.ttf",
	"/System/Library/Fonts/Supplemental/Arial Bold.ttf",
	"C:/Windows/Fonts/arialbd.ttf",
}

// ResolveFont returns the first available font file from the preferred
// list, then from the built-in candidates.
func ResolveFont(preferred ...string) string {
	for _, p := range preferred {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range defaultFontCandidates {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
