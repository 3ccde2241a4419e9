package config

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ErrInvalidConfig is returned when a TeaserConfig fails validation. It is
// raised at construction time so bad values never reach the pipeline.
var ErrInvalidConfig = errors.New("invalid teaser config")

const (
	// Portrait 9:16 delivery format for Reels.
	TargetWidth  = 1080
	TargetHeight = 1920

	MinDuration = 5.0
	MaxDuration = 10.0

	MinFontSize     = 36
	MaxFontSize     = 160
	DefaultFontSize = 96

	DefaultFPS        = 24
	DefaultBrandColor = "#FF6B6B"

	// Overscan must stay >= 1+ZoomGain so the zoom never exposes
	// uncovered canvas at the frame edges.
	Overscan = 1.10
	ZoomGain = 0.06

	CrossfadeDuration = 0.5
	MinClipDuration   = 1.5

	PlateOpacity    = 0.25
	PlateWidthRatio = 0.94
	PlateYRatio     = 0.72
	TextYRatio      = 0.75
)

// TeaserConfig is the immutable description of one generation run.
type TeaserConfig struct {
	TotalDuration float64
	FPS           int
	OverlayText   string
	FontSize      int
	BrandColor    string
	IncludeAudio  bool
	AudioPath     string

	Width     int
	Height    int
	Crossfade float64
	ZoomGain  float64

	OutputDir    string
	Workers      int
	VideoEncoder string
	Quality      int
	ShowStats    bool
}

// SegmentParams carries everything a single clip encode needs.
type SegmentParams struct {
	Width, Height int
	FPS           int
	Duration      float64
	ZoomGain      float64
	FadeDuration  float64
	ClipIndex     int
	Filter        string
}

// Default returns a config filled with the delivery defaults; callers
// override fields and then Validate before handing it to the engine.
func Default() TeaserConfig {
	return TeaserConfig{
		TotalDuration: 7,
		FPS:           DefaultFPS,
		FontSize:      DefaultFontSize,
		BrandColor:    DefaultBrandColor,
		IncludeAudio:  true,
		Width:         TargetWidth,
		Height:        TargetHeight,
		Crossfade:     CrossfadeDuration,
		ZoomGain:      ZoomGain,
		OutputDir:     "outputs",
	}
}

func (c *TeaserConfig) Validate() error {
	if c.TotalDuration < MinDuration || c.TotalDuration > MaxDuration {
		return fmt.Errorf("%w: duration %.2fs outside [%.0f,%.0f]", ErrInvalidConfig, c.TotalDuration, MinDuration, MaxDuration)
	}
	switch c.FPS {
	case 24, 25, 30:
	default:
		return fmt.Errorf("%w: frame rate %d not one of 24, 25, 30", ErrInvalidConfig, c.FPS)
	}
	if c.OverlayText != "" && (c.FontSize < MinFontSize || c.FontSize > MaxFontSize) {
		return fmt.Errorf("%w: font size %d outside [%d,%d]", ErrInvalidConfig, c.FontSize, MinFontSize, MaxFontSize)
	}
	if _, err := ParseHexColor(c.BrandColor); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if c.Width <= 0 || c.Height <= 0 {
		return fmt.Errorf("%w: canvas %dx%d", ErrInvalidConfig, c.Width, c.Height)
	}
	if c.Crossfade < 0 || c.Crossfade >= c.TotalDuration {
		return fmt.Errorf("%w: crossfade %.2fs", ErrInvalidConfig, c.Crossfade)
	}
	return nil
}

// ParseHexColor parses "#RRGGBB" (or "RRGGBB") into an opaque RGBA color.
func ParseHexColor(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("bad color %q: want #RRGGBB", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("bad color %q: %v", s, err)
	}
	return color.RGBA{
		R: uint8(v >> 16),
		G: uint8(v >> 8),
		B: uint8(v),
		A: 0xFF,
	}, nil
}

// FFmpegColor converts "#RRGGBB" to the 0xRRGGBB form ffmpeg filters expect.
func FFmpegColor(s string) string {
	return "0x" + strings.TrimPrefix(strings.TrimSpace(s), "#")
}
