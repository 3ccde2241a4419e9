package render

import (
	"fmt"

	"github.com/rashedsumon/instagram-teaser/internal/config"
)

// OverlayFilter builds the text-layer filters: a translucent brand-color
// plate across the lower third, then the caption centered over it. The
// plate is slightly higher than the text baseline so the text sits
// inside it. Empty text must be handled by the caller (no filter at all
// keeps the no-overlay path bit-identical).
func OverlayFilter(text string, fontSize int, brandColor string, fontFile string) string {
	if text == "" {
		return ""
	}

	plate := fmt.Sprintf(
		"drawbox=x=(iw-iw*%.2f)/2:y=ih*%.2f:w=iw*%.2f:h=%d:color=%s@%.2f:t=fill",
		config.PlateWidthRatio, config.PlateYRatio, config.PlateWidthRatio,
		fontSize+20, config.FFmpegColor(brandColor), config.PlateOpacity,
	)

	textArgs := fmt.Sprintf(
		"text='%s':fontsize=%d:fontcolor=white:x=(w-text_w)/2:y=h*%.2f",
		EscapeText(text), fontSize, config.TextYRatio,
	)
	if fontFile != "" {
		// Paths can carry filter metacharacters (Windows drive colons).
		textArgs = fmt.Sprintf("fontfile='%s':%s", EscapeText(fontFile), textArgs)
	}

	return fmt.Sprintf("%s,drawtext=%s", plate, textArgs)
}
