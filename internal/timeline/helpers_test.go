package timeline

import (
	"image"

	"github.com/rashedsumon/instagram-teaser/internal/frame"
)

func testFrames(n int) []*frame.PreparedFrame {
	frames := make([]*frame.PreparedFrame, n)
	for i := range frames {
		frames[i] = &frame.PreparedFrame{
			Image: image.NewRGBA(image.Rect(0, 0, 8, 8)),
			Scale: 1.0,
		}
	}
	return frames
}
