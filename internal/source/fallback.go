package source

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
)

// ErrMissingAsset signals that no reference image could be resolved at
// all. In practice the solid-color canvas makes this unreachable for a
// valid brand color; it exists so the precedence chain has a terminal.
var ErrMissingAsset = errors.New("no reference images and no fallback asset")

// SolidSource is a single synthesized frame in the brand color. It is
// the last resort when the user uploads nothing and no placeholder
// asset is bundled.
type SolidSource struct {
	img *image.RGBA
}

func NewSolidSource(c color.RGBA, width, height int) *SolidSource {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(c), image.Point{}, draw.Src)
	return &SolidSource{img: img}
}

func (s *SolidSource) Count() int { return 1 }

func (s *SolidSource) Dimensions(index int) (float64, float64, error) {
	b := s.img.Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *SolidSource) Render(index int) (image.Image, error) {
	return s.img, nil
}

func (s *SolidSource) Close() error { return nil }

// Fallback resolves the no-uploads case: a bundled placeholder image
// wins if present, otherwise a solid brand-color canvas is synthesized.
// Missing images never abort a run.
func Fallback(placeholderPath string, brand color.RGBA, width, height int) (Source, error) {
	if placeholderPath != "" {
		if _, err := os.Stat(placeholderPath); err == nil {
			src, err := NewDirSource(placeholderPath)
			if err == nil && src.Count() > 0 {
				return src, nil
			}
		}
	}
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: cannot synthesize %dx%d canvas", ErrMissingAsset, width, height)
	}
	return NewSolidSource(brand, width, height), nil
}
