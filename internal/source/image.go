package source

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
)

// DirSource reads reference images from a directory (or a single file).
type DirSource struct {
	paths []string
}

func NewDirSource(path string) (*DirSource, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	var paths []string
	if fi.IsDir() {
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if !entry.IsDir() {
				ext := filepath.Ext(entry.Name())
				if ext == ".jpg" || ext == ".jpeg" || ext == ".png" {
					paths = append(paths, filepath.Join(path, entry.Name()))
				}
			}
		}
		sort.Strings(paths)
	} else {
		paths = []string{path}
	}

	return &DirSource{paths: paths}, nil
}

func (s *DirSource) Count() int {
	return len(s.paths)
}

func (s *DirSource) Dimensions(index int) (float64, float64, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return float64(cfg.Width), float64(cfg.Height), nil
}

func (s *DirSource) Render(index int) (image.Image, error) {
	f, err := os.Open(s.paths[index])
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, err
	}
	return img, nil
}

func (s *DirSource) Close() error {
	return nil
}

// BufferSource holds images uploaded as raw bytes, decoded eagerly so a
// malformed upload is rejected before the pipeline starts. Upload order
// is preserved.
type BufferSource struct {
	images []image.Image
}

func NewBufferSource(buffers [][]byte) (*BufferSource, error) {
	if len(buffers) == 0 {
		return nil, fmt.Errorf("no image buffers supplied")
	}
	images := make([]image.Image, 0, len(buffers))
	for i, buf := range buffers {
		img, _, err := image.Decode(bytes.NewReader(buf))
		if err != nil {
			return nil, fmt.Errorf("image %d: %w", i+1, err)
		}
		images = append(images, img)
	}
	return &BufferSource{images: images}, nil
}

func (s *BufferSource) Count() int {
	return len(s.images)
}

func (s *BufferSource) Dimensions(index int) (float64, float64, error) {
	b := s.images[index].Bounds()
	return float64(b.Dx()), float64(b.Dy()), nil
}

func (s *BufferSource) Render(index int) (image.Image, error) {
	return s.images[index], nil
}

func (s *BufferSource) Close() error {
	return nil
}
