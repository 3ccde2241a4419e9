package audio

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	ffmpeg "github.com/u2takey/ffmpeg-go"

	"github.com/rashedsumon/instagram-teaser/internal/timeline"
)

// ErrDecode marks an audio source that ffprobe could not make sense of.
// It is recoverable: the run proceeds silent and the caller surfaces a
// warning, never an abort.
var ErrDecode = errors.New("audio decode failed")

// Prober measures an audio file's duration. Swappable for tests.
type Prober interface {
	Duration(path string) (float64, error)
}

// FFprobeProber asks ffprobe (via ffmpeg-go) for the container duration.
type FFprobeProber struct{}

func (FFprobeProber) Duration(path string) (float64, error) {
	out, err := ffmpeg.Probe(path)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	var probe struct {
		Format struct {
			Duration string `json:"duration"`
		} `json:"format"`
	}
	if err := json.Unmarshal([]byte(out), &probe); err != nil {
		return 0, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	d, err := strconv.ParseFloat(probe.Format.Duration, 64)
	if err != nil || d <= 0 {
		return 0, fmt.Errorf("%w: no usable duration in probe output", ErrDecode)
	}
	return d, nil
}

// Resolve picks the audio source for a run: an uploaded buffer wins,
// then the bundled default track, then none (silent timeline). The
// returned track is trimmed to min(totalDuration, sourceDuration) and
// never padded. A decode failure returns (nil, err) where err wraps
// ErrDecode; callers surface it as a warning and proceed silent.
func Resolve(upload []byte, bundledPath string, totalDuration float64, scratchDir string, p Prober) (*timeline.AudioTrack, error) {
	var path string

	switch {
	case len(upload) > 0:
		path = filepath.Join(scratchDir, "upload_audio")
		if err := os.WriteFile(path, upload, 0644); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
	case bundledPath != "":
		if _, err := os.Stat(bundledPath); err != nil {
			return nil, nil // no bundled default: silent, not an error
		}
		path = bundledPath
	default:
		return nil, nil
	}

	dur, err := p.Duration(path)
	if err != nil {
		return nil, err
	}

	return &timeline.AudioTrack{
		Path:     path,
		Duration: trim(totalDuration, dur),
	}, nil
}

func trim(totalDuration, sourceDuration float64) float64 {
	if sourceDuration < totalDuration {
		return sourceDuration
	}
	return totalDuration
}
