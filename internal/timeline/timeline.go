package timeline

import (
	"errors"
	"fmt"
	"math"

	"github.com/rashedsumon/instagram-teaser/internal/frame"
	"github.com/rashedsumon/instagram-teaser/internal/render"
)

// ErrInvalidDuration signals duration math gone wrong (a computed clip
// length <= 0). Fatal: the run aborts rather than emitting a broken seam.
var ErrInvalidDuration = errors.New("invalid clip duration")

// Clip is one prepared still with its slot on the timeline and the zoom
// law applied over that slot.
type Clip struct {
	Frame       *frame.PreparedFrame
	Index       int
	StartOffset float64
	Duration    float64
	ZoomGain    float64
}

// ZoomAt returns the zoom factor at local clip time t.
func (c *Clip) ZoomAt(t float64) float64 {
	return render.ZoomAt(t, c.Duration, c.ZoomGain)
}

// OverlayLayer is the caption rendered over the whole timeline: text on
// a translucent brand-color plate in the lower third.
type OverlayLayer struct {
	Text     string
	FontSize int
	Color    string
	FontFile string
}

// AudioTrack is the background audio, already trimmed to its attached
// length (never longer than the timeline, never padded).
type AudioTrack struct {
	Path     string
	Duration float64
}

// Timeline is the single composed sequence for one generation run. It
// is consumed exactly once by the encoder.
type Timeline struct {
	Clips         []*Clip
	TotalDuration float64
	Crossfade     float64
	Overlay       *OverlayLayer
	Audio         *AudioTrack
}

// Allocation is the result of distributing the total duration across N
// clips with a crossfade overlap per seam.
type Allocation struct {
	Durations []float64 // standalone length per clip, before overlap subtraction
	Crossfade float64   // possibly shrunk from the requested value
	Used      int       // clips actually allocated (<= requested N)
}

// Allocate splits totalDuration equally across n clips so that
//
//	sum(durations) - (used-1)*crossfade == totalDuration
//
// holds exactly. Two policies keep the floor intact: if n clips cannot
// each get minClip seconds, trailing clips are dropped; if the crossfade
// would swallow a whole clip, the crossfade shrinks to half a clip
// instead. Durations are aligned to the frame grid for xfade stability,
// with the last clip absorbing the rounding remainder.
func Allocate(n int, totalDuration, crossfade, minClip float64, fps int) (Allocation, error) {
	if n <= 0 {
		return Allocation{}, fmt.Errorf("%w: no clips to allocate", ErrInvalidDuration)
	}
	if totalDuration <= 0 {
		return Allocation{}, fmt.Errorf("%w: total duration %.2fs", ErrInvalidDuration, totalDuration)
	}

	used := n
	if minClip > 0 {
		maxClips := int(totalDuration / minClip)
		if maxClips < 1 {
			maxClips = 1
		}
		if used > maxClips {
			used = maxClips
		}
	}

	fade := crossfade
	if used == 1 {
		fade = 0
	}

	perClip := (totalDuration + float64(used-1)*fade) / float64(used)
	if fade >= perClip {
		fade = perClip / 2.0
		perClip = (totalDuration + float64(used-1)*fade) / float64(used)
	}
	if perClip <= 0 {
		return Allocation{}, fmt.Errorf("%w: per-clip duration %.4fs (n=%d, total=%.2fs, fade=%.2fs)",
			ErrInvalidDuration, perClip, used, totalDuration, fade)
	}

	durations := make([]float64, used)
	if fps > 0 {
		aligned := math.Round(perClip*float64(fps)) / float64(fps)
		sum := 0.0
		for i := 0; i < used-1; i++ {
			durations[i] = aligned
			sum += aligned
		}
		durations[used-1] = totalDuration + float64(used-1)*fade - sum
	} else {
		for i := range durations {
			durations[i] = perClip
		}
	}
	if durations[used-1] <= 0 {
		return Allocation{}, fmt.Errorf("%w: trailing clip %.4fs after frame alignment",
			ErrInvalidDuration, durations[used-1])
	}

	return Allocation{Durations: durations, Crossfade: fade, Used: used}, nil
}

// Compose orders frames into a timeline using an allocation. Frames keep
// their input order; frames beyond alloc.Used are ignored (the caller
// sees the reduced count in the allocation).
func Compose(frames []*frame.PreparedFrame, alloc Allocation, totalDuration, zoomGain float64) (*Timeline, error) {
	if len(frames) < alloc.Used {
		return nil, fmt.Errorf("allocation wants %d clips, only %d frames prepared", alloc.Used, len(frames))
	}

	clips := make([]*Clip, 0, alloc.Used)
	offset := 0.0
	for i := 0; i < alloc.Used; i++ {
		d := alloc.Durations[i]
		if d <= 0 {
			return nil, fmt.Errorf("%w: clip %d duration %.4fs", ErrInvalidDuration, i, d)
		}
		clips = append(clips, &Clip{
			Frame:       frames[i],
			Index:       i,
			StartOffset: offset,
			Duration:    d,
			ZoomGain:    zoomGain,
		})
		offset += d - alloc.Crossfade
	}

	return &Timeline{
		Clips:         clips,
		TotalDuration: totalDuration,
		Crossfade:     alloc.Crossfade,
	}, nil
}

// AttachOverlay adds the text layer. Empty text is the documented no-op:
// the timeline is returned unchanged and the encode graph stays
// identical to the overlay-free one.
func (t *Timeline) AttachOverlay(text string, fontSize int, color string, fontFile string) *Timeline {
	if text == "" {
		return t
	}
	t.Overlay = &OverlayLayer{
		Text:     text,
		FontSize: fontSize,
		Color:    color,
		FontFile: fontFile,
	}
	return t
}

// AttachAudio binds an already-trimmed audio track. A nil track leaves
// the timeline silent, which is never an error.
func (t *Timeline) AttachAudio(track *AudioTrack) *Timeline {
	if track == nil {
		return t
	}
	t.Audio = track
	return t
}

// SeamOffsets returns the absolute start time of each crossfade seam,
// which is also the xfade offset sequence the encoder needs.
func (t *Timeline) SeamOffsets() []float64 {
	if len(t.Clips) < 2 {
		return nil
	}
	offsets := make([]float64, 0, len(t.Clips)-1)
	acc := 0.0
	for i := 0; i < len(t.Clips)-1; i++ {
		acc += t.Clips[i].Duration - t.Crossfade
		offsets = append(offsets, acc)
	}
	return offsets
}
