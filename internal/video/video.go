package video

import (
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/rashedsumon/instagram-teaser/internal/config"
	"github.com/rashedsumon/instagram-teaser/internal/render"
	"github.com/rashedsumon/instagram-teaser/internal/timeline"
)

// ErrEncode marks an external encoder failure. Fatal to the run; the
// underlying ffmpeg output is preserved in the wrap chain.
var ErrEncode = errors.New("encode failed")

// EncodeRequest is the declarative description of the final encode: the
// core builds it, an Encoder implementation interprets it. Swapping the
// engine means implementing Encoder, nothing else.
type EncodeRequest struct {
	OutputPath string
	FPS        int
	Width      int
	Height     int
	VideoCodec string
	AudioCodec string
	Quality    int // CRF for libx264; encoder-specific otherwise
	Preset     string
	Profile    string
	Level      string
	HasAudio   bool
}

type Encoder interface {
	EncodeSegment(ctx context.Context, img image.Image, videoPath string, params config.SegmentParams, encoderName string, quality int) error
	Mux(ctx context.Context, segmentPaths []string, tl *timeline.Timeline, req EncodeRequest) error
}

// FFmpegEncoder drives the ffmpeg binary: one zoompan pass per segment
// fed raw RGBA over stdin, then one filter_complex pass joining the
// segments with crossfades, compositing the overlay and muxing audio.
type FFmpegEncoder struct{}

func (e *FFmpegEncoder) EncodeSegment(
	ctx context.Context,
	img image.Image,
	videoPath string,
	params config.SegmentParams,
	encoderName string,
	quality int,
) error {
	inputW, inputH := img.Bounds().Dx(), img.Bounds().Dy()

	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", inputW, inputH),
		"-i", "-",
		"-vf", params.Filter,
		"-t", fmt.Sprintf("%f", params.Duration),
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", encoderName,
	}
	args = append(args, qualityArgs(encoderName, quality, "medium")...)
	args = append(args, videoPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("%w: stdin pipe: %v", ErrEncode, err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: ffmpeg start: %v", ErrEncode, err)
	}

	// One raw frame; zoompan's d=N multiplies it into the clip.
	if err := writeRawRGBA(stdin, img); err != nil {
		stdin.Close()
		// Reap the process so a failed write never orphans ffmpeg.
		cmd.Process.Kill()
		cmd.Wait()
		return fmt.Errorf("%w: write raw: %v", ErrEncode, err)
	}
	stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("%w: ffmpeg wait: %v", ErrEncode, err)
	}

	return nil
}

// Mux assembles the final teaser: xfade chain over the segments, the
// overlay layer across the whole stream, the trimmed audio track, and
// the output clamped to the timeline duration exactly.
func (e *FFmpegEncoder) Mux(ctx context.Context, segmentPaths []string, tl *timeline.Timeline, req EncodeRequest) error {
	if len(segmentPaths) == 0 {
		return fmt.Errorf("%w: no segments to mux", ErrEncode)
	}
	if len(segmentPaths) != len(tl.Clips) {
		return fmt.Errorf("%w: %d segments for %d clips", ErrEncode, len(segmentPaths), len(tl.Clips))
	}

	args := []string{"-y"}
	for _, p := range segmentPaths {
		args = append(args, "-i", p)
	}

	audioIndex := -1
	if req.HasAudio && tl.Audio != nil {
		audioIndex = len(segmentPaths)
		// Input-level trim: the track is cut to its attached length and
		// the tail of a longer video stays silent, never padded audio.
		args = append(args, "-t", fmt.Sprintf("%f", tl.Audio.Duration), "-i", tl.Audio.Path)
	}

	durations := make([]float64, len(tl.Clips))
	for i, c := range tl.Clips {
		durations[i] = c.Duration
	}

	lastOut := "[0:v]"
	filterGraph := ""
	if len(segmentPaths) > 1 {
		filterGraph = render.CrossfadeGraph(durations, tl.Crossfade, "[vseq]")
		lastOut = "[vseq]"
	}

	if tl.Overlay != nil {
		overlay := render.OverlayFilter(tl.Overlay.Text, tl.Overlay.FontSize, tl.Overlay.Color, tl.Overlay.FontFile)
		if filterGraph != "" {
			filterGraph += ";"
		}
		filterGraph += fmt.Sprintf("%s%s[vout]", lastOut, overlay)
		lastOut = "[vout]"
	}

	if filterGraph != "" {
		args = append(args, "-filter_complex", filterGraph)
		args = append(args, "-map", lastOut)
	} else {
		// No graph at all (single segment, no overlay): map the input
		// stream directly, bracket labels only exist for filter outputs.
		args = append(args, "-map", "0:v")
	}
	if audioIndex != -1 {
		args = append(args, "-map", fmt.Sprintf("%d:a", audioIndex))
		args = append(args, "-c:a", req.AudioCodec)
	}

	args = append(args, "-c:v", req.VideoCodec, "-pix_fmt", "yuv420p")
	args = append(args, qualityArgs(req.VideoCodec, req.Quality, req.Preset)...)
	if req.VideoCodec == "libx264" && req.Profile != "" {
		args = append(args, "-profile:v", req.Profile, "-level", req.Level)
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", req.FPS),
		"-t", fmt.Sprintf("%f", tl.TotalDuration),
		req.OutputPath,
	)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("%w: mux: %v, output: %s", ErrEncode, err, string(out))
	}
	return nil
}

func qualityArgs(encoderName string, quality int, preset string) []string {
	switch encoderName {
	case "h264_videotoolbox":
		// VideoToolbox has no CRF; map quality to bitrate (Q*100 kbit/s).
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", preset}
	}
}

func writeRawRGBA(w io.Writer, img image.Image) error {
	bounds := img.Bounds()
	rgba, ok := img.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 || rgba.Rect.Min.X != 0 || rgba.Rect.Min.Y != 0 {
		rgba = image.NewRGBA(bounds)
		draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)
	}
	_, err := w.Write(rgba.Pix)
	return err
}
