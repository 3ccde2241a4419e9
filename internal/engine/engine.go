package engine

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rashedsumon/instagram-teaser/internal/audio"
	"github.com/rashedsumon/instagram-teaser/internal/config"
	"github.com/rashedsumon/instagram-teaser/internal/frame"
	"github.com/rashedsumon/instagram-teaser/internal/render"
	"github.com/rashedsumon/instagram-teaser/internal/source"
	"github.com/rashedsumon/instagram-teaser/internal/system"
	"github.com/rashedsumon/instagram-teaser/internal/timeline"
	"github.com/rashedsumon/instagram-teaser/internal/video"
)

// IDGenerator produces collision-resistant run identifiers for output
// filenames. Injected so callers (and tests) control naming; no global
// counters.
type IDGenerator func() string

// UUIDGenerator is the default IDGenerator.
func UUIDGenerator() string {
	return uuid.NewString()
}

// Project owns everything one generation run needs. Each request gets
// its own Project; nothing is shared between concurrent runs.
type Project struct {
	Config  *config.TeaserConfig
	Source  source.Source
	Encoder video.Encoder
	Prober  audio.Prober
	NewID   IDGenerator

	// FilterSupported probes the local ffmpeg for a filter by name.
	// Swappable for tests.
	FilterSupported func(name string) bool

	AudioUpload  []byte
	BundledAudio string

	// Warnings collects non-fatal degradations (bad audio upload,
	// dropped trailing images) for the caller to surface.
	Warnings []string

	tempDir string
}

func NewProject(cfg *config.TeaserConfig, src source.Source, enc video.Encoder) *Project {
	return &Project{
		Config:          cfg,
		Source:          src,
		Encoder:         enc,
		Prober:          audio.FFprobeProber{},
		NewID:           UUIDGenerator,
		FilterSupported: system.CheckFilterSupport,
	}
}

func (p *Project) warnf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	p.Warnings = append(p.Warnings, msg)
	log.Printf("[!] %s", msg)
}

// Run executes the full pipeline and returns the output path. Scratch
// files live in a per-run temp dir removed on every exit path; a partial
// output file is removed if the final encode fails.
func (p *Project) Run(ctx context.Context) (string, error) {
	startTime := time.Now()

	cfg := p.Config
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	encoderName := cfg.VideoEncoder
	if encoderName == "" {
		encoderName = "libx264"
	}
	quality := cfg.Quality
	if quality == 0 {
		switch encoderName {
		case "h264_videotoolbox":
			quality = 75
		case "h264_nvenc":
			quality = 28
		default:
			quality = 18 // CRF tuned for portrait social delivery
		}
	}
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	var err error
	p.tempDir, err = os.MkdirTemp("", "teaser_")
	if err != nil {
		return "", err
	}
	defer os.RemoveAll(p.tempDir)

	clipCount := p.Source.Count()
	if clipCount == 0 {
		return "", fmt.Errorf("source has no frames: %w", source.ErrMissingAsset)
	}
	if w, h, err := p.Source.Dimensions(0); err == nil {
		fmt.Printf("[*] Source: %d frames, %.0fx%.0f\n", clipCount, w, h)
	}

	alloc, err := timeline.Allocate(clipCount, cfg.TotalDuration, cfg.Crossfade, config.MinClipDuration, cfg.FPS)
	if err != nil {
		return "", err
	}
	if alloc.Used < clipCount {
		p.warnf("clip floor %.1fs: using first %d of %d images", config.MinClipDuration, alloc.Used, clipCount)
	}
	if alloc.Used > 1 && alloc.Crossfade < cfg.Crossfade {
		p.warnf("crossfade shrunk to %.2fs to keep clips above the floor", alloc.Crossfade)
	}

	fmt.Printf("[*] Canvas: %dx%d @ %d FPS | Clips: %d | Duration: %.2fs | Encoder: %s\n",
		cfg.Width, cfg.Height, cfg.FPS, alloc.Used, cfg.TotalDuration, encoderName)

	// Stage 1: cover-scale every source image (independent, parallel).
	prepStart := time.Now()
	frames := make([]*frame.PreparedFrame, alloc.Used)
	var g errgroup.Group
	g.SetLimit(workers)
	for i := 0; i < alloc.Used; i++ {
		g.Go(func() error {
			img, err := p.Source.Render(i)
			if err != nil {
				return fmt.Errorf("render image %d: %w", i, err)
			}
			pf, err := frame.Prepare(img, cfg.Width, cfg.Height, config.Overscan)
			if err != nil {
				return fmt.Errorf("prepare image %d: %w", i, err)
			}
			frames[i] = pf
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		releaseFrames(frames)
		return "", err
	}
	prepTime := time.Since(prepStart)

	tl, err := timeline.Compose(frames, alloc, cfg.TotalDuration, cfg.ZoomGain)
	if err != nil {
		releaseFrames(frames)
		return "", err
	}

	// Stage 2: one Ken Burns segment per clip.
	encStart := time.Now()
	segPaths := make([]string, len(tl.Clips))
	eg, egctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, clip := range tl.Clips {
		eg.Go(func() error {
			segPath := filepath.Join(p.tempDir, fmt.Sprintf("s%d.mp4", i))
			params := config.SegmentParams{
				Width:        cfg.Width,
				Height:       cfg.Height,
				FPS:          cfg.FPS,
				Duration:     clip.Duration,
				ZoomGain:     clip.ZoomGain,
				FadeDuration: tl.Crossfade,
				ClipIndex:    i,
			}
			params.Filter = render.KenBurnsFilter(params)

			if err := p.Encoder.EncodeSegment(egctx, clip.Frame.Image, segPath, params, encoderName, quality); err != nil {
				return fmt.Errorf("segment %d: %w", i, err)
			}
			clip.Frame.Release()
			segPaths[i] = segPath
			fmt.Printf("[>] Segment ready: %d/%d\n", i+1, len(tl.Clips))
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return "", err
	}
	encTime := time.Since(encStart)

	// Stage 3: overlay and audio. Minimal ffmpeg builds ship without
	// drawtext; the run degrades to no overlay instead of a mux failure.
	if cfg.OverlayText != "" {
		if p.FilterSupported("drawtext") {
			tl.AttachOverlay(cfg.OverlayText, cfg.FontSize, cfg.BrandColor, render.ResolveFont())
		} else {
			p.warnf("ffmpeg build lacks drawtext, rendering without overlay")
		}
	}
	if cfg.IncludeAudio {
		track, err := audio.Resolve(p.AudioUpload, p.BundledAudio, cfg.TotalDuration, p.tempDir, p.Prober)
		if err != nil {
			p.warnf("audio unusable, proceeding silent: %v", err)
		}
		tl.AttachAudio(track)
	}

	// Stage 4: final mux.
	if err := os.MkdirAll(cfg.OutputDir, 0755); err != nil {
		return "", err
	}
	outputPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("teaser_%s.mp4", p.NewID()))

	req := video.EncodeRequest{
		OutputPath: outputPath,
		FPS:        cfg.FPS,
		Width:      cfg.Width,
		Height:     cfg.Height,
		VideoCodec: encoderName,
		AudioCodec: "aac",
		Quality:    quality,
		Preset:     "medium",
		Profile:    "high",
		Level:      "4.0",
		HasAudio:   tl.Audio != nil,
	}

	muxStart := time.Now()
	if err := p.Encoder.Mux(ctx, segPaths, tl, req); err != nil {
		os.Remove(outputPath)
		return "", err
	}
	muxTime := time.Since(muxStart)

	if cfg.ShowStats {
		fmt.Printf(
			"--- [PERFORMANCE REPORT] ---\n"+
				"Host: %s\n"+
				"Total Time: %.2fs\n"+
				"Preparation: %.2fs\n"+
				"Segments: %.2fs\n"+
				"Final Mux: %.2fs\n"+
				"----------------------------\n",
			system.HostSummary(),
			time.Since(startTime).Seconds(), prepTime.Seconds(), encTime.Seconds(), muxTime.Seconds(),
		)
	}

	return outputPath, nil
}

func releaseFrames(frames []*frame.PreparedFrame) {
	for _, f := range frames {
		if f != nil && f.Image != nil {
			f.Release()
		}
	}
}
