package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"runtime"
	"strings"

	"github.com/joho/godotenv"

	"github.com/rashedsumon/instagram-teaser/internal/config"
	"github.com/rashedsumon/instagram-teaser/internal/dataset"
	"github.com/rashedsumon/instagram-teaser/internal/engine"
	"github.com/rashedsumon/instagram-teaser/internal/server"
	"github.com/rashedsumon/instagram-teaser/internal/source"
	"github.com/rashedsumon/instagram-teaser/internal/system"
	"github.com/rashedsumon/instagram-teaser/internal/video"
)

func main() {
	system.InitResourceLimits()

	// .env carries KAGGLE_USERNAME / KAGGLE_KEY and server settings.
	_ = godotenv.Load()

	servePtr := flag.Bool("serve", false, "Run the HTTP input surface instead of a one-shot render")
	addrPtr := flag.String("addr", envOr("TEASER_ADDR", ":8080"), "HTTP listen address (serve mode)")
	baseURLPtr := flag.String("base-url", envOr("TEASER_BASE_URL", "http://localhost:8080"), "Public base URL for download links and QR codes")

	imagesPtr := flag.String("images", "", "Reference images: a directory, a single image, or a PDF deck")
	audioPtr := flag.String("audio", "", "Background audio file (optional)")
	noAudioPtr := flag.Bool("no-audio", false, "Render silent even if audio is available")
	durationPtr := flag.Float64("duration", 7, "Teaser duration in seconds (5-10)")
	fpsPtr := flag.Int("fps", config.DefaultFPS, "Frame rate: 24, 25 or 30")
	textPtr := flag.String("text", "", "Overlay text (optional)")
	fontSizePtr := flag.Int("font-size", config.DefaultFontSize, "Overlay text size (36-160)")
	colorPtr := flag.String("color", config.DefaultBrandColor, "Brand color, #RRGGBB")
	outDirPtr := flag.String("out-dir", "outputs", "Output directory")
	presetPtr := flag.String("preset", "", "Style preset to apply before other flags: a YAML file, or a directory to use its newest preset")
	workersPtr := flag.Int("workers", runtime.NumCPU(), "Parallel workers for preparation and encoding")
	statsPtr := flag.Bool("stats", false, "Print a performance report after the run")
	datasetPtr := flag.String("dataset", "", "Download a Kaggle dataset (owner/name) and exit")

	flag.Parse()

	if *datasetPtr != "" {
		client := dataset.NewClientFromEnv()
		path, err := client.Download(context.Background(), *datasetPtr)
		if err != nil {
			log.Fatalf("[-] Dataset download failed: %v", err)
		}
		fmt.Printf("[+++] Dataset ready: %s\n", path)
		return
	}

	encoderName := system.GetBestH264Encoder()
	if encoderName != "libx264" {
		fmt.Printf("[*] Hardware acceleration detected: %s\n", encoderName)
	}

	if *servePtr {
		srv := &server.Server{
			Encoder:      &video.FFmpegEncoder{},
			Datasets:     dataset.NewClientFromEnv(),
			OutputDir:    *outDirPtr,
			Placeholder:  "assets/placeholder.png",
			BundledAudio: "assets/sample_music.mp3",
			VideoEncoder: encoderName,
			BaseURL:      strings.TrimSuffix(*baseURLPtr, "/"),
		}
		r := srv.NewRouter()
		fmt.Printf("[*] Listening on %s\n", *addrPtr)
		if err := r.Run(*addrPtr); err != nil {
			log.Fatalf("[-] Server failed: %v", err)
		}
		return
	}

	cfg := config.Default()
	if *presetPtr != "" {
		presetPath := *presetPtr
		if fi, err := os.Stat(presetPath); err == nil && fi.IsDir() {
			presetPath, err = config.FindLatestPreset(presetPath)
			if err != nil {
				log.Fatalf("[-] Could not pick a preset: %v", err)
			}
		}
		p, err := config.ReadPreset(presetPath)
		if err != nil {
			log.Fatalf("[-] Could not read preset: %v", err)
		}
		p.Apply(&cfg)
		fmt.Printf("[*] Preset applied: %s\n", p.Name)
	}
	// Explicit flags win over the preset; untouched flags keep its values.
	flagsSet := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { flagsSet[f.Name] = true })
	if flagsSet["duration"] || *presetPtr == "" {
		cfg.TotalDuration = *durationPtr
	}
	if flagsSet["fps"] || *presetPtr == "" {
		cfg.FPS = *fpsPtr
	}
	if flagsSet["text"] || *presetPtr == "" {
		cfg.OverlayText = *textPtr
	}
	if flagsSet["font-size"] || *presetPtr == "" {
		cfg.FontSize = *fontSizePtr
	}
	if flagsSet["color"] || *presetPtr == "" {
		cfg.BrandColor = *colorPtr
	}
	cfg.IncludeAudio = !*noAudioPtr
	cfg.OutputDir = *outDirPtr
	cfg.Workers = *workersPtr
	cfg.VideoEncoder = encoderName
	cfg.ShowStats = *statsPtr

	if err := cfg.Validate(); err != nil {
		log.Fatalf("[-] %v", err)
	}

	src, err := openSource(*imagesPtr, cfg)
	if err != nil {
		log.Fatalf("[-] Could not open image source: %v", err)
	}
	defer src.Close()

	proj := engine.NewProject(&cfg, src, &video.FFmpegEncoder{})
	proj.BundledAudio = resolveAudio(*audioPtr)

	out, err := proj.Run(context.Background())
	if err != nil {
		log.Fatalf("[-] Generation failed: %v", err)
	}

	fmt.Printf("[+++] Done! Result: %s\n", out)
}

func openSource(path string, cfg config.TeaserConfig) (source.Source, error) {
	if path == "" {
		fmt.Println("[*] No reference images supplied, using fallback")
		brand, err := config.ParseHexColor(cfg.BrandColor)
		if err != nil {
			return nil, err
		}
		return source.Fallback("assets/placeholder.png", brand, cfg.Width, cfg.Height)
	}
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return source.NewFitzPDFSource(path, 150)
	}
	return source.NewDirSource(path)
}

func resolveAudio(flagPath string) string {
	if flagPath != "" {
		return flagPath
	}
	if _, err := os.Stat("assets/sample_music.mp3"); err == nil {
		return "assets/sample_music.mp3"
	}
	return ""
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
