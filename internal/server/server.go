// Package server is the input-collection surface: it turns a multipart
// form into a TeaserConfig plus source image buffers and hands them to
// the pipeline. It renders no UI of its own.
package server

import (
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/rashedsumon/instagram-teaser/internal/config"
	"github.com/rashedsumon/instagram-teaser/internal/dataset"
	"github.com/rashedsumon/instagram-teaser/internal/engine"
	"github.com/rashedsumon/instagram-teaser/internal/provider"
	"github.com/rashedsumon/instagram-teaser/internal/source"
	"github.com/rashedsumon/instagram-teaser/internal/video"
)

const maxUploadBytes = 64 << 20

// Server handles HTTP requests for teaser generation.
type Server struct {
	Encoder      video.Encoder
	Datasets     *dataset.Client
	OutputDir    string
	Placeholder  string
	BundledAudio string
	VideoEncoder string
	BaseURL      string

	// The pipeline is one generation at a time; concurrent requests
	// queue here instead of sharing timelines.
	mu sync.Mutex
}

type generateResponse struct {
	Success  bool     `json:"success"`
	Message  string   `json:"message"`
	VideoID  string   `json:"video_id,omitempty"`
	VideoURL string   `json:"video_url,omitempty"`
	Warnings []string `json:"warnings,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// NewRouter constructs a Gin engine with registered routes.
func (s *Server) NewRouter() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.MaxMultipartMemory = maxUploadBytes

	r.GET("/health", s.handleHealth)
	r.POST("/api/teasers", s.handleGenerate)
	r.GET("/api/teasers/:id/qr", s.handleQR)
	r.POST("/api/datasets/download", s.handleDatasetDownload)
	r.StaticFS("/outputs", gin.Dir(s.OutputDir, false))

	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

func (s *Server) handleGenerate(c *gin.Context) {
	if mode := c.PostForm("mode"); mode == "remote" {
		p := &provider.RemoteProvider{Name: c.PostForm("provider")}
		_, err := p.Generate(c.Request.Context(), c.PostForm("script"), config.Default())
		c.JSON(http.StatusNotImplemented, generateResponse{Success: false, Message: "remote generation unavailable", Error: err.Error()})
		return
	}

	cfg, err := parseTeaserForm(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, generateResponse{Success: false, Message: "invalid parameters", Error: err.Error()})
		return
	}
	cfg.OutputDir = s.OutputDir
	cfg.VideoEncoder = s.VideoEncoder

	images, err := readUploads(c, "images")
	if err != nil {
		c.JSON(http.StatusBadRequest, generateResponse{Success: false, Message: "could not read image uploads", Error: err.Error()})
		return
	}

	var src source.Source
	if len(images) > 0 {
		src, err = source.NewBufferSource(images)
		if err != nil {
			c.JSON(http.StatusBadRequest, generateResponse{Success: false, Message: "could not decode image uploads", Error: err.Error()})
			return
		}
	} else {
		brand, _ := config.ParseHexColor(cfg.BrandColor)
		src, err = source.Fallback(s.Placeholder, brand, cfg.Width, cfg.Height)
		if err != nil {
			c.JSON(http.StatusInternalServerError, generateResponse{Success: false, Message: "no usable reference images", Error: err.Error()})
			return
		}
	}
	defer src.Close()

	var audioUpload []byte
	if cfg.IncludeAudio {
		buffers, err := readUploads(c, "audio")
		if err == nil && len(buffers) > 0 {
			audioUpload = buffers[0]
		}
	}

	proj := engine.NewProject(&cfg, src, s.Encoder)
	proj.AudioUpload = audioUpload
	proj.BundledAudio = s.BundledAudio

	s.mu.Lock()
	outputPath, err := proj.Run(c.Request.Context())
	s.mu.Unlock()

	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, config.ErrInvalidConfig) {
			status = http.StatusBadRequest
		}
		log.Printf("[!] Generation failed: %v", err)
		c.JSON(status, generateResponse{Success: false, Message: "generation failed", Error: err.Error()})
		return
	}

	name := filepath.Base(outputPath)
	id := strings.TrimSuffix(strings.TrimPrefix(name, "teaser_"), ".mp4")
	c.JSON(http.StatusOK, generateResponse{
		Success:  true,
		Message:  "teaser generated",
		VideoID:  id,
		VideoURL: s.BaseURL + "/outputs/" + name,
		Warnings: proj.Warnings,
	})
}

// handleQR returns a QR code for a rendered teaser's download URL, so
// the file is one camera scan away from the phone it is destined for.
func (s *Server) handleQR(c *gin.Context) {
	id := c.Param("id")
	if strings.ContainsAny(id, "/\\.") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bad id"})
		return
	}
	url := fmt.Sprintf("%s/outputs/teaser_%s.mp4", s.BaseURL, id)

	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}

func (s *Server) handleDatasetDownload(c *gin.Context) {
	var req struct {
		Ref string `json:"ref" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	path, err := s.Datasets.Download(c.Request.Context(), req.Ref)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"path": path})
}

// parseTeaserForm maps the multipart form fields onto a validated
// TeaserConfig. Absent fields keep their defaults.
func parseTeaserForm(c *gin.Context) (config.TeaserConfig, error) {
	cfg := config.Default()

	if v := c.PostForm("duration"); v != "" {
		d, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("bad duration %q", v)
		}
		cfg.TotalDuration = d
	}
	if v := c.PostForm("fps"); v != "" {
		fps, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("bad fps %q", v)
		}
		cfg.FPS = fps
	}
	if v := c.PostForm("font_size"); v != "" {
		size, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("bad font_size %q", v)
		}
		cfg.FontSize = size
	}
	if v := c.PostForm("brand_color"); v != "" {
		cfg.BrandColor = v
	}
	cfg.OverlayText = c.PostForm("text")
	if v := c.PostForm("include_audio"); v != "" {
		cfg.IncludeAudio = v == "true" || v == "1" || v == "on"
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func readUploads(c *gin.Context, field string) ([][]byte, error) {
	form, err := c.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		// Plain form post without file parts: uploads are optional.
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	files := form.File[field]

	buffers := make([][]byte, 0, len(files))
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return nil, err
		}
		buf, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			return nil, err
		}
		buffers = append(buffers, buf)
	}
	return buffers, nil
}
