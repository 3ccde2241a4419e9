package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Preset is a reusable style bundle stored on disk, so a brand's look
// (color, text size, pacing) survives between runs.
type Preset struct {
	Name        string  `yaml:"name"`
	Duration    float64 `yaml:"duration"`
	FPS         int     `yaml:"fps"`
	OverlayText string  `yaml:"overlay_text"`
	FontSize    int     `yaml:"font_size"`
	BrandColor  string  `yaml:"brand_color"`
	Crossfade   float64 `yaml:"crossfade"`
	ZoomGain    float64 `yaml:"zoom_gain"`
}

// WritePreset writes a preset to a YAML file.
func WritePreset(p *Preset, path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadPreset reads a preset from a YAML file.
func ReadPreset(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// Apply overlays the preset's non-zero fields onto a config.
func (p *Preset) Apply(c *TeaserConfig) {
	if p.Duration > 0 {
		c.TotalDuration = p.Duration
	}
	if p.FPS > 0 {
		c.FPS = p.FPS
	}
	if p.OverlayText != "" {
		c.OverlayText = p.OverlayText
	}
	if p.FontSize > 0 {
		c.FontSize = p.FontSize
	}
	if p.BrandColor != "" {
		c.BrandColor = p.BrandColor
	}
	if p.Crossfade > 0 {
		c.Crossfade = p.Crossfade
	}
	if p.ZoomGain > 0 {
		c.ZoomGain = p.ZoomGain
	}
}

// FindLatestPreset finds the most recent preset file in a directory.
func FindLatestPreset(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read presets directory: %w", err)
	}

	var presets []string
	for _, entry := range entries {
		if !entry.IsDir() && (strings.HasSuffix(entry.Name(), ".yaml") || strings.HasSuffix(entry.Name(), ".yml")) {
			presets = append(presets, filepath.Join(dir, entry.Name()))
		}
	}

	if len(presets) == 0 {
		return "", fmt.Errorf("no preset files found in %s", dir)
	}

	sort.Slice(presets, func(i, j int) bool {
		infoI, _ := os.Stat(presets[i])
		infoJ, _ := os.Stat(presets[j])
		return infoI.ModTime().After(infoJ.ModTime())
	})

	return presets[0], nil
}
