package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Profile is an optional YAML render profile. Zero-valued fields leave the
// corresponding Config field untouched.
type Profile struct {
	Width     int     `yaml:"width"`
	Height    int     `yaml:"height"`
	FrameRate int     `yaml:"frame_rate"`
	AnchorPct int     `yaml:"anchor_pct"`
	FontSize  float64 `yaml:"font_size"`
	Quality   int     `yaml:"quality"`
	Workers   int     `yaml:"workers"`
	BadgeURL  string  `yaml:"badge_url"`
	BurnMode  bool    `yaml:"burn_mode"`
}

func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse profile %s: %w", path, err)
	}
	return &p, nil
}

// Apply overlays the profile onto cfg.
func (p *Profile) Apply(cfg *Config) {
	if p.Width > 0 {
		cfg.Width = p.Width
	}
	if p.Height > 0 {
		cfg.Height = p.Height
	}
	if p.FrameRate > 0 {
		cfg.FrameRate = p.FrameRate
	}
	if p.AnchorPct > 0 {
		cfg.AnchorPct = p.AnchorPct
	}
	if p.FontSize > 0 {
		cfg.FontSize = p.FontSize
	}
	if p.Quality > 0 {
		cfg.Quality = p.Quality
	}
	if p.Workers > 0 {
		cfg.Workers = p.Workers
	}
	if p.BadgeURL != "" {
		cfg.BadgeURL = p.BadgeURL
	}
	if p.BurnMode {
		cfg.BurnMode = true
	}
}
