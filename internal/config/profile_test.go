package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.FrameRate != 4 {
		t.Errorf("default frame rate = %d, want 4", cfg.FrameRate)
	}
	if cfg.FallbackDuration != 180 {
		t.Errorf("default fallback duration = %f, want 180", cfg.FallbackDuration)
	}
	if cfg.AnchorPct != 50 {
		t.Errorf("default anchor = %d, want 50", cfg.AnchorPct)
	}
}

func TestLoadProfileApply(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	content := `width: 720
height: 1280
anchor_pct: 80
badge_url: https://example.com
burn_mode: true
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	profile, err := LoadProfile(path)
	if err != nil {
		t.Fatalf("LoadProfile error: %v", err)
	}

	cfg := Default()
	profile.Apply(cfg)

	if cfg.Width != 720 || cfg.Height != 1280 {
		t.Errorf("resolution = %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.AnchorPct != 80 {
		t.Errorf("anchor = %d", cfg.AnchorPct)
	}
	if cfg.BadgeURL != "https://example.com" {
		t.Errorf("badge = %q", cfg.BadgeURL)
	}
	if !cfg.BurnMode {
		t.Error("burn mode not applied")
	}
	// Untouched fields keep their defaults.
	if cfg.FrameRate != 4 {
		t.Errorf("frame rate changed to %d", cfg.FrameRate)
	}
}

func TestLoadProfileBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	if err := os.WriteFile(path, []byte("width: [not a number"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProfile(path); err == nil {
		t.Error("expected a parse error")
	}
}
