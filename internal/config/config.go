package config

type Config struct {
	AudioPath    string
	CoverPath    string
	CoverPage    int // page index when the cover is a PDF
	SubtitlePath string
	OutputPath   string

	Width     int
	Height    int
	FrameRate int
	AnchorPct int
	FontSize  float64
	Quality   int
	Workers   int

	BadgeURL string
	BurnMode bool // burn captions with ffmpeg's subtitles filter instead of rasterizing

	FallbackDuration float64 // used when the audio duration probe fails
	Preset           string
}

// Default returns the fixed style profile the pipeline ships with.
func Default() *Config {
	return &Config{
		Width:            1280,
		Height:           720,
		FrameRate:        4,
		AnchorPct:        50,
		FontSize:         48,
		Quality:          23,
		Workers:          1,
		FallbackDuration: 180,
	}
}
