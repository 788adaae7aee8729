package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ivlev/sub2video/internal/assembler"
	"github.com/ivlev/sub2video/internal/config"
	"github.com/ivlev/sub2video/internal/encoder"
	"github.com/ivlev/sub2video/internal/source"
	"github.com/ivlev/sub2video/internal/system"
)

func main() {
	system.InitResourceLimits()

	// Bootstrap the input/output layout.
	dirs := []string{"input/audio", "input/covers", "input/subtitles", "output"}
	for _, d := range dirs {
		os.MkdirAll(d, 0755)
	}

	audioPtr := flag.String("audio", "", "Audio track (default: most recent file in input/audio/)")
	coverPtr := flag.String("cover", "", "Cover image or PDF (default: most recent file in input/covers/)")
	subsPtr := flag.String("subs", "", "Timed-text document (default: most recent file in input/subtitles/)")
	outputPtr := flag.String("output", "", "Output video path (default: generated in output/)")
	widthPtr := flag.Int("width", 1280, "Width")
	heightPtr := flag.Int("height", 720, "Height")
	presetPtr := flag.String("preset", "", "Format preset: 16:9, 9:16 (Shorts/TikTok), 4:5 (Instagram)")
	anchorPtr := flag.Int("anchor", 50, "Caption vertical anchor in percent (50 = centered)")
	fontSizePtr := flag.Float64("font-size", 48, "Caption font size")
	ratePtr := flag.Int("rate", 4, "Frame sampling rate per second")
	qualityPtr := flag.Int("quality", 0, "Video quality (0 = auto, x264: CRF 1-51)")
	workersPtr := flag.Int("workers", 0, "Parallel compositing workers (0 = auto)")
	burnPtr := flag.Bool("burn", false, "Burn captions with ffmpeg's subtitles filter instead of rasterizing")
	badgePtr := flag.String("badge", "", "URL rendered as a QR badge in the corner")
	pagePtr := flag.Int("page", 0, "Page index when the cover is a PDF")
	profilePtr := flag.String("profile", "", "YAML render profile")

	flag.Parse()

	cfg := config.Default()
	cfg.Width, cfg.Height = *widthPtr, *heightPtr
	switch *presetPtr {
	case "16:9":
		cfg.Width, cfg.Height = 1280, 720
	case "9:16":
		cfg.Width, cfg.Height = 720, 1280
	case "4:5":
		cfg.Width, cfg.Height = 1080, 1350
	}
	cfg.Preset = *presetPtr
	cfg.AnchorPct = *anchorPtr
	cfg.FontSize = *fontSizePtr
	cfg.FrameRate = *ratePtr
	cfg.BurnMode = *burnPtr
	cfg.BadgeURL = *badgePtr
	cfg.CoverPage = *pagePtr
	if *qualityPtr > 0 {
		cfg.Quality = *qualityPtr
	}

	if *profilePtr != "" {
		profile, err := config.LoadProfile(*profilePtr)
		if err != nil {
			log.Fatalf("[-] Profile error: %v", err)
		}
		profile.Apply(cfg)
		fmt.Printf("[*] Profile applied: %s\n", *profilePtr)
	}

	cfg.AudioPath = *audioPtr
	if cfg.AudioPath == "" {
		latest, err := system.FindLatestAudio("input/audio")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put an audio track in input/audio/", err)
		}
		cfg.AudioPath = latest
		fmt.Printf("[*] Audio: %s\n", cfg.AudioPath)
	}

	cfg.CoverPath = *coverPtr
	if cfg.CoverPath == "" {
		latest, err := system.FindLatestCover("input/covers")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a cover image in input/covers/", err)
		}
		cfg.CoverPath = latest
		fmt.Printf("[*] Cover: %s\n", cfg.CoverPath)
	}

	cfg.SubtitlePath = *subsPtr
	if cfg.SubtitlePath == "" {
		latest, err := system.FindLatestSubtitles("input/subtitles")
		if err != nil {
			log.Fatalf("[-] Error: %v. Put a subtitle track in input/subtitles/", err)
		}
		cfg.SubtitlePath = latest
		fmt.Printf("[*] Subtitles: %s\n", cfg.SubtitlePath)
	}

	cfg.Workers = *workersPtr
	if cfg.Workers <= 0 {
		cfg.Workers = system.RecommendedWorkers(cfg.Width, cfg.Height)
	}

	cfg.OutputPath = *outputPtr
	if cfg.OutputPath == "" {
		baseName := filepath.Base(cfg.AudioPath)
		nameOnly := strings.TrimSuffix(baseName, filepath.Ext(baseName))
		cleanName := strings.ReplaceAll(nameOnly, " ", "_")
		timestamp := time.Now().Format("2006-01-02_15-04-05")
		cfg.OutputPath = filepath.Join("output", fmt.Sprintf("%s_%s.mp4", cleanName, timestamp))
	}

	var src source.Source
	var err error
	if strings.HasSuffix(strings.ToLower(cfg.CoverPath), ".pdf") {
		src, err = source.NewPDFSource(cfg.CoverPath, cfg.CoverPage, 300)
	} else {
		src, err = source.NewFileSource(cfg.CoverPath)
	}
	if err != nil {
		log.Fatalf("[-] Cover error: %v", err)
	}
	defer src.Close()

	doc, err := os.ReadFile(cfg.SubtitlePath)
	if err != nil {
		log.Fatalf("[-] Subtitle error: %v", err)
	}

	fmt.Println("--- [PROJECT: SUB2VIDEO] ---")
	fmt.Printf("[*] Resolution: %dx%d @ %d fps sampling | Anchor: %d%%\n",
		cfg.Width, cfg.Height, cfg.FrameRate, cfg.AnchorPct)
	fmt.Println("----------------------------")

	enc := encoder.NewFFmpeg()
	project := assembler.New(cfg, src, enc)

	startTime := time.Now()
	lastPercent := -1
	out, err := project.Run(context.Background(), string(doc), func(r float64) {
		percent := int(r * 100)
		if percent/5 > lastPercent/5 {
			fmt.Printf("[>] Progress: %d%%\n", percent)
		}
		lastPercent = percent
	})
	if err != nil {
		log.Fatalf("[-] Render error: %v", err)
	}

	if err := os.WriteFile(cfg.OutputPath, out, 0644); err != nil {
		log.Fatalf("[-] Could not write output: %v", err)
	}

	fmt.Printf("[+++] Done in %.2fs! Result: %s\n", time.Since(startTime).Seconds(), cfg.OutputPath)
}
