// Package assembler drives the end-to-end pipeline: probe the audio
// duration, sample the cue list into a frame sequence, hand frames plus
// audio to the encoder, and clean the working storage back up.
package assembler

import (
	"context"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/sub2video/internal/compositor"
	"github.com/ivlev/sub2video/internal/config"
	"github.com/ivlev/sub2video/internal/encoder"
	"github.com/ivlev/sub2video/internal/source"
	"github.com/ivlev/sub2video/internal/subtitle"
)

// frameShare is the slice of the progress budget spent on frame
// generation; the encoder's own progress feed fills the rest.
const frameShare = 0.75

// progressEvery bounds callback overhead during the frame loop.
const progressEvery = 10

// Project runs one video-generation request. One instance per request;
// the encoder may be shared across projects and serializes jobs itself.
type Project struct {
	Config  *config.Config
	Source  source.Source
	Encoder encoder.Encoder

	// Renderer overrides the compositor when set; tests use this to
	// observe cache behavior.
	Renderer compositor.Renderer

	workDir   string
	artifacts []string
}

func New(cfg *config.Config, src source.Source, enc encoder.Encoder) *Project {
	return &Project{Config: cfg, Source: src, Encoder: enc}
}

// Run produces the encoded container bytes. onProgress receives
// monotonically non-decreasing ratios in [0,1]; it must be cheap.
func (p *Project) Run(ctx context.Context, doc string, onProgress func(float64)) ([]byte, error) {
	report := monotonic(onProgress)

	var err error
	p.workDir, err = os.MkdirTemp("", "sub2video_")
	if err != nil {
		return nil, err
	}
	defer p.cleanup()

	// 1. Duration: probe, fall back rather than abort. A wrong duration
	// is recoverable downstream via -shortest; no video at all is not.
	duration, err := p.Encoder.ProbeDuration(ctx, p.Config.AudioPath)
	if err != nil {
		log.Printf("[!] Audio duration probe failed (%v), using fallback %.0fs", err, p.Config.FallbackDuration)
		duration = p.Config.FallbackDuration
	}

	// 2. Cues.
	cues := subtitle.Parse(doc)
	fmt.Printf("[*] Parsed %d cue(s) | Duration: %.2fs\n", len(cues), duration)

	// 3. Frame count at the fixed sampling rate.
	rate := p.Config.FrameRate
	totalFrames := int(math.Ceil(duration * float64(rate)))
	if totalFrames < 1 {
		totalFrames = 1
	}

	renderer, err := p.renderer()
	if err != nil {
		return nil, err
	}

	// 4. Frame sequence.
	if err := p.generateFrames(ctx, renderer, cues, totalFrames, report); err != nil {
		return nil, err
	}

	// 5. Stage the audio under a normalized name, original extension kept.
	audioPath, err := p.stageAudio()
	if err != nil {
		return nil, err
	}

	// Optional ASS burn path: the encoder draws the captions instead of
	// the raster compositor.
	subtitlePath := ""
	if p.Config.BurnMode {
		subtitlePath, err = p.stageSubtitles(doc)
		if err != nil {
			return nil, err
		}
	}

	// 6-7. Single encode; its progress feed occupies the remaining budget.
	outputPath := filepath.Join(p.workDir, "out.mp4")
	p.artifacts = append(p.artifacts, outputPath)

	job := encoder.MuxJob{
		FramePattern: filepath.Join(p.workDir, "frame_%06d.jpg"),
		FrameRate:    rate,
		AudioPath:    audioPath,
		OutputPath:   outputPath,
		SubtitlePath: subtitlePath,
		Width:        p.Config.Width,
		Height:       p.Config.Height,
		Quality:      p.Config.Quality,
		Duration:     duration,
		OnProgress: func(r float64) {
			report(frameShare + (1-frameShare)*r)
		},
		Log: os.Stderr,
	}
	if err := p.Encoder.Mux(ctx, job); err != nil {
		return nil, fmt.Errorf("encode: %w", err)
	}

	// 8. Collect the container before cleanup deletes it.
	out, err := os.ReadFile(outputPath)
	if err != nil {
		return nil, fmt.Errorf("read encoded output: %w", err)
	}

	// 9-10. Cleanup runs in the deferred handler.
	report(1.0)
	return out, nil
}

// renderer builds the cached compositor chain unless a test injected one.
func (p *Project) renderer() (compositor.Renderer, error) {
	if p.Renderer != nil {
		return p.Renderer, nil
	}
	bg, err := p.Source.Image()
	if err != nil {
		return nil, err
	}
	comp, err := compositor.New(bg, p.Config.Width, p.Config.Height, p.Config.FontSize, p.Config.BadgeURL)
	if err != nil {
		return nil, err
	}
	return comp, nil
}

// generateFrames samples t = i/rate for every frame index and writes the
// composited JPEG artifacts. With Workers > 1 the range is split into
// contiguous chunks, one cache per worker, so adjacent-frame reuse still
// holds inside each chunk.
func (p *Project) generateFrames(ctx context.Context, renderer compositor.Renderer, cues []subtitle.Cue, totalFrames int, report func(float64)) error {
	for i := 0; i < totalFrames; i++ {
		p.artifacts = append(p.artifacts, p.framePath(i))
	}

	workers := p.Config.Workers
	if workers > totalFrames {
		workers = totalFrames
	}
	if workers > 1 {
		return p.generateFramesParallel(ctx, cues, totalFrames, workers, report)
	}

	cache := compositor.NewCache(renderer)
	for i := 0; i < totalFrames; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := p.renderFrame(cache, cues, i); err != nil {
			return err
		}
		if (i+1)%progressEvery == 0 || i+1 == totalFrames {
			report(float64(i+1) / float64(totalFrames) * frameShare)
		}
	}
	return nil
}

func (p *Project) generateFramesParallel(ctx context.Context, cues []subtitle.Cue, totalFrames, workers int, report func(float64)) error {
	var done int64
	var mu sync.Mutex

	grp, ctx := errgroup.WithContext(ctx)
	chunk := (totalFrames + workers - 1) / workers
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > totalFrames {
			end = totalFrames
		}
		if start >= end {
			break
		}
		grp.Go(func() error {
			bg, err := p.Source.Image()
			if err != nil {
				return err
			}
			comp, err := compositor.New(bg, p.Config.Width, p.Config.Height, p.Config.FontSize, p.Config.BadgeURL)
			if err != nil {
				return err
			}
			cache := compositor.NewCache(comp)
			for i := start; i < end; i++ {
				if err := ctx.Err(); err != nil {
					return err
				}
				if err := p.renderFrame(cache, cues, i); err != nil {
					return err
				}
				mu.Lock()
				done++
				if done%progressEvery == 0 || done == int64(totalFrames) {
					report(float64(done) / float64(totalFrames) * frameShare)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	return grp.Wait()
}

// renderFrame composes and writes one frame artifact.
func (p *Project) renderFrame(cache *compositor.Cache, cues []subtitle.Cue, index int) error {
	t := float64(index) / float64(p.Config.FrameRate)

	caption := ""
	if !p.Config.BurnMode {
		if cue, ok := subtitle.ActiveAt(cues, t); ok {
			caption = cue.Text
		}
	}

	blob, err := cache.Render(caption, p.Config.AnchorPct)
	if err != nil {
		return fmt.Errorf("frame %d (t=%.2fs): %w", index, t, err)
	}
	return os.WriteFile(p.framePath(index), blob, 0644)
}

func (p *Project) framePath(index int) string {
	return filepath.Join(p.workDir, fmt.Sprintf("frame_%06d.jpg", index))
}

// stageAudio copies the audio asset into working storage as
// "audio<original extension>".
func (p *Project) stageAudio() (string, error) {
	ext := strings.ToLower(filepath.Ext(p.Config.AudioPath))
	if ext == "" {
		ext = ".mp3"
	}
	dst := filepath.Join(p.workDir, "audio"+ext)

	data, err := os.ReadFile(p.Config.AudioPath)
	if err != nil {
		return "", fmt.Errorf("stage audio: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return "", fmt.Errorf("stage audio: %w", err)
	}
	p.artifacts = append(p.artifacts, dst)
	return dst, nil
}

// stageSubtitles writes the ASS script for the burn filter.
func (p *Project) stageSubtitles(doc string) (string, error) {
	dst := filepath.Join(p.workDir, "captions.ass")
	f, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("stage subtitles: %w", err)
	}
	defer f.Close()

	events := subtitle.Events(doc)
	style := subtitle.DefaultStyle(p.Config.Width, p.Config.Height)
	if err := subtitle.WriteASS(f, events, style); err != nil {
		return "", fmt.Errorf("stage subtitles: %w", err)
	}
	p.artifacts = append(p.artifacts, dst)
	return dst, nil
}

// cleanup deletes every artifact and the working directory. Best effort:
// the deliverable has already been read back, so deletion failures are
// logged and swallowed.
func (p *Project) cleanup() {
	for _, path := range p.artifacts {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Printf("[!] Could not remove %s: %v", path, err)
		}
	}
	p.artifacts = nil
	if p.workDir != "" {
		if err := os.RemoveAll(p.workDir); err != nil {
			log.Printf("[!] Could not remove workdir %s: %v", p.workDir, err)
		}
		p.workDir = ""
	}
}

// monotonic wraps a progress callback so reported ratios never decrease
// and stay inside [0,1]. A nil callback becomes a no-op.
func monotonic(onProgress func(float64)) func(float64) {
	if onProgress == nil {
		return func(float64) {}
	}
	last := 0.0
	return func(r float64) {
		if r > 1 {
			r = 1
		}
		if r <= last {
			return
		}
		last = r
		onProgress(r)
	}
}
