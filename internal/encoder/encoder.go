// Package encoder wraps ffmpeg/ffprobe. One FFmpeg instance is meant to be
// shared across render jobs: binaries are located and the best H.264
// encoder probed once, and a job mutex serializes muxes so the instance is
// never driving two encodes at a time.
package encoder

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

var (
	// ErrEncoderLoad reports missing or unusable ffmpeg/ffprobe binaries.
	ErrEncoderLoad = errors.New("encoder load failed")
	// ErrEncoderInvocation reports a failed encode run.
	ErrEncoderInvocation = errors.New("encoder invocation failed")
)

// MuxJob describes one frame-sequence-to-container encode.
type MuxJob struct {
	FramePattern string // printf-style sequence pattern, e.g. dir/frame_%06d.jpg
	FrameRate    int
	AudioPath    string
	OutputPath   string
	SubtitlePath string // optional ASS script burned via the subtitles filter
	Width        int
	Height       int
	Quality      int           // CRF for libx264, translated for hardware encoders; 0 means default
	Duration     float64       // expected output duration, drives progress ratios
	OnProgress   func(float64) // per-segment encode progress in [0,1], optional
	Log          io.Writer     // human-readable encoder output, optional
}

type Encoder interface {
	ProbeDuration(ctx context.Context, path string) (float64, error)
	Mux(ctx context.Context, job MuxJob) error
}

// FFmpeg is the exec-backed encoder. The zero value is usable; loading is
// lazy and a load failure does not poison the instance, so a caller can
// retry after installing the binaries.
type FFmpeg struct {
	jobMu sync.Mutex

	loadMu sync.Mutex
	loaded bool
	codec  string
}

func NewFFmpeg() *FFmpeg {
	return &FFmpeg{}
}

// ensureLoaded locates the binaries and probes hardware encoders once.
func (f *FFmpeg) ensureLoaded() error {
	f.loadMu.Lock()
	defer f.loadMu.Unlock()

	if f.loaded {
		return nil
	}
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderLoad, err)
	}
	if _, err := exec.LookPath("ffprobe"); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderLoad, err)
	}
	f.codec = bestH264Encoder()
	f.loaded = true
	return nil
}

// bestH264Encoder prefers hardware encoders when ffmpeg exposes them.
func bestH264Encoder() string {
	out, err := exec.Command("ffmpeg", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, name := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), name) {
			return name
		}
	}
	return "libx264"
}

// ProbeDuration reads the container's native duration metadata. Callers
// treat failure as non-fatal and fall back to a default.
func (f *FFmpeg) ProbeDuration(ctx context.Context, path string) (float64, error) {
	if err := f.ensureLoaded(); err != nil {
		return 0, err
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %v", path, err)
	}

	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: unparsable duration %q", path, out)
	}
	return duration, nil
}

// Mux runs a single encode. Exactly one mux runs per instance at a time;
// concurrent callers block until the instance is free.
func (f *FFmpeg) Mux(ctx context.Context, job MuxJob) error {
	if err := f.ensureLoaded(); err != nil {
		return err
	}

	f.jobMu.Lock()
	defer f.jobMu.Unlock()

	args := f.buildMuxArgs(job)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)

	progress, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderInvocation, err)
	}

	var stderr bytes.Buffer
	if job.Log != nil {
		cmd.Stderr = io.MultiWriter(&stderr, job.Log)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrEncoderInvocation, err)
	}

	f.consumeProgress(progress, job.Duration, job.OnProgress)

	if err := cmd.Wait(); err != nil {
		tail := stderr.String()
		if len(tail) > 2048 {
			tail = tail[len(tail)-2048:]
		}
		return fmt.Errorf("%w: %v: %s", ErrEncoderInvocation, err, tail)
	}
	return nil
}

// buildMuxArgs assembles the single-invocation encode: image sequence read
// at the sampling rate, audio muxed in, output truncated to the shorter
// stream to absorb a wrong duration probe.
func (f *FFmpeg) buildMuxArgs(job MuxJob) []string {
	quality := job.Quality
	if quality <= 0 {
		quality = 23
	}

	args := []string{
		"-y",
		"-framerate", strconv.Itoa(job.FrameRate),
		"-i", job.FramePattern,
		"-i", job.AudioPath,
		"-vf", buildFilter(job.Width, job.Height, job.SubtitlePath),
		"-c:v", f.codec,
	}

	switch f.codec {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", strconv.Itoa(quality))
	default:
		args = append(args, "-crf", strconv.Itoa(quality), "-preset", "fast")
	}

	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		"-progress", "pipe:1",
		job.OutputPath,
	)
	return args
}

// consumeProgress parses ffmpeg's key=value progress feed and reports
// ratios in [0,1].
func (f *FFmpeg) consumeProgress(r io.Reader, duration float64, onProgress func(float64)) {
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		ratio, ok := parseProgressLine(scanner.Text(), duration)
		if ok && onProgress != nil {
			onProgress(ratio)
		}
	}
}

// parseProgressLine extracts a progress ratio from one out_time_ms line.
// The value is in microseconds despite the name.
func parseProgressLine(line string, duration float64) (float64, bool) {
	const key = "out_time_ms="
	if !strings.HasPrefix(line, key) || duration <= 0 {
		return 0, false
	}
	us, err := strconv.ParseInt(strings.TrimSpace(strings.TrimPrefix(line, key)), 10, 64)
	if err != nil || us < 0 {
		return 0, false
	}
	ratio := float64(us) / 1e6 / duration
	if ratio > 1 {
		ratio = 1
	}
	return ratio, true
}
