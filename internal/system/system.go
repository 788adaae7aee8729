// Package system handles host-level concerns: file descriptor limits,
// worker sizing, and input discovery for the CLI defaults.
package system

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// InitResourceLimits raises the open-file limit; a long track at 4 fps
// means thousands of frame artifacts in the working directory.
func InitResourceLimits() {
	var rLimit syscall.Rlimit
	err := syscall.Getrlimit(syscall.RLIMIT_NOFILE, &rLimit)
	if err != nil {
		log.Printf("[!] Could not read file limit: %v", err)
		return
	}

	rLimit.Cur = 4096
	if rLimit.Cur > rLimit.Max {
		rLimit.Cur = rLimit.Max
	}

	if err := syscall.Setrlimit(syscall.RLIMIT_NOFILE, &rLimit); err != nil {
		log.Printf("[!] Could not raise file limit: %v", err)
	}
}

// RecommendedWorkers sizes the parallel compositing pool: one worker per
// CPU, capped so that the in-flight RGBA buffers fit in a quarter of the
// available memory.
func RecommendedWorkers(width, height int) int {
	workers := runtime.NumCPU()

	vm, err := mem.VirtualMemory()
	if err != nil {
		return workers
	}

	perWorker := uint64(width * height * 4 * 2) // frame buffer + scratch
	if perWorker == 0 {
		return workers
	}
	budget := vm.Available / 4
	if maxByMem := int(budget / perWorker); maxByMem > 0 && maxByMem < workers {
		workers = maxByMem
	}
	if workers < 1 {
		workers = 1
	}
	return workers
}

// findLatest returns the most recently modified file in dir whose lowered
// name carries one of the given extensions.
func findLatest(dir string, extensions []string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() {
			continue
		}
		matched := false
		for _, ext := range extensions {
			if strings.HasSuffix(strings.ToLower(f.Name()), ext) {
				matched = true
				break
			}
		}
		if !matched {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no matching files in %s", dir)
	}
	return latestFile, nil
}

func FindLatestAudio(dir string) (string, error) {
	return findLatest(dir, []string{".mp3", ".wav", ".m4a", ".ogg", ".aac", ".flac"})
}

func FindLatestCover(dir string) (string, error) {
	return findLatest(dir, []string{".jpg", ".jpeg", ".png", ".pdf"})
}

func FindLatestSubtitles(dir string) (string, error) {
	return findLatest(dir, []string{".srt", ".txt"})
}
