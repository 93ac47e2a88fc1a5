// Package profile wraps test bodies with a CPU profiler. Profiles are
// written as pprof files under a configurable log directory with a UTC
// timestamp in the file name, so repeated trials of the same test can
// be compared:
//
//	my_view.prof -> my_view-20260211T170321.prof
//
// The profiler is stopped and the profile flushed on every exit path,
// including a panicking test body.
package profile

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
	"testing"
	"time"
)

// timestampLayout is the UTC stamp inserted into profile file names.
const timestampLayout = "20060102T150405"

// Config names the directory profile logs are written to. The zero
// value falls back to the system temporary directory.
type Config struct {
	LogDir string
}

func (c Config) logDir() string {
	if c.LogDir == "" {
		return os.TempDir()
	}
	return c.LogDir
}

// LogPath resolves a profile name to its final on-disk path. Relative
// names are placed under the configured log directory; absolute paths
// are honored as-is. A UTC timestamp is inserted before the extension.
func LogPath(cfg Config, name string) string {
	if !filepath.IsAbs(name) {
		name = filepath.Join(cfg.logDir(), name)
	}
	ext := filepath.Ext(name)
	base := strings.TrimSuffix(name, ext)
	if ext == "" {
		ext = ".prof"
	}
	stamp := time.Now().UTC().Format(timestampLayout)
	return fmt.Sprintf("%s-%s%s", base, stamp, ext)
}

// CPU profiles fn, writing the result to LogPath(cfg, name). The
// profiler is stopped and the file closed before CPU returns,
// regardless of whether fn returned normally, returned an error, or
// panicked. fn's error (or panic) propagates unchanged.
func CPU(cfg Config, name string, fn func() error) (err error) {
	path := LogPath(cfg, name)
	if mkErr := os.MkdirAll(filepath.Dir(path), 0o750); mkErr != nil {
		return fmt.Errorf("profile: creating log directory: %w", mkErr)
	}

	f, createErr := os.Create(path)
	if createErr != nil {
		return fmt.Errorf("profile: creating %s: %w", path, createErr)
	}

	if startErr := pprof.StartCPUProfile(f); startErr != nil {
		_ = f.Close()
		return fmt.Errorf("profile: starting CPU profile: %w", startErr)
	}

	defer func() {
		pprof.StopCPUProfile()
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("profile: closing %s: %w", path, closeErr)
		}
	}()

	return fn()
}

// Wrap decorates a test body with CPU profiling. Profiling failures
// fail the test; failures inside the body behave exactly as without
// the wrapper.
func Wrap(cfg Config, name string, fn func(t *testing.T)) func(t *testing.T) {
	return func(t *testing.T) {
		t.Helper()
		err := CPU(cfg, name, func() error {
			fn(t)
			return nil
		})
		if err != nil {
			t.Fatalf("profiling %s: %v", name, err)
		}
	}
}
