package profile_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anvil8/go-test-tools/profile"
)

// profileFiles returns the profile logs written under dir for name.
func profileFiles(t *testing.T, dir, name string) []string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join(dir, name+"-*.prof"))
	require.NoError(t, err)
	return matches
}

func TestLogPathRelativeName(t *testing.T) {
	cfg := profile.Config{LogDir: "/var/log/profiles"}

	path := profile.LogPath(cfg, "my_view.prof")
	assert.True(t, strings.HasPrefix(path, "/var/log/profiles/my_view-"))
	assert.True(t, strings.HasSuffix(path, ".prof"))
}

func TestLogPathAbsoluteName(t *testing.T) {
	cfg := profile.Config{LogDir: "/var/log/profiles"}

	path := profile.LogPath(cfg, "/elsewhere/my_view.prof")
	assert.True(t, strings.HasPrefix(path, "/elsewhere/my_view-"))
}

func TestLogPathDefaultsExtensionAndDir(t *testing.T) {
	path := profile.LogPath(profile.Config{}, "my_view")
	assert.True(t, strings.HasPrefix(path, filepath.Join(os.TempDir(), "my_view-")))
	assert.True(t, strings.HasSuffix(path, ".prof"))
}

func TestCPUWritesProfile(t *testing.T) {
	dir := t.TempDir()
	cfg := profile.Config{LogDir: dir}

	err := profile.CPU(cfg, "busy.prof", func() error {
		sum := 0
		for i := 0; i < 1_000_000; i++ {
			sum += i
		}
		_ = sum
		return nil
	})
	require.NoError(t, err)

	files := profileFiles(t, dir, "busy")
	require.Len(t, files, 1)

	info, err := os.Stat(files[0])
	require.NoError(t, err)
	assert.Positive(t, info.Size(), "profile file should not be empty")
}

func TestCPUPropagatesBodyError(t *testing.T) {
	dir := t.TempDir()
	bodyErr := errors.New("assertion blew up")

	err := profile.CPU(profile.Config{LogDir: dir}, "failing.prof", func() error {
		return bodyErr
	})
	require.ErrorIs(t, err, bodyErr)

	// The profile is still flushed on the error path.
	assert.Len(t, profileFiles(t, dir, "failing"), 1)
}

func TestCPUFlushesOnPanic(t *testing.T) {
	dir := t.TempDir()

	func() {
		defer func() {
			recovered := recover()
			require.Equal(t, "body panicked", recovered)
		}()
		_ = profile.CPU(profile.Config{LogDir: dir}, "panicking.prof", func() error {
			panic("body panicked")
		})
	}()

	assert.Len(t, profileFiles(t, dir, "panicking"), 1)

	// The profiler was stopped during unwinding, so a fresh profile
	// can start without tripping over the previous one.
	err := profile.CPU(profile.Config{LogDir: dir}, "after.prof", func() error { return nil })
	assert.NoError(t, err)
}

func TestWrap(t *testing.T) {
	dir := t.TempDir()
	ran := false

	wrapped := profile.Wrap(profile.Config{LogDir: dir}, "wrapped.prof", func(t *testing.T) {
		ran = true
	})
	wrapped(t)

	assert.True(t, ran)
	assert.Len(t, profileFiles(t, dir, "wrapped"), 1)
}
