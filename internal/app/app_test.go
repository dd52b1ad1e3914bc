package app

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/config"
)

func TestNewConfig(t *testing.T) {
	_, err := NewConfig(Config{})
	require.Error(t, err)

	_, err = NewConfig(Config{ManifestPath: "m.hcl", WorkerCount: -1})
	require.Error(t, err)

	cfg, err := NewConfig(Config{ManifestPath: "m.hcl", WorkerCount: 2})
	require.NoError(t, err)
	assert.Equal(t, "m.hcl", cfg.ManifestPath)
}

func TestNewLogger(t *testing.T) {
	testCases := []struct {
		name      string
		level     string
		format    string
		wantDebug bool
		wantJSON  bool
	}{
		{name: "debug text", level: "debug", format: "text", wantDebug: true},
		{name: "info json", level: "info", format: "json", wantJSON: true},
		{name: "unknown level falls back to info", level: "loud", format: "text"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := newLogger(tc.level, tc.format, buf)
			logger.Debug("debug line")
			logger.Info("info line")

			out := buf.String()
			assert.Equal(t, tc.wantDebug, strings.Contains(out, "debug line"))
			assert.Contains(t, out, "info line")
			assert.Equal(t, tc.wantJSON, strings.HasPrefix(out, "{"))
		})
	}
}

func TestRelevant(t *testing.T) {
	testCases := []struct {
		name string
		ev   fsnotify.Event
		want bool
	}{
		{name: "shader written", ev: fsnotify.Event{Name: "a/x.vert", Op: fsnotify.Write}, want: true},
		{name: "fragment created", ev: fsnotify.Event{Name: "a/X.FRAG", Op: fsnotify.Create}, want: true},
		{name: "manifest renamed", ev: fsnotify.Event{Name: "shaders.hcl", Op: fsnotify.Rename}, want: true},
		{name: "header written", ev: fsnotify.Event{Name: "out/x.h", Op: fsnotify.Write}},
		{name: "chmod only", ev: fsnotify.Event{Name: "a/x.vert", Op: fsnotify.Chmod}},
		{name: "temp file", ev: fsnotify.Event{Name: "out/.x.h.123.tmp", Op: fsnotify.Create}},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, relevant(tc.ev))
		})
	}
}

func TestWatchDirs(t *testing.T) {
	root := t.TempDir()
	for _, d := range []string{"build", "shaders/nested", "extra"} {
		require.NoError(t, os.MkdirAll(filepath.Join(root, d), 0755))
	}

	m := &config.Manifest{
		Files: []string{filepath.Join(root, "build", "shaders.hcl")},
		Targets: []*config.Target{
			{SourceDir: filepath.Join(root, "shaders"), Sources: []string{filepath.Join(root, "extra", "x.vert")}},
			{Sources: []string{filepath.Join(root, "gone", "y.vert")}},
		},
	}

	got := watchDirs(filepath.Join(root, "build", "shaders.hcl"), m)
	assert.Equal(t, []string{
		filepath.Join(root, "build"),
		filepath.Join(root, "extra"),
		filepath.Join(root, "shaders"),
		filepath.Join(root, "shaders", "nested"),
	}, got)

	// Without a manifest only the manifest location is watched.
	assert.Equal(t, []string{filepath.Join(root, "build")}, watchDirs(filepath.Join(root, "build"), nil))
}

func TestRun_WatchRebuildsOnChange(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "shaders.hcl")
	src := filepath.Join(root, "quad.vert")
	out := filepath.Join(root, "out", "hz_gl3_quad_vsh.h")

	require.NoError(t, os.WriteFile(manifest, []byte(`
target "gl3" {
  profile    = "gl3"
  output_dir = "out"
  sources    = ["quad.vert"]
}
`), 0644))
	require.NoError(t, os.WriteFile(src, []byte("first\n"), 0644))

	testApp, logs := SetupAppTest(t, &Config{ManifestPath: manifest, Watch: true}, nil, WithDebounce(20*time.Millisecond))
	require.NotNil(t, testApp.cache, "watch mode enables the symbol cache")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx) }()

	contains := func(want string) func() bool {
		return func() bool {
			data, err := os.ReadFile(out)
			return err == nil && strings.Contains(string(data), want)
		}
	}
	require.Eventually(t, contains(`"first\n"`), 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(logs.String(), "Watching for changes") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(src, []byte("second\n"), 0644))
	require.Eventually(t, contains(`"second\n"`), 5*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		require.NoError(t, err, "cancelling watch mode is a clean exit")
	case <-time.After(5 * time.Second):
		t.Fatal("watch mode did not stop after cancellation")
	}
}

func TestRun_WatchSurvivesBrokenBuild(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "shaders.hcl")
	require.NoError(t, os.WriteFile(manifest, []byte(`target "broken" {`), 0644))

	testApp, logs := SetupAppTest(t, &Config{ManifestPath: manifest, Watch: true}, nil, WithDebounce(20*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- testApp.Run(ctx) }()

	require.Eventually(t, func() bool { return strings.Contains(logs.String(), "Build failed.") }, 5*time.Second, 10*time.Millisecond)
	require.Eventually(t, func() bool { return strings.Contains(logs.String(), "Watching for changes") }, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(root, "quad.frag"), []byte("void main(){}\n"), 0644))
	require.NoError(t, os.WriteFile(manifest, []byte(`
target "fixed" {
  profile   = "gl3"
  aggregate = "all.h"
  sources   = ["quad.frag"]
}
`), 0644))
	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(root, "all.h"))
		return err == nil
	}, 5*time.Second, 10*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestRun_SingleBuildReturnsError(t *testing.T) {
	root := t.TempDir()
	manifest := filepath.Join(root, "shaders.hcl")
	require.NoError(t, os.WriteFile(manifest, []byte(`
target "gl3" {
  profile   = "gl3"
  aggregate = "all.h"
  sources   = ["missing.vert"]
}
`), 0644))

	testApp, _ := SetupAppTest(t, &Config{ManifestPath: manifest}, nil)
	assert.Nil(t, testApp.cache)

	err := testApp.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "build failed")
	assert.Contains(t, err.Error(), "missing.vert")
}
