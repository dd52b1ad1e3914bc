package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/naming"
)

// watch rebuilds every time a manifest or shader changes until ctx ends.
// A failed build is logged and waits for the next change.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to start file watcher: %w", err)
	}
	defer w.Close()

	for {
		m, err := a.build(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if err != nil {
			logger.Error("Build failed.", "error", err)
		}

		if err := syncWatches(w, watchDirs(a.config.ManifestPath, m)); err != nil {
			return err
		}
		logger.Info("👀 Watching for changes...", "dirs", len(w.WatchList()))

		if err := a.waitForChange(ctx, w); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		logger.Info("🔁 Change detected, rebuilding.")
	}
}

// waitForChange blocks until a relevant event arrives and no further event
// followed it for the debounce period.
func (a *App) waitForChange(ctx context.Context, w *fsnotify.Watcher) error {
	logger := ctxlog.FromContext(ctx)

	var settle <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-w.Events:
			if !ok {
				return errors.New("file watcher closed")
			}
			if !relevant(ev) {
				continue
			}
			logger.Debug("File event.", "path", ev.Name, "op", ev.Op.String())
			settle = time.After(a.debounce)
		case err, ok := <-w.Errors:
			if !ok {
				return errors.New("file watcher closed")
			}
			logger.Warn("File watcher error.", "error", err)
		case <-settle:
			return nil
		}
	}
}

// relevant reports whether ev touches a manifest or a shader source.
func relevant(ev fsnotify.Event) bool {
	if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(ev.Name))
	if ext == ".hcl" {
		return true
	}
	for _, e := range naming.Extensions() {
		if ext == e {
			return true
		}
	}
	return false
}

// watchDirs lists the directories whose contents feed the build: the
// manifest location, the directory of every manifest file and shader, and
// the whole tree below every source_dir. m may be nil when loading failed.
func watchDirs(manifestPath string, m *config.Manifest) []string {
	set := make(map[string]struct{})
	add := func(dir string) {
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			set[filepath.Clean(dir)] = struct{}{}
		}
	}
	addTree := func(root string) {
		_ = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err == nil && d.IsDir() {
				add(p)
			}
			return nil
		})
	}

	if info, err := os.Stat(manifestPath); err == nil && info.IsDir() {
		addTree(manifestPath)
	} else {
		add(filepath.Dir(manifestPath))
	}
	if m != nil {
		for _, f := range m.Files {
			add(filepath.Dir(f))
		}
		for _, t := range m.Targets {
			if t.SourceDir != "" {
				addTree(t.SourceDir)
			}
			for _, src := range t.Sources {
				add(filepath.Dir(src))
			}
		}
	}

	dirs := make([]string, 0, len(set))
	for d := range set {
		dirs = append(dirs, d)
	}
	sort.Strings(dirs)
	return dirs
}

// syncWatches makes the watcher cover exactly dirs.
func syncWatches(w *fsnotify.Watcher, dirs []string) error {
	want := make(map[string]struct{}, len(dirs))
	for _, d := range dirs {
		want[d] = struct{}{}
	}
	for _, d := range w.WatchList() {
		if _, keep := want[d]; !keep {
			_ = w.Remove(d)
		}
	}
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}
	return nil
}
