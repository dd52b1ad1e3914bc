package app

import (
	"context"
	"fmt"

	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/pipeline"
	"github.com/vk/shaderpack/internal/toolchain"
)

// Run executes the main application logic based on the provided configuration.
// Without watch mode it builds once and returns the build error, if any.
func (a *App) Run(ctx context.Context) error {
	ctx = a.context(ctx)
	a.logger.Debug("App.Run method started.", "manifest", a.config.ManifestPath, "watch", a.config.Watch)

	if a.config.Watch {
		return a.watch(ctx)
	}
	_, err := a.build(ctx)
	a.logger.Debug("App.Run method finished.")
	return err
}

// build runs one complete build. The manifest is returned whenever it could
// be loaded, even if the build itself failed, so watch mode knows what to
// watch.
func (a *App) build(ctx context.Context) (*config.Manifest, error) {
	logger := ctxlog.FromContext(ctx)

	m, err := a.loader.Load(ctx, a.config.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifest: %w", err)
	}
	logger.Debug("Manifest loaded.", "files", len(m.Files), "targets", len(m.Targets))

	var tc *toolchain.Toolchain
	if m.NeedsToolchain() {
		tc, err = toolchain.Locate(ctx, m.Toolchain.SDKRoot)
		if err != nil {
			return m, err
		}
	} else {
		logger.Debug("No bytecode targets, toolchain not required.")
	}

	logger.Info("🚀 Starting build...", "targets", len(m.Targets), "workers", a.config.WorkerCount)
	b := pipeline.New(pipeline.Options{
		Toolchain: tc,
		Executor:  a.executor,
		TempDir:   a.config.TempDir,
		Cache:     a.cache,
		Workers:   a.config.WorkerCount,
	})
	results, err := b.Build(ctx, m)
	if err != nil {
		return m, fmt.Errorf("build failed: %w", err)
	}

	headers := 0
	for _, r := range results {
		headers += len(r.Documents)
	}
	logger.Info("🏁 Build finished.", "headers", headers)
	return m, nil
}
