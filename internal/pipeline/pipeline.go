// Package pipeline builds every target of a manifest: it runs each shader
// through its profile's embedding path on a bounded pool of workers and
// writes the resulting headers.
//
// Assets of one target are independent and run in parallel. Results are
// always collected by input position, never by completion order, so the
// written headers do not depend on scheduling. The first failure cancels
// the rest of the build.
package pipeline

import (
	"context"
	"fmt"
	"path/filepath"
	"runtime"
	"sync/atomic"

	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/header"
	"github.com/vk/shaderpack/internal/naming"
	"github.com/vk/shaderpack/internal/stage"
	"github.com/vk/shaderpack/internal/symcache"
	"github.com/vk/shaderpack/internal/toolchain"
	"golang.org/x/sync/errgroup"
)

// Options configures a Builder.
type Options struct {
	// Toolchain is required when any target compiles bytecode.
	Toolchain *toolchain.Toolchain
	// Executor runs the SDK tools; nil runs real processes.
	Executor stage.Executor
	// TempDir is where per-asset workspaces are created; empty means os.TempDir.
	TempDir string
	// Cache, when set, lets unchanged assets skip the toolchain.
	Cache *symcache.Cache
	// Workers bounds the number of assets processed at once.
	Workers int
}

// Builder runs manifests. It may be reused across builds.
type Builder struct {
	toolchain *toolchain.Toolchain
	runner    *stage.Runner
	cache     *symcache.Cache
	workers   int

	cacheHits atomic.Int64
}

// New returns a Builder for opts.
func New(opts Options) *Builder {
	b := &Builder{
		toolchain: opts.Toolchain,
		cache:     opts.Cache,
		workers:   opts.Workers,
	}
	if b.workers <= 0 {
		b.workers = runtime.NumCPU()
	}
	if opts.Toolchain != nil {
		b.runner = stage.NewRunner(opts.Toolchain, opts.Executor, opts.TempDir)
	}
	return b
}

// Result summarizes one built target.
type Result struct {
	Target    string
	Documents []*header.Document
	Assets    int
}

// job is one asset of a target with its name already resolved.
type job struct {
	path       string
	identifier string
}

// Build runs every target of m in declaration order and stops at the first
// failure. Names are resolved and checked for collisions before any tool
// runs.
func (b *Builder) Build(ctx context.Context, m *config.Manifest) ([]*Result, error) {
	logger := ctxlog.FromContext(ctx)

	plans := make([][]job, len(m.Targets))
	singles := make(map[string]*naming.Scope)
	aggregates := make(map[string]string)
	for i, t := range m.Targets {
		jobs, err := plan(t)
		if err != nil {
			return nil, err
		}
		plans[i] = jobs

		if t.IsAggregate() {
			path := filepath.Clean(t.Aggregate)
			if other, taken := aggregates[path]; taken {
				return nil, fmt.Errorf("targets %q and %q both write %s", other, t.Name, t.Aggregate)
			}
			aggregates[path] = t.Name
			continue
		}
		dir := filepath.Clean(t.OutputDir)
		scope, ok := singles[dir]
		if !ok {
			scope = naming.NewScope()
			singles[dir] = scope
		}
		for _, j := range jobs {
			if err := scope.Claim(j.identifier, j.path); err != nil {
				return nil, fmt.Errorf("target %q: %w", t.Name, err)
			}
		}
	}

	startHits := b.cacheHits.Load()
	results := make([]*Result, 0, len(m.Targets))
	for i, t := range m.Targets {
		res, err := b.buildTarget(ctx, t, plans[i])
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		results = append(results, res)
	}

	logger.Info("Build finished.",
		"targets", len(results),
		"cache_hits", b.cacheHits.Load()-startHits,
	)
	return results, nil
}

// plan resolves the identifier of every source of t. Inside an aggregate
// target a duplicate is a NamingCollision.
func plan(t *config.Target) ([]job, error) {
	jobs := make([]job, len(t.Sources))
	scope := naming.NewScope()
	for i, src := range t.Sources {
		st, err := naming.StageOf(src)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		id, err := naming.Identifier(t.Profile, src, st)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", t.Name, err)
		}
		if t.IsAggregate() {
			if err := scope.Claim(id, src); err != nil {
				return nil, fmt.Errorf("target %q: %w", t.Name, err)
			}
		}
		jobs[i] = job{path: src, identifier: id}
	}
	return jobs, nil
}

// buildTarget processes the jobs of one target on the worker pool.
// Single-asset targets write each header as soon as its asset is done; an
// aggregate target writes once, after every asset succeeded.
func (b *Builder) buildTarget(ctx context.Context, t *config.Target, jobs []job) (*Result, error) {
	logger := ctxlog.FromContext(ctx).With("target", t.Name, "profile", t.Profile.Name)
	ctx = ctxlog.WithLogger(ctx, logger)
	logger.Info("Building target.", "assets", len(jobs), "mode", t.Profile.Mode.String(), "aggregate", t.IsAggregate())

	entries := make([]header.Entry, len(jobs))
	docs := make([]*header.Document, len(jobs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.workers)
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			actx := ctxlog.With(gctx, "asset", j.path)
			e, err := b.runAsset(actx, t.Profile, j)
			if err != nil {
				ctxlog.FromContext(actx).Error("Asset failed.", "error", err)
				return err
			}
			entries[i] = e
			if t.IsAggregate() {
				return nil
			}
			doc, err := header.EmitSingle(actx, t.OutputDir, e)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	res := &Result{Target: t.Name, Assets: len(jobs)}
	if t.IsAggregate() {
		doc, err := header.EmitAggregate(ctx, t.Aggregate, entries)
		if err != nil {
			return nil, err
		}
		res.Documents = []*header.Document{doc}
	} else {
		res.Documents = docs
	}
	logger.Info("Target built.", "headers", len(res.Documents))
	return res, nil
}

// runAsset reads one source and encodes it.
func (b *Builder) runAsset(ctx context.Context, p naming.Profile, j job) (header.Entry, error) {
	a, err := ReadAsset(j.path)
	if err != nil {
		return header.Entry{}, err
	}
	s, err := b.Symbolize(ctx, p, a, j.identifier)
	if err != nil {
		return header.Entry{}, err
	}
	return header.Entry{Asset: a.Path, Symbol: s}, nil
}
