package app

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/vk/shaderpack/internal/config"
	"github.com/vk/shaderpack/internal/ctxlog"
	"github.com/vk/shaderpack/internal/stage"
	"github.com/vk/shaderpack/internal/symcache"
)

// defaultDebounce is how long watch mode waits for a burst of file events
// to settle before rebuilding.
const defaultDebounce = 200 * time.Millisecond

// App encapsulates the application's dependencies, configuration, and lifecycle.
type App struct {
	outW     io.Writer
	logger   *slog.Logger
	config   *Config
	loader   config.Loader
	executor stage.Executor
	cache    *symcache.Cache
	debounce time.Duration
}

// Option customizes an App.
type Option func(*App)

// WithExecutor replaces the process runner used for the SDK tools.
func WithExecutor(ex stage.Executor) Option {
	return func(a *App) { a.executor = ex }
}

// WithDebounce sets the watch mode settle time.
func WithDebounce(d time.Duration) Option {
	return func(a *App) { a.debounce = d }
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger. The manifest is
// read by Run, so that watch mode can reload it.
func NewApp(outW io.Writer, cfg *Config, loader config.Loader, opts ...Option) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	a := &App{
		outW:     outW,
		logger:   logger,
		config:   cfg,
		loader:   loader,
		debounce: defaultDebounce,
	}
	for _, opt := range opts {
		opt(a)
	}

	if cfg.Watch {
		cache, err := symcache.New(symcache.DefaultSize)
		if err != nil {
			// Only a non-positive size fails, which DefaultSize is not.
			panic(err)
		}
		a.cache = cache
		logger.Debug("Symbol cache enabled for watch mode.", "size", symcache.DefaultSize)
	}
	return a
}

// Logger returns the application's logger. This is primarily for testing.
func (a *App) Logger() *slog.Logger {
	return a.logger
}

func (a *App) context(ctx context.Context) context.Context {
	return ctxlog.WithLogger(ctx, a.logger)
}
