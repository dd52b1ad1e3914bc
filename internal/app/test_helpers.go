package app

import (
	"bytes"
	"os"
	"sync"
	"testing"

	"github.com/vk/shaderpack/internal/hcl"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// SetupAppTest creates a new app instance for system testing, reading the
// manifest with an HCL loader that sees only env.
func SetupAppTest(t *testing.T, cfg *Config, env []string, opts ...Option) (*App, *SafeBuffer) {
	t.Helper()

	logBuffer := &SafeBuffer{}
	cfg.LogLevel = "debug"
	loader := &hcl.Loader{Environ: func() []string { return env }}
	testApp := NewApp(logBuffer, cfg, loader, opts...)

	t.Cleanup(func() {
		if os.Getenv("SHADERPACK_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
		}
	})

	return testApp, logBuffer
}
