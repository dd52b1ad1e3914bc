package testutil

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/app"
	"github.com/vk/shaderpack/internal/hcl"
	"github.com/vk/shaderpack/internal/toolchain"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// HarnessResult holds the outcomes of an integration test run.
type HarnessResult struct {
	LogOutput string
	Err       error
	// Root is the directory the test files were written to.
	Root string
	// WorkDir is where the run created its per-asset workspaces.
	WorkDir string
}

// Path resolves a slash-separated path relative to Root.
func (r *HarnessResult) Path(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// RunIntegrationTest provides a standardized harness for running integration tests
// using a default background context.
func RunIntegrationTest(t *testing.T, files map[string]string, sdk *FakeSDK) *HarnessResult {
	t.Helper()
	return RunIntegrationTestWithContext(context.Background(), t, files, sdk)
}

// RunIntegrationTestWithContext writes files below a fresh root, then runs
// one build of the manifest directory "build" through app.Run. When sdk is
// not nil it is both the VULKAN_SDK of the run and its tool executor.
func RunIntegrationTestWithContext(ctx context.Context, t *testing.T, files map[string]string, sdk *FakeSDK) *HarnessResult {
	t.Helper()

	// 1. Create a temporary root directory for the test.
	root := t.TempDir()
	workDir := filepath.Join(root, ".work")
	require.NoError(t, os.MkdirAll(filepath.Join(root, "build"), 0755))
	require.NoError(t, os.MkdirAll(workDir, 0755))

	// 2. Write all files to the temporary directory. Manifests are expected
	//    under build/, shaders anywhere.
	for name, content := range files {
		filePath := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0644))
	}

	// 3. Configure the app against the fake SDK.
	cfg := &app.Config{
		ManifestPath: filepath.Join(root, "build"),
		LogLevel:     "debug",
		LogFormat:    "text",
		WorkerCount:  4,
		TempDir:      workDir,
	}
	var env []string
	var opts []app.Option
	if sdk != nil {
		env = append(env, toolchain.SDKEnv+"="+sdk.Root)
		opts = append(opts, app.WithExecutor(sdk))
	}

	logBuffer := &SafeBuffer{}
	loader := &hcl.Loader{Environ: func() []string { return env }}
	testApp := app.NewApp(logBuffer, cfg, loader, opts...)

	runErr := testApp.Run(ctx)

	if os.Getenv("SHADERPACK_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logBuffer.String())
	}

	return &HarnessResult{
		LogOutput: logBuffer.String(),
		Err:       runErr,
		Root:      root,
		WorkDir:   workDir,
	}
}
