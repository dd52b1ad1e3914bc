package integration_tests

import (
	"bytes"
	"runtime"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/app"
	"github.com/vk/shaderpack/internal/cli"
)

func TestParse(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		args           []string
		expectExit     bool
		expectErr      bool
		expectedConfig *app.Config
		checkOutput    func(t *testing.T, output string)
	}{
		{
			name: "Happy Path with all flags",
			args: []string{
				"-manifest", "/test/shaders.hcl",
				"--log-level=debug",
				"--log-format=json",
				"--workers=3",
				"--watch",
				"--temp-dir=/scratch",
			},
			expectedConfig: &app.Config{
				ManifestPath: "/test/shaders.hcl",
				LogLevel:     "debug",
				LogFormat:    "json",
				WorkerCount:  3,
				Watch:        true,
				TempDir:      "/scratch",
			},
		},
		{
			name: "Shorthand flag and defaults",
			args: []string{"-m", "/short/path"},
			expectedConfig: &app.Config{
				ManifestPath: "/short/path",
				LogLevel:     "info",
				LogFormat:    "text",
				WorkerCount:  runtime.NumCPU(),
			},
		},
		{
			name: "Positional argument for path",
			args: []string{"-log-level=WARN", "/positional/path"},
			expectedConfig: &app.Config{
				ManifestPath: "/positional/path",
				LogLevel:     "warn",
				LogFormat:    "text",
				WorkerCount:  runtime.NumCPU(),
			},
		},
		{
			name:       "Help flag triggers clean exit",
			args:       []string{"-h"},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.True(t, strings.Contains(output, "Usage:"), "Expected help text to be printed")
				require.Contains(t, output, "VULKAN_SDK")
			},
		},
		{
			name:       "No path triggers clean exit with usage",
			args:       []string{},
			expectExit: true,
			checkOutput: func(t *testing.T, output string) {
				require.True(t, strings.Contains(output, "Usage:"), "Expected help text to be printed")
			},
		},
		{
			name:      "Invalid log level returns an error",
			args:      []string{"--log-level=foo", "/path"},
			expectErr: true,
		},
		{
			name:      "Invalid log format returns an error",
			args:      []string{"--log-format=yaml", "/path"},
			expectErr: true,
		},
		{
			name:      "Zero workers returns an error",
			args:      []string{"--workers=0", "/path"},
			expectErr: true,
		},
		{
			name:      "Extra positional arguments return an error",
			args:      []string{"/a", "/b"},
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			// --- Arrange ---
			out := &bytes.Buffer{}

			// --- Act ---
			appConfig, shouldExit, err := cli.Parse(tc.args, out)

			// --- Assert ---
			if tc.expectErr {
				require.Error(t, err)
				exitErr, isExitError := err.(*cli.ExitError)
				require.True(t, isExitError, "Expected error to be of type ExitError")
				require.Equal(t, 2, exitErr.Code)
				return // End test here if an error is expected
			}
			require.NoError(t, err)

			require.Equal(t, tc.expectExit, shouldExit)

			if tc.expectedConfig != nil {
				if diff := cmp.Diff(tc.expectedConfig, appConfig); diff != "" {
					t.Errorf("Config mismatch (-want +got):\n%s", diff)
				}
			}

			if tc.checkOutput != nil {
				tc.checkOutput(t, out.String())
			}
		})
	}
}
