package integration_tests

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/testutil"
)

// Test for: source_dir picks up every shader below it in lexical order.
func TestHCLFeatures_SourceDirDiscovery(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"build/shaders.hcl": `
target "gl3" {
  profile    = "gl3"
  aggregate  = "../out/all.h"
  source_dir = "../shaders"
}
`,
		"shaders/z.vert":       "z",
		"shaders/a.frag":       "a",
		"shaders/nested/m.vert": "m",
		"shaders/notes.md":     "not a shader",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	out := testutil.ReadHeader(t, result, "out/all.h")
	a := strings.Index(out, "hz_gl3_a_fsh[]")
	m := strings.Index(out, "hz_gl3_m_vsh[]")
	z := strings.Index(out, "hz_gl3_z_vsh[]")
	require.True(t, a >= 0 && m > a && z > m, "expected lexical path order a.frag, nested/m.vert, z.vert:\n%s", out)
	require.NotContains(t, out, "not a shader")
}

// Test for: a profile block replaces a built-in profile.
func TestHCLFeatures_ProfileOverride(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	files := map[string]string{
		"build/shaders.hcl": `
profile "gl3" {
  prefix       = upper("my_")
  suffix_style = "verbose"
  mode         = "source"
}

target "gl3" {
  profile    = "gl3"
  output_dir = "../out"
  sources    = ["../quad.frag"]
}
`,
		"quad.frag": "void main(){}\n",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, nil)

	// --- Assert ---
	require.NoError(t, result.Err)
	out := testutil.ReadHeader(t, result, "out/MY_quad_fragment_shader.h")
	require.True(t, strings.HasPrefix(out, "#ifndef MY_QUAD_FRAGMENT_SHADER_H\n"))
	require.Contains(t, out, "const char MY_quad_fragment_shader[] = ")
}

// Test for: toolchain.sdk_root takes precedence over VULKAN_SDK.
func TestHCLFeatures_ToolchainFromManifest(t *testing.T) {
	t.Parallel()

	// --- Arrange ---
	// The harness exports envSDK as VULKAN_SDK; the manifest names another.
	envSDK := testutil.NewFakeSDK(t)
	manifestSDK := testutil.NewFakeSDK(t)
	files := map[string]string{
		"build/toolchain.hcl": `
toolchain {
  sdk_root = "` + strings.ReplaceAll(manifestSDK.Root, `\`, `/`) + `"
}
`,
		"build/targets.hcl": `
target "gl4" {
  profile    = "gl4"
  output_dir = "../out"
  sources    = ["../quad.vert"]
}
`,
		"quad.vert": "v",
	}

	// --- Act ---
	result := testutil.RunIntegrationTest(t, files, envSDK)

	// --- Assert ---
	require.NoError(t, result.Err)
	require.Contains(t, result.LogOutput, "Vulkan SDK located.")
	require.Contains(t, result.LogOutput, "sdk_root="+strings.ReplaceAll(manifestSDK.Root, `\`, `/`))
	testutil.ReadHeader(t, result, "out/hz_gl4_quad_vertex_shader.h")
}
