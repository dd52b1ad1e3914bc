package naming

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/shaderpack/internal/shadererr"
)

func TestStageOf(t *testing.T) {
	testCases := []struct {
		name      string
		path      string
		expected  Stage
		expectErr bool
	}{
		{name: "vertex", path: "shaders/a.vert", expected: Vertex},
		{name: "fragment", path: "shaders/a.frag", expected: Fragment},
		{name: "upper-case extension", path: "A.FRAG", expected: Fragment},
		{name: "compute is unsupported", path: "a.comp", expectErr: true},
		{name: "no extension", path: "shaders/vert", expectErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			st, err := StageOf(tc.path)
			if tc.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.expected, st)
		})
	}
}

func TestIdentifier(t *testing.T) {
	testCases := []struct {
		name     string
		profile  Profile
		path     string
		stage    Stage
		expected string
	}{
		{name: "gl4 vertex", profile: GL4, path: "test.vert", stage: Vertex, expected: "hz_gl4_test_vertex_shader"},
		{name: "gl4 fragment in subdir", profile: GL4, path: "shaders/curve_to_sdf.frag", stage: Fragment, expected: "hz_gl4_curve_to_sdf_fragment_shader"},
		{name: "gl3 vertex abbreviated", profile: GL3, path: "./shaders/char_quad.vert", stage: Vertex, expected: "hz_gl3_char_quad_vsh"},
		{name: "gl3 fragment abbreviated", profile: GL3, path: "./shaders/char_quad.frag", stage: Fragment, expected: "hz_gl3_char_quad_fsh"},
		{name: "windows separators", profile: GL3, path: `shaders\fs_triangle.frag`, stage: Fragment, expected: "hz_gl3_fs_triangle_fsh"},
		{name: "non identifier characters", profile: GL4, path: "my-shader.v2.vert", stage: Vertex, expected: "hz_gl4_my_shader_v2_vertex_shader"},
		{name: "empty prefix digit stem", profile: Profile{Name: "bare", Style: Abbreviated, Mode: Source}, path: "2d.vert", stage: Vertex, expected: "_2d_vsh"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id, err := Identifier(tc.profile, tc.path, tc.stage)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, id)
		})
	}
}

func TestIdentifier_EmptyStem(t *testing.T) {
	_, err := Identifier(GL4, "shaders/.vert", Vertex)
	require.Error(t, err)
}

func TestGuard(t *testing.T) {
	assert.Equal(t, "HZ_GL3_GLSL_SHADERS_H", Guard("hz_gl3_glsl_shaders.h"))
	assert.Equal(t, "HZ_GL4_TEST_VERTEX_SHADER_H", Guard("out/dir/hz_gl4_test_vertex_shader.h"))
	assert.Equal(t, "MY_SHADERS_V2_H", Guard("my-shaders.v2.h"))
	assert.Equal(t, "_3D_H", Guard("3d.h"))
}

func TestScope_Claim(t *testing.T) {
	s := NewScope()
	require.NoError(t, s.Claim("hz_gl3_a_vsh", "a/a.vert"))
	require.NoError(t, s.Claim("hz_gl3_a_fsh", "a/a.frag"))

	err := s.Claim("hz_gl3_a_vsh", "b/a.vert")
	require.Error(t, err)
	assert.True(t, errors.Is(err, shadererr.ErrNamingCollision))
	assert.Contains(t, err.Error(), "a/a.vert")
	assert.Contains(t, err.Error(), "b/a.vert")
	assert.Equal(t, 2, s.Len())
}

func TestProfile_Validate(t *testing.T) {
	require.NoError(t, GL4.Validate())
	require.NoError(t, GL3.Validate())

	require.Error(t, Profile{Name: "x", Prefix: "9x_", Style: Verbose, Mode: Source}.Validate())
	require.Error(t, Profile{Name: "x", Style: 0, Mode: Source}.Validate())
	require.Error(t, Profile{Name: "x", Style: Verbose}.Validate())
	require.Error(t, Profile{Style: Verbose, Mode: Source}.Validate())
}

func TestParseStyleAndMode(t *testing.T) {
	st, err := ParseSuffixStyle("abbreviated")
	require.NoError(t, err)
	assert.Equal(t, Abbreviated, st)

	_, err = ParseSuffixStyle("short")
	require.Error(t, err)

	m, err := ParseMode("bytecode")
	require.NoError(t, err)
	assert.Equal(t, Bytecode, m)

	_, err = ParseMode("spirv")
	require.Error(t, err)
}
