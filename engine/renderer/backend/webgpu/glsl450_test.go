package webgpu

import (
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testVertexSource = `#version 300 es
precision highp float;
layout(std140) uniform czm_FrameUniforms
{
    mat4 czm_viewProjection;
};
in vec3 position;
in vec2 st;
out vec2 v_st;
flat out int v_id;
out mat3 v_basis;
void main()
{
    v_st = st;
    v_id = gl_VertexID + gl_InstanceID;
    v_basis = mat3(1.0);
    gl_Position = czm_viewProjection * vec4(position, 1.0);
}`

const testFragmentSource = `#version 300 es
precision mediump float;
layout(std140) uniform czm_DrawUniforms
{
    highp vec4 u_color;
};
in vec2 v_st;
flat in int v_id;
out vec4 fragColor;
void main()
{
    fragColor = u_color * vec4(v_st, 0.0, 1.0);
}`

func testProgramDescriptor() gpu.ProgramDescriptor {
	return gpu.ProgramDescriptor{
		Label:              "test",
		VertexSource:       testVertexSource,
		FragmentSource:     testFragmentSource,
		AttributeLocations: map[string]int{"position": 0, "st": 1},
		UniformBlocks:      map[string]int{"czm_FrameUniforms": 0, "czm_DrawUniforms": 2},
	}
}

func TestVaryingLocations(t *testing.T) {
	locations := varyingLocations(testVertexSource)
	// sorted by name: v_basis takes three slots
	assert.Equal(t, map[string]int{"v_basis": 0, "v_id": 3, "v_st": 4}, locations)
}

func TestLocationCount(t *testing.T) {
	assert.Equal(t, 1, locationCount("vec4", 0))
	assert.Equal(t, 4, locationCount("mat4", 0))
	assert.Equal(t, 6, locationCount("mat2", 3))
	assert.Equal(t, 2, locationCount("float", 2))
}

func TestToGLSL450Vertex(t *testing.T) {
	desc := testProgramDescriptor()
	out, err := toGLSL450(gpu.ShaderStageVertex, desc.VertexSource, desc, varyingLocations(desc.VertexSource))
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(out, "#version 450\n"))
	assert.NotContains(t, out, "precision")
	assert.Contains(t, out, "layout(std140, set = 0, binding = 0) uniform czm_FrameUniforms")
	assert.Contains(t, out, "layout(location = 0) in vec3 position;")
	assert.Contains(t, out, "layout(location = 1) in vec2 st;")
	assert.Contains(t, out, "layout(location = 4) out vec2 v_st;")
	assert.Contains(t, out, "layout(location = 3) flat out int v_id;")
	assert.Contains(t, out, "gl_VertexIndex + gl_InstanceIndex")
	assert.Contains(t, out, "void czm_glesMain()")
	assert.True(t, strings.HasSuffix(out, depthRemap))

	srcLines := strings.Count(desc.VertexSource, "\n")
	assert.Equal(t, srcLines+strings.Count(depthRemap, "\n")+1, strings.Count(out, "\n"), "source lines keep their numbers")
}

func TestToGLSL450Fragment(t *testing.T) {
	desc := testProgramDescriptor()
	out, err := toGLSL450(gpu.ShaderStageFragment, desc.FragmentSource, desc, varyingLocations(desc.VertexSource))
	require.NoError(t, err)

	assert.Contains(t, out, "layout(std140, set = 0, binding = 2) uniform czm_DrawUniforms")
	assert.Contains(t, out, "    vec4 u_color;")
	assert.Contains(t, out, "layout(location = 4) in vec2 v_st;")
	assert.Contains(t, out, "layout(location = 3) flat in int v_id;")
	assert.Contains(t, out, "layout(location = 0) out vec4 fragColor;")
	assert.Contains(t, out, "void main()")
	assert.NotContains(t, out, "czm_glesMain")
}

func TestToGLSL450Errors(t *testing.T) {
	desc := testProgramDescriptor()
	varyings := varyingLocations(desc.VertexSource)

	t.Run("loose uniform", func(t *testing.T) {
		src := "#version 300 es\nuniform vec4 u_color;\nvoid main() {}"
		_, err := toGLSL450(gpu.ShaderStageFragment, src, desc, varyings)
		assert.ErrorContains(t, err, "loose uniform vec4 u_color")
	})

	t.Run("unbound block", func(t *testing.T) {
		src := "#version 300 es\nlayout(std140) uniform czm_FrustumUniforms { float czm_near; };\nvoid main() {}"
		_, err := toGLSL450(gpu.ShaderStageFragment, src, desc, varyings)
		assert.ErrorContains(t, err, "czm_FrustumUniforms has no binding")
	})

	t.Run("unknown attribute", func(t *testing.T) {
		src := "#version 300 es\nin vec3 normal;\nvoid main() {}"
		_, err := toGLSL450(gpu.ShaderStageVertex, src, desc, varyings)
		assert.ErrorContains(t, err, "vertex input normal has no location")
	})

	t.Run("unmatched varying", func(t *testing.T) {
		src := "#version 300 es\nin vec3 v_normal;\nout vec4 fragColor;\nvoid main() {}"
		_, err := toGLSL450(gpu.ShaderStageFragment, src, desc, varyings)
		assert.ErrorContains(t, err, "varying v_normal is not written")
	})
}
