package shader

import (
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	litVertex = `in vec3 position;
in vec3 normal;
uniform vec4 u_color;
uniform float u_weights[3];
out float v_light;
void main()
{
    gl_Position = czm_modelViewProjection * vec4(position, 1.0);
    v_light = czm_sunLambert(czm_normal * normal) * u_weights[0];
}`
	litFragment = `uniform vec4 u_color;
in float v_light;
out vec4 fragColor;
void main()
{
    fragColor = u_color * v_light * czm_luminance(vec3(czm_frameNumber));
}`
)

func newLitProgram(t *testing.T, device *gputest.Device) ShaderProgram {
	t.Helper()
	return NewShaderProgram(device,
		NewShaderSource(WithSources(litVertex)),
		NewShaderSource(WithSources(litFragment)),
		nil)
}

func floatAt(data []byte, offset int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(data[offset:]))
}

func TestShaderProgramReflection(t *testing.T) {
	device := gputest.NewDevice()
	p := newLitProgram(t, device)

	assert.Equal(t, map[string]int{"position": 0, "normal": 1}, p.AttributeLocations())
	assert.Equal(t, map[string]int{uniform.FrameUniformsBlock: 0, uniform.DrawUniformsBlock: 2}, p.UniformBlocks())
	assert.True(t, p.UsesUniformBlock(uniform.FrameUniformsBlock))
	assert.False(t, p.UsesUniformBlock(uniform.FrustumUniformsBlock))

	names := func(us []ProgramUniform) []string {
		var out []string
		for _, u := range us {
			out = append(out, u.Name)
		}
		return out
	}
	assert.Equal(t, []string{"czm_modelViewProjection", "czm_normal"}, names(p.AutomaticUniforms()))
	assert.Equal(t, []string{"u_color", "u_weights"}, names(p.ManualUniforms()))

	all := p.AllUniforms()
	require.Len(t, all, 4)
	assert.Equal(t, []int{0, 64, 112, 128}, []int{all[0].Offset, all[1].Offset, all[2].Offset, all[3].Offset})
	assert.Equal(t, 3, all[3].Count)
	assert.Equal(t, 176, p.DrawUniformsSize())

	require.Len(t, device.Programs, 1)
	desc := device.Programs[0].Desc
	assert.Equal(t, p.VertexShaderText(), desc.VertexSource)
	assert.Equal(t, p.FragmentShaderText(), desc.FragmentSource)
	assert.Equal(t, p.UniformBlocks(), desc.UniformBlocks)
}

func TestShaderProgramSetUniforms(t *testing.T) {
	device := gputest.NewDevice()
	p := newLitProgram(t, device)
	buf, err := device.CreateBuffer(gpu.BufferUsageUniform, 512, "draw")
	require.NoError(t, err)

	state := uniform.NewState()
	state.SetModel(common.Identity4().SetTranslation(common.Cartesian3{X: 1, Y: 2, Z: 3}))
	uniforms := UniformMap{
		"u_color":   func() any { return gpu.Color{R: 0.25, G: 0.5, B: 0.75, A: 1} },
		"u_weights": func() any { return []float32{1, 2, 3} },
	}
	require.NoError(t, p.SetUniforms(buf, 256, uniforms, state))

	data := buf.(*gputest.Buffer).Data
	assert.Equal(t, float32(1), floatAt(data, 256+0))
	assert.Equal(t, float32(1), floatAt(data, 256+48))
	assert.Equal(t, float32(2), floatAt(data, 256+52))
	assert.Equal(t, float32(3), floatAt(data, 256+56))
	assert.Equal(t, float32(1), floatAt(data, 256+64), "normal matrix of a translation is identity")
	assert.Equal(t, float32(0.5), floatAt(data, 256+112+4))
	assert.Equal(t, float32(1), floatAt(data, 256+128))
	assert.Equal(t, float32(2), floatAt(data, 256+144))
	assert.Equal(t, float32(3), floatAt(data, 256+160))
}

func TestShaderProgramSetUniformsErrors(t *testing.T) {
	device := gputest.NewDevice()
	p := newLitProgram(t, device)
	buf, _ := device.CreateBuffer(gpu.BufferUsageUniform, 256, "draw")
	state := uniform.NewState()

	err := p.SetUniforms(buf, 0, UniformMap{"u_color": func() any { return gpu.Color{} }}, state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u_weights not found")

	err = p.SetUniforms(buf, 0, UniformMap{
		"u_color":   func() any { return "red" },
		"u_weights": func() any { return []float32{} },
	}, state)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "u_color")

	err = p.SetUniforms(buf, 0, UniformMap{
		"u_color":   func() any { return gpu.Color{} },
		"u_weights": func() any { return []float32{1, 2, 3, 4} },
	}, state)
	require.Error(t, err)

	assert.Error(t, p.SetUniforms(buf, 0, nil, nil))
}

func TestShaderProgramCompileFailure(t *testing.T) {
	device := gputest.NewDevice()
	device.CompileFunc = func(desc gpu.ProgramDescriptor) error {
		return &gpu.CompileError{Label: desc.Label, Stage: "fragment", Source: desc.FragmentSource, Log: "0:3: error: 'foo' undeclared"}
	}

	err := recoverError(t, func() { newLitProgram(t, device) })
	var pe *common.PreconditionError
	require.True(t, errors.As(err, &pe))
	var ce *gpu.CompileError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "fragment", ce.Stage)
	assert.Contains(t, err.Error(), "'foo' undeclared")
	assert.Contains(t, err.Error(), "fragColor")
}

func TestUncachedProgramReleaseDestroys(t *testing.T) {
	device := gputest.NewDevice()
	p := newLitProgram(t, device)
	p.Release()
	assert.True(t, p.IsDestroyed())
	assert.True(t, device.Programs[0].Released)
	p.Release()
}
