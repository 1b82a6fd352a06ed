package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sources(fragment string) (ShaderSource, ShaderSource) {
	return NewShaderSource(WithSources("in vec4 position;\nvoid main() { gl_Position = czm_modelViewProjection * position; }")),
		NewShaderSource(WithSources(fragment))
}

func TestShaderCacheHitSharesProgram(t *testing.T) {
	device := gputest.NewDevice()
	cache := NewShaderCache(device)
	vs, fs := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")

	a := cache.GetShaderProgram(vs, fs, map[string]int{"position": 0})
	b := cache.GetShaderProgram(vs, fs, map[string]int{"position": 0})

	assert.Same(t, a, b)
	assert.Equal(t, 2, a.Count())
	assert.Len(t, device.CallsTo("CreateProgram"), 1)
	assert.Equal(t, 1, cache.NumberOfShaders())

	c := cache.GetShaderProgram(vs, fs, map[string]int{"position": 3})
	assert.NotSame(t, a, c, "attribute locations are part of the key")
	assert.Equal(t, 2, cache.NumberOfShaders())
}

func TestShaderCacheReleaseDefersDestroy(t *testing.T) {
	device := gputest.NewDevice()
	cache := NewShaderCache(device)
	vs, fs := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")

	p := cache.GetShaderProgram(vs, fs, nil)
	cache.GetShaderProgram(vs, fs, nil)

	cache.ReleaseShaderProgram(p)
	assert.Equal(t, 1, p.Count())
	assert.Equal(t, 0, cache.NumberOfReleasedShaders())

	p.Release()
	assert.Equal(t, 0, p.Count())
	assert.Equal(t, 0, cache.NumberOfShaders())
	assert.Equal(t, 1, cache.NumberOfReleasedShaders())
	assert.False(t, p.IsDestroyed(), "destruction waits for the end of the frame")

	cache.DestroyReleasedShaderPrograms()
	assert.True(t, p.IsDestroyed())
	assert.True(t, device.Programs[0].Released)
	assert.Equal(t, 0, cache.NumberOfReleasedShaders())

	again := cache.GetShaderProgram(vs, fs, nil)
	assert.NotSame(t, p, again)
	assert.Len(t, device.CallsTo("CreateProgram"), 2)
}

func TestShaderCacheRevivesBeforeDestroy(t *testing.T) {
	device := gputest.NewDevice()
	cache := NewShaderCache(device)
	vs, fs := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")

	p := cache.GetShaderProgram(vs, fs, nil)
	cache.ReleaseShaderProgram(p)
	revived := cache.GetShaderProgram(vs, fs, nil)

	assert.Same(t, p, revived)
	assert.Equal(t, 1, revived.Count())
	cache.DestroyReleasedShaderPrograms()
	assert.False(t, revived.IsDestroyed())
	assert.Len(t, device.CallsTo("CreateProgram"), 1)
}

func TestShaderCacheOverReleaseIsIgnored(t *testing.T) {
	cache := NewShaderCache(gputest.NewDevice())
	vs, fs := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")

	p := cache.GetShaderProgram(vs, fs, nil)
	cache.ReleaseShaderProgram(p)
	cache.ReleaseShaderProgram(p)
	assert.Equal(t, 0, p.Count())
	assert.Equal(t, 1, cache.NumberOfReleasedShaders())
	cache.ReleaseShaderProgram(nil)
}

func TestShaderCacheReplace(t *testing.T) {
	cache := NewShaderCache(gputest.NewDevice())
	vs, red := sources("out vec4 c;\nvoid main() { c = vec4(1.0, 0.0, 0.0, 1.0); }")
	_, blue := sources("out vec4 c;\nvoid main() { c = vec4(0.0, 0.0, 1.0, 1.0); }")

	old := cache.GetShaderProgram(vs, red, nil)
	replaced := cache.ReplaceShaderProgram(old, vs, blue, nil)

	assert.NotSame(t, old, replaced)
	assert.Equal(t, 0, old.Count())
	assert.Equal(t, 1, replaced.Count())
	assert.Equal(t, 1, cache.NumberOfShaders())

	first := cache.ReplaceShaderProgram(nil, vs, red, nil)
	assert.Same(t, old, first, "a released program is revived by replace")
}

func TestShaderCacheMaxPrograms(t *testing.T) {
	cache := NewShaderCache(gputest.NewDevice(), WithMaxPrograms(1))
	vs, a := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")
	_, b := sources("out vec4 c;\nvoid main() { c = vec4(0.0); }")

	cache.GetShaderProgram(vs, a, nil)
	err := recoverError(t, func() { cache.GetShaderProgram(vs, b, nil) })
	var re *common.ResourceExhaustedError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, 1, re.Limit)

	var pe *common.PreconditionError
	assert.False(t, errors.As(err, &pe))
}

func TestShaderCacheGlobalDefines(t *testing.T) {
	cache := NewShaderCache(gputest.NewDevice(), WithGlobalDefines("LOG_DEPTH"))
	vs, fs := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")

	p := cache.GetShaderProgram(vs, fs, nil)
	assert.Contains(t, p.VertexShaderText(), "#define LOG_DEPTH\n")
	assert.Contains(t, p.FragmentShaderText(), "#define LOG_DEPTH\n")
	assert.Empty(t, vs.Defines(), "caller sources are not mutated")
}

func TestShaderCacheRelease(t *testing.T) {
	device := gputest.NewDevice()
	cache := NewShaderCache(device)
	vs, a := sources("out vec4 c;\nvoid main() { c = vec4(1.0); }")
	_, b := sources("out vec4 c;\nvoid main() { c = vec4(0.0); }")

	pa := cache.GetShaderProgram(vs, a, nil)
	pb := cache.GetShaderProgram(vs, b, nil)
	pb.Release()
	cache.Release()

	assert.True(t, pa.IsDestroyed())
	assert.True(t, pb.IsDestroyed())
	assert.Equal(t, 0, cache.NumberOfShaders())
	assert.Equal(t, 0, device.LivePrograms())
	assert.True(t, strings.HasPrefix(pa.Label(), "program-"))
}
