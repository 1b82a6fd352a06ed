package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recoverError runs f and returns the error it panicked with.
func recoverError(t *testing.T, f func()) (err error) {
	t.Helper()
	defer func() {
		r := recover()
		require.NotNil(t, r, "expected a panic")
		e, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		err = e
	}()
	f()
	return nil
}

func TestCombineShaderHeaderOrder(t *testing.T) {
	src := NewShaderSource(
		WithSources("#version 300 es\n#extension GL_EXT_frag_depth : enable\nout vec4 color;\nvoid main() { color = vec4(czm_pi); }"),
		WithDefines("FOG", "", "LEVEL 2"),
	)
	out := src.CombineShader(true)

	assert.True(t, strings.HasPrefix(out, "#version 300 es\n#extension GL_EXT_frag_depth : enable\n#define FOG\n#define LEVEL 2\n#ifdef GL_FRAGMENT_PRECISION_HIGH"))
	assert.Equal(t, 1, strings.Count(out, "#version"))
	assert.Equal(t, 1, strings.Count(out, "#extension"))
	assert.NotContains(t, out, "#define \n")

	pi := strings.Index(out, "const float czm_pi")
	line := strings.Index(out, "#line 0")
	require.NotEqual(t, -1, pi)
	assert.Less(t, pi, line, "built-ins precede the source")
	assert.True(t, strings.HasSuffix(out, "void main() { color = vec4(czm_pi); }"))
}

func TestCombineShaderDefaultsVersionAndSkipsVertexPreamble(t *testing.T) {
	out := NewShaderSource(WithSources("void main() {}")).CombineShader(false)
	assert.True(t, strings.HasPrefix(out, DefaultVersion+"\n"))
	assert.NotContains(t, out, "GL_FRAGMENT_PRECISION_HIGH")
}

func TestCombineShaderStripsCommentsKeepingLines(t *testing.T) {
	body := "/* header\n   spans\n   lines */\nfloat a; // czm_pi in a comment\nfloat/*x*/b;\nvoid main() {}"
	out := NewShaderSource(WithSources(body)).CombineShader(false)

	_, after, ok := strings.Cut(out, "#line 0\n")
	require.True(t, ok)
	assert.Equal(t, strings.Count(body, "\n"), strings.Count(after, "\n"))
	assert.True(t, strings.HasPrefix(after, "//\n//\n\nfloat a; //\n"))
	assert.Contains(t, after, "float b;")
	assert.NotContains(t, out, "czm_pi =", "identifiers inside comments are not resolved")
}

func TestCombineShaderNestedCommentMarkers(t *testing.T) {
	body := "// legacy: /* disabled\nfloat f() { return czm_pi; }\n// end */\nvoid main() { f(); }\n"
	out := NewShaderSource(WithSources(body)).CombineShader(false)

	_, after, ok := strings.Cut(out, "#line 0\n")
	require.True(t, ok)
	assert.Equal(t, "//\nfloat f() { return czm_pi; }\n//\nvoid main() { f(); }\n", after)
	assert.Contains(t, out, "const float czm_pi", "code after a line comment holding /* is still scanned")
}

func TestStripCommentsMarkersInsideComments(t *testing.T) {
	assert.Equal(t, "float a;  float c;", stripComments("float a; /* b */ float c;"))
	assert.Equal(t, "float a;  float c;", stripComments("float a; /* b // c */ float c;"))
	assert.Equal(t, "//\n//\nfloat c;", stripComments("/* a\n// b\n*/float c;"))
	assert.Equal(t, "float a; //\nfloat b;", stripComments("float a; // x /* y\nfloat b;"))
	assert.Equal(t, "float a; //", stripComments("float a; // trailing"))
}

func TestCombineShaderResolvesTransitiveBuiltins(t *testing.T) {
	src := NewShaderSource(WithSources("in vec3 n;\nvoid main() { float d = czm_sunLambert(n) * czm_pi; }"))
	out := src.CombineShader(false)

	lambert := strings.Index(out, "float czm_getLambertDiffuse(")
	sun := strings.Index(out, "float czm_sunLambert(")
	block := strings.Index(out, "uniform czm_FrameUniforms")
	require.NotEqual(t, -1, lambert)
	require.NotEqual(t, -1, sun)
	require.NotEqual(t, -1, block)
	assert.Less(t, lambert, sun)
	assert.Less(t, block, sun)
	assert.Equal(t, 1, strings.Count(out, "uniform czm_FrameUniforms"))
}

func TestCombineShaderEmitsEachBlockOnce(t *testing.T) {
	src := NewShaderSource(WithSources(
		"void main() { vec3 a = czm_sunDirectionWC + czm_moonDirectionEC; mat4 v = czm_view * czm_inverseView; }"))
	out := src.CombineShader(false)

	assert.Equal(t, 1, strings.Count(out, uniform.FrameUniformsSource))
	assert.Equal(t, 1, strings.Count(out, uniform.FrustumUniformsSource))
}

func TestCombineShaderDeclaresCommandUniformsLoose(t *testing.T) {
	out := NewShaderSource(WithSources("in vec4 p;\nvoid main() { gl_Position = czm_modelViewProjection * p; }")).CombineShader(false)
	assert.Contains(t, out, "uniform mat4 czm_modelViewProjection;\n")
	assert.NotContains(t, out, "czm_FrustumUniforms")
}

func TestCombineShaderIgnoresUnknownIdentifiers(t *testing.T) {
	out := NewShaderSource(WithSources("void main() { czm_doesNotExist(); }")).CombineShader(false)
	_, after, _ := strings.Cut(out, "#line 0\n")
	assert.Equal(t, "void main() { czm_doesNotExist(); }", after)
}

func TestCombineShaderWithoutBuiltins(t *testing.T) {
	out := NewShaderSource(WithSources("void main() { float x = czm_pi; }"), WithIncludeBuiltIns(false)).CombineShader(false)
	assert.NotContains(t, out, "const float czm_pi")
}

func TestSortDependenciesDiamond(t *testing.T) {
	table := map[string]string{
		"czm_a": "float czm_a() { return czm_b() + czm_c(); }",
		"czm_b": "float czm_b() { return czm_d(); }",
		"czm_c": "float czm_c() { return czm_d(); }",
		"czm_d": "float czm_d() { return 1.0; }",
	}
	out := NewShaderSource(WithSources("void main() { czm_a(); }"), WithResolver(MapResolver(table))).CombineShader(false)

	idx := func(name string) int { return strings.Index(out, "float "+name+"()") }
	assert.Less(t, idx("czm_d"), idx("czm_b"))
	assert.Less(t, idx("czm_d"), idx("czm_c"))
	assert.Less(t, idx("czm_b"), idx("czm_a"))
	assert.Less(t, idx("czm_c"), idx("czm_a"))
	assert.Equal(t, 1, strings.Count(out, "float czm_d()"))
}

func TestSortDependenciesReportsCycle(t *testing.T) {
	table := map[string]string{
		"czm_a": "float czm_a() { return czm_b(); }",
		"czm_b": "float czm_b() { return czm_c(); }",
		"czm_c": "float czm_c() { return czm_a(); }",
		"czm_x": "float czm_x() { return 0.0; }",
	}
	src := NewShaderSource(WithSources("void main() { czm_x(); czm_a(); }"), WithResolver(MapResolver(table)))

	err := recoverError(t, func() { src.CombineShader(false) })
	var pe *common.PreconditionError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t,
		"A circular dependency was found in the following built-in functions/structs/constants: czm_a, czm_b, czm_c",
		pe.Message)
}

func TestCloneAppendsWithoutMutating(t *testing.T) {
	base := NewShaderSource(WithSources("a"), WithDefines("A"))
	derived := base.Clone(WithSources("b"), WithDefines("B"))

	assert.Equal(t, []string{"a"}, base.Sources())
	assert.Equal(t, []string{"A"}, base.Defines())
	assert.Equal(t, []string{"a", "b"}, derived.Sources())
	assert.Equal(t, []string{"A", "B"}, derived.Defines())
}

func TestBuiltinsAreSelfContained(t *testing.T) {
	for _, name := range BuiltinNames() {
		out := NewShaderSource(WithSources("void main() { " + name + "; }")).CombineShader(true)
		assert.Contains(t, out, builtins[name], name)
	}
}
