package shader

import (
	"fmt"
	"maps"
	"reflect"
	"sort"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

// UniformMap supplies manual uniform values by name. Each function is called once per draw;
// its result must be encodable by uniform.PutValue for the declared type, or be a slice or
// array of such values for array uniforms.
type UniformMap map[string]func() any

// ProgramUniform is one member of a program's czm_DrawUniforms block.
type ProgramUniform struct {
	Name      string
	DataType  uniform.DataType
	Count     int
	Offset    int
	Automatic bool

	value func(*uniform.State) any
}

// shaderProgram is the implementation of the ShaderProgram interface.
type shaderProgram struct {
	key   string
	label string

	vertexShaderSource   ShaderSource
	fragmentShaderSource ShaderSource
	vertexShaderText     string
	fragmentShaderText   string

	attributeLocations map[string]int
	attributes         []Attribute
	uniforms           []ProgramUniform
	uniformBlocks      map[string]int
	drawUniformsSize   int
	scratch            []byte

	program   gpu.Program
	count     int
	cache     *shaderCache
	destroyed bool
}

// ShaderProgram is a compiled vertex/fragment pair with the reflection the renderer needs to
// feed it: vertex attribute locations, the uniform blocks it reads and the layout of its
// per-draw uniform block, split into automatic and manual members.
type ShaderProgram interface {
	// Key returns the cache key: both combined stages plus the attribute locations.
	//
	// Returns:
	//   - string: the key
	Key() string

	// Label returns the debug label passed to the device.
	//
	// Returns:
	//   - string: the label
	Label() string

	// VertexShaderSource returns the source the vertex stage was combined from.
	//
	// Returns:
	//   - ShaderSource: the vertex source
	VertexShaderSource() ShaderSource

	// FragmentShaderSource returns the source the fragment stage was combined from.
	//
	// Returns:
	//   - ShaderSource: the fragment source
	FragmentShaderSource() ShaderSource

	// VertexShaderText returns the final vertex GLSL handed to the device.
	//
	// Returns:
	//   - string: the vertex stage text
	VertexShaderText() string

	// FragmentShaderText returns the final fragment GLSL handed to the device.
	//
	// Returns:
	//   - string: the fragment stage text
	FragmentShaderText() string

	// AttributeLocations returns the location of every vertex input, including the ones the
	// program assigned because the caller did not.
	//
	// Returns:
	//   - map[string]int: attribute name to location
	AttributeLocations() map[string]int

	// Attributes returns the vertex inputs in declaration order.
	//
	// Returns:
	//   - []Attribute: the vertex inputs with resolved locations
	Attributes() []Attribute

	// AllUniforms returns every member of the per-draw uniform block in offset order.
	//
	// Returns:
	//   - []ProgramUniform: the members
	AllUniforms() []ProgramUniform

	// AutomaticUniforms returns the per-draw members filled from the uniform state.
	//
	// Returns:
	//   - []ProgramUniform: the automatic members
	AutomaticUniforms() []ProgramUniform

	// ManualUniforms returns the per-draw members filled from a UniformMap.
	//
	// Returns:
	//   - []ProgramUniform: the manual members
	ManualUniforms() []ProgramUniform

	// UniformBlocks returns the binding index of every uniform block either stage declares.
	//
	// Returns:
	//   - map[string]int: block name to binding
	UniformBlocks() map[string]int

	// UsesUniformBlock reports whether either stage declares the named block.
	//
	// Parameters:
	//   - name: the block name
	//
	// Returns:
	//   - bool: true when the block is declared
	UsesUniformBlock(name string) bool

	// DrawUniformsSize returns the byte size of czm_DrawUniforms, or 0 when the program has
	// no per-draw uniforms.
	//
	// Returns:
	//   - int: the block size
	DrawUniformsSize() int

	// SetUniforms encodes the per-draw block and writes it to buffer at offset. Automatic
	// members read state; manual members call their UniformMap entry.
	//
	// Parameters:
	//   - buffer: the destination uniform buffer
	//   - offset: the byte offset of the block in buffer
	//   - uniformMap: manual uniform values
	//   - state: the uniform state of the current draw
	//
	// Returns:
	//   - error: an error if a manual uniform is missing or a value has the wrong type
	SetUniforms(buffer gpu.Buffer, offset int, uniformMap UniformMap, state *uniform.State) error

	// Program returns the backend program object.
	//
	// Returns:
	//   - gpu.Program: the compiled program
	Program() gpu.Program

	// Count returns the number of outstanding references held through the cache.
	//
	// Returns:
	//   - int: the reference count
	Count() int

	// Release gives back one reference. A cached program is handed to its cache, which
	// destroys it at the end of the frame once no references remain; an uncached program is
	// destroyed immediately.
	Release()

	// IsDestroyed reports whether the backend program has been released.
	//
	// Returns:
	//   - bool: true after destruction
	IsDestroyed() bool
}

var _ ShaderProgram = &shaderProgram{}

// NewShaderProgram combines, packs, reflects and compiles a program outside any cache. Most
// callers go through a ShaderCache instead.
//
// Panics with a *common.PreconditionError wrapping the backend's *gpu.CompileError when the
// program fails to compile or link.
//
// Parameters:
//   - device: the device that compiles the program
//   - vs: the vertex stage source
//   - fs: the fragment stage source
//   - attributeLocations: requested vertex input locations, may be nil
//
// Returns:
//   - ShaderProgram: the compiled program
func NewShaderProgram(device gpu.Device, vs, fs ShaderSource, attributeLocations map[string]int) ShaderProgram {
	vsText := vs.CombineShader(false)
	fsText := fs.CombineShader(true)
	return newShaderProgram(device, programKey(vsText, fsText, attributeLocations), vs, fs, vsText, fsText, attributeLocations)
}

func newShaderProgram(device gpu.Device, key string, vs, fs ShaderSource, vsText, fsText string, attributeLocations map[string]int) *shaderProgram {
	p := &shaderProgram{
		key:                  key,
		label:                fmt.Sprintf("program-%08x", fnv32(key)),
		vertexShaderSource:   vs,
		fragmentShaderSource: fs,
	}

	packedVS, packedFS, members, size := packUniforms(vsText, fsText)
	p.vertexShaderText = packedVS
	p.fragmentShaderText = packedFS
	p.drawUniformsSize = size
	p.scratch = make([]byte, size)

	p.attributes, p.attributeLocations = assignAttributeLocations(parseAttributes(packedVS), attributeLocations)
	p.uniformBlocks = blockBindings(packedVS, packedFS)

	p.uniforms = make([]ProgramUniform, 0, len(members))
	for _, m := range members {
		u := ProgramUniform{Name: m.Name, DataType: m.DataType, Count: m.Count, Offset: m.Offset}
		if a, ok := uniform.LookupAutomaticUniform(m.Name); ok && a.Scope == uniform.ScopeCommand {
			u.Automatic = true
			u.value = a.Value
		}
		p.uniforms = append(p.uniforms, u)
	}
	sort.SliceStable(p.uniforms, func(i, j int) bool { return p.uniforms[i].Offset < p.uniforms[j].Offset })

	program, err := device.CreateProgram(gpu.ProgramDescriptor{
		Label:              p.label,
		VertexSource:       p.vertexShaderText,
		FragmentSource:     p.fragmentShaderText,
		AttributeLocations: maps.Clone(p.attributeLocations),
		UniformBlocks:      maps.Clone(p.uniformBlocks),
	})
	if err != nil {
		common.Fatal(err, "shader: failed to create program %s", p.label)
	}
	p.program = program
	return p
}

// assignAttributeLocations resolves a location for every vertex input: an explicit layout
// qualifier wins, then the caller's map, then the lowest location nobody claimed.
func assignAttributeLocations(attrs []Attribute, requested map[string]int) ([]Attribute, map[string]int) {
	locations := make(map[string]int, len(attrs))
	used := map[int]bool{}
	for i, a := range attrs {
		if a.Location < 0 {
			if loc, ok := requested[a.Name]; ok {
				attrs[i].Location = loc
			}
		}
		if attrs[i].Location >= 0 {
			used[attrs[i].Location] = true
		}
	}
	next := 0
	for i := range attrs {
		if attrs[i].Location < 0 {
			for used[next] {
				next++
			}
			attrs[i].Location = next
			used[next] = true
		}
		locations[attrs[i].Name] = attrs[i].Location
	}
	return attrs, locations
}

// blockBindings gives the automatic blocks their fixed bindings and any other block the next
// free binding in name order.
func blockBindings(stages ...string) map[string]int {
	fixed := map[string]int{
		uniform.FrameUniformsBlock:   uniform.FrameUniformsBinding,
		uniform.FrustumUniformsBlock: uniform.FrustumUniformsBinding,
		uniform.DrawUniformsBlock:    uniform.DrawUniformsBinding,
	}
	bindings := map[string]int{}
	var custom []string
	for _, stage := range stages {
		for name := range parseUniformBlocks(stage) {
			if _, seen := bindings[name]; seen {
				continue
			}
			if b, ok := fixed[name]; ok {
				bindings[name] = b
				continue
			}
			bindings[name] = -1
			custom = append(custom, name)
		}
	}
	sort.Strings(custom)
	for i, name := range custom {
		bindings[name] = uniform.DrawUniformsBinding + 1 + i
	}
	return bindings
}

func (p *shaderProgram) Key() string {
	return p.key
}

func (p *shaderProgram) Label() string {
	return p.label
}

func (p *shaderProgram) VertexShaderSource() ShaderSource {
	return p.vertexShaderSource
}

func (p *shaderProgram) FragmentShaderSource() ShaderSource {
	return p.fragmentShaderSource
}

func (p *shaderProgram) VertexShaderText() string {
	return p.vertexShaderText
}

func (p *shaderProgram) FragmentShaderText() string {
	return p.fragmentShaderText
}

func (p *shaderProgram) AttributeLocations() map[string]int {
	return maps.Clone(p.attributeLocations)
}

func (p *shaderProgram) Attributes() []Attribute {
	return append([]Attribute(nil), p.attributes...)
}

func (p *shaderProgram) AllUniforms() []ProgramUniform {
	return append([]ProgramUniform(nil), p.uniforms...)
}

func (p *shaderProgram) AutomaticUniforms() []ProgramUniform {
	var out []ProgramUniform
	for _, u := range p.uniforms {
		if u.Automatic {
			out = append(out, u)
		}
	}
	return out
}

func (p *shaderProgram) ManualUniforms() []ProgramUniform {
	var out []ProgramUniform
	for _, u := range p.uniforms {
		if !u.Automatic {
			out = append(out, u)
		}
	}
	return out
}

func (p *shaderProgram) UniformBlocks() map[string]int {
	return maps.Clone(p.uniformBlocks)
}

func (p *shaderProgram) UsesUniformBlock(name string) bool {
	_, ok := p.uniformBlocks[name]
	return ok
}

func (p *shaderProgram) DrawUniformsSize() int {
	return p.drawUniformsSize
}

func (p *shaderProgram) SetUniforms(buffer gpu.Buffer, offset int, uniformMap UniformMap, state *uniform.State) error {
	if p.drawUniformsSize == 0 {
		return nil
	}
	clear(p.scratch)
	for _, u := range p.uniforms {
		var v any
		if u.Automatic {
			if state == nil {
				return fmt.Errorf("shader: program %s: automatic uniform %s needs a uniform state", p.label, u.Name)
			}
			v = u.value(state)
		} else {
			f, ok := uniformMap[u.Name]
			if !ok || f == nil {
				return fmt.Errorf("shader: program %s: uniform %s not found in uniform map", p.label, u.Name)
			}
			v = f()
		}
		if err := putUniform(p.scratch, u, v); err != nil {
			return fmt.Errorf("shader: program %s: uniform %s: %w", p.label, u.Name, err)
		}
	}
	buffer.Write(offset, p.scratch)
	return nil
}

// putUniform encodes a scalar member directly and an array member element by element.
func putUniform(buf []byte, u ProgramUniform, v any) error {
	if u.Count <= 1 {
		return uniform.PutValue(buf, u.Offset, u.DataType, v)
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return fmt.Errorf("array of %d %s needs a slice or array, got %T", u.Count, u.DataType, v)
	}
	if rv.Len() > u.Count {
		return fmt.Errorf("%d elements do not fit %s[%d]", rv.Len(), u.DataType, u.Count)
	}
	stride := u.DataType.Std140ArrayStride()
	for i := 0; i < rv.Len(); i++ {
		if err := uniform.PutValue(buf, u.Offset+i*stride, u.DataType, rv.Index(i).Interface()); err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
	}
	return nil
}

func (p *shaderProgram) Program() gpu.Program {
	return p.program
}

func (p *shaderProgram) Count() int {
	return p.count
}

func (p *shaderProgram) Release() {
	if p.destroyed {
		return
	}
	if p.cache != nil {
		p.cache.ReleaseShaderProgram(p)
		return
	}
	p.destroy()
}

func (p *shaderProgram) IsDestroyed() bool {
	return p.destroyed
}

func (p *shaderProgram) destroy() {
	if p.destroyed {
		return
	}
	if p.program != nil {
		p.program.Release()
	}
	p.destroyed = true
}
