package shader

import (
	"hash/fnv"
	"sort"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// shaderCache is the implementation of the ShaderCache interface.
type shaderCache struct {
	device        gpu.Device
	shaders       map[string]*shaderProgram
	toBeDestroyed map[string]*shaderProgram
	maxPrograms   int
	globalDefines []string
}

// ShaderCache deduplicates compiled programs by their combined stage text and attribute
// locations and reference counts them. Programs whose count drops to zero are destroyed by
// DestroyReleasedShaderPrograms, which the renderer calls once per frame; asking for the same
// program before then revives it without recompiling. Render goroutine only.
type ShaderCache interface {
	// GetShaderProgram returns the program for the given stages, compiling it on a miss.
	// Every call takes one reference.
	//
	// Panics with a *common.ResourceExhaustedError when a miss would exceed the program
	// limit, and with a *common.PreconditionError when compilation fails.
	//
	// Parameters:
	//   - vs: the vertex stage source
	//   - fs: the fragment stage source
	//   - attributeLocations: requested vertex input locations, may be nil
	//
	// Returns:
	//   - ShaderProgram: the cached program
	GetShaderProgram(vs, fs ShaderSource, attributeLocations map[string]int) ShaderProgram

	// ReplaceShaderProgram releases old, which may be nil, and then gets the program for the
	// given stages.
	//
	// Parameters:
	//   - old: the program being replaced
	//   - vs: the vertex stage source
	//   - fs: the fragment stage source
	//   - attributeLocations: requested vertex input locations, may be nil
	//
	// Returns:
	//   - ShaderProgram: the cached program
	ReplaceShaderProgram(old ShaderProgram, vs, fs ShaderSource, attributeLocations map[string]int) ShaderProgram

	// ReleaseShaderProgram gives back one reference. At zero the program is queued for
	// destruction.
	//
	// Parameters:
	//   - p: a program obtained from this cache
	ReleaseShaderProgram(p ShaderProgram)

	// DestroyReleasedShaderPrograms destroys every queued program that was not revived.
	DestroyReleasedShaderPrograms()

	// NumberOfShaders returns the number of programs with at least one reference.
	//
	// Returns:
	//   - int: the live program count
	NumberOfShaders() int

	// NumberOfReleasedShaders returns the number of programs queued for destruction.
	//
	// Returns:
	//   - int: the queued program count
	NumberOfReleasedShaders() int

	// Release destroys every program, referenced or not.
	Release()
}

var _ ShaderCache = &shaderCache{}

// NewShaderCache creates a ShaderCache compiling on device.
//
// Parameters:
//   - device: the device programs are created on
//   - options: variadic list of ShaderCacheBuilderOption
//
// Returns:
//   - ShaderCache: the new cache
func NewShaderCache(device gpu.Device, options ...ShaderCacheBuilderOption) ShaderCache {
	c := &shaderCache{
		device:        device,
		shaders:       make(map[string]*shaderProgram),
		toBeDestroyed: make(map[string]*shaderProgram),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *shaderCache) GetShaderProgram(vs, fs ShaderSource, attributeLocations map[string]int) ShaderProgram {
	common.Assert(vs != nil && fs != nil, "shader: vertex and fragment sources are required")
	if len(c.globalDefines) > 0 {
		vs = vs.Clone(WithDefines(c.globalDefines...))
		fs = fs.Clone(WithDefines(c.globalDefines...))
	}
	vsText := vs.CombineShader(false)
	fsText := fs.CombineShader(true)
	key := programKey(vsText, fsText, attributeLocations)

	if p, ok := c.shaders[key]; ok {
		p.count++
		if _, pending := c.toBeDestroyed[key]; pending {
			delete(c.toBeDestroyed, key)
			common.Logger().Debug("shader program revived", "label", p.label)
		}
		return p
	}

	if c.maxPrograms > 0 && c.NumberOfShaders() >= c.maxPrograms {
		common.Exhausted("shader programs", c.maxPrograms)
	}
	p := newShaderProgram(c.device, key, vs, fs, vsText, fsText, attributeLocations)
	p.cache = c
	p.count = 1
	c.shaders[key] = p
	common.Logger().Debug("shader program compiled", "label", p.label, "drawUniformsSize", p.drawUniformsSize)
	return p
}

func (c *shaderCache) ReplaceShaderProgram(old ShaderProgram, vs, fs ShaderSource, attributeLocations map[string]int) ShaderProgram {
	if old != nil {
		c.ReleaseShaderProgram(old)
	}
	return c.GetShaderProgram(vs, fs, attributeLocations)
}

func (c *shaderCache) ReleaseShaderProgram(p ShaderProgram) {
	sp, ok := p.(*shaderProgram)
	if !ok || sp == nil || sp.cache != c {
		return
	}
	if cached, ok := c.shaders[sp.key]; !ok || cached != sp {
		return
	}
	if sp.count < 1 {
		common.Logger().Warn("shader program released more often than acquired", "label", sp.label)
		return
	}
	sp.count--
	if sp.count < 1 {
		c.toBeDestroyed[sp.key] = sp
	}
}

func (c *shaderCache) DestroyReleasedShaderPrograms() {
	for key, p := range c.toBeDestroyed {
		delete(c.shaders, key)
		p.destroy()
		common.Logger().Debug("shader program destroyed", "label", p.label)
	}
	clear(c.toBeDestroyed)
}

func (c *shaderCache) NumberOfShaders() int {
	return len(c.shaders) - len(c.toBeDestroyed)
}

func (c *shaderCache) NumberOfReleasedShaders() int {
	return len(c.toBeDestroyed)
}

func (c *shaderCache) Release() {
	for _, p := range c.shaders {
		p.destroy()
	}
	clear(c.shaders)
	clear(c.toBeDestroyed)
}

// programKey identifies a program by both stage texts and a canonical rendering of the
// attribute locations.
func programKey(vsText, fsText string, attributeLocations map[string]int) string {
	names := make([]string, 0, len(attributeLocations))
	for name := range attributeLocations {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.Grow(len(vsText) + len(fsText) + 16*len(names))
	b.WriteString(vsText)
	b.WriteString("\x00")
	b.WriteString(fsText)
	b.WriteString("\x00")
	for _, name := range names {
		b.WriteString(name)
		b.WriteByte(':')
		b.WriteString(strconv.Itoa(attributeLocations[name]))
		b.WriteByte(',')
	}
	return b.String()
}

func fnv32(s string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(s))
	return h.Sum32()
}
