package pipeline

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
)

// renderPipeline is the implementation of the RenderPipeline interface.
type renderPipeline struct {
	// key is the program key plus the blend configuration
	key string

	// program is the shader program, holding one reference for the pipeline's lifetime
	program shader.ShaderProgram

	// blend is bound together with the program; on WebGPU both are baked into one pipeline object
	blend gpu.BlendDescriptor

	count     int
	cache     *pipelineCache
	destroyed bool
}

// RenderPipeline pairs a shader program with the blend and color-mask state that backends
// compile together with it. It is reference counted by its PipelineCache.
type RenderPipeline interface {
	// Key returns the unique key associated with this pipeline, used for caching and lookups.
	//
	// Returns:
	//   - string: the unique key for this pipeline
	Key() string

	// Program returns the shader program of this pipeline.
	//
	// Returns:
	//   - shader.ShaderProgram: the program
	Program() shader.ShaderProgram

	// Blend returns the blend and color-write configuration of this pipeline.
	//
	// Returns:
	//   - gpu.BlendDescriptor: the blend descriptor
	Blend() gpu.BlendDescriptor

	// Bind sets the program and blend state on encoder.
	//
	// Parameters:
	//   - encoder: the render pass encoder
	Bind(encoder gpu.RenderEncoder)

	// Count returns the number of outstanding references held through the cache.
	//
	// Returns:
	//   - int: the reference count
	Count() int

	// Release gives back one reference to the cache.
	Release()

	// IsDestroyed reports whether the pipeline released its program.
	//
	// Returns:
	//   - bool: true after destruction
	IsDestroyed() bool
}

var _ RenderPipeline = &renderPipeline{}

func newRenderPipeline(program shader.ShaderProgram, blend gpu.BlendDescriptor) *renderPipeline {
	return &renderPipeline{
		key:     pipelineKey(program, blend),
		program: program,
		blend:   blend,
	}
}

func pipelineKey(program shader.ShaderProgram, blend gpu.BlendDescriptor) string {
	return fmt.Sprintf("%s|%+v", program.Key(), blend)
}

// blendOf returns the blend descriptor of rs, or the opaque default when rs is nil.
func blendOf(rs renderstate.RenderState) gpu.BlendDescriptor {
	if rs == nil {
		return gpu.BlendDescriptor{ColorMask: gpu.ColorMaskAll}
	}
	return rs.BlendDescriptor()
}

func (p *renderPipeline) Key() string {
	return p.key
}

func (p *renderPipeline) Program() shader.ShaderProgram {
	return p.program
}

func (p *renderPipeline) Blend() gpu.BlendDescriptor {
	return p.blend
}

func (p *renderPipeline) Bind(encoder gpu.RenderEncoder) {
	encoder.SetPipeline(p.program.Program(), p.blend)
}

func (p *renderPipeline) Count() int {
	return p.count
}

func (p *renderPipeline) Release() {
	if p.destroyed || p.cache == nil {
		return
	}
	p.cache.ReleaseRenderPipeline(p)
}

func (p *renderPipeline) IsDestroyed() bool {
	return p.destroyed
}

func (p *renderPipeline) destroy() {
	if p.destroyed {
		return
	}
	p.program.Release()
	p.destroyed = true
}
