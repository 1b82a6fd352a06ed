package pipeline

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/renderstate"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/shader"
)

// pipelineCache is the implementation of the PipelineCache interface.
type pipelineCache struct {
	shaders       shader.ShaderCache
	pipelines     map[string]*renderPipeline
	toBeDestroyed map[string]*renderPipeline
	maxPipelines  int
}

// PipelineCache deduplicates RenderPipelines by program and blend state and reference counts
// them the same way ShaderCache does for programs. Each pipeline holds one reference on its
// program, returned when the pipeline is destroyed.
type PipelineCache interface {
	// GetRenderPipeline returns the pipeline for the given stages and render state, creating
	// it on a miss. Every call takes one reference.
	//
	// Parameters:
	//   - vs: the vertex stage source
	//   - fs: the fragment stage source
	//   - attributeLocations: requested vertex input locations, may be nil
	//   - rs: the render state whose blend configuration the pipeline bakes in, may be nil
	//
	// Returns:
	//   - RenderPipeline: the cached pipeline
	GetRenderPipeline(vs, fs shader.ShaderSource, attributeLocations map[string]int, rs renderstate.RenderState) RenderPipeline

	// ReplaceRenderPipeline releases old, which may be nil, and then gets a pipeline.
	//
	// Parameters:
	//   - old: the pipeline being replaced
	//   - vs: the vertex stage source
	//   - fs: the fragment stage source
	//   - attributeLocations: requested vertex input locations, may be nil
	//   - rs: the render state, may be nil
	//
	// Returns:
	//   - RenderPipeline: the cached pipeline
	ReplaceRenderPipeline(old RenderPipeline, vs, fs shader.ShaderSource, attributeLocations map[string]int, rs renderstate.RenderState) RenderPipeline

	// ReleaseRenderPipeline gives back one reference. At zero the pipeline is queued for
	// destruction.
	//
	// Parameters:
	//   - p: a pipeline obtained from this cache
	ReleaseRenderPipeline(p RenderPipeline)

	// DestroyReleasedPipelines destroys every queued pipeline that was not revived and
	// returns its program reference. Call it before ShaderCache.DestroyReleasedShaderPrograms
	// so the programs are reclaimed in the same frame.
	DestroyReleasedPipelines()

	// NumberOfPipelines returns the number of pipelines with at least one reference.
	//
	// Returns:
	//   - int: the live pipeline count
	NumberOfPipelines() int

	// NumberOfReleasedPipelines returns the number of pipelines queued for destruction.
	//
	// Returns:
	//   - int: the queued pipeline count
	NumberOfReleasedPipelines() int

	// Release destroys every pipeline, referenced or not.
	Release()
}

var _ PipelineCache = &pipelineCache{}

// NewPipelineCache creates a PipelineCache drawing programs from shaders.
//
// Parameters:
//   - shaders: the program cache
//   - options: variadic list of PipelineCacheBuilderOption
//
// Returns:
//   - PipelineCache: the new cache
func NewPipelineCache(shaders shader.ShaderCache, options ...PipelineCacheBuilderOption) PipelineCache {
	c := &pipelineCache{
		shaders:       shaders,
		pipelines:     make(map[string]*renderPipeline),
		toBeDestroyed: make(map[string]*renderPipeline),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *pipelineCache) GetRenderPipeline(vs, fs shader.ShaderSource, attributeLocations map[string]int, rs renderstate.RenderState) RenderPipeline {
	program := c.shaders.GetShaderProgram(vs, fs, attributeLocations)
	blend := blendOf(rs)
	key := pipelineKey(program, blend)

	if p, ok := c.pipelines[key]; ok {
		// the pipeline already owns a reference on this program
		program.Release()
		p.count++
		delete(c.toBeDestroyed, key)
		return p
	}

	if c.maxPipelines > 0 && c.NumberOfPipelines() >= c.maxPipelines {
		program.Release()
		common.Exhausted("render pipelines", c.maxPipelines)
	}
	p := newRenderPipeline(program, blend)
	p.cache = c
	p.count = 1
	c.pipelines[key] = p
	common.Logger().Debug("render pipeline created", "program", program.Label(), "blending", blend.Enabled)
	return p
}

func (c *pipelineCache) ReplaceRenderPipeline(old RenderPipeline, vs, fs shader.ShaderSource, attributeLocations map[string]int, rs renderstate.RenderState) RenderPipeline {
	if old != nil {
		c.ReleaseRenderPipeline(old)
	}
	return c.GetRenderPipeline(vs, fs, attributeLocations, rs)
}

func (c *pipelineCache) ReleaseRenderPipeline(p RenderPipeline) {
	rp, ok := p.(*renderPipeline)
	if !ok || rp == nil || rp.cache != c {
		return
	}
	if cached, ok := c.pipelines[rp.key]; !ok || cached != rp {
		return
	}
	if rp.count < 1 {
		common.Logger().Warn("render pipeline released more often than acquired", "program", rp.program.Label())
		return
	}
	rp.count--
	if rp.count < 1 {
		c.toBeDestroyed[rp.key] = rp
	}
}

func (c *pipelineCache) DestroyReleasedPipelines() {
	for key, p := range c.toBeDestroyed {
		delete(c.pipelines, key)
		p.destroy()
	}
	clear(c.toBeDestroyed)
}

func (c *pipelineCache) NumberOfPipelines() int {
	return len(c.pipelines) - len(c.toBeDestroyed)
}

func (c *pipelineCache) NumberOfReleasedPipelines() int {
	return len(c.toBeDestroyed)
}

func (c *pipelineCache) Release() {
	for _, p := range c.pipelines {
		p.destroy()
	}
	clear(c.pipelines)
	clear(c.toBeDestroyed)
}
