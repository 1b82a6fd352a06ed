package webgpu

import (
	"fmt"
	"maps"
	"slices"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// pipelineKey is every piece of encoder state a WebGPU render pipeline bakes in.
type pipelineKey struct {
	blend        gpu.BlendDescriptor
	depthStencil gpu.DepthStencilDescriptor
	cull         gpu.CullMode
	front        gpu.WindingOrder
	topology     gpu.PrimitiveType
	stripIndex   gpu.IndexType
	indexed      bool
	depthBias    [2]float32
	vertexLayout string
	format       wgpu.TextureFormat
}

// program holds both shader modules and the render pipelines created for them so far.
type program struct {
	label          string
	device         *wgpu.Device
	vertexModule   *wgpu.ShaderModule
	fragmentModule *wgpu.ShaderModule
	bindGroup      *wgpu.BindGroupLayout
	layout         *wgpu.PipelineLayout
	// bindings lists the uniform block bindings in ascending order.
	bindings  []int
	pipelines map[pipelineKey]*wgpu.RenderPipeline
}

var _ gpu.Program = &program{}

func createProgram(device *wgpu.Device, desc gpu.ProgramDescriptor) (*program, error) {
	varyings := varyingLocations(desc.VertexSource)
	vs, err := toGLSL450(gpu.ShaderStageVertex, desc.VertexSource, desc, varyings)
	if err != nil {
		return nil, &gpu.CompileError{Label: desc.Label, Stage: "vertex", Source: desc.VertexSource, Log: err.Error()}
	}
	fs, err := toGLSL450(gpu.ShaderStageFragment, desc.FragmentSource, desc, varyings)
	if err != nil {
		return nil, &gpu.CompileError{Label: desc.Label, Stage: "fragment", Source: desc.FragmentSource, Log: err.Error()}
	}

	p := &program{
		label:     desc.Label,
		device:    device,
		bindings:  slices.Sorted(maps.Values(desc.UniformBlocks)),
		pipelines: make(map[pipelineKey]*wgpu.RenderPipeline),
	}
	p.vertexModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + " vertex",
		GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
			Code:        vs,
			ShaderStage: wgpu.ShaderStageVertex,
		},
	})
	if err != nil {
		return nil, &gpu.CompileError{Label: desc.Label, Stage: "vertex", Source: vs, Log: err.Error()}
	}
	p.fragmentModule, err = device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label: desc.Label + " fragment",
		GLSLDescriptor: &wgpu.ShaderModuleGLSLDescriptor{
			Code:        fs,
			ShaderStage: wgpu.ShaderStageFragment,
		},
	})
	if err != nil {
		p.Release()
		return nil, &gpu.CompileError{Label: desc.Label, Stage: "fragment", Source: fs, Log: err.Error()}
	}

	entries := make([]wgpu.BindGroupLayoutEntry, 0, len(p.bindings))
	for _, binding := range p.bindings {
		entry := wgpu.BindGroupLayoutEntry{
			Binding:    uint32(binding),
			Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment,
		}
		entry.Buffer.Type = wgpu.BufferBindingTypeUniform
		entries = append(entries, entry)
	}
	p.bindGroup, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label:   desc.Label + " uniforms",
		Entries: entries,
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("webgpu: program %s: creating bind group layout: %w", desc.Label, err)
	}
	p.layout, err = device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            desc.Label,
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.bindGroup},
	})
	if err != nil {
		p.Release()
		return nil, fmt.Errorf("webgpu: program %s: creating pipeline layout: %w", desc.Label, err)
	}
	return p, nil
}

func (p *program) Label() string { return p.label }

// pipeline returns the render pipeline for key, creating it on first use.
func (p *program) pipeline(key pipelineKey, layouts []wgpu.VertexBufferLayout) (*wgpu.RenderPipeline, error) {
	if rp, ok := p.pipelines[key]; ok {
		return rp, nil
	}

	primitive := wgpu.PrimitiveState{
		Topology:  topology(key.topology),
		FrontFace: frontFace(key.front),
		CullMode:  cullMode(key.cull),
	}
	if key.indexed && isStrip(key.topology) {
		primitive.StripIndexFormat = indexFormat(key.stripIndex)
	}

	ds := key.depthStencil
	var stencilRead, stencilWrite uint32
	if ds.StencilEnabled {
		stencilRead, stencilWrite = ds.StencilReadMask, ds.StencilWriteMask
	}

	rp, err := p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  p.label,
		Layout: p.layout,
		Vertex: wgpu.VertexState{
			Module:     p.vertexModule,
			EntryPoint: "main",
			Buffers:    layouts,
		},
		Fragment: &wgpu.FragmentState{
			Module:     p.fragmentModule,
			EntryPoint: "main",
			Targets: []wgpu.ColorTargetState{{
				Format:    key.format,
				Blend:     blendState(key.blend),
				WriteMask: writeMask(key.blend.ColorMask),
			}},
		},
		Primitive: primitive,
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
		DepthStencil: &wgpu.DepthStencilState{
			Format:              depthFormat,
			DepthWriteEnabled:   ds.DepthWrite,
			DepthCompare:        compareFunction(ds.DepthCompare),
			StencilFront:        stencilFace(ds.StencilFront, ds.StencilEnabled),
			StencilBack:         stencilFace(ds.StencilBack, ds.StencilEnabled),
			StencilReadMask:     stencilRead,
			StencilWriteMask:    stencilWrite,
			DepthBias:           int32(key.depthBias[0]),
			DepthBiasSlopeScale: key.depthBias[1],
		},
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: program %s: creating render pipeline: %w", p.label, err)
	}
	p.pipelines[key] = rp
	return rp, nil
}

func (p *program) Release() {
	for key, rp := range p.pipelines {
		rp.Release()
		delete(p.pipelines, key)
	}
	if p.layout != nil {
		p.layout.Release()
		p.layout = nil
	}
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	for _, m := range []*wgpu.ShaderModule{p.vertexModule, p.fragmentModule} {
		if m != nil {
			m.Release()
		}
	}
	p.vertexModule, p.fragmentModule = nil, nil
}
