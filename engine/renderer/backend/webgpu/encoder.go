package webgpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformBinding is a bound range of a uniform buffer.
type uniformBinding struct {
	buffer *buffer
	offset int
	size   int
}

// renderEncoder records GL-style state and turns it into a pipeline and a bind group at each
// draw.
type renderEncoder struct {
	device *device
	pass   *wgpu.RenderPassEncoder
	format wgpu.TextureFormat

	program      *program
	blend        gpu.BlendDescriptor
	depthStencil gpu.DepthStencilDescriptor
	cull         gpu.CullMode
	front        gpu.WindingOrder
	depthBias    [2]float32
	vertexArray  *vertexArray
	uniforms     map[int]uniformBinding
	ended        bool
}

var _ gpu.RenderEncoder = &renderEncoder{}

func (e *renderEncoder) SetFrontFacing(order gpu.WindingOrder) { e.front = order }
func (e *renderEncoder) SetCullMode(mode gpu.CullMode)         { e.cull = mode }

func (e *renderEncoder) SetDepthStencilState(state gpu.DepthStencilState, stencilReference uint32) {
	e.depthStencil = state.Descriptor()
	e.pass.SetStencilReference(stencilReference)
}

func (e *renderEncoder) SetViewport(viewport gpu.Viewport, depthRange gpu.DepthRange) {
	e.pass.SetViewport(
		float32(viewport.X), float32(viewport.Y), float32(viewport.Width), float32(viewport.Height),
		float32(depthRange.Near), float32(depthRange.Far),
	)
}

func (e *renderEncoder) SetTriangleFillMode(mode gpu.FillMode) {
	if mode == gpu.FillModeLines {
		common.Logger().Debug("webgpu has no wireframe fill mode, drawing filled")
	}
}

func (e *renderEncoder) SetDepthBias(units, factor float32) {
	e.depthBias = [2]float32{units, factor}
}

func (e *renderEncoder) SetPipeline(p gpu.Program, blend gpu.BlendDescriptor) {
	e.program = p.(*program)
	e.blend = blend
	if blend.Enabled {
		c := blend.Color
		e.pass.SetBlendConstant(&wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)})
	}
}

func (e *renderEncoder) SetUniformBuffer(binding int, b gpu.Buffer, offset, size int) {
	e.uniforms[binding] = uniformBinding{buffer: b.(*buffer), offset: offset, size: size}
}

func (e *renderEncoder) SetVertexArray(va gpu.VertexArray) {
	if va == nil {
		e.vertexArray = nil
		return
	}
	e.vertexArray = va.(*vertexArray)
}

func (e *renderEncoder) Draw(primitive gpu.PrimitiveType, first, count, instances int) {
	if !e.prepare(primitive, false) {
		return
	}
	e.pass.Draw(uint32(count), uint32(max(instances, 1)), uint32(first), 0)
}

func (e *renderEncoder) DrawIndexed(primitive gpu.PrimitiveType, first, count, instances int) {
	if !e.prepare(primitive, true) {
		return
	}
	desc := e.vertexArray.desc
	e.pass.SetIndexBuffer(desc.IndexBuffer.(*buffer).buf, indexFormat(desc.IndexType), 0, wgpu.WholeSize)
	e.pass.DrawIndexed(uint32(count), uint32(max(instances, 1)), uint32(first), 0, 0)
}

// prepare binds the pipeline, the uniform bind group and the vertex buffers for a draw. A
// failure is logged and the draw skipped, as the encoder has no error return.
func (e *renderEncoder) prepare(primitive gpu.PrimitiveType, indexed bool) bool {
	common.Assert(e.program != nil, "webgpu: draw without a pipeline")

	key := pipelineKey{
		blend:        e.blend,
		depthStencil: e.depthStencil,
		cull:         e.cull,
		front:        e.front,
		topology:     primitive,
		indexed:      indexed,
		depthBias:    e.depthBias,
		format:       e.format,
	}
	// the blend constant is dynamic state
	key.blend.Color = gpu.Color{}
	var layouts []wgpu.VertexBufferLayout
	if e.vertexArray != nil {
		key.vertexLayout = e.vertexArray.signature
		key.stripIndex = e.vertexArray.desc.IndexType
		layouts = e.vertexArray.layouts
	}

	rp, err := e.program.pipeline(key, layouts)
	if err != nil {
		common.Logger().Error("webgpu draw skipped", "program", e.program.label, "error", err)
		return false
	}
	bg, err := e.bindGroup()
	if err != nil {
		common.Logger().Error("webgpu draw skipped", "program", e.program.label, "error", err)
		return false
	}

	e.pass.SetPipeline(rp)
	if bg != nil {
		e.pass.SetBindGroup(0, bg, nil)
	}
	if e.vertexArray != nil {
		for i, attr := range e.vertexArray.desc.Attributes {
			e.pass.SetVertexBuffer(uint32(i), attr.Buffer.(*buffer).buf, uint64(attr.Offset), wgpu.WholeSize)
		}
	}
	return true
}

// bindGroup builds a bind group for the program's uniform blocks from the bound ranges. Bind
// groups live until the end of the frame.
func (e *renderEncoder) bindGroup() (*wgpu.BindGroup, error) {
	p := e.program
	if len(p.bindings) == 0 {
		return nil, nil
	}
	entries := make([]wgpu.BindGroupEntry, 0, len(p.bindings))
	for _, binding := range p.bindings {
		u, ok := e.uniforms[binding]
		if !ok {
			return nil, fmt.Errorf("uniform binding %d is not bound", binding)
		}
		entries = append(entries, wgpu.BindGroupEntry{
			Binding: uint32(binding),
			Buffer:  u.buffer.buf,
			Offset:  uint64(u.offset),
			Size:    uint64(u.size),
		})
	}
	bg, err := e.device.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:   p.label + " uniforms",
		Layout:  p.bindGroup,
		Entries: entries,
	})
	if err != nil {
		return nil, err
	}
	e.device.frameBindGroups = append(e.device.frameBindGroups, bg)
	return bg, nil
}

func (e *renderEncoder) End() {
	if e.ended {
		return
	}
	e.ended = true
	e.pass.End()
	e.pass.Release()
}
