package opengl

import (
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

// renderEncoder issues GL calls immediately; a pass is a framebuffer binding.
type renderEncoder struct {
	device      *device
	vertexArray *vertexArray
	ended       bool
}

var _ gpu.RenderEncoder = &renderEncoder{}

func (e *renderEncoder) SetFrontFacing(order gpu.WindingOrder) {
	gl.FrontFace(frontFace(order))
}

func (e *renderEncoder) SetCullMode(mode gpu.CullMode) {
	face, enabled := cullFace(mode)
	if !enabled {
		gl.Disable(gl.CULL_FACE)
		return
	}
	gl.Enable(gl.CULL_FACE)
	gl.CullFace(face)
}

func (e *renderEncoder) SetDepthStencilState(state gpu.DepthStencilState, stencilReference uint32) {
	desc := state.Descriptor()

	// GL skips depth writes while the depth test is off, so an always-pass test stays enabled.
	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(compareFunction(desc.DepthCompare))
	gl.DepthMask(desc.DepthWrite)

	if !desc.StencilEnabled {
		gl.Disable(gl.STENCIL_TEST)
		return
	}
	gl.Enable(gl.STENCIL_TEST)
	for _, face := range []struct {
		glFace uint32
		desc   gpu.StencilFaceDescriptor
	}{
		{gl.FRONT, desc.StencilFront},
		{gl.BACK, desc.StencilBack},
	} {
		gl.StencilFuncSeparate(face.glFace, compareFunction(face.desc.Compare), int32(stencilReference), desc.StencilReadMask)
		gl.StencilOpSeparate(face.glFace, stencilOperation(face.desc.Fail), stencilOperation(face.desc.DepthFail), stencilOperation(face.desc.Pass))
		gl.StencilMaskSeparate(face.glFace, desc.StencilWriteMask)
	}
}

func (e *renderEncoder) SetViewport(viewport gpu.Viewport, depthRange gpu.DepthRange) {
	gl.Viewport(int32(viewport.X), int32(viewport.Y), int32(viewport.Width), int32(viewport.Height))
	gl.DepthRange(depthRange.Near, depthRange.Far)
}

func (e *renderEncoder) SetTriangleFillMode(mode gpu.FillMode) {
	gl.PolygonMode(gl.FRONT_AND_BACK, polygonMode(mode))
}

func (e *renderEncoder) SetDepthBias(units, factor float32) {
	if units == 0 && factor == 0 {
		gl.Disable(gl.POLYGON_OFFSET_FILL)
		return
	}
	gl.Enable(gl.POLYGON_OFFSET_FILL)
	gl.PolygonOffset(factor, units)
}

func (e *renderEncoder) SetPipeline(p gpu.Program, blend gpu.BlendDescriptor) {
	gl.UseProgram(p.(*program).handle)

	mask := blend.ColorMask
	gl.ColorMask(mask.Red, mask.Green, mask.Blue, mask.Alpha)
	if !blend.Enabled {
		gl.Disable(gl.BLEND)
		return
	}
	gl.Enable(gl.BLEND)
	gl.BlendEquationSeparate(blendEquation(blend.EquationRGB), blendEquation(blend.EquationAlpha))
	gl.BlendFuncSeparate(
		blendFunction(blend.SourceRGB), blendFunction(blend.DestinationRGB),
		blendFunction(blend.SourceAlpha), blendFunction(blend.DestinationAlpha),
	)
	gl.BlendColor(blend.Color.R, blend.Color.G, blend.Color.B, blend.Color.A)
}

func (e *renderEncoder) SetUniformBuffer(binding int, b gpu.Buffer, offset, size int) {
	gl.BindBufferRange(gl.UNIFORM_BUFFER, uint32(binding), b.(*buffer).handle, offset, size)
}

func (e *renderEncoder) SetVertexArray(va gpu.VertexArray) {
	if va == nil {
		// core profile draws need some VAO bound, even without attributes
		e.vertexArray = nil
		gl.BindVertexArray(e.device.emptyVertexArray)
		return
	}
	e.vertexArray = va.(*vertexArray)
	gl.BindVertexArray(e.vertexArray.handle)
}

func (e *renderEncoder) Draw(primitive gpu.PrimitiveType, first, count, instances int) {
	gl.DrawArraysInstanced(primitiveType(primitive), int32(first), int32(count), int32(max(instances, 1)))
}

func (e *renderEncoder) DrawIndexed(primitive gpu.PrimitiveType, first, count, instances int) {
	t := e.vertexArray.desc.IndexType
	gl.DrawElementsInstanced(primitiveType(primitive), int32(count), indexType(t), gl.PtrOffset(first*t.Size()), int32(max(instances, 1)))
}

func (e *renderEncoder) End() {
	if e.ended {
		return
	}
	e.ended = true
	gl.BindVertexArray(0)
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}
