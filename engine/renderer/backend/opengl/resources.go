package opengl

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
)

type buffer struct {
	handle uint32
	target uint32
	usage  gpu.BufferUsage
	size   int
}

var _ gpu.Buffer = &buffer{}

func newBuffer(usage gpu.BufferUsage, size int) *buffer {
	b := &buffer{target: bufferTarget(usage), usage: usage, size: size}
	gl.GenBuffers(1, &b.handle)
	gl.BindBuffer(b.target, b.handle)
	gl.BufferData(b.target, size, nil, gl.DYNAMIC_DRAW)
	gl.BindBuffer(b.target, 0)
	return b
}

func (b *buffer) Size() int              { return b.size }
func (b *buffer) Usage() gpu.BufferUsage { return b.usage }

func (b *buffer) Write(offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	// element array bindings belong to the bound VAO, so uploads go through the copy target
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, b.handle)
	gl.BufferSubData(gl.COPY_WRITE_BUFFER, offset, len(data), gl.Ptr(data))
	gl.BindBuffer(gl.COPY_WRITE_BUFFER, 0)
}

func (b *buffer) Release() {
	if b.handle != 0 {
		gl.DeleteBuffers(1, &b.handle)
		b.handle = 0
	}
}

// depthStencilState holds its descriptor; GL has no state objects, so the encoder replays it.
type depthStencilState struct {
	desc gpu.DepthStencilDescriptor
}

var _ gpu.DepthStencilState = &depthStencilState{}

func (s *depthStencilState) Descriptor() gpu.DepthStencilDescriptor { return s.desc }
func (s *depthStencilState) Release()                               {}

type vertexArray struct {
	handle uint32
	desc   gpu.VertexArrayDescriptor
}

var _ gpu.VertexArray = &vertexArray{}

func newVertexArray(desc gpu.VertexArrayDescriptor) (*vertexArray, error) {
	va := &vertexArray{desc: desc}
	gl.GenVertexArrays(1, &va.handle)
	gl.BindVertexArray(va.handle)
	defer gl.BindVertexArray(0)

	for _, attr := range desc.Attributes {
		buf, ok := attr.Buffer.(*buffer)
		if !ok {
			gl.DeleteVertexArrays(1, &va.handle)
			return nil, fmt.Errorf("opengl: vertex array %s: attribute %d uses a foreign buffer", desc.Label, attr.Location)
		}
		gl.BindBuffer(gl.ARRAY_BUFFER, buf.handle)
		location := uint32(attr.Location)
		gl.EnableVertexAttribArray(location)
		gl.VertexAttribPointerWithOffset(location, int32(attr.ComponentCount), gl.FLOAT, false, int32(attr.Stride), uintptr(attr.Offset))
		gl.VertexAttribDivisor(location, uint32(attr.Divisor))
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, 0)

	if desc.IndexBuffer != nil {
		buf, ok := desc.IndexBuffer.(*buffer)
		if !ok {
			gl.DeleteVertexArrays(1, &va.handle)
			return nil, fmt.Errorf("opengl: vertex array %s: index buffer is foreign", desc.Label)
		}
		gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.handle)
	}
	return va, nil
}

func (va *vertexArray) Descriptor() gpu.VertexArrayDescriptor { return va.desc }

func (va *vertexArray) Release() {
	if va.handle != 0 {
		gl.DeleteVertexArrays(1, &va.handle)
		va.handle = 0
	}
}

// renderTarget is a framebuffer with an RGBA8 color texture and a packed depth-stencil
// renderbuffer.
type renderTarget struct {
	framebuffer  uint32
	color        uint32
	depthStencil uint32
	width        int
	height       int
}

var _ gpu.RenderTarget = &renderTarget{}

func newRenderTarget(width, height int) (*renderTarget, error) {
	rt := &renderTarget{width: width, height: height}

	gl.GenFramebuffers(1, &rt.framebuffer)
	gl.BindFramebuffer(gl.FRAMEBUFFER, rt.framebuffer)
	defer gl.BindFramebuffer(gl.FRAMEBUFFER, 0)

	gl.GenTextures(1, &rt.color)
	gl.BindTexture(gl.TEXTURE_2D, rt.color)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8, int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, rt.color, 0)

	gl.GenRenderbuffers(1, &rt.depthStencil)
	gl.BindRenderbuffer(gl.RENDERBUFFER, rt.depthStencil)
	gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8, int32(width), int32(height))
	gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, rt.depthStencil)

	if status := gl.CheckFramebufferStatus(gl.FRAMEBUFFER); status != gl.FRAMEBUFFER_COMPLETE {
		rt.Release()
		return nil, fmt.Errorf("opengl: framebuffer %dx%d incomplete: 0x%x", width, height, status)
	}
	return rt, nil
}

func (rt *renderTarget) Width() int  { return rt.width }
func (rt *renderTarget) Height() int { return rt.height }

func (rt *renderTarget) Release() {
	if rt.framebuffer != 0 {
		gl.DeleteFramebuffers(1, &rt.framebuffer)
		rt.framebuffer = 0
	}
	if rt.color != 0 {
		gl.DeleteTextures(1, &rt.color)
		rt.color = 0
	}
	if rt.depthStencil != 0 {
		gl.DeleteRenderbuffers(1, &rt.depthStencil)
		rt.depthStencil = 0
	}
}
