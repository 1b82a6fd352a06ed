package webgpu

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// depthFormat is used by the surface and by every render target, so one pipeline serves both.
const depthFormat = wgpu.TextureFormatDepth24PlusStencil8

// targetFormat is the color format of offscreen render targets.
const targetFormat = wgpu.TextureFormatRGBA8Unorm

type buffer struct {
	buf   *wgpu.Buffer
	queue *wgpu.Queue
	usage gpu.BufferUsage
	size  int
}

var _ gpu.Buffer = &buffer{}

func (b *buffer) Size() int              { return b.size }
func (b *buffer) Usage() gpu.BufferUsage { return b.usage }

func (b *buffer) Write(offset int, data []byte) {
	if len(data) == 0 {
		return
	}
	// queue writes move whole words
	if len(data)%4 != 0 {
		padded := make([]byte, align4(len(data)))
		copy(padded, data)
		data = padded
	}
	b.queue.WriteBuffer(b.buf, uint64(offset), data)
}

func (b *buffer) Release() {
	if b.buf != nil {
		b.buf.Release()
		b.buf = nil
	}
}

type depthStencilState struct {
	desc gpu.DepthStencilDescriptor
}

var _ gpu.DepthStencilState = &depthStencilState{}

func (s *depthStencilState) Descriptor() gpu.DepthStencilDescriptor { return s.desc }
func (s *depthStencilState) Release()                               {}

// vertexArray keeps its descriptor: WebGPU bakes vertex layouts into pipelines and binds
// buffers per draw.
type vertexArray struct {
	desc gpu.VertexArrayDescriptor
	// layouts has one single-attribute layout per attribute, in attribute order.
	layouts   []wgpu.VertexBufferLayout
	signature string
}

var _ gpu.VertexArray = &vertexArray{}

func newVertexArray(desc gpu.VertexArrayDescriptor) (*vertexArray, error) {
	va := &vertexArray{desc: desc}
	for _, attr := range desc.Attributes {
		if _, ok := attr.Buffer.(*buffer); !ok {
			return nil, fmt.Errorf("webgpu: vertex array %s: attribute %d uses a foreign buffer", desc.Label, attr.Location)
		}
		format, ok := vertexFormats[attr.ComponentCount]
		if !ok {
			return nil, fmt.Errorf("webgpu: vertex array %s: attribute %d has %d components", desc.Label, attr.Location, attr.ComponentCount)
		}
		stride := attr.Stride
		if stride == 0 {
			stride = attr.ComponentCount * 4
		}
		step := wgpu.VertexStepModeVertex
		if attr.Divisor > 0 {
			step = wgpu.VertexStepModeInstance
		}
		va.layouts = append(va.layouts, wgpu.VertexBufferLayout{
			ArrayStride: uint64(stride),
			StepMode:    step,
			Attributes: []wgpu.VertexAttribute{{
				Format:         format,
				Offset:         0,
				ShaderLocation: uint32(attr.Location),
			}},
		})
		va.signature += fmt.Sprintf("%d:%d:%d:%d;", attr.Location, attr.ComponentCount, stride, step)
	}
	if desc.IndexBuffer != nil {
		if _, ok := desc.IndexBuffer.(*buffer); !ok {
			return nil, fmt.Errorf("webgpu: vertex array %s: index buffer is foreign", desc.Label)
		}
	}
	return va, nil
}

func (va *vertexArray) Descriptor() gpu.VertexArrayDescriptor { return va.desc }
func (va *vertexArray) Release()                              {}

type renderTarget struct {
	color     *wgpu.Texture
	colorView *wgpu.TextureView
	depth     *wgpu.Texture
	depthView *wgpu.TextureView
	width     int
	height    int
}

var _ gpu.RenderTarget = &renderTarget{}

func (rt *renderTarget) Width() int  { return rt.width }
func (rt *renderTarget) Height() int { return rt.height }

func (rt *renderTarget) Release() {
	for _, v := range []*wgpu.TextureView{rt.colorView, rt.depthView} {
		if v != nil {
			v.Release()
		}
	}
	for _, t := range []*wgpu.Texture{rt.color, rt.depth} {
		if t != nil {
			t.Release()
		}
	}
	rt.color, rt.colorView, rt.depth, rt.depthView = nil, nil, nil, nil
}

// createAttachment creates a single-sample 2D texture and its default view.
func createAttachment(device *wgpu.Device, label string, width, height int, format wgpu.TextureFormat, usage wgpu.TextureUsage) (*wgpu.Texture, *wgpu.TextureView, error) {
	tex, err := device.CreateTexture(&wgpu.TextureDescriptor{
		Label: label,
		Size: wgpu.Extent3D{
			Width:              uint32(width),
			Height:             uint32(height),
			DepthOrArrayLayers: 1,
		},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        format,
		Usage:         usage,
	})
	if err != nil {
		return nil, nil, err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return nil, nil, err
	}
	return tex, view, nil
}
