// Package webgpu implements gpu.Device on WebGPU. GLSL ES 3.00 programs are rewritten to
// Vulkan-flavored GLSL 4.50 and handed to the native shader compiler.
package webgpu

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/cogentcore/webgpu/wgpu"
)

// errNoFrame is returned when a frame operation runs outside BeginFrame/EndFrame.
var errNoFrame = errors.New("webgpu: no frame in progress")

// device is the WebGPU implementation of gpu.Device.
type device struct {
	name string

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	surface  *wgpu.Surface
	device   *wgpu.Device
	queue    *wgpu.Queue

	forceFallbackAdapter bool
	presentMode          wgpu.PresentMode
	surfaceFormat        wgpu.TextureFormat
	width, height        int

	depth     *wgpu.Texture
	depthView *wgpu.TextureView

	frameEncoder    *wgpu.CommandEncoder
	frameSurface    *wgpu.Texture
	frameView       *wgpu.TextureView
	frameBindGroups []*wgpu.BindGroup
}

var _ gpu.Device = &device{}

// NewDevice creates a WebGPU device presenting to the given surface. The calling thread is
// locked, as the surface belongs to the window thread.
//
// Parameters:
//   - surfaceDescriptor: the platform surface, usually from the window
//   - options: variadic list of DeviceBuilderOption
//
// Returns:
//   - gpu.Device: the new device
//   - error: an error if no adapter or device could be acquired
func NewDevice(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...DeviceBuilderOption) (gpu.Device, error) {
	runtime.LockOSThread()
	d := &device{
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(d)
	}

	d.instance = wgpu.CreateInstance(nil)
	d.surface = d.instance.CreateSurface(surfaceDescriptor)
	adapter, err := d.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: d.forceFallbackAdapter,
		CompatibleSurface:    d.surface,
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("webgpu: requesting adapter: %w", err)
	}
	d.adapter = adapter

	limits := wgpu.DefaultLimits()
	dev, err := adapter.RequestDevice(&wgpu.DeviceDescriptor{
		Label: "globe device",
		RequiredLimits: &wgpu.RequiredLimits{
			Limits: limits,
		},
	})
	if err != nil {
		d.Release()
		return nil, fmt.Errorf("webgpu: requesting device: %w", err)
	}
	d.device = dev
	d.queue = dev.GetQueue()

	d.name = fmt.Sprintf("webgpu (fallback adapter: %t)", d.forceFallbackAdapter)
	if d.width > 0 && d.height > 0 {
		d.Resize(d.width, d.height)
	}

	common.Logger().Info("webgpu device created", "name", d.name)
	return d, nil
}

func (d *device) Name() string { return d.name }

func (d *device) CreateBuffer(usage gpu.BufferUsage, size int, label string) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("webgpu: buffer %s: invalid size %d", label, size)
	}
	buf, err := d.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: label,
		Size:  uint64(align4(size)),
		Usage: bufferUsage(usage),
	})
	if err != nil {
		return nil, fmt.Errorf("webgpu: buffer %s: %w", label, err)
	}
	return &buffer{buf: buf, queue: d.queue, usage: usage, size: size}, nil
}

func (d *device) CreateDepthStencilState(desc gpu.DepthStencilDescriptor) gpu.DepthStencilState {
	return &depthStencilState{desc: desc}
}

func (d *device) CreateProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	p, err := createProgram(d.device, desc)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("webgpu program created", "label", desc.Label)
	return p, nil
}

func (d *device) CreateVertexArray(desc gpu.VertexArrayDescriptor) (gpu.VertexArray, error) {
	return newVertexArray(desc)
}

func (d *device) CreateRenderTarget(width, height int) (gpu.RenderTarget, error) {
	rt := &renderTarget{width: width, height: height}
	var err error
	rt.color, rt.colorView, err = createAttachment(d.device, "render target color", width, height, targetFormat,
		wgpu.TextureUsageRenderAttachment|wgpu.TextureUsageTextureBinding)
	if err != nil {
		return nil, fmt.Errorf("webgpu: render target: %w", err)
	}
	rt.depth, rt.depthView, err = createAttachment(d.device, "render target depth", width, height, depthFormat,
		wgpu.TextureUsageRenderAttachment)
	if err != nil {
		rt.Release()
		return nil, fmt.Errorf("webgpu: render target: %w", err)
	}
	return rt, nil
}

// SetInflightFrames is a no-op: EndFrame reports completion before it returns.
func (d *device) SetInflightFrames(int) {}

func (d *device) BeginFrame() error {
	if d.frameSurface != nil {
		return fmt.Errorf("webgpu: previous frame surface not yet presented")
	}
	if d.depthView == nil {
		return fmt.Errorf("webgpu: surface is not configured")
	}
	surfaceTexture, err := d.surface.GetCurrentTexture()
	if err != nil {
		return fmt.Errorf("webgpu: acquiring surface texture: %w", err)
	}
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: creating surface view: %w", err)
	}
	encoder, err := d.device.CreateCommandEncoder(nil)
	if err != nil {
		view.Release()
		surfaceTexture.Release()
		return fmt.Errorf("webgpu: creating command encoder: %w", err)
	}
	d.frameSurface = surfaceTexture
	d.frameView = view
	d.frameEncoder = encoder
	return nil
}

func (d *device) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderEncoder {
	common.Assert(d.frameEncoder != nil, "%v", errNoFrame)

	colorView, depthView, format := d.frameView, d.depthView, d.surfaceFormat
	if desc.Target != nil {
		rt := desc.Target.(*renderTarget)
		colorView, depthView, format = rt.colorView, rt.depthView, targetFormat
	}

	color := wgpu.RenderPassColorAttachment{
		View:    colorView,
		LoadOp:  wgpu.LoadOpLoad,
		StoreOp: wgpu.StoreOpStore,
	}
	if c := desc.ClearColor; c != nil {
		color.LoadOp = wgpu.LoadOpClear
		color.ClearValue = wgpu.Color{R: float64(c.R), G: float64(c.G), B: float64(c.B), A: float64(c.A)}
	}
	depthStencil := &wgpu.RenderPassDepthStencilAttachment{
		View:            depthView,
		DepthLoadOp:     wgpu.LoadOpLoad,
		DepthStoreOp:    wgpu.StoreOpStore,
		StencilLoadOp:   wgpu.LoadOpLoad,
		StencilStoreOp:  wgpu.StoreOpStore,
		DepthClearValue: 1,
	}
	if depth := desc.ClearDepth; depth != nil {
		depthStencil.DepthLoadOp = wgpu.LoadOpClear
		depthStencil.DepthClearValue = float32(*depth)
	}
	if stencil := desc.ClearStencil; stencil != nil {
		depthStencil.StencilLoadOp = wgpu.LoadOpClear
		depthStencil.StencilClearValue = uint32(*stencil)
	}

	pass := d.frameEncoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments:       []wgpu.RenderPassColorAttachment{color},
		DepthStencilAttachment: depthStencil,
	})
	return &renderEncoder{
		device:   d,
		pass:     pass,
		format:   format,
		cull:     gpu.CullModeNone,
		uniforms: make(map[int]uniformBinding),
		depthStencil: gpu.DepthStencilDescriptor{
			DepthCompare: gpu.CompareFunctionAlways,
		},
		blend: gpu.BlendDescriptor{ColorMask: gpu.ColorMaskAll},
	}
}

// EndFrame submits and presents. Queue writes are ordered on the queue timeline, so a
// buffer may be rewritten as soon as the frame that read it is submitted and onComplete runs
// right away.
func (d *device) EndFrame(onComplete func()) {
	if d.frameEncoder == nil {
		common.Logger().Warn("webgpu EndFrame without BeginFrame")
		if onComplete != nil {
			onComplete()
		}
		return
	}

	commandBuffer, err := d.frameEncoder.Finish(nil)
	if err != nil {
		common.Logger().Error("webgpu frame dropped", "error", err)
	} else {
		d.queue.Submit(commandBuffer)
		commandBuffer.Release()
		d.surface.Present()
	}
	d.releaseFrame()
	if onComplete != nil {
		onComplete()
	}
}

func (d *device) releaseFrame() {
	for _, bg := range d.frameBindGroups {
		bg.Release()
	}
	d.frameBindGroups = d.frameBindGroups[:0]
	if d.frameEncoder != nil {
		d.frameEncoder.Release()
		d.frameEncoder = nil
	}
	if d.frameView != nil {
		d.frameView.Release()
		d.frameView = nil
	}
	if d.frameSurface != nil {
		d.frameSurface.Release()
		d.frameSurface = nil
	}
}

// Resize configures the surface and recreates the surface depth-stencil texture.
func (d *device) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	d.width, d.height = width, height
	if d.device == nil {
		return
	}

	capabilities := d.surface.GetCapabilities(d.adapter)
	d.surfaceFormat = capabilities.Formats[0]
	d.surface.Configure(d.adapter, d.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      d.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: d.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})

	d.releaseDepth()
	depth, view, err := createAttachment(d.device, "surface depth", width, height, depthFormat, wgpu.TextureUsageRenderAttachment)
	if err != nil {
		common.Logger().Error("webgpu surface depth texture", "width", width, "height", height, "error", err)
		return
	}
	d.depth, d.depthView = depth, view
}

func (d *device) releaseDepth() {
	if d.depthView != nil {
		d.depthView.Release()
		d.depthView = nil
	}
	if d.depth != nil {
		d.depth.Release()
		d.depth = nil
	}
}

func (d *device) Release() {
	d.releaseFrame()
	d.releaseDepth()
	if d.queue != nil {
		d.queue.Release()
		d.queue = nil
	}
	if d.device != nil {
		d.device.Release()
		d.device = nil
	}
	if d.adapter != nil {
		d.adapter.Release()
		d.adapter = nil
	}
	if d.surface != nil {
		d.surface.Release()
		d.surface = nil
	}
	if d.instance != nil {
		d.instance.Release()
		d.instance = nil
	}
	common.Logger().Info("webgpu device released", "name", d.name)
}
