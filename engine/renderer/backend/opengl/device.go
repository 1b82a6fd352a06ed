// Package opengl implements gpu.Device on the OpenGL 4.1 core profile. GLSL ES 3.00 programs
// are translated to desktop GLSL before compilation.
package opengl

import (
	"fmt"
	"runtime"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/buffer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/go-gl/gl/v4.1-core/gl"
	gst "github.com/richinsley/goshadertranslator"
)

// fenceWait bounds one blocking wait on a frame fence; the wait repeats until it signals.
const fenceWait = 100 * time.Millisecond

// frameFence is a submitted frame whose completion callback has not run yet.
type frameFence struct {
	sync       uintptr
	onComplete func()
}

// device is the OpenGL implementation of gpu.Device.
type device struct {
	name           string
	inflightFrames int
	swap           func()
	translator     *gst.ShaderTranslator

	pending          []frameFence
	emptyVertexArray uint32
	width, height    int
}

var _ gpu.Device = &device{}

// NewDevice creates an OpenGL device on the context current on the calling thread. The
// thread is locked for the life of the process, as GL contexts are bound to threads.
//
// Parameters:
//   - options: variadic list of DeviceBuilderOption
//
// Returns:
//   - gpu.Device: the new device
//   - error: an error if GL could not be loaded or the shader translator could not start
func NewDevice(options ...DeviceBuilderOption) (gpu.Device, error) {
	runtime.LockOSThread()
	d := &device{inflightFrames: buffer.BufferSyncStateCount}
	for _, opt := range options {
		opt(d)
	}
	common.Assert(d.inflightFrames > 0, "opengl: inflightFrames must be > 0, got %d", d.inflightFrames)

	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("opengl: loading GL: %w", err)
	}
	if d.translator == nil {
		t, err := newTranslator()
		if err != nil {
			return nil, err
		}
		d.translator = t
	}
	d.name = fmt.Sprintf("opengl %s (%s)", gl.GoStr(gl.GetString(gl.VERSION)), gl.GoStr(gl.GetString(gl.RENDERER)))
	gl.GenVertexArrays(1, &d.emptyVertexArray)

	common.Logger().Info("opengl device created", "name", d.name)
	return d, nil
}

func (d *device) Name() string { return d.name }

func (d *device) CreateBuffer(usage gpu.BufferUsage, size int, label string) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("opengl: buffer %s: invalid size %d", label, size)
	}
	return newBuffer(usage, size), nil
}

func (d *device) CreateDepthStencilState(desc gpu.DepthStencilDescriptor) gpu.DepthStencilState {
	return &depthStencilState{desc: desc}
}

func (d *device) CreateProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	p, err := createProgram(d.translator, desc)
	if err != nil {
		return nil, err
	}
	common.Logger().Debug("opengl program linked", "label", desc.Label)
	return p, nil
}

func (d *device) CreateVertexArray(desc gpu.VertexArrayDescriptor) (gpu.VertexArray, error) {
	return newVertexArray(desc)
}

func (d *device) CreateRenderTarget(width, height int) (gpu.RenderTarget, error) {
	return newRenderTarget(width, height)
}

func (d *device) SetInflightFrames(n int) {
	common.Assert(n > 0, "opengl: inflightFrames must be > 0, got %d", n)
	d.inflightFrames = n
}

func (d *device) BeginFrame() error {
	d.poll()
	return nil
}

func (d *device) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderEncoder {
	var framebuffer uint32
	width, height := d.width, d.height
	if desc.Target != nil {
		rt := desc.Target.(*renderTarget)
		framebuffer = rt.framebuffer
		width, height = rt.width, rt.height
	}
	gl.BindFramebuffer(gl.FRAMEBUFFER, framebuffer)
	gl.Viewport(0, 0, int32(width), int32(height))

	var mask uint32
	if c := desc.ClearColor; c != nil {
		gl.ColorMask(true, true, true, true)
		gl.ClearColor(c.R, c.G, c.B, c.A)
		mask |= gl.COLOR_BUFFER_BIT
	}
	if depth := desc.ClearDepth; depth != nil {
		gl.DepthMask(true)
		gl.ClearDepth(*depth)
		mask |= gl.DEPTH_BUFFER_BIT
	}
	if stencil := desc.ClearStencil; stencil != nil {
		gl.StencilMask(0xFF)
		gl.ClearStencil(int32(*stencil))
		mask |= gl.STENCIL_BUFFER_BIT
	}
	if mask != 0 {
		gl.Disable(gl.SCISSOR_TEST)
		gl.Clear(mask)
	}
	return &renderEncoder{device: d}
}

func (d *device) EndFrame(onComplete func()) {
	sync := gl.FenceSync(gl.SYNC_GPU_COMMANDS_COMPLETE, 0)
	if d.swap != nil {
		d.swap()
	}
	gl.Flush()
	d.pending = append(d.pending, frameFence{sync: sync, onComplete: onComplete})

	d.poll()
	// Keep a free in-flight slot for the next BeginFrame; nothing else completes frames on
	// the render thread.
	for len(d.pending) >= d.inflightFrames {
		d.waitOldest()
	}
}

// poll completes every leading frame whose fence has signaled.
func (d *device) poll() {
	for len(d.pending) > 0 {
		status := gl.ClientWaitSync(d.pending[0].sync, 0, 0)
		if status != gl.ALREADY_SIGNALED && status != gl.CONDITION_SATISFIED {
			return
		}
		d.complete()
	}
}

func (d *device) waitOldest() {
	for {
		status := gl.ClientWaitSync(d.pending[0].sync, gl.SYNC_FLUSH_COMMANDS_BIT, uint64(fenceWait.Nanoseconds()))
		switch status {
		case gl.ALREADY_SIGNALED, gl.CONDITION_SATISFIED:
			d.complete()
			return
		case gl.WAIT_FAILED:
			common.Logger().Error("opengl fence wait failed, treating frame as complete")
			d.complete()
			return
		}
	}
}

func (d *device) complete() {
	f := d.pending[0]
	d.pending = d.pending[1:]
	gl.DeleteSync(f.sync)
	if f.onComplete != nil {
		f.onComplete()
	}
}

func (d *device) Resize(width, height int) {
	d.width, d.height = width, height
}

func (d *device) Release() {
	for len(d.pending) > 0 {
		d.waitOldest()
	}
	if d.emptyVertexArray != 0 {
		gl.DeleteVertexArrays(1, &d.emptyVertexArray)
		d.emptyVertexArray = 0
	}
	common.Logger().Info("opengl device released", "name", d.name)
}
