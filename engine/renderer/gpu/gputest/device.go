// Package gputest provides a recording gpu.Device for tests that run without a GPU.
package gputest

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// Call is one recorded device or encoder call.
type Call struct {
	Method string
	Args   []any
}

// Device records every call made through it. Frame completion callbacks are held until
// CompleteFrames is called unless AutoComplete or WaitOnEndFrame is set.
type Device struct {
	mu      sync.Mutex
	calls   []Call
	pending []func()

	// CompileFunc, when set, is consulted by CreateProgram; a non-nil error fails creation.
	CompileFunc func(desc gpu.ProgramDescriptor) error
	// AutoComplete runs EndFrame callbacks immediately.
	AutoComplete bool
	// WaitOnEndFrame makes EndFrame complete the oldest frames until fewer than the in-flight
	// count set by SetInflightFrames remain, the way a fence-polling backend does.
	WaitOnEndFrame bool

	inflightFrames int

	Programs           []*Program
	Buffers            []*Buffer
	DepthStencilStates []*DepthStencilState
	VertexArrays       []*VertexArray
	RenderTargets      []*RenderTarget
	Released           bool
}

var _ gpu.Device = &Device{}

// NewDevice creates an empty recording device.
func NewDevice() *Device {
	return &Device{}
}

func (d *Device) record(method string, args ...any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, Call{Method: method, Args: args})
}

// Calls returns a copy of the recorded calls.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]Call, len(d.calls))
	copy(out, d.calls)
	return out
}

// Methods returns the recorded method names in order.
func (d *Device) Methods() []string {
	calls := d.Calls()
	out := make([]string, len(calls))
	for i, c := range calls {
		out[i] = c.Method
	}
	return out
}

// CallsTo returns the recorded calls to a single method.
func (d *Device) CallsTo(method string) []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// Reset clears the call log.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// PendingFrames returns the number of frames whose completion has not been signalled.
func (d *Device) PendingFrames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.pending)
}

// CompleteFrames runs every pending frame completion callback in submission order.
func (d *Device) CompleteFrames() {
	d.mu.Lock()
	pending := d.pending
	d.pending = nil
	d.mu.Unlock()
	for _, fn := range pending {
		fn()
	}
}

// LivePrograms counts programs that have not been released.
func (d *Device) LivePrograms() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	n := 0
	for _, p := range d.Programs {
		if !p.Released {
			n++
		}
	}
	return n
}

func (d *Device) Name() string {
	return "gputest"
}

func (d *Device) CreateBuffer(usage gpu.BufferUsage, size int, label string) (gpu.Buffer, error) {
	if size <= 0 {
		return nil, fmt.Errorf("gputest: invalid buffer size %d", size)
	}
	b := &Buffer{Label: label, Data: make([]byte, size), usage: usage}
	d.mu.Lock()
	d.Buffers = append(d.Buffers, b)
	d.mu.Unlock()
	d.record("CreateBuffer", usage, size, label)
	return b, nil
}

func (d *Device) CreateDepthStencilState(desc gpu.DepthStencilDescriptor) gpu.DepthStencilState {
	s := &DepthStencilState{desc: desc}
	d.mu.Lock()
	d.DepthStencilStates = append(d.DepthStencilStates, s)
	d.mu.Unlock()
	d.record("CreateDepthStencilState", desc)
	return s
}

func (d *Device) CreateProgram(desc gpu.ProgramDescriptor) (gpu.Program, error) {
	d.record("CreateProgram", desc.Label)
	if d.CompileFunc != nil {
		if err := d.CompileFunc(desc); err != nil {
			return nil, err
		}
	}
	p := &Program{Desc: desc}
	d.mu.Lock()
	d.Programs = append(d.Programs, p)
	d.mu.Unlock()
	return p, nil
}

func (d *Device) CreateVertexArray(desc gpu.VertexArrayDescriptor) (gpu.VertexArray, error) {
	v := &VertexArray{desc: desc}
	d.mu.Lock()
	d.VertexArrays = append(d.VertexArrays, v)
	d.mu.Unlock()
	d.record("CreateVertexArray", desc.Label)
	return v, nil
}

func (d *Device) CreateRenderTarget(width, height int) (gpu.RenderTarget, error) {
	t := &RenderTarget{width: width, height: height}
	d.mu.Lock()
	d.RenderTargets = append(d.RenderTargets, t)
	d.mu.Unlock()
	d.record("CreateRenderTarget", width, height)
	return t, nil
}

func (d *Device) SetInflightFrames(n int) {
	d.record("SetInflightFrames", n)
	d.mu.Lock()
	d.inflightFrames = n
	d.mu.Unlock()
}

// InflightFrames returns the count last passed to SetInflightFrames.
func (d *Device) InflightFrames() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.inflightFrames
}

func (d *Device) BeginFrame() error {
	d.record("BeginFrame")
	return nil
}

func (d *Device) BeginRenderPass(desc gpu.RenderPassDescriptor) gpu.RenderEncoder {
	d.record("BeginRenderPass", desc)
	return &Encoder{device: d}
}

func (d *Device) EndFrame(onComplete func()) {
	d.record("EndFrame")
	if onComplete == nil {
		return
	}
	if d.AutoComplete {
		onComplete()
		return
	}
	d.mu.Lock()
	d.pending = append(d.pending, onComplete)
	var done []func()
	if d.WaitOnEndFrame && d.inflightFrames > 0 {
		for len(d.pending) >= d.inflightFrames {
			done = append(done, d.pending[0])
			d.pending = d.pending[1:]
		}
	}
	d.mu.Unlock()
	for _, fn := range done {
		fn()
	}
}

func (d *Device) Resize(width, height int) {
	d.record("Resize", width, height)
}

func (d *Device) Release() {
	d.record("Release")
	d.Released = true
}

// Buffer is a host-memory gpu.Buffer.
type Buffer struct {
	Label    string
	Data     []byte
	Writes   int
	Released bool
	usage    gpu.BufferUsage
}

func (b *Buffer) Size() int              { return len(b.Data) }
func (b *Buffer) Usage() gpu.BufferUsage { return b.usage }

func (b *Buffer) Write(offset int, data []byte) {
	if offset < 0 || offset+len(data) > len(b.Data) {
		panic(fmt.Sprintf("gputest: write [%d, %d) outside buffer %q of size %d", offset, offset+len(data), b.Label, len(b.Data)))
	}
	copy(b.Data[offset:], data)
	b.Writes++
}

func (b *Buffer) Release() { b.Released = true }

// DepthStencilState records its descriptor.
type DepthStencilState struct {
	desc     gpu.DepthStencilDescriptor
	Released bool
}

func (s *DepthStencilState) Descriptor() gpu.DepthStencilDescriptor { return s.desc }
func (s *DepthStencilState) Release()                               { s.Released = true }

// Program records its descriptor.
type Program struct {
	Desc     gpu.ProgramDescriptor
	Released bool
}

func (p *Program) Label() string { return p.Desc.Label }
func (p *Program) Release()      { p.Released = true }

// VertexArray records its descriptor.
type VertexArray struct {
	desc     gpu.VertexArrayDescriptor
	Released bool
}

func (v *VertexArray) Descriptor() gpu.VertexArrayDescriptor { return v.desc }
func (v *VertexArray) Release()                              { v.Released = true }

// RenderTarget is a sized placeholder.
type RenderTarget struct {
	width, height int
	Released      bool
}

func (t *RenderTarget) Width() int  { return t.width }
func (t *RenderTarget) Height() int { return t.height }
func (t *RenderTarget) Release()    { t.Released = true }

// Encoder records into its device's call log.
type Encoder struct {
	device *Device
}

func (e *Encoder) SetFrontFacing(order gpu.WindingOrder) {
	e.device.record("SetFrontFacing", order)
}

func (e *Encoder) SetCullMode(mode gpu.CullMode) {
	e.device.record("SetCullMode", mode)
}

func (e *Encoder) SetDepthStencilState(state gpu.DepthStencilState, stencilReference uint32) {
	e.device.record("SetDepthStencilState", state, stencilReference)
}

func (e *Encoder) SetViewport(viewport gpu.Viewport, depthRange gpu.DepthRange) {
	e.device.record("SetViewport", viewport, depthRange)
}

func (e *Encoder) SetTriangleFillMode(mode gpu.FillMode) {
	e.device.record("SetTriangleFillMode", mode)
}

func (e *Encoder) SetDepthBias(units, factor float32) {
	e.device.record("SetDepthBias", units, factor)
}

func (e *Encoder) SetPipeline(program gpu.Program, blend gpu.BlendDescriptor) {
	e.device.record("SetPipeline", program, blend)
}

func (e *Encoder) SetUniformBuffer(binding int, buffer gpu.Buffer, offset, size int) {
	e.device.record("SetUniformBuffer", binding, buffer, offset, size)
}

func (e *Encoder) SetVertexArray(vertexArray gpu.VertexArray) {
	e.device.record("SetVertexArray", vertexArray)
}

func (e *Encoder) Draw(primitive gpu.PrimitiveType, first, count, instances int) {
	e.device.record("Draw", primitive, first, count, instances)
}

func (e *Encoder) DrawIndexed(primitive gpu.PrimitiveType, first, count, instances int) {
	e.device.record("DrawIndexed", primitive, first, count, instances)
}

func (e *Encoder) End() {
	e.device.record("End")
}
