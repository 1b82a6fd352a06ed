package gpu

// Buffer is a GPU-resident byte buffer.
type Buffer interface {
	// Size returns the buffer length in bytes.
	//
	// Returns:
	//   - int: the size in bytes
	Size() int

	// Usage returns the binding usage the buffer was created with.
	//
	// Returns:
	//   - BufferUsage: the usage bit set
	Usage() BufferUsage

	// Write copies data into the buffer at the given byte offset. Writes become visible to
	// commands encoded after the call.
	//
	// Parameters:
	//   - offset: the destination byte offset
	//   - data: the bytes to copy
	Write(offset int, data []byte)

	// Release frees the GPU memory. The buffer must not be used afterwards.
	Release()
}

// DepthStencilState is an immutable backend depth-stencil object.
type DepthStencilState interface {
	// Descriptor returns the description the state was created from.
	//
	// Returns:
	//   - DepthStencilDescriptor: the creation descriptor
	Descriptor() DepthStencilDescriptor

	Release()
}

// Program is a linked vertex and fragment program.
type Program interface {
	// Label returns the debug label given at creation.
	//
	// Returns:
	//   - string: the label
	Label() string

	Release()
}

// VertexArray is a bound set of vertex attributes and an optional index buffer.
type VertexArray interface {
	// Descriptor returns the description the vertex array was created from.
	//
	// Returns:
	//   - VertexArrayDescriptor: the creation descriptor
	Descriptor() VertexArrayDescriptor

	Release()
}

// RenderTarget is an offscreen color and depth-stencil attachment pair.
type RenderTarget interface {
	Width() int
	Height() int
	Release()
}

// RenderEncoder records commands for a single render pass. State set on an encoder persists
// until it is set again or the pass ends.
type RenderEncoder interface {
	// SetFrontFacing sets the winding order of front-facing triangles.
	//
	// Parameters:
	//   - order: the front face winding
	SetFrontFacing(order WindingOrder)

	// SetCullMode sets which faces are culled.
	//
	// Parameters:
	//   - mode: the cull mode
	SetCullMode(mode CullMode)

	// SetDepthStencilState binds a depth-stencil state object and the stencil reference value.
	//
	// Parameters:
	//   - state: the depth-stencil state created by the same device
	//   - stencilReference: the reference value for the stencil test
	SetDepthStencilState(state DepthStencilState, stencilReference uint32)

	// SetViewport sets the viewport rectangle and depth range.
	//
	// Parameters:
	//   - viewport: the window-space rectangle in pixels
	//   - depthRange: the window depth range
	SetViewport(viewport Viewport, depthRange DepthRange)

	// SetTriangleFillMode selects filled or wireframe rasterization.
	//
	// Parameters:
	//   - mode: the fill mode
	SetTriangleFillMode(mode FillMode)

	// SetDepthBias sets the polygon offset. Zero values disable it.
	//
	// Parameters:
	//   - units: the constant depth bias
	//   - factor: the slope-scaled depth bias
	SetDepthBias(units, factor float32)

	// SetPipeline binds a program with the blend and color-mask configuration to use with it.
	//
	// Parameters:
	//   - program: the linked program
	//   - blend: the blend configuration
	SetPipeline(program Program, blend BlendDescriptor)

	// SetUniformBuffer binds a range of a uniform buffer to a uniform block binding index.
	//
	// Parameters:
	//   - binding: the uniform block binding index
	//   - buffer: the uniform buffer
	//   - offset: the byte offset of the bound range
	//   - size: the byte size of the bound range
	SetUniformBuffer(binding int, buffer Buffer, offset, size int)

	// SetVertexArray binds the vertex inputs for subsequent draws.
	//
	// Parameters:
	//   - vertexArray: the vertex array, or nil for attribute-less draws
	SetVertexArray(vertexArray VertexArray)

	// Draw issues a non-indexed draw.
	//
	// Parameters:
	//   - primitive: the primitive topology
	//   - first: the first vertex
	//   - count: the number of vertices
	//   - instances: the number of instances, at least 1
	Draw(primitive PrimitiveType, first, count, instances int)

	// DrawIndexed issues an indexed draw using the bound vertex array's index buffer.
	//
	// Parameters:
	//   - primitive: the primitive topology
	//   - first: the first index
	//   - count: the number of indices
	//   - instances: the number of instances, at least 1
	DrawIndexed(primitive PrimitiveType, first, count, instances int)

	// End finishes the pass. The encoder must not be used afterwards.
	End()
}

// Device is a GPU backend. All methods must be called from the goroutine that owns the
// device (the render goroutine) except where noted.
type Device interface {
	// Name returns a human readable backend and adapter description.
	//
	// Returns:
	//   - string: the device name
	Name() string

	// CreateBuffer allocates a buffer.
	//
	// Parameters:
	//   - usage: how the buffer will be bound
	//   - size: the size in bytes
	//   - label: a debug label
	//
	// Returns:
	//   - Buffer: the new buffer
	//   - error: an error if allocation fails
	CreateBuffer(usage BufferUsage, size int, label string) (Buffer, error)

	// CreateDepthStencilState builds an immutable depth-stencil state object.
	//
	// Parameters:
	//   - desc: the depth-stencil description
	//
	// Returns:
	//   - DepthStencilState: the state object
	CreateDepthStencilState(desc DepthStencilDescriptor) DepthStencilState

	// CreateProgram compiles and links a program. Compile and link failures are returned as
	// *CompileError.
	//
	// Parameters:
	//   - desc: the program description
	//
	// Returns:
	//   - Program: the linked program
	//   - error: an error if compilation or linking fails
	CreateProgram(desc ProgramDescriptor) (Program, error)

	// CreateVertexArray builds a vertex array object.
	//
	// Parameters:
	//   - desc: the vertex array description
	//
	// Returns:
	//   - VertexArray: the vertex array
	//   - error: an error if creation fails
	CreateVertexArray(desc VertexArrayDescriptor) (VertexArray, error)

	// CreateRenderTarget allocates an offscreen color and depth-stencil target.
	//
	// Parameters:
	//   - width: the width in pixels
	//   - height: the height in pixels
	//
	// Returns:
	//   - RenderTarget: the render target
	//   - error: an error if allocation fails
	CreateRenderTarget(width, height int) (RenderTarget, error)

	// SetInflightFrames tells the device how many submitted frames its caller lets be incomplete
	// at once. A device that only learns of completion on the calling goroutine must complete
	// frames before EndFrame returns until fewer than n remain pending.
	//
	// Parameters:
	//   - n: the in-flight frame count, greater than zero
	SetInflightFrames(n int)

	// BeginFrame prepares the surface for a new frame.
	//
	// Returns:
	//   - error: an error if the surface could not be acquired
	BeginFrame() error

	// BeginRenderPass starts a render pass within the current frame.
	//
	// Parameters:
	//   - desc: the pass description
	//
	// Returns:
	//   - RenderEncoder: the encoder for the pass
	BeginRenderPass(desc RenderPassDescriptor) RenderEncoder

	// EndFrame submits the frame and presents the surface. onComplete is invoked once the GPU
	// has finished executing the frame; it may be called from any goroutine.
	//
	// Parameters:
	//   - onComplete: the completion callback, may be nil
	EndFrame(onComplete func())

	// Resize reconfigures the surface.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	Resize(width, height int)

	// Release destroys the device and everything it still owns.
	Release()
}
