package window

import (
	"fmt"
	"runtime"

	"github.com/cogentcore/webgpu/wgpu"
)

// API selects the client API the window is created for.
type API int

const (
	// APIOpenGL creates an OpenGL 4.1 core context with the window.
	APIOpenGL API = iota

	// APINone creates no context; a WebGPU surface is made from the native handle instead.
	APINone
)

// Window is the native window the globe is presented in. It owns the platform event loop and
// forwards resize, scroll, drag and key events to the registered callbacks on the thread that
// runs ProcessMessages.
//
// An APIOpenGL window hands its GL context to the render goroutine through MakeContextCurrent;
// an APINone window exposes a SurfaceDescriptor for a WebGPU surface instead.
type Window interface {
	// SetResizeCallback sets the function called when the framebuffer is resized.
	//
	// Parameters:
	//   - callback: function receiving the new framebuffer width and height in pixels
	SetResizeCallback(callback func(width, height int))

	// SetScrollCallback sets the callback for mouse wheel events.
	//
	// Parameters:
	//   - callback: function receiving the vertical wheel offset, positive away from the user
	SetScrollCallback(callback func(delta float32))

	// SetKeyDownCallback sets the callback for key press and repeat events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyDownCallback(callback func(keyCode uint32))

	// SetKeyUpCallback sets the callback for key release events.
	//
	// Parameters:
	//   - callback: function receiving the key code, see common.Key*
	SetKeyUpCallback(callback func(keyCode uint32))

	// SetDragCallback sets the callback for mouse movement while the left button is held.
	//
	// Parameters:
	//   - callback: function receiving the cursor movement in pixels since the last event
	SetDragCallback(callback func(dx, dy float64))

	// API returns the client API the window was created for.
	//
	// Returns:
	//   - API: the client API
	API() API

	// MakeContextCurrent makes the window's OpenGL context current on the calling thread and
	// locks the goroutine to it. It does nothing for APINone.
	//
	// Parameters:
	//   - vsync: whether buffer swaps wait for vertical blank
	MakeContextCurrent(vsync bool)

	// SwapBuffers presents the OpenGL back buffer. Call it from the thread the context is
	// current on.
	SwapBuffers()

	// SurfaceDescriptor returns the platform surface descriptor of an APINone window, created
	// by the wgpuglfw bridge.
	//
	// Returns:
	//   - *wgpu.SurfaceDescriptor: the descriptor, or nil if the window is not initialized
	SurfaceDescriptor() *wgpu.SurfaceDescriptor

	// IsRunning reports whether the window is still open.
	//
	// Returns:
	//   - bool: false once the window was closed or Escape was pressed
	IsRunning() bool

	// Close destroys the window and shuts the platform layer down.
	//
	// Returns:
	//   - error: an error if the window was never initialized
	Close() error

	// ProcessMessages polls events until the window closes.
	ProcessMessages()

	// Width returns the framebuffer width in pixels.
	Width() int

	// Height returns the framebuffer height in pixels.
	Height() int
}

// engineWindow is the implementation of the Window interface.
type engineWindow struct {
	api   API
	title string

	// size limits applied to interactive resizing
	minWidth, minHeight int
	maxWidth, maxHeight int

	// framebuffer size, updated by the resize callback
	width, height int

	// internalWindow holds the platform-specific window data (glfwWindow).
	internalWindow any

	onResize  func(width, height int)
	onScroll  func(delta float32)
	onKeyDown func(keyCode uint32)
	onKeyUp   func(keyCode uint32)
	onDrag    func(dx, dy float64)
}

var _ Window = &engineWindow{}

// NewWindow creates and shows a window. It must be called from the main goroutine, which then
// runs ProcessMessages. It panics if the platform window cannot be created.
//
// Parameters:
//   - options: functional options to configure the window
//
// Returns:
//   - Window: the open window
func NewWindow(options ...WindowBuilderOption) Window {
	w := &engineWindow{
		title:     "oxy-globe",
		maxWidth:  3840,
		maxHeight: 2160,
		minWidth:  600,
		minHeight: 200,
		width:     1280,
		height:    720,
	}
	for _, opt := range options {
		opt(w)
	}
	if err := newPlatformWindow(w); err != nil {
		panic(fmt.Sprintf("failed to create platform window: %v", err))
	}
	return w
}

func (w *engineWindow) SetResizeCallback(callback func(width, height int)) {
	w.onResize = callback
}

func (w *engineWindow) SetScrollCallback(callback func(delta float32)) {
	w.onScroll = callback
}

func (w *engineWindow) SetKeyDownCallback(callback func(keyCode uint32)) {
	w.onKeyDown = callback
}

func (w *engineWindow) SetKeyUpCallback(callback func(keyCode uint32)) {
	w.onKeyUp = callback
}

func (w *engineWindow) SetDragCallback(callback func(dx, dy float64)) {
	w.onDrag = callback
}

func (w *engineWindow) API() API {
	return w.api
}

func (w *engineWindow) MakeContextCurrent(vsync bool) {
	if w.api == APIOpenGL {
		platformMakeContextCurrent(w, vsync)
	}
}

func (w *engineWindow) SwapBuffers() {
	if w.api == APIOpenGL {
		platformSwapBuffers(w)
	}
}

func (w *engineWindow) SurfaceDescriptor() *wgpu.SurfaceDescriptor {
	return platformGetSurfaceDescriptor(w)
}

func (w *engineWindow) IsRunning() bool {
	return platformIsRunningCheck(w)
}

func (w *engineWindow) Close() error {
	return platformCloseWindow(w)
}

func (w *engineWindow) ProcessMessages() {
	for w.IsRunning() {
		if !platformProcessMessages(w) {
			break
		}
		runtime.Gosched()
	}
}

func (w *engineWindow) Width() int {
	return w.width
}

func (w *engineWindow) Height() int {
	return w.height
}
