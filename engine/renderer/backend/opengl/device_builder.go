package opengl

import gst "github.com/richinsley/goshadertranslator"

// DeviceBuilderOption is a functional option applied to the device during construction via NewDevice.
type DeviceBuilderOption func(*device)

// WithSurfaceSize sets the initial size of the default framebuffer.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - DeviceBuilderOption: a function that sets the surface size
func WithSurfaceSize(width, height int) DeviceBuilderOption {
	return func(d *device) {
		d.width, d.height = width, height
	}
}

// WithSwapFunc sets the function that presents the default framebuffer, typically the
// window's SwapBuffers.
//
// Parameters:
//   - swap: the present function
//
// Returns:
//   - DeviceBuilderOption: a function that sets the present function
func WithSwapFunc(swap func()) DeviceBuilderOption {
	return func(d *device) {
		d.swap = swap
	}
}

// WithInflightFrames sets how many submitted frames may be incomplete at once. A Context
// replaces it with its own setting.
func WithInflightFrames(n int) DeviceBuilderOption {
	return func(d *device) {
		d.inflightFrames = n
	}
}

// WithTranslator shares an existing shader translator instead of starting a new one.
func WithTranslator(t *gst.ShaderTranslator) DeviceBuilderOption {
	return func(d *device) {
		d.translator = t
	}
}
