package webgpu

import "github.com/cogentcore/webgpu/wgpu"

// DeviceBuilderOption is a functional option applied to the device during construction via NewDevice.
type DeviceBuilderOption func(*device)

// WithSurfaceSize configures the surface at creation.
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

// WithVSync selects FIFO presentation when true and immediate presentation otherwise.
//
// Parameters:
//   - vsync: whether to wait for vertical blank
//
// Returns:
//   - DeviceBuilderOption: a function that sets the present mode
func WithVSync(vsync bool) DeviceBuilderOption {
	return func(d *device) {
		if vsync {
			d.presentMode = wgpu.PresentModeFifo
		} else {
			d.presentMode = wgpu.PresentModeImmediate
		}
	}
}

// WithForceFallbackAdapter requests the software adapter.
func WithForceFallbackAdapter(force bool) DeviceBuilderOption {
	return func(d *device) {
		d.forceFallbackAdapter = force
	}
}
