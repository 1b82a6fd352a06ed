package renderer

// ContextBuilderOption is a functional option applied to a Context during construction via NewContext.
type ContextBuilderOption func(*graphicsContext)

// WithConfig replaces the whole configuration. Options applied after it override single fields.
//
// Parameters:
//   - cfg: the configuration, typically from LoadConfig
//
// Returns:
//   - ContextBuilderOption: a function that applies the configuration to a Context
func WithConfig(cfg Config) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config = cfg
	}
}

// WithSurfaceSize sets the initial size of the window surface.
//
// Parameters:
//   - width: the width in pixels
//   - height: the height in pixels
//
// Returns:
//   - ContextBuilderOption: a function that sets the surface size
func WithSurfaceSize(width, height int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.Width = width
		c.config.Height = height
	}
}

// WithInflightFrames sets how many frames the CPU may run ahead of the GPU.
//
// Parameters:
//   - n: the frame count, between 1 and buffer.BufferSyncStateCount
//
// Returns:
//   - ContextBuilderOption: a function that sets the in-flight frame count
func WithInflightFrames(n int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.InflightFrames = n
	}
}

// WithMaxFrustums sets the number of frustum slots per frame.
//
// Parameters:
//   - n: the frustum count
//
// Returns:
//   - ContextBuilderOption: a function that sets the frustum slot count
func WithMaxFrustums(n int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.MaxFrustums = n
	}
}

// WithMaxPrograms caps the shader cache.
func WithMaxPrograms(n int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.MaxPrograms = n
	}
}

// WithMaxPipelines caps the pipeline cache.
func WithMaxPipelines(n int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.MaxPipelines = n
	}
}

// WithUniformOffsetAlignment sets the backend's minimum uniform buffer offset alignment.
func WithUniformOffsetAlignment(alignment int) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.UniformOffsetAlignment = alignment
	}
}

// WithGlobalDefines adds preprocessor defines to every program the Context compiles.
func WithGlobalDefines(defines ...string) ContextBuilderOption {
	return func(c *graphicsContext) {
		c.config.GlobalDefines = append(c.config.GlobalDefines, defines...)
	}
}
