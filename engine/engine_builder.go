package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/Carmen-Shannon/oxy-globe/engine/profiler"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-globe/engine/request"
	"github.com/Carmen-Shannon/oxy-globe/engine/window"
	"github.com/Carmen-Shannon/oxy-globe/engine/worker"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithConfig sets the renderer and service configuration, usually from renderer.LoadConfig.
//
// Parameters:
//   - cfg: the configuration
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithConfig(cfg renderer.Config) EngineBuilderOption {
	return func(e *engine) {
		e.config = cfg
	}
}

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default profiler, for example to change its interval.
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// The tick callback will be called at this rate for game logic updates.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			fps = 60.0
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow sets a custom configured window for the engine to use rather than allowing the engine
// to create and manage one internally. Its API must match the configured backend.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithCamera replaces the default globe camera.
//
// Parameters:
//   - c: the camera, with a controller attached if it should respond to input
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithTaskProcessor replaces the task processor built from the configuration.
func WithTaskProcessor(p worker.TaskProcessor) EngineBuilderOption {
	return func(e *engine) {
		e.tasks = p
	}
}

// WithRequestScheduler replaces the request scheduler built from the configuration.
func WithRequestScheduler(s request.Scheduler) EngineBuilderOption {
	return func(e *engine) {
		e.requests = s
	}
}

// WithSceneMode sets the scene mode reported to shaders. The default is 3D.
func WithSceneMode(mode uniform.SceneMode) EngineBuilderOption {
	return func(e *engine) {
		e.mode = mode
	}
}

// WithVSync enables or disables waiting for vertical blank when presenting.
func WithVSync(vsync bool) EngineBuilderOption {
	return func(e *engine) {
		e.vsync = vsync
	}
}

// WithRenderFrameLimit sets an optional render frame rate cap in frames per second.
// Pass 0 to uncap the render loop (default).
//
// Parameters:
//   - fps: maximum render frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
