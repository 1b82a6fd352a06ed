package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/Carmen-Shannon/oxy-globe/engine/profiler"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/backend/opengl"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/backend/webgpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/Carmen-Shannon/oxy-globe/engine/request"
	"github.com/Carmen-Shannon/oxy-globe/engine/window"
	"github.com/Carmen-Shannon/oxy-globe/engine/worker"
)

// engine implements the Engine interface.
// Coordinates the tick, render and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	config renderer.Config
	vsync  bool

	window   window.Window
	camera   camera.Camera
	tasks    worker.TaskProcessor
	requests request.Scheduler

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate  time.Duration
	tickCallback    func(deltaTime float32)
	setupCallback   func(gfx renderer.Context) error
	renderCallback  func(gfx renderer.Context, deltaTime float32)
	releaseCallback func(gfx renderer.Context)

	// keys held down, read by the tick loop to orbit the camera.
	keysMu   sync.Mutex
	heldKeys map[uint32]bool

	// resize is the latest framebuffer size, applied by the render loop.
	resizeMu      sync.Mutex
	resizePending bool
	resizeWidth   int
	resizeHeight  int

	renderErr error
	mode      uniform.SceneMode
	clock     func() time.Time

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the globe viewer.
// It orchestrates the tick loop, the render loop and window management, and owns the services
// shared by both: the camera, the background task processor and the request scheduler.
//
// The render Context is created on the render goroutine, which keeps it for its lifetime; it is
// only handed out through the setup, render and release callbacks.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Config returns the configuration the engine was built with.
	//
	// Returns:
	//   - renderer.Config: the configuration
	Config() renderer.Config

	// Camera returns the globe camera driven by window input.
	//
	// Returns:
	//   - camera.Camera: the camera
	Camera() camera.Camera

	// TaskProcessor returns the background task processor. Completed tasks are handed back on
	// the render goroutine before the render callback runs.
	//
	// Returns:
	//   - worker.TaskProcessor: the task processor
	TaskProcessor() worker.TaskProcessor

	// RequestScheduler returns the network request scheduler.
	//
	// Returns:
	//   - request.Scheduler: the scheduler
	RequestScheduler() request.Scheduler

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetSetupCallback registers the function called once on the render goroutine after the
	// Context is created. Returning an error stops the engine.
	//
	// Parameters:
	//   - callback: function receiving the new Context
	SetSetupCallback(callback func(gfx renderer.Context) error)

	// SetRenderCallback registers the function called between BeginFrame and EndFrame of every
	// frame. It issues the frame's commands.
	//
	// Parameters:
	//   - callback: function receiving the Context and the delta time in seconds
	SetRenderCallback(callback func(gfx renderer.Context, deltaTime float32))

	// SetReleaseCallback registers the function called on the render goroutine before the
	// Context is released. Commands and buffers created in setup are released here.
	//
	// Parameters:
	//   - callback: function receiving the Context
	SetReleaseCallback(callback func(gfx renderer.Context))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine and blocks until the window closes or Quit is called.
	//
	// Returns:
	//   - error: the error that stopped the render goroutine, nil on a normal shutdown
	Run() error

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// A window is created for the configured backend unless WithWindow supplies one; the worker and
// the request scheduler are sized from the configuration.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		config:          renderer.DefaultConfig(),
		vsync:           true,
		heldKeys:        make(map[uint32]bool),
		engineTickRate:  time.Second / 60,
		mode:            uniform.SceneMode3D,
		clock:           time.Now,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window == nil {
		api := window.APIOpenGL
		if e.config.Backend == renderer.BackendTypeWebGPU {
			api = window.APINone
		}
		e.window = window.NewWindow(
			window.WithAPI(api),
			window.WithWidth(e.config.Width),
			window.WithHeight(e.config.Height),
		)
	}
	if e.camera == nil {
		e.camera = camera.NewCamera(camera.WithController(camera.NewCameraController()))
	}
	if e.tasks == nil {
		e.tasks = worker.NewTaskProcessor(
			worker.WithMaxActiveTasks(e.config.Worker.MaxActiveTasks),
			worker.WithLabel("engine"),
		)
	}
	if e.requests == nil {
		e.requests = request.NewScheduler(
			request.WithMaxConcurrentRequests(e.config.Network.MaxConcurrentRequests),
			request.WithTimeout(time.Duration(e.config.Network.TimeoutSeconds*float64(time.Second))),
			request.WithUserAgent(e.config.Network.UserAgent),
		)
	}
	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	e.profiler.AddCounter("activeTasks", e.tasks.ActiveTasks)
	e.profiler.AddCounter("activeRequests", e.requests.ActiveRequests)
	e.profiler.AddCounter("pendingRequests", e.requests.PendingRequests)

	e.camera.SetAspect(float64(e.window.Width()) / float64(max(e.window.Height(), 1)))
	e.bindInput()

	return e
}

// bindInput routes window events to the camera controller and the render loop.
func (e *engine) bindInput() {
	e.window.SetResizeCallback(func(width, height int) {
		e.resizeMu.Lock()
		defer e.resizeMu.Unlock()
		e.resizePending = true
		e.resizeWidth, e.resizeHeight = width, height
	})
	e.window.SetScrollCallback(func(delta float32) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Zoom(float64(delta))
		}
	})
	e.window.SetDragCallback(func(dx, dy float64) {
		if ctrl := e.camera.Controller(); ctrl != nil {
			ctrl.Rotate(dx, dy)
		}
	})
	e.window.SetKeyDownCallback(func(keyCode uint32) {
		e.keysMu.Lock()
		defer e.keysMu.Unlock()
		e.heldKeys[keyCode] = true
	})
	e.window.SetKeyUpCallback(func(keyCode uint32) {
		e.keysMu.Lock()
		defer e.keysMu.Unlock()
		delete(e.heldKeys, keyCode)
	})
}

func (e *engine) Window() window.Window               { return e.window }
func (e *engine) Config() renderer.Config             { return e.config }
func (e *engine) Camera() camera.Camera               { return e.camera }
func (e *engine) TaskProcessor() worker.TaskProcessor { return e.tasks }
func (e *engine) RequestScheduler() request.Scheduler { return e.requests }

func (e *engine) Run() error {
	e.running = true
	e.handle()
	e.window.ProcessMessages()

	e.signalQuit()
	e.wg.Wait()

	e.requests.Close()
	e.tasks.Close()
	if err := e.window.Close(); err != nil {
		common.Logger().Warn("closing window", "err", err)
	}
	return e.renderErr
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running = false
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Orbits the camera for held arrow keys, fires the tick callback at the configured tick rate and
// listens for dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.orbitHeldKeys()
			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// orbitHeldKeys applies one orbit step per held navigation key.
func (e *engine) orbitHeldKeys() {
	ctrl := e.camera.Controller()
	if ctrl == nil {
		return
	}
	e.keysMu.Lock()
	held := make([]uint32, 0, len(e.heldKeys))
	for k := range e.heldKeys {
		held = append(held, k)
	}
	e.keysMu.Unlock()

	for _, k := range held {
		switch k {
		case common.KeyLeft, common.KeyA:
			ctrl.OrbitLeft()
		case common.KeyRight, common.KeyD:
			ctrl.OrbitRight()
		case common.KeyUp, common.KeyW:
			ctrl.OrbitUp()
		case common.KeyDown, common.KeyS:
			ctrl.OrbitDown()
		case common.KeyEqual, common.KeyPageUp:
			ctrl.Zoom(0.1)
		case common.KeyMinus, common.KeyPageDown:
			ctrl.Zoom(-0.1)
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// The goroutine creates the device and the Context, so an OpenGL context stays on one OS thread.
// Each frame hands back completed tasks, applies a pending resize, updates the camera and runs the
// render callback between BeginFrame and EndFrame.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer e.signalQuit()

	gfx, err := e.createContext()
	if err != nil {
		e.renderErr = err
		common.Logger().Error("render context creation failed", "err", err)
		return
	}
	defer gfx.Release()

	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			e.renderErr = fmt.Errorf("engine: render goroutine panicked: %v", r)
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
		}
	}()

	if e.setupCallback != nil {
		if err := e.setupCallback(gfx); err != nil {
			e.renderErr = fmt.Errorf("engine: setup: %w", err)
			return
		}
	}
	if e.releaseCallback != nil {
		defer e.releaseCallback(gfx)
	}
	e.profiler.AddCounter("shaders", gfx.ShaderCache().NumberOfShaders)
	e.profiler.AddCounter("pipelines", gfx.PipelineCache().NumberOfPipelines)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		<-e.quitChannel
		cancel()
	}()

	frame := &frameState{
		mode:       e.mode,
		projection: common.NewGeographicProjection(common.WGS84),
		camera:     e.camera,
		fogDensity: 2.0e-4,
	}
	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			e.tasks.ProcessCompleted()
			e.applyResize(gfx)
			e.camera.Update()

			frame.frameNumber++
			frame.time = common.JulianDateFromTime(e.clock())
			frame.morphTime = morphTimeFor(e.mode)

			if err := gfx.BeginFrame(ctx, frame); err != nil {
				if errors.Is(err, context.Canceled) {
					return
				}
				common.Logger().Warn("frame skipped", "frame", frame.frameNumber, "err", err)
				continue
			}
			if e.renderCallback != nil {
				e.renderCallback(gfx, dt)
			}
			gfx.EndFrame()

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// createContext creates the device for the configured backend and wraps it in a Context.
func (e *engine) createContext() (renderer.Context, error) {
	width, height := e.window.Width(), e.window.Height()

	var (
		device gpu.Device
		err    error
	)
	switch e.config.Backend {
	case renderer.BackendTypeWebGPU:
		device, err = webgpu.NewDevice(e.window.SurfaceDescriptor(),
			webgpu.WithSurfaceSize(width, height),
			webgpu.WithVSync(e.vsync),
		)
	default:
		e.window.MakeContextCurrent(e.vsync)
		device, err = opengl.NewDevice(
			opengl.WithSurfaceSize(width, height),
			opengl.WithSwapFunc(e.window.SwapBuffers),
			opengl.WithInflightFrames(e.config.InflightFrames),
		)
	}
	if err != nil {
		return nil, fmt.Errorf("engine: creating %s device: %w", e.config.Backend, err)
	}

	gfx, err := renderer.NewContext(device,
		renderer.WithConfig(e.config),
		renderer.WithSurfaceSize(width, height),
	)
	if err != nil {
		device.Release()
		return nil, err
	}
	return gfx, nil
}

// applyResize forwards the latest framebuffer size to the Context and the camera.
func (e *engine) applyResize(gfx renderer.Context) {
	e.resizeMu.Lock()
	pending := e.resizePending
	width, height := e.resizeWidth, e.resizeHeight
	e.resizePending = false
	e.resizeMu.Unlock()

	if !pending || width <= 0 || height <= 0 {
		return
	}
	gfx.Resize(width, height)
	e.camera.SetAspect(float64(width) / float64(height))
}

// morphTimeFor returns the morph time of a settled scene mode: 1 in 3D, 0 in the flat modes.
func morphTimeFor(mode uniform.SceneMode) float64 {
	if mode == uniform.SceneMode3D {
		return 1
	}
	return 0
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) SetSetupCallback(callback func(gfx renderer.Context) error) {
	e.setupCallback = callback
}

func (e *engine) SetRenderCallback(callback func(gfx renderer.Context, deltaTime float32)) {
	e.renderCallback = callback
}

func (e *engine) SetReleaseCallback(callback func(gfx renderer.Context)) {
	e.releaseCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
