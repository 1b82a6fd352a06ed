package engine

import (
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/camera"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu/gputest"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine() *engine {
	ctrl := camera.NewCameraController(camera.WithPosition(0, 0, 1e7))
	return &engine{
		camera:   camera.NewCamera(camera.WithController(ctrl)),
		heldKeys: make(map[uint32]bool),
		mode:     uniform.SceneMode3D,
		clock:    time.Now,
	}
}

func TestOrbitHeldKeys(t *testing.T) {
	e := newTestEngine()
	ctrl := e.camera.Controller()
	start := ctrl.Cartographic()

	e.heldKeys[common.KeyRight] = true
	e.orbitHeldKeys()
	moved := ctrl.Cartographic()
	assert.NotEqual(t, start.Longitude, moved.Longitude)
	assert.Equal(t, start.Latitude, moved.Latitude)

	delete(e.heldKeys, common.KeyRight)
	e.heldKeys[common.KeyEqual] = true
	e.orbitHeldKeys()
	assert.Less(t, ctrl.Cartographic().Height, moved.Height, "= zooms in")

	e.heldKeys = map[uint32]bool{common.KeyP: true}
	before := ctrl.Cartographic()
	e.orbitHeldKeys()
	assert.Equal(t, before, ctrl.Cartographic(), "unbound keys do nothing")
}

func TestOrbitHeldKeysWithoutController(t *testing.T) {
	e := newTestEngine()
	e.camera = camera.NewCamera()
	e.heldKeys[common.KeyLeft] = true
	assert.NotPanics(t, e.orbitHeldKeys)
}

func TestApplyResize(t *testing.T) {
	device := gputest.NewDevice()
	gfx, err := renderer.NewContext(device, renderer.WithSurfaceSize(640, 480))
	require.NoError(t, err)
	defer gfx.Release()

	e := newTestEngine()
	e.applyResize(gfx)
	assert.Empty(t, device.CallsTo("Resize"), "nothing pending")

	e.resizePending = true
	e.resizeWidth, e.resizeHeight = 1600, 800
	e.applyResize(gfx)
	calls := device.CallsTo("Resize")
	require.Len(t, calls, 1)
	assert.Equal(t, []any{1600, 800}, calls[0].Args)
	assert.InDelta(t, 2.0, e.camera.PerspectiveFrustum().Aspect(), 1e-12)
	assert.False(t, e.resizePending)

	e.resizePending = true
	e.resizeWidth, e.resizeHeight = 0, 800
	e.applyResize(gfx)
	assert.Len(t, device.CallsTo("Resize"), 1, "a minimized window is not resized")
}

func TestFrameStateFeedsUniformState(t *testing.T) {
	e := newTestEngine()
	e.camera.Update()
	now := time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC)
	frame := &frameState{
		mode:        uniform.SceneMode3D,
		projection:  common.NewGeographicProjection(common.WGS84),
		time:        common.JulianDateFromTime(now),
		morphTime:   morphTimeFor(uniform.SceneMode3D),
		frameNumber: 7,
		camera:      e.camera,
	}

	s := uniform.NewState()
	s.Update(frame)
	assert.Equal(t, 7, s.FrameNumber())
	assert.Equal(t, 1.0, s.MorphTime())
	assert.Equal(t, e.camera.PositionWC(), s.CameraPositionWC())
}

func TestMorphTimeFor(t *testing.T) {
	assert.Equal(t, 1.0, morphTimeFor(uniform.SceneMode3D))
	assert.Equal(t, 0.0, morphTimeFor(uniform.SceneMode2D))
	assert.Equal(t, 0.0, morphTimeFor(uniform.SceneModeColumbusView))
}

func TestSetRenderFrameLimit(t *testing.T) {
	e := newTestEngine()
	e.SetRenderFrameLimit(50)
	assert.Equal(t, 20*time.Millisecond, e.renderFrameLimit)
	e.SetRenderFrameLimit(0)
	assert.Zero(t, e.renderFrameLimit)
}
