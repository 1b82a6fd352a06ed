package uniform

import (
	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// quantity names one cell of the dependency table. Inputs are assigned by setters; derived
// quantities are recomputed lazily on read.
type quantity int

const (
	// inputs
	qModel quantity = iota
	qView
	qProjection
	qInfiniteProjection
	qViewport
	qCamera
	qMode
	qTime

	// derived
	qInverseModel
	qInverseView
	qViewRotation
	qInverseViewRotation
	qView3D
	qInverseView3D
	qViewRotation3D
	qInverseViewRotation3D
	qInverseProjection
	qViewProjection
	qInverseViewProjection
	qModelView
	qModelView3D
	qModelViewRelativeToEye
	qInverseModelView
	qInverseModelView3D
	qModelViewProjection
	qInverseModelViewProjection
	qModelViewProjectionRelativeToEye
	qModelViewInfiniteProjection
	qNormal
	qNormal3D
	qInverseNormal
	qInverseNormal3D
	qEncodedCameraPositionMC
	qViewportOrthographic
	qViewportTransformation
	qViewerPositionWC
	qTemeToPseudoFixed
	qSunPositionWC
	qMoonPositionWC
	qSunDirectionWC
	qSunDirectionEC
	qMoonDirectionEC
	qSunPositionColumbusView

	quantityCount
)

// derivation is one row of the dependency table.
type derivation struct {
	deps      []quantity
	recompute func(s *State)
}

var (
	derivations [quantityCount]derivation
	// dependents[q] is the transitive closure of quantities that must be invalidated when q changes.
	dependents [quantityCount][]quantity
)

// inverse returns the inverse of m. A singular m, such as a model matrix with a zero scale,
// yields the zero matrix so every quantity derived from it is zero; the uniform name is logged.
func inverse(name string, m common.Matrix4) common.Matrix4 {
	inv, ok := m.Inverse()
	if !ok {
		common.Logger().Warn("singular matrix, uniform set to zero", "uniform", name)
	}
	return inv
}

func inverseTranspose(name string, m common.Matrix3) common.Matrix3 {
	inv, ok := m.Inverse()
	if !ok {
		common.Logger().Warn("singular matrix, uniform set to zero", "uniform", name)
	}
	return inv.Transpose()
}

func init() {
	derivations = [quantityCount]derivation{
		qInverseModel: {deps: []quantity{qModel}, recompute: func(s *State) {
			s.inverseModel = inverse("czm_inverseModel", s.Model())
		}},
		qInverseView: {deps: []quantity{qView}, recompute: func(s *State) {
			s.inverseView = s.View().InverseTransformation()
		}},
		qViewRotation: {deps: []quantity{qView}, recompute: func(s *State) {
			s.viewRotation = s.View().Rotation()
		}},
		qInverseViewRotation: {deps: []quantity{qInverseView}, recompute: func(s *State) {
			s.inverseViewRotation = s.InverseView().Rotation()
		}},
		qView3D: {deps: []quantity{qView, qCamera, qMode}, recompute: func(s *State) {
			if s.mode == SceneMode3D {
				s.view3D = s.View()
				return
			}
			s.view3D = view2Dto3D(s.cameraPosition, s.cameraDirection, s.cameraRight, s.cameraUp, s.frustum2DWidth, s.mode, s.mapProjection)
		}},
		qInverseView3D: {deps: []quantity{qView3D}, recompute: func(s *State) {
			s.inverseView3D = s.View3D().InverseTransformation()
		}},
		qViewRotation3D: {deps: []quantity{qView3D}, recompute: func(s *State) {
			s.viewRotation3D = s.View3D().Rotation()
		}},
		qInverseViewRotation3D: {deps: []quantity{qInverseView3D}, recompute: func(s *State) {
			s.inverseViewRotation3D = s.InverseView3D().Rotation()
		}},
		qInverseProjection: {deps: []quantity{qProjection}, recompute: func(s *State) {
			s.inverseProjection = inverse("czm_inverseProjection", s.Projection())
		}},
		qViewProjection: {deps: []quantity{qView, qProjection}, recompute: func(s *State) {
			s.viewProjection = s.Projection().Multiply(s.View())
		}},
		qInverseViewProjection: {deps: []quantity{qViewProjection}, recompute: func(s *State) {
			s.inverseViewProjection = inverse("czm_inverseViewProjection", s.ViewProjection())
		}},
		qModelView: {deps: []quantity{qModel, qView}, recompute: func(s *State) {
			s.modelView = s.View().Multiply(s.Model())
		}},
		qModelView3D: {deps: []quantity{qModel, qView3D}, recompute: func(s *State) {
			s.modelView3D = s.View3D().Multiply(s.Model())
		}},
		qModelViewRelativeToEye: {deps: []quantity{qModelView}, recompute: func(s *State) {
			s.modelViewRelativeToEye = s.ModelView().SetTranslation(common.Cartesian3{})
		}},
		qInverseModelView: {deps: []quantity{qModelView}, recompute: func(s *State) {
			s.inverseModelView = inverse("czm_inverseModelView", s.ModelView())
		}},
		qInverseModelView3D: {deps: []quantity{qModelView3D}, recompute: func(s *State) {
			s.inverseModelView3D = inverse("czm_inverseModelView3D", s.ModelView3D())
		}},
		qModelViewProjection: {deps: []quantity{qModelView, qProjection}, recompute: func(s *State) {
			s.modelViewProjection = s.Projection().Multiply(s.ModelView())
		}},
		qInverseModelViewProjection: {deps: []quantity{qModelViewProjection}, recompute: func(s *State) {
			s.inverseModelViewProjection = inverse("czm_inverseModelViewProjection", s.ModelViewProjection())
		}},
		qModelViewProjectionRelativeToEye: {deps: []quantity{qModelViewRelativeToEye, qProjection}, recompute: func(s *State) {
			s.modelViewProjectionRelativeToEye = s.Projection().Multiply(s.ModelViewRelativeToEye())
		}},
		qModelViewInfiniteProjection: {deps: []quantity{qModelView, qInfiniteProjection}, recompute: func(s *State) {
			s.modelViewInfiniteProjection = s.InfiniteProjection().Multiply(s.ModelView())
		}},
		qNormal: {deps: []quantity{qInverseModelView}, recompute: func(s *State) {
			s.normal = s.InverseModelView().Rotation().Transpose()
		}},
		qNormal3D: {deps: []quantity{qInverseModelView3D}, recompute: func(s *State) {
			s.normal3D = s.InverseModelView3D().Rotation().Transpose()
		}},
		qInverseNormal: {deps: []quantity{qInverseModelView}, recompute: func(s *State) {
			s.inverseNormal = inverseTranspose("czm_inverseNormal", s.InverseModelView().Rotation())
		}},
		qInverseNormal3D: {deps: []quantity{qInverseModelView3D}, recompute: func(s *State) {
			s.inverseNormal3D = inverseTranspose("czm_inverseNormal3D", s.InverseModelView3D().Rotation())
		}},
		qEncodedCameraPositionMC: {deps: []quantity{qInverseModel, qCamera}, recompute: func(s *State) {
			positionMC := s.InverseModel().MultiplyByPoint(s.cameraPosition)
			s.encodedCameraPositionMCHigh, s.encodedCameraPositionMCLow = common.EncodeCartesian3(positionMC)
		}},
		qViewportOrthographic: {deps: []quantity{qViewport}, recompute: func(s *State) {
			v := s.viewport
			s.viewportOrthographic = common.OrthographicOffCenter(
				float64(v.X), float64(v.X+v.Width), float64(v.Y), float64(v.Y+v.Height), 0, 1)
		}},
		qViewportTransformation: {deps: []quantity{qViewport}, recompute: func(s *State) {
			v := s.viewport
			s.viewportTransformation = common.ViewportTransformation(
				float64(v.X), float64(v.Y), float64(v.Width), float64(v.Height), 0, 1)
		}},
		qViewerPositionWC: {deps: []quantity{qInverseView}, recompute: func(s *State) {
			s.viewerPositionWC = s.InverseView().Translation()
		}},
		qTemeToPseudoFixed: {deps: []quantity{qTime}, recompute: func(s *State) {
			s.temeToPseudoFixed = common.ComputeTemeToPseudoFixedMatrix(s.time)
		}},
		qSunPositionWC: {deps: []quantity{qTemeToPseudoFixed}, recompute: func(s *State) {
			s.sunPositionWC = s.TemeToPseudoFixed().MultiplyByVector(common.SunPositionInEarthInertialFrame(s.time))
		}},
		qMoonPositionWC: {deps: []quantity{qTemeToPseudoFixed}, recompute: func(s *State) {
			s.moonPositionWC = s.TemeToPseudoFixed().MultiplyByVector(common.MoonPositionInEarthInertialFrame(s.time))
		}},
		qSunDirectionWC: {deps: []quantity{qSunPositionWC}, recompute: func(s *State) {
			s.sunDirectionWC = s.SunPositionWC().Normalize()
		}},
		qSunDirectionEC: {deps: []quantity{qSunPositionWC, qViewRotation3D}, recompute: func(s *State) {
			s.sunDirectionEC = s.ViewRotation3D().MultiplyByVector(s.SunPositionWC()).Normalize()
		}},
		qMoonDirectionEC: {deps: []quantity{qMoonPositionWC, qViewRotation3D}, recompute: func(s *State) {
			s.moonDirectionEC = s.ViewRotation3D().MultiplyByVector(s.MoonPositionWC()).Normalize()
		}},
		qSunPositionColumbusView: {deps: []quantity{qSunPositionWC, qMode}, recompute: func(s *State) {
			ellipsoid := s.mapProjection.Ellipsoid()
			carto, ok := ellipsoid.CartesianToCartographic(s.SunPositionWC())
			if !ok {
				s.sunPositionColumbusView = common.Cartesian3{}
				return
			}
			p := s.mapProjection.Project(carto)
			s.sunPositionColumbusView = common.Cartesian3{X: p.Z, Y: p.X, Z: p.Y}
		}},
	}

	// reverse edges, then the closure per quantity
	direct := make([][]quantity, quantityCount)
	for q, d := range derivations {
		for _, dep := range d.deps {
			direct[dep] = append(direct[dep], quantity(q))
		}
	}
	for q := range quantityCount {
		seen := make(map[quantity]bool)
		stack := append([]quantity(nil), direct[q]...)
		for len(stack) > 0 {
			n := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if seen[n] {
				continue
			}
			seen[n] = true
			dependents[q] = append(dependents[q], n)
			stack = append(stack, direct[n]...)
		}
	}
}

// State is the per-context cache of automatic uniform values. Inputs are assigned through
// setters and Update; every derived quantity is recomputed on first read after any of its
// upstream inputs changed, so a getter never returns a stale value. Not safe for concurrent
// use; it belongs to the render goroutine.
type State struct {
	dirty [quantityCount]bool

	model              common.Matrix4
	view               common.Matrix4
	projection         common.Matrix4
	infiniteProjection common.Matrix4
	viewport           gpu.Viewport
	cameraPosition     common.Cartesian3
	cameraDirection    common.Cartesian3
	cameraRight        common.Cartesian3
	cameraUp           common.Cartesian3
	frustum2DWidth     float64
	mode               SceneMode
	mapProjection      common.MapProjection
	time               common.JulianDate

	entireFrustum  [2]float64
	currentFrustum [2]float64
	frustumPlanes  common.Cartesian4
	morphTime      float64
	frameNumber    int
	fogDensity     float64
	pass           int
	frameState     FrameState

	inverseModel                     common.Matrix4
	inverseView                      common.Matrix4
	viewRotation                     common.Matrix3
	inverseViewRotation              common.Matrix3
	view3D                           common.Matrix4
	inverseView3D                    common.Matrix4
	viewRotation3D                   common.Matrix3
	inverseViewRotation3D            common.Matrix3
	inverseProjection                common.Matrix4
	viewProjection                   common.Matrix4
	inverseViewProjection            common.Matrix4
	modelView                        common.Matrix4
	modelView3D                      common.Matrix4
	modelViewRelativeToEye           common.Matrix4
	inverseModelView                 common.Matrix4
	inverseModelView3D               common.Matrix4
	modelViewProjection              common.Matrix4
	inverseModelViewProjection       common.Matrix4
	modelViewProjectionRelativeToEye common.Matrix4
	modelViewInfiniteProjection      common.Matrix4
	normal                           common.Matrix3
	normal3D                         common.Matrix3
	inverseNormal                    common.Matrix3
	inverseNormal3D                  common.Matrix3
	encodedCameraPositionMCHigh      common.Cartesian3
	encodedCameraPositionMCLow       common.Cartesian3
	viewportOrthographic             common.Matrix4
	viewportTransformation           common.Matrix4
	viewerPositionWC                 common.Cartesian3
	temeToPseudoFixed                common.Matrix3
	sunPositionWC                    common.Cartesian3
	moonPositionWC                   common.Cartesian3
	sunDirectionWC                   common.Cartesian3
	sunDirectionEC                   common.Cartesian3
	moonDirectionEC                  common.Cartesian3
	sunPositionColumbusView          common.Cartesian3
}

// NewState creates a State with identity transforms, a 3D scene over WGS84 and every derived
// quantity dirty.
//
// Returns:
//   - *State: the new uniform state
func NewState() *State {
	s := &State{
		model:              common.Identity4(),
		view:               common.Identity4(),
		projection:         common.Identity4(),
		infiniteProjection: common.Identity4(),
		mode:               SceneMode3D,
		mapProjection:      common.NewGeographicProjection(common.WGS84),
		time:               common.NewJulianDate(common.J2000DayNumber, 0),
	}
	for q := qInverseModel; q < quantityCount; q++ {
		s.dirty[q] = true
	}
	return s
}

// invalidate marks every quantity downstream of q dirty.
func (s *State) invalidate(q quantity) {
	for _, d := range dependents[q] {
		s.dirty[d] = true
	}
}

// clean recomputes q if it is dirty.
func (s *State) clean(q quantity) {
	if s.dirty[q] {
		derivations[q].recompute(s)
		s.dirty[q] = false
	}
}

// Update copies the per-frame scene inputs: mode, map projection, camera, view, the camera's
// frustum, time and the scalar frame values.
//
// Parameters:
//   - frameState: the frame being rendered
func (s *State) Update(frameState FrameState) {
	s.frameState = frameState

	if mode, projection := frameState.Mode(), frameState.MapProjection(); mode != s.mode || projection != s.mapProjection {
		s.mode = mode
		s.mapProjection = projection
		s.invalidate(qMode)
	}

	camera := frameState.Camera()
	frustum := camera.Frustum()
	s.setCamera(camera, frustum)
	s.SetView(camera.ViewMatrix())
	s.inverseView = camera.InverseViewMatrix()
	s.dirty[qInverseView] = false

	s.entireFrustum = [2]float64{frustum.Near(), frustum.Far()}
	s.UpdateFrustum(frustum)

	s.morphTime = frameState.MorphTime()
	s.frameNumber = frameState.FrameNumber()
	s.fogDensity = frameState.FogDensity()

	if t := frameState.Time(); t != s.time {
		s.time = t
		s.invalidate(qTime)
	}
}

func (s *State) setCamera(camera Camera, frustum Frustum) {
	s.cameraPosition = camera.PositionWC()
	s.cameraDirection = camera.DirectionWC()
	s.cameraRight = camera.RightWC()
	s.cameraUp = camera.UpWC()
	s.frustum2DWidth = frustum.Right() - frustum.Left()
	s.invalidate(qCamera)
}

// UpdateFrustum switches to one frustum of a multi-frustum frame: projection, optional
// infinite projection, current near/far and the off-center planes.
//
// Parameters:
//   - frustum: the frustum being rendered
func (s *State) UpdateFrustum(frustum Frustum) {
	s.SetProjection(frustum.ProjectionMatrix())
	if infinite, ok := frustum.InfiniteProjectionMatrix(); ok {
		s.SetInfiniteProjection(infinite)
	}
	s.currentFrustum = [2]float64{frustum.Near(), frustum.Far()}
	s.frustumPlanes = common.Cartesian4{X: frustum.Top(), Y: frustum.Bottom(), Z: frustum.Left(), W: frustum.Right()}
}

// UpdatePass sets the pass identifier exposed as czm_pass.
func (s *State) UpdatePass(pass int) {
	s.pass = pass
}

// SetViewport sets the viewport of the next draw. Unchanged viewports keep derived matrices.
func (s *State) SetViewport(v gpu.Viewport) {
	if v == s.viewport {
		return
	}
	s.viewport = v
	s.invalidate(qViewport)
}

// SetModel sets the model matrix of the next draw.
func (s *State) SetModel(m common.Matrix4) {
	if m == s.model {
		return
	}
	s.model = m
	s.invalidate(qModel)
}

// SetView sets the view matrix and invalidates every view-dependent quantity.
func (s *State) SetView(m common.Matrix4) {
	s.view = m
	s.invalidate(qView)
}

// SetProjection sets the projection matrix and invalidates every projection-dependent quantity.
func (s *State) SetProjection(m common.Matrix4) {
	s.projection = m
	s.invalidate(qProjection)
}

// SetInfiniteProjection sets the far-plane-at-infinity projection.
func (s *State) SetInfiniteProjection(m common.Matrix4) {
	s.infiniteProjection = m
	s.invalidate(qInfiniteProjection)
}

// inputs

func (s *State) FrameState() FrameState              { return s.frameState }
func (s *State) Model() common.Matrix4               { return s.model }
func (s *State) View() common.Matrix4                { return s.view }
func (s *State) Projection() common.Matrix4          { return s.projection }
func (s *State) InfiniteProjection() common.Matrix4  { return s.infiniteProjection }
func (s *State) Viewport() gpu.Viewport              { return s.viewport }
func (s *State) Mode() SceneMode                     { return s.mode }
func (s *State) MapProjection() common.MapProjection { return s.mapProjection }
func (s *State) Time() common.JulianDate             { return s.time }
func (s *State) EntireFrustum() [2]float64           { return s.entireFrustum }
func (s *State) CurrentFrustum() [2]float64          { return s.currentFrustum }
func (s *State) FrustumPlanes() common.Cartesian4    { return s.frustumPlanes }
func (s *State) MorphTime() float64                  { return s.morphTime }
func (s *State) FrameNumber() int                    { return s.frameNumber }
func (s *State) FogDensity() float64                 { return s.fogDensity }
func (s *State) Pass() int                           { return s.pass }
func (s *State) CameraPositionWC() common.Cartesian3 { return s.cameraPosition }

// ViewportCartesian4 returns the viewport as (x, y, width, height).
func (s *State) ViewportCartesian4() common.Cartesian4 {
	v := s.viewport
	return common.Cartesian4{X: float64(v.X), Y: float64(v.Y), Z: float64(v.Width), W: float64(v.Height)}
}

// derived

func (s *State) InverseModel() common.Matrix4 {
	s.clean(qInverseModel)
	return s.inverseModel
}

func (s *State) InverseView() common.Matrix4 {
	s.clean(qInverseView)
	return s.inverseView
}

func (s *State) ViewRotation() common.Matrix3 {
	s.clean(qViewRotation)
	return s.viewRotation
}

func (s *State) InverseViewRotation() common.Matrix3 {
	s.clean(qInverseViewRotation)
	return s.inverseViewRotation
}

// View3D returns the view matrix in 3D world coordinates. In 2D and Columbus View it is the
// synthetic equivalent derived from the camera, so lighting matches across modes.
func (s *State) View3D() common.Matrix4 {
	s.clean(qView3D)
	return s.view3D
}

func (s *State) InverseView3D() common.Matrix4 {
	s.clean(qInverseView3D)
	return s.inverseView3D
}

func (s *State) ViewRotation3D() common.Matrix3 {
	s.clean(qViewRotation3D)
	return s.viewRotation3D
}

func (s *State) InverseViewRotation3D() common.Matrix3 {
	s.clean(qInverseViewRotation3D)
	return s.inverseViewRotation3D
}

func (s *State) InverseProjection() common.Matrix4 {
	s.clean(qInverseProjection)
	return s.inverseProjection
}

func (s *State) ViewProjection() common.Matrix4 {
	s.clean(qViewProjection)
	return s.viewProjection
}

func (s *State) InverseViewProjection() common.Matrix4 {
	s.clean(qInverseViewProjection)
	return s.inverseViewProjection
}

func (s *State) ModelView() common.Matrix4 {
	s.clean(qModelView)
	return s.modelView
}

func (s *State) ModelView3D() common.Matrix4 {
	s.clean(qModelView3D)
	return s.modelView3D
}

// ModelViewRelativeToEye is the model-view matrix with its translation removed, used with
// positions encoded relative to the eye.
func (s *State) ModelViewRelativeToEye() common.Matrix4 {
	s.clean(qModelViewRelativeToEye)
	return s.modelViewRelativeToEye
}

func (s *State) InverseModelView() common.Matrix4 {
	s.clean(qInverseModelView)
	return s.inverseModelView
}

func (s *State) InverseModelView3D() common.Matrix4 {
	s.clean(qInverseModelView3D)
	return s.inverseModelView3D
}

func (s *State) ModelViewProjection() common.Matrix4 {
	s.clean(qModelViewProjection)
	return s.modelViewProjection
}

func (s *State) InverseModelViewProjection() common.Matrix4 {
	s.clean(qInverseModelViewProjection)
	return s.inverseModelViewProjection
}

func (s *State) ModelViewProjectionRelativeToEye() common.Matrix4 {
	s.clean(qModelViewProjectionRelativeToEye)
	return s.modelViewProjectionRelativeToEye
}

func (s *State) ModelViewInfiniteProjection() common.Matrix4 {
	s.clean(qModelViewInfiniteProjection)
	return s.modelViewInfiniteProjection
}

// Normal transforms model-space normals to eye space.
func (s *State) Normal() common.Matrix3 {
	s.clean(qNormal)
	return s.normal
}

func (s *State) Normal3D() common.Matrix3 {
	s.clean(qNormal3D)
	return s.normal3D
}

func (s *State) InverseNormal() common.Matrix3 {
	s.clean(qInverseNormal)
	return s.inverseNormal
}

func (s *State) InverseNormal3D() common.Matrix3 {
	s.clean(qInverseNormal3D)
	return s.inverseNormal3D
}

// EncodedCameraPositionMCHigh is the high part of the camera position in model coordinates.
func (s *State) EncodedCameraPositionMCHigh() common.Cartesian3 {
	s.clean(qEncodedCameraPositionMC)
	return s.encodedCameraPositionMCHigh
}

// EncodedCameraPositionMCLow is the low part of the camera position in model coordinates.
func (s *State) EncodedCameraPositionMCLow() common.Cartesian3 {
	s.clean(qEncodedCameraPositionMC)
	return s.encodedCameraPositionMCLow
}

func (s *State) ViewportOrthographic() common.Matrix4 {
	s.clean(qViewportOrthographic)
	return s.viewportOrthographic
}

func (s *State) ViewportTransformation() common.Matrix4 {
	s.clean(qViewportTransformation)
	return s.viewportTransformation
}

func (s *State) ViewerPositionWC() common.Cartesian3 {
	s.clean(qViewerPositionWC)
	return s.viewerPositionWC
}

func (s *State) TemeToPseudoFixed() common.Matrix3 {
	s.clean(qTemeToPseudoFixed)
	return s.temeToPseudoFixed
}

func (s *State) SunPositionWC() common.Cartesian3 {
	s.clean(qSunPositionWC)
	return s.sunPositionWC
}

func (s *State) MoonPositionWC() common.Cartesian3 {
	s.clean(qMoonPositionWC)
	return s.moonPositionWC
}

func (s *State) SunDirectionWC() common.Cartesian3 {
	s.clean(qSunDirectionWC)
	return s.sunDirectionWC
}

func (s *State) SunDirectionEC() common.Cartesian3 {
	s.clean(qSunDirectionEC)
	return s.sunDirectionEC
}

func (s *State) MoonDirectionEC() common.Cartesian3 {
	s.clean(qMoonDirectionEC)
	return s.moonDirectionEC
}

// SunPositionColumbusView is the sun position projected into the Columbus View frame.
func (s *State) SunPositionColumbusView() common.Cartesian3 {
	s.clean(qSunPositionColumbusView)
	return s.sunPositionColumbusView
}

// SetAutomaticUniforms writes the per-frame block (czm_FrameUniforms) to the start of buffer.
//
// Parameters:
//   - buffer: a uniform buffer of at least FrameUniformsSize bytes
func (s *State) SetAutomaticUniforms(buffer gpu.Buffer) {
	fu := s.FrameUniforms()
	buffer.Write(0, fu.Marshal())
}

// SetFrustumUniforms writes the per-frustum block (czm_FrustumUniforms) at offset.
//
// Parameters:
//   - buffer: the frustum uniform buffer
//   - offset: the byte offset of the current frustum's slot
func (s *State) SetFrustumUniforms(buffer gpu.Buffer, offset int) {
	fu := s.FrustumUniforms()
	buffer.Write(offset, fu.Marshal())
}

// FrameUniforms snapshots the per-frame block.
func (s *State) FrameUniforms() FrameUniforms {
	return FrameUniforms{
		ViewRotation:            mat3Std140(s.ViewRotation()),
		TemeToPseudoFixed:       mat3Std140(s.TemeToPseudoFixed()),
		SunDirectionEC:          s.SunDirectionEC().Float32(),
		MorphTime:               float32(s.morphTime),
		SunDirectionWC:          s.SunDirectionWC().Float32(),
		FogDensity:              float32(s.fogDensity),
		MoonDirectionEC:         s.MoonDirectionEC().Float32(),
		FrameNumber:             float32(s.frameNumber),
		ViewerPositionWC:        s.ViewerPositionWC().Float32(),
		SceneMode:               float32(s.mode),
		SunPositionWC:           s.SunPositionWC().Float32(),
		SunPositionColumbusView: s.SunPositionColumbusView().Float32(),
	}
}

// FrustumUniforms snapshots the per-frustum block.
func (s *State) FrustumUniforms() FrustumUniforms {
	return FrustumUniforms{
		Projection:            s.Projection().Float32(),
		InverseProjection:     s.InverseProjection().Float32(),
		InfiniteProjection:    s.InfiniteProjection().Float32(),
		View:                  s.View().Float32(),
		InverseView:           s.InverseView().Float32(),
		View3D:                s.View3D().Float32(),
		InverseView3D:         s.InverseView3D().Float32(),
		ViewProjection:        s.ViewProjection().Float32(),
		InverseViewProjection: s.InverseViewProjection().Float32(),
		ViewRotation3D:        mat3Std140(s.ViewRotation3D()),
		InverseViewRotation:   mat3Std140(s.InverseViewRotation()),
		EntireFrustum:         [2]float32{float32(s.entireFrustum[0]), float32(s.entireFrustum[1])},
		CurrentFrustum:        [2]float32{float32(s.currentFrustum[0]), float32(s.currentFrustum[1])},
		FrustumPlanes:         s.frustumPlanes.Float32(),
	}
}
