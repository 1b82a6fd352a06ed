package uniform

import "github.com/Carmen-Shannon/oxy-globe/common"

// SceneMode is the projection the scene is rendered in. Values match czm_sceneMode constants.
type SceneMode int

const (
	SceneModeMorphing     SceneMode = 0
	SceneModeColumbusView SceneMode = 1
	SceneMode2D           SceneMode = 2
	SceneMode3D           SceneMode = 3
)

// Frustum is the view volume consumed by State. Plane distances are measured on the near plane.
type Frustum interface {
	Near() float64
	Far() float64
	Top() float64
	Bottom() float64
	Left() float64
	Right() float64

	// ProjectionMatrix returns the clip-space projection of the frustum.
	//
	// Returns:
	//   - common.Matrix4: the projection matrix
	ProjectionMatrix() common.Matrix4

	// InfiniteProjectionMatrix returns the projection with the far plane at infinity.
	//
	// Returns:
	//   - common.Matrix4: the infinite projection matrix
	//   - bool: false when the frustum has no infinite form (orthographic)
	InfiniteProjectionMatrix() (common.Matrix4, bool)
}

// Camera is the viewer consumed by State. In 2D and Columbus View the world-coordinate vectors
// are expressed in the projected map frame (X up out of the map, Y east, Z north).
type Camera interface {
	PositionWC() common.Cartesian3
	DirectionWC() common.Cartesian3
	RightWC() common.Cartesian3
	UpWC() common.Cartesian3
	ViewMatrix() common.Matrix4
	InverseViewMatrix() common.Matrix4
	Frustum() Frustum
}

// FrameState is the per-frame scene input consumed by State.
type FrameState interface {
	Mode() SceneMode
	MapProjection() common.MapProjection
	Time() common.JulianDate
	MorphTime() float64
	FrameNumber() int
	FogDensity() float64
	Camera() Camera
}
