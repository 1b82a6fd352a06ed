package uniform

import (
	"fmt"
	"sort"
)

// Scope is how often an automatic uniform changes and therefore which block carries it.
type Scope int

const (
	// ScopeFrame uniforms live in czm_FrameUniforms, written once per frame.
	ScopeFrame Scope = iota
	// ScopeFrustum uniforms live in czm_FrustumUniforms, written once per frustum.
	ScopeFrustum
	// ScopeCommand uniforms depend on the draw (model matrix, viewport, pass) and are packed into
	// czm_DrawUniforms next to the command's manual uniforms.
	ScopeCommand
)

// AutomaticUniform is an engine-supplied shader input. Entries are registered once at package
// initialization and never mutated.
type AutomaticUniform struct {
	Name     string
	Size     int
	DataType DataType
	Scope    Scope
	Value    func(s *State) any
}

// Declaration returns the GLSL declaration of a command-scope uniform.
func (a AutomaticUniform) Declaration() string {
	return fmt.Sprintf("uniform %s %s;", a.DataType, a.Name)
}

var automaticUniforms = map[string]AutomaticUniform{}

func register(scope Scope, name string, t DataType, value func(s *State) any) {
	automaticUniforms[name] = AutomaticUniform{Name: name, Size: 1, DataType: t, Scope: scope, Value: value}
}

func init() {
	// czm_FrameUniforms
	register(ScopeFrame, "czm_viewRotation", DataTypeMat3, func(s *State) any { return s.ViewRotation() })
	register(ScopeFrame, "czm_temeToPseudoFixed", DataTypeMat3, func(s *State) any { return s.TemeToPseudoFixed() })
	register(ScopeFrame, "czm_sunDirectionEC", DataTypeVec3, func(s *State) any { return s.SunDirectionEC() })
	register(ScopeFrame, "czm_morphTime", DataTypeFloat, func(s *State) any { return s.MorphTime() })
	register(ScopeFrame, "czm_sunDirectionWC", DataTypeVec3, func(s *State) any { return s.SunDirectionWC() })
	register(ScopeFrame, "czm_fogDensity", DataTypeFloat, func(s *State) any { return s.FogDensity() })
	register(ScopeFrame, "czm_moonDirectionEC", DataTypeVec3, func(s *State) any { return s.MoonDirectionEC() })
	register(ScopeFrame, "czm_frameNumber", DataTypeFloat, func(s *State) any { return s.FrameNumber() })
	register(ScopeFrame, "czm_viewerPositionWC", DataTypeVec3, func(s *State) any { return s.ViewerPositionWC() })
	register(ScopeFrame, "czm_sceneMode", DataTypeFloat, func(s *State) any { return int(s.Mode()) })
	register(ScopeFrame, "czm_sunPositionWC", DataTypeVec3, func(s *State) any { return s.SunPositionWC() })
	register(ScopeFrame, "czm_sunPositionColumbusView", DataTypeVec3, func(s *State) any { return s.SunPositionColumbusView() })

	// czm_FrustumUniforms
	register(ScopeFrustum, "czm_projection", DataTypeMat4, func(s *State) any { return s.Projection() })
	register(ScopeFrustum, "czm_inverseProjection", DataTypeMat4, func(s *State) any { return s.InverseProjection() })
	register(ScopeFrustum, "czm_infiniteProjection", DataTypeMat4, func(s *State) any { return s.InfiniteProjection() })
	register(ScopeFrustum, "czm_view", DataTypeMat4, func(s *State) any { return s.View() })
	register(ScopeFrustum, "czm_inverseView", DataTypeMat4, func(s *State) any { return s.InverseView() })
	register(ScopeFrustum, "czm_view3D", DataTypeMat4, func(s *State) any { return s.View3D() })
	register(ScopeFrustum, "czm_inverseView3D", DataTypeMat4, func(s *State) any { return s.InverseView3D() })
	register(ScopeFrustum, "czm_viewProjection", DataTypeMat4, func(s *State) any { return s.ViewProjection() })
	register(ScopeFrustum, "czm_inverseViewProjection", DataTypeMat4, func(s *State) any { return s.InverseViewProjection() })
	register(ScopeFrustum, "czm_viewRotation3D", DataTypeMat3, func(s *State) any { return s.ViewRotation3D() })
	register(ScopeFrustum, "czm_inverseViewRotation", DataTypeMat3, func(s *State) any { return s.InverseViewRotation() })
	register(ScopeFrustum, "czm_entireFrustum", DataTypeVec2, func(s *State) any { return s.EntireFrustum() })
	register(ScopeFrustum, "czm_currentFrustum", DataTypeVec2, func(s *State) any { return s.CurrentFrustum() })
	register(ScopeFrustum, "czm_frustumPlanes", DataTypeVec4, func(s *State) any { return s.FrustumPlanes() })

	// czm_DrawUniforms
	register(ScopeCommand, "czm_model", DataTypeMat4, func(s *State) any { return s.Model() })
	register(ScopeCommand, "czm_inverseModel", DataTypeMat4, func(s *State) any { return s.InverseModel() })
	register(ScopeCommand, "czm_modelView", DataTypeMat4, func(s *State) any { return s.ModelView() })
	register(ScopeCommand, "czm_modelView3D", DataTypeMat4, func(s *State) any { return s.ModelView3D() })
	register(ScopeCommand, "czm_modelViewRelativeToEye", DataTypeMat4, func(s *State) any { return s.ModelViewRelativeToEye() })
	register(ScopeCommand, "czm_inverseModelView", DataTypeMat4, func(s *State) any { return s.InverseModelView() })
	register(ScopeCommand, "czm_inverseModelView3D", DataTypeMat4, func(s *State) any { return s.InverseModelView3D() })
	register(ScopeCommand, "czm_modelViewProjection", DataTypeMat4, func(s *State) any { return s.ModelViewProjection() })
	register(ScopeCommand, "czm_inverseModelViewProjection", DataTypeMat4, func(s *State) any { return s.InverseModelViewProjection() })
	register(ScopeCommand, "czm_modelViewProjectionRelativeToEye", DataTypeMat4, func(s *State) any { return s.ModelViewProjectionRelativeToEye() })
	register(ScopeCommand, "czm_modelViewInfiniteProjection", DataTypeMat4, func(s *State) any { return s.ModelViewInfiniteProjection() })
	register(ScopeCommand, "czm_normal", DataTypeMat3, func(s *State) any { return s.Normal() })
	register(ScopeCommand, "czm_normal3D", DataTypeMat3, func(s *State) any { return s.Normal3D() })
	register(ScopeCommand, "czm_inverseNormal", DataTypeMat3, func(s *State) any { return s.InverseNormal() })
	register(ScopeCommand, "czm_inverseNormal3D", DataTypeMat3, func(s *State) any { return s.InverseNormal3D() })
	register(ScopeCommand, "czm_encodedCameraPositionMCHigh", DataTypeVec3, func(s *State) any { return s.EncodedCameraPositionMCHigh() })
	register(ScopeCommand, "czm_encodedCameraPositionMCLow", DataTypeVec3, func(s *State) any { return s.EncodedCameraPositionMCLow() })
	register(ScopeCommand, "czm_viewport", DataTypeVec4, func(s *State) any { return s.ViewportCartesian4() })
	register(ScopeCommand, "czm_viewportOrthographic", DataTypeMat4, func(s *State) any { return s.ViewportOrthographic() })
	register(ScopeCommand, "czm_viewportTransformation", DataTypeMat4, func(s *State) any { return s.ViewportTransformation() })
	register(ScopeCommand, "czm_pass", DataTypeFloat, func(s *State) any { return s.Pass() })
}

// LookupAutomaticUniform returns the registry entry for name.
//
// Parameters:
//   - name: the czm_ prefixed uniform name
//
// Returns:
//   - AutomaticUniform: the entry
//   - bool: false when name is not an automatic uniform
func LookupAutomaticUniform(name string) (AutomaticUniform, bool) {
	a, ok := automaticUniforms[name]
	return a, ok
}

// AutomaticUniformNames returns every registered name in sorted order.
func AutomaticUniformNames() []string {
	names := make([]string, 0, len(automaticUniforms))
	for name := range automaticUniforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Declaration resolves an automatic uniform to the shader dependency-graph node that declares
// it. Frame and frustum uniforms resolve to their whole block so the block is emitted once no
// matter how many of its members a shader references.
//
// Parameters:
//   - name: the czm_ prefixed uniform name
//
// Returns:
//   - string: the node name (the block name, or the uniform name for command scope)
//   - string: the GLSL declaration
//   - bool: false when name is not an automatic uniform
func Declaration(name string) (node, source string, ok bool) {
	a, ok := automaticUniforms[name]
	if !ok {
		return "", "", false
	}
	switch a.Scope {
	case ScopeFrame:
		return FrameUniformsBlock, FrameUniformsSource, true
	case ScopeFrustum:
		return FrustumUniformsBlock, FrustumUniformsSource, true
	default:
		return a.Name, a.Declaration(), true
	}
}
