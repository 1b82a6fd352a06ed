package uniform

import (
	_ "embed"
	"unsafe"
)

// Uniform block names and their fixed binding indices.
const (
	FrameUniformsBlock   = "czm_FrameUniforms"
	FrustumUniformsBlock = "czm_FrustumUniforms"
	DrawUniformsBlock    = "czm_DrawUniforms"

	FrameUniformsBinding   = 0
	FrustumUniformsBinding = 1
	DrawUniformsBinding    = 2
)

// FrameUniformsSource is the canonical GLSL declaration of the czm_FrameUniforms block.
// Matches FrameUniforms layout exactly (192 bytes, std140).
//
//go:embed assets/frame_uniforms.glsl
var FrameUniformsSource string

// FrameUniforms is the GPU-aligned representation of the per-frame automatic uniforms.
// Matches the GLSL czm_FrameUniforms block layout exactly (see FrameUniformsSource).
// Size: 192 bytes (std140).
type FrameUniforms struct {
	ViewRotation            [12]float32 // offset   0: mat3, three vec4-padded columns
	TemeToPseudoFixed       [12]float32 // offset  48: mat3
	SunDirectionEC          [3]float32  // offset  96: vec3
	MorphTime               float32     // offset 108: float
	SunDirectionWC          [3]float32  // offset 112: vec3
	FogDensity              float32     // offset 124: float
	MoonDirectionEC         [3]float32  // offset 128: vec3
	FrameNumber             float32     // offset 140: float
	ViewerPositionWC        [3]float32  // offset 144: vec3
	SceneMode               float32     // offset 156: float
	SunPositionWC           [3]float32  // offset 160: vec3
	_pad0                   float32     // offset 172
	SunPositionColumbusView [3]float32  // offset 176: vec3
	_pad1                   float32     // offset 188: padding to 192
}

// FrameUniformsSize is the byte size of the czm_FrameUniforms block.
const FrameUniformsSize = 192

// Size returns the size of the FrameUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (192)
func (f *FrameUniforms) Size() int {
	return int(unsafe.Sizeof(*f))
}

// Marshal serializes the FrameUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (f *FrameUniforms) Marshal() []byte {
	buf := make([]byte, f.Size())
	putFloat32s(buf, 0, f.ViewRotation[:]...)
	putFloat32s(buf, 48, f.TemeToPseudoFixed[:]...)
	putFloat32s(buf, 96, f.SunDirectionEC[:]...)
	putFloat32(buf, 108, f.MorphTime)
	putFloat32s(buf, 112, f.SunDirectionWC[:]...)
	putFloat32(buf, 124, f.FogDensity)
	putFloat32s(buf, 128, f.MoonDirectionEC[:]...)
	putFloat32(buf, 140, f.FrameNumber)
	putFloat32s(buf, 144, f.ViewerPositionWC[:]...)
	putFloat32(buf, 156, f.SceneMode)
	putFloat32s(buf, 160, f.SunPositionWC[:]...)
	putFloat32s(buf, 176, f.SunPositionColumbusView[:]...)
	return buf
}

// FrustumUniformsSource is the canonical GLSL declaration of the czm_FrustumUniforms block.
// Matches FrustumUniforms layout exactly (704 bytes, std140).
//
//go:embed assets/frustum_uniforms.glsl
var FrustumUniformsSource string

// FrustumUniforms is the GPU-aligned representation of the per-frustum automatic uniforms.
// Matches the GLSL czm_FrustumUniforms block layout exactly (see FrustumUniformsSource).
// Size: 704 bytes (std140).
type FrustumUniforms struct {
	Projection            [16]float32 // offset   0: mat4
	InverseProjection     [16]float32 // offset  64: mat4
	InfiniteProjection    [16]float32 // offset 128: mat4
	View                  [16]float32 // offset 192: mat4
	InverseView           [16]float32 // offset 256: mat4
	View3D                [16]float32 // offset 320: mat4
	InverseView3D         [16]float32 // offset 384: mat4
	ViewProjection        [16]float32 // offset 448: mat4
	InverseViewProjection [16]float32 // offset 512: mat4
	ViewRotation3D        [12]float32 // offset 576: mat3
	InverseViewRotation   [12]float32 // offset 624: mat3
	EntireFrustum         [2]float32  // offset 672: vec2 near, far
	CurrentFrustum        [2]float32  // offset 680: vec2 near, far
	FrustumPlanes         [4]float32  // offset 688: vec4 top, bottom, left, right
}

// FrustumUniformsSize is the byte size of the czm_FrustumUniforms block.
const FrustumUniformsSize = 704

// Size returns the size of the FrustumUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (704)
func (f *FrustumUniforms) Size() int {
	return int(unsafe.Sizeof(*f))
}

// Marshal serializes the FrustumUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (f *FrustumUniforms) Marshal() []byte {
	buf := make([]byte, f.Size())
	mats := [][16]float32{
		f.Projection, f.InverseProjection, f.InfiniteProjection,
		f.View, f.InverseView, f.View3D, f.InverseView3D,
		f.ViewProjection, f.InverseViewProjection,
	}
	for i, m := range mats {
		putFloat32s(buf, i*64, m[:]...)
	}
	putFloat32s(buf, 576, f.ViewRotation3D[:]...)
	putFloat32s(buf, 624, f.InverseViewRotation[:]...)
	putFloat32s(buf, 672, f.EntireFrustum[:]...)
	putFloat32s(buf, 680, f.CurrentFrustum[:]...)
	putFloat32s(buf, 688, f.FrustumPlanes[:]...)
	return buf
}
