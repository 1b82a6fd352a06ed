package common

import (
	"math"
	"unsafe"
)

const (
	// PiOverTwo is π/2.
	PiOverTwo = math.Pi / 2
	// TwoPi is 2π.
	TwoPi = 2 * math.Pi
	// Epsilon7 is the tolerance used for near-zero comparisons of normalized quantities.
	Epsilon7 = 1e-7
	// Epsilon12 is the tolerance used for iterative surface projections.
	Epsilon12 = 1e-12
)

// Cartesian3 is a three-component double precision vector.
type Cartesian3 struct {
	X, Y, Z float64
}

// Cartesian4 is a four-component double precision vector.
type Cartesian4 struct {
	X, Y, Z, W float64
}

// Matrix3 is a 3x3 matrix stored in column-major order.
type Matrix3 [9]float64

// Matrix4 is a 4x4 matrix stored in column-major order (OpenGL/WebGPU convention).
type Matrix4 [16]float64

// Identity3 returns the 3x3 identity matrix.
func Identity3() Matrix3 {
	return Matrix3{1, 0, 0, 0, 1, 0, 0, 0, 1}
}

// Identity4 returns the 4x4 identity matrix.
func Identity4() Matrix4 {
	return Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}
}

// Add returns a + b.
func (a Cartesian3) Add(b Cartesian3) Cartesian3 {
	return Cartesian3{a.X + b.X, a.Y + b.Y, a.Z + b.Z}
}

// Subtract returns a - b.
func (a Cartesian3) Subtract(b Cartesian3) Cartesian3 {
	return Cartesian3{a.X - b.X, a.Y - b.Y, a.Z - b.Z}
}

// MultiplyByScalar returns a scaled by s.
func (a Cartesian3) MultiplyByScalar(s float64) Cartesian3 {
	return Cartesian3{a.X * s, a.Y * s, a.Z * s}
}

// MultiplyComponents returns the component-wise product of a and b.
func (a Cartesian3) MultiplyComponents(b Cartesian3) Cartesian3 {
	return Cartesian3{a.X * b.X, a.Y * b.Y, a.Z * b.Z}
}

// Negate returns -a.
func (a Cartesian3) Negate() Cartesian3 {
	return Cartesian3{-a.X, -a.Y, -a.Z}
}

// Dot returns the dot product of a and b.
func (a Cartesian3) Dot(b Cartesian3) float64 {
	return a.X*b.X + a.Y*b.Y + a.Z*b.Z
}

// Cross returns the cross product a × b.
func (a Cartesian3) Cross(b Cartesian3) Cartesian3 {
	return Cartesian3{
		a.Y*b.Z - a.Z*b.Y,
		a.Z*b.X - a.X*b.Z,
		a.X*b.Y - a.Y*b.X,
	}
}

// MagnitudeSquared returns the squared length of a.
func (a Cartesian3) MagnitudeSquared() float64 {
	return a.Dot(a)
}

// Magnitude returns the length of a.
func (a Cartesian3) Magnitude() float64 {
	return math.Sqrt(a.MagnitudeSquared())
}

// Normalize returns a scaled to unit length. The zero vector is returned unchanged.
func (a Cartesian3) Normalize() Cartesian3 {
	m := a.Magnitude()
	if m == 0 {
		return a
	}
	return a.MultiplyByScalar(1 / m)
}

// EqualsEpsilon reports whether a and b are component-wise within epsilon.
func (a Cartesian3) EqualsEpsilon(b Cartesian3, epsilon float64) bool {
	return math.Abs(a.X-b.X) <= epsilon && math.Abs(a.Y-b.Y) <= epsilon && math.Abs(a.Z-b.Z) <= epsilon
}

// Float32 returns the vector as a float32 array for GPU upload.
func (a Cartesian3) Float32() [3]float32 {
	return [3]float32{float32(a.X), float32(a.Y), float32(a.Z)}
}

// Float32 returns the vector as a float32 array for GPU upload.
func (a Cartesian4) Float32() [4]float32 {
	return [4]float32{float32(a.X), float32(a.Y), float32(a.Z), float32(a.W)}
}

// Multiply returns a * b for 4x4 column-major matrices.
func (a Matrix4) Multiply(b Matrix4) Matrix4 {
	var out Matrix4
	for i := 0; i < 4; i++ { // column of B
		for j := 0; j < 4; j++ { // row of A
			sum := 0.0
			for k := 0; k < 4; k++ {
				sum += a[k*4+j] * b[i*4+k]
			}
			out[i*4+j] = sum
		}
	}
	return out
}

// MultiplyByPoint transforms p as a point (w = 1).
func (a Matrix4) MultiplyByPoint(p Cartesian3) Cartesian3 {
	return Cartesian3{
		a[0]*p.X + a[4]*p.Y + a[8]*p.Z + a[12],
		a[1]*p.X + a[5]*p.Y + a[9]*p.Z + a[13],
		a[2]*p.X + a[6]*p.Y + a[10]*p.Z + a[14],
	}
}

// MultiplyByPointAsVector transforms v as a direction (w = 0).
func (a Matrix4) MultiplyByPointAsVector(v Cartesian3) Cartesian3 {
	return Cartesian3{
		a[0]*v.X + a[4]*v.Y + a[8]*v.Z,
		a[1]*v.X + a[5]*v.Y + a[9]*v.Z,
		a[2]*v.X + a[6]*v.Y + a[10]*v.Z,
	}
}

// Translation returns the translation column of the matrix.
func (a Matrix4) Translation() Cartesian3 {
	return Cartesian3{a[12], a[13], a[14]}
}

// SetTranslation returns a copy of the matrix with its translation column replaced.
func (a Matrix4) SetTranslation(t Cartesian3) Matrix4 {
	a[12], a[13], a[14] = t.X, t.Y, t.Z
	return a
}

// Rotation returns the upper-left 3x3 of the matrix.
func (a Matrix4) Rotation() Matrix3 {
	return Matrix3{
		a[0], a[1], a[2],
		a[4], a[5], a[6],
		a[8], a[9], a[10],
	}
}

// Inverse computes the general inverse of the matrix using the cofactor expansion.
// The second return value is false when the matrix is singular, in which case the
// zero matrix is returned.
func (m Matrix4) Inverse() (Matrix4, bool) {
	s0 := m[0]*m[5] - m[4]*m[1]
	s1 := m[0]*m[6] - m[4]*m[2]
	s2 := m[0]*m[7] - m[4]*m[3]
	s3 := m[1]*m[6] - m[5]*m[2]
	s4 := m[1]*m[7] - m[5]*m[3]
	s5 := m[2]*m[7] - m[6]*m[3]

	c5 := m[10]*m[15] - m[14]*m[11]
	c4 := m[9]*m[15] - m[13]*m[11]
	c3 := m[9]*m[14] - m[13]*m[10]
	c2 := m[8]*m[15] - m[12]*m[11]
	c1 := m[8]*m[14] - m[12]*m[10]
	c0 := m[8]*m[13] - m[12]*m[9]

	det := s0*c5 - s1*c4 + s2*c3 + s3*c2 - s4*c1 + s5*c0
	if det == 0 {
		return Matrix4{}, false
	}
	invDet := 1.0 / det

	var out Matrix4
	out[0] = (m[5]*c5 - m[6]*c4 + m[7]*c3) * invDet
	out[1] = (-m[1]*c5 + m[2]*c4 - m[3]*c3) * invDet
	out[2] = (m[13]*s5 - m[14]*s4 + m[15]*s3) * invDet
	out[3] = (-m[9]*s5 + m[10]*s4 - m[11]*s3) * invDet

	out[4] = (-m[4]*c5 + m[6]*c2 - m[7]*c1) * invDet
	out[5] = (m[0]*c5 - m[2]*c2 + m[3]*c1) * invDet
	out[6] = (-m[12]*s5 + m[14]*s2 - m[15]*s1) * invDet
	out[7] = (m[8]*s5 - m[10]*s2 + m[11]*s1) * invDet

	out[8] = (m[4]*c4 - m[5]*c2 + m[7]*c0) * invDet
	out[9] = (-m[0]*c4 + m[1]*c2 - m[3]*c0) * invDet
	out[10] = (m[12]*s4 - m[13]*s2 + m[15]*s0) * invDet
	out[11] = (-m[8]*s4 + m[9]*s2 - m[11]*s0) * invDet

	out[12] = (-m[4]*c3 + m[5]*c1 - m[6]*c0) * invDet
	out[13] = (m[0]*c3 - m[1]*c1 + m[2]*c0) * invDet
	out[14] = (-m[12]*s3 + m[13]*s1 - m[14]*s0) * invDet
	out[15] = (m[8]*s3 - m[9]*s1 + m[10]*s0) * invDet
	return out, true
}

// InverseTransformation inverts a rigid transformation (rotation + translation) by
// transposing the rotation and rotating the negated translation. It is cheaper and more
// stable than Inverse for view and model matrices.
func (m Matrix4) InverseTransformation() Matrix4 {
	r := m.Rotation().Transpose()
	t := r.MultiplyByVector(m.Translation()).Negate()
	return FromRotationTranslation(r, t)
}

// FromRotationTranslation builds an affine transform from a rotation and a translation.
func FromRotationTranslation(r Matrix3, t Cartesian3) Matrix4 {
	return Matrix4{
		r[0], r[1], r[2], 0,
		r[3], r[4], r[5], 0,
		r[6], r[7], r[8], 0,
		t.X, t.Y, t.Z, 1,
	}
}

// Float32 converts the matrix for GPU upload.
func (m Matrix4) Float32() [16]float32 {
	var out [16]float32
	for i, v := range m {
		out[i] = float32(v)
	}
	return out
}

// EqualsEpsilon reports whether a and b are element-wise within epsilon.
func (m Matrix4) EqualsEpsilon(b Matrix4, epsilon float64) bool {
	for i := range m {
		if math.Abs(m[i]-b[i]) > epsilon {
			return false
		}
	}
	return true
}

// Multiply returns a * b for 3x3 column-major matrices.
func (a Matrix3) Multiply(b Matrix3) Matrix3 {
	var out Matrix3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			sum := 0.0
			for k := 0; k < 3; k++ {
				sum += a[k*3+j] * b[i*3+k]
			}
			out[i*3+j] = sum
		}
	}
	return out
}

// MultiplyByVector returns a * v.
func (a Matrix3) MultiplyByVector(v Cartesian3) Cartesian3 {
	return Cartesian3{
		a[0]*v.X + a[3]*v.Y + a[6]*v.Z,
		a[1]*v.X + a[4]*v.Y + a[7]*v.Z,
		a[2]*v.X + a[5]*v.Y + a[8]*v.Z,
	}
}

// Transpose returns the transpose of the matrix.
func (a Matrix3) Transpose() Matrix3 {
	return Matrix3{
		a[0], a[3], a[6],
		a[1], a[4], a[7],
		a[2], a[5], a[8],
	}
}

// Inverse returns the inverse of the matrix, or false if it is singular.
func (a Matrix3) Inverse() (Matrix3, bool) {
	c00 := a[4]*a[8] - a[7]*a[5]
	c01 := a[7]*a[2] - a[1]*a[8]
	c02 := a[1]*a[5] - a[4]*a[2]
	det := a[0]*c00 + a[3]*c01 + a[6]*c02
	if det == 0 {
		return Matrix3{}, false
	}
	inv := 1 / det
	return Matrix3{
		c00 * inv,
		c01 * inv,
		c02 * inv,
		(a[6]*a[5] - a[3]*a[8]) * inv,
		(a[0]*a[8] - a[6]*a[2]) * inv,
		(a[3]*a[2] - a[0]*a[5]) * inv,
		(a[3]*a[7] - a[6]*a[4]) * inv,
		(a[6]*a[1] - a[0]*a[7]) * inv,
		(a[0]*a[4] - a[3]*a[1]) * inv,
	}, true
}

// Float32 converts the matrix for GPU upload.
func (a Matrix3) Float32() [9]float32 {
	var out [9]float32
	for i, v := range a {
		out[i] = float32(v)
	}
	return out
}

// PerspectiveOffCenter builds an OpenGL-style off-center perspective projection
// (clip-space depth in [-1, 1]).
func PerspectiveOffCenter(left, right, bottom, top, near, far float64) Matrix4 {
	return Matrix4{
		2 * near / (right - left), 0, 0, 0,
		0, 2 * near / (top - bottom), 0, 0,
		(right + left) / (right - left), (top + bottom) / (top - bottom), -(far + near) / (far - near), -1,
		0, 0, -2 * far * near / (far - near), 0,
	}
}

// InfinitePerspectiveOffCenter builds an off-center perspective projection with the far
// plane at infinity.
func InfinitePerspectiveOffCenter(left, right, bottom, top, near float64) Matrix4 {
	return Matrix4{
		2 * near / (right - left), 0, 0, 0,
		0, 2 * near / (top - bottom), 0, 0,
		(right + left) / (right - left), (top + bottom) / (top - bottom), -1, -1,
		0, 0, -2 * near, 0,
	}
}

// OrthographicOffCenter builds an orthographic projection.
func OrthographicOffCenter(left, right, bottom, top, near, far float64) Matrix4 {
	a := 1 / (right - left)
	b := 1 / (top - bottom)
	c := 1 / (far - near)
	return Matrix4{
		2 * a, 0, 0, 0,
		0, 2 * b, 0, 0,
		0, 0, -2 * c, 0,
		-(right + left) * a, -(top + bottom) * b, -(far + near) * c, 1,
	}
}

// ViewportTransformation maps normalized device coordinates into window coordinates for
// the given viewport and depth range.
func ViewportTransformation(x, y, width, height, nearDepthRange, farDepthRange float64) Matrix4 {
	halfWidth := width * 0.5
	halfHeight := height * 0.5
	halfDepth := (farDepthRange - nearDepthRange) * 0.5
	return Matrix4{
		halfWidth, 0, 0, 0,
		0, halfHeight, 0, 0,
		0, 0, halfDepth, 0,
		x + halfWidth, y + halfHeight, nearDepthRange + halfDepth, 1,
	}
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// StructToBytes reinterprets a pointer to a struct as a raw byte slice using unsafe.
// The returned slice has length equal to the struct's size in memory.
//
// Parameters:
//   - v: pointer to the struct to reinterpret
//
// Returns:
//   - []byte: byte slice view of the struct's memory
func StructToBytes[T any](v *T) []byte {
	size := unsafe.Sizeof(*v)
	return unsafe.Slice((*byte)(unsafe.Pointer(v)), int(size))
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// WARNING: The returned slice shares memory with the input - do not modify.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	size := unsafe.Sizeof(zero)
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(size)*len(data))
}

// EncodeDouble splits a double into a high part that is a multiple of 65536 and a low
// remainder, so both survive conversion to float32 for relative-to-eye rendering.
func EncodeDouble(value float64) (high, low float64) {
	if value >= 0 {
		high = math.Floor(value/65536) * 65536
		return high, value - high
	}
	high = math.Floor(-value/65536) * 65536
	return -high, value + high
}

// EncodeCartesian3 applies EncodeDouble to each component.
func EncodeCartesian3(c Cartesian3) (high, low Cartesian3) {
	high.X, low.X = EncodeDouble(c.X)
	high.Y, low.Y = EncodeDouble(c.Y)
	high.Z, low.Z = EncodeDouble(c.Z)
	return high, low
}

// InverseTranspose returns the transpose of the inverse, used to transform normals. A
// singular matrix yields the zero matrix.
func (a Matrix3) InverseTranspose() Matrix3 {
	inv, _ := a.Inverse()
	return inv.Transpose()
}
