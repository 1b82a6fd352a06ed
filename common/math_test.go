package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrix4InverseRoundTrip(t *testing.T) {
	origin := WGS84.CartographicToCartesian(Cartographic{Longitude: 0.3, Latitude: -0.8, Height: 250})
	rotation := EastNorthUpToFixedFrame(origin, WGS84).Rotation()
	view := FromRotationTranslation(rotation, Cartesian3{X: 10, Y: -20, Z: 30})
	m := PerspectiveOffCenter(-1, 1, -0.75, 0.75, 1, 100).Multiply(view)

	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, inv.Multiply(m).EqualsEpsilon(Identity4(), 1e-10), "inverse(M) * M = I")
	assert.True(t, m.Multiply(inv).EqualsEpsilon(Identity4(), 1e-10), "M * inverse(M) = I")
}

func TestMatrix4InverseSingular(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix4
	}{
		{"zero", Matrix4{}},
		{"flattened z", Matrix4{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0, 0, 1}},
		{"repeated column", Matrix4{1, 2, 3, 0, 1, 2, 3, 0, 0, 0, 1, 0, 0, 0, 0, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Inverse()
			assert.False(t, ok)
			assert.Equal(t, Matrix4{}, inv)
		})
	}
}

func TestInverseTransformationMatchesInverse(t *testing.T) {
	origin := WGS84.CartographicToCartesian(Cartographic{Longitude: -2.1, Latitude: 0.6})
	m := EastNorthUpToFixedFrame(origin, WGS84)

	inv, ok := m.Inverse()
	require.True(t, ok)
	assert.True(t, m.InverseTransformation().EqualsEpsilon(inv, 1e-6))
}

func TestMatrix3Inverse(t *testing.T) {
	m := Matrix3{2, 0, 1, 0, 3, 0, 1, 0, 1}
	inv, ok := m.Inverse()
	require.True(t, ok)
	product := inv.Multiply(m)
	identity := Identity3()
	assert.InDeltaSlice(t, identity[:], product[:], 1e-12)

	_, ok = Matrix3{1, 2, 3, 2, 4, 6, 0, 0, 1}.Inverse()
	assert.False(t, ok)
	assert.Equal(t, Matrix3{}, Matrix3{1, 2, 3, 2, 4, 6, 0, 0, 1}.InverseTranspose(), "singular normals fall back to zero")
}

func TestEncodeDouble(t *testing.T) {
	high, low := EncodeDouble(6378137)
	assert.Equal(t, 6356992.0, high)
	assert.Equal(t, 21145.0, low)

	high, low = EncodeDouble(-6378137)
	assert.Equal(t, -6356992.0, high)
	assert.Equal(t, -21145.0, low)

	high, low = EncodeDouble(math.Pi)
	assert.Zero(t, high)
	assert.Equal(t, math.Pi, low)
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1.0, Clamp(3, -1, 1))
	assert.Equal(t, -1.0, Clamp(-3, -1, 1))
	assert.Equal(t, 0.5, Clamp(0.5, -1, 1))
}

func TestEastNorthUpToFixedFrame(t *testing.T) {
	m := EastNorthUpToFixedFrame(Cartesian3{X: WGS84.Radii.X}, WGS84)
	assert.True(t, m.EqualsEpsilon(Matrix4{
		0, 1, 0, 0,
		0, 0, 1, 0,
		1, 0, 0, 0,
		WGS84.Radii.X, 0, 0, 1,
	}, 1e-12))

	pole := EastNorthUpToFixedFrame(Cartesian3{Z: WGS84.Radii.Z}, WGS84)
	assert.True(t, pole.EqualsEpsilon(Matrix4{
		0, 1, 0, 0,
		-1, 0, 0, 0,
		0, 0, 1, 0,
		0, 0, WGS84.Radii.Z, 1,
	}, 1e-12))
}
