package common

// MapProjection maps cartographic positions into the 2D/Columbus View coordinate space and
// back.
type MapProjection interface {
	// Ellipsoid returns the ellipsoid the projection is defined against.
	//
	// Returns:
	//   - Ellipsoid: the projection ellipsoid
	Ellipsoid() Ellipsoid

	// Project converts a cartographic position to projected map coordinates in meters.
	//
	// Parameters:
	//   - c: the cartographic position
	//
	// Returns:
	//   - Cartesian3: x east, y north, z height
	Project(c Cartographic) Cartesian3

	// Unproject converts projected map coordinates back to a cartographic position.
	//
	// Parameters:
	//   - p: x east, y north, z height in meters
	//
	// Returns:
	//   - Cartographic: the unprojected position (not clamped to the valid domain)
	Unproject(p Cartesian3) Cartographic
}

// GeographicProjection is the equirectangular projection that scales longitude and latitude
// by the ellipsoid's maximum radius.
type GeographicProjection struct {
	ellipsoid            Ellipsoid
	semimajorAxis        float64
	oneOverSemimajorAxis float64
}

var _ MapProjection = &GeographicProjection{}

// NewGeographicProjection creates a geographic projection over the given ellipsoid.
func NewGeographicProjection(e Ellipsoid) *GeographicProjection {
	a := e.MaximumRadius()
	return &GeographicProjection{
		ellipsoid:            e,
		semimajorAxis:        a,
		oneOverSemimajorAxis: 1 / a,
	}
}

func (g *GeographicProjection) Ellipsoid() Ellipsoid {
	return g.ellipsoid
}

func (g *GeographicProjection) Project(c Cartographic) Cartesian3 {
	return Cartesian3{
		X: c.Longitude * g.semimajorAxis,
		Y: c.Latitude * g.semimajorAxis,
		Z: c.Height,
	}
}

func (g *GeographicProjection) Unproject(p Cartesian3) Cartographic {
	return Cartographic{
		Longitude: p.X * g.oneOverSemimajorAxis,
		Latitude:  p.Y * g.oneOverSemimajorAxis,
		Height:    p.Z,
	}
}
