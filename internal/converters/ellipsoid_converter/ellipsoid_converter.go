package ellipsoid_converter

import (
	"math"

	"github.com/ecopia-map/cesium_instancer/internal/converters"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
)

const epsilon14 = 1e-14

// Ellipsoid is a triaxial reference surface described by its radii in meters
type Ellipsoid struct {
	Radii               geometry.Coordinate
	RadiiSquared        geometry.Coordinate
	OneOverRadiiSquared geometry.Coordinate
}

func NewEllipsoid(x, y, z float64) *Ellipsoid {
	return &Ellipsoid{
		Radii:               geometry.Coordinate{X: x, Y: y, Z: z},
		RadiiSquared:        geometry.Coordinate{X: x * x, Y: y * y, Z: z * z},
		OneOverRadiiSquared: geometry.Coordinate{X: 1 / (x * x), Y: 1 / (y * y), Z: 1 / (z * z)},
	}
}

// WGS84 reference ellipsoid
var WGS84 = NewEllipsoid(6378137.0, 6378137.0, 6356752.3142451793)

// Returns the normal to the ellipsoid surface at the given geodetic position
func (e *Ellipsoid) GeodeticSurfaceNormalCartographic(c geometry.Cartographic) geometry.Coordinate {
	cosLatitude := math.Cos(c.Latitude)
	return geometry.Coordinate{
		X: cosLatitude * math.Cos(c.Longitude),
		Y: cosLatitude * math.Sin(c.Longitude),
		Z: math.Sin(c.Latitude),
	}.Normalize()
}

// Returns the normal to the ellipsoid surface passing through the given cartesian point
func (e *Ellipsoid) GeodeticSurfaceNormal(p geometry.Coordinate) geometry.Coordinate {
	return p.MulComponents(e.OneOverRadiiSquared).Normalize()
}

func (e *Ellipsoid) CartographicToCartesian(c geometry.Cartographic) geometry.Coordinate {
	n := e.GeodeticSurfaceNormalCartographic(c)
	k := e.RadiiSquared.MulComponents(n)
	gamma := math.Sqrt(n.Dot(k))
	return k.Scale(1 / gamma).Add(n.Scale(c.Height))
}

// EllipsoidConverter computes positions and local frames analytically on a reference ellipsoid
type EllipsoidConverter struct {
	ellipsoid *Ellipsoid
}

func NewEllipsoidConverter(ellipsoid *Ellipsoid) *EllipsoidConverter {
	if ellipsoid == nil {
		ellipsoid = WGS84
	}
	return &EllipsoidConverter{ellipsoid: ellipsoid}
}

// Builds a converter on the WGS84 ellipsoid
func NewWGS84Converter() converters.CoordinateConverter {
	return NewEllipsoidConverter(WGS84)
}

func (c *EllipsoidConverter) GetEllipsoid() *Ellipsoid {
	return c.ellipsoid
}

func (c *EllipsoidConverter) ConvertToWGS84Cartesian(coord geometry.Cartographic) (geometry.Coordinate, error) {
	return c.ellipsoid.CartographicToCartesian(coord), nil
}

func (c *EllipsoidConverter) EastNorthUpToFixedFrame(origin geometry.Coordinate) geometry.Matrix4 {
	var east, north, up geometry.Coordinate

	if math.Abs(origin.X) < epsilon14 && math.Abs(origin.Y) < epsilon14 {
		// at the poles east is undefined, pick +Y and flip up on the southern hemisphere
		sign := 1.0
		if origin.Z < 0 {
			sign = -1.0
		}
		east = geometry.Coordinate{X: 0, Y: 1, Z: 0}
		up = geometry.Coordinate{X: 0, Y: 0, Z: sign}
	} else {
		up = c.ellipsoid.GeodeticSurfaceNormal(origin)
		east = geometry.Coordinate{X: -origin.Y, Y: origin.X, Z: 0}.Normalize()
	}
	north = up.Cross(east)

	return geometry.NewMatrix4FromAxes(east, north, up, origin)
}

func (c *EllipsoidConverter) Cleanup() {}
