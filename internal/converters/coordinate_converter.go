package converters

import (
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
)

type CoordinateConverter interface {
	// Converts a geodetic position on the WGS84 ellipsoid to earth-centered, earth-fixed cartesian coordinates
	ConvertToWGS84Cartesian(coord geometry.Cartographic) (geometry.Coordinate, error)
	// Returns the transform from the local east-north-up frame at origin to the earth-fixed frame
	EastNorthUpToFixedFrame(origin geometry.Coordinate) geometry.Matrix4
	Cleanup()
}
