package proj4_converter

import (
	"fmt"
	"sync"

	"github.com/ecopia-map/cesium_instancer/internal/converters"
	"github.com/ecopia-map/cesium_instancer/internal/converters/ellipsoid_converter"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
	"github.com/golang/glog"
	proj "github.com/xeonx/proj4"
)

const (
	geodeticProjection   = "+proj=longlat +datum=WGS84 +no_defs"
	geocentricProjection = "+proj=geocent +datum=WGS84 +units=m +no_defs"
)

// Converts geodetic positions to geocentric coordinates through the proj.4 library. Local frames are
// still derived from the WGS84 surface normal since proj.4 does not expose it.
type proj4CoordinateConverter struct {
	*ellipsoid_converter.EllipsoidConverter
	geodetic   *proj.Proj
	geocentric *proj.Proj
	closed     bool
	sync.Mutex
}

func NewProj4CoordinateConverter() (converters.CoordinateConverter, error) {
	geodetic, err := proj.InitPlus(geodeticProjection)
	if err != nil {
		return nil, fmt.Errorf("unable to init geodetic projection: %w", err)
	}
	geocentric, err := proj.InitPlus(geocentricProjection)
	if err != nil {
		geodetic.Close()
		return nil, fmt.Errorf("unable to init geocentric projection: %w", err)
	}

	return &proj4CoordinateConverter{
		EllipsoidConverter: ellipsoid_converter.NewEllipsoidConverter(ellipsoid_converter.WGS84),
		geodetic:           geodetic,
		geocentric:         geocentric,
	}, nil
}

// Converts the coordinate with proj.4. Longitude and latitude are expected in radians, as required by
// proj.4 for lat/long projections.
func (c *proj4CoordinateConverter) ConvertToWGS84Cartesian(coord geometry.Cartographic) (geometry.Coordinate, error) {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return geometry.Coordinate{}, fmt.Errorf("proj4 converter already cleaned up")
	}

	x, y, z := []float64{coord.Longitude}, []float64{coord.Latitude}, []float64{coord.Height}
	if err := proj.TransformRaw(c.geodetic, c.geocentric, x, y, z); err != nil {
		return geometry.Coordinate{}, fmt.Errorf("proj4 transform failed: %w", err)
	}

	return geometry.Coordinate{X: x[0], Y: y[0], Z: z[0]}, nil
}

// Releases the proj.4 projections
func (c *proj4CoordinateConverter) Cleanup() {
	c.Lock()
	defer c.Unlock()

	if c.closed {
		return
	}
	c.geodetic.Close()
	c.geocentric.Close()
	c.closed = true
	glog.V(1).Infoln("proj4 projections released")
}
