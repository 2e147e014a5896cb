package placement

import (
	"fmt"

	"github.com/ecopia-map/cesium_instancer/internal/converters"
	"github.com/ecopia-map/cesium_instancer/internal/geometry"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/golang/glog"
)

// Instance is one placed copy of the shared mesh
type Instance struct {
	Transform geometry.Matrix4
	ID        uint32
}

// Computer converts raw instance records into world transforms
type Computer struct {
	coordinateConverter converters.CoordinateConverter
	elevationCorrector  converters.ElevationCorrector
}

func NewComputer(coordinateConverter converters.CoordinateConverter, elevationCorrector converters.ElevationCorrector) *Computer {
	return &Computer{
		coordinateConverter: coordinateConverter,
		elevationCorrector:  elevationCorrector,
	}
}

// Computes one instance per record, preserving order. Instances carry the explicit record id when the
// content has an attribute table, their index otherwise.
func (c *Computer) Compute(records []i3dm.InstanceRecord, hasAttributeTable bool) ([]Instance, error) {
	instances := make([]Instance, len(records))
	for i, record := range records {
		height := 0.0
		if c.elevationCorrector != nil {
			height = c.elevationCorrector.CorrectElevation(record.Longitude, record.Latitude, height)
		}

		position, err := c.coordinateConverter.ConvertToWGS84Cartesian(geometry.Cartographic{
			Longitude: record.Longitude,
			Latitude:  record.Latitude,
			Height:    height,
		})
		if err != nil {
			return nil, fmt.Errorf("instance %d: %w", i, err)
		}

		instances[i].Transform = c.coordinateConverter.EastNorthUpToFixedFrame(position)
		if hasAttributeTable {
			instances[i].ID = uint32(record.ID)
		} else {
			instances[i].ID = uint32(i)
		}

		if glog.V(3) {
			glog.Infof("instance %d id %d lon %f lat %f -> %+v", i, instances[i].ID, record.Longitude, record.Latitude, position)
		}
	}
	return instances, nil
}
