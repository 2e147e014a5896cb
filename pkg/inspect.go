package pkg

import (
	"context"
	"math"
	"sort"

	"github.com/ecopia-map/cesium_instancer/internal/fetch"
	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/shopspring/decimal"
)

// InspectReport summarizes a decoded tile, positions in degrees
type InspectReport struct {
	URL           string              `json:"url"`
	Version       uint32              `json:"version"`
	ByteLength    uint32              `json:"byte_length"`
	InstanceCount uint32              `json:"instance_count"`
	MeshFormat    string              `json:"mesh_format"`
	MeshURI       string              `json:"mesh_uri,omitempty"`
	MeshBytes     int                 `json:"mesh_bytes,omitempty"`
	Properties    []string            `json:"properties,omitempty"`
	Instances     []InspectedInstance `json:"instances"`
}

type InspectedInstance struct {
	ID        *uint16         `json:"id,omitempty"`
	Longitude decimal.Decimal `json:"longitude"`
	Latitude  decimal.Decimal `json:"latitude"`
}

// Fetches and decodes the tile at url. At most maxInstances instances are reported, all of them
// when negative, with their degrees rounded to precision decimal places.
func Inspect(ctx context.Context, load fetch.LoadFunc, url string, maxInstances int, precision int32) (*InspectReport, error) {
	payload, err := load(ctx, url)
	if err != nil {
		return nil, err
	}
	decoded, err := i3dm.Decode(payload, 0)
	if err != nil {
		return nil, err
	}

	report := &InspectReport{
		URL:           url,
		Version:       decoded.Header.Version,
		ByteLength:    decoded.Header.ByteLength,
		InstanceCount: decoded.Header.InstanceCount,
		MeshFormat:    decoded.Mesh.Format.String(),
		MeshURI:       decoded.Mesh.URI,
		MeshBytes:     len(decoded.Mesh.Embedded),
	}
	for name := range decoded.AttributeTable {
		report.Properties = append(report.Properties, name)
	}
	sort.Strings(report.Properties)

	records := decoded.Instances
	if maxInstances >= 0 && maxInstances < len(records) {
		records = records[:maxInstances]
	}
	report.Instances = make([]InspectedInstance, len(records))
	for i, record := range records {
		report.Instances[i] = InspectedInstance{
			Longitude: toDegrees(record.Longitude, precision),
			Latitude:  toDegrees(record.Latitude, precision),
		}
		if record.HasID {
			id := record.ID
			report.Instances[i].ID = &id
		}
	}
	return report, nil
}

func toDegrees(radians float64, precision int32) decimal.Decimal {
	return decimal.NewFromFloat(radians * 180 / math.Pi).Round(precision)
}
