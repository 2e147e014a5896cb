package pkg

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/ecopia-map/cesium_instancer/internal/i3dm"
	"github.com/shopspring/decimal"
)

var ErrInvalidDescription = errors.New("invalid instances description")

var (
	maxLongitude = decimal.NewFromInt(180)
	maxLatitude  = decimal.NewFromInt(90)
)

// PackDescription is the json document the pack command turns into a tile
type PackDescription struct {
	Mesh           PackMesh               `json:"mesh"`
	AttributeTable map[string]interface{} `json:"attribute_table,omitempty"`
	Instances      []PackInstance         `json:"instances"`
}

// PackMesh references the shared mesh by uri, or names a file whose bytes are embedded
type PackMesh struct {
	URI  string `json:"uri,omitempty"`
	File string `json:"file,omitempty"`
}

// PackInstance is one instance position in degrees. The id is written only along an attribute table.
type PackInstance struct {
	Longitude decimal.Decimal `json:"longitude"`
	Latitude  decimal.Decimal `json:"latitude"`
	ID        uint16          `json:"id"`
}

// Reads the description at filePath and encodes it. Mesh files are relative to the description.
func PackFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	var description PackDescription
	if err := json.Unmarshal(data, &description); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalidDescription, filePath, err)
	}
	return Pack(&description, filepath.Dir(filePath))
}

func Pack(description *PackDescription, dir string) ([]byte, error) {
	mesh, err := packMesh(description.Mesh, dir)
	if err != nil {
		return nil, err
	}

	instances := make([]i3dm.InstanceRecord, len(description.Instances))
	for i, instance := range description.Instances {
		if instance.Longitude.Abs().GreaterThan(maxLongitude) || instance.Latitude.Abs().GreaterThan(maxLatitude) {
			return nil, fmt.Errorf("%w: instance %d at (%s, %s) is out of range",
				ErrInvalidDescription, i, instance.Longitude, instance.Latitude)
		}
		instances[i] = i3dm.InstanceRecord{
			Longitude: toRadians(instance.Longitude),
			Latitude:  toRadians(instance.Latitude),
			ID:        instance.ID,
			HasID:     description.AttributeTable != nil,
		}
	}

	return i3dm.Encode(i3dm.EncodeOptions{
		AttributeTable: description.AttributeTable,
		Mesh:           mesh,
		Instances:      instances,
	})
}

func packMesh(mesh PackMesh, dir string) (i3dm.MeshPayload, error) {
	switch {
	case mesh.URI != "" && mesh.File != "":
		return i3dm.MeshPayload{}, fmt.Errorf("%w: mesh needs either a uri or a file, not both", ErrInvalidDescription)
	case mesh.URI != "":
		return i3dm.MeshPayload{Format: i3dm.MeshFormatURI, URI: mesh.URI}, nil
	case mesh.File != "":
		meshPath := mesh.File
		if !filepath.IsAbs(meshPath) {
			meshPath = filepath.Join(dir, meshPath)
		}
		data, err := os.ReadFile(meshPath)
		if err != nil {
			return i3dm.MeshPayload{}, err
		}
		return i3dm.MeshPayload{Format: i3dm.MeshFormatEmbedded, Embedded: data}, nil
	}
	return i3dm.MeshPayload{}, fmt.Errorf("%w: missing mesh", ErrInvalidDescription)
}

func toRadians(degrees decimal.Decimal) float64 {
	return degrees.InexactFloat64() * math.Pi / 180
}
