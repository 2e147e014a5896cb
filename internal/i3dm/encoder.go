package i3dm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ecopia-map/cesium_instancer/tools"
)

// EncodeOptions describes the content to serialize
type EncodeOptions struct {
	// Properties of the attribute table. When nil no attribute table is written and
	// instance records carry no explicit id.
	AttributeTable map[string]interface{}
	Mesh           MeshPayload
	Instances      []InstanceRecord
}

// Serializes the content in the i3dm binary layout
func Encode(opts EncodeOptions) ([]byte, error) {
	var attributeTableBytes []byte
	if opts.AttributeTable != nil {
		table, err := generateAttributeTableJsonContent(opts.AttributeTable)
		if err != nil {
			return nil, err
		}
		attributeTableBytes = []byte(table)
	}

	var meshBytes []byte
	switch opts.Mesh.Format {
	case MeshFormatURI:
		meshBytes = []byte(opts.Mesh.URI)
	case MeshFormatEmbedded:
		meshBytes = opts.Mesh.Embedded
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMeshFormat, uint32(opts.Mesh.Format))
	}

	withID := len(attributeTableBytes) > 0
	recordLength := positionRecordLength
	if withID {
		recordLength += idRecordLength
	}
	byteLength := HeaderLength + len(attributeTableBytes) + len(meshBytes) + len(opts.Instances)*recordLength

	outputByte := make([]byte, 0, byteLength)
	outputByte = append(outputByte, []byte(Magic)...)                                         // magic
	outputByte = append(outputByte, tools.ConvertIntToByteArray(Version)...)                  // version number
	outputByte = append(outputByte, tools.ConvertIntToByteArray(byteLength)...)               // byte length
	outputByte = append(outputByte, tools.ConvertIntToByteArray(len(attributeTableBytes))...) // attribute table length
	outputByte = append(outputByte, tools.ConvertIntToByteArray(len(meshBytes))...)           // mesh length
	outputByte = append(outputByte, tools.ConvertIntToByteArray(int(opts.Mesh.Format))...)    // mesh format
	outputByte = append(outputByte, tools.ConvertIntToByteArray(len(opts.Instances))...)      // instance count
	outputByte = append(outputByte, attributeTableBytes...)                                   // attribute table
	outputByte = append(outputByte, meshBytes...)                                             // mesh uri or binary
	for _, instance := range opts.Instances {
		outputByte = append(outputByte, tools.ConvertFloat64ToByteArray(instance.Longitude)...)
		outputByte = append(outputByte, tools.ConvertFloat64ToByteArray(instance.Latitude)...)
		if withID {
			outputByte = append(outputByte, tools.ConvertUint16ToByteArray(instance.ID)...)
		}
	}

	return outputByte, nil
}

// Generates the json representation of the attribute table, padded with spaces to a 4 byte boundary
func generateAttributeTableJsonContent(properties map[string]interface{}) (string, error) {
	data, err := json.Marshal(properties)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidAttributeTable, err)
	}
	sb := string(data)
	if paddingSize := len(sb) % 4; paddingSize != 0 {
		sb += strings.Repeat(" ", 4-paddingSize)
	}
	return sb, nil
}
