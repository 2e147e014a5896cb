package i3dm

import (
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// Document is the parsed attribute table: property name to raw JSON value
type Document map[string]json.RawMessage

// MeshPayload is the shared mesh, either a URI to resolve or the embedded binary definition
type MeshPayload struct {
	Format   MeshFormat
	URI      string
	Embedded []byte
}

// InstanceRecord is one raw instance as stored in the content
type InstanceRecord struct {
	Longitude float64 // radians
	Latitude  float64 // radians
	ID        uint16
	HasID     bool
}

// Decoded is the full result of a successful decode
type Decoded struct {
	Header         Header
	AttributeTable Document // nil when the content has no attribute table
	Mesh           MeshPayload
	Instances      []InstanceRecord
}

// Decodes the content found at byteOffset in buffer. Any validation failure aborts the whole decode and
// no partial result is returned. All errors wrap ErrInvalidFormat.
func Decode(buffer []byte, byteOffset int) (*Decoded, error) {
	if byteOffset < 0 || byteOffset > len(buffer) {
		return nil, fmt.Errorf("%w: byte offset %d outside buffer of %d bytes", ErrTruncated, byteOffset, len(buffer))
	}
	data := buffer[byteOffset:]

	header, err := DeserializeHeader(data)
	if err != nil {
		return nil, err
	}

	offset := uint64(HeaderLength)
	attributeTableBytes, err := section(data, offset, uint64(header.AttributeTableByteLength), "attribute table")
	if err != nil {
		return nil, err
	}
	offset += uint64(header.AttributeTableByteLength)

	meshBytes, err := section(data, offset, uint64(header.MeshByteLength), "mesh")
	if err != nil {
		return nil, err
	}
	offset += uint64(header.MeshByteLength)

	recordsLength := uint64(header.InstanceCount) * uint64(header.RecordLength())
	recordBytes, err := section(data, offset, recordsLength, "instance records")
	if err != nil {
		return nil, err
	}

	decoded := &Decoded{Header: *header}

	if header.HasAttributeTable() {
		document, err := parseDocument(attributeTableBytes)
		if err != nil {
			return nil, err
		}
		decoded.AttributeTable = document
	}

	decoded.Mesh, err = parseMesh(header.MeshFormat, meshBytes)
	if err != nil {
		return nil, err
	}

	decoded.Instances = parseRecords(recordBytes, int(header.InstanceCount), header.HasAttributeTable())

	return decoded, nil
}

func section(data []byte, offset, length uint64, name string) ([]byte, error) {
	end := offset + length
	if end > uint64(len(data)) {
		return nil, fmt.Errorf("%w: %s section needs bytes [%d, %d) of %d: %w",
			ErrTruncated, name, offset, end, len(data), io.ErrUnexpectedEOF)
	}
	return data[offset:end], nil
}

func parseDocument(data []byte) (Document, error) {
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: not valid UTF-8", ErrInvalidAttributeTable)
	}
	document := Document{}
	if err := json.Unmarshal(data, &document); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAttributeTable, err)
	}
	if document == nil {
		// the literal null still denotes a present, empty table
		document = Document{}
	}
	return document, nil
}

func parseMesh(format MeshFormat, data []byte) (MeshPayload, error) {
	if format == MeshFormatURI {
		if !utf8.Valid(data) {
			return MeshPayload{}, fmt.Errorf("%w: mesh uri is not valid UTF-8", ErrInvalidFormat)
		}
		// writers may pad the uri to a 4 byte boundary
		uri := string(data)
		for len(uri) > 0 && (uri[len(uri)-1] == ' ' || uri[len(uri)-1] == 0) {
			uri = uri[:len(uri)-1]
		}
		return MeshPayload{Format: format, URI: uri}, nil
	}
	embedded := make([]byte, len(data))
	copy(embedded, data)
	return MeshPayload{Format: format, Embedded: embedded}, nil
}

func parseRecords(data []byte, count int, withID bool) []InstanceRecord {
	records := make([]InstanceRecord, count)
	offset := 0
	for i := range records {
		records[i].Longitude = math.Float64frombits(binary.LittleEndian.Uint64(data[offset:]))
		records[i].Latitude = math.Float64frombits(binary.LittleEndian.Uint64(data[offset+8:]))
		offset += positionRecordLength
		if withID {
			records[i].ID = binary.LittleEndian.Uint16(data[offset:])
			records[i].HasID = true
			offset += idRecordLength
		}
	}
	return records
}
