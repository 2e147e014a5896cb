package i3dm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
)

type MeshFormat uint32

const (
	// mesh section holds a URI, relative to the tileset base location
	MeshFormatURI MeshFormat = 0
	// mesh section holds the binary mesh definition
	MeshFormatEmbedded MeshFormat = 1
)

func (f MeshFormat) String() string {
	switch f {
	case MeshFormatURI:
		return "uri"
	case MeshFormatEmbedded:
		return "embedded"
	}
	return fmt.Sprintf("unknown(%d)", uint32(f))
}

const (
	Magic   = "i3dm"
	Version = 1

	HeaderLength = 28

	// longitude and latitude, float64 each
	positionRecordLength = 16
	// optional instance id following the position
	idRecordLength = 2
)

type Header struct {
	Magic                    [4]byte
	Version                  uint32
	ByteLength               uint32
	AttributeTableByteLength uint32
	MeshByteLength           uint32
	MeshFormat               MeshFormat
	InstanceCount            uint32
}

var (
	ErrInvalidFormat = errors.New("invalid i3dm content")

	ErrInvalidMagic          = fmt.Errorf("%w: invalid magic", ErrInvalidFormat)
	ErrUnsupportedVersion    = fmt.Errorf("%w: unsupported version", ErrInvalidFormat)
	ErrUnsupportedMeshFormat = fmt.Errorf("%w: unsupported mesh format", ErrInvalidFormat)
	ErrTruncated             = fmt.Errorf("%w: truncated content", ErrInvalidFormat)
	ErrInvalidAttributeTable = fmt.Errorf("%w: invalid attribute table", ErrInvalidFormat)
)

// Returns true if an attribute table section is present. Instance records then carry an explicit id.
func (h *Header) HasAttributeTable() bool {
	return h.AttributeTableByteLength > 0
}

// Returns the size in bytes of one instance record
func (h *Header) RecordLength() int {
	if h.HasAttributeTable() {
		return positionRecordLength + idRecordLength
	}
	return positionRecordLength
}

func SerializeHeader(header *Header) []byte {
	var buffer bytes.Buffer
	_ = binary.Write(&buffer, binary.LittleEndian, header)
	return buffer.Bytes()
}

// Reads and validates the fixed-width header. The byte length field is not checked against the buffer size.
func DeserializeHeader(buffer []byte) (*Header, error) {
	header := Header{}
	reader := bytes.NewReader(buffer)
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTruncated, err)
	}
	if string(header.Magic[:]) != Magic {
		return nil, fmt.Errorf("%w: %q", ErrInvalidMagic, header.Magic[:])
	}
	if header.Version != Version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, header.Version)
	}
	if header.MeshFormat != MeshFormatURI && header.MeshFormat != MeshFormatEmbedded {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedMeshFormat, uint32(header.MeshFormat))
	}
	return &header, nil
}
