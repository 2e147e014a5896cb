package headless

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnsupportedMesh = errors.New("unsupported mesh")

const glbHeaderLength = 12

var glbMagic = []byte("glTF")

// MeshInfo describes the shared mesh of a collection
type MeshInfo struct {
	Binary     bool
	Version    string
	ByteLength int
}

type gltfAsset struct {
	Asset struct {
		Version string `json:"version"`
	} `json:"asset"`
}

// Sniffs a glTF mesh definition, either binary (GLB) or JSON
func inspectMesh(data []byte) (*MeshInfo, error) {
	if bytes.HasPrefix(data, glbMagic) {
		if len(data) < glbHeaderLength {
			return nil, fmt.Errorf("%w: glb header truncated", ErrUnsupportedMesh)
		}
		version := binary.LittleEndian.Uint32(data[4:8])
		if version != 1 && version != 2 {
			return nil, fmt.Errorf("%w: glb version %d", ErrUnsupportedMesh, version)
		}
		return &MeshInfo{Binary: true, Version: fmt.Sprintf("%d.0", version), ByteLength: len(data)}, nil
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: neither glb nor gltf json", ErrUnsupportedMesh)
	}
	var asset gltfAsset
	if err := json.Unmarshal(trimmed, &asset); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedMesh, err)
	}
	if asset.Asset.Version == "" {
		return nil, fmt.Errorf("%w: gltf asset version missing", ErrUnsupportedMesh)
	}
	return &MeshInfo{Version: asset.Asset.Version, ByteLength: len(data)}, nil
}
