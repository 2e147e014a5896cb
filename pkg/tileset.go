package pkg

import "github.com/ecopia-map/cesium_instancer/internal/geometry"

type staticTileset string

func (s staticTileset) BaseURL() string {
	return string(s)
}

// StaticTile is a tile whose content bounding volume is known upfront
type StaticTile struct {
	Volume geometry.BoundingVolume
}

func (t *StaticTile) ContentBoundingVolume() geometry.BoundingVolume {
	return t.Volume
}
