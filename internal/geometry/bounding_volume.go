package geometry

// Region bounding volume as defined by 3D Tiles: west, south, east, north in radians, heights in meters
type BoundingBox struct {
	West      float64
	South     float64
	East      float64
	North     float64
	MinHeight float64
	MaxHeight float64
}

func NewBoundingBox(west, south, east, north, minHeight, maxHeight float64) *BoundingBox {
	return &BoundingBox{
		West:      west,
		South:     south,
		East:      east,
		North:     north,
		MinHeight: minHeight,
		MaxHeight: maxHeight,
	}
}

// Returns the region in the array layout used by tileset.json
func (b *BoundingBox) GetAsArray() []float64 {
	return []float64{b.West, b.South, b.East, b.North, b.MinHeight, b.MaxHeight}
}

// Returns true if the cartographic position lies inside the region, heights included
func (b *BoundingBox) Contains(c Cartographic) bool {
	return c.Longitude >= b.West && c.Longitude <= b.East &&
		c.Latitude >= b.South && c.Latitude <= b.North &&
		c.Height >= b.MinHeight && c.Height <= b.MaxHeight
}

// BoundingVolume is the volume of a tile content. Only region volumes are modelled; a content
// without a known volume carries a nil Region.
type BoundingVolume struct {
	Region *BoundingBox
}
