package geometry

import "math"

// Coordinate is a point or vector in a cartesian reference system
type Coordinate struct {
	X float64
	Y float64
	Z float64
}

// Cartographic is a geodetic position, longitude and latitude in radians, height in meters
type Cartographic struct {
	Longitude float64
	Latitude  float64
	Height    float64
}

func (c Coordinate) Add(o Coordinate) Coordinate {
	return Coordinate{X: c.X + o.X, Y: c.Y + o.Y, Z: c.Z + o.Z}
}

func (c Coordinate) Sub(o Coordinate) Coordinate {
	return Coordinate{X: c.X - o.X, Y: c.Y - o.Y, Z: c.Z - o.Z}
}

func (c Coordinate) Scale(f float64) Coordinate {
	return Coordinate{X: c.X * f, Y: c.Y * f, Z: c.Z * f}
}

// Multiplies the coordinates component by component
func (c Coordinate) MulComponents(o Coordinate) Coordinate {
	return Coordinate{X: c.X * o.X, Y: c.Y * o.Y, Z: c.Z * o.Z}
}

func (c Coordinate) Dot(o Coordinate) float64 {
	return c.X*o.X + c.Y*o.Y + c.Z*o.Z
}

func (c Coordinate) Cross(o Coordinate) Coordinate {
	return Coordinate{
		X: c.Y*o.Z - c.Z*o.Y,
		Y: c.Z*o.X - c.X*o.Z,
		Z: c.X*o.Y - c.Y*o.X,
	}
}

func (c Coordinate) Length() float64 {
	return math.Sqrt(c.Dot(c))
}

// Returns the unit vector with the same direction. The zero vector is returned unchanged.
func (c Coordinate) Normalize() Coordinate {
	l := c.Length()
	if l == 0 {
		return c
	}
	return c.Scale(1 / l)
}
