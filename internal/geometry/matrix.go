package geometry

// Matrix4 is a 4x4 affine matrix stored in column-major order, the layout used by glTF and 3D Tiles
type Matrix4 [16]float64

var IdentityMatrix4 = Matrix4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 1, 0,
	0, 0, 0, 1,
}

// Builds a matrix whose first three columns are the given axes and whose fourth column is the origin
func NewMatrix4FromAxes(xAxis, yAxis, zAxis, origin Coordinate) Matrix4 {
	return Matrix4{
		xAxis.X, xAxis.Y, xAxis.Z, 0,
		yAxis.X, yAxis.Y, yAxis.Z, 0,
		zAxis.X, zAxis.Y, zAxis.Z, 0,
		origin.X, origin.Y, origin.Z, 1,
	}
}

// Returns the element at the given row and column
func (m *Matrix4) At(row, col int) float64 {
	return m[col*4+row]
}

// Returns the given column as a coordinate, dropping the w component
func (m *Matrix4) Column(col int) Coordinate {
	return Coordinate{X: m[col*4], Y: m[col*4+1], Z: m[col*4+2]}
}

func (m *Matrix4) Translation() Coordinate {
	return m.Column(3)
}

// Transforms a point, applying the translation
func (m *Matrix4) MultiplyPoint(p Coordinate) Coordinate {
	return Coordinate{
		X: m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12],
		Y: m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13],
		Z: m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14],
	}
}
