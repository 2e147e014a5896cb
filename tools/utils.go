package tools

import (
	"encoding/binary"
	"encoding/json"
	"math"
)

func FmtJSONString(v interface{}) string {
	data, err := json.Marshal(v)
	if err != nil {
		return "marshal data fail"
	}
	return string(data)
}

const (
	FloatMin  = 0.000001
	RadiusMin = float64(0.0000000001)
)

func IsFloatEqual(f1, f2 float64) bool {
	return math.Abs(f1-f2) < FloatMin
}

func IsRadiusEqual(r1, r2 float64) bool {
	return math.Abs(r1-r2) < RadiusMin
}

// Converts the int to its little endian uint32 representation
func ConvertIntToByteArray(i int) []byte {
	return binary.LittleEndian.AppendUint32(nil, uint32(i))
}

// Converts the uint16 to its little endian representation
func ConvertUint16ToByteArray(i uint16) []byte {
	return binary.LittleEndian.AppendUint16(nil, i)
}

// Converts the float64 to its little endian IEEE 754 representation
func ConvertFloat64ToByteArray(f float64) []byte {
	return binary.LittleEndian.AppendUint64(nil, math.Float64bits(f))
}
