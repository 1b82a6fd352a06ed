package uniform

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"
)

// DataType is the GLSL type of a uniform.
type DataType int

const (
	DataTypeFloat DataType = iota
	DataTypeVec2
	DataTypeVec3
	DataTypeVec4
	DataTypeInt
	DataTypeIVec2
	DataTypeIVec3
	DataTypeIVec4
	DataTypeBool
	DataTypeMat2
	DataTypeMat3
	DataTypeMat4
)

var dataTypeNames = map[string]DataType{
	"float": DataTypeFloat,
	"vec2":  DataTypeVec2,
	"vec3":  DataTypeVec3,
	"vec4":  DataTypeVec4,
	"int":   DataTypeInt,
	"ivec2": DataTypeIVec2,
	"ivec3": DataTypeIVec3,
	"ivec4": DataTypeIVec4,
	"bool":  DataTypeBool,
	"mat2":  DataTypeMat2,
	"mat3":  DataTypeMat3,
	"mat4":  DataTypeMat4,
}

// ParseDataType maps a GLSL type name to a DataType. Samplers and structs are not block
// member types and report false.
//
// Parameters:
//   - glslType: the GLSL type keyword
//
// Returns:
//   - DataType: the data type
//   - bool: false when the type cannot live in a std140 block here
func ParseDataType(glslType string) (DataType, bool) {
	t, ok := dataTypeNames[glslType]
	return t, ok
}

func (t DataType) String() string {
	for name, v := range dataTypeNames {
		if v == t {
			return name
		}
	}
	return fmt.Sprintf("DataType(%d)", int(t))
}

// Std140Layout returns the base alignment and size of one element of the type under std140.
//
// Returns:
//   - int: the base alignment in bytes
//   - int: the size in bytes
func (t DataType) Std140Layout() (align, size int) {
	switch t {
	case DataTypeFloat, DataTypeInt, DataTypeBool:
		return 4, 4
	case DataTypeVec2, DataTypeIVec2:
		return 8, 8
	case DataTypeVec3, DataTypeIVec3:
		return 16, 12
	case DataTypeVec4, DataTypeIVec4:
		return 16, 16
	case DataTypeMat2:
		return 16, 32
	case DataTypeMat3:
		return 16, 48
	case DataTypeMat4:
		return 16, 64
	default:
		return 4, 4
	}
}

// Std140ArrayStride returns the stride between array elements, rounded up to 16 bytes.
func (t DataType) Std140ArrayStride() int {
	_, size := t.Std140Layout()
	return (size + 15) / 16 * 16
}

func putFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

func putFloat32s(buf []byte, offset int, vs ...float32) {
	for i, v := range vs {
		putFloat32(buf, offset+i*4, v)
	}
}

func putInt32(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}

// mat3Std140 expands a column-major 3x3 matrix into three vec4-padded columns.
func mat3Std140(m common.Matrix3) [12]float32 {
	return [12]float32{
		float32(m[0]), float32(m[1]), float32(m[2]), 0,
		float32(m[3]), float32(m[4]), float32(m[5]), 0,
		float32(m[6]), float32(m[7]), float32(m[8]), 0,
	}
}

// PutValue encodes v as type t at offset using std140 rules. Accepted Go types are float32,
// float64, int, int32, bool, fixed-size float32/int32 arrays of the matching length,
// common.Cartesian3, common.Cartesian4, common.Matrix3, common.Matrix4 and gpu.Color.
//
// Parameters:
//   - buf: the destination block bytes
//   - offset: the member offset in buf
//   - t: the member data type
//   - v: the value
//
// Returns:
//   - error: an error if v cannot be encoded as t or does not fit
func PutValue(buf []byte, offset int, t DataType, v any) error {
	_, size := t.Std140Layout()
	if t == DataTypeMat3 {
		size = 44
	}
	if offset < 0 || offset+size > len(buf) {
		return fmt.Errorf("uniform: %s at offset %d overflows block of %d bytes", t, offset, len(buf))
	}

	switch t {
	case DataTypeFloat:
		f, ok := toFloat(v)
		if !ok {
			return typeError(t, v)
		}
		putFloat32(buf, offset, f)
	case DataTypeInt, DataTypeBool:
		i, ok := toInt(v)
		if !ok {
			return typeError(t, v)
		}
		putInt32(buf, offset, i)
	case DataTypeVec2:
		switch x := v.(type) {
		case [2]float32:
			putFloat32s(buf, offset, x[:]...)
		case [2]float64:
			putFloat32s(buf, offset, float32(x[0]), float32(x[1]))
		default:
			return typeError(t, v)
		}
	case DataTypeVec3:
		switch x := v.(type) {
		case [3]float32:
			putFloat32s(buf, offset, x[:]...)
		case common.Cartesian3:
			f := x.Float32()
			putFloat32s(buf, offset, f[:]...)
		default:
			return typeError(t, v)
		}
	case DataTypeVec4:
		switch x := v.(type) {
		case [4]float32:
			putFloat32s(buf, offset, x[:]...)
		case common.Cartesian4:
			f := x.Float32()
			putFloat32s(buf, offset, f[:]...)
		case gpu.Color:
			putFloat32s(buf, offset, x.R, x.G, x.B, x.A)
		default:
			return typeError(t, v)
		}
	case DataTypeIVec2, DataTypeIVec3, DataTypeIVec4:
		var ints []int32
		switch x := v.(type) {
		case [2]int32:
			ints = x[:]
		case [3]int32:
			ints = x[:]
		case [4]int32:
			ints = x[:]
		default:
			return typeError(t, v)
		}
		if len(ints) != int(t-DataTypeInt)+1 {
			return typeError(t, v)
		}
		for i, n := range ints {
			putInt32(buf, offset+i*4, n)
		}
	case DataTypeMat2:
		x, ok := v.([4]float32)
		if !ok {
			return typeError(t, v)
		}
		putFloat32s(buf, offset, x[0], x[1], 0, 0, x[2], x[3])
	case DataTypeMat3:
		var m common.Matrix3
		switch x := v.(type) {
		case common.Matrix3:
			m = x
		case [9]float32:
			for i := range x {
				m[i] = float64(x[i])
			}
		default:
			return typeError(t, v)
		}
		cols := mat3Std140(m)
		putFloat32s(buf, offset, cols[:11]...)
	case DataTypeMat4:
		switch x := v.(type) {
		case common.Matrix4:
			f := x.Float32()
			putFloat32s(buf, offset, f[:]...)
		case [16]float32:
			putFloat32s(buf, offset, x[:]...)
		default:
			return typeError(t, v)
		}
	default:
		return typeError(t, v)
	}
	return nil
}

func toFloat(v any) (float32, bool) {
	switch x := v.(type) {
	case float32:
		return x, true
	case float64:
		return float32(x), true
	case int:
		return float32(x), true
	case int32:
		return float32(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func toInt(v any) (int32, bool) {
	switch x := v.(type) {
	case int:
		return int32(x), true
	case int32:
		return x, true
	case uint32:
		return int32(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	}
	return 0, false
}

func typeError(t DataType, v any) error {
	return fmt.Errorf("uniform: cannot encode %T as %s", v, t)
}
