package tensor

import "fmt"

// DType is the set of element types a Tensor can carry.
// float32 is the numeric workhorse, int32 carries class labels and
// indices, bool backs comparison masks.
type DType interface {
	~float32 | ~int32 | ~bool
}

// DataType is the runtime tag for a RawTensor's element type.
type DataType uint8

const (
	Float32 DataType = iota
	Int32
	Bool
)

// Size returns the element size in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Bool:
		return 1
	default:
		panic(fmt.Sprintf("unknown dtype %d", dt))
	}
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("dtype(%d)", dt)
	}
}

// inferDataType maps a Go element type to its runtime tag.
func inferDataType[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case bool:
		return Bool
	default:
		panic(fmt.Sprintf("unsupported element type %T", zero))
	}
}
