package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// AddScalar adds a scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("addScalar", x, scalar, func(v, s float32) float32 { return v + s })
}

// SubScalar subtracts a scalar from every element.
func (cpu *CPUBackend) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("subScalar", x, scalar, func(v, s float32) float32 { return v - s })
}

// MulScalar multiplies every element by a scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("mulScalar", x, scalar, func(v, s float32) float32 { return v * s })
}

// DivScalar divides every element by a scalar.
func (cpu *CPUBackend) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	return cpu.scalarOp("divScalar", x, scalar, func(v, s float32) float32 { return v / s })
}

func (cpu *CPUBackend) scalarOp(name string, x *tensor.RawTensor, scalar any, op func(v, s float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32)", name, x.DType()))
	}
	s, ok := scalar.(float32)
	if !ok {
		panic(fmt.Sprintf("%s: scalar must be float32, got %T", name, scalar))
	}
	// Sole owner of the buffer: reuse it instead of allocating.
	if x.IsUnique() {
		src := x.AsFloat32()
		for i := range src {
			src[i] = op(src[i], s)
		}
		return x
	}
	result, err := tensor.NewRaw(x.Shape(), tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()
	for i := range dst {
		dst[i] = op(src[i], s)
	}
	return result
}
