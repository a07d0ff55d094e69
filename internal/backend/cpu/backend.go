// Package cpu implements the tensor.Backend interface with plain Go
// loops. Correctness and readability over raw speed; hot batch loops
// in convolution and pooling fan out through internal/parallel.
package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// CPUBackend executes operations on the host CPU.
type CPUBackend struct {
	device tensor.Device
}

var _ tensor.Backend = (*CPUBackend)(nil)

// New returns a ready CPU backend.
func New() *CPUBackend {
	return &CPUBackend{device: tensor.CPU}
}

func (cpu *CPUBackend) Name() string          { return "cpu" }
func (cpu *CPUBackend) Device() tensor.Device { return cpu.device }

// Add computes a + b with broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub computes a - b with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul computes a * b element-wise with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div computes a / b element-wise with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float32) float32 { return x / y })
}

func (cpu *CPUBackend) binary(name string, a, b *tensor.RawTensor, op func(x, y float32) float32) *tensor.RawTensor {
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: unsupported dtypes %s, %s (only float32)", name, a.DType(), b.DType()))
	}
	outShape, broadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	if !broadcast {
		av, bv := a.AsFloat32(), b.AsFloat32()
		// Sole owner of the buffer: reuse it instead of allocating.
		// The autodiff decorator pins its operands with ForceNonUnique,
		// so recorded tensors never take this path.
		if a.IsUnique() {
			for i := range av {
				av[i] = op(av[i], bv[i])
			}
			return a
		}
		result, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
		if err != nil {
			panic(fmt.Sprintf("%s: %v", name, err))
		}
		rv := result.AsFloat32()
		for i := range rv {
			rv[i] = op(av[i], bv[i])
		}
		return result
	}
	result, err := tensor.NewRaw(outShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	binaryBroadcastFloat32(result, a, b, op)
	return result
}
