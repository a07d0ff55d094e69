// Copyright 2026 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor is the public API for tensor operations in Strand.
//
// It re-exports the core types:
//   - Tensor[T, B]: generic type-safe tensor
//   - RawTensor: dtype-erased storage for backend code
//   - Backend: the compute interface backends implement
//   - Shape, DataType, Device: core definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](backend, 2, 3)
//	y := tensor.Ones[float32](backend, 2, 3)
//	z := x.Add(y)
package tensor

import (
	"math/rand"

	"github.com/strand-ml/strand/internal/tensor"
)

// DType constrains tensor element types: float32, int32, bool.
type DType = tensor.DType

// DataType is the runtime tag of a tensor's element type.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Int32   DataType = tensor.Int32
	Bool    DataType = tensor.Bool
)

// Device identifies where tensor data lives.
type Device = tensor.Device

// Device constants.
const (
	CPU Device = tensor.CPU
)

// Shape is the dimension list of a tensor.
type Shape = tensor.Shape

// Backend is the compute interface; see the backend packages for
// implementations and the autodiff package for the recording decorator.
type Backend = tensor.Backend

// RawTensor is the low-level refcounted storage. Most code should use
// Tensor[T, B] instead.
type RawTensor = tensor.RawTensor

// NewRaw allocates zeroed storage of the given shape and dtype.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// Tensor is a typed handle over a RawTensor bound to a backend.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// New wraps an existing RawTensor; the raw dtype must match T.
func New[T DType, B Backend](raw *RawTensor, backend B) Tensor[T, B] {
	return tensor.New[T](raw, backend)
}

// FromSlice builds a tensor from a flat slice in row-major order.
func FromSlice[T DType, B Backend](backend B, data []T, shape ...int) (Tensor[T, B], error) {
	return tensor.FromSlice(backend, data, shape...)
}

// MustFromSlice is FromSlice that panics on error.
func MustFromSlice[T DType, B Backend](backend B, data []T, shape ...int) Tensor[T, B] {
	return tensor.MustFromSlice(backend, data, shape...)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](backend B, shape ...int) Tensor[T, B] {
	return tensor.Zeros[T](backend, shape...)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](backend B, shape ...int) Tensor[T, B] {
	return tensor.Ones[T](backend, shape...)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](backend B, value T, shape ...int) Tensor[T, B] {
	return tensor.Full(backend, value, shape...)
}

// Randn creates a float32 tensor drawn from N(0, 1).
func Randn[B Backend](backend B, rng *rand.Rand, shape ...int) Tensor[float32, B] {
	return tensor.Randn(backend, rng, shape...)
}

// Rand creates a float32 tensor drawn uniformly from [0, 1).
func Rand[B Backend](backend B, rng *rand.Rand, shape ...int) Tensor[float32, B] {
	return tensor.Rand(backend, rng, shape...)
}

// Arange creates an int32 tensor of [start, end).
func Arange[B Backend](backend B, start, end int32) Tensor[int32, B] {
	return tensor.Arange(backend, start, end)
}

// BroadcastShapes resolves two shapes under NumPy broadcasting rules.
// The bool reports whether any broadcasting happened.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	return tensor.BroadcastShapes(a, b)
}
