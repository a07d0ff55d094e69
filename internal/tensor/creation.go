package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// Zeros returns a tensor filled with zero values.
func Zeros[T DType, B Backend](backend B, shape ...int) Tensor[T, B] {
	raw, err := NewRaw(Shape(shape), inferDataType[T](), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("zeros: %v", err))
	}
	return Tensor[T, B]{raw: raw, backend: backend}
}

// Ones returns a tensor filled with one values.
func Ones[T DType, B Backend](backend B, shape ...int) Tensor[T, B] {
	var one T
	switch any(one).(type) {
	case float32:
		one = any(float32(1)).(T)
	case int32:
		one = any(int32(1)).(T)
	case bool:
		one = any(true).(T)
	}
	return Full[T](backend, one, shape...)
}

// Full returns a tensor filled with the given value.
func Full[T DType, B Backend](backend B, value T, shape ...int) Tensor[T, B] {
	t := Zeros[T](backend, shape...)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Randn returns a float32 tensor with standard normal samples drawn
// from rng via the Box-Muller transform.
func Randn[B Backend](backend B, rng *rand.Rand, shape ...int) Tensor[float32, B] {
	t := Zeros[float32](backend, shape...)
	data := t.Data()
	for i := 0; i < len(data); i += 2 {
		u1 := rng.Float64()
		for u1 == 0 {
			u1 = rng.Float64()
		}
		u2 := rng.Float64()
		r := math.Sqrt(-2 * math.Log(u1))
		data[i] = float32(r * math.Cos(2*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = float32(r * math.Sin(2*math.Pi*u2))
		}
	}
	return t
}

// Rand returns a float32 tensor with uniform samples in [0, 1).
func Rand[B Backend](backend B, rng *rand.Rand, shape ...int) Tensor[float32, B] {
	t := Zeros[float32](backend, shape...)
	data := t.Data()
	for i := range data {
		data[i] = rng.Float32()
	}
	return t
}

// Arange returns a 1-D int32 tensor [start, end).
func Arange[B Backend](backend B, start, end int32) Tensor[int32, B] {
	if end <= start {
		panic(fmt.Sprintf("arange: end %d must be greater than start %d", end, start))
	}
	t := Zeros[int32](backend, int(end-start))
	data := t.Data()
	for i := range data {
		data[i] = start + int32(i)
	}
	return t
}
