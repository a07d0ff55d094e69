package cpu

import (
	"fmt"
	"slices"

	"github.com/strand-ml/strand/internal/tensor"
)

// normalizeDims resolves negative axes, validates range and rejects
// duplicates. The returned slice is sorted ascending.
func normalizeDims(dims []int, rank int, name string) []int {
	if len(dims) == 0 {
		panic(fmt.Sprintf("%s: no reduction axes given", name))
	}
	out := make([]int, 0, len(dims))
	for _, d := range dims {
		if d < 0 {
			d += rank
		}
		if d < 0 || d >= rank {
			panic(fmt.Sprintf("%s: axis %d out of range for rank %d", name, d, rank))
		}
		if slices.Contains(out, d) {
			panic(fmt.Sprintf("%s: duplicate axis %d", name, d))
		}
		out = append(out, d)
	}
	slices.Sort(out)
	return out
}

// SumDims sums over the given axes. One generic accumulation loop
// serves any combination of axes and any rank: every input element is
// routed to the output slot whose coordinates zero out reduced axes.
func (cpu *CPUBackend) SumDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("sumDims: unsupported dtype %s (only float32)", x.DType()))
	}
	shape := x.Shape()
	axes := normalizeDims(dims, len(shape), "sumDims")

	reduced := make([]bool, len(shape))
	keepShape := shape.Clone()
	for _, d := range axes {
		reduced[d] = true
		keepShape[d] = 1
	}

	result, err := tensor.NewRaw(keepShape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sumDims: %v", err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()
	inStrides := x.Stride()
	outStrides := result.Stride()

	coords := make([]int, len(shape))
	for idx, v := range src {
		remaining := idx
		for i := range shape {
			coords[i] = remaining / inStrides[i]
			remaining %= inStrides[i]
		}
		outIdx := 0
		for i := range shape {
			if !reduced[i] {
				outIdx += coords[i] * outStrides[i]
			}
		}
		dst[outIdx] += v
	}

	if keepDims {
		return result
	}
	return dropAxes(result, reduced)
}

// MeanDims averages over the given axes. The divisor is the reduced
// element count (population semantics).
func (cpu *CPUBackend) MeanDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	sum := cpu.SumDims(x, dims, keepDims)
	shape := x.Shape()
	count := 1
	for _, d := range normalizeDims(dims, len(shape), "meanDims") {
		count *= shape[d]
	}
	dst := sum.AsFloat32()
	inv := 1.0 / float32(count)
	for i := range dst {
		dst[i] *= inv
	}
	return sum
}

// Sum reduces the whole tensor to a single element.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("sum: unsupported dtype %s (only float32)", x.DType()))
	}
	result, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("sum: %v", err))
	}
	var total float64
	for _, v := range x.AsFloat32() {
		total += float64(v)
	}
	result.AsFloat32()[0] = float32(total)
	return result
}

// Argmax returns int32 indices of the maximum along dim; ties resolve
// to the first occurrence. The reduced axis is removed.
func (cpu *CPUBackend) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("argmax: unsupported dtype %s (only float32)", x.DType()))
	}
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("argmax: dim out of range for shape %v", shape))
	}

	outShape := make(tensor.Shape, 0, len(shape)-1)
	for i, d := range shape {
		if i != dim {
			outShape = append(outShape, d)
		}
	}
	if len(outShape) == 0 {
		outShape = tensor.Shape{1}
	}
	result, err := tensor.NewRaw(outShape, tensor.Int32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("argmax: %v", err))
	}

	src, dst := x.AsFloat32(), result.AsInt32()
	dimSize := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := x.NumElements() / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in
			best, bestVal := 0, src[base]
			for d := 1; d < dimSize; d++ {
				if v := src[base+d*inner]; v > bestVal {
					best, bestVal = d, v
				}
			}
			dst[o*inner+in] = int32(best)
		}
	}
	return result
}

// dropAxes removes the size-1 axes marked reduced, keeping at least
// one dimension.
func dropAxes(x *tensor.RawTensor, reduced []bool) *tensor.RawTensor {
	shape := x.Shape()
	out := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		if !reduced[i] {
			out = append(out, d)
		}
	}
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	view, err := x.WithShape(out)
	if err != nil {
		panic(fmt.Sprintf("reduce: %v", err))
	}
	return view
}
