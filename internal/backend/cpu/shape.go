package cpu

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// Reshape returns a view over the same buffer with a new shape.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	view, err := x.WithShape(shape)
	if err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return view
}

// Transpose swaps two axes, materializing the permuted layout.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	shape := x.Shape()
	rank := len(shape)
	if dim0 < 0 {
		dim0 += rank
	}
	if dim1 < 0 {
		dim1 += rank
	}
	if dim0 < 0 || dim0 >= rank || dim1 < 0 || dim1 >= rank {
		panic(fmt.Sprintf("transpose: dims (%d, %d) out of range for shape %v", dim0, dim1, shape))
	}
	if dim0 == dim1 {
		return x.Clone()
	}

	outShape := shape.Clone()
	outShape[dim0], outShape[dim1] = outShape[dim1], outShape[dim0]
	result, err := tensor.NewRaw(outShape, x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("transpose: %v", err))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("transpose: unsupported dtype %s (only float32)", x.DType()))
	}

	src, dst := x.AsFloat32(), result.AsFloat32()
	inStrides := x.Stride()
	outStrides := result.Stride()
	coords := make([]int, rank)
	for idx := range src {
		remaining := idx
		for i := range coords {
			coords[i] = remaining / inStrides[i]
			remaining %= inStrides[i]
		}
		coords[dim0], coords[dim1] = coords[dim1], coords[dim0]
		outIdx := 0
		for i, c := range coords {
			outIdx += c * outStrides[i]
		}
		dst[outIdx] = src[idx]
	}
	return result
}

// Expand broadcasts size-1 axes of x up to the requested shape,
// materializing the repeated data.
func (cpu *CPUBackend) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	xShape := x.Shape()
	if len(shape) < len(xShape) {
		panic(fmt.Sprintf("expand: target %v has fewer dimensions than input %v", shape, xShape))
	}
	offset := len(shape) - len(xShape)
	for i, d := range xShape {
		if d != 1 && d != shape[offset+i] {
			panic(fmt.Sprintf("expand: cannot expand dimension %d from %d to %d", i, d, shape[offset+i]))
		}
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("expand: unsupported dtype %s (only float32)", x.DType()))
	}

	result, err := tensor.NewRaw(shape, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("expand: %v", err))
	}
	src, dst := x.AsFloat32(), result.AsFloat32()
	outStrides := result.Stride()
	inStrides := tensor.ComputeStrides(xShape)

	coords := make([]int, len(shape))
	for outIdx := range dst {
		remaining := outIdx
		for i := range shape {
			coords[i] = remaining / outStrides[i]
			remaining %= outStrides[i]
		}
		inIdx := 0
		for i := range xShape {
			c := coords[offset+i]
			if xShape[i] == 1 {
				c = 0
			}
			inIdx += c * inStrides[i]
		}
		dst[outIdx] = src[inIdx]
	}
	return result
}

// Unsqueeze inserts a size-1 axis at dim.
func (cpu *CPUBackend) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	if dim < 0 || dim > len(shape) {
		panic(fmt.Sprintf("unsqueeze: dim %d out of range for shape %v", dim, shape))
	}
	out := make(tensor.Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	view, err := x.WithShape(out)
	if err != nil {
		panic(fmt.Sprintf("unsqueeze: %v", err))
	}
	return view
}

// Squeeze removes a size-1 axis at dim.
func (cpu *CPUBackend) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("squeeze: dim %d out of range for shape %v", dim, shape))
	}
	if shape[dim] != 1 {
		panic(fmt.Sprintf("squeeze: dimension %d of shape %v has size %d, not 1", dim, shape, shape[dim]))
	}
	out := make(tensor.Shape, 0, len(shape)-1)
	out = append(out, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	view, err := x.WithShape(out)
	if err != nil {
		panic(fmt.Sprintf("squeeze: %v", err))
	}
	return view
}

// Cast converts between element types.
func (cpu *CPUBackend) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	if x.DType() == dtype {
		return x.Clone()
	}
	result, err := tensor.NewRaw(x.Shape(), dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("cast: %v", err))
	}
	switch {
	case x.DType() == tensor.Float32 && dtype == tensor.Int32:
		src, dst := x.AsFloat32(), result.AsInt32()
		for i, v := range src {
			dst[i] = int32(v)
		}
	case x.DType() == tensor.Int32 && dtype == tensor.Float32:
		src, dst := x.AsInt32(), result.AsFloat32()
		for i, v := range src {
			dst[i] = float32(v)
		}
	case x.DType() == tensor.Bool && dtype == tensor.Float32:
		src, dst := x.AsBool(), result.AsFloat32()
		for i, v := range src {
			if v {
				dst[i] = 1
			}
		}
	default:
		panic(fmt.Sprintf("cast: unsupported conversion %s -> %s", x.DType(), dtype))
	}
	return result
}
