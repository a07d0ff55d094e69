package cpu

import "github.com/strand-ml/strand/internal/tensor"

// binaryBroadcastFloat32 evaluates op over the broadcast of a and b
// into result. Output coordinates map to input offsets by zeroing the
// coordinate wherever an input dimension is 1.
func binaryBroadcastFloat32(result, a, b *tensor.RawTensor, op func(x, y float32) float32) {
	outShape := result.Shape()
	outStrides := result.Stride()
	av, bv, rv := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()

	aMap := broadcastOffsets(a.Shape(), outShape, outStrides)
	bMap := broadcastOffsets(b.Shape(), outShape, outStrides)

	coords := make([]int, len(outShape))
	for outIdx := range rv {
		remaining := outIdx
		for i := range outShape {
			coords[i] = remaining / outStrides[i]
			remaining %= outStrides[i]
		}
		rv[outIdx] = op(av[offsetFor(coords, aMap)], bv[offsetFor(coords, bMap)])
	}
}

// axisStride holds, per output axis, the input stride to advance by
// (zero when the input broadcasts along that axis).
type axisStride []int

func broadcastOffsets(inShape, outShape tensor.Shape, _ []int) axisStride {
	inStrides := tensor.ComputeStrides(inShape)
	offset := len(outShape) - len(inShape)
	m := make(axisStride, len(outShape))
	for i := range outShape {
		if i < offset {
			continue
		}
		if inShape[i-offset] == 1 {
			continue
		}
		m[i] = inStrides[i-offset]
	}
	return m
}

func offsetFor(coords []int, m axisStride) int {
	idx := 0
	for i, c := range coords {
		idx += c * m[i]
	}
	return idx
}
