package ops

import "github.com/strand-ml/strand/internal/tensor"

// reduceBroadcast folds a gradient back down to the shape of an input
// that was broadcast during the forward pass: leading axes the input
// never had are summed away, and axes where the input was size 1 are
// summed and kept.
func reduceBroadcast(backend tensor.Backend, grad *tensor.RawTensor, target tensor.Shape) *tensor.RawTensor {
	gShape := grad.Shape()
	if gShape.Equal(target) {
		return grad
	}

	lead := len(gShape) - len(target)
	var dims []int
	for i := 0; i < lead; i++ {
		dims = append(dims, i)
	}
	for i, d := range target {
		if d == 1 && gShape[lead+i] != 1 {
			dims = append(dims, lead+i)
		}
	}

	out := grad
	if len(dims) > 0 {
		out = backend.SumDims(grad, dims, true)
	}
	return backend.Reshape(out, target)
}

// broadcastTo expands a (possibly keep-dims reduced) gradient back to
// the full input shape of a reduction.
func broadcastTo(backend tensor.Backend, grad *tensor.RawTensor, target tensor.Shape) *tensor.RawTensor {
	if grad.Shape().Equal(target) {
		return grad
	}
	return backend.Expand(grad, target)
}
