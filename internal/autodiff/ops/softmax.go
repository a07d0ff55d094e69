package ops

import "github.com/strand-ml/strand/internal/tensor"

// SoftmaxOp records out = softmax(x, dim).
// dx_i = out_i * (g_i - sum_j g_j * out_j) along the softmax axis.
type SoftmaxOp struct {
	x, out *tensor.RawTensor
	dim    int
}

func NewSoftmaxOp(x, out *tensor.RawTensor, dim int) *SoftmaxOp {
	if dim < 0 {
		dim += len(x.Shape())
	}
	return &SoftmaxOp{x: x, out: out, dim: dim}
}

func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *SoftmaxOp) Output() *tensor.RawTensor   { return op.out }

func (op *SoftmaxOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.x.Shape(), tensor.Float32, op.x.Device())
	if err != nil {
		panic(err)
	}
	shape := op.x.Shape()
	y := op.out.AsFloat32()
	g := outputGrad.AsFloat32()
	dst := grad.AsFloat32()

	dimSize := shape[op.dim]
	inner := 1
	for i := op.dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := op.x.NumElements() / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in
			var dot float64
			for d := 0; d < dimSize; d++ {
				idx := base + d*inner
				dot += float64(g[idx]) * float64(y[idx])
			}
			for d := 0; d < dimSize; d++ {
				idx := base + d*inner
				dst[idx] = y[idx] * (g[idx] - float32(dot))
			}
		}
	}
	return []*tensor.RawTensor{grad}
}
