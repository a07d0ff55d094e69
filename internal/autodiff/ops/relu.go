package ops

import "github.com/strand-ml/strand/internal/tensor"

// ReLUOp records out = max(0, x). The gradient passes through only
// where the input was strictly positive.
type ReLUOp struct {
	x, out *tensor.RawTensor
}

func NewReLUOp(x, out *tensor.RawTensor) *ReLUOp { return &ReLUOp{x: x, out: out} }

func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ReLUOp) Output() *tensor.RawTensor   { return op.out }

func (op *ReLUOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	grad, err := tensor.NewRaw(op.x.Shape(), tensor.Float32, op.x.Device())
	if err != nil {
		panic(err)
	}
	src := op.x.AsFloat32()
	g := outputGrad.AsFloat32()
	dst := grad.AsFloat32()
	for i, v := range src {
		if v > 0 {
			dst[i] = g[i]
		}
	}
	return []*tensor.RawTensor{grad}
}
