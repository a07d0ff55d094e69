package ops

import "github.com/strand-ml/strand/internal/tensor"

// ReshapeOp covers reshape, unsqueeze and squeeze: the data is
// untouched, so the gradient just takes the input's shape back.
type ReshapeOp struct {
	x, out *tensor.RawTensor
}

func NewReshapeOp(x, out *tensor.RawTensor) *ReshapeOp { return &ReshapeOp{x: x, out: out} }

func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ReshapeOp) Output() *tensor.RawTensor   { return op.out }

func (op *ReshapeOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.x.Shape())}
}

// TransposeOp records out = transpose(x, dim0, dim1).
type TransposeOp struct {
	x, out     *tensor.RawTensor
	dim0, dim1 int
}

func NewTransposeOp(x, out *tensor.RawTensor, dim0, dim1 int) *TransposeOp {
	return &TransposeOp{x: x, out: out, dim0: dim0, dim1: dim1}
}

func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *TransposeOp) Output() *tensor.RawTensor   { return op.out }

func (op *TransposeOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(outputGrad, op.dim0, op.dim1)}
}

// ExpandOp records out = expand(x, shape): the reverse sums the
// gradient back over the broadcast axes.
type ExpandOp struct {
	x, out *tensor.RawTensor
}

func NewExpandOp(x, out *tensor.RawTensor) *ExpandOp { return &ExpandOp{x: x, out: out} }

func (op *ExpandOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ExpandOp) Output() *tensor.RawTensor   { return op.out }

func (op *ExpandOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{reduceBroadcast(backend, outputGrad, op.x.Shape())}
}
