package ops

import "github.com/strand-ml/strand/internal/tensor"

// ExpOp records out = exp(x). d/dx exp(x) = out.
type ExpOp struct {
	x, out *tensor.RawTensor
}

func NewExpOp(x, out *tensor.RawTensor) *ExpOp { return &ExpOp{x: x, out: out} }

func (op *ExpOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ExpOp) Output() *tensor.RawTensor   { return op.out }

func (op *ExpOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.out)}
}

// LogOp records out = ln(x). d/dx ln(x) = 1/x.
type LogOp struct {
	x, out *tensor.RawTensor
}

func NewLogOp(x, out *tensor.RawTensor) *LogOp { return &LogOp{x: x, out: out} }

func (op *LogOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *LogOp) Output() *tensor.RawTensor   { return op.out }

func (op *LogOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.x)}
}

// SqrtOp records out = sqrt(x). d/dx sqrt(x) = 1/(2*out).
type SqrtOp struct {
	x, out *tensor.RawTensor
}

func NewSqrtOp(x, out *tensor.RawTensor) *SqrtOp { return &SqrtOp{x: x, out: out} }

func (op *SqrtOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *SqrtOp) Output() *tensor.RawTensor   { return op.out }

func (op *SqrtOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		backend.Div(backend.MulScalar(outputGrad, float32(0.5)), op.out),
	}
}

// RsqrtOp records out = 1/sqrt(x). d/dx = -0.5 * out^3.
type RsqrtOp struct {
	x, out *tensor.RawTensor
}

func NewRsqrtOp(x, out *tensor.RawTensor) *RsqrtOp { return &RsqrtOp{x: x, out: out} }

func (op *RsqrtOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *RsqrtOp) Output() *tensor.RawTensor   { return op.out }

func (op *RsqrtOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	cube := backend.Mul(backend.Mul(op.out, op.out), op.out)
	return []*tensor.RawTensor{
		backend.MulScalar(backend.Mul(outputGrad, cube), float32(-0.5)),
	}
}
