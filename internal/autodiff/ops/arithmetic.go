package ops

import "github.com/strand-ml/strand/internal/tensor"

// AddOp records c = a + b.
type AddOp struct {
	a, b, out *tensor.RawTensor
}

func NewAddOp(a, b, out *tensor.RawTensor) *AddOp {
	return &AddOp{a: a, b: b, out: out}
}

func (op *AddOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *AddOp) Output() *tensor.RawTensor   { return op.out }

func (op *AddOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(backend, outputGrad, op.a.Shape()),
		reduceBroadcast(backend, outputGrad, op.b.Shape()),
	}
}

// SubOp records c = a - b.
type SubOp struct {
	a, b, out *tensor.RawTensor
}

func NewSubOp(a, b, out *tensor.RawTensor) *SubOp {
	return &SubOp{a: a, b: b, out: out}
}

func (op *SubOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *SubOp) Output() *tensor.RawTensor   { return op.out }

func (op *SubOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	negated := backend.MulScalar(outputGrad, float32(-1))
	return []*tensor.RawTensor{
		reduceBroadcast(backend, outputGrad, op.a.Shape()),
		reduceBroadcast(backend, negated, op.b.Shape()),
	}
}

// MulOp records c = a * b.
type MulOp struct {
	a, b, out *tensor.RawTensor
}

func NewMulOp(a, b, out *tensor.RawTensor) *MulOp {
	return &MulOp{a: a, b: b, out: out}
}

func (op *MulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MulOp) Output() *tensor.RawTensor   { return op.out }

func (op *MulOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(backend, backend.Mul(outputGrad, op.b), op.a.Shape()),
		reduceBroadcast(backend, backend.Mul(outputGrad, op.a), op.b.Shape()),
	}
}

// DivOp records c = a / b.
type DivOp struct {
	a, b, out *tensor.RawTensor
}

func NewDivOp(a, b, out *tensor.RawTensor) *DivOp {
	return &DivOp{a: a, b: b, out: out}
}

func (op *DivOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *DivOp) Output() *tensor.RawTensor   { return op.out }

func (op *DivOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	gradA := backend.Div(outputGrad, op.b)
	// d(a/b)/db = -a / b^2
	gradB := backend.MulScalar(
		backend.Div(backend.Mul(outputGrad, op.a), backend.Mul(op.b, op.b)),
		float32(-1),
	)
	return []*tensor.RawTensor{
		reduceBroadcast(backend, gradA, op.a.Shape()),
		reduceBroadcast(backend, gradB, op.b.Shape()),
	}
}

// ScalarOp records out = x (op) scalar. Only the tensor input carries
// gradient; the scalar is a constant.
type ScalarOp struct {
	x, out *tensor.RawTensor
	// dOut/dX, constant across elements for +, -, *s and /s.
	factor float32
}

func NewAddScalarOp(x, out *tensor.RawTensor) *ScalarOp {
	return &ScalarOp{x: x, out: out, factor: 1}
}

func NewSubScalarOp(x, out *tensor.RawTensor) *ScalarOp {
	return &ScalarOp{x: x, out: out, factor: 1}
}

func NewMulScalarOp(x, out *tensor.RawTensor, scalar float32) *ScalarOp {
	return &ScalarOp{x: x, out: out, factor: scalar}
}

func NewDivScalarOp(x, out *tensor.RawTensor, scalar float32) *ScalarOp {
	return &ScalarOp{x: x, out: out, factor: 1 / scalar}
}

func (op *ScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *ScalarOp) Output() *tensor.RawTensor   { return op.out }

func (op *ScalarOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	if op.factor == 1 {
		return []*tensor.RawTensor{outputGrad}
	}
	return []*tensor.RawTensor{backend.MulScalar(outputGrad, op.factor)}
}
