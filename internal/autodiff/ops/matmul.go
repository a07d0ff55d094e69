package ops

import "github.com/strand-ml/strand/internal/tensor"

// MatMulOp records c = a @ b for rank-2 operands.
type MatMulOp struct {
	a, b, out *tensor.RawTensor
}

func NewMatMulOp(a, b, out *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{a: a, b: b, out: out}
}

func (op *MatMulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }
func (op *MatMulOp) Output() *tensor.RawTensor   { return op.out }

func (op *MatMulOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	// dA = dC @ B^T, dB = A^T @ dC
	gradA := backend.MatMul(outputGrad, backend.Transpose(op.b, 0, 1))
	gradB := backend.MatMul(backend.Transpose(op.a, 0, 1), outputGrad)
	return []*tensor.RawTensor{gradA, gradB}
}
