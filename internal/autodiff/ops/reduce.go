package ops

import "github.com/strand-ml/strand/internal/tensor"

// keepDimsShape is the input shape with reduced axes collapsed to 1;
// gradients pass through it before broadcasting back to full size.
func keepDimsShape(inShape tensor.Shape, dims []int) tensor.Shape {
	out := inShape.Clone()
	for _, d := range dims {
		if d < 0 {
			d += len(inShape)
		}
		out[d] = 1
	}
	return out
}

// SumDimsOp records out = sum(x, dims). Every input element
// contributed once, so the gradient is the output gradient broadcast
// back over the reduced axes.
type SumDimsOp struct {
	x, out *tensor.RawTensor
	dims   []int
}

func NewSumDimsOp(x, out *tensor.RawTensor, dims []int) *SumDimsOp {
	return &SumDimsOp{x: x, out: out, dims: dims}
}

func (op *SumDimsOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *SumDimsOp) Output() *tensor.RawTensor   { return op.out }

func (op *SumDimsOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	keep := keepDimsShape(op.x.Shape(), op.dims)
	grad := backend.Reshape(outputGrad, keep)
	return []*tensor.RawTensor{broadcastTo(backend, grad, op.x.Shape())}
}

// MeanDimsOp records out = mean(x, dims): the sum gradient divided by
// the reduced element count.
type MeanDimsOp struct {
	x, out *tensor.RawTensor
	dims   []int
	count  int
}

func NewMeanDimsOp(x, out *tensor.RawTensor, dims []int) *MeanDimsOp {
	count := 1
	shape := x.Shape()
	for _, d := range dims {
		if d < 0 {
			d += len(shape)
		}
		count *= shape[d]
	}
	return &MeanDimsOp{x: x, out: out, dims: dims, count: count}
}

func (op *MeanDimsOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *MeanDimsOp) Output() *tensor.RawTensor   { return op.out }

func (op *MeanDimsOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	keep := keepDimsShape(op.x.Shape(), op.dims)
	grad := backend.Reshape(outputGrad, keep)
	grad = broadcastTo(backend, grad, op.x.Shape())
	return []*tensor.RawTensor{backend.MulScalar(grad, 1/float32(op.count))}
}

// SumOp records out = sum(x) over all elements.
type SumOp struct {
	x, out *tensor.RawTensor
}

func NewSumOp(x, out *tensor.RawTensor) *SumOp { return &SumOp{x: x, out: out} }

func (op *SumOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *SumOp) Output() *tensor.RawTensor   { return op.out }

func (op *SumOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastTo(backend, outputGrad, op.x.Shape())}
}
