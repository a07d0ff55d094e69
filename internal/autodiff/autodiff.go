// Package autodiff provides reverse-mode automatic differentiation as
// a decorator around any tensor.Backend: forward calls pass through to
// the wrapped backend while a gradient tape records how to undo them.
package autodiff

import (
	"github.com/strand-ml/strand/internal/autodiff/ops"
	"github.com/strand-ml/strand/internal/tensor"
)

// Backend wraps an inner backend and records differentiable operations
// on its tape. Inputs to recorded operations are pinned non-unique so
// later in-place optimizations cannot corrupt saved forward state.
type Backend[B tensor.Backend] struct {
	inner B
	tape  *GradientTape
}

// New wraps inner with a fresh gradient tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return &Backend[B]{inner: inner, tape: NewGradientTape()}
}

// Tape returns the gradient tape for recording control and backward.
func (b *Backend[B]) Tape() *GradientTape { return b.tape }

// Inner returns the wrapped backend.
func (b *Backend[B]) Inner() B { return b.inner }

func (b *Backend[B]) Name() string          { return "autodiff(" + b.inner.Name() + ")" }
func (b *Backend[B]) Device() tensor.Device { return b.inner.Device() }

func (b *Backend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()
	out := b.inner.Add(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddOp(x, y, out))
	}
	return out
}

func (b *Backend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()
	out := b.inner.Sub(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubOp(x, y, out))
	}
	return out
}

func (b *Backend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()
	out := b.inner.Mul(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulOp(x, y, out))
	}
	return out
}

func (b *Backend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()
	out := b.inner.Div(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewDivOp(x, y, out))
	}
	return out
}

func (b *Backend[B]) AddScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.AddScalar(x, scalar)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAddScalarOp(x, out))
	}
	return out
}

func (b *Backend[B]) SubScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.SubScalar(x, scalar)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSubScalarOp(x, out))
	}
	return out
}

func (b *Backend[B]) MulScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.MulScalar(x, scalar)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMulScalarOp(x, out, scalar.(float32)))
	}
	return out
}

func (b *Backend[B]) DivScalar(x *tensor.RawTensor, scalar any) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.DivScalar(x, scalar)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewDivScalarOp(x, out, scalar.(float32)))
	}
	return out
}

func (b *Backend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer y.ForceNonUnique()()
	out := b.inner.MatMul(x, y)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMatMulOp(x, y, out))
	}
	return out
}

func (b *Backend[B]) Conv2D(x, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	defer kernel.ForceNonUnique()()
	out := b.inner.Conv2D(x, kernel, stride, padding)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewConv2DOp(x, kernel, out, stride, padding))
	}
	return out
}

func (b *Backend[B]) Conv2DInputBackward(gradOut, kernel *tensor.RawTensor, inputShape tensor.Shape, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DInputBackward(gradOut, kernel, inputShape, stride, padding)
}

func (b *Backend[B]) Conv2DKernelBackward(gradOut, input *tensor.RawTensor, kernelShape tensor.Shape, stride, padding int) *tensor.RawTensor {
	return b.inner.Conv2DKernelBackward(gradOut, input, kernelShape, stride, padding)
}

func (b *Backend[B]) AvgPool2D(x *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.AvgPool2D(x, kernelSize, stride)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewAvgPool2DOp(x, out, kernelSize, stride))
	}
	return out
}

func (b *Backend[B]) AvgPool2DBackward(gradOut *tensor.RawTensor, inputShape tensor.Shape, kernelSize, stride int) *tensor.RawTensor {
	return b.inner.AvgPool2DBackward(gradOut, inputShape, kernelSize, stride)
}

func (b *Backend[B]) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Exp(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpOp(x, out))
	}
	return out
}

func (b *Backend[B]) Log(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Log(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewLogOp(x, out))
	}
	return out
}

func (b *Backend[B]) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Sqrt(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSqrtOp(x, out))
	}
	return out
}

func (b *Backend[B]) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Rsqrt(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewRsqrtOp(x, out))
	}
	return out
}

func (b *Backend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.ReLU(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReLUOp(x, out))
	}
	return out
}

func (b *Backend[B]) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Softmax(x, dim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSoftmaxOp(x, out, dim))
	}
	return out
}

func (b *Backend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	defer logits.ForceNonUnique()()
	out := b.inner.CrossEntropy(logits, targets)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewCrossEntropyOp(logits, targets, out))
	}
	return out
}

func (b *Backend[B]) SumDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.SumDims(x, dims, keepDims)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumDimsOp(x, out, dims))
	}
	return out
}

func (b *Backend[B]) MeanDims(x *tensor.RawTensor, dims []int, keepDims bool) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.MeanDims(x, dims, keepDims)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewMeanDimsOp(x, out, dims))
	}
	return out
}

func (b *Backend[B]) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Sum(x)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewSumOp(x, out))
	}
	return out
}

// Argmax is not differentiable; it passes through unrecorded.
func (b *Backend[B]) Argmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.inner.Argmax(x, dim)
}

func (b *Backend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Reshape(x, shape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(x, out))
	}
	return out
}

func (b *Backend[B]) Transpose(x *tensor.RawTensor, dim0, dim1 int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Transpose(x, dim0, dim1)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewTransposeOp(x, out, dim0, dim1))
	}
	return out
}

func (b *Backend[B]) Expand(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Expand(x, shape)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewExpandOp(x, out))
	}
	return out
}

func (b *Backend[B]) Unsqueeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Unsqueeze(x, dim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(x, out))
	}
	return out
}

func (b *Backend[B]) Squeeze(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	defer x.ForceNonUnique()()
	out := b.inner.Squeeze(x, dim)
	if b.tape.IsRecording() {
		b.tape.Record(ops.NewReshapeOp(x, out))
	}
	return out
}

// Cast breaks the differentiable chain; gradients stop at the cast.
func (b *Backend[B]) Cast(x *tensor.RawTensor, dtype tensor.DataType) *tensor.RawTensor {
	return b.inner.Cast(x, dtype)
}

var _ tensor.Backend = (*Backend[tensor.Backend])(nil)
