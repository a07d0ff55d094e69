package ops

import "github.com/strand-ml/strand/internal/tensor"

// Conv2DOp records out = conv2d(x, kernel). The heavy lifting of both
// backward directions lives in the backend.
type Conv2DOp struct {
	x, kernel, out  *tensor.RawTensor
	stride, padding int
}

func NewConv2DOp(x, kernel, out *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{x: x, kernel: kernel, out: out, stride: stride, padding: padding}
}

func (op *Conv2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x, op.kernel} }
func (op *Conv2DOp) Output() *tensor.RawTensor   { return op.out }

func (op *Conv2DOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	gradX := backend.Conv2DInputBackward(outputGrad, op.kernel, op.x.Shape(), op.stride, op.padding)
	gradK := backend.Conv2DKernelBackward(outputGrad, op.x, op.kernel.Shape(), op.stride, op.padding)
	return []*tensor.RawTensor{gradX, gradK}
}

// AvgPool2DOp records out = avgpool2d(x).
type AvgPool2DOp struct {
	x, out             *tensor.RawTensor
	kernelSize, stride int
}

func NewAvgPool2DOp(x, out *tensor.RawTensor, kernelSize, stride int) *AvgPool2DOp {
	return &AvgPool2DOp{x: x, out: out, kernelSize: kernelSize, stride: stride}
}

func (op *AvgPool2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }
func (op *AvgPool2DOp) Output() *tensor.RawTensor   { return op.out }

func (op *AvgPool2DOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		backend.AvgPool2DBackward(outputGrad, op.x.Shape(), op.kernelSize, op.stride),
	}
}
