package tensor

// Backend executes tensor operations on RawTensors. The CPU backend
// implements it directly; the autodiff backend wraps another Backend
// and records operations on a gradient tape.
//
// Binary ops broadcast under NumPy rules. Shape mismatches and dtype
// misuse are programmer errors and panic inside the backend.
type Backend interface {
	// Element-wise arithmetic with broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar arithmetic. The scalar's Go type must match the dtype.
	AddScalar(x *RawTensor, scalar any) *RawTensor
	SubScalar(x *RawTensor, scalar any) *RawTensor
	MulScalar(x *RawTensor, scalar any) *RawTensor
	DivScalar(x *RawTensor, scalar any) *RawTensor

	// Linear algebra.
	MatMul(a, b *RawTensor) *RawTensor

	// Convolution and pooling over NCHW batches.
	Conv2D(x, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(gradOut, kernel *RawTensor, inputShape Shape, stride, padding int) *RawTensor
	Conv2DKernelBackward(gradOut, input *RawTensor, kernelShape Shape, stride, padding int) *RawTensor
	AvgPool2D(x *RawTensor, kernelSize, stride int) *RawTensor
	AvgPool2DBackward(gradOut *RawTensor, inputShape Shape, kernelSize, stride int) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Sqrt(x *RawTensor) *RawTensor
	Rsqrt(x *RawTensor) *RawTensor
	ReLU(x *RawTensor) *RawTensor

	// Softmax along dim (negative dims count from the end).
	Softmax(x *RawTensor, dim int) *RawTensor

	// CrossEntropy computes mean softmax cross-entropy over the batch.
	// logits is [batch, classes] float32, targets is [batch] int32;
	// the result is a [1] float32 scalar.
	CrossEntropy(logits, targets *RawTensor) *RawTensor

	// Reductions. dims lists the axes to reduce; keepDims retains them
	// as size-1 axes so the result broadcasts against the input.
	SumDims(x *RawTensor, dims []int, keepDims bool) *RawTensor
	MeanDims(x *RawTensor, dims []int, keepDims bool) *RawTensor
	Sum(x *RawTensor) *RawTensor
	Argmax(x *RawTensor, dim int) *RawTensor

	// Shape manipulation.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, dim0, dim1 int) *RawTensor
	Expand(x *RawTensor, shape Shape) *RawTensor
	Unsqueeze(x *RawTensor, dim int) *RawTensor
	Squeeze(x *RawTensor, dim int) *RawTensor

	Cast(x *RawTensor, dtype DataType) *RawTensor

	Name() string
	Device() Device
}
