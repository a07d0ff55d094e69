package tensor

// Method wrappers delegating to the backend. Keeping these on the
// Tensor type lets model code read as arithmetic while the backend
// (plain or autodiff) decides how the work happens.

func (t Tensor[T, B]) Add(other Tensor[T, B]) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Add(t.raw, other.raw), backend: t.backend}
}

func (t Tensor[T, B]) Sub(other Tensor[T, B]) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Sub(t.raw, other.raw), backend: t.backend}
}

func (t Tensor[T, B]) Mul(other Tensor[T, B]) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Mul(t.raw, other.raw), backend: t.backend}
}

func (t Tensor[T, B]) Div(other Tensor[T, B]) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Div(t.raw, other.raw), backend: t.backend}
}

func (t Tensor[T, B]) AddScalar(scalar T) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.AddScalar(t.raw, scalar), backend: t.backend}
}

func (t Tensor[T, B]) SubScalar(scalar T) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.SubScalar(t.raw, scalar), backend: t.backend}
}

func (t Tensor[T, B]) MulScalar(scalar T) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.MulScalar(t.raw, scalar), backend: t.backend}
}

func (t Tensor[T, B]) DivScalar(scalar T) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.DivScalar(t.raw, scalar), backend: t.backend}
}

func (t Tensor[T, B]) MatMul(other Tensor[T, B]) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.MatMul(t.raw, other.raw), backend: t.backend}
}

func (t Tensor[T, B]) Conv2D(kernel Tensor[T, B], stride, padding int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Conv2D(t.raw, kernel.raw, stride, padding), backend: t.backend}
}

func (t Tensor[T, B]) AvgPool2D(kernelSize, stride int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.AvgPool2D(t.raw, kernelSize, stride), backend: t.backend}
}

func (t Tensor[T, B]) Exp() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Exp(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) Log() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Log(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) Sqrt() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Sqrt(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) Rsqrt() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Rsqrt(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) ReLU() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.ReLU(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) Softmax(dim int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Softmax(t.raw, dim), backend: t.backend}
}

func (t Tensor[T, B]) SumDims(dims []int, keepDims bool) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.SumDims(t.raw, dims, keepDims), backend: t.backend}
}

func (t Tensor[T, B]) MeanDims(dims []int, keepDims bool) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.MeanDims(t.raw, dims, keepDims), backend: t.backend}
}

func (t Tensor[T, B]) Sum() Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Sum(t.raw), backend: t.backend}
}

func (t Tensor[T, B]) Argmax(dim int) Tensor[int32, B] {
	return Tensor[int32, B]{raw: t.backend.Argmax(t.raw, dim), backend: t.backend}
}

func (t Tensor[T, B]) Reshape(shape ...int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Reshape(t.raw, Shape(shape)), backend: t.backend}
}

func (t Tensor[T, B]) Transpose(dim0, dim1 int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Transpose(t.raw, dim0, dim1), backend: t.backend}
}

func (t Tensor[T, B]) Expand(shape ...int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Expand(t.raw, Shape(shape)), backend: t.backend}
}

func (t Tensor[T, B]) Unsqueeze(dim int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Unsqueeze(t.raw, dim), backend: t.backend}
}

func (t Tensor[T, B]) Squeeze(dim int) Tensor[T, B] {
	return Tensor[T, B]{raw: t.backend.Squeeze(t.raw, dim), backend: t.backend}
}
