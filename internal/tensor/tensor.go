package tensor

import "fmt"

// Tensor is a typed handle over a RawTensor bound to a backend. The
// type parameter pins the element type at compile time; the backend
// parameter lets layers stay generic over plain and autodiff execution.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New wraps an existing RawTensor. The raw dtype must match T.
func New[T DType, B Backend](raw *RawTensor, backend B) Tensor[T, B] {
	if raw.DType() != inferDataType[T]() {
		panic(fmt.Sprintf("dtype mismatch: raw is %s, tensor wants %s",
			raw.DType(), inferDataType[T]()))
	}
	return Tensor[T, B]{raw: raw, backend: backend}
}

// FromSlice builds a tensor from a flat slice in row-major order.
func FromSlice[T DType, B Backend](backend B, data []T, shape ...int) (Tensor[T, B], error) {
	s := Shape(shape)
	if err := s.Validate(); err != nil {
		return Tensor[T, B]{}, err
	}
	if len(data) != s.NumElements() {
		return Tensor[T, B]{}, fmt.Errorf("data length %d does not match shape %v (%d elements)",
			len(data), s, s.NumElements())
	}
	raw, err := NewRaw(s, inferDataType[T](), backend.Device())
	if err != nil {
		return Tensor[T, B]{}, err
	}
	copy(typedView[T](raw), data)
	return Tensor[T, B]{raw: raw, backend: backend}, nil
}

// MustFromSlice is FromSlice that panics on error; for tests and
// literals whose shape is known correct.
func MustFromSlice[T DType, B Backend](backend B, data []T, shape ...int) Tensor[T, B] {
	t, err := FromSlice(backend, data, shape...)
	if err != nil {
		panic(err)
	}
	return t
}

func typedView[T DType](raw *RawTensor) []T {
	switch any(*new(T)).(type) {
	case float32:
		return any(raw.AsFloat32()).([]T)
	case int32:
		return any(raw.AsInt32()).([]T)
	case bool:
		return any(raw.AsBool()).([]T)
	default:
		panic(fmt.Sprintf("unsupported element type %T", *new(T)))
	}
}

// Raw exposes the underlying storage for backend-level code.
func (t Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend this tensor is bound to.
func (t Tensor[T, B]) Backend() B { return t.backend }

// Shape returns the tensor's shape.
func (t Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// Data returns the typed view of the tensor's elements. The slice
// aliases the buffer; writes are visible to every shared reference.
func (t Tensor[T, B]) Data() []T { return typedView[T](t.raw) }

// Item returns the sole element of a single-element tensor.
func (t Tensor[T, B]) Item() T {
	if t.raw.NumElements() != 1 {
		panic(fmt.Sprintf("Item on tensor with %d elements", t.raw.NumElements()))
	}
	return t.Data()[0]
}

// At reads the element at the given coordinates.
func (t Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given coordinates.
func (t Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

func (t Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.raw.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("expected %d indices for shape %v, got %d", len(shape), shape, len(indices)))
	}
	flat := 0
	for i, idx := range indices {
		if idx < 0 || idx >= shape[i] {
			panic(fmt.Sprintf("index %d out of range for dimension %d (size %d)", idx, i, shape[i]))
		}
		flat += idx * t.raw.Stride()[i]
	}
	return flat
}

// Clone returns a tensor with an independent copy of the data.
func (t Tensor[T, B]) Clone() Tensor[T, B] {
	return Tensor[T, B]{raw: t.raw.DeepClone(), backend: t.backend}
}
