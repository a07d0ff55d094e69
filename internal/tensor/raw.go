package tensor

import (
	"fmt"
	"sync/atomic"
	"unsafe"
)

// Device identifies where a tensor's buffer lives. Only the CPU device
// exists today; the enum keeps backend plumbing honest about placement.
type Device uint8

const (
	CPU Device = iota
)

func (d Device) String() string {
	switch d {
	case CPU:
		return "cpu"
	default:
		return fmt.Sprintf("device(%d)", d)
	}
}

// tensorBuffer is a refcounted byte buffer shared between RawTensors.
// Sharing lets Clone be O(1); mutation requires a unique reference.
type tensorBuffer struct {
	data []byte
	refs atomic.Int64
}

func newBuffer(size int) *tensorBuffer {
	buf := &tensorBuffer{data: make([]byte, size)}
	buf.refs.Store(1)
	return buf
}

func (b *tensorBuffer) addRef() { b.refs.Add(1) }
func (b *tensorBuffer) release() {
	if b.refs.Add(-1) < 0 {
		panic("tensor buffer refcount underflow")
	}
}

// RawTensor is the dtype-erased storage every Tensor[T, B] wraps.
// Backends operate on RawTensors so one implementation serves all
// element types.
type RawTensor struct {
	buffer *tensorBuffer
	shape  Shape
	stride []int
	dtype  DataType
	device Device

	// forceShared pins the buffer as non-unique while the gradient
	// tape holds references that the refcount cannot see.
	forceShared atomic.Bool
}

// NewRaw allocates a zeroed RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, fmt.Errorf("invalid shape: %w", err)
	}
	return &RawTensor{
		buffer: newBuffer(shape.NumElements() * dtype.Size()),
		shape:  shape.Clone(),
		stride: ComputeStrides(shape),
		dtype:  dtype,
		device: device,
	}, nil
}

func (r *RawTensor) Shape() Shape     { return r.shape }
func (r *RawTensor) Stride() []int    { return r.stride }
func (r *RawTensor) DType() DataType  { return r.dtype }
func (r *RawTensor) Device() Device   { return r.device }
func (r *RawTensor) NumElements() int { return r.shape.NumElements() }

// AsFloat32 returns the buffer viewed as []float32. Panics on dtype
// mismatch: a wrong view is a programmer error, not a runtime condition.
func (r *RawTensor) AsFloat32() []float32 {
	if r.dtype != Float32 {
		panic(fmt.Sprintf("AsFloat32 on %s tensor", r.dtype))
	}
	return unsafe.Slice((*float32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsInt32 returns the buffer viewed as []int32.
func (r *RawTensor) AsInt32() []int32 {
	if r.dtype != Int32 {
		panic(fmt.Sprintf("AsInt32 on %s tensor", r.dtype))
	}
	return unsafe.Slice((*int32)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// AsBool returns the buffer viewed as []bool.
func (r *RawTensor) AsBool() []bool {
	if r.dtype != Bool {
		panic(fmt.Sprintf("AsBool on %s tensor", r.dtype))
	}
	return unsafe.Slice((*bool)(unsafe.Pointer(&r.buffer.data[0])), r.NumElements())
}

// Clone returns a RawTensor sharing this tensor's buffer. The copy is
// cheap; callers that intend to mutate must check IsUnique first.
func (r *RawTensor) Clone() *RawTensor {
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  r.shape.Clone(),
		stride: ComputeStrides(r.shape),
		dtype:  r.dtype,
		device: r.device,
	}
}

// DeepClone copies the buffer so the result is independently mutable.
func (r *RawTensor) DeepClone() *RawTensor {
	out, err := NewRaw(r.shape, r.dtype, r.device)
	if err != nil {
		panic(fmt.Sprintf("deep clone: %v", err))
	}
	copy(out.buffer.data, r.buffer.data)
	return out
}

// Release drops this tensor's reference to the shared buffer.
func (r *RawTensor) Release() {
	r.buffer.release()
}

// IsUnique reports whether this tensor is the only live reference to
// its buffer, meaning in-place mutation is safe.
func (r *RawTensor) IsUnique() bool {
	return r.buffer.refs.Load() == 1 && !r.forceShared.Load()
}

// ForceNonUnique marks the buffer shared for the duration of a deferred
// scope. The gradient tape uses this to keep recorded inputs immutable
// while a backward pass may still read them.
func (r *RawTensor) ForceNonUnique() func() {
	r.forceShared.Store(true)
	return func() { r.forceShared.Store(false) }
}

// WithShape returns a view of the same buffer under a new shape. The
// element count must match.
func (r *RawTensor) WithShape(shape Shape) (*RawTensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, err
	}
	if shape.NumElements() != r.NumElements() {
		return nil, fmt.Errorf("cannot view %v tensor as %v: element count differs", r.shape, shape)
	}
	r.buffer.addRef()
	return &RawTensor{
		buffer: r.buffer,
		shape:  shape.Clone(),
		stride: ComputeStrides(shape),
		dtype:  r.dtype,
		device: r.device,
	}, nil
}
