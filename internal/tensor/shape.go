package tensor

import (
	"fmt"
	"slices"
)

// Shape describes tensor dimensions, outermost first.
type Shape []int

// NumElements returns the total element count.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	if len(s) == 0 {
		return fmt.Errorf("shape must have at least one dimension")
	}
	for i, dim := range s {
		if dim <= 0 {
			return fmt.Errorf("dimension %d must be positive, got %d", i, dim)
		}
	}
	return nil
}

// Equal reports whether two shapes match exactly.
func (s Shape) Equal(other Shape) bool {
	return slices.Equal(s, other)
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	return slices.Clone(s)
}

func (s Shape) String() string {
	return fmt.Sprintf("%v", []int(s))
}

// ComputeStrides returns row-major strides for the shape.
func ComputeStrides(shape Shape) []int {
	strides := make([]int, len(shape))
	if len(shape) == 0 {
		return strides
	}
	strides[len(shape)-1] = 1
	for i := len(shape) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * shape[i+1]
	}
	return strides
}

// BroadcastShapes resolves the output shape of a binary op on a and b
// under NumPy broadcasting rules. Shapes are aligned from the right;
// each pair of dimensions must be equal or one of them must be 1.
// The second result reports whether any broadcasting is required.
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	if a.Equal(b) {
		return a.Clone(), false, nil
	}

	n := max(len(a), len(b))
	out := make(Shape, n)
	for i := 0; i < n; i++ {
		da, db := 1, 1
		if i >= n-len(a) {
			da = a[i-(n-len(a))]
		}
		if i >= n-len(b) {
			db = b[i-(n-len(b))]
		}
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			return nil, false, fmt.Errorf("cannot broadcast shapes %v and %v", a, b)
		}
	}
	return out, true, nil
}
