package autodiff

import (
	"fmt"

	"github.com/strand-ml/strand/internal/tensor"
)

// BackwardCapable is what training code needs from a backend: the full
// operation set plus access to its tape. Satisfied by *Backend[B].
type BackwardCapable interface {
	tensor.Backend
	Tape() *GradientTape
}

// Backward seeds the tape with a ones gradient for the given scalar
// loss and returns gradients for everything reachable from it. The
// backward arithmetic runs through the decorator, which pins every
// operand so shared gradient tensors are never mutated in place; the
// tape suspends recording for the duration, so nothing is re-recorded.
func Backward[B tensor.Backend](backend *Backend[B], loss *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	if loss.NumElements() != 1 {
		return nil, fmt.Errorf("backward: loss must be a scalar, got shape %v", loss.Shape())
	}
	seed, err := tensor.NewRaw(loss.Shape(), tensor.Float32, loss.Device())
	if err != nil {
		return nil, fmt.Errorf("backward: %w", err)
	}
	seed.AsFloat32()[0] = 1
	return backend.Tape().Backward(backend, loss, seed), nil
}
