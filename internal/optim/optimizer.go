// Package optim provides gradient-descent parameter updates.
package optim

import "github.com/strand-ml/strand/internal/tensor"

// Optimizer consumes the gradient map a backward pass produced and
// updates parameters in place.
type Optimizer interface {
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)
	LR() float32
}
