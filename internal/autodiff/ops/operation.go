// Package ops defines the recorded operations the gradient tape
// replays in reverse to compute gradients.
package ops

import "github.com/strand-ml/strand/internal/tensor"

// Operation is one recorded forward step. Backward receives the
// gradient flowing into the operation's output and returns one
// gradient per input, aligned with Inputs(). A nil entry means the
// input does not participate in differentiation (e.g. class targets).
type Operation interface {
	Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor
	Inputs() []*tensor.RawTensor
	Output() *tensor.RawTensor
}
