package autodiff

import (
	"github.com/strand-ml/strand/internal/autodiff/ops"
	"github.com/strand-ml/strand/internal/tensor"
)

// GradientTape records operations during the forward pass and replays
// them in reverse to accumulate gradients. One tape per training step;
// Clear between steps.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

func NewGradientTape() *GradientTape {
	return &GradientTape{}
}

func (t *GradientTape) StartRecording() { t.recording = true }
func (t *GradientTape) StopRecording()  { t.recording = false }
func (t *GradientTape) IsRecording() bool {
	return t.recording
}

// Record appends an operation. Callers check IsRecording first so
// forward-only passes pay nothing.
func (t *GradientTape) Record(op ops.Operation) {
	t.operations = append(t.operations, op)
}

// Clear drops all recorded operations, keeping capacity.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// NumOperations reports how many operations are on the tape.
func (t *GradientTape) NumOperations() int {
	return len(t.operations)
}

// Backward walks the tape in reverse from the given output, seeding it
// with outputGrad, and returns accumulated gradients keyed by raw
// tensor. Recording stops first so gradient arithmetic is not itself
// recorded.
func (t *GradientTape) Backward(backend tensor.Backend, output, outputGrad *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	t.StopRecording()

	grads := make(map[*tensor.RawTensor]*tensor.RawTensor)
	grads[output] = outputGrad

	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue // branch not on the path to the output
		}
		inputGrads := op.Backward(backend, outGrad)
		for j, input := range op.Inputs() {
			g := inputGrads[j]
			if g == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, g)
			} else {
				grads[input] = g
			}
		}
	}
	return grads
}
