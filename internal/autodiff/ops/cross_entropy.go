package ops

import "github.com/strand-ml/strand/internal/tensor"

// CrossEntropyOp records loss = mean softmax cross-entropy over the
// batch. Targets are class indices and carry no gradient.
type CrossEntropyOp struct {
	logits, targets, out *tensor.RawTensor
}

func NewCrossEntropyOp(logits, targets, out *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, out: out}
}

func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{op.logits, op.targets}
}
func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.out }

func (op *CrossEntropyOp) Backward(backend tensor.Backend, outputGrad *tensor.RawTensor) []*tensor.RawTensor {
	// dLogits = (softmax(logits) - onehot(targets)) / batch, scaled by
	// the incoming scalar gradient.
	grad := backend.Softmax(op.logits, -1)
	if !grad.IsUnique() {
		grad = grad.DeepClone()
	}

	shape := op.logits.Shape()
	batch, classes := shape[0], shape[1]
	g := grad.AsFloat32()
	tgt := op.targets.AsInt32()
	scale := outputGrad.AsFloat32()[0] / float32(batch)

	for b := 0; b < batch; b++ {
		row := g[b*classes : (b+1)*classes]
		row[tgt[b]] -= 1
		for i := range row {
			row[i] *= scale
		}
	}
	return []*tensor.RawTensor{grad, nil}
}
