package nn

import "github.com/strand-ml/strand/internal/tensor"

// CrossEntropyLoss computes mean softmax cross-entropy between raw
// class scores and integer targets.
type CrossEntropyLoss[B tensor.Backend] struct{}

func NewCrossEntropyLoss[B tensor.Backend]() *CrossEntropyLoss[B] {
	return &CrossEntropyLoss[B]{}
}

// Forward returns a scalar loss tensor. logits is [batch, classes],
// targets is [batch] int32 class indices.
func (c *CrossEntropyLoss[B]) Forward(logits tensor.Tensor[float32, B], targets tensor.Tensor[int32, B]) tensor.Tensor[float32, B] {
	backend := logits.Backend()
	return tensor.New[float32](backend.CrossEntropy(logits.Raw(), targets.Raw()), backend)
}

// Accuracy returns the fraction of rows whose argmax matches the
// target class.
func Accuracy[B tensor.Backend](logits tensor.Tensor[float32, B], targets tensor.Tensor[int32, B]) float32 {
	predictions := logits.Argmax(1).Data()
	labels := targets.Data()
	if len(predictions) == 0 {
		return 0
	}
	correct := 0
	for i := range predictions {
		if predictions[i] == labels[i] {
			correct++
		}
	}
	return float32(correct) / float32(len(predictions))
}
