// Package nn provides neural-network layers over the tensor backends.
// Layers are generic over the backend so the same model code runs with
// or without gradient recording.
package nn

import "github.com/strand-ml/strand/internal/tensor"

// Module is a forward-computing unit with learnable parameters.
type Module[B tensor.Backend] interface {
	Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B]
	Parameters() []*Parameter[B]
}

// trainable is implemented by layers whose behavior differs between
// training and inference (batch normalization).
type trainable interface {
	SetTraining(training bool)
}
