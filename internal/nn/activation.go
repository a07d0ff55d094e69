package nn

import "github.com/strand-ml/strand/internal/tensor"

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] struct{}

func NewReLU[B tensor.Backend]() *ReLU[B] { return &ReLU[B]{} }

func (r *ReLU[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	return x.ReLU()
}

func (r *ReLU[B]) Parameters() []*Parameter[B] { return nil }
