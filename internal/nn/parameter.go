package nn

import "github.com/strand-ml/strand/internal/tensor"

// Parameter is a named learnable tensor. The optimizer looks its
// gradient up by the underlying raw tensor identity.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor tensor.Tensor[float32, B]
}

func NewParameter[B tensor.Backend](name string, t tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

func (p *Parameter[B]) Name() string                       { return p.name }
func (p *Parameter[B]) Tensor() tensor.Tensor[float32, B] { return p.tensor }

// Data returns the mutable element view; the optimizer updates
// parameters in place through it.
func (p *Parameter[B]) Data() []float32 { return p.tensor.Data() }
