package nn

import "github.com/strand-ml/strand/internal/tensor"

// Sequential chains modules, feeding each one's output to the next.
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return &Sequential[B]{modules: modules}
}

func (s *Sequential[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	for _, m := range s.modules {
		x = m.Forward(x)
	}
	return x
}

func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// SetTraining propagates the mode to every mode-aware submodule.
func (s *Sequential[B]) SetTraining(training bool) {
	for _, m := range s.modules {
		if t, ok := m.(trainable); ok {
			t.SetTraining(training)
		}
	}
}
