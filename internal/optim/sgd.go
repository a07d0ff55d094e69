package optim

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// SGD is stochastic gradient descent with optional classical momentum:
//
//	v = momentum*v + grad
//	p = p - lr*v
//
// Momentum 0 degrades to the plain update.
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*tensor.RawTensor][]float32
}

// NewSGD builds an optimizer over the given parameters.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float32) *SGD[B] {
	return &SGD[B]{
		params:     params,
		lr:         lr,
		momentum:   momentum,
		velocities: make(map[*tensor.RawTensor][]float32),
	}
}

func (s *SGD[B]) LR() float32 { return s.lr }

// Step applies one update. Parameters without a gradient in the map
// (e.g. frozen branches) are skipped.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.params {
		raw := p.Tensor().Raw()
		grad, ok := grads[raw]
		if !ok {
			continue
		}
		g := grad.AsFloat32()
		data := p.Data()

		if s.momentum == 0 {
			for i := range data {
				data[i] -= s.lr * g[i]
			}
			continue
		}

		v, ok := s.velocities[raw]
		if !ok {
			v = make([]float32, len(data))
			s.velocities[raw] = v
		}
		for i := range data {
			v[i] = s.momentum*v[i] + g[i]
			data[i] -= s.lr * v[i]
		}
	}
}
