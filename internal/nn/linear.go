package nn

import (
	"math/rand"

	"github.com/strand-ml/strand/internal/tensor"
)

// Linear is a fully connected layer: y = x @ W + b.
type Linear[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewLinear builds a layer mapping inFeatures to outFeatures with
// Xavier-initialized weights and zero bias.
func NewLinear[B tensor.Backend](backend B, rng *rand.Rand, name string, inFeatures, outFeatures int) *Linear[B] {
	weight := Xavier(backend, rng, inFeatures, outFeatures, inFeatures, outFeatures)
	bias := tensor.Zeros[float32](backend, outFeatures)
	return &Linear[B]{
		weight: NewParameter(name+".weight", weight),
		bias:   NewParameter(name+".bias", bias),
	}
}

func (l *Linear[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	return x.MatMul(l.weight.Tensor()).Add(l.bias.Tensor())
}

func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}
