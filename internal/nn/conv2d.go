package nn

import (
	"math/rand"

	"github.com/strand-ml/strand/internal/tensor"
)

// Conv2D is a 2-D convolution layer over NCHW input with a per-channel
// bias.
type Conv2D[B tensor.Backend] struct {
	weight  *Parameter[B]
	bias    *Parameter[B]
	stride  int
	padding int
}

// NewConv2D builds a convolution with a [outChannels, inChannels,
// kernelSize, kernelSize] Xavier-initialized kernel and zero bias.
func NewConv2D[B tensor.Backend](backend B, rng *rand.Rand, name string, inChannels, outChannels, kernelSize, stride, padding int) *Conv2D[B] {
	fanIn := inChannels * kernelSize * kernelSize
	fanOut := outChannels * kernelSize * kernelSize
	weight := Xavier(backend, rng, fanIn, fanOut, outChannels, inChannels, kernelSize, kernelSize)
	bias := tensor.Zeros[float32](backend, outChannels)
	return &Conv2D[B]{
		weight:  NewParameter(name+".weight", weight),
		bias:    NewParameter(name+".bias", bias),
		stride:  stride,
		padding: padding,
	}
}

func (c *Conv2D[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	out := x.Conv2D(c.weight.Tensor(), c.stride, c.padding)
	outChannels := c.bias.Tensor().Shape()[0]
	return out.Add(c.bias.Tensor().Reshape(1, outChannels, 1, 1))
}

func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}
