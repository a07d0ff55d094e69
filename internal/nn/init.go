package nn

import (
	"math"
	"math/rand"

	"github.com/strand-ml/strand/internal/tensor"
)

// Xavier fills a new tensor with uniform samples in
// [-sqrt(6/(fanIn+fanOut)), +sqrt(6/(fanIn+fanOut))], keeping the
// activation variance roughly constant across layers.
func Xavier[B tensor.Backend](backend B, rng *rand.Rand, fanIn, fanOut int, shape ...int) tensor.Tensor[float32, B] {
	limit := float32(math.Sqrt(6.0 / float64(fanIn+fanOut)))
	t := tensor.Zeros[float32](backend, shape...)
	data := t.Data()
	for i := range data {
		data[i] = (rng.Float32()*2 - 1) * limit
	}
	return t
}
