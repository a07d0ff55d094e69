package nn

import (
	"errors"
	"fmt"
	"log"

	"github.com/strand-ml/strand/internal/tensor"
)

// Batch normalization defaults. Momentum close to 1 keeps the running
// estimates stable against batch-to-batch noise.
const (
	DefaultEps      float32 = 1e-5
	DefaultMomentum float32 = 0.9
)

var (
	// ErrInvalidRank rejects inputs that are neither [batch, features]
	// nor [batch, channels, height, width].
	ErrInvalidRank = errors.New("batch norm: input rank must be 2 or 4")

	// ErrMissingStats signals an inference-mode call before any
	// training-mode call populated the layer's running statistics.
	ErrMissingStats = errors.New("batch norm: no running statistics for layer")
)

// BatchNormConfig carries the tunables of the transform.
type BatchNormConfig struct {
	Eps      float32
	Momentum float32
	// Debug prints the per-feature batch statistics of every call.
	Debug bool
}

// DefaultBatchNormConfig returns the conventional settings.
func DefaultBatchNormConfig() BatchNormConfig {
	return BatchNormConfig{Eps: DefaultEps, Momentum: DefaultMomentum}
}

// reductionAxes maps the input rank to the axes the statistics reduce
// over: everything except the feature axis (axis 1).
func reductionAxes(rank int) ([]int, error) {
	switch rank {
	case 2:
		return []int{0}, nil
	case 4:
		return []int{0, 2, 3}, nil
	default:
		return nil, fmt.Errorf("%w: got rank %d, accepted shapes are [batch, features] and [batch, channels, height, width]",
			ErrInvalidRank, rank)
	}
}

// statsShape is the keep-dims shape statistics broadcast from: 1 on
// every axis except the feature axis.
func statsShape(xShape tensor.Shape) tensor.Shape {
	out := make(tensor.Shape, len(xShape))
	for i := range out {
		out[i] = 1
	}
	out[1] = xShape[1]
	return out
}

// BatchNormalize normalizes x per feature and applies the learned
// affine transform: out = gamma * (x - mean)/sqrt(var + eps) + beta.
//
// In training mode the batch's own statistics normalize it and the
// running estimates under id are updated (seeded on first use, decayed
// by momentum afterwards). In inference mode the stored running
// estimates normalize instead and the context is left untouched; a
// missing entry is ErrMissingStats.
//
// Statistics use population variance: the divisor is the reduced
// element count. Gamma and beta must be 1-D with one value per
// feature (rank-2 input) or channel (rank-4 input).
func BatchNormalize[B tensor.Backend](
	x, gamma, beta tensor.Tensor[float32, B],
	id string,
	training bool,
	stats *BatchStats,
	cfg BatchNormConfig,
) (tensor.Tensor[float32, B], error) {
	xShape := x.Shape()
	dims, err := reductionAxes(len(xShape))
	if err != nil {
		return tensor.Tensor[float32, B]{}, err
	}

	features := xShape[1]
	if gamma.Shape().NumElements() != features || beta.Shape().NumElements() != features {
		return tensor.Tensor[float32, B]{}, fmt.Errorf(
			"batch norm %q: gamma/beta must have %d elements, got %d and %d",
			id, features, gamma.Shape().NumElements(), beta.Shape().NumElements())
	}
	if stats == nil {
		return tensor.Tensor[float32, B]{}, fmt.Errorf("batch norm %q: nil statistics context", id)
	}

	bShape := statsShape(xShape)
	backend := x.Backend()

	var xhat tensor.Tensor[float32, B]
	if training {
		mean := x.MeanDims(dims, true)
		diff := x.Sub(mean)
		variance := diff.Mul(diff).MeanDims(dims, true)

		if cfg.Debug {
			log.Printf("batch norm %q: batch mean=%v variance=%v", id, mean.Data(), variance.Data())
		}

		xhat = diff.Mul(variance.AddScalar(cfg.Eps).Rsqrt())

		// The update reads the statistics as plain values; the copies
		// detach them from the gradient tape.
		stats.Update(id, snapshot(mean), snapshot(variance), cfg.Momentum)
	} else {
		runMean, runVar, ok := stats.Lookup(id)
		if !ok {
			return tensor.Tensor[float32, B]{}, fmt.Errorf("%w %q: train before inferring", ErrMissingStats, id)
		}
		mean := tensor.MustFromSlice(backend, runMean, bShape...)
		variance := tensor.MustFromSlice(backend, runVar, bShape...)

		if cfg.Debug {
			log.Printf("batch norm %q: running mean=%v variance=%v", id, runMean, runVar)
		}

		xhat = x.Sub(mean).Mul(variance.AddScalar(cfg.Eps).Rsqrt())
	}

	gammaB := gamma.Reshape(bShape...)
	betaB := beta.Reshape(bShape...)
	return xhat.Mul(gammaB).Add(betaB), nil
}

// snapshot copies a statistics tensor's values out of tape-managed
// storage.
func snapshot[B tensor.Backend](t tensor.Tensor[float32, B]) []float32 {
	data := t.Data()
	out := make([]float32, len(data))
	copy(out, data)
	return out
}

// BatchNorm is the layer form of BatchNormalize: it owns the gamma and
// beta parameters for one normalization site and carries the site's
// layer identifier into the shared statistics context.
type BatchNorm[B tensor.Backend] struct {
	id       string
	gamma    *Parameter[B]
	beta     *Parameter[B]
	stats    *BatchStats
	cfg      BatchNormConfig
	training bool
}

// NewBatchNorm builds a layer for numFeatures features (or channels)
// registered under id in stats. Gamma starts at one and beta at zero,
// the identity transform.
func NewBatchNorm[B tensor.Backend](backend B, id string, numFeatures int, stats *BatchStats) *BatchNorm[B] {
	gamma := tensor.Ones[float32](backend, numFeatures)
	beta := tensor.Zeros[float32](backend, numFeatures)
	return &BatchNorm[B]{
		id:       id,
		gamma:    NewParameter(id+".gamma", gamma),
		beta:     NewParameter(id+".beta", beta),
		stats:    stats,
		cfg:      DefaultBatchNormConfig(),
		training: true,
	}
}

// SetConfig overrides eps/momentum/debug for this site.
func (bn *BatchNorm[B]) SetConfig(cfg BatchNormConfig) { bn.cfg = cfg }

// SetTraining switches between batch statistics (training) and running
// statistics (inference).
func (bn *BatchNorm[B]) SetTraining(training bool) { bn.training = training }

// ID returns the layer identifier used in the statistics context.
func (bn *BatchNorm[B]) ID() string { return bn.id }

func (bn *BatchNorm[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	out, err := BatchNormalize(x, bn.gamma.Tensor(), bn.beta.Tensor(), bn.id, bn.training, bn.stats, bn.cfg)
	if err != nil {
		panic(fmt.Sprintf("batch norm %q: %v", bn.id, err))
	}
	return out
}

func (bn *BatchNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{bn.gamma, bn.beta}
}
