package main

import (
	"fmt"
	"math/rand"
	"slices"

	"github.com/strand-ml/strand/internal/checkpoint"
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// Model is a small convolutional classifier for 28x28 grayscale
// digits. Every block is normalized before its activation:
//
//	conv 1->8 5x5  / bn / relu / avgpool 2
//	conv 8->16 5x5 / bn / relu / avgpool 2
//	flatten / fc ->128 / bn / relu / fc ->10
type Model[B tensor.Backend] struct {
	net   *nn.Sequential[B]
	norms []*nn.BatchNorm[B]
	stats *nn.BatchStats
}

// NewModel builds the classifier. All normalization sites share the
// given statistics context so a checkpoint captures them together.
func NewModel[B tensor.Backend](backend B, rng *rand.Rand, stats *nn.BatchStats) *Model[B] {
	bn1 := nn.NewBatchNorm(backend, "bn1", 8, stats)
	bn2 := nn.NewBatchNorm(backend, "bn2", 16, stats)
	bn3 := nn.NewBatchNorm(backend, "bn3", 128, stats)

	net := nn.NewSequential[B](
		nn.NewConv2D(backend, rng, "conv1", 1, 8, 5, 1, 2),
		bn1,
		nn.NewReLU[B](),
		nn.NewAvgPool2D[B](2, 2),
		nn.NewConv2D(backend, rng, "conv2", 8, 16, 5, 1, 2),
		bn2,
		nn.NewReLU[B](),
		nn.NewAvgPool2D[B](2, 2),
		nn.NewFlatten[B](),
		nn.NewLinear(backend, rng, "fc1", 16*7*7, 128),
		bn3,
		nn.NewReLU[B](),
		nn.NewLinear(backend, rng, "fc2", 128, 10),
	)

	return &Model[B]{
		net:   net,
		norms: []*nn.BatchNorm[B]{bn1, bn2, bn3},
		stats: stats,
	}
}

func (m *Model[B]) Forward(x tensor.Tensor[float32, B]) tensor.Tensor[float32, B] {
	return m.net.Forward(x)
}

func (m *Model[B]) Parameters() []*nn.Parameter[B] {
	return m.net.Parameters()
}

// SetTraining flips every normalization site between batch and running
// statistics.
func (m *Model[B]) SetTraining(training bool) {
	m.net.SetTraining(training)
}

// SetNormConfig applies one config to every normalization site.
func (m *Model[B]) SetNormConfig(cfg nn.BatchNormConfig) {
	for _, bn := range m.norms {
		bn.SetConfig(cfg)
	}
}

// Snapshot captures parameters and running statistics for saving.
func (m *Model[B]) Snapshot() *checkpoint.Snapshot {
	snap := &checkpoint.Snapshot{
		Tensors:      make(map[string]checkpoint.Tensor),
		RunningStats: make(map[string]checkpoint.RunningStats),
	}
	for _, p := range m.Parameters() {
		snap.Tensors[p.Name()] = checkpoint.Tensor{
			Shape: slices.Clone(p.Tensor().Shape()),
			Data:  slices.Clone(p.Data()),
		}
	}
	for _, id := range m.stats.Layers() {
		mean, variance, _ := m.stats.Lookup(id)
		snap.RunningStats[id] = checkpoint.RunningStats{Mean: mean, Variance: variance}
	}
	return snap
}

// Restore loads a snapshot into the model in place. Parameters are
// matched by name and must keep their shapes.
func (m *Model[B]) Restore(snap *checkpoint.Snapshot) error {
	for _, p := range m.Parameters() {
		t, ok := snap.Tensors[p.Name()]
		if !ok {
			return fmt.Errorf("restore: checkpoint has no tensor %q", p.Name())
		}
		if len(t.Data) != len(p.Data()) {
			return fmt.Errorf("restore: tensor %q has %d values, model wants %d",
				p.Name(), len(t.Data), len(p.Data()))
		}
		copy(p.Data(), t.Data)
	}
	for id, rs := range snap.RunningStats {
		m.stats.Set(id, rs.Mean, rs.Variance)
	}
	return nil
}
