// Copyright 2026 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn is the public API for Strand's neural-network layers.
package nn

import (
	"math/rand"

	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

// Module is a forward-computing unit with learnable parameters.
type Module[B tensor.Backend] = nn.Module[B]

// Parameter is a named learnable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// NewParameter creates a parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Layers

// Linear is a fully connected layer.
type Linear[B tensor.Backend] = nn.Linear[B]

// NewLinear creates a linear layer with Xavier initialization.
func NewLinear[B tensor.Backend](backend B, rng *rand.Rand, name string, inFeatures, outFeatures int) *Linear[B] {
	return nn.NewLinear(backend, rng, name, inFeatures, outFeatures)
}

// Conv2D is a 2-D convolution layer over NCHW input.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolution layer with a square kernel.
func NewConv2D[B tensor.Backend](backend B, rng *rand.Rand, name string, inChannels, outChannels, kernelSize, stride, padding int) *Conv2D[B] {
	return nn.NewConv2D(backend, rng, name, inChannels, outChannels, kernelSize, stride, padding)
}

// AvgPool2D downsamples NCHW input by averaging square windows.
type AvgPool2D[B tensor.Backend] = nn.AvgPool2D[B]

// NewAvgPool2D creates an average pooling layer.
func NewAvgPool2D[B tensor.Backend](kernelSize, stride int) *AvgPool2D[B] {
	return nn.NewAvgPool2D[B](kernelSize, stride)
}

// ReLU applies max(0, x) element-wise.
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU activation layer.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return nn.NewReLU[B]()
}

// Flatten collapses every axis after the batch axis.
type Flatten[B tensor.Backend] = nn.Flatten[B]

// NewFlatten creates a flatten layer.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// Sequential chains modules in order.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a module chain.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Batch normalization

// Defaults for the batch normalization transform.
const (
	DefaultEps      = nn.DefaultEps
	DefaultMomentum = nn.DefaultMomentum
)

// Batch normalization failure modes.
var (
	ErrInvalidRank  = nn.ErrInvalidRank
	ErrMissingStats = nn.ErrMissingStats
)

// BatchStats is the caller-owned running-statistics context shared by a
// model's normalization sites.
type BatchStats = nn.BatchStats

// NewBatchStats returns an empty statistics context.
func NewBatchStats() *BatchStats {
	return nn.NewBatchStats()
}

// BatchNormConfig carries the transform's tunables.
type BatchNormConfig = nn.BatchNormConfig

// DefaultBatchNormConfig returns the conventional settings.
func DefaultBatchNormConfig() BatchNormConfig {
	return nn.DefaultBatchNormConfig()
}

// BatchNormalize is the functional form of batch normalization.
//
// Example:
//
//	stats := nn.NewBatchStats()
//	out, err := nn.BatchNormalize(x, gamma, beta, "bn1", true, stats, nn.DefaultBatchNormConfig())
func BatchNormalize[B tensor.Backend](
	x, gamma, beta tensor.Tensor[float32, B],
	id string,
	training bool,
	stats *BatchStats,
	cfg BatchNormConfig,
) (tensor.Tensor[float32, B], error) {
	return nn.BatchNormalize(x, gamma, beta, id, training, stats, cfg)
}

// BatchNorm is the layer form of BatchNormalize.
type BatchNorm[B tensor.Backend] = nn.BatchNorm[B]

// NewBatchNorm creates a normalization layer registered under id.
func NewBatchNorm[B tensor.Backend](backend B, id string, numFeatures int, stats *BatchStats) *BatchNorm[B] {
	return nn.NewBatchNorm(backend, id, numFeatures, stats)
}

// Loss

// CrossEntropyLoss computes mean softmax cross-entropy.
type CrossEntropyLoss[B tensor.Backend] = nn.CrossEntropyLoss[B]

// NewCrossEntropyLoss creates the loss module.
func NewCrossEntropyLoss[B tensor.Backend]() *CrossEntropyLoss[B] {
	return nn.NewCrossEntropyLoss[B]()
}

// Accuracy returns the fraction of rows whose argmax matches the target.
func Accuracy[B tensor.Backend](logits tensor.Tensor[float32, B], targets tensor.Tensor[int32, B]) float32 {
	return nn.Accuracy(logits, targets)
}

// Xavier draws a weight tensor from the Xavier/Glorot uniform range.
func Xavier[B tensor.Backend](backend B, rng *rand.Rand, fanIn, fanOut int, shape ...int) tensor.Tensor[float32, B] {
	return nn.Xavier(backend, rng, fanIn, fanOut, shape...)
}
