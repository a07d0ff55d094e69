// Copyright 2026 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package autodiff is the public API for reverse-mode automatic
// differentiation. It wraps any backend with a gradient tape.
//
// Example:
//
//	backend := autodiff.New(cpu.New())
//	backend.Tape().StartRecording()
//	loss := model.Forward(x)            // operations recorded
//	grads, err := autodiff.Backward(backend, loss.Raw())
package autodiff

import (
	"github.com/strand-ml/strand/internal/autodiff"
	"github.com/strand-ml/strand/internal/tensor"
)

// Backend is the recording decorator around an inner backend.
type Backend[B tensor.Backend] = autodiff.Backend[B]

// New wraps inner with a fresh gradient tape.
func New[B tensor.Backend](inner B) *Backend[B] {
	return autodiff.New(inner)
}

// GradientTape records operations for backpropagation.
type GradientTape = autodiff.GradientTape

// NewGradientTape creates an empty tape.
func NewGradientTape() *GradientTape {
	return autodiff.NewGradientTape()
}

// BackwardCapable is a backend that exposes its tape.
type BackwardCapable = autodiff.BackwardCapable

// Backward computes gradients of the scalar loss with respect to every
// tensor reachable from it on the tape.
func Backward[B tensor.Backend](backend *Backend[B], loss *tensor.RawTensor) (map[*tensor.RawTensor]*tensor.RawTensor, error) {
	return autodiff.Backward(backend, loss)
}
