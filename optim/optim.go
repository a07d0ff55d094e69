// Copyright 2026 Strand ML. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim is the public API for Strand's optimizers.
package optim

import (
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/optim"
	"github.com/strand-ml/strand/internal/tensor"
)

// Optimizer is the common optimizer interface.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// NewSGD creates an SGD optimizer over the given parameters.
//
// Example:
//
//	opt := optim.NewSGD(model.Parameters(), 0.01, 0.9)
//	opt.Step(grads)
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float32) *SGD[B] {
	return optim.NewSGD(params, lr, momentum)
}
