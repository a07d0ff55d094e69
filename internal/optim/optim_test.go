package optim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/nn"
	"github.com/strand-ml/strand/internal/tensor"
)

func gradFor(t *testing.T, p *nn.Parameter[*cpu.CPUBackend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(p.Tensor().Shape(), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Tensor().Raw(): raw}
}

func TestSGDPlainUpdate(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.MustFromSlice(backend, []float32{1, 2}, 2))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, 0.1, 0)

	opt.Step(gradFor(t, p, []float32{10, -10}))
	assert.InDelta(t, 0.0, float64(p.Data()[0]), 1e-6)
	assert.InDelta(t, 3.0, float64(p.Data()[1]), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.MustFromSlice(backend, []float32{0}, 1))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, 1, 0.5)

	opt.Step(gradFor(t, p, []float32{1}))
	// v = 1, p = -1
	assert.InDelta(t, -1.0, float64(p.Data()[0]), 1e-6)

	opt.Step(gradFor(t, p, []float32{1}))
	// v = 0.5 + 1 = 1.5, p = -2.5
	assert.InDelta(t, -2.5, float64(p.Data()[0]), 1e-6)
}

func TestSGDSkipsParamsWithoutGrad(t *testing.T) {
	backend := cpu.New()
	p := nn.NewParameter("w", tensor.MustFromSlice(backend, []float32{7}, 1))
	opt := NewSGD([]*nn.Parameter[*cpu.CPUBackend]{p}, 0.1, 0.9)

	opt.Step(map[*tensor.RawTensor]*tensor.RawTensor{})
	assert.Equal(t, float32(7), p.Data()[0])
}
