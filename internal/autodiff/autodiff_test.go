package autodiff

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/backend/cpu"
	"github.com/strand-ml/strand/internal/tensor"
)

type testBackend = *Backend[*cpu.CPUBackend]

func newTestBackend() testBackend {
	return New(cpu.New())
}

func rawFrom(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func TestAddBackward(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x := rawFrom(t, []float32{1, 2, 3}, 3)
	y := rawFrom(t, []float32{4, 5, 6}, 3)
	sum := backend.Sum(backend.Add(x, y))

	grads, err := Backward(backend, sum)
	require.NoError(t, err)
	assert.Equal(t, []float32{1, 1, 1}, grads[x].AsFloat32())
	assert.Equal(t, []float32{1, 1, 1}, grads[y].AsFloat32())
}

func TestMulBackwardSwapsOperands(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x := rawFrom(t, []float32{2, 3}, 2)
	y := rawFrom(t, []float32{5, 7}, 2)
	loss := backend.Sum(backend.Mul(x, y))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)
	assert.Equal(t, []float32{5, 7}, grads[x].AsFloat32())
	assert.Equal(t, []float32{2, 3}, grads[y].AsFloat32())
}

func TestBroadcastAddReducesGrad(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	bias := rawFrom(t, []float32{10, 20, 30}, 3)
	loss := backend.Sum(backend.Add(x, bias))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)
	require.Contains(t, grads, bias)
	assert.Equal(t, tensor.Shape{3}, grads[bias].Shape())
	assert.Equal(t, []float32{2, 2, 2}, grads[bias].AsFloat32())
}

func TestMeanDimsBackward(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x := rawFrom(t, []float32{1, 7, 5, 4, 6, 10}, 3, 2)
	loss := backend.Sum(backend.MeanDims(x, []int{0}, true))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)
	g := grads[x].AsFloat32()
	for i, v := range g {
		assert.InDelta(t, 1.0/3.0, float64(v), 1e-6, "element %d", i)
	}
}

func TestMatMulBackwardShapes(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := rawFrom(t, []float32{1, 0, 0, 1, 1, 1}, 3, 2)
	loss := backend.Sum(backend.MatMul(a, b))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{2, 3}, grads[a].Shape())
	assert.Equal(t, tensor.Shape{3, 2}, grads[b].Shape())
}

func TestCrossEntropyBackward(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	logits := rawFrom(t, []float32{0, 0, 0, 0}, 2, 2)
	targets, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(targets.AsInt32(), []int32{0, 1})

	loss := backend.CrossEntropy(logits, targets)
	grads, err := Backward(backend, loss)
	require.NoError(t, err)

	// softmax is uniform 0.5; (p - onehot)/batch.
	g := grads[logits].AsFloat32()
	assert.InDelta(t, -0.25, float64(g[0]), 1e-6)
	assert.InDelta(t, 0.25, float64(g[1]), 1e-6)
	assert.InDelta(t, 0.25, float64(g[2]), 1e-6)
	assert.InDelta(t, -0.25, float64(g[3]), 1e-6)

	_, hasTargets := grads[targets]
	assert.False(t, hasTargets, "targets must not receive a gradient")
}

func TestDecoratorPinsOperandsAgainstReuse(t *testing.T) {
	backend := newTestBackend()

	// The bare CPU backend reuses a uniquely-owned operand for
	// same-shape arithmetic; through the decorator the operands are
	// pinned for the call, so saved forward values stay intact.
	x := rawFrom(t, []float32{1, 2, 3}, 3)
	y := rawFrom(t, []float32{10, 20, 30}, 3)

	out := backend.Add(x, y)
	assert.NotSame(t, x, out)
	assert.Equal(t, []float32{1, 2, 3}, x.AsFloat32())
	assert.Equal(t, []float32{11, 22, 33}, out.AsFloat32())

	bare := backend.Inner()
	reused := bare.Add(x, y)
	assert.Same(t, x, reused)
}

func TestMulBackwardKeepsOutputGradIntact(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	// Mul's backward consumes the incoming gradient twice; the second
	// read must see the original values, not a reused buffer.
	x := rawFrom(t, []float32{2, 3}, 2)
	y := rawFrom(t, []float32{5, 7}, 2)
	prod := backend.Mul(x, y)
	loss := backend.Sum(backend.Mul(prod, prod))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)

	// loss = sum((xy)^2): d/dx = 2xy^2, d/dy = 2x^2y.
	assert.Equal(t, []float32{100, 294}, grads[x].AsFloat32())
	assert.Equal(t, []float32{40, 126}, grads[y].AsFloat32())
}

func TestTapeClearBetweenSteps(t *testing.T) {
	backend := newTestBackend()
	backend.Tape().StartRecording()

	x := rawFrom(t, []float32{1, 2}, 2)
	backend.Sum(backend.MulScalar(x, float32(2)))
	require.Greater(t, backend.Tape().NumOperations(), 0)

	backend.Tape().Clear()
	assert.Equal(t, 0, backend.Tape().NumOperations())
}

func TestForwardOnlyRecordsNothing(t *testing.T) {
	backend := newTestBackend()

	x := rawFrom(t, []float32{1, 2}, 2)
	backend.ReLU(x)
	assert.Equal(t, 0, backend.Tape().NumOperations())
}

// TestNormalizationGradientNumeric checks the analytic gradient of a
// normalization-shaped composition against central differences.
func TestNormalizationGradientNumeric(t *testing.T) {
	forward := func(data []float32) float32 {
		plain := newTestBackend()
		x := rawFrom(t, data, 3, 2)
		mean := plain.MeanDims(x, []int{0}, true)
		diff := plain.Sub(x, mean)
		variance := plain.MeanDims(plain.Mul(diff, diff), []int{0}, true)
		xhat := plain.Mul(diff, plain.Rsqrt(plain.AddScalar(variance, float32(1e-5))))
		// A non-uniform weighting so the gradient is not trivially zero.
		weights := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 3, 2)
		return plain.Sum(plain.Mul(xhat, weights)).AsFloat32()[0]
	}

	input := []float32{1, 7, 5, 4, 6, 10}

	backend := newTestBackend()
	backend.Tape().StartRecording()
	x := rawFrom(t, input, 3, 2)
	mean := backend.MeanDims(x, []int{0}, true)
	diff := backend.Sub(x, mean)
	variance := backend.MeanDims(backend.Mul(diff, diff), []int{0}, true)
	xhat := backend.Mul(diff, backend.Rsqrt(backend.AddScalar(variance, float32(1e-5))))
	weights := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 3, 2)
	loss := backend.Sum(backend.Mul(xhat, weights))

	grads, err := Backward(backend, loss)
	require.NoError(t, err)
	analytic := grads[x].AsFloat32()

	const h = 1e-2
	for i := range input {
		bumped := make([]float32, len(input))
		copy(bumped, input)
		bumped[i] += h
		plus := forward(bumped)
		bumped[i] -= 2 * h
		minus := forward(bumped)
		numeric := (plus - minus) / (2 * h)
		assert.InDelta(t, numeric, analytic[i], 5e-2, "element %d", i)
	}
}
