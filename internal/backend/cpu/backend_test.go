package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/strand-ml/strand/internal/tensor"
)

func rawFrom(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	raw, err := tensor.NewRaw(tensor.Shape(shape), tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(raw.AsFloat32(), data)
	return raw
}

func assertFloats(t *testing.T, want, got []float32, tol float64) {
	t.Helper()
	require.Len(t, got, len(want))
	for i := range want {
		assert.InDelta(t, want[i], got[i], tol, "element %d", i)
	}
}

func TestAddBroadcast(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := rawFrom(t, []float32{10, 20, 30}, 3)

	out := backend.Add(a, b)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assertFloats(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32(), 0)
}

func TestAddBroadcastChannelAxis(t *testing.T) {
	backend := New()
	// [1, 2, 1, 1] bias against a [2, 2, 2, 2] activation map.
	x := rawFrom(t, []float32{
		1, 1, 1, 1, 2, 2, 2, 2,
		3, 3, 3, 3, 4, 4, 4, 4,
	}, 2, 2, 2, 2)
	bias := rawFrom(t, []float32{10, 20}, 1, 2, 1, 1)

	out := backend.Add(x, bias)
	assertFloats(t, []float32{
		11, 11, 11, 11, 22, 22, 22, 22,
		13, 13, 13, 13, 24, 24, 24, 24,
	}, out.AsFloat32(), 0)
}

func TestAddSameShapeReusesUniqueBuffer(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3}, 3)
	b := rawFrom(t, []float32{10, 20, 30}, 3)

	out := backend.Add(a, b)
	assert.Same(t, a, out, "sole owner with matching shapes must be updated in place")
	assertFloats(t, []float32{11, 22, 33}, out.AsFloat32(), 0)
	assertFloats(t, []float32{10, 20, 30}, b.AsFloat32(), 0)
}

func TestAddPinnedOperandLeftIntact(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3}, 3)
	b := rawFrom(t, []float32{10, 20, 30}, 3)

	release := a.ForceNonUnique()
	defer release()

	out := backend.Add(a, b)
	assert.NotSame(t, a, out, "pinned operand must not be reused")
	assertFloats(t, []float32{11, 22, 33}, out.AsFloat32(), 0)
	assertFloats(t, []float32{1, 2, 3}, a.AsFloat32(), 0)
}

func TestAddSharedBufferLeftIntact(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3}, 3)
	b := rawFrom(t, []float32{10, 20, 30}, 3)
	view := a.Clone()

	out := backend.Add(a, b)
	assert.NotSame(t, a, out, "buffer with two owners must not be reused")
	assertFloats(t, []float32{1, 2, 3}, view.AsFloat32(), 0)
}

func TestMulScalarReusesUniqueBuffer(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3}, 3)

	out := backend.MulScalar(x, float32(2))
	assert.Same(t, x, out, "sole owner must be updated in place")
	assertFloats(t, []float32{2, 4, 6}, out.AsFloat32(), 0)
}

func TestMulScalarPinnedOperandLeftIntact(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3}, 3)

	release := x.ForceNonUnique()
	defer release()

	out := backend.MulScalar(x, float32(2))
	assert.NotSame(t, x, out, "pinned operand must not be reused")
	assertFloats(t, []float32{1, 2, 3}, x.AsFloat32(), 0)
	assertFloats(t, []float32{2, 4, 6}, out.AsFloat32(), 0)
}

func TestSumDimsMultiAxis(t *testing.T) {
	backend := New()
	// [2, 2, 2]: reducing axes {0, 2} leaves one value per middle axis.
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6, 7, 8}, 2, 2, 2)

	kept := backend.SumDims(x, []int{0, 2}, true)
	assert.Equal(t, tensor.Shape{1, 2, 1}, kept.Shape())
	assertFloats(t, []float32{1 + 2 + 5 + 6, 3 + 4 + 7 + 8}, kept.AsFloat32(), 0)

	dropped := backend.SumDims(x, []int{0, 2}, false)
	assert.Equal(t, tensor.Shape{2}, dropped.Shape())
}

func TestMeanDimsBatchAxes(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 7, 5, 4, 6, 10}, 3, 2)

	mean := backend.MeanDims(x, []int{0}, true)
	assert.Equal(t, tensor.Shape{1, 2}, mean.Shape())
	assertFloats(t, []float32{4, 7}, mean.AsFloat32(), 1e-6)
}

func TestMeanDimsNegativeAxis(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4}, 2, 2)
	mean := backend.MeanDims(x, []int{-1}, true)
	assertFloats(t, []float32{1.5, 3.5}, mean.AsFloat32(), 1e-6)
}

func TestMatMul(t *testing.T) {
	backend := New()
	a := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	b := rawFrom(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)

	out := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assertFloats(t, []float32{58, 64, 139, 154}, out.AsFloat32(), 1e-5)
}

func TestConv2DIdentityKernel(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 1, 1, 3, 3)
	k := rawFrom(t, []float32{1}, 1, 1, 1, 1)

	out := backend.Conv2D(x, k, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 3, 3}, out.Shape())
	assertFloats(t, x.AsFloat32(), out.AsFloat32(), 0)
}

func TestConv2DKnownValues(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 1, 1, 3, 3)
	k := rawFrom(t, []float32{
		1, 0,
		0, 1,
	}, 1, 1, 2, 2)

	out := backend.Conv2D(x, k, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assertFloats(t, []float32{1 + 5, 2 + 6, 4 + 8, 5 + 9}, out.AsFloat32(), 1e-5)
}

func TestConv2DGradientShapes(t *testing.T) {
	backend := New()
	x := rawFrom(t, make([]float32, 2*3*5*5), 2, 3, 5, 5)
	k := rawFrom(t, make([]float32, 4*3*3*3), 4, 3, 3, 3)

	out := backend.Conv2D(x, k, 1, 1)
	require.Equal(t, tensor.Shape{2, 4, 5, 5}, out.Shape())

	gradIn := backend.Conv2DInputBackward(out, k, x.Shape(), 1, 1)
	assert.Equal(t, x.Shape(), gradIn.Shape())
	gradK := backend.Conv2DKernelBackward(out, x, k.Shape(), 1, 1)
	assert.Equal(t, k.Shape(), gradK.Shape())
}

func TestAvgPool2D(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, 1, 1, 4, 4)

	out := backend.AvgPool2D(x, 2, 2)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assertFloats(t, []float32{3.5, 5.5, 11.5, 13.5}, out.AsFloat32(), 1e-5)
}

func TestAvgPool2DBackwardSpreadsEvenly(t *testing.T) {
	backend := New()
	gradOut := rawFrom(t, []float32{4, 8, 12, 16}, 1, 1, 2, 2)

	gradIn := backend.AvgPool2DBackward(gradOut, tensor.Shape{1, 1, 4, 4}, 2, 2)
	assert.Equal(t, tensor.Shape{1, 1, 4, 4}, gradIn.Shape())
	assertFloats(t, []float32{
		1, 1, 2, 2,
		1, 1, 2, 2,
		3, 3, 4, 4,
		3, 3, 4, 4,
	}, gradIn.AsFloat32(), 1e-6)
}

func TestSoftmaxRows(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 1, 1, 1}, 2, 3)

	out := backend.Softmax(x, -1)
	rows := out.AsFloat32()
	var sum0, sum1 float64
	for i := 0; i < 3; i++ {
		sum0 += float64(rows[i])
		sum1 += float64(rows[3+i])
	}
	assert.InDelta(t, 1.0, sum0, 1e-6)
	assert.InDelta(t, 1.0, sum1, 1e-6)
	assert.InDelta(t, 1.0/3.0, float64(rows[3]), 1e-6)
	assert.Greater(t, rows[2], rows[1])
}

func TestCrossEntropyUniformLogits(t *testing.T) {
	backend := New()
	logits := rawFrom(t, []float32{0, 0, 0, 0}, 2, 2)
	targets, err := tensor.NewRaw(tensor.Shape{2}, tensor.Int32, tensor.CPU)
	require.NoError(t, err)
	copy(targets.AsInt32(), []int32{0, 1})

	loss := backend.CrossEntropy(logits, targets)
	assert.InDelta(t, math.Log(2), float64(loss.AsFloat32()[0]), 1e-6)
}

func TestArgmax(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{0.1, 0.7, 0.2, 0.9, 0.05, 0.05}, 2, 3)

	out := backend.Argmax(x, 1)
	assert.Equal(t, tensor.Shape{2}, out.Shape())
	assert.Equal(t, []int32{1, 0}, out.AsInt32())
}

func TestTranspose2D(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	out := backend.Transpose(x, 0, 1)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assertFloats(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32(), 0)
}

func TestExpandStats(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2}, 1, 2, 1, 1)

	out := backend.Expand(x, tensor.Shape{2, 2, 2, 2})
	assertFloats(t, []float32{
		1, 1, 1, 1, 2, 2, 2, 2,
		1, 1, 1, 1, 2, 2, 2, 2,
	}, out.AsFloat32(), 0)
}

func TestReshapeSharesBuffer(t *testing.T) {
	backend := New()
	x := rawFrom(t, []float32{1, 2, 3, 4}, 2, 2)

	view := backend.Reshape(x, tensor.Shape{4})
	view.AsFloat32()[0] = 42
	assert.Equal(t, float32(42), x.AsFloat32()[0])
}
