package nn

import (
	"math"
	"math/rand"
	"testing"

	"github.com/strand-ml/strand/internal/tensor"
)

func TestLinearShapes(t *testing.T) {
	backend := newBackend()
	rng := rand.New(rand.NewSource(42))
	layer := NewLinear(backend, rng, "fc", 4, 3)

	x := tensor.Zeros[float32](backend, 2, 4)
	out := layer.Forward(x)
	if !out.Shape().Equal(tensor.Shape{2, 3}) {
		t.Fatalf("expected [2 3], got %v", out.Shape())
	}
	if len(layer.Parameters()) != 2 {
		t.Fatalf("expected 2 parameters, got %d", len(layer.Parameters()))
	}
}

func TestConv2DShapes(t *testing.T) {
	backend := newBackend()
	rng := rand.New(rand.NewSource(42))
	layer := NewConv2D(backend, rng, "conv", 1, 8, 5, 1, 2)

	x := tensor.Zeros[float32](backend, 2, 1, 28, 28)
	out := layer.Forward(x)
	if !out.Shape().Equal(tensor.Shape{2, 8, 28, 28}) {
		t.Fatalf("expected [2 8 28 28], got %v", out.Shape())
	}
}

func TestFlatten(t *testing.T) {
	backend := newBackend()
	x := tensor.Zeros[float32](backend, 2, 3, 4, 4)
	out := NewFlatten[Backend]().Forward(x)
	if !out.Shape().Equal(tensor.Shape{2, 48}) {
		t.Fatalf("expected [2 48], got %v", out.Shape())
	}
}

func TestSequentialPropagatesTrainingMode(t *testing.T) {
	backend := newBackend()
	stats := NewBatchStats()
	bn := NewBatchNorm(backend, "bn1", 2, stats)
	model := NewSequential[Backend](NewReLU[Backend](), bn)

	// Train once so inference has statistics, then switch modes.
	model.Forward(tensor.MustFromSlice(backend, []float32{1, 7, 5, 4, 6, 10}, 3, 2))
	model.SetTraining(false)

	meanBefore, _, _ := stats.Lookup("bn1")
	model.Forward(tensor.MustFromSlice(backend, []float32{50, 60, 70, 80}, 2, 2))
	meanAfter, _, _ := stats.Lookup("bn1")

	for i := range meanBefore {
		if meanBefore[i] != meanAfter[i] {
			t.Fatalf("eval-mode forward changed running stats: %v -> %v", meanBefore, meanAfter)
		}
	}
}

func TestXavierWithinBounds(t *testing.T) {
	backend := newBackend()
	rng := rand.New(rand.NewSource(7))
	w := Xavier(backend, rng, 100, 50, 100, 50)

	limit := math.Sqrt(6.0 / 150.0)
	for i, v := range w.Data() {
		if math.Abs(float64(v)) > limit {
			t.Fatalf("weight %d = %f exceeds xavier bound %f", i, v, limit)
		}
	}
}

func TestAccuracy(t *testing.T) {
	backend := newBackend()
	logits := tensor.MustFromSlice(backend, []float32{
		0.9, 0.1,
		0.2, 0.8,
		0.7, 0.3,
		0.4, 0.6,
	}, 4, 2)
	targets := tensor.MustFromSlice(backend, []int32{0, 1, 1, 1}, 4)

	acc := Accuracy(logits, targets)
	if math.Abs(float64(acc)-0.75) > 1e-6 {
		t.Fatalf("expected accuracy 0.75, got %f", acc)
	}
}

func TestCrossEntropyLossScalar(t *testing.T) {
	backend := newBackend()
	logits := tensor.MustFromSlice(backend, []float32{0, 0, 0, 0, 0, 0}, 2, 3)
	targets := tensor.MustFromSlice(backend, []int32{0, 2}, 2)

	loss := NewCrossEntropyLoss[Backend]().Forward(logits, targets)
	want := math.Log(3)
	if math.Abs(float64(loss.Item())-want) > 1e-5 {
		t.Fatalf("expected loss %f, got %f", want, loss.Item())
	}
}
