package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBatchStatsSeedAndDecay(t *testing.T) {
	stats := NewBatchStats()
	require.False(t, stats.Has("bn1"))

	stats.Update("bn1", []float32{2}, []float32{4}, 0.9)
	mean, variance, ok := stats.Lookup("bn1")
	require.True(t, ok)
	assert.Equal(t, []float32{2}, mean)
	assert.Equal(t, []float32{4}, variance)

	stats.Update("bn1", []float32{12}, []float32{14}, 0.9)
	mean, variance, _ = stats.Lookup("bn1")
	assert.InDelta(t, 2*0.9+12*0.1, float64(mean[0]), 1e-6)
	assert.InDelta(t, 4*0.9+14*0.1, float64(variance[0]), 1e-6)
}

func TestBatchStatsLookupReturnsCopies(t *testing.T) {
	stats := NewBatchStats()
	stats.Update("bn1", []float32{1, 2}, []float32{3, 4}, 0.9)

	mean, _, _ := stats.Lookup("bn1")
	mean[0] = 99

	fresh, _, _ := stats.Lookup("bn1")
	assert.Equal(t, float32(1), fresh[0], "callers must not be able to mutate stored estimates")
}

func TestBatchStatsSetReplaces(t *testing.T) {
	stats := NewBatchStats()
	stats.Update("bn1", []float32{1}, []float32{1}, 0.9)
	stats.Set("bn1", []float32{5}, []float32{6})

	mean, variance, _ := stats.Lookup("bn1")
	assert.Equal(t, []float32{5}, mean)
	assert.Equal(t, []float32{6}, variance)
}

func TestBatchStatsLayersSorted(t *testing.T) {
	stats := NewBatchStats()
	stats.Update("bn3", []float32{1}, []float32{1}, 0.9)
	stats.Update("bn1", []float32{1}, []float32{1}, 0.9)
	stats.Update("bn2", []float32{1}, []float32{1}, 0.9)

	assert.Equal(t, []string{"bn1", "bn2", "bn3"}, stats.Layers())
}

func TestBatchStatsFeatureCountChangePanics(t *testing.T) {
	stats := NewBatchStats()
	stats.Update("bn1", []float32{1, 2}, []float32{1, 2}, 0.9)

	assert.Panics(t, func() {
		stats.Update("bn1", []float32{1}, []float32{1}, 0.9)
	})
}

func TestBatchStatsConcurrentUpdates(t *testing.T) {
	stats := NewBatchStats()
	done := make(chan struct{})
	for g := 0; g < 4; g++ {
		go func(id string) {
			defer func() { done <- struct{}{} }()
			for i := 0; i < 100; i++ {
				stats.Update(id, []float32{1}, []float32{1}, 0.9)
			}
		}(string(rune('a' + g)))
	}
	for g := 0; g < 4; g++ {
		<-done
	}
	assert.Len(t, stats.Layers(), 4)
}
