package nn

import (
	"fmt"
	"slices"
	"sync"
)

// BatchStats is the running-statistics context for batch
// normalization: per layer identifier, exponentially decayed estimates
// of feature mean and variance. The context is owned by whoever builds
// the model and threaded into every normalization call, so independent
// training runs never share state. A mutex guards the map; the
// transform itself is synchronous but nothing stops callers from
// training two models on separate goroutines against separate slices
// of one context.
type BatchStats struct {
	mu      sync.Mutex
	entries map[string]*runningStats
}

type runningStats struct {
	mean     []float32
	variance []float32
}

// NewBatchStats returns an empty statistics context.
func NewBatchStats() *BatchStats {
	return &BatchStats{entries: make(map[string]*runningStats)}
}

// Has reports whether running statistics exist for the identifier.
func (s *BatchStats) Has(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.entries[id]
	return ok
}

// Lookup returns copies of the running mean and variance for the
// identifier. The copies keep callers from mutating the estimates
// behind the context's back.
func (s *BatchStats) Lookup(id string) (mean, variance []float32, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[id]
	if !ok {
		return nil, nil, false
	}
	return slices.Clone(entry.mean), slices.Clone(entry.variance), true
}

// Update folds one batch's statistics into the running estimates. The
// first update for an identifier seeds the estimates with the batch
// values; subsequent updates decay them:
//
//	running = running*momentum + batch*(1-momentum)
//
// A feature-count change for an existing identifier is a wiring bug
// and panics.
func (s *BatchStats) Update(id string, batchMean, batchVariance []float32, momentum float32) {
	if len(batchMean) != len(batchVariance) {
		panic(fmt.Sprintf("batch stats %q: mean has %d features, variance %d",
			id, len(batchMean), len(batchVariance)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[id]
	if !ok {
		s.entries[id] = &runningStats{
			mean:     slices.Clone(batchMean),
			variance: slices.Clone(batchVariance),
		}
		return
	}
	if len(entry.mean) != len(batchMean) {
		panic(fmt.Sprintf("batch stats %q: feature count changed from %d to %d",
			id, len(entry.mean), len(batchMean)))
	}
	for i := range entry.mean {
		entry.mean[i] = entry.mean[i]*momentum + batchMean[i]*(1-momentum)
		entry.variance[i] = entry.variance[i]*momentum + batchVariance[i]*(1-momentum)
	}
}

// Set installs running statistics directly, replacing any existing
// entry. Checkpoint restore uses it.
func (s *BatchStats) Set(id string, mean, variance []float32) {
	if len(mean) != len(variance) {
		panic(fmt.Sprintf("batch stats %q: mean has %d features, variance %d",
			id, len(mean), len(variance)))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[id] = &runningStats{
		mean:     slices.Clone(mean),
		variance: slices.Clone(variance),
	}
}

// Layers lists the identifiers with statistics, sorted for stable
// serialization.
func (s *BatchStats) Layers() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	ids := make([]string, 0, len(s.entries))
	for id := range s.entries {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
