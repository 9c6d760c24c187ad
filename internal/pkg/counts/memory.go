package counts

import (
	"context"
	"sync"
)

// MemoryAggregator keeps counters in process memory. Used in tests and for
// rebuild dry-runs.
type MemoryAggregator struct {
	mu     sync.Mutex
	values map[string]int64

	// FailWith, when set, is returned by Apply without touching any counter.
	FailWith error
}

func NewMemoryAggregator() *MemoryAggregator {
	return &MemoryAggregator{values: make(map[string]int64)}
}

func (m *MemoryAggregator) Apply(ctx context.Context, delta Delta) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailWith != nil {
		return &AggregationError{Err: m.FailWith}
	}
	for name, d := range delta {
		if d == 0 {
			continue
		}
		m.values[name] += d
	}
	return nil
}

func (m *MemoryAggregator) Get(ctx context.Context, name string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[name], nil
}

// Snapshot copies the current counter values.
func (m *MemoryAggregator) Snapshot() map[string]int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[string]int64, len(m.values))
	for k, v := range m.values {
		out[k] = v
	}
	return out
}
