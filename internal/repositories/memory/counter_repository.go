package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/afripicx/nomads/internal/repositories"
)

// CounterRepository issues per-name sequence values starting from the seeded
// floor, so order numbers continue from a believable range rather than 1.
type CounterRepository struct {
	mu       sync.Mutex
	counters map[string]int64
}

// NewCounterRepository constructs the store with optional starting floors.
func NewCounterRepository(floors map[string]int64) *CounterRepository {
	counters := make(map[string]int64, len(floors))
	for name, floor := range floors {
		counters[name] = floor
	}
	return &CounterRepository{counters: counters}
}

// Next returns the next sequence value for the named counter.
func (r *CounterRepository) Next(_ context.Context, name string) (int64, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return 0, repositories.NewInternalError("counter.next", errors.New("missing counter name"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.counters[name]++
	return r.counters[name], nil
}
