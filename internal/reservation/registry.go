package reservation

import (
	"fmt"
	"sync"

	"github.com/reeltime/seat-reservation/internal/domain"
)

// Registry holds the engine for every registered showtime. Engines live for
// the showtime's duration; nothing is deleted mid-process.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]*Engine
}

func NewRegistry() *Registry {
	return &Registry{engines: make(map[string]*Engine)}
}

func (r *Registry) Add(engine *Engine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.engines[engine.ShowtimeID()]; exists {
		return fmt.Errorf("%w: %s", domain.ErrShowtimeAlreadyExists, engine.ShowtimeID())
	}

	r.engines[engine.ShowtimeID()] = engine

	return nil
}

func (r *Registry) Get(showtimeID string) (*Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engine, ok := r.engines[showtimeID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrShowtimeNotFound, showtimeID)
	}

	return engine, nil
}

// All snapshots the registered engines, for the expiry sweeper.
func (r *Registry) All() []*Engine {
	r.mu.RLock()
	defer r.mu.RUnlock()

	engines := make([]*Engine, 0, len(r.engines))
	for _, e := range r.engines {
		engines = append(engines, e)
	}

	return engines
}
