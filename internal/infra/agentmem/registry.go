// Package agentmem is the in-memory agent pool. It owns every workload
// counter; reservation and release are single critical sections so no two
// dequeuers can assign past an agent's capacity.
package agentmem

import (
	"sort"
	"sync"

	"riskrouter/internal/domain/agents"
)

type Registry struct {
	mu   sync.Mutex
	pool map[string]*agents.Agent
}

func New() *Registry {
	return &Registry{pool: make(map[string]*agents.Agent)}
}

// Seed replaces the pool contents. Used at startup from config.
func (r *Registry) Seed(list []agents.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool = make(map[string]*agents.Agent, len(list))
	for i := range list {
		a := list[i]
		r.pool[a.ID] = &a
	}
}

func (r *Registry) Add(a agents.Agent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pool[a.ID] = &a
}

func (r *Registry) Get(id string) (agents.Agent, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.pool[id]
	if !ok {
		return agents.Agent{}, agents.ErrNotFound
	}
	return *a, nil
}

// Snapshot returns value copies of every agent, sorted by id for
// deterministic iteration by callers.
func (r *Registry) Snapshot() []agents.Agent {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]agents.Agent, 0, len(r.pool))
	for _, a := range r.pool {
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Reserve increments the agent's workload iff it is below capacity. The
// check and increment happen under one lock acquisition; a caller that
// loses the race gets ErrCapacityExceeded and must pick an alternate.
func (r *Registry) Reserve(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.pool[id]
	if !ok {
		return agents.ErrNotFound
	}
	if a.Workload >= a.MaxConcurrent {
		return agents.ErrCapacityExceeded
	}
	a.Workload++
	return nil
}

// Release decrements the agent's workload, flooring at zero.
func (r *Registry) Release(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.pool[id]
	if !ok {
		return agents.ErrNotFound
	}
	if a.Workload > 0 {
		a.Workload--
	}
	return nil
}

// RecordResolution folds a completed assignment into the agent's EMA
// performance record.
func (r *Registry) RecordResolution(id string, success bool, resolutionHours float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.pool[id]
	if !ok {
		return agents.ErrNotFound
	}
	a.Performance.RecordResolution(success, resolutionHours)
	return nil
}

// RecordEscalation marks that work was escalated away from the agent.
func (r *Registry) RecordEscalation(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.pool[id]
	if !ok {
		return agents.ErrNotFound
	}
	a.Performance.RecordEscalation()
	return nil
}
