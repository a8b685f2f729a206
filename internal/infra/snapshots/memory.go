// Package snapshots is the in-memory health-score history backing risk-spike
// detection. Readings are kept per entity, trimmed to a retention span.
package snapshots

import (
	"context"
	"sort"
	"sync"
	"time"

	"riskrouter/internal/domain/health"
)

const retention = 30 * 24 * time.Hour

type reading struct {
	score float64
	at    time.Time
}

// Memory keeps per-entity reading histories behind a single mutex.
type Memory struct {
	mu      sync.Mutex
	now     func() time.Time
	history map[string][]reading
}

func NewMemory(now func() time.Time) *Memory {
	if now == nil {
		now = time.Now
	}
	return &Memory{
		now:     now,
		history: make(map[string][]reading),
	}
}

func (m *Memory) Observe(_ context.Context, entityID string, score float64, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := append(m.history[entityID], reading{score: score, at: at})
	sort.Slice(hist, func(i, j int) bool { return hist[i].at.Before(hist[j].at) })

	cutoff := m.now().Add(-retention)
	for len(hist) > 0 && hist[0].at.Before(cutoff) {
		hist = hist[1:]
	}
	m.history[entityID] = hist
	return nil
}

// PriorSnapshot returns the oldest reading inside the window. Readings newer
// than the latest one don't count as history; with fewer than two readings
// there is nothing to compare against.
func (m *Memory) PriorSnapshot(_ context.Context, entityID string, window time.Duration) (float64, time.Time, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	hist := m.history[entityID]
	if len(hist) < 2 {
		return 0, time.Time{}, false, nil
	}
	cutoff := m.now().Add(-window)
	for _, r := range hist[:len(hist)-1] {
		if !r.at.Before(cutoff) {
			return r.score, r.at, true, nil
		}
	}
	return 0, time.Time{}, false, nil
}

func (m *Memory) Latest(_ context.Context) ([]health.Observation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]health.Observation, 0, len(m.history))
	for id, hist := range m.history {
		if len(hist) == 0 {
			continue
		}
		out = append(out, health.Observation{
			EntityID: id,
			Score:    hist[len(hist)-1].score,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EntityID < out[j].EntityID })
	return out, nil
}
