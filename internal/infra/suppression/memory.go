// Package suppression implements alert-fatigue control: a trimmed sliding
// window of alert times per (entity, alertType) key, consulted before a
// ticket is scored or enqueued. A memory store is the default; the redis
// twin shares the window across replicas of the intake edge.
package suppression

import (
	"context"
	"sync"
	"time"

	"riskrouter/internal/domain/tickets"
)

const (
	windowSpan    = 24 * time.Hour
	minSpacing    = 2 * time.Hour
	maxPerWindow  = 5
	criticalFloor = 3
	keepPerKey    = 10
)

// criticalTypes are exempt from suppression until the 24h count reaches
// criticalFloor; churn and payment signals must not be silenced early.
var criticalTypes = map[tickets.RiskType]bool{
	tickets.RiskChurn:   true,
	tickets.RiskPayment: true,
}

// Suppressor decides whether an alert for (entity, alertType) should be
// dropped, and records occurrences that were let through.
type Suppressor interface {
	ShouldSuppress(ctx context.Context, entityID string, alertType tickets.RiskType) (bool, error)
	Record(ctx context.Context, entityID string, alertType tickets.RiskType) error
}

type memoryStore struct {
	mu      sync.Mutex
	now     func() time.Time
	history map[string][]time.Time
}

func NewMemory(now func() time.Time) Suppressor {
	if now == nil {
		now = time.Now
	}
	return &memoryStore{now: now, history: make(map[string][]time.Time)}
}

func key(entityID string, alertType tickets.RiskType) string {
	return entityID + ":" + string(alertType)
}

func (m *memoryStore) ShouldSuppress(_ context.Context, entityID string, alertType tickets.RiskType) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	recent := recentWithin(m.history[key(entityID, alertType)], now)
	return decide(recent, now, alertType), nil
}

func (m *memoryStore) Record(_ context.Context, entityID string, alertType tickets.RiskType) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := key(entityID, alertType)
	hist := append(m.history[k], m.now())
	if len(hist) > keepPerKey {
		hist = hist[len(hist)-keepPerKey:]
	}
	m.history[k] = hist
	return nil
}

func recentWithin(hist []time.Time, now time.Time) []time.Time {
	out := hist[:0:0]
	for _, t := range hist {
		if now.Sub(t) < windowSpan {
			out = append(out, t)
		}
	}
	return out
}

// decide applies the suppression rules to the trimmed window.
func decide(recent []time.Time, now time.Time, alertType tickets.RiskType) bool {
	if criticalTypes[alertType] && len(recent) < criticalFloor {
		return false
	}
	if len(recent) >= maxPerWindow {
		return true
	}
	if len(recent) > 0 && now.Sub(recent[len(recent)-1]) < minSpacing {
		return true
	}
	return false
}
