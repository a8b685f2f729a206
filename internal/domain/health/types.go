// Package health holds the customer health-score reading shared by the
// snapshot stores and the risk-spike detector.
package health

// Observation is one health-score reading for an entity.
type Observation struct {
	EntityID string
	Name     string
	Score    float64
}
