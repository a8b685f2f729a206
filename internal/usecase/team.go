package usecase

import (
	"sort"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/workflows"
)

// AgentSummary is one agent's row on the team dashboard.
type AgentSummary struct {
	ID             string
	Name           string
	Level          agents.Level
	Status         agents.Status
	Workload       int
	MaxConcurrent  int
	Utilization    float64
	SuccessRate    float64
	EscalationRate float64
	Satisfaction   float64
}

// TeamReport is the operator's view of the whole pool and its open work.
type TeamReport struct {
	Agents            []AgentSummary
	TotalCapacity     int
	TotalWorkload     int
	PoolUtilization   float64
	OpenWorkflows     int
	EscalatedCount    int
	SnoozedCount      int
	UnassignedCount   int
	AvgAssignmentRate float64
}

func (s *Scheduler) TeamDashboard() TeamReport {
	pool := s.registry.Snapshot()
	report := TeamReport{Agents: make([]AgentSummary, 0, len(pool))}
	for _, a := range pool {
		report.Agents = append(report.Agents, AgentSummary{
			ID:             a.ID,
			Name:           a.Name,
			Level:          a.Level,
			Status:         a.Status,
			Workload:       a.Workload,
			MaxConcurrent:  a.MaxConcurrent,
			Utilization:    a.Utilization(),
			SuccessRate:    a.Performance.SuccessRate,
			EscalationRate: a.Performance.EscalationRate,
			Satisfaction:   a.Performance.Satisfaction,
		})
		report.TotalCapacity += a.MaxConcurrent
		report.TotalWorkload += a.Workload
	}
	if report.TotalCapacity > 0 {
		report.PoolUtilization = float64(report.TotalWorkload) / float64(report.TotalCapacity)
	}

	s.mu.Lock()
	for _, w := range s.workflows {
		if w.Status.Terminal() {
			continue
		}
		report.OpenWorkflows++
		switch w.Status {
		case workflows.StatusEscalated:
			report.EscalatedCount++
		case workflows.StatusSnoozed:
			report.SnoozedCount++
		}
		if w.AssignedAgentID == "" {
			report.UnassignedCount++
		}
	}
	s.mu.Unlock()

	if report.OpenWorkflows > 0 {
		assigned := report.OpenWorkflows - report.UnassignedCount
		report.AvgAssignmentRate = float64(assigned) / float64(report.OpenWorkflows)
	}
	return report
}

// Recommendation is one staffing or coaching suggestion, ordered most
// pressing first.
type Recommendation struct {
	AgentID string
	Kind    string
	Detail  string
}

const (
	RecOverloaded     = "overloaded"
	RecUnderutilized  = "underutilized"
	RecLowSuccess     = "low_success_rate"
	RecHighEscalation = "high_escalation_rate"
)

// WorkloadRecommendations inspects the pool and flags agents whose workload
// or performance warrants operator attention. Thresholds match the ones the
// dashboard highlights.
func (s *Scheduler) WorkloadRecommendations() []Recommendation {
	var recs []Recommendation
	for _, a := range s.registry.Snapshot() {
		if a.Status == agents.StatusOutOfOffice {
			continue
		}
		if a.Utilization() > 0.9 {
			recs = append(recs, Recommendation{
				AgentID: a.ID,
				Kind:    RecOverloaded,
				Detail:  "at or near capacity; route new work elsewhere or raise max concurrency",
			})
		} else if a.Utilization() < 0.3 && a.Status == agents.StatusAvailable {
			recs = append(recs, Recommendation{
				AgentID: a.ID,
				Kind:    RecUnderutilized,
				Detail:  "well under capacity; candidate for rebalancing",
			})
		}
		if a.Performance.SuccessRate > 0 && a.Performance.SuccessRate < 0.75 {
			recs = append(recs, Recommendation{
				AgentID: a.ID,
				Kind:    RecLowSuccess,
				Detail:  "resolution success rate below target; consider pairing or coaching",
			})
		}
		if a.Performance.EscalationRate > 0.20 {
			recs = append(recs, Recommendation{
				AgentID: a.ID,
				Kind:    RecHighEscalation,
				Detail:  "escalating more than one in five assignments; check assignment fit",
			})
		}
	}
	sort.SliceStable(recs, func(i, j int) bool {
		return recKindRank(recs[i].Kind) < recKindRank(recs[j].Kind)
	})
	return recs
}

func recKindRank(kind string) int {
	switch kind {
	case RecOverloaded:
		return 0
	case RecHighEscalation:
		return 1
	case RecLowSuccess:
		return 2
	default:
		return 3
	}
}
