package usecase

import (
	"math"
	"sort"
	"time"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/tickets"
)

// ReasonCode is a machine-readable explanation of why an agent ranked where
// it did. Codes, not prose, so downstream consumers can aggregate them.
type ReasonCode string

const (
	ReasonHighSuccessRate   ReasonCode = "high_success_rate"
	ReasonLowEscalationRate ReasonCode = "low_escalation_rate"
	ReasonSpecialtyMatch    ReasonCode = "specialty_match"
	ReasonTierExpertise     ReasonCode = "tier_expertise"
	ReasonLowWorkload       ReasonCode = "low_workload"
	ReasonModerateWorkload  ReasonCode = "moderate_workload"
	ReasonSeniorityFit      ReasonCode = "seniority_fit"
)

// Candidate is one scored agent in a match result.
type Candidate struct {
	Agent agents.Agent
	Score float64
}

// Match is the outcome of agent selection: the winner, up to two alternates
// the caller can fall back to, and the ranked reasons behind the choice.
type Match struct {
	Agent      agents.Agent
	Score      float64
	Alternates []Candidate
	Reasons    []ReasonCode
}

// Affinity sub-score weights.
const (
	matchWeightPerformance = 0.4
	matchWeightSpecialty   = 0.3
	matchWeightWorkload    = 0.2
	matchWeightExperience  = 0.1
)

var experienceFit = map[agents.Level]map[tickets.Severity]float64{
	agents.LevelJunior:   {tickets.SeverityCritical: 0.3, tickets.SeverityHigh: 0.5, tickets.SeverityMedium: 0.8, tickets.SeverityLow: 1.0},
	agents.LevelStandard: {tickets.SeverityCritical: 0.7, tickets.SeverityHigh: 0.9, tickets.SeverityMedium: 1.0, tickets.SeverityLow: 0.9},
	agents.LevelSenior:   {tickets.SeverityCritical: 1.0, tickets.SeverityHigh: 1.0, tickets.SeverityMedium: 0.9, tickets.SeverityLow: 0.7},
	agents.LevelManager:  {tickets.SeverityCritical: 1.0, tickets.SeverityHigh: 0.9, tickets.SeverityMedium: 0.7, tickets.SeverityLow: 0.5},
	agents.LevelLead:     {tickets.SeverityCritical: 1.0, tickets.SeverityHigh: 0.8, tickets.SeverityMedium: 0.6, tickets.SeverityLow: 0.4},
}

// rankCandidates filters and scores the pool for a ticket. The returned
// slice is sorted best-first with the full tie-break applied (score, then
// lower workload, then agent id) so selection is deterministic.
func rankCandidates(pool []agents.Agent, t tickets.Ticket, minLevel agents.Level, now time.Time) []Candidate {
	candidates := make([]Candidate, 0, len(pool))
	for _, a := range pool {
		if a.Status != agents.StatusAvailable && a.Status != agents.StatusBusy {
			continue
		}
		if a.Workload >= a.MaxConcurrent {
			continue
		}
		if !a.Level.AtLeast(minLevel) {
			continue
		}
		if !a.WithinWorkingHours(now) {
			continue
		}
		candidates = append(candidates, Candidate{Agent: a, Score: affinityScore(a, t)})
	}
	sort.Slice(candidates, func(i, j int) bool {
		ci, cj := candidates[i], candidates[j]
		if ci.Score != cj.Score {
			return ci.Score > cj.Score
		}
		if ci.Agent.Workload != cj.Agent.Workload {
			return ci.Agent.Workload < cj.Agent.Workload
		}
		return ci.Agent.ID < cj.Agent.ID
	})
	return candidates
}

func affinityScore(a agents.Agent, t tickets.Ticket) float64 {
	perf := a.Performance.SuccessRate*0.4 +
		(1-a.Performance.EscalationRate)*0.3 +
		(a.Performance.Satisfaction/5.0)*0.3

	score := perf*matchWeightPerformance +
		specialtyMatch(a, t)*matchWeightSpecialty +
		(1-a.Utilization())*matchWeightWorkload +
		experienceMatch(a, t)*matchWeightExperience

	return math.Round(score*1000) / 1000
}

// specialtyMatch is the overlap ratio between the agent's specialty set and
// the ticket's {risk type, customer tier, industry}. The risk type counts
// double; the denominator is fixed at 4.
func specialtyMatch(a agents.Agent, t tickets.Ticket) float64 {
	matches := 0
	if a.HasSpecialty(string(t.Type)) {
		matches += 2
	}
	if a.HasSpecialty(string(t.Customer.Tier)) {
		matches++
	}
	if t.Customer.Industry != "" && a.HasSpecialty(t.Customer.Industry) {
		matches++
	}
	return float64(matches) / 4.0
}

func experienceMatch(a agents.Agent, t tickets.Ticket) float64 {
	base := 0.5
	if byLevel, ok := experienceFit[a.Level]; ok {
		if v, ok := byLevel[t.Severity]; ok {
			base = v
		}
	}
	if t.Customer.MRR >= 10000 && a.Level.AtLeast(agents.LevelSenior) {
		base += 0.2
	} else if t.Customer.MRR < 5000 && a.Level == agents.LevelJunior {
		base += 0.1
	}
	return math.Min(1.0, base)
}

// matchReasons ranks the contributing factors for the selected agent.
func matchReasons(a agents.Agent, t tickets.Ticket) []ReasonCode {
	var reasons []ReasonCode
	if a.Performance.SuccessRate > 0.85 {
		reasons = append(reasons, ReasonHighSuccessRate)
	}
	if a.Performance.EscalationRate < 0.10 {
		reasons = append(reasons, ReasonLowEscalationRate)
	}
	if a.HasSpecialty(string(t.Type)) {
		reasons = append(reasons, ReasonSpecialtyMatch)
	}
	if a.HasSpecialty(string(t.Customer.Tier)) {
		reasons = append(reasons, ReasonTierExpertise)
	}
	switch u := a.Utilization(); {
	case u < 0.5:
		reasons = append(reasons, ReasonLowWorkload)
	case u < 0.75:
		reasons = append(reasons, ReasonModerateWorkload)
	}
	if fit := experienceMatch(a, t); fit >= 0.9 {
		reasons = append(reasons, ReasonSeniorityFit)
	}
	return reasons
}

// findAndReserve selects the best eligible agent and reserves capacity.
// Reservation is a compare-and-increment inside the registry; when another
// worker wins the race for the top candidate, selection falls through to
// the next one so capacity is never exceeded.
func (s *Scheduler) findAndReserve(t tickets.Ticket, minLevel agents.Level) (Match, error) {
	now := s.now()
	candidates := rankCandidates(s.registry.Snapshot(), t, minLevel, now)
	for i, c := range candidates {
		if err := s.registry.Reserve(c.Agent.ID); err != nil {
			continue
		}
		alternates := candidates[i+1:]
		if len(alternates) > 2 {
			alternates = alternates[:2]
		}
		return Match{
			Agent:      c.Agent,
			Score:      c.Score,
			Alternates: append([]Candidate(nil), alternates...),
			Reasons:    matchReasons(c.Agent, t),
		}, nil
	}
	return Match{}, agents.ErrCapacityExceeded
}

// FindBestAgent scores the pool without reserving capacity. Used by the
// preview surfaces; assignment always goes through findAndReserve.
func (s *Scheduler) FindBestAgent(t tickets.Ticket, minLevel agents.Level) (Match, error) {
	candidates := rankCandidates(s.registry.Snapshot(), t, minLevel, s.now())
	if len(candidates) == 0 {
		return Match{}, agents.ErrCapacityExceeded
	}
	best := candidates[0]
	alternates := candidates[1:]
	if len(alternates) > 2 {
		alternates = alternates[:2]
	}
	return Match{
		Agent:      best.Agent,
		Score:      best.Score,
		Alternates: append([]Candidate(nil), alternates...),
		Reasons:    matchReasons(best.Agent, t),
	}, nil
}
