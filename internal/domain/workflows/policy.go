package workflows

import (
	"time"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/tickets"
)

// EscalationPolicy fixes, per severity and customer tier, how long a
// workflow may sit before escalation and which levels it climbs through.
type EscalationPolicy struct {
	SLA          time.Duration
	Chain        []agents.Level
	AutoEscalate bool
}

var escalationPolicies = map[tickets.Severity]map[tickets.Tier]EscalationPolicy{
	tickets.SeverityCritical: {
		tickets.TierEnterprise: {SLA: 1 * time.Hour, Chain: []agents.Level{agents.LevelSenior, agents.LevelManager, agents.LevelLead}, AutoEscalate: true},
		tickets.TierMidMarket:  {SLA: 2 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior, agents.LevelManager}, AutoEscalate: true},
		tickets.TierStartup:    {SLA: 4 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior}, AutoEscalate: true},
	},
	tickets.SeverityHigh: {
		tickets.TierEnterprise: {SLA: 4 * time.Hour, Chain: []agents.Level{agents.LevelSenior, agents.LevelManager}, AutoEscalate: true},
		tickets.TierMidMarket:  {SLA: 6 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior}, AutoEscalate: true},
		tickets.TierStartup:    {SLA: 12 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior}, AutoEscalate: false},
	},
	tickets.SeverityMedium: {
		tickets.TierEnterprise: {SLA: 8 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior}, AutoEscalate: false},
		tickets.TierMidMarket:  {SLA: 12 * time.Hour, Chain: []agents.Level{agents.LevelStandard, agents.LevelSenior}, AutoEscalate: false},
		tickets.TierStartup:    {SLA: 24 * time.Hour, Chain: []agents.Level{agents.LevelStandard}, AutoEscalate: false},
	},
	tickets.SeverityLow: {
		tickets.TierEnterprise: {SLA: 24 * time.Hour, Chain: []agents.Level{agents.LevelStandard}, AutoEscalate: false},
		tickets.TierMidMarket:  {SLA: 48 * time.Hour, Chain: []agents.Level{agents.LevelStandard}, AutoEscalate: false},
		tickets.TierStartup:    {SLA: 72 * time.Hour, Chain: []agents.Level{agents.LevelStandard}, AutoEscalate: false},
	},
}

// PolicyFor resolves the escalation policy for a ticket. Unknown tiers fall
// back to mid-market, unknown severities to medium.
func PolicyFor(severity tickets.Severity, tier tickets.Tier) EscalationPolicy {
	bySeverity, ok := escalationPolicies[severity]
	if !ok {
		bySeverity = escalationPolicies[tickets.SeverityMedium]
	}
	policy, ok := bySeverity[tier]
	if !ok {
		policy = bySeverity[tickets.TierMidMarket]
	}
	return policy
}

// RequiredLevel derives the minimum agent level a ticket may be assigned to.
func RequiredLevel(t tickets.Ticket) agents.Level {
	switch {
	case t.Customer.Tier == tickets.TierEnterprise || t.Customer.MRR >= 15000:
		return agents.LevelSenior
	case t.Severity == tickets.SeverityCritical || t.Customer.MRR >= 8000:
		return agents.LevelStandard
	default:
		return agents.LevelJunior
	}
}
