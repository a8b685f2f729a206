package rules

import "time"

// Defaults is the seed rule set, a direct port of the operational defaults
// the automation ran with in production. Deployments override or extend it
// via the rules config file.
func Defaults() []Rule {
	return []Rule{
		{
			ID:      "critical_ticket_auto_assign",
			Name:    "Critical enterprise tickets get a senior agent immediately",
			Trigger: TriggerTicketCreated,
			Conditions: []Condition{
				{Field: FieldSeverity, Operator: OpEquals, Value: "critical"},
				{Field: FieldCustomerTier, Operator: OpIn, Values: []string{"enterprise"}},
			},
			Actions: []ActionSpec{
				{Type: ActionAssignAgent, Level: "senior", Urgent: true},
				{Type: ActionNotify, Channels: []string{"slack", "sms"}},
				{Type: ActionLogEvent, Event: "critical_ticket_auto_assigned"},
			},
			Enabled:  true,
			Priority: 1,
		},
		{
			ID:      "payment_risk_escalation",
			Name:    "High-MRR payment risk goes straight to senior staff",
			Trigger: TriggerTicketCreated,
			Conditions: []Condition{
				{Field: FieldRiskType, Operator: OpEquals, Value: "payment_risk"},
				{Field: FieldMRR, Operator: OpGreaterThan, Value: float64(10000)},
			},
			Actions: []ActionSpec{
				{Type: ActionAssignAgent, Level: "senior"},
				{Type: ActionNotify, Channels: []string{"slack", "email"}},
				{Type: ActionScheduleFollowup, WithinHours: 2, FollowupKind: "billing_resolution"},
			},
			Delay:    5 * time.Minute,
			Enabled:  true,
			Priority: 1,
		},
		{
			ID:      "sla_violation_escalate",
			Name:    "Escalate anything more than two hours past SLA",
			Trigger: TriggerSLAViolation,
			Conditions: []Condition{
				{Field: FieldHoursOverdue, Operator: OpGreaterThan, Value: float64(2)},
			},
			Actions: []ActionSpec{
				{Type: ActionEscalate, Reason: "sla_violation"},
				{Type: ActionNotify, Channels: []string{"slack"}},
			},
			Enabled:  true,
			Priority: 2,
		},
		{
			ID:      "no_response_escalation",
			Name:    "Unworked critical/medium tickets escalate after four hours",
			Trigger: TriggerNoResponse,
			Conditions: []Condition{
				{Field: FieldSeverity, Operator: OpIn, Values: []string{"critical", "medium"}},
				{Field: FieldHoursSinceCreated, Operator: OpGreaterThan, Value: float64(4)},
			},
			Actions: []ActionSpec{
				{Type: ActionEscalate, Reason: "no_response"},
				{Type: ActionNotify, Channels: []string{"email"}},
			},
			Enabled:  true,
			Priority: 2,
		},
		{
			ID:      "expansion_auto_nurture",
			Name:    "Healthy expansion opportunities get a growth follow-up",
			Trigger: TriggerTicketCreated,
			Conditions: []Condition{
				{Field: FieldRiskType, Operator: OpEquals, Value: "expansion_opportunity"},
				{Field: FieldHealthScore, Operator: OpGreaterThan, Value: 0.8},
			},
			Actions: []ActionSpec{
				{Type: ActionAssignAgent, Level: "standard"},
				{Type: ActionSendMessage, Template: "expansion_opportunity"},
				{Type: ActionScheduleFollowup, WithinHours: 72, FollowupKind: "growth_discussion"},
			},
			Delay:    time.Hour,
			Enabled:  true,
			Priority: 3,
		},
		{
			ID:      "risk_spike_intervention",
			Name:    "Sharp health drops trigger urgent senior intervention",
			Trigger: TriggerRiskSpike,
			Conditions: []Condition{
				{Field: FieldHealthDropPct, Operator: OpGreaterThan, Value: 0.3},
				{Field: FieldTimeframeDays, Operator: OpLessThan, Value: float64(7)},
			},
			Actions: []ActionSpec{
				{Type: ActionAssignAgent, Level: "senior", Urgent: true},
				{Type: ActionNotify, Channels: []string{"slack"}},
				{Type: ActionScheduleFollowup, WithinHours: 24, FollowupKind: "emergency_intervention"},
			},
			Enabled:  true,
			Priority: 1,
		},
		{
			ID:      "low_engagement_nurture",
			Name:    "Dormant low-engagement accounts get a re-engagement touch",
			Trigger: TriggerPatternMatch,
			Conditions: []Condition{
				{Field: FieldLastLoginDays, Operator: OpGreaterThan, Value: float64(7)},
				{Field: FieldEngagementScore, Operator: OpLessThan, Value: 0.3},
			},
			Actions: []ActionSpec{
				{Type: ActionSendMessage, Template: "re_engagement"},
				{Type: ActionLogEvent, Event: "auto_nurture_triggered"},
			},
			Delay:    2 * time.Hour,
			Enabled:  true,
			Priority: 4,
		},
	}
}
