package rules

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrNotFound   = errors.New("rule not found")
	ErrValidation = errors.New("rule validation failed")
)

type TriggerType string

const (
	TriggerTicketCreated  TriggerType = "ticket_created"
	TriggerSLAViolation   TriggerType = "sla_violation"
	TriggerEscalationDue  TriggerType = "escalation_due"
	TriggerNoResponse     TriggerType = "no_response"
	TriggerRiskSpike      TriggerType = "risk_spike"
	TriggerPatternMatch   TriggerType = "pattern_match"
	TriggerScheduledCheck TriggerType = "scheduled_check"
)

func (t TriggerType) Valid() bool {
	switch t {
	case TriggerTicketCreated, TriggerSLAViolation, TriggerEscalationDue,
		TriggerNoResponse, TriggerRiskSpike, TriggerPatternMatch, TriggerScheduledCheck:
		return true
	}
	return false
}

// Operator is the closed comparison vocabulary. Adding one means extending
// the switch in Evaluate, which the compiler's exhaustiveness pressure and
// the validation path both surface.
type Operator string

const (
	OpEquals      Operator = "equals"
	OpGreaterThan Operator = "greater_than"
	OpLessThan    Operator = "less_than"
	OpIn          Operator = "in"
	OpNotIn       Operator = "not_in"
)

func (o Operator) Valid() bool {
	switch o {
	case OpEquals, OpGreaterThan, OpLessThan, OpIn, OpNotIn:
		return true
	}
	return false
}

// Field names the payload attributes a condition may reference. Conditions
// over unknown fields are rejected at validation time rather than silently
// never matching.
type Field string

const (
	FieldSeverity          Field = "severity"
	FieldRiskType          Field = "risk_type"
	FieldCustomerTier      Field = "customer_tier"
	FieldIndustry          Field = "industry"
	FieldMRR               Field = "mrr"
	FieldHealthScore       Field = "health_score"
	FieldHoursOverdue      Field = "hours_overdue"
	FieldHoursSinceCreated Field = "hours_since_created"
	FieldEscalationLevel   Field = "escalation_level"
	FieldHealthDropPct     Field = "health_drop_percentage"
	FieldTimeframeDays     Field = "timeframe_days"
	FieldOpenTickets       Field = "open_tickets"
	FieldLastLoginDays     Field = "last_login_days"
	FieldEngagementScore   Field = "engagement_score"
)

func (f Field) Valid() bool {
	switch f {
	case FieldSeverity, FieldRiskType, FieldCustomerTier, FieldIndustry, FieldMRR,
		FieldHealthScore, FieldHoursOverdue, FieldHoursSinceCreated, FieldEscalationLevel,
		FieldHealthDropPct, FieldTimeframeDays, FieldOpenTickets, FieldLastLoginDays,
		FieldEngagementScore:
		return true
	}
	return false
}

type Condition struct {
	Field    Field
	Operator Operator
	// Value holds the comparison target: a string or float64 for scalar
	// operators, []string for in/not_in.
	Value  any
	Values []string
}

type ActionType string

const (
	ActionAssignAgent      ActionType = "assign_agent"
	ActionNotify           ActionType = "notify"
	ActionEscalate         ActionType = "escalate"
	ActionScheduleFollowup ActionType = "schedule_followup"
	ActionSendMessage      ActionType = "send_message"
	ActionAutoResolve      ActionType = "auto_resolve"
	ActionLogEvent         ActionType = "log_event"
)

func (a ActionType) Valid() bool {
	switch a {
	case ActionAssignAgent, ActionNotify, ActionEscalate, ActionScheduleFollowup,
		ActionSendMessage, ActionAutoResolve, ActionLogEvent:
		return true
	}
	return false
}

// ActionSpec is one step of a rule's action list. Params are the small
// closed set the original vocabulary uses.
type ActionSpec struct {
	Type ActionType
	// AssignAgent
	Level  string
	Urgent bool
	// Notify / SendMessage
	Channels []string
	Message  string
	Template string
	// ScheduleFollowup
	WithinHours  float64
	FollowupKind string
	// Escalate / LogEvent
	Reason string
	Event  string
}

type Rule struct {
	ID         string
	Name       string
	Trigger    TriggerType
	Conditions []Condition
	Actions    []ActionSpec
	Delay      time.Duration
	Enabled    bool
	// Priority orders evaluation when several rules match one event;
	// lower runs first.
	Priority int
}

// Validate rejects malformed rules before they ever reach evaluation.
// A bad rule is skipped and logged, never silently half-applied.
func (r Rule) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("%w: rule id is required", ErrValidation)
	}
	if !r.Trigger.Valid() {
		return fmt.Errorf("%w: rule %s: unknown trigger %q", ErrValidation, r.ID, r.Trigger)
	}
	for i, c := range r.Conditions {
		if !c.Field.Valid() {
			return fmt.Errorf("%w: rule %s condition %d: unknown field %q", ErrValidation, r.ID, i, c.Field)
		}
		if !c.Operator.Valid() {
			return fmt.Errorf("%w: rule %s condition %d: unknown operator %q", ErrValidation, r.ID, i, c.Operator)
		}
		switch c.Operator {
		case OpIn, OpNotIn:
			if len(c.Values) == 0 {
				return fmt.Errorf("%w: rule %s condition %d: %s requires a value list", ErrValidation, r.ID, i, c.Operator)
			}
		case OpEquals, OpGreaterThan, OpLessThan:
			if c.Value == nil {
				return fmt.Errorf("%w: rule %s condition %d: %s requires a value", ErrValidation, r.ID, i, c.Operator)
			}
		}
	}
	if len(r.Actions) == 0 {
		return fmt.Errorf("%w: rule %s: at least one action is required", ErrValidation, r.ID)
	}
	for i, a := range r.Actions {
		if !a.Type.Valid() {
			return fmt.Errorf("%w: rule %s action %d: unknown action type %q", ErrValidation, r.ID, i, a.Type)
		}
	}
	return nil
}

// ActionResult records one action execution inside a rule run.
type ActionResult struct {
	Type    ActionType
	Success bool
	Detail  string
	Err     string
}

// ExecutionRecord is the audit unit for one rule firing. Success is the
// conjunction of the per-action results; a false aggregate is data, not an
// error, and is never retried automatically.
type ExecutionRecord struct {
	ID         string
	RuleID     string
	Trigger    TriggerType
	ExecutedAt time.Time
	WorkflowID string
	TicketID   string
	Actions    []ActionResult
	Success    bool
	Priority   int
}
