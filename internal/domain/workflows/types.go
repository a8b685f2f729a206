package workflows

import (
	"errors"
	"time"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/tickets"
)

var (
	ErrNotFound          = errors.New("workflow not found")
	ErrInvalidTransition = errors.New("invalid workflow transition")
	ErrMaxEscalation     = errors.New("maximum escalation level reached")
)

type Status string

const (
	StatusActive     Status = "active"
	StatusInProgress Status = "in_progress"
	StatusResolved   Status = "resolved"
	StatusEscalated  Status = "escalated"
	StatusSnoozed    Status = "snoozed"
	StatusDismissed  Status = "dismissed"
)

func (s Status) Terminal() bool {
	return s == StatusResolved || s == StatusDismissed
}

type ActionStatus string

const (
	ActionPending    ActionStatus = "pending"
	ActionInProgress ActionStatus = "in_progress"
	ActionCompleted  ActionStatus = "completed"
	ActionFailed     ActionStatus = "failed"
	ActionSkipped    ActionStatus = "skipped"
)

// Action is one unit of engagement logged against a workflow.
type Action struct {
	ID          string
	Description string
	ExecutedBy  string
	Status      ActionStatus
	StartedAt   time.Time
	CompletedAt *time.Time
	Outcome     string
}

// Workflow is the lifecycle record tracking a ticket from routing to a
// terminal state. It is mutated only through the scheduler's operations and
// retained after completion for audit.
type Workflow struct {
	ID                     string
	Ticket                 tickets.Ticket
	AssignedAgentID        string
	AssignmentScore        float64
	Status                 Status
	CreatedAt              time.Time
	EscalationLevel        int
	EscalationChain        []agents.Level
	AutoEscalate           bool
	SLA                    time.Duration
	NextEscalationDeadline *time.Time
	Actions                []Action
	SnoozedUntil           *time.Time
	SnoozeReason           string
	SnoozedBy              string
	ResolvedAt             *time.Time
	ResolvedBy             string
	ResolutionNotes        string
	ResolutionHours        float64
	EscalationReason       string
}
