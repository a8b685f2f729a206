package usecase

import (
	"context"
	"time"

	"riskrouter/internal/domain/health"
	"riskrouter/internal/domain/tickets"
)

// NotificationKind distinguishes the delivery intents the rule engine and
// workflow operations emit. Delivery itself is an external concern; the
// scheduler only hands off.
type NotificationKind string

const (
	KindAlert    NotificationKind = "alert"
	KindMessage  NotificationKind = "message"
	KindFollowup NotificationKind = "followup"
)

type Notification struct {
	Kind       NotificationKind
	Channels   []string
	Template   string
	Message    string
	TicketID   string
	WorkflowID string
	CustomerID string
	DueAt      *time.Time
}

// Notifier is the fire-and-forget delivery boundary. Implementations must
// not block the scheduler; errors are recorded in execution results but
// never abort rule evaluation.
type Notifier interface {
	Notify(ctx context.Context, n Notification) error
}

// SnapshotProvider supplies historical health readings for risk-spike
// detection. Absent history means no spike can be claimed; the detector
// never fabricates a prior value.
type SnapshotProvider interface {
	Observe(ctx context.Context, entityID string, score float64, at time.Time) error
	// PriorSnapshot returns the oldest reading inside the window and when it
	// was taken, or ok=false when no reading that old exists.
	PriorSnapshot(ctx context.Context, entityID string, window time.Duration) (score float64, at time.Time, ok bool, err error)
	// Latest returns the most recent reading per observed entity.
	Latest(ctx context.Context) ([]health.Observation, error)
}

// TicketSubmission is the transport-agnostic intake payload: a ticket plus
// the optional urgency hints computed upstream.
type TicketSubmission struct {
	Ticket            tickets.Ticket
	SLAHoursRemaining *float64
	HealthScore       *float64
}
