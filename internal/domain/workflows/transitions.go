package workflows

// Event is a lifecycle input. Transitions not present in the table are
// rejected; there is no string comparison anywhere on the mutation path.
type Event string

const (
	EventEngage   Event = "engage"
	EventResolve  Event = "resolve"
	EventSnooze   Event = "snooze"
	EventEscalate Event = "escalate"
	EventDismiss  Event = "dismiss"
	EventResume   Event = "resume"
)

var transitions = map[Status]map[Event]Status{
	StatusActive: {
		EventEngage:   StatusInProgress,
		EventResolve:  StatusResolved,
		EventSnooze:   StatusSnoozed,
		EventEscalate: StatusEscalated,
		EventDismiss:  StatusDismissed,
	},
	StatusInProgress: {
		EventEngage:   StatusInProgress,
		EventResolve:  StatusResolved,
		EventSnooze:   StatusSnoozed,
		EventEscalate: StatusEscalated,
		EventDismiss:  StatusDismissed,
	},
	StatusEscalated: {
		// An escalated workflow returns to the working states at the new
		// level; it can also escalate again or close out.
		EventEngage:   StatusInProgress,
		EventResume:   StatusActive,
		EventResolve:  StatusResolved,
		EventSnooze:   StatusSnoozed,
		EventEscalate: StatusEscalated,
		EventDismiss:  StatusDismissed,
	},
	StatusSnoozed: {
		EventResume:  StatusActive,
		EventResolve: StatusResolved,
		EventDismiss: StatusDismissed,
	},
	// Resolved and Dismissed are terminal: no outgoing edges.
	StatusResolved:  {},
	StatusDismissed: {},
}

// Next returns the successor state for (from, ev), or ErrInvalidTransition
// when the edge does not exist in the table.
func Next(from Status, ev Event) (Status, error) {
	edges, ok := transitions[from]
	if !ok {
		return "", ErrInvalidTransition
	}
	to, ok := edges[ev]
	if !ok {
		return "", ErrInvalidTransition
	}
	return to, nil
}

// Apply validates and performs the transition on the workflow.
func (w *Workflow) Apply(ev Event) error {
	next, err := Next(w.Status, ev)
	if err != nil {
		return err
	}
	w.Status = next
	return nil
}
