// Package usecase binds the domain packages to the in-memory infrastructure:
// intake, scoring, queueing, routing, assignment, workflow operations, and
// the automation rule engine all live behind the Scheduler.
package usecase

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
	"riskrouter/internal/domain/tickets"
	"riskrouter/internal/domain/workflows"
	"riskrouter/internal/infra/agentmem"
	"riskrouter/internal/infra/priorityqueue"
	"riskrouter/internal/infra/suppression"
)

// Scheduler is the single coordination point. All workflow state lives here,
// guarded by one mutex; the queue and registry carry their own locks, and
// operations never hold the scheduler lock across calls into them that could
// block.
type Scheduler struct {
	queue      *priorityqueue.Queue
	registry   *agentmem.Registry
	suppressor suppression.Suppressor
	notifier   Notifier
	snapshots  SnapshotProvider
	logger     *log.Logger
	now        func() time.Time

	mu          sync.Mutex
	workflows   map[string]*workflows.Workflow
	ticketIndex map[string]string // ticket id -> workflow id

	rulesMu    sync.Mutex
	rules      []rules.Rule
	ruleStats  map[string]*ruleStats
	executions []rules.ExecutionRecord

	effectMu      sync.Mutex
	effectiveness map[string]*actionStats
}

func New(
	queue *priorityqueue.Queue,
	registry *agentmem.Registry,
	suppressor suppression.Suppressor,
	notifier Notifier,
	snapshots SnapshotProvider,
	logger *log.Logger,
	now func() time.Time,
) *Scheduler {
	if now == nil {
		now = time.Now
	}
	if logger == nil {
		logger = log.Default()
	}
	s := &Scheduler{
		queue:         queue,
		registry:      registry,
		suppressor:    suppressor,
		notifier:      notifier,
		snapshots:     snapshots,
		logger:        logger,
		now:           now,
		workflows:     make(map[string]*workflows.Workflow),
		ticketIndex:   make(map[string]string),
		ruleStats:     make(map[string]*ruleStats),
		effectiveness: make(map[string]*actionStats),
	}
	s.SetRules(rules.Defaults())
	return s
}

// SubmitResult reports what intake did with a submission. A suppressed
// submission is dropped before scoring and carries no receipt.
type SubmitResult struct {
	Suppressed bool
	TicketID   string
	WorkflowID string
	Score      float64
	Receipt    priorityqueue.Receipt
}

// Submit is the intake path: suppression check, scoring, enqueue, workflow
// creation, then ticket_created automation. The ticket gets an id and a
// creation time if the producer left them blank.
func (s *Scheduler) Submit(ctx context.Context, sub TicketSubmission) (SubmitResult, error) {
	t := sub.Ticket
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = s.now()
	}
	if !t.Severity.Valid() {
		t.Severity = tickets.SeverityMedium
	}

	suppressed, err := s.suppressor.ShouldSuppress(ctx, t.Customer.CustomerID, t.Type)
	if err != nil {
		return SubmitResult{}, fmt.Errorf("suppression check: %w", err)
	}
	if suppressed {
		s.logger.Printf("suppressed alert customer=%s type=%s", t.Customer.CustomerID, t.Type)
		return SubmitResult{Suppressed: true, TicketID: t.ID}, nil
	}
	if err := s.suppressor.Record(ctx, t.Customer.CustomerID, t.Type); err != nil {
		s.logger.Printf("suppression record failed customer=%s: %v", t.Customer.CustomerID, err)
	}

	score := tickets.Score(t, s.urgencyFactors(t, sub.SLAHoursRemaining))
	// The workflow must exist before the queue entry does: a dequeuer that
	// pops the entry has to find it in the ticket index.
	w := s.route(t, score)
	receipt := s.queue.Enqueue(t, score)

	if sub.HealthScore != nil && s.snapshots != nil {
		if err := s.snapshots.Observe(ctx, t.Customer.CustomerID, *sub.HealthScore, s.now()); err != nil {
			s.logger.Printf("health observation failed customer=%s: %v", t.Customer.CustomerID, err)
		}
	}

	payload := rules.Payload{
		Severity:          string(t.Severity),
		RiskType:          string(t.Type),
		CustomerTier:      string(t.Customer.Tier),
		Industry:          t.Customer.Industry,
		MRR:               rules.Float(t.Customer.MRR),
		HealthScore:       sub.HealthScore,
		HoursSinceCreated: rules.Float(s.now().Sub(t.CreatedAt).Hours()),
	}
	s.EvaluateRules(ctx, rules.TriggerTicketCreated, payload, w.ID, t.ID)

	return SubmitResult{
		TicketID:   t.ID,
		WorkflowID: w.ID,
		Score:      score,
		Receipt:    receipt,
	}, nil
}

func (s *Scheduler) urgencyFactors(t tickets.Ticket, slaHours *float64) tickets.UrgencyFactors {
	f := tickets.UrgencyFactors{
		AgeHours: s.now().Sub(t.CreatedAt).Hours(),
	}
	if slaHours != nil {
		f.SLAHoursRemaining = *slaHours
		f.HasSLARemaining = true
	}
	return f
}

// route creates the lifecycle record for a scored ticket. Assignment is
// deferred to DequeueNext or an assign_agent rule action; the escalation
// deadline starts counting immediately so unassigned work still escalates.
func (s *Scheduler) route(t tickets.Ticket, score float64) workflows.Workflow {
	policy := workflows.PolicyFor(t.Severity, t.Customer.Tier)
	deadline := s.now().Add(policy.SLA)

	w := workflows.Workflow{
		ID:                     uuid.NewString(),
		Ticket:                 t,
		Status:                 workflows.StatusActive,
		CreatedAt:              s.now(),
		EscalationChain:        policy.Chain,
		AutoEscalate:           policy.AutoEscalate,
		SLA:                    policy.SLA,
		NextEscalationDeadline: &deadline,
		AssignmentScore:        score,
	}

	s.mu.Lock()
	s.workflows[w.ID] = &w
	s.ticketIndex[t.ID] = w.ID
	s.mu.Unlock()

	s.logger.Printf("routed ticket=%s workflow=%s severity=%s tier=%s sla=%s",
		t.ID, w.ID, t.Severity, t.Customer.Tier, policy.SLA)
	return w
}

// Assignment is the result of draining one queue entry. Match is nil when no
// eligible agent had capacity; the workflow stays unassigned and the sweep
// escalates it when its deadline passes.
type Assignment struct {
	Entry    priorityqueue.Entry
	Workflow workflows.Workflow
	Match    *Match
}

// DequeueNext pops the highest-priority ticket and assigns it to the best
// eligible agent. Returns ok=false when the queue is empty.
func (s *Scheduler) DequeueNext(ctx context.Context) (Assignment, bool, error) {
	entry, ok := s.queue.DequeueHighest()
	if !ok {
		return Assignment{}, false, nil
	}

	out := Assignment{Entry: entry}

	// A ticket_created rule may have assigned the workflow while its entry
	// was still queued, or the workflow may have closed before draining.
	// The entry is spent either way; no second agent gets reserved.
	s.mu.Lock()
	if wid, found := s.ticketIndex[entry.Ticket.ID]; found {
		w := s.workflows[wid]
		if w.AssignedAgentID != "" || w.Status.Terminal() {
			out.Workflow = *w
			s.mu.Unlock()
			return out, true, nil
		}
	}
	s.mu.Unlock()

	minLevel := workflows.RequiredLevel(entry.Ticket)
	match, err := s.findAndReserve(entry.Ticket, minLevel)
	if err != nil {
		s.logger.Printf("no eligible agent ticket=%s level>=%s: %v", entry.Ticket.ID, minLevel, err)
	} else {
		out.Match = &match
	}

	s.mu.Lock()
	wid, found := s.ticketIndex[entry.Ticket.ID]
	if found {
		w := s.workflows[wid]
		if out.Match != nil {
			if w.AssignedAgentID != "" || w.Status.Terminal() {
				// Lost the race to a concurrent assignment; hand the
				// reservation back.
				if err := s.registry.Release(out.Match.Agent.ID); err != nil {
					s.logger.Printf("release agent=%s after lost assignment race: %v", out.Match.Agent.ID, err)
				}
				out.Match = nil
			} else {
				w.AssignedAgentID = out.Match.Agent.ID
				w.AssignmentScore = out.Match.Score
			}
		}
		out.Workflow = *w
	}
	s.mu.Unlock()

	if !found {
		// Ticket was enqueued without a workflow (direct enqueue path).
		if out.Match != nil {
			out.Workflow = s.route(entry.Ticket, entry.Score)
			s.assignWorkflow(out.Workflow.ID, out.Match.Agent.ID, out.Match.Score)
			out.Workflow.AssignedAgentID = out.Match.Agent.ID
		} else {
			out.Workflow = s.route(entry.Ticket, entry.Score)
		}
	}

	if out.Match != nil {
		s.logger.Printf("assigned ticket=%s agent=%s score=%.3f", entry.Ticket.ID, out.Match.Agent.ID, out.Match.Score)
	}
	return out, true, nil
}

func (s *Scheduler) assignWorkflow(workflowID, agentID string, score float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if w, ok := s.workflows[workflowID]; ok {
		w.AssignedAgentID = agentID
		w.AssignmentScore = score
	}
}

// EnqueueScored places an already-scored ticket on the queue without going
// through intake. Used by tests and by replays.
func (s *Scheduler) EnqueueScored(t tickets.Ticket, score float64) priorityqueue.Receipt {
	return s.queue.Enqueue(t, score)
}

// Workflow returns a copy of the workflow by id.
func (s *Scheduler) Workflow(id string) (workflows.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.workflows[id]
	if !ok {
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	return *w, nil
}

// WorkflowByTicket resolves the workflow bound to a ticket id.
func (s *Scheduler) WorkflowByTicket(ticketID string) (workflows.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	wid, ok := s.ticketIndex[ticketID]
	if !ok {
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	return *s.workflows[wid], nil
}

// Workflows returns copies of every tracked workflow.
func (s *Scheduler) Workflows() []workflows.Workflow {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]workflows.Workflow, 0, len(s.workflows))
	for _, w := range s.workflows {
		out = append(out, *w)
	}
	return out
}

func (s *Scheduler) QueueStatus() priorityqueue.Status {
	return s.queue.Status()
}

func (s *Scheduler) QueueAnalytics() priorityqueue.Analytics {
	return s.queue.Analytics()
}

// Agents exposes the registry snapshot for read-only surfaces.
func (s *Scheduler) Agents() []agents.Agent {
	return s.registry.Snapshot()
}
