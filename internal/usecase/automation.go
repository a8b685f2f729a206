package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
	"riskrouter/internal/domain/workflows"
)

const executionHistoryCap = 100

// riskSpikeWindow is how far back the spike detector compares against.
const riskSpikeWindow = 7 * 24 * time.Hour

type ruleStats struct {
	executions int
	successes  int
}

// SetRules replaces the active rule set. Invalid rules are skipped with a
// log line; they never reach evaluation half-formed.
func (s *Scheduler) SetRules(list []rules.Rule) {
	accepted := make([]rules.Rule, 0, len(list))
	for _, r := range list {
		if err := r.Validate(); err != nil {
			s.logger.Printf("rejected rule: %v", err)
			continue
		}
		accepted = append(accepted, r)
	}
	sort.SliceStable(accepted, func(i, j int) bool { return accepted[i].Priority < accepted[j].Priority })

	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	s.rules = accepted
}

// AddRule validates and appends a single rule.
func (s *Scheduler) AddRule(r rules.Rule) error {
	if err := r.Validate(); err != nil {
		return err
	}
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	s.rules = append(s.rules, r)
	sort.SliceStable(s.rules, func(i, j int) bool { return s.rules[i].Priority < s.rules[j].Priority })
	return nil
}

// ToggleRule enables or disables a rule in place.
func (s *Scheduler) ToggleRule(id string, enabled bool) error {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	for i := range s.rules {
		if s.rules[i].ID == id {
			s.rules[i].Enabled = enabled
			return nil
		}
	}
	return rules.ErrNotFound
}

// ListRules returns a copy of the active rule set in evaluation order.
func (s *Scheduler) ListRules() []rules.Rule {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()
	return append([]rules.Rule(nil), s.rules...)
}

// EvaluateRules runs every enabled rule for the trigger against the payload,
// in priority order. Actions are best-effort and non-transactional: a failed
// action is recorded in the execution record and the remaining actions still
// run. Returns the records of the rules that fired.
func (s *Scheduler) EvaluateRules(ctx context.Context, trigger rules.TriggerType, p rules.Payload, workflowID, ticketID string) []rules.ExecutionRecord {
	s.rulesMu.Lock()
	matched := make([]rules.Rule, 0, len(s.rules))
	for _, r := range s.rules {
		if !r.Enabled || r.Trigger != trigger {
			continue
		}
		if rules.Match(r.Conditions, p) {
			matched = append(matched, r)
		}
	}
	s.rulesMu.Unlock()

	var fired []rules.ExecutionRecord
	for _, r := range matched {
		rec := s.executeRule(ctx, r, p, workflowID, ticketID)
		s.recordExecution(rec)
		fired = append(fired, rec)
	}
	return fired
}

func (s *Scheduler) executeRule(ctx context.Context, r rules.Rule, p rules.Payload, workflowID, ticketID string) rules.ExecutionRecord {
	rec := rules.ExecutionRecord{
		ID:         uuid.NewString(),
		RuleID:     r.ID,
		Trigger:    r.Trigger,
		ExecutedAt: s.now(),
		WorkflowID: workflowID,
		TicketID:   ticketID,
		Priority:   r.Priority,
		Success:    true,
	}
	for _, spec := range r.Actions {
		result := s.executeAction(ctx, spec, p, workflowID, ticketID)
		if !result.Success {
			rec.Success = false
		}
		rec.Actions = append(rec.Actions, result)
	}
	s.logger.Printf("rule fired id=%s trigger=%s workflow=%s success=%t", r.ID, r.Trigger, workflowID, rec.Success)
	return rec
}

func (s *Scheduler) executeAction(ctx context.Context, spec rules.ActionSpec, p rules.Payload, workflowID, ticketID string) rules.ActionResult {
	result := rules.ActionResult{Type: spec.Type}
	fail := func(err error) rules.ActionResult {
		result.Err = err.Error()
		return result
	}

	switch spec.Type {
	case rules.ActionAssignAgent:
		if workflowID == "" {
			return fail(fmt.Errorf("assign_agent: no workflow in scope"))
		}
		w, err := s.Workflow(workflowID)
		if err != nil {
			return fail(err)
		}
		if w.AssignedAgentID != "" {
			result.Success = true
			result.Detail = "already assigned to " + w.AssignedAgentID
			return result
		}
		match, err := s.findAndReserve(w.Ticket, agents.Level(spec.Level))
		if err != nil {
			return fail(err)
		}
		s.assignWorkflow(workflowID, match.Agent.ID, match.Score)
		result.Success = true
		result.Detail = "assigned " + match.Agent.ID

	case rules.ActionNotify:
		err := s.notifier.Notify(ctx, Notification{
			Kind:       KindAlert,
			Channels:   spec.Channels,
			Message:    spec.Message,
			TicketID:   ticketID,
			WorkflowID: workflowID,
		})
		if err != nil {
			return fail(err)
		}
		result.Success = true

	case rules.ActionSendMessage:
		err := s.notifier.Notify(ctx, Notification{
			Kind:       KindMessage,
			Template:   spec.Template,
			Message:    spec.Message,
			TicketID:   ticketID,
			WorkflowID: workflowID,
		})
		if err != nil {
			return fail(err)
		}
		result.Success = true

	case rules.ActionScheduleFollowup:
		due := s.now().Add(time.Duration(spec.WithinHours * float64(time.Hour)))
		err := s.notifier.Notify(ctx, Notification{
			Kind:       KindFollowup,
			Template:   spec.FollowupKind,
			TicketID:   ticketID,
			WorkflowID: workflowID,
			DueAt:      &due,
		})
		if err != nil {
			return fail(err)
		}
		result.Success = true
		result.Detail = "due " + due.Format(time.RFC3339)

	case rules.ActionEscalate:
		if workflowID == "" {
			return fail(fmt.Errorf("escalate: no workflow in scope"))
		}
		if _, err := s.Escalate(workflowID, spec.Reason); err != nil {
			return fail(err)
		}
		result.Success = true

	case rules.ActionAutoResolve:
		if workflowID == "" {
			return fail(fmt.Errorf("auto_resolve: no workflow in scope"))
		}
		if _, err := s.Resolve(workflowID, "automation", spec.Reason, true); err != nil {
			return fail(err)
		}
		result.Success = true

	case rules.ActionLogEvent:
		s.logger.Printf("event=%s workflow=%s ticket=%s severity=%s", spec.Event, workflowID, ticketID, p.Severity)
		result.Success = true

	default:
		return fail(fmt.Errorf("unknown action type %q", spec.Type))
	}
	return result
}

func (s *Scheduler) recordExecution(rec rules.ExecutionRecord) {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()

	s.executions = append(s.executions, rec)
	if len(s.executions) > executionHistoryCap {
		s.executions = s.executions[len(s.executions)-executionHistoryCap:]
	}
	st, ok := s.ruleStats[rec.RuleID]
	if !ok {
		st = &ruleStats{}
		s.ruleStats[rec.RuleID] = st
	}
	st.executions++
	if rec.Success {
		st.successes++
	}
}

// RuleSummary is one row of the automation analytics surface.
type RuleSummary struct {
	ID          string
	Name        string
	Trigger     rules.TriggerType
	Enabled     bool
	Priority    int
	Executions  int
	SuccessRate float64
}

// AutomationReport aggregates rule-engine activity since startup.
type AutomationReport struct {
	TotalRules       int
	EnabledRules     int
	TotalExecutions  int
	RecentExecutions []rules.ExecutionRecord
	Rules            []RuleSummary
}

func (s *Scheduler) AutomationAnalytics() AutomationReport {
	s.rulesMu.Lock()
	defer s.rulesMu.Unlock()

	report := AutomationReport{
		TotalRules:       len(s.rules),
		RecentExecutions: append([]rules.ExecutionRecord(nil), s.executions...),
	}
	for _, r := range s.rules {
		if r.Enabled {
			report.EnabledRules++
		}
		row := RuleSummary{
			ID:       r.ID,
			Name:     r.Name,
			Trigger:  r.Trigger,
			Enabled:  r.Enabled,
			Priority: r.Priority,
		}
		if st, ok := s.ruleStats[r.ID]; ok {
			row.Executions = st.executions
			if st.executions > 0 {
				row.SuccessRate = float64(st.successes) / float64(st.executions)
			}
			report.TotalExecutions += st.executions
		}
		report.Rules = append(report.Rules, row)
	}
	return report
}

// DetectRiskSpikes compares each entity's latest health reading against its
// oldest reading inside the detection window and fires risk_spike automation
// on sharp drops. Entities with no prior reading are skipped outright.
func (s *Scheduler) DetectRiskSpikes(ctx context.Context) {
	if s.snapshots == nil {
		return
	}
	latest, err := s.snapshots.Latest(ctx)
	if err != nil {
		s.logger.Printf("risk spike scan failed: %v", err)
		return
	}
	for _, obs := range latest {
		prior, priorAt, ok, err := s.snapshots.PriorSnapshot(ctx, obs.EntityID, riskSpikeWindow)
		if err != nil {
			s.logger.Printf("prior snapshot failed entity=%s: %v", obs.EntityID, err)
			continue
		}
		if !ok || prior <= 0 {
			continue
		}
		drop := (prior - obs.Score) / prior
		if drop <= 0 {
			continue
		}
		payload := rules.Payload{
			HealthScore:   rules.Float(obs.Score),
			HealthDropPct: rules.Float(drop),
			TimeframeDays: rules.Float(s.now().Sub(priorAt).Hours() / 24),
		}
		var workflowID, ticketID string
		if w, err := s.latestWorkflowForCustomer(obs.EntityID); err == nil {
			workflowID, ticketID = w.ID, w.Ticket.ID
		}
		s.EvaluateRules(ctx, rules.TriggerRiskSpike, payload, workflowID, ticketID)
	}
}

func (s *Scheduler) latestWorkflowForCustomer(customerID string) (workflows.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var best *workflows.Workflow
	for _, w := range s.workflows {
		if w.Ticket.Customer.CustomerID != customerID || w.Status.Terminal() {
			continue
		}
		if best == nil || w.CreatedAt.After(best.CreatedAt) {
			best = w
		}
	}
	if best == nil {
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	return *best, nil
}
