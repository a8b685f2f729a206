package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"riskrouter/internal/domain/rules"
	"riskrouter/internal/domain/workflows"
)

// ExecuteAction logs a new in-progress action against the workflow and moves
// it to in_progress. Starting work clears the escalation clock: an engaged
// workflow escalates through SLA rules, not the idle-deadline sweep.
func (s *Scheduler) ExecuteAction(workflowID, description, executedBy string) (workflows.Action, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workflows[workflowID]
	if !ok {
		return workflows.Action{}, workflows.ErrNotFound
	}
	if err := w.Apply(workflows.EventEngage); err != nil {
		return workflows.Action{}, err
	}

	action := workflows.Action{
		ID:          uuid.NewString(),
		Description: description,
		ExecutedBy:  executedBy,
		Status:      workflows.ActionInProgress,
		StartedAt:   s.now(),
	}
	w.Actions = append(w.Actions, action)
	w.NextEscalationDeadline = nil

	s.logger.Printf("action started workflow=%s action=%s by=%s", workflowID, action.ID, executedBy)
	return action, nil
}

// CompleteAction closes an in-progress action with an outcome and folds the
// result into the effectiveness counters.
func (s *Scheduler) CompleteAction(workflowID, actionID, outcome string) (workflows.Action, error) {
	s.mu.Lock()

	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		return workflows.Action{}, workflows.ErrNotFound
	}
	var completed *workflows.Action
	for i := range w.Actions {
		if w.Actions[i].ID == actionID {
			completed = &w.Actions[i]
			break
		}
	}
	if completed == nil {
		s.mu.Unlock()
		return workflows.Action{}, fmt.Errorf("action %s: %w", actionID, workflows.ErrNotFound)
	}
	now := s.now()
	completed.Status = workflows.ActionCompleted
	completed.CompletedAt = &now
	completed.Outcome = outcome
	result := *completed
	tier := w.Ticket.Customer.Tier
	riskType := w.Ticket.Type
	s.mu.Unlock()

	s.recordEffectiveness(string(tier), string(riskType), result.Description, outcomeSuccessful(outcome))
	return result, nil
}

func outcomeSuccessful(outcome string) bool {
	switch outcome {
	case "resolved", "improved", "successful":
		return true
	}
	return false
}

// Resolve closes the workflow, releases the assigned agent, and credits the
// resolution to the agent's performance record.
func (s *Scheduler) Resolve(workflowID, resolvedBy, notes string, success bool) (workflows.Workflow, error) {
	s.mu.Lock()

	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	if err := w.Apply(workflows.EventResolve); err != nil {
		s.mu.Unlock()
		return workflows.Workflow{}, err
	}
	now := s.now()
	w.ResolvedAt = &now
	w.ResolvedBy = resolvedBy
	w.ResolutionNotes = notes
	w.ResolutionHours = now.Sub(w.CreatedAt).Hours()
	w.NextEscalationDeadline = nil
	agentID := w.AssignedAgentID
	hours := w.ResolutionHours
	out := *w
	s.mu.Unlock()

	if agentID != "" {
		if err := s.registry.Release(agentID); err != nil {
			s.logger.Printf("release failed agent=%s: %v", agentID, err)
		}
		if err := s.registry.RecordResolution(agentID, success, hours); err != nil {
			s.logger.Printf("record resolution failed agent=%s: %v", agentID, err)
		}
	}
	s.logger.Printf("resolved workflow=%s by=%s hours=%.1f success=%t", workflowID, resolvedBy, hours, success)
	return out, nil
}

// Snooze parks the workflow until the deadline; the sweep resumes it.
func (s *Scheduler) Snooze(workflowID string, hours float64, reason, snoozedBy string) (workflows.Workflow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workflows[workflowID]
	if !ok {
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	if err := w.Apply(workflows.EventSnooze); err != nil {
		return workflows.Workflow{}, err
	}
	until := s.now().Add(time.Duration(hours * float64(time.Hour)))
	w.SnoozedUntil = &until
	w.SnoozeReason = reason
	w.SnoozedBy = snoozedBy
	w.NextEscalationDeadline = nil

	s.logger.Printf("snoozed workflow=%s until=%s by=%s", workflowID, until.Format(time.RFC3339), snoozedBy)
	return *w, nil
}

// Dismiss terminates the workflow without resolution credit and releases the
// assigned agent.
func (s *Scheduler) Dismiss(workflowID, reason string) (workflows.Workflow, error) {
	s.mu.Lock()

	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	if err := w.Apply(workflows.EventDismiss); err != nil {
		s.mu.Unlock()
		return workflows.Workflow{}, err
	}
	w.ResolutionNotes = reason
	w.NextEscalationDeadline = nil
	agentID := w.AssignedAgentID
	out := *w
	s.mu.Unlock()

	if agentID != "" {
		if err := s.registry.Release(agentID); err != nil {
			s.logger.Printf("release failed agent=%s: %v", agentID, err)
		}
	}
	s.logger.Printf("dismissed workflow=%s reason=%q", workflowID, reason)
	return out, nil
}

// Escalate moves the workflow one level up its chain and reassigns it to an
// agent at the new level. The previous assignee is released and the
// escalation is folded into their record. When the chain is exhausted the
// workflow stays escalated with no further deadline.
func (s *Scheduler) Escalate(workflowID, reason string) (workflows.Workflow, error) {
	s.mu.Lock()

	w, ok := s.workflows[workflowID]
	if !ok {
		s.mu.Unlock()
		return workflows.Workflow{}, workflows.ErrNotFound
	}
	if w.Status.Terminal() {
		s.mu.Unlock()
		return workflows.Workflow{}, workflows.ErrInvalidTransition
	}
	if w.EscalationLevel >= len(w.EscalationChain)-1 {
		s.mu.Unlock()
		return workflows.Workflow{}, workflows.ErrMaxEscalation
	}
	if err := w.Apply(workflows.EventEscalate); err != nil {
		s.mu.Unlock()
		return workflows.Workflow{}, err
	}
	w.EscalationLevel++
	w.EscalationReason = reason
	previousAgent := w.AssignedAgentID
	w.AssignedAgentID = ""
	level := w.EscalationChain[w.EscalationLevel]
	ticket := w.Ticket
	atTop := w.EscalationLevel >= len(w.EscalationChain)-1
	if atTop {
		w.NextEscalationDeadline = nil
	} else {
		deadline := s.now().Add(w.SLA)
		w.NextEscalationDeadline = &deadline
	}
	s.mu.Unlock()

	if previousAgent != "" {
		if err := s.registry.Release(previousAgent); err != nil {
			s.logger.Printf("release failed agent=%s: %v", previousAgent, err)
		}
		if err := s.registry.RecordEscalation(previousAgent); err != nil {
			s.logger.Printf("record escalation failed agent=%s: %v", previousAgent, err)
		}
	}

	match, err := s.findAndReserve(ticket, level)
	if err != nil {
		s.logger.Printf("escalation unstaffed workflow=%s level=%s: %v", workflowID, level, err)
	} else {
		s.assignWorkflow(workflowID, match.Agent.ID, match.Score)
	}

	s.mu.Lock()
	out := *s.workflows[workflowID]
	s.mu.Unlock()

	s.logger.Printf("escalated workflow=%s level=%d reason=%q", workflowID, out.EscalationLevel, reason)
	return out, nil
}

// Sweep is the periodic maintenance pass: it resumes expired snoozes, fires
// SLA-violation and escalation-due automation, escalates overdue
// auto-escalate workflows, and nudges unworked tickets. It snapshots the
// workflow set under the lock and acts outside it so rule actions can call
// back into the scheduler.
func (s *Scheduler) Sweep(ctx context.Context) {
	now := s.now()

	type pending struct {
		id           string
		ticketID     string
		resume       bool
		autoEscalate bool
		slaPayload   *rules.Payload
		noResponse   *rules.Payload
	}

	s.mu.Lock()
	var work []pending
	for _, w := range s.workflows {
		if w.Status.Terminal() {
			continue
		}
		p := pending{id: w.ID, ticketID: w.Ticket.ID}

		if w.Status == workflows.StatusSnoozed {
			if w.SnoozedUntil != nil && !now.Before(*w.SnoozedUntil) {
				p.resume = true
				work = append(work, p)
			}
			continue
		}

		slaDeadline := w.CreatedAt.Add(w.SLA)
		if now.After(slaDeadline) && w.ResolvedAt == nil {
			p.slaPayload = &rules.Payload{
				Severity:     string(w.Ticket.Severity),
				CustomerTier: string(w.Ticket.Customer.Tier),
				RiskType:     string(w.Ticket.Type),
				MRR:          rules.Float(w.Ticket.Customer.MRR),
				HoursOverdue: rules.Float(now.Sub(slaDeadline).Hours()),
			}
		}

		if w.NextEscalationDeadline != nil && now.After(*w.NextEscalationDeadline) && w.AutoEscalate {
			p.autoEscalate = true
		}

		if w.Status == workflows.StatusActive && len(w.Actions) == 0 {
			p.noResponse = &rules.Payload{
				Severity:          string(w.Ticket.Severity),
				CustomerTier:      string(w.Ticket.Customer.Tier),
				RiskType:          string(w.Ticket.Type),
				HoursSinceCreated: rules.Float(now.Sub(w.CreatedAt).Hours()),
			}
		}

		if p.slaPayload != nil || p.autoEscalate || p.noResponse != nil {
			work = append(work, p)
		}
	}
	s.mu.Unlock()

	for _, p := range work {
		if p.resume {
			s.resume(p.id)
			continue
		}
		if p.autoEscalate {
			if _, err := s.Escalate(p.id, "sla_deadline_passed"); err != nil {
				s.logger.Printf("auto-escalate failed workflow=%s: %v", p.id, err)
			}
		}
		if p.slaPayload != nil {
			s.EvaluateRules(ctx, rules.TriggerSLAViolation, *p.slaPayload, p.id, p.ticketID)
			s.EvaluateRules(ctx, rules.TriggerEscalationDue, *p.slaPayload, p.id, p.ticketID)
		}
		if p.noResponse != nil {
			s.EvaluateRules(ctx, rules.TriggerNoResponse, *p.noResponse, p.id, p.ticketID)
		}
	}

	s.EvaluateRules(ctx, rules.TriggerScheduledCheck, rules.Payload{}, "", "")
	s.DetectRiskSpikes(ctx)
}

func (s *Scheduler) resume(workflowID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, ok := s.workflows[workflowID]
	if !ok {
		return
	}
	if err := w.Apply(workflows.EventResume); err != nil {
		s.logger.Printf("resume failed workflow=%s: %v", workflowID, err)
		return
	}
	w.SnoozedUntil = nil
	deadline := s.now().Add(w.SLA)
	w.NextEscalationDeadline = &deadline
	s.logger.Printf("resumed workflow=%s after snooze", workflowID)
}

// actionStats backs the effectiveness insight surface, keyed by
// (tier, risk type, action description).
type actionStats struct {
	Tier        string
	RiskType    string
	Description string
	Attempts    int
	Successes   int
}

func (s *Scheduler) recordEffectiveness(tier, riskType, description string, success bool) {
	s.effectMu.Lock()
	defer s.effectMu.Unlock()

	k := tier + "|" + riskType + "|" + description
	st, ok := s.effectiveness[k]
	if !ok {
		st = &actionStats{Tier: tier, RiskType: riskType, Description: description}
		s.effectiveness[k] = st
	}
	st.Attempts++
	if success {
		st.Successes++
	}
}

// ActionInsight summarizes how well an engagement tactic works for a
// customer segment.
type ActionInsight struct {
	Tier        string
	RiskType    string
	Description string
	Attempts    int
	SuccessRate float64
}

// minInsightAttempts keeps low-signal tactics off the insight surface; a
// tactic tried once or twice says nothing about the segment.
const minInsightAttempts = 3

// ActionInsights returns effectiveness aggregates sorted by success rate
// descending, then attempts. Tactics below the attempt floor are omitted.
func (s *Scheduler) ActionInsights() []ActionInsight {
	s.effectMu.Lock()
	defer s.effectMu.Unlock()

	out := make([]ActionInsight, 0, len(s.effectiveness))
	for _, st := range s.effectiveness {
		if st.Attempts < minInsightAttempts {
			continue
		}
		insight := ActionInsight{
			Tier:        st.Tier,
			RiskType:    st.RiskType,
			Description: st.Description,
			Attempts:    st.Attempts,
		}
		if st.Attempts > 0 {
			insight.SuccessRate = float64(st.Successes) / float64(st.Attempts)
		}
		out = append(out, insight)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].SuccessRate != out[j].SuccessRate {
			return out[i].SuccessRate > out[j].SuccessRate
		}
		if out[i].Attempts != out[j].Attempts {
			return out[i].Attempts > out[j].Attempts
		}
		return out[i].Description < out[j].Description
	})
	return out
}
