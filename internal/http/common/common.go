package common

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
	"riskrouter/internal/domain/tickets"
	"riskrouter/internal/domain/workflows"
	"riskrouter/internal/usecase"
)

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type TicketResponse struct {
	ID        string  `json:"id"`
	Type      string  `json:"type"`
	Severity  string  `json:"severity"`
	Message   string  `json:"message,omitempty"`
	Customer  string  `json:"customer_id"`
	Tier      string  `json:"tier"`
	MRR       float64 `json:"mrr"`
	CreatedAt string  `json:"created_at"`
}

type ActionResponse struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	ExecutedBy  string  `json:"executed_by"`
	Status      string  `json:"status"`
	StartedAt   string  `json:"started_at"`
	CompletedAt *string `json:"completed_at,omitempty"`
	Outcome     string  `json:"outcome,omitempty"`
}

type WorkflowResponse struct {
	ID                     string           `json:"id"`
	Ticket                 TicketResponse   `json:"ticket"`
	AssignedAgentID        string           `json:"assigned_agent_id,omitempty"`
	AssignmentScore        float64          `json:"assignment_score"`
	Status                 string           `json:"status"`
	CreatedAt              string           `json:"created_at"`
	EscalationLevel        int              `json:"escalation_level"`
	EscalationChain        []string         `json:"escalation_chain"`
	AutoEscalate           bool             `json:"auto_escalate"`
	SLAHours               float64          `json:"sla_hours"`
	NextEscalationDeadline *string          `json:"next_escalation_deadline,omitempty"`
	Actions                []ActionResponse `json:"actions,omitempty"`
	SnoozedUntil           *string          `json:"snoozed_until,omitempty"`
	SnoozeReason           string           `json:"snooze_reason,omitempty"`
	ResolvedAt             *string          `json:"resolved_at,omitempty"`
	ResolvedBy             string           `json:"resolved_by,omitempty"`
	ResolutionNotes        string           `json:"resolution_notes,omitempty"`
	ResolutionHours        float64          `json:"resolution_hours,omitempty"`
	EscalationReason       string           `json:"escalation_reason,omitempty"`
}

type MatchResponse struct {
	AgentID    string   `json:"agent_id"`
	AgentName  string   `json:"agent_name"`
	Score      float64  `json:"score"`
	Reasons    []string `json:"reasons"`
	Alternates []struct {
		AgentID string  `json:"agent_id"`
		Score   float64 `json:"score"`
	} `json:"alternates,omitempty"`
}

func ToTicketResponse(t tickets.Ticket) TicketResponse {
	return TicketResponse{
		ID:        t.ID,
		Type:      string(t.Type),
		Severity:  string(t.Severity),
		Message:   t.Message,
		Customer:  t.Customer.CustomerID,
		Tier:      string(t.Customer.Tier),
		MRR:       t.Customer.MRR,
		CreatedAt: t.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func ToActionResponse(a workflows.Action) ActionResponse {
	resp := ActionResponse{
		ID:          a.ID,
		Description: a.Description,
		ExecutedBy:  a.ExecutedBy,
		Status:      string(a.Status),
		StartedAt:   a.StartedAt.UTC().Format(time.RFC3339Nano),
		Outcome:     a.Outcome,
	}
	if a.CompletedAt != nil {
		resp.CompletedAt = formatTime(a.CompletedAt)
	}
	return resp
}

func ToWorkflowResponse(w workflows.Workflow) WorkflowResponse {
	chain := make([]string, 0, len(w.EscalationChain))
	for _, level := range w.EscalationChain {
		chain = append(chain, string(level))
	}
	resp := WorkflowResponse{
		ID:                     w.ID,
		Ticket:                 ToTicketResponse(w.Ticket),
		AssignedAgentID:        w.AssignedAgentID,
		AssignmentScore:        w.AssignmentScore,
		Status:                 string(w.Status),
		CreatedAt:              w.CreatedAt.UTC().Format(time.RFC3339Nano),
		EscalationLevel:        w.EscalationLevel,
		EscalationChain:        chain,
		AutoEscalate:           w.AutoEscalate,
		SLAHours:               w.SLA.Hours(),
		NextEscalationDeadline: formatTime(w.NextEscalationDeadline),
		SnoozedUntil:           formatTime(w.SnoozedUntil),
		SnoozeReason:           w.SnoozeReason,
		ResolvedAt:             formatTime(w.ResolvedAt),
		ResolvedBy:             w.ResolvedBy,
		ResolutionNotes:        w.ResolutionNotes,
		ResolutionHours:        w.ResolutionHours,
		EscalationReason:       w.EscalationReason,
	}
	for _, a := range w.Actions {
		resp.Actions = append(resp.Actions, ToActionResponse(a))
	}
	return resp
}

func ToMatchResponse(m usecase.Match) MatchResponse {
	resp := MatchResponse{
		AgentID:   m.Agent.ID,
		AgentName: m.Agent.Name,
		Score:     m.Score,
	}
	for _, r := range m.Reasons {
		resp.Reasons = append(resp.Reasons, string(r))
	}
	for _, alt := range m.Alternates {
		resp.Alternates = append(resp.Alternates, struct {
			AgentID string  `json:"agent_id"`
			Score   float64 `json:"score"`
		}{AgentID: alt.Agent.ID, Score: alt.Score})
	}
	return resp
}

func formatTime(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.UTC().Format(time.RFC3339Nano)
	return &formatted
}

func WriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, workflows.ErrNotFound), errors.Is(err, agents.ErrNotFound), errors.Is(err, rules.ErrNotFound):
		WriteErrorCode(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.Is(err, workflows.ErrInvalidTransition):
		WriteErrorCode(c, http.StatusConflict, "INVALID_TRANSITION", "operation not allowed in current state")
	case errors.Is(err, workflows.ErrMaxEscalation):
		WriteErrorCode(c, http.StatusConflict, "MAX_ESCALATION", "escalation chain exhausted")
	case errors.Is(err, agents.ErrCapacityExceeded):
		WriteErrorCode(c, http.StatusConflict, "CAPACITY_EXCEEDED", "no agent capacity available")
	case errors.Is(err, rules.ErrValidation):
		WriteErrorCode(c, http.StatusUnprocessableEntity, "INVALID_RULE", err.Error())
	default:
		WriteErrorCode(c, http.StatusInternalServerError, "INTERNAL", "internal error")
	}
}

func WriteErrorCode(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{Code: code, Message: message})
}
