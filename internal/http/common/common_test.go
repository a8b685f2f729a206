package common

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
	"riskrouter/internal/domain/tickets"
	"riskrouter/internal/domain/workflows"
)

func TestWriteErrorMapping(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name string
		err  error
		want int
	}{
		{"workflow not found", workflows.ErrNotFound, http.StatusNotFound},
		{"agent not found", agents.ErrNotFound, http.StatusNotFound},
		{"rule not found", rules.ErrNotFound, http.StatusNotFound},
		{"invalid transition", workflows.ErrInvalidTransition, http.StatusConflict},
		{"max escalation", workflows.ErrMaxEscalation, http.StatusConflict},
		{"capacity exceeded", agents.ErrCapacityExceeded, http.StatusConflict},
		{"invalid rule", rules.ErrValidation, http.StatusUnprocessableEntity},
		{"unknown", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			WriteError(c, test.err)
			if rec.Code != test.want {
				t.Fatalf("expected %d, got %d", test.want, rec.Code)
			}
		})
	}
}

func TestWriteErrorUsesErrorsIs(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	WriteError(c, fmt.Errorf("wrap: %w", workflows.ErrNotFound))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestWriteErrorCodeAborts(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)

	WriteErrorCode(c, http.StatusBadRequest, "BAD", "bad")

	if !c.IsAborted() {
		t.Fatalf("expected context aborted")
	}
}

func TestToWorkflowResponse(t *testing.T) {
	created := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	deadline := created.Add(time.Hour)
	w := workflows.Workflow{
		ID: "w-1",
		Ticket: tickets.Ticket{
			ID:        "t-1",
			Type:      tickets.RiskChurn,
			Severity:  tickets.SeverityHigh,
			Customer:  tickets.CustomerProfile{CustomerID: "c-1", Tier: tickets.TierEnterprise, MRR: 20000},
			CreatedAt: created,
		},
		Status:                 workflows.StatusActive,
		CreatedAt:              created,
		EscalationChain:        []agents.Level{agents.LevelSenior, agents.LevelManager},
		SLA:                    4 * time.Hour,
		NextEscalationDeadline: &deadline,
	}

	resp := ToWorkflowResponse(w)
	if resp.ID != "w-1" || resp.Status != "active" {
		t.Fatalf("response: %+v", resp)
	}
	if resp.SLAHours != 4 {
		t.Fatalf("sla_hours = %v, want 4", resp.SLAHours)
	}
	if len(resp.EscalationChain) != 2 || resp.EscalationChain[0] != "senior" {
		t.Fatalf("chain: %+v", resp.EscalationChain)
	}
	if resp.NextEscalationDeadline == nil || *resp.NextEscalationDeadline != "2025-06-01T10:00:00Z" {
		t.Fatalf("deadline: %v", resp.NextEscalationDeadline)
	}
	// Unset optionals stay off the wire.
	if resp.ResolvedAt != nil || resp.SnoozedUntil != nil {
		t.Fatalf("optionals should be nil: %+v", resp)
	}
}
