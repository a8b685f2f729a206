package ticketshttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/domain/tickets"
	"riskrouter/internal/http/common"
	"riskrouter/internal/usecase"
)

type Handler struct {
	Scheduler *usecase.Scheduler
}

func NewHandler(scheduler *usecase.Scheduler) *Handler {
	return &Handler{Scheduler: scheduler}
}

type submitRequest struct {
	ID       string `json:"id,omitempty"`
	Type     string `json:"type"`
	Severity string `json:"severity"`
	Message  string `json:"message,omitempty"`
	Customer struct {
		CustomerID     string  `json:"customer_id"`
		Name           string  `json:"name,omitempty"`
		Tier           string  `json:"tier"`
		Industry       string  `json:"industry,omitempty"`
		MRR            float64 `json:"mrr"`
		SupportTickets int     `json:"support_tickets,omitempty"`
		TenureMonths   int     `json:"tenure_months,omitempty"`
	} `json:"customer"`
	CreatedAt         *time.Time `json:"created_at,omitempty"`
	SLAHoursRemaining *float64   `json:"sla_hours_remaining,omitempty"`
	HealthScore       *float64   `json:"health_score,omitempty"`
}

// HandleSubmit runs the full intake path: suppression, scoring, enqueue,
// workflow creation, and ticket_created automation.
func (h *Handler) HandleSubmit(c *gin.Context) {
	var req submitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Type == "" || req.Customer.CustomerID == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "type and customer.customer_id are required")
		return
	}

	t := tickets.Ticket{
		ID:       req.ID,
		Type:     tickets.RiskType(req.Type),
		Severity: tickets.ParseSeverity(req.Severity),
		Message:  req.Message,
		Customer: tickets.CustomerProfile{
			CustomerID:     req.Customer.CustomerID,
			Name:           req.Customer.Name,
			Tier:           tickets.Tier(req.Customer.Tier),
			Industry:       req.Customer.Industry,
			MRR:            req.Customer.MRR,
			SupportTickets: req.Customer.SupportTickets,
			TenureMonths:   req.Customer.TenureMonths,
		},
	}
	if req.CreatedAt != nil {
		t.CreatedAt = *req.CreatedAt
	}

	result, err := h.Scheduler.Submit(c.Request.Context(), usecase.TicketSubmission{
		Ticket:            t,
		SLAHoursRemaining: req.SLAHoursRemaining,
		HealthScore:       req.HealthScore,
	})
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if result.Suppressed {
		c.JSON(http.StatusAccepted, gin.H{
			"suppressed": true,
			"ticket_id":  result.TicketID,
		})
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"ticket_id":      result.TicketID,
		"workflow_id":    result.WorkflowID,
		"priority_score": result.Score,
		"queue_position": result.Receipt.Position,
		"queue_length":   result.Receipt.QueueLength,
		"estimated_wait": result.Receipt.EstimatedWait,
	})
}
