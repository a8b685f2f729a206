package ruleshttp

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/domain/rules"
	"riskrouter/internal/http/common"
	"riskrouter/internal/usecase"
)

type Handler struct {
	Scheduler *usecase.Scheduler
}

func NewHandler(scheduler *usecase.Scheduler) *Handler {
	return &Handler{Scheduler: scheduler}
}

func (h *Handler) HandleList(c *gin.Context) {
	list := h.Scheduler.ListRules()
	items := make([]gin.H, 0, len(list))
	for _, r := range list {
		items = append(items, gin.H{
			"id":       r.ID,
			"name":     r.Name,
			"trigger":  r.Trigger,
			"enabled":  r.Enabled,
			"priority": r.Priority,
		})
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) HandleToggle(c *gin.Context) {
	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if err := h.Scheduler.ToggleRule(c.Param("id"), req.Enabled); err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "enabled": req.Enabled})
}

type evaluateRequest struct {
	Trigger    string  `json:"trigger"`
	WorkflowID string  `json:"workflow_id,omitempty"`
	TicketID   string  `json:"ticket_id,omitempty"`
	Payload    payload `json:"payload"`
}

type payload struct {
	Severity          string   `json:"severity,omitempty"`
	RiskType          string   `json:"risk_type,omitempty"`
	CustomerTier      string   `json:"customer_tier,omitempty"`
	Industry          string   `json:"industry,omitempty"`
	MRR               *float64 `json:"mrr,omitempty"`
	HealthScore       *float64 `json:"health_score,omitempty"`
	HoursOverdue      *float64 `json:"hours_overdue,omitempty"`
	HoursSinceCreated *float64 `json:"hours_since_created,omitempty"`
	EscalationLevel   *int     `json:"escalation_level,omitempty"`
	HealthDropPct     *float64 `json:"health_drop_percentage,omitempty"`
	TimeframeDays     *float64 `json:"timeframe_days,omitempty"`
	OpenTickets       *int     `json:"open_tickets,omitempty"`
	LastLoginDays     *float64 `json:"last_login_days,omitempty"`
	EngagementScore   *float64 `json:"engagement_score,omitempty"`
}

// HandleEvaluate fires the rule engine for an arbitrary trigger and payload.
// Used by upstream systems that detect events the scheduler cannot see.
func (h *Handler) HandleEvaluate(c *gin.Context) {
	var req evaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	trigger := rules.TriggerType(req.Trigger)
	if !trigger.Valid() {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "unknown trigger")
		return
	}
	fired := h.Scheduler.EvaluateRules(c.Request.Context(), trigger, toPayload(req.Payload), req.WorkflowID, req.TicketID)
	items := make([]gin.H, 0, len(fired))
	for _, rec := range fired {
		items = append(items, toRecordResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{"fired": items})
}

func (h *Handler) HandleAnalytics(c *gin.Context) {
	report := h.Scheduler.AutomationAnalytics()
	ruleRows := make([]gin.H, 0, len(report.Rules))
	for _, r := range report.Rules {
		ruleRows = append(ruleRows, gin.H{
			"id":           r.ID,
			"name":         r.Name,
			"trigger":      r.Trigger,
			"enabled":      r.Enabled,
			"priority":     r.Priority,
			"executions":   r.Executions,
			"success_rate": r.SuccessRate,
		})
	}
	recent := make([]gin.H, 0, len(report.RecentExecutions))
	for _, rec := range report.RecentExecutions {
		recent = append(recent, toRecordResponse(rec))
	}
	c.JSON(http.StatusOK, gin.H{
		"total_rules":       report.TotalRules,
		"enabled_rules":     report.EnabledRules,
		"total_executions":  report.TotalExecutions,
		"rules":             ruleRows,
		"recent_executions": recent,
	})
}

func toRecordResponse(rec rules.ExecutionRecord) gin.H {
	actions := make([]gin.H, 0, len(rec.Actions))
	for _, a := range rec.Actions {
		row := gin.H{"type": a.Type, "success": a.Success}
		if a.Detail != "" {
			row["detail"] = a.Detail
		}
		if a.Err != "" {
			row["error"] = a.Err
		}
		actions = append(actions, row)
	}
	return gin.H{
		"id":          rec.ID,
		"rule_id":     rec.RuleID,
		"trigger":     rec.Trigger,
		"executed_at": rec.ExecutedAt.UTC().Format(time.RFC3339Nano),
		"workflow_id": rec.WorkflowID,
		"ticket_id":   rec.TicketID,
		"success":     rec.Success,
		"actions":     actions,
	}
}

func toPayload(p payload) rules.Payload {
	return rules.Payload{
		Severity:          p.Severity,
		RiskType:          p.RiskType,
		CustomerTier:      p.CustomerTier,
		Industry:          p.Industry,
		MRR:               p.MRR,
		HealthScore:       p.HealthScore,
		HoursOverdue:      p.HoursOverdue,
		HoursSinceCreated: p.HoursSinceCreated,
		EscalationLevel:   p.EscalationLevel,
		HealthDropPct:     p.HealthDropPct,
		TimeframeDays:     p.TimeframeDays,
		OpenTickets:       p.OpenTickets,
		LastLoginDays:     p.LastLoginDays,
		EngagementScore:   p.EngagementScore,
	}
}
