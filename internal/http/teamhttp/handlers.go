package teamhttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/usecase"
)

type Handler struct {
	Scheduler *usecase.Scheduler
}

func NewHandler(scheduler *usecase.Scheduler) *Handler {
	return &Handler{Scheduler: scheduler}
}

func (h *Handler) HandleDashboard(c *gin.Context) {
	report := h.Scheduler.TeamDashboard()
	agentRows := make([]gin.H, 0, len(report.Agents))
	for _, a := range report.Agents {
		agentRows = append(agentRows, gin.H{
			"id":              a.ID,
			"name":            a.Name,
			"level":           a.Level,
			"status":          a.Status,
			"workload":        a.Workload,
			"max_concurrent":  a.MaxConcurrent,
			"utilization":     a.Utilization,
			"success_rate":    a.SuccessRate,
			"escalation_rate": a.EscalationRate,
			"satisfaction":    a.Satisfaction,
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"agents":           agentRows,
		"total_capacity":   report.TotalCapacity,
		"total_workload":   report.TotalWorkload,
		"pool_utilization": report.PoolUtilization,
		"open_workflows":   report.OpenWorkflows,
		"escalated":        report.EscalatedCount,
		"snoozed":          report.SnoozedCount,
		"unassigned":       report.UnassignedCount,
		"assignment_rate":  report.AvgAssignmentRate,
	})
}

func (h *Handler) HandleRecommendations(c *gin.Context) {
	recs := h.Scheduler.WorkloadRecommendations()
	items := make([]gin.H, 0, len(recs))
	for _, r := range recs {
		items = append(items, gin.H{
			"agent_id": r.AgentID,
			"kind":     r.Kind,
			"detail":   r.Detail,
		})
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": items})
}
