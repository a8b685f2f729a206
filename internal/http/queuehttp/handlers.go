package queuehttp

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/http/common"
	"riskrouter/internal/usecase"
)

type Handler struct {
	Scheduler *usecase.Scheduler
}

func NewHandler(scheduler *usecase.Scheduler) *Handler {
	return &Handler{Scheduler: scheduler}
}

func (h *Handler) HandleStatus(c *gin.Context) {
	st := h.Scheduler.QueueStatus()
	c.JSON(http.StatusOK, gin.H{
		"length":        st.Length,
		"urgent":        st.Urgent,
		"high":          st.High,
		"medium":        st.Medium,
		"low":           st.Low,
		"average_score": st.AverageScore,
		"average_wait":  st.AverageWait,
		"health":        st.Health,
	})
}

// HandleNext drains the highest-priority ticket and assigns it. 204 when the
// queue is empty; the match block is omitted when no agent had capacity.
func (h *Handler) HandleNext(c *gin.Context) {
	assignment, ok, err := h.Scheduler.DequeueNext(c.Request.Context())
	if err != nil {
		common.WriteError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusNoContent)
		return
	}
	payload := gin.H{
		"ticket":         common.ToTicketResponse(assignment.Entry.Ticket),
		"priority_score": assignment.Entry.Score,
		"workflow":       common.ToWorkflowResponse(assignment.Workflow),
	}
	if assignment.Match != nil {
		payload["match"] = common.ToMatchResponse(*assignment.Match)
	}
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) HandleAnalytics(c *gin.Context) {
	a := h.Scheduler.QueueAnalytics()
	c.JSON(http.StatusOK, gin.H{
		"processed":              a.Processed,
		"current_length":         a.CurrentLength,
		"avg_assignment_minutes": a.AvgAssignmentMinutes,
		"distribution": gin.H{
			"urgent": a.Urgent,
			"high":   a.High,
			"medium": a.Medium,
			"low":    a.Low,
		},
		"efficiency": a.Efficiency,
	})
}
