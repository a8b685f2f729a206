package workflowshttp

import (
	"net/http"
	"strings"

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

func (h *Handler) HandleGet(c *gin.Context) {
	w, err := h.Scheduler.Workflow(c.Param("id"))
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": common.ToWorkflowResponse(w)})
}

func (h *Handler) HandleList(c *gin.Context) {
	status := strings.TrimSpace(c.Query("status"))
	all := h.Scheduler.Workflows()
	items := make([]common.WorkflowResponse, 0, len(all))
	for _, w := range all {
		if status != "" && string(w.Status) != status {
			continue
		}
		items = append(items, common.ToWorkflowResponse(w))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (h *Handler) HandleExecuteAction(c *gin.Context) {
	var req struct {
		Description string `json:"description"`
		ExecutedBy  string `json:"executed_by"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Description == "" {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "description is required")
		return
	}
	action, err := h.Scheduler.ExecuteAction(c.Param("id"), req.Description, req.ExecutedBy)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"action": common.ToActionResponse(action)})
}

func (h *Handler) HandleCompleteAction(c *gin.Context) {
	var req struct {
		Outcome string `json:"outcome"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	action, err := h.Scheduler.CompleteAction(c.Param("id"), c.Param("action_id"), req.Outcome)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"action": common.ToActionResponse(action)})
}

func (h *Handler) HandleResolve(c *gin.Context) {
	var req struct {
		ResolvedBy string `json:"resolved_by"`
		Notes      string `json:"notes,omitempty"`
		Success    *bool  `json:"success,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	success := true
	if req.Success != nil {
		success = *req.Success
	}
	w, err := h.Scheduler.Resolve(c.Param("id"), req.ResolvedBy, req.Notes, success)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": common.ToWorkflowResponse(w)})
}

func (h *Handler) HandleSnooze(c *gin.Context) {
	var req struct {
		Hours     float64 `json:"hours"`
		Reason    string  `json:"reason,omitempty"`
		SnoozedBy string  `json:"snoozed_by,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	if req.Hours <= 0 {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_ARGUMENT", "hours must be positive")
		return
	}
	w, err := h.Scheduler.Snooze(c.Param("id"), req.Hours, req.Reason, req.SnoozedBy)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": common.ToWorkflowResponse(w)})
}

func (h *Handler) HandleEscalate(c *gin.Context) {
	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	w, err := h.Scheduler.Escalate(c.Param("id"), req.Reason)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": common.ToWorkflowResponse(w)})
}

func (h *Handler) HandleDismiss(c *gin.Context) {
	var req struct {
		Reason string `json:"reason,omitempty"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		common.WriteErrorCode(c, http.StatusBadRequest, "INVALID_JSON", "invalid request body")
		return
	}
	w, err := h.Scheduler.Dismiss(c.Param("id"), req.Reason)
	if err != nil {
		common.WriteError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workflow": common.ToWorkflowResponse(w)})
}

func (h *Handler) HandleActionInsights(c *gin.Context) {
	insights := h.Scheduler.ActionInsights()
	items := make([]gin.H, 0, len(insights))
	for _, ins := range insights {
		items = append(items, gin.H{
			"tier":         ins.Tier,
			"risk_type":    ins.RiskType,
			"description":  ins.Description,
			"attempts":     ins.Attempts,
			"success_rate": ins.SuccessRate,
		})
	}
	c.JSON(http.StatusOK, gin.H{"insights": items})
}
