package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	"riskrouter/internal/config"
	"riskrouter/internal/domain/agents"
	"riskrouter/internal/infra/agentmem"
	"riskrouter/internal/infra/notify"
	"riskrouter/internal/infra/priorityqueue"
	"riskrouter/internal/infra/snapshots"
	"riskrouter/internal/infra/suppression"
	"riskrouter/internal/usecase"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	registry := agentmem.New()
	registry.Seed([]agents.Agent{
		{
			ID: "sr-1", Name: "Dana", Level: agents.LevelSenior,
			MaxConcurrent: 5, Status: agents.StatusAvailable,
			Performance: agents.Performance{SuccessRate: 0.9, EscalationRate: 0.05, Satisfaction: 4.5},
		},
		{
			ID: "std-1", Name: "Sam", Level: agents.LevelStandard,
			MaxConcurrent: 4, Status: agents.StatusAvailable,
			Performance: agents.Performance{SuccessRate: 0.8, EscalationRate: 0.1, Satisfaction: 4.0},
		},
	})
	logger := log.New(io.Discard, "", 0)
	scheduler := usecase.New(
		priorityqueue.New(nil),
		registry,
		suppression.NewMemory(nil),
		notify.NewLog(logger),
		snapshots.NewMemory(nil),
		logger,
		nil,
	)

	srv := NewServer(config.Config{}, scheduler)
	server := httptest.NewServer(srv.Handler())
	t.Cleanup(server.Close)
	return server
}

func postJSON(t *testing.T, url string, body any) *http.Response {
	t.Helper()
	payload, _ := json.Marshal(body)
	resp, err := http.Post(url, "application/json", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestTicketSubmitAndDrain(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/tickets", map[string]any{
		"type":     "churn_risk",
		"severity": "high",
		"customer": map[string]any{
			"customer_id": "acme",
			"tier":        "mid_market",
			"mrr":         6000,
		},
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("submit status: %d", resp.StatusCode)
	}
	var created struct {
		TicketID      string  `json:"ticket_id"`
		WorkflowID    string  `json:"workflow_id"`
		PriorityScore float64 `json:"priority_score"`
		QueueLength   int     `json:"queue_length"`
	}
	decode(t, resp, &created)
	if created.TicketID == "" || created.WorkflowID == "" {
		t.Fatalf("missing ids: %+v", created)
	}
	if created.PriorityScore <= 0 || created.QueueLength != 1 {
		t.Fatalf("receipt: %+v", created)
	}

	getResp, err := http.Get(server.URL + "/v1/workflows/" + created.WorkflowID)
	if err != nil {
		t.Fatalf("get workflow: %v", err)
	}
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get workflow status: %d", getResp.StatusCode)
	}
	var got struct {
		Workflow struct {
			Status string `json:"status"`
			Ticket struct {
				ID string `json:"id"`
			} `json:"ticket"`
		} `json:"workflow"`
	}
	decode(t, getResp, &got)
	if got.Workflow.Status != "active" || got.Workflow.Ticket.ID != created.TicketID {
		t.Fatalf("workflow: %+v", got.Workflow)
	}

	nextResp := postJSON(t, server.URL+"/v1/queue/next", map[string]any{})
	if nextResp.StatusCode != http.StatusOK {
		t.Fatalf("queue next status: %d", nextResp.StatusCode)
	}
	var next struct {
		Match *struct {
			AgentID string `json:"agent_id"`
		} `json:"match"`
		Workflow struct {
			AssignedAgentID string `json:"assigned_agent_id"`
		} `json:"workflow"`
	}
	decode(t, nextResp, &next)
	if next.Match == nil || next.Match.AgentID == "" {
		t.Fatal("expected a match")
	}
	if next.Workflow.AssignedAgentID != next.Match.AgentID {
		t.Fatalf("workflow agent %q != match agent %q", next.Workflow.AssignedAgentID, next.Match.AgentID)
	}

	// Queue drained.
	empty := postJSON(t, server.URL+"/v1/queue/next", map[string]any{})
	empty.Body.Close()
	if empty.StatusCode != http.StatusNoContent {
		t.Fatalf("empty queue status: %d", empty.StatusCode)
	}

	resolveResp := postJSON(t, server.URL+"/v1/workflows/"+created.WorkflowID+"/resolve", map[string]any{
		"resolved_by": next.Match.AgentID,
		"notes":       "renewed contract",
	})
	if resolveResp.StatusCode != http.StatusOK {
		t.Fatalf("resolve status: %d", resolveResp.StatusCode)
	}
	var resolved struct {
		Workflow struct {
			Status string `json:"status"`
		} `json:"workflow"`
	}
	decode(t, resolveResp, &resolved)
	if resolved.Workflow.Status != "resolved" {
		t.Fatalf("status after resolve: %q", resolved.Workflow.Status)
	}

	// A terminal workflow rejects further lifecycle operations.
	conflict := postJSON(t, server.URL+"/v1/workflows/"+created.WorkflowID+"/escalate", map[string]any{
		"reason": "too late",
	})
	conflict.Body.Close()
	if conflict.StatusCode != http.StatusConflict {
		t.Fatalf("escalate after resolve status: %d", conflict.StatusCode)
	}
}

func TestTicketSubmitValidation(t *testing.T) {
	server := newTestServer(t)

	resp := postJSON(t, server.URL+"/v1/tickets", map[string]any{
		"severity": "high",
		"customer": map[string]any{"customer_id": "acme"},
	})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decode(t, resp, &body)
	if body.Code != "INVALID_ARGUMENT" {
		t.Fatalf("code: %q", body.Code)
	}
}

func TestRepeatAlertSuppressed(t *testing.T) {
	server := newTestServer(t)

	ticket := map[string]any{
		"type":     "engagement_risk",
		"severity": "medium",
		"customer": map[string]any{"customer_id": "acme", "tier": "startup", "mrr": 500},
	}

	first := postJSON(t, server.URL+"/v1/tickets", ticket)
	first.Body.Close()
	if first.StatusCode != http.StatusCreated {
		t.Fatalf("first submit status: %d", first.StatusCode)
	}

	second := postJSON(t, server.URL+"/v1/tickets", ticket)
	if second.StatusCode != http.StatusAccepted {
		t.Fatalf("repeat submit status: %d", second.StatusCode)
	}
	var body struct {
		Suppressed bool `json:"suppressed"`
	}
	decode(t, second, &body)
	if !body.Suppressed {
		t.Fatal("expected suppressed flag")
	}
}

func TestRuleEndpoints(t *testing.T) {
	server := newTestServer(t)

	listResp, err := http.Get(server.URL + "/v1/rules")
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	var list struct {
		Items []struct {
			ID      string `json:"id"`
			Enabled bool   `json:"enabled"`
		} `json:"items"`
	}
	decode(t, listResp, &list)
	if len(list.Items) == 0 {
		t.Fatal("expected the default rule set")
	}

	toggleResp := postJSON(t, server.URL+"/v1/rules/"+list.Items[0].ID+"/toggle", map[string]any{
		"enabled": false,
	})
	toggleResp.Body.Close()
	if toggleResp.StatusCode != http.StatusOK {
		t.Fatalf("toggle status: %d", toggleResp.StatusCode)
	}

	missing := postJSON(t, server.URL+"/v1/rules/ghost/toggle", map[string]any{"enabled": true})
	missing.Body.Close()
	if missing.StatusCode != http.StatusNotFound {
		t.Fatalf("toggle unknown rule status: %d", missing.StatusCode)
	}

	evalResp := postJSON(t, server.URL+"/v1/rules/evaluate", map[string]any{
		"trigger": "pattern_match",
		"payload": map[string]any{
			"last_login_days":  14,
			"engagement_score": 0.1,
		},
	})
	if evalResp.StatusCode != http.StatusOK {
		t.Fatalf("evaluate status: %d", evalResp.StatusCode)
	}
	var eval struct {
		Fired []struct {
			RuleID  string `json:"rule_id"`
			Success bool   `json:"success"`
		} `json:"fired"`
	}
	decode(t, evalResp, &eval)
	if len(eval.Fired) != 1 || eval.Fired[0].RuleID != "low_engagement_nurture" {
		t.Fatalf("fired: %+v", eval.Fired)
	}

	badTrigger := postJSON(t, server.URL+"/v1/rules/evaluate", map[string]any{"trigger": "nonsense"})
	badTrigger.Body.Close()
	if badTrigger.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad trigger status: %d", badTrigger.StatusCode)
	}
}

func TestTeamEndpoints(t *testing.T) {
	server := newTestServer(t)

	dashResp, err := http.Get(server.URL + "/v1/team/dashboard")
	if err != nil {
		t.Fatalf("dashboard: %v", err)
	}
	if dashResp.StatusCode != http.StatusOK {
		t.Fatalf("dashboard status: %d", dashResp.StatusCode)
	}
	var dash struct {
		Agents []struct {
			ID string `json:"id"`
		} `json:"agents"`
		TotalCapacity int `json:"total_capacity"`
	}
	decode(t, dashResp, &dash)
	if len(dash.Agents) != 2 || dash.TotalCapacity != 9 {
		t.Fatalf("dashboard: %+v", dash)
	}

	recResp, err := http.Get(server.URL + "/v1/team/recommendations")
	if err != nil {
		t.Fatalf("recommendations: %v", err)
	}
	defer recResp.Body.Close()
	if recResp.StatusCode != http.StatusOK {
		t.Fatalf("recommendations status: %d", recResp.StatusCode)
	}
}
