package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadAgents(t *testing.T) {
	path := writeFile(t, "agents.yaml", `
agents:
  - id: sr-1
    name: Dana
    level: senior
    specialties: [churn_risk, enterprise]
    timezone: America/New_York
    max_concurrent: 3
    status: busy
    availability:
      monday: {start: 9, end: 17}
      friday: {start: 9, end: 13}
    performance:
      success_rate: 0.9
      escalation_rate: 0.05
      satisfaction: 4.5
      avg_resolution_hours: 6
  - id: jr-1
    level: junior
`)

	got, err := LoadAgents(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d agents, want 2", len(got))
	}

	sr := got[0]
	if sr.ID != "sr-1" || sr.Name != "Dana" || sr.Level != agents.LevelSenior {
		t.Fatalf("first agent: %+v", sr)
	}
	if sr.MaxConcurrent != 3 || sr.Status != agents.StatusBusy {
		t.Fatalf("capacity/status: %+v", sr)
	}
	if w, ok := sr.Availability[time.Monday]; !ok || w.StartHour != 9 || w.EndHour != 17 {
		t.Fatalf("monday window: %+v", sr.Availability)
	}
	if sr.Performance.SuccessRate != 0.9 || sr.Performance.AvgResolutionHours != 6 {
		t.Fatalf("performance: %+v", sr.Performance)
	}

	// Omitted fields take defaults.
	jr := got[1]
	if jr.MaxConcurrent != 5 {
		t.Fatalf("default max_concurrent = %d, want 5", jr.MaxConcurrent)
	}
	if jr.Status != agents.StatusAvailable {
		t.Fatalf("default status = %q, want available", jr.Status)
	}
}

func TestLoadAgentsErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"missing id", "agents:\n  - name: Nameless\n"},
		{"unknown weekday", "agents:\n  - id: a-1\n    availability:\n      funday: {start: 9, end: 17}\n"},
		{"malformed yaml", "agents: [\n"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			path := writeFile(t, "agents.yaml", test.content)
			if _, err := LoadAgents(path); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	if _, err := LoadAgents(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadRules(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
rules:
  - id: big_account_payment
    name: Big accounts with payment trouble
    trigger: ticket_created
    conditions:
      - field: risk_type
        operator: equals
        value: payment_risk
      - field: mrr
        operator: greater_than
        value: 10000
      - field: customer_tier
        operator: in
        values: [enterprise, mid_market]
    actions:
      - type: assign_agent
        level: senior
        urgent: true
      - type: schedule_followup
        within_hours: 2
        followup_kind: billing_resolution
    delay_minutes: 5
    enabled: true
    priority: 1
`)

	got, err := LoadRules(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("got %d rules, want 1", len(got))
	}

	r := got[0]
	if r.ID != "big_account_payment" || r.Trigger != rules.TriggerTicketCreated {
		t.Fatalf("rule: %+v", r)
	}
	if r.Delay != 5*time.Minute {
		t.Fatalf("delay = %v, want 5m", r.Delay)
	}
	if len(r.Conditions) != 3 {
		t.Fatalf("conditions: %+v", r.Conditions)
	}
	// YAML integers must come through as float64 so numeric comparisons work.
	if v, ok := r.Conditions[1].Value.(float64); !ok || v != 10000 {
		t.Fatalf("mrr value = %#v, want float64 10000", r.Conditions[1].Value)
	}
	if len(r.Conditions[2].Values) != 2 {
		t.Fatalf("tier values: %+v", r.Conditions[2].Values)
	}
	if len(r.Actions) != 2 || r.Actions[0].Type != rules.ActionAssignAgent || !r.Actions[0].Urgent {
		t.Fatalf("actions: %+v", r.Actions)
	}
	if r.Actions[1].WithinHours != 2 || r.Actions[1].FollowupKind != "billing_resolution" {
		t.Fatalf("followup action: %+v", r.Actions[1])
	}
}

func TestLoadRulesRejectsInvalid(t *testing.T) {
	path := writeFile(t, "rules.yaml", `
rules:
  - id: broken
    trigger: ticket_created
    conditions:
      - field: severity
        operator: resembles
        value: critical
    actions:
      - type: notify
    enabled: true
`)

	if _, err := LoadRules(path); !errors.Is(err, rules.ErrValidation) {
		t.Fatalf("got %v, want ErrValidation", err)
	}
}
