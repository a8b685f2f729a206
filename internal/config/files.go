package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"riskrouter/internal/domain/agents"
	"riskrouter/internal/domain/rules"
)

// agentFile is the YAML shape of the agent roster.
type agentFile struct {
	Agents []struct {
		ID            string   `yaml:"id"`
		Name          string   `yaml:"name"`
		Level         string   `yaml:"level"`
		Specialties   []string `yaml:"specialties"`
		Timezone      string   `yaml:"timezone"`
		MaxConcurrent int      `yaml:"max_concurrent"`
		Status        string   `yaml:"status"`
		Availability  map[string]struct {
			Start int `yaml:"start"`
			End   int `yaml:"end"`
		} `yaml:"availability"`
		Performance struct {
			SuccessRate        float64 `yaml:"success_rate"`
			EscalationRate     float64 `yaml:"escalation_rate"`
			Satisfaction       float64 `yaml:"satisfaction"`
			AvgResolutionHours float64 `yaml:"avg_resolution_hours"`
		} `yaml:"performance"`
	} `yaml:"agents"`
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// LoadAgents reads the agent roster from a YAML file.
func LoadAgents(path string) ([]agents.Agent, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read agents file: %w", err)
	}
	var parsed agentFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse agents file: %w", err)
	}

	out := make([]agents.Agent, 0, len(parsed.Agents))
	for i, entry := range parsed.Agents {
		if entry.ID == "" {
			return nil, fmt.Errorf("agents file: entry %d: id is required", i)
		}
		a := agents.Agent{
			ID:            entry.ID,
			Name:          entry.Name,
			Level:         agents.Level(entry.Level),
			Specialties:   entry.Specialties,
			Timezone:      entry.Timezone,
			MaxConcurrent: entry.MaxConcurrent,
			Status:        agents.Status(entry.Status),
		}
		if a.MaxConcurrent <= 0 {
			a.MaxConcurrent = 5
		}
		if a.Status == "" {
			a.Status = agents.StatusAvailable
		}
		if len(entry.Availability) > 0 {
			a.Availability = make(map[time.Weekday]agents.Window, len(entry.Availability))
			for day, window := range entry.Availability {
				weekday, ok := weekdays[day]
				if !ok {
					return nil, fmt.Errorf("agents file: entry %d: unknown weekday %q", i, day)
				}
				a.Availability[weekday] = agents.Window{StartHour: window.Start, EndHour: window.End}
			}
		}
		a.Performance = agents.Performance{
			SuccessRate:        entry.Performance.SuccessRate,
			EscalationRate:     entry.Performance.EscalationRate,
			Satisfaction:       entry.Performance.Satisfaction,
			AvgResolutionHours: entry.Performance.AvgResolutionHours,
		}
		out = append(out, a)
	}
	return out, nil
}

// ruleFile is the YAML shape of the automation rule set.
type ruleFile struct {
	Rules []struct {
		ID         string `yaml:"id"`
		Name       string `yaml:"name"`
		Trigger    string `yaml:"trigger"`
		Conditions []struct {
			Field    string   `yaml:"field"`
			Operator string   `yaml:"operator"`
			Value    any      `yaml:"value"`
			Values   []string `yaml:"values"`
		} `yaml:"conditions"`
		Actions []struct {
			Type         string   `yaml:"type"`
			Level        string   `yaml:"level"`
			Urgent       bool     `yaml:"urgent"`
			Channels     []string `yaml:"channels"`
			Message      string   `yaml:"message"`
			Template     string   `yaml:"template"`
			WithinHours  float64  `yaml:"within_hours"`
			FollowupKind string   `yaml:"followup_kind"`
			Reason       string   `yaml:"reason"`
			Event        string   `yaml:"event"`
		} `yaml:"actions"`
		DelayMinutes int  `yaml:"delay_minutes"`
		Enabled      bool `yaml:"enabled"`
		Priority     int  `yaml:"priority"`
	} `yaml:"rules"`
}

// LoadRules reads automation rules from a YAML file. Each rule is validated;
// a malformed rule fails the load rather than being dropped silently.
func LoadRules(path string) ([]rules.Rule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}
	var parsed ruleFile
	if err := yaml.Unmarshal(raw, &parsed); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	out := make([]rules.Rule, 0, len(parsed.Rules))
	for _, entry := range parsed.Rules {
		r := rules.Rule{
			ID:       entry.ID,
			Name:     entry.Name,
			Trigger:  rules.TriggerType(entry.Trigger),
			Delay:    time.Duration(entry.DelayMinutes) * time.Minute,
			Enabled:  entry.Enabled,
			Priority: entry.Priority,
		}
		for _, c := range entry.Conditions {
			r.Conditions = append(r.Conditions, rules.Condition{
				Field:    rules.Field(c.Field),
				Operator: rules.Operator(c.Operator),
				Value:    normalizeValue(c.Value),
				Values:   c.Values,
			})
		}
		for _, a := range entry.Actions {
			r.Actions = append(r.Actions, rules.ActionSpec{
				Type:         rules.ActionType(a.Type),
				Level:        a.Level,
				Urgent:       a.Urgent,
				Channels:     a.Channels,
				Message:      a.Message,
				Template:     a.Template,
				WithinHours:  a.WithinHours,
				FollowupKind: a.FollowupKind,
				Reason:       a.Reason,
				Event:        a.Event,
			})
		}
		if err := r.Validate(); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// normalizeValue converts YAML's native int decoding to float64 so scalar
// comparisons see one numeric type.
func normalizeValue(v any) any {
	switch n := v.(type) {
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return v
}
