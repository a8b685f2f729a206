package rules

import "strconv"

// Payload is the typed event record conditions evaluate against. Every
// field is optional; the Has* flags (or pointer-free zero semantics via
// Set* helpers) distinguish "absent" from zero, and an absent field fails
// the condition closed.
type Payload struct {
	Severity     string
	RiskType     string
	CustomerTier string
	Industry     string

	MRR               *float64
	HealthScore       *float64
	HoursOverdue      *float64
	HoursSinceCreated *float64
	EscalationLevel   *int
	HealthDropPct     *float64
	TimeframeDays     *float64
	OpenTickets       *int
	LastLoginDays     *float64
	EngagementScore   *float64
}

func Float(v float64) *float64 { return &v }
func Int(v int) *int           { return &v }

// lookup returns the payload value for a field and whether it is present.
// String fields are present when non-empty; numeric fields when set.
func (p Payload) lookup(f Field) (any, bool) {
	switch f {
	case FieldSeverity:
		return p.Severity, p.Severity != ""
	case FieldRiskType:
		return p.RiskType, p.RiskType != ""
	case FieldCustomerTier:
		return p.CustomerTier, p.CustomerTier != ""
	case FieldIndustry:
		return p.Industry, p.Industry != ""
	case FieldMRR:
		return deref(p.MRR)
	case FieldHealthScore:
		return deref(p.HealthScore)
	case FieldHoursOverdue:
		return deref(p.HoursOverdue)
	case FieldHoursSinceCreated:
		return deref(p.HoursSinceCreated)
	case FieldEscalationLevel:
		if p.EscalationLevel == nil {
			return nil, false
		}
		return float64(*p.EscalationLevel), true
	case FieldHealthDropPct:
		return deref(p.HealthDropPct)
	case FieldTimeframeDays:
		return deref(p.TimeframeDays)
	case FieldOpenTickets:
		if p.OpenTickets == nil {
			return nil, false
		}
		return float64(*p.OpenTickets), true
	case FieldLastLoginDays:
		return deref(p.LastLoginDays)
	case FieldEngagementScore:
		return deref(p.EngagementScore)
	}
	return nil, false
}

func deref(v *float64) (any, bool) {
	if v == nil {
		return nil, false
	}
	return *v, true
}

// Match evaluates all conditions against the payload. Conditions are ANDed;
// a missing field fails closed.
func Match(conditions []Condition, p Payload) bool {
	for _, c := range conditions {
		actual, ok := p.lookup(c.Field)
		if !ok {
			return false
		}
		if !evaluate(c, actual) {
			return false
		}
	}
	return true
}

func evaluate(c Condition, actual any) bool {
	switch c.Operator {
	case OpEquals:
		return equalValues(actual, c.Value)
	case OpGreaterThan:
		a, aok := asFloat(actual)
		b, bok := asFloat(c.Value)
		return aok && bok && a > b
	case OpLessThan:
		a, aok := asFloat(actual)
		b, bok := asFloat(c.Value)
		return aok && bok && a < b
	case OpIn:
		return containsValue(c.Values, actual)
	case OpNotIn:
		return !containsValue(c.Values, actual)
	}
	return false
}

func equalValues(actual, expected any) bool {
	if as, ok := actual.(string); ok {
		es, ok := expected.(string)
		return ok && as == es
	}
	a, aok := asFloat(actual)
	b, bok := asFloat(expected)
	return aok && bok && a == b
}

func containsValue(values []string, actual any) bool {
	s, ok := actual.(string)
	if !ok {
		if f, fok := asFloat(actual); fok {
			s = strconv.FormatFloat(f, 'f', -1, 64)
		} else {
			return false
		}
	}
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}
