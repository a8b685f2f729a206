package tickets

import "math"

// Composite priority weights. The four factors always sum to 1.
const (
	weightSeverity        = 0.40
	weightCustomerValue   = 0.25
	weightTimeSensitivity = 0.20
	weightBusinessImpact  = 0.15
)

var severityScores = map[Severity]float64{
	SeverityCritical: 100,
	SeverityHigh:     80,
	SeverityMedium:   60,
	SeverityLow:      40,
}

var highImpactTypes = map[RiskType]bool{
	RiskChurn:        true,
	RiskPayment:      true,
	RiskUsageDecline: true,
	RiskExpansion:    true,
}

var criticalImpactTypes = map[RiskType]bool{
	RiskPaymentFailed:  true,
	RiskContractEnding: true,
	RiskEscalation:     true,
}

// Score computes the composite priority score in [0,100], rounded to two
// decimals. Identical inputs always produce identical output: there is no
// clock access and no hidden state.
func Score(t Ticket, f UrgencyFactors) float64 {
	score := severityScore(t.Severity)*weightSeverity +
		customerValueScore(t.Customer)*weightCustomerValue +
		timeSensitivityScore(t, f)*weightTimeSensitivity +
		businessImpactScore(t)*weightBusinessImpact
	return math.Round(score*100) / 100
}

func severityScore(s Severity) float64 {
	if v, ok := severityScores[s]; ok {
		return v
	}
	return severityScores[SeverityMedium]
}

func customerValueScore(c CustomerProfile) float64 {
	var score float64
	switch {
	case c.MRR >= 50000:
		score = 100
	case c.MRR >= 20000:
		score = 85
	case c.MRR >= 10000:
		score = 70
	case c.MRR >= 5000:
		score = 55
	default:
		score = 40
	}
	if c.Tier == TierEnterprise {
		score += 15
	}
	return math.Min(100, score)
}

func timeSensitivityScore(t Ticket, f UrgencyFactors) float64 {
	score := 50.0
	if f.HasSLARemaining {
		switch {
		case f.SLAHoursRemaining <= 1:
			score = 100
		case f.SLAHoursRemaining <= 4:
			score = 85
		case f.SLAHoursRemaining <= 8:
			score = 70
		default:
			score = 55
		}
	}
	switch {
	case f.AgeHours >= 24:
		score += 20
	case f.AgeHours >= 12:
		score += 15
	case f.AgeHours >= 6:
		score += 10
	}
	switch t.Type {
	case RiskPayment, RiskPaymentFailed:
		score += 25
	case RiskChurn:
		score += 20
	}
	return math.Min(100, score)
}

func businessImpactScore(t Ticket) float64 {
	score := 50.0
	if highImpactTypes[t.Type] {
		score = 80
	}
	if criticalImpactTypes[t.Type] {
		score = 95
	}
	switch {
	case t.Customer.SupportTickets >= 5:
		score += 15
	case t.Customer.SupportTickets >= 3:
		score += 10
	}
	if t.Customer.TenureMonths >= 24 {
		score += 10
	}
	return math.Min(100, score)
}
