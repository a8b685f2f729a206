package tickets

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

type Tier string

const (
	TierEnterprise Tier = "enterprise"
	TierMidMarket  Tier = "mid_market"
	TierStartup    Tier = "startup"
)

type RiskType string

const (
	RiskChurn           RiskType = "churn_risk"
	RiskPayment         RiskType = "payment_risk"
	RiskPaymentFailed   RiskType = "payment_failed"
	RiskEngagement      RiskType = "engagement_risk"
	RiskUsageDecline    RiskType = "usage_decline"
	RiskSupportOverload RiskType = "support_overload"
	RiskContractEnding  RiskType = "contract_ending"
	RiskEscalation      RiskType = "support_escalation"
	RiskExpansion       RiskType = "expansion_opportunity"
	RiskHealthSpike     RiskType = "health_spike"
)

// CustomerProfile carries the customer attributes the scorer and matcher
// consume. Values arrive already computed from the upstream risk pipeline.
type CustomerProfile struct {
	CustomerID     string
	Name           string
	Tier           Tier
	Industry       string
	MRR            float64
	SupportTickets int
	TenureMonths   int
}

// Ticket is a unit of work derived from a customer-risk signal. It is
// immutable once scored; mutation happens on the Workflow bound to it.
type Ticket struct {
	ID        string
	Type      RiskType
	Severity  Severity
	Message   string
	Customer  CustomerProfile
	CreatedAt time.Time
}

// UrgencyFactors are the time-dependent inputs to the scorer. The caller
// computes them against its own clock so the scorer stays a pure function.
type UrgencyFactors struct {
	SLAHoursRemaining float64
	HasSLARemaining   bool
	AgeHours          float64
}

func (t Tier) Valid() bool {
	switch t {
	case TierEnterprise, TierMidMarket, TierStartup:
		return true
	}
	return false
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// ParseSeverity normalizes a wire severity value, defaulting to medium the
// way the upstream scorer does for unknown labels.
func ParseSeverity(raw string) Severity {
	s := Severity(strings.ToLower(strings.TrimSpace(raw)))
	if s.Valid() {
		return s
	}
	return SeverityMedium
}
