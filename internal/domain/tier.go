package domain

import "strings"

// RiskTier is the discrete severity label produced by the composite classifier.
type RiskTier string

const (
	TierCritical RiskTier = "Critical"
	TierHigh     RiskTier = "High"
	TierMedium   RiskTier = "Medium"
	TierLow      RiskTier = "Low"
	TierMinimal  RiskTier = "Minimal"
)

// Tiers lists every tier from most to least severe.
var Tiers = []RiskTier{TierCritical, TierHigh, TierMedium, TierLow, TierMinimal}

var tierSeverity = map[RiskTier]int{
	TierCritical: 4,
	TierHigh:     3,
	TierMedium:   2,
	TierLow:      1,
	TierMinimal:  0,
}

var tierCodes = map[string]RiskTier{
	"critical": TierCritical,
	"high":     TierHigh,
	"medium":   TierMedium,
	"low":      TierLow,
	"minimal":  TierMinimal,
}

// TierForScore maps a composite risk score to its tier.
func TierForScore(score int) RiskTier {
	switch {
	case score >= 80:
		return TierCritical
	case score >= 60:
		return TierHigh
	case score >= 40:
		return TierMedium
	case score >= 20:
		return TierLow
	default:
		return TierMinimal
	}
}

// Severity ranks the tier; higher is more urgent. Unknown tiers rank below Minimal.
func (t RiskTier) Severity() int {
	if s, ok := tierSeverity[t]; ok {
		return s
	}

	return -1
}

// IsHigh reports whether the tier counts towards high-tier value.
func (t RiskTier) IsHigh() bool {
	return t == TierCritical || t == TierHigh
}

// ParseRiskTier returns the tier for a label (case-insensitive).
func ParseRiskTier(label string) (RiskTier, bool) {
	tier, ok := tierCodes[strings.ToLower(strings.TrimSpace(label))]

	return tier, ok
}

// Severity indicator attached to a recommendation.
type Severity string

const (
	SeverityUrgent   Severity = "urgent"
	SeverityHigh     Severity = "high"
	SeverityModerate Severity = "moderate"
	SeverityLow      Severity = "low"
	SeverityNone     Severity = "none"
)

// Recommendation is the remediation action for a risk tier.
// AdjustmentPercent is a suggested price adjustment; negative means discount.
type Recommendation struct {
	Action            string   `json:"action"`
	AdjustmentPercent float64  `json:"adjustment_percent"`
	Severity          Severity `json:"severity"`
}
