package aging_risk

import "github.com/andresuchdata/agingrisk/internal/domain"

var recommendations = map[domain.RiskTier]domain.Recommendation{
	domain.TierCritical: {
		Action:            "Urgent clearance: deep discount or liquidate before further aging",
		AdjustmentPercent: -30,
		Severity:          domain.SeverityUrgent,
	},
	domain.TierHigh: {
		Action:            "Priority sell-through: discount or transfer to a faster-moving location",
		AdjustmentPercent: -15,
		Severity:          domain.SeverityHigh,
	},
	domain.TierMedium: {
		Action:            "Monitor closely and reduce upcoming procurement",
		AdjustmentPercent: -5,
		Severity:          domain.SeverityModerate,
	},
	domain.TierLow: {
		Action:            "Routine stock management",
		AdjustmentPercent: 0,
		Severity:          domain.SeverityLow,
	},
	domain.TierMinimal: {
		Action:            "Maintain current stance",
		AdjustmentPercent: 0,
		Severity:          domain.SeverityNone,
	},
}

// Recommend returns the remediation for a tier. Unknown tiers get the Minimal entry.
func Recommend(tier domain.RiskTier) domain.Recommendation {
	if rec, ok := recommendations[tier]; ok {
		return rec
	}
	return recommendations[domain.TierMinimal]
}
