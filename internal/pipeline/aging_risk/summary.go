package aging_risk

import (
	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/shopspring/decimal"
)

// Summarize aggregates assessed batches. Unassessable batches only show up in
// their own counter.
func Summarize(assessments []domain.BatchRiskAssessment, unassessable, skippedShipmentRows int) domain.SummaryMetrics {
	summary := domain.SummaryMetrics{
		TotalBatches:        len(assessments),
		CountsPerTier:       make(map[domain.RiskTier]int, len(domain.Tiers)),
		TotalValue:          decimal.Zero,
		HighTierValue:       decimal.Zero,
		UnassessableBatches: unassessable,
		SkippedShipmentRows: skippedShipmentRows,
	}
	for _, tier := range domain.Tiers {
		summary.CountsPerTier[tier] = 0
	}

	var (
		ageSum       float64
		clearanceSum float64
		finiteCount  int
	)
	for _, a := range assessments {
		summary.CountsPerTier[a.RiskTier]++
		summary.TotalValue = summary.TotalValue.Add(a.BatchValue)
		if a.RiskTier.IsHigh() {
			summary.HighTierValue = summary.HighTierValue.Add(a.BatchValue)
		}

		ageSum += float64(a.BatchAgeDays)
		if !a.Unclearable {
			clearanceSum += a.DaysToClear
			finiteCount++
		}
	}

	if len(assessments) > 0 {
		summary.AvgAgeDays = roundFloat(ageSum/float64(len(assessments)), 2)
	}
	if finiteCount > 0 {
		summary.AvgFiniteClearanceDays = roundFloat(clearanceSum/float64(finiteCount), 2)
	}

	return summary
}
