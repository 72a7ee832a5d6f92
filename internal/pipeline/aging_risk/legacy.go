package aging_risk

import (
	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/shopspring/decimal"
)

type agingBand struct {
	minAgeDays  int // exclusive
	label       string
	lossPercent float64
}

// Older bands first.
var legacyAgingBands = []agingBand{
	{minAgeDays: 120, label: "over_120_days", lossPercent: 50},
	{minAgeDays: 90, label: "91_120_days", lossPercent: 30},
	{minAgeDays: 60, label: "61_90_days", lossPercent: 15},
	{minAgeDays: 30, label: "31_60_days", lossPercent: 5},
}

// LegacyAgingBucket is the flat age-bucket loss heuristic. It is kept as an
// independent estimate and does not influence horizon risks or tiers.
func LegacyAgingBucket(batchAgeDays int, batchValue decimal.Decimal) domain.AgingBucket {
	for _, band := range legacyAgingBands {
		if batchAgeDays > band.minAgeDays {
			return domain.AgingBucket{
				Label:         band.label,
				LossPercent:   band.lossPercent,
				EstimatedLoss: batchValue.Mul(decimal.NewFromFloat(band.lossPercent)).Div(decimal.NewFromInt(100)).Round(2),
			}
		}
	}

	return domain.AgingBucket{
		Label:         "0_30_days",
		LossPercent:   0,
		EstimatedLoss: decimal.Zero,
	}
}
