package aging_risk

import (
	"testing"

	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRecommend(t *testing.T) {
	want := map[domain.RiskTier]domain.Severity{
		domain.TierCritical: domain.SeverityUrgent,
		domain.TierHigh:     domain.SeverityHigh,
		domain.TierMedium:   domain.SeverityModerate,
		domain.TierLow:      domain.SeverityLow,
		domain.TierMinimal:  domain.SeverityNone,
	}

	prevAdjustment := -100.0
	for _, tier := range domain.Tiers {
		rec := Recommend(tier)
		assert.NotEmpty(t, rec.Action, tier)
		assert.Equal(t, want[tier], rec.Severity, tier)
		// less severe tiers never get a deeper discount
		assert.GreaterOrEqual(t, rec.AdjustmentPercent, prevAdjustment, tier)
		prevAdjustment = rec.AdjustmentPercent
	}

	assert.Equal(t, Recommend(domain.TierMinimal), Recommend(domain.RiskTier("unknown")))
}
