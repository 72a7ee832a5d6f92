package aging_risk

import (
	"github.com/andresuchdata/agingrisk/internal/domain"
)

// volatileCV is the coefficient of variation above which demand earns the
// volatility bonus.
const volatileCV = 1.0

// Classification is the composite triage score of one batch.
type Classification struct {
	Score int
	Tier  domain.RiskTier
}

// Classify scores overall urgency from age, expected clearance time and demand
// volatility. Unlike ScoreHorizon it is not tied to a horizon and is used for
// sorting and triage.
func Classify(batchAgeDays int, daysToClear float64, unclearable bool, profile domain.ProductVelocityProfile) Classification {
	score := agePoints(batchAgeDays) + clearancePoints(daysToClear, unclearable) + volatilityPoints(profile)

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Classification{Score: score, Tier: domain.TierForScore(score)}
}

func agePoints(ageDays int) int {
	switch {
	case ageDays > 90:
		return 40
	case ageDays > 60:
		return 30
	case ageDays > 30:
		return 20
	default:
		return 10
	}
}

func clearancePoints(daysToClear float64, unclearable bool) int {
	if unclearable {
		return 40
	}
	switch {
	case daysToClear > 180:
		return 40
	case daysToClear > 90:
		return 30
	case daysToClear > 60:
		return 20
	case daysToClear > 30:
		return 10
	default:
		return 0
	}
}

// volatilityPoints rewards erratic demand. No sales at all counts as
// volatile.
func volatilityPoints(profile domain.ProductVelocityProfile) int {
	if !profile.CVDefined() || profile.CoefficientOfVariation > volatileCV {
		return 10
	}
	return 0
}
