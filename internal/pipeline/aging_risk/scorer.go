package aging_risk

import (
	"math"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

const (
	ceilingRisk = 100.0

	// Sigmoid steepness around a clearance ratio of 1.
	clearanceSteepness = 4.0

	// Blend weights for the dominant and the secondary component.
	dominantWeight  = 0.8
	secondaryWeight = 0.2

	overdueFloor       = 80.0 // days_to_clear > H
	doubleOverdueFloor = 90.0 // days_to_clear >= 2H
	lateAgeFloor       = 75.0 // age >= 0.75H
)

// ScoreHorizon returns the 0-100 risk that a batch fails to clear within
// horizon days. The score never decreases as age or days-to-clear grow.
func ScoreHorizon(horizon int, batchAgeDays int, daysToClear float64, unclearable bool) float64 {
	h := float64(horizon)
	age := float64(batchAgeDays)

	if horizon <= 0 || age >= h {
		return ceilingRisk
	}
	if unclearable || math.IsInf(daysToClear, 1) || math.IsNaN(daysToClear) || daysToClear >= 3*h {
		return ceilingRisk
	}

	clearanceRisk := 100 / (1 + math.Exp(-clearanceSteepness*(daysToClear/h-1)))
	ageRisk := 100 * age / h

	combined := dominantWeight*math.Max(clearanceRisk, ageRisk) +
		secondaryWeight*math.Min(clearanceRisk, ageRisk)

	if daysToClear > h {
		combined = math.Max(combined, overdueFloor)
	}
	if daysToClear >= 2*h {
		combined = math.Max(combined, doubleOverdueFloor)
	}
	if age >= 0.75*h {
		combined = math.Max(combined, lateAgeFloor)
	}

	return math.Min(ceilingRisk, math.Max(0, roundFloat(combined, 1)))
}

// HorizonRisks scores all three horizons.
func HorizonRisks(batchAgeDays int, daysToClear float64, unclearable bool) (risk30, risk60, risk90 float64) {
	risk30 = ScoreHorizon(domain.Horizon30, batchAgeDays, daysToClear, unclearable)
	risk60 = ScoreHorizon(domain.Horizon60, batchAgeDays, daysToClear, unclearable)
	risk90 = ScoreHorizon(domain.Horizon90, batchAgeDays, daysToClear, unclearable)
	return risk30, risk60, risk90
}
