package aging_risk

import (
	"math"
	"time"
)

// ClearanceForecast is the predicted sell-through of one batch.
type ClearanceForecast struct {
	AdjustedDailyVelocity float64
	DaysToClear           float64
	BatchAgeDays          int
	// Unclearable is set when no positive velocity is available. DaysToClear is
	// +Inf in that case and every horizon scores at the ceiling.
	Unclearable bool
}

// ForecastClearance combines velocity and seasonality into days-to-clear.
// minDailySales floors the adjusted velocity; pass 0 to disable the floor.
func ForecastClearance(quantity, dailyAvgSales, seasonalIndex, minDailySales float64, productionDate, referenceDate time.Time) ClearanceForecast {
	f := ClearanceForecast{
		AdjustedDailyVelocity: math.Max(dailyAvgSales*seasonalIndex, minDailySales),
		BatchAgeDays:          daysBetween(productionDate, referenceDate),
	}

	// Batches stamped after the reference date are treated as brand new
	if f.BatchAgeDays < 0 {
		f.BatchAgeDays = 0
	}

	if !(f.AdjustedDailyVelocity > 0) {
		f.AdjustedDailyVelocity = 0
		f.DaysToClear = math.Inf(1)
		f.Unclearable = true
		return f
	}

	f.DaysToClear = quantity / f.AdjustedDailyVelocity
	return f
}
