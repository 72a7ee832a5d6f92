package aging_risk

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestForecastClearance_ScenarioA(t *testing.T) {
	f := ForecastClearance(900, 10, 1.0, DefaultMinDailySales, day("2024-01-01"), day("2024-01-11"))

	assert.InDelta(t, 10.0, f.AdjustedDailyVelocity, 1e-9)
	assert.InDelta(t, 90.0, f.DaysToClear, 1e-9)
	assert.Equal(t, 10, f.BatchAgeDays)
	assert.False(t, f.Unclearable)
}

func TestForecastClearance_FloorsVelocity(t *testing.T) {
	f := ForecastClearance(10, 0, 1.0, DefaultMinDailySales, day("2024-01-01"), day("2024-01-01"))

	assert.InDelta(t, 0.5, f.AdjustedDailyVelocity, 1e-9)
	assert.InDelta(t, 20.0, f.DaysToClear, 1e-9)
	assert.Zero(t, f.BatchAgeDays)
}

func TestForecastClearance_AdjustedVelocityNeverBelowFloor(t *testing.T) {
	for _, avg := range []float64{0, 0.01, 0.2, 0.5, 3, 120} {
		for _, idx := range []float64{0.3, 0.9, 1, 2.5} {
			f := ForecastClearance(100, avg, idx, DefaultMinDailySales, day("2024-01-01"), day("2024-02-01"))
			assert.GreaterOrEqual(t, f.AdjustedDailyVelocity, DefaultMinDailySales)
			assert.False(t, math.IsInf(f.DaysToClear, 0))
		}
	}
}

func TestForecastClearance_UnclearableWithoutFloor(t *testing.T) {
	f := ForecastClearance(10, 0, 1.0, 0, day("2024-01-01"), day("2024-01-05"))

	assert.True(t, f.Unclearable)
	assert.True(t, math.IsInf(f.DaysToClear, 1))
	assert.Zero(t, f.AdjustedDailyVelocity)
	assert.Equal(t, 4, f.BatchAgeDays)
}

func TestForecastClearance_FutureProductionDate(t *testing.T) {
	f := ForecastClearance(10, 1, 1, DefaultMinDailySales, day("2024-02-01"), day("2024-01-01"))

	assert.Zero(t, f.BatchAgeDays)
}
