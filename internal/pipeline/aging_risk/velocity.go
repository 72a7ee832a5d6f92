package aging_risk

import (
	"math"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

// EstimateVelocity computes the daily sales statistics of one product from its
// shipment history as of referenceDate. Records for other products are ignored.
// A product without history yields a zero profile with an undefined CV.
func EstimateVelocity(productCode string, shipments []domain.ShipmentRecord, referenceDate time.Time) domain.ProductVelocityProfile {
	profile := domain.ProductVelocityProfile{
		ProductCode:            productCode,
		CoefficientOfVariation: math.Inf(1),
	}

	var (
		earliest time.Time
		seen     bool
	)
	daily := make(map[time.Time]float64)
	for _, s := range shipments {
		if s.ProductCode != productCode {
			continue
		}
		profile.TotalSales += s.Quantity

		day := civilDate(s.OrderDate)
		daily[day] += s.Quantity
		if !seen || day.Before(earliest) {
			earliest = day
			seen = true
		}
	}
	if !seen {
		return profile
	}

	// 1. Average over the whole observed window, inclusive of both ends
	daysRange := daysBetween(earliest, referenceDate) + 1
	if daysRange > 0 {
		profile.DailyAvgSales = profile.TotalSales / float64(daysRange)
	}

	// 2. Sample standard deviation of per-day totals
	profile.SalesStdDev = sampleStdDev(daily)

	// 3. Coefficient of variation, undefined without sales
	if profile.DailyAvgSales > 0 {
		profile.CoefficientOfVariation = profile.SalesStdDev / profile.DailyAvgSales
	}

	return profile
}

func sampleStdDev(values map[time.Time]float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - mean
		sq += d * d
	}
	return math.Sqrt(sq / float64(n-1))
}
