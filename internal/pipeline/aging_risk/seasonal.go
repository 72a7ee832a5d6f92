package aging_risk

import (
	"math"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
)

// CalculateSeasonalIndex returns how the reference month's sales compare to the
// product's average month, pooled across years. It falls back to 1.0 when the
// reference month has no sales or fewer than two months are known, and never
// goes below minIndex.
func CalculateSeasonalIndex(productCode string, shipments []domain.ShipmentRecord, referenceMonth time.Month, minIndex float64) domain.SeasonalIndex {
	result := domain.SeasonalIndex{
		ProductCode: productCode,
		Month:       referenceMonth,
		Index:       1.0,
	}

	monthly := make(map[time.Month]float64)
	for _, s := range shipments {
		if s.ProductCode != productCode {
			continue
		}
		monthly[s.OrderDate.Month()] += s.Quantity
	}

	if len(monthly) >= 2 {
		var total float64
		for _, v := range monthly {
			total += v
		}
		avg := total / float64(len(monthly))

		if current, ok := monthly[referenceMonth]; ok && avg > 0 {
			result.Index = current / avg
		}
	}

	result.Index = math.Max(result.Index, minIndex)
	return result
}
