// internal/domain/aging_risk.go
package domain

import (
	"encoding/json"
	"math"
	"time"

	"github.com/shopspring/decimal"
)

// Risk horizons in days, scored independently for every batch.
const (
	Horizon30 = 30
	Horizon60 = 60
	Horizon90 = 90
)

// Horizons lists the scored horizons in ascending order.
var Horizons = []int{Horizon30, Horizon60, Horizon90}

// ShipmentRecord is one historical shipment line.
type ShipmentRecord struct {
	OrderDate   time.Time `json:"order_date"`
	Region      string    `json:"region"`
	Salesperson string    `json:"salesperson"`
	ProductCode string    `json:"product_code"`
	Quantity    float64   `json:"quantity"`
}

// InventoryBatch is a tracked lot of one product produced on one date.
type InventoryBatch struct {
	ProductCode     string    `json:"product_code"`
	Description     string    `json:"description"`
	StorageLocation string    `json:"storage_location"`
	ProductionDate  time.Time `json:"production_date"`
	BatchNumber     string    `json:"batch_number"`
	Quantity        float64   `json:"quantity"`
	UnitPrice       float64   `json:"unit_price"`
}

// ProductVelocityProfile holds the shipment velocity statistics of a product.
// CoefficientOfVariation is +Inf when the product has no sales.
type ProductVelocityProfile struct {
	ProductCode            string  `json:"product_code"`
	DailyAvgSales          float64 `json:"daily_avg_sales"`
	SalesStdDev            float64 `json:"sales_stddev"`
	CoefficientOfVariation float64 `json:"coefficient_of_variation"`
	TotalSales             float64 `json:"total_sales"`
}

// CVDefined reports whether the coefficient of variation is a finite number.
func (p ProductVelocityProfile) CVDefined() bool {
	return !math.IsInf(p.CoefficientOfVariation, 0) && !math.IsNaN(p.CoefficientOfVariation)
}

// MarshalJSON writes an undefined coefficient of variation as null.
func (p ProductVelocityProfile) MarshalJSON() ([]byte, error) {
	type alias ProductVelocityProfile
	out := struct {
		alias
		CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
	}{alias: alias(p)}
	if p.CVDefined() {
		cv := p.CoefficientOfVariation
		out.CoefficientOfVariation = &cv
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads a null coefficient of variation back as undefined.
func (p *ProductVelocityProfile) UnmarshalJSON(data []byte) error {
	type alias ProductVelocityProfile
	var in struct {
		alias
		CoefficientOfVariation *float64 `json:"coefficient_of_variation"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	*p = ProductVelocityProfile(in.alias)
	p.CoefficientOfVariation = math.Inf(1)
	if in.CoefficientOfVariation != nil {
		p.CoefficientOfVariation = *in.CoefficientOfVariation
	}
	return nil
}

// SeasonalIndex is the demand multiplier of a product for one calendar month.
type SeasonalIndex struct {
	ProductCode string     `json:"product_code"`
	Month       time.Month `json:"month"`
	Index       float64    `json:"index"`
}

// AgingBucket is the legacy fixed-age loss estimate. It is reported next to
// the horizon risks and never feeds them.
type AgingBucket struct {
	Label         string          `json:"label"`
	LossPercent   float64         `json:"loss_percent"`
	EstimatedLoss decimal.Decimal `json:"estimated_loss"`
}

// BatchRiskAssessment is the per-batch output of one analysis run.
// DaysToClear is 0 when Unclearable is set.
type BatchRiskAssessment struct {
	Batch                 InventoryBatch  `json:"batch"`
	BatchAgeDays          int             `json:"batch_age_days"`
	BatchValue            decimal.Decimal `json:"batch_value"`
	AdjustedDailyVelocity float64         `json:"adjusted_daily_velocity"`
	DaysToClear           float64         `json:"days_to_clear"`
	Unclearable           bool            `json:"unclearable"`
	Risk30                float64         `json:"risk_30"`
	Risk60                float64         `json:"risk_60"`
	Risk90                float64         `json:"risk_90"`
	RiskScore             int             `json:"risk_score"`
	RiskTier              RiskTier        `json:"risk_tier"`
	Recommendation        Recommendation  `json:"recommendation"`
	AgingBucket           AgingBucket     `json:"aging_bucket"`
}

// RiskForHorizon returns the stored risk for one of the scored horizons.
func (a BatchRiskAssessment) RiskForHorizon(horizon int) (float64, bool) {
	switch horizon {
	case Horizon30:
		return a.Risk30, true
	case Horizon60:
		return a.Risk60, true
	case Horizon90:
		return a.Risk90, true
	}
	return 0, false
}

// SummaryMetrics aggregates an assessment set. Unassessable batches are
// excluded from every count and average and reported on their own.
type SummaryMetrics struct {
	TotalBatches           int              `json:"total_batches"`
	CountsPerTier          map[RiskTier]int `json:"counts_per_tier"`
	TotalValue             decimal.Decimal  `json:"total_value"`
	HighTierValue          decimal.Decimal  `json:"high_tier_value"`
	AvgAgeDays             float64          `json:"avg_age_days"`
	AvgFiniteClearanceDays float64          `json:"avg_finite_clearance_days"`
	UnassessableBatches    int              `json:"unassessable_batches"`
	SkippedShipmentRows    int              `json:"skipped_shipment_rows"`
}
