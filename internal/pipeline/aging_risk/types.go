package aging_risk

import (
	"sort"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/andresuchdata/agingrisk/internal/pipeline"
)

const (
	// DefaultMinDailySales floors the seasonally adjusted velocity so days-to-clear stays finite.
	DefaultMinDailySales = 0.5
	// DefaultMinSeasonalIndex floors the seasonal multiplier.
	DefaultMinSeasonalIndex = 0.3
)

// Config holds configuration for the aging risk pipeline
type Config struct {
	MinDailySales    float64 // Floor for adjusted daily velocity; 0 disables the floor
	MinSeasonalIndex float64 // Floor for the seasonal index
	WorkerCount      int     // Concurrent workers per phase
}

// DefaultConfig returns the documented floors with one worker per CPU.
func DefaultConfig() Config {
	return Config{
		MinDailySales:    DefaultMinDailySales,
		MinSeasonalIndex: DefaultMinSeasonalIndex,
		WorkerCount:      pipeline.DefaultPipelineConfig(PipelineName).WorkerCount,
	}
}

// Input is a fully typed snapshot supplied by the loading layer.
type Input struct {
	ReferenceDate time.Time
	Shipments     []domain.ShipmentRecord
	Batches       []domain.InventoryBatch
	// UnitPrices is consulted when a batch carries no unit price of its own.
	UnitPrices map[string]float64

	// SkippedShipmentRows is carried into the summary when the input was decoded from a Feed.
	SkippedShipmentRows int
}

// ProductStats bundles the per-product aggregates computed in phase one.
type ProductStats struct {
	Velocity domain.ProductVelocityProfile `json:"velocity"`
	Seasonal domain.SeasonalIndex          `json:"seasonal"`
}

// ProfileIndex is the frozen product_code -> stats map shared by phase two.
// It is never written after construction.
type ProfileIndex struct {
	stats map[string]ProductStats
}

// Lookup returns the stats for a product code.
func (pi ProfileIndex) Lookup(productCode string) (ProductStats, bool) {
	s, ok := pi.stats[productCode]
	return s, ok
}

// Len returns the number of products in the index.
func (pi ProfileIndex) Len() int {
	return len(pi.stats)
}

// Profiles returns every product's stats ordered by product code.
func (pi ProfileIndex) Profiles() []ProductStats {
	out := make([]ProductStats, 0, len(pi.stats))
	for _, s := range pi.stats {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Velocity.ProductCode < out[j].Velocity.ProductCode
	})
	return out
}

// Result is the output of one analysis run.
type Result struct {
	Run         *pipeline.PipelineRun        `json:"run"`
	Assessments []domain.BatchRiskAssessment `json:"assessments"`
	Summary     domain.SummaryMetrics        `json:"summary"`
	Profiles    []ProductStats               `json:"profiles"`
}
