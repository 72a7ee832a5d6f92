package aging_risk

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/andresuchdata/agingrisk/internal/pipeline"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// PipelineName identifies this pipeline in run records and logs.
const PipelineName = "aging_risk"

// Pipeline scores every inventory batch of a snapshot for aging risk.
type Pipeline struct {
	config Config
	orch   *pipeline.Orchestrator
}

// NewPipeline creates a new aging risk pipeline instance.
func NewPipeline(cfg Config) *Pipeline {
	if cfg.MinSeasonalIndex <= 0 {
		cfg.MinSeasonalIndex = DefaultMinSeasonalIndex
	}
	if cfg.MinDailySales < 0 {
		cfg.MinDailySales = 0
	}

	pCfg := pipeline.DefaultPipelineConfig(PipelineName)
	if cfg.WorkerCount > 0 {
		pCfg.WorkerCount = cfg.WorkerCount
	}
	cfg.WorkerCount = pCfg.WorkerCount

	return &Pipeline{
		config: cfg,
		orch:   pipeline.NewOrchestrator(pCfg),
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// AnalyzeFeed decodes a column-keyed feed and analyzes it. A structural
// problem in the feed fails the run before any batch is scored.
func (p *Pipeline) AnalyzeFeed(ctx context.Context, referenceDate time.Time, feed Feed) (*Result, error) {
	in, err := feed.Decode(referenceDate)
	if err != nil {
		return nil, err
	}
	if in.SkippedShipmentRows > 0 {
		log.Warn().Int("rows", in.SkippedShipmentRows).Msg("aging risk: skipped undecodable shipment rows")
	}
	return p.Analyze(ctx, in)
}

// Analyze runs both phases over a typed snapshot. On error no partial output
// is returned.
func (p *Pipeline) Analyze(ctx context.Context, in Input) (*Result, error) {
	if in.ReferenceDate.IsZero() {
		return nil, &domain.StructuralInputError{Section: "run", Missing: []string{"reference_date"}}
	}
	referenceDate := civilDate(in.ReferenceDate)

	var result *Result
	run, err := p.orch.Run(ctx, referenceDate, func(ctx context.Context, run *pipeline.PipelineRun) error {
		// 1) Drop batches that cannot be assessed
		valid := make([]domain.InventoryBatch, 0, len(in.Batches))
		for _, b := range in.Batches {
			if err := ValidateBatch(b); err != nil {
				log.Warn().Err(err).
					Str("batch_number", b.BatchNumber).
					Str("product_code", b.ProductCode).
					Msg("aging risk: batch excluded")
				continue
			}
			valid = append(valid, b)
		}
		unassessable := len(in.Batches) - len(valid)

		// 2) Phase one: per-product aggregates, computed once
		index, err := p.buildProfileIndex(ctx, referenceDate, in.Shipments, valid)
		if err != nil {
			return fmt.Errorf("profile phase: %w", err)
		}

		// 3) Phase two: per-batch assessment against the frozen index
		assessments := make([]domain.BatchRiskAssessment, len(valid))
		err = pipeline.RunParallel(ctx, p.orch.Config().WorkerCount, len(valid), func(_ context.Context, i int) error {
			assessments[i] = p.assess(valid[i], index, referenceDate, in.UnitPrices)
			return nil
		})
		if err != nil {
			return fmt.Errorf("assessment phase: %w", err)
		}

		// 4) Prioritized queue and summary
		SortQueue(assessments)
		summary := Summarize(assessments, unassessable, in.SkippedShipmentRows)

		run.TotalProducts = index.Len()
		run.TotalBatches = len(in.Batches)
		run.AssessedBatches = len(assessments)
		run.UnassessableBatches = unassessable

		result = &Result{Assessments: assessments, Summary: summary, Profiles: index.Profiles()}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.Run = run
	return result, nil
}

func (p *Pipeline) buildProfileIndex(ctx context.Context, referenceDate time.Time, shipments []domain.ShipmentRecord, batches []domain.InventoryBatch) (ProfileIndex, error) {
	var codes []string
	seen := make(map[string]struct{})
	for _, b := range batches {
		if _, ok := seen[b.ProductCode]; ok {
			continue
		}
		seen[b.ProductCode] = struct{}{}
		codes = append(codes, b.ProductCode)
	}

	byProduct := make(map[string][]domain.ShipmentRecord, len(codes))
	for _, s := range shipments {
		if _, ok := seen[s.ProductCode]; ok {
			byProduct[s.ProductCode] = append(byProduct[s.ProductCode], s)
		}
	}

	stats := make([]ProductStats, len(codes))
	err := pipeline.RunParallel(ctx, p.orch.Config().WorkerCount, len(codes), func(_ context.Context, i int) error {
		code := codes[i]
		history := byProduct[code]
		stats[i] = ProductStats{
			Velocity: EstimateVelocity(code, history, referenceDate),
			Seasonal: CalculateSeasonalIndex(code, history, referenceDate.Month(), p.config.MinSeasonalIndex),
		}
		return nil
	})
	if err != nil {
		return ProfileIndex{}, err
	}

	index := ProfileIndex{stats: make(map[string]ProductStats, len(codes))}
	for i, code := range codes {
		index.stats[code] = stats[i]
	}
	return index, nil
}

func (p *Pipeline) assess(batch domain.InventoryBatch, index ProfileIndex, referenceDate time.Time, prices map[string]float64) domain.BatchRiskAssessment {
	stats, ok := index.Lookup(batch.ProductCode)
	if !ok {
		stats = ProductStats{
			Velocity: EstimateVelocity(batch.ProductCode, nil, referenceDate),
			Seasonal: CalculateSeasonalIndex(batch.ProductCode, nil, referenceDate.Month(), p.config.MinSeasonalIndex),
		}
	}

	if batch.UnitPrice <= 0 {
		if price, ok := prices[batch.ProductCode]; ok {
			batch.UnitPrice = price
		}
	}
	value := decimal.NewFromFloat(batch.Quantity).Mul(decimal.NewFromFloat(batch.UnitPrice)).Round(2)

	forecast := ForecastClearance(
		batch.Quantity,
		stats.Velocity.DailyAvgSales,
		stats.Seasonal.Index,
		p.config.MinDailySales,
		batch.ProductionDate,
		referenceDate,
	)
	risk30, risk60, risk90 := HorizonRisks(forecast.BatchAgeDays, forecast.DaysToClear, forecast.Unclearable)
	class := Classify(forecast.BatchAgeDays, forecast.DaysToClear, forecast.Unclearable, stats.Velocity)

	daysToClear := forecast.DaysToClear
	if forecast.Unclearable {
		daysToClear = 0
	}

	return domain.BatchRiskAssessment{
		Batch:                 batch,
		BatchAgeDays:          forecast.BatchAgeDays,
		BatchValue:            value,
		AdjustedDailyVelocity: forecast.AdjustedDailyVelocity,
		DaysToClear:           daysToClear,
		Unclearable:           forecast.Unclearable,
		Risk30:                risk30,
		Risk60:                risk60,
		Risk90:                risk90,
		RiskScore:             class.Score,
		RiskTier:              class.Tier,
		Recommendation:        Recommend(class.Tier),
		AgingBucket:           LegacyAgingBucket(forecast.BatchAgeDays, value),
	}
}

// SortQueue orders assessments by tier severity then age, most urgent first.
// Ties keep their input order.
func SortQueue(assessments []domain.BatchRiskAssessment) {
	sort.SliceStable(assessments, func(i, j int) bool {
		si, sj := assessments[i].RiskTier.Severity(), assessments[j].RiskTier.Severity()
		if si != sj {
			return si > sj
		}
		return assessments[i].BatchAgeDays > assessments[j].BatchAgeDays
	})
}
