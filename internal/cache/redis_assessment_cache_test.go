package cache

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/andresuchdata/agingrisk/internal/config"
	"github.com/andresuchdata/agingrisk/internal/domain"
	"github.com/andresuchdata/agingrisk/internal/pipeline"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisTestCache(t *testing.T) (AssessmentCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	c, err := NewAssessmentCache(config.CacheConfig{
		Enabled:          true,
		RedisURL:         "redis://" + mr.Addr(),
		ResultTTLSeconds: 120,
	})
	require.NoError(t, err)
	return c, mr
}

func sampleResult(runID string, score int) *agingrisk.Result {
	return &agingrisk.Result{
		Assessments: []domain.BatchRiskAssessment{{
			Batch:      domain.InventoryBatch{ProductCode: "A", BatchNumber: "A1", Quantity: 10},
			BatchValue: decimal.NewFromInt(25),
			RiskScore:  score,
			RiskTier:   domain.TierForScore(score),
		}},
		Summary: domain.SummaryMetrics{
			TotalBatches:  1,
			CountsPerTier: map[domain.RiskTier]int{domain.TierForScore(score): 1},
			TotalValue:    decimal.NewFromInt(25),
		},
		Profiles: []agingrisk.ProductStats{{
			Velocity: domain.ProductVelocityProfile{ProductCode: "A", CoefficientOfVariation: math.Inf(1)},
		}},
		Run: &pipeline.PipelineRun{ID: runID, PipelineName: agingrisk.PipelineName, Status: pipeline.StatusCompleted},
	}
}

func TestRedisAssessmentCache_SetGetLatest(t *testing.T) {
	c, mr := newRedisTestCache(t)
	ctx := context.Background()

	_, ok, err := c.Get(ctx, agingRiskResultKeyPrefix+":missing")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	key := agingRiskResultKeyPrefix + ":first"
	require.NoError(t, c.Set(ctx, key, sampleResult("first", 85)))

	got, ok, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Assessments, 1)
	assert.Equal(t, domain.TierCritical, got.Assessments[0].RiskTier)
	assert.True(t, decimal.NewFromInt(25).Equal(got.Summary.TotalValue))
	assert.False(t, got.Profiles[0].Velocity.CVDefined())

	latest, ok, err := c.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 85, latest.Assessments[0].RiskScore)
	assert.Equal(t, "first", latest.Run.ID)

	assert.Equal(t, 120*time.Second, mr.TTL(key))
	assert.Zero(t, mr.TTL(agingRiskLatestKey), "latest pointer does not expire")
}

func TestRedisAssessmentCache_SetLatestMovesPointerOnly(t *testing.T) {
	c, _ := newRedisTestCache(t)
	ctx := context.Background()

	first := agingRiskResultKeyPrefix + ":first"
	second := agingRiskResultKeyPrefix + ":second"
	require.NoError(t, c.Set(ctx, first, sampleResult("first", 85)))
	require.NoError(t, c.Set(ctx, second, sampleResult("second", 25)))

	cached, ok, err := c.Get(ctx, first)
	require.NoError(t, err)
	require.True(t, ok)
	require.NoError(t, c.SetLatest(ctx, cached))

	latest, ok, err := c.Latest(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "first", latest.Run.ID)

	other, ok, err := c.Get(ctx, second)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 25, other.Assessments[0].RiskScore)
}

func TestRedisAssessmentCache_InvalidateAll(t *testing.T) {
	c, mr := newRedisTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, agingRiskResultKeyPrefix+":a", sampleResult("a", 10)))
	require.NoError(t, c.Set(ctx, agingRiskResultKeyPrefix+":b", sampleResult("b", 50)))
	require.NoError(t, mr.Set("unrelated", "keep"))

	require.NoError(t, c.InvalidateAll(ctx))

	_, ok, err := c.Get(ctx, agingRiskResultKeyPrefix+":a")
	require.NoError(t, err)
	assert.False(t, ok)
	_, ok, err = c.Latest(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, mr.Exists("unrelated"))
}

func TestRedisAssessmentCache_CorruptPayload(t *testing.T) {
	c, mr := newRedisTestCache(t)

	key := agingRiskResultKeyPrefix + ":corrupt"
	require.NoError(t, mr.Set(key, "{not json"))

	_, ok, err := c.Get(context.Background(), key)
	assert.Error(t, err)
	assert.False(t, ok)
}

func TestNewAssessmentCache_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := NewAssessmentCache(config.CacheConfig{Enabled: true, RedisURL: "redis://" + addr})
	assert.Error(t, err)
}
