package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryCache struct {
	results map[string]*agingrisk.Result
	latest  *agingrisk.Result
	gets    int
	sets    int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{results: make(map[string]*agingrisk.Result)}
}

func (m *memoryCache) Get(ctx context.Context, key string) (*agingrisk.Result, bool, error) {
	m.gets++
	r, ok := m.results[key]
	return r, ok, nil
}

func (m *memoryCache) Set(ctx context.Context, key string, result *agingrisk.Result) error {
	m.sets++
	m.results[key] = result
	m.latest = result
	return nil
}

func (m *memoryCache) Latest(ctx context.Context) (*agingrisk.Result, bool, error) {
	return m.latest, m.latest != nil, nil
}

func (m *memoryCache) SetLatest(ctx context.Context, result *agingrisk.Result) error {
	m.latest = result
	return nil
}

func (m *memoryCache) InvalidateAll(ctx context.Context) error {
	m.results = make(map[string]*agingrisk.Result)
	m.latest = nil
	return nil
}

type stubRepo struct {
	feed  agingrisk.Feed
	err   error
	calls int
}

func (s *stubRepo) LoadFeed(ctx context.Context) (agingrisk.Feed, error) {
	s.calls++
	return s.feed, s.err
}

var refDate = time.Date(2024, 6, 30, 0, 0, 0, 0, time.UTC)

func sampleFeed() agingrisk.Feed {
	return agingrisk.Feed{
		Shipments: []agingrisk.RawRecord{
			{"order_date": "2024-06-01", "product_code": "A", "quantity": 30.0},
			{"order_date": "2024-06-15", "product_code": "A", "quantity": 30.0},
		},
		Batches: []agingrisk.RawRecord{
			{"product_code": "A", "production_date": "2024-05-01", "quantity": 100.0, "unit_price": 2.0},
		},
	}
}

func newPipeline() *agingrisk.Pipeline {
	cfg := agingrisk.DefaultConfig()
	cfg.WorkerCount = 2
	return agingrisk.NewPipeline(cfg)
}

func TestAgingRiskService_AnalyzeUsesCache(t *testing.T) {
	c := newMemoryCache()
	svc := NewAgingRiskService(newPipeline(), nil, c)

	first, err := svc.Analyze(context.Background(), refDate, sampleFeed())
	require.NoError(t, err)
	require.Len(t, first.Assessments, 1)
	assert.Equal(t, 1, c.sets)

	second, err := svc.Analyze(context.Background(), refDate, sampleFeed())
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, c.sets)
	assert.Equal(t, 2, c.gets)
}

func TestAgingRiskService_LatestFollowsCacheHits(t *testing.T) {
	c := newMemoryCache()
	svc := NewAgingRiskService(newPipeline(), nil, c)
	ctx := context.Background()

	x, err := svc.Analyze(ctx, refDate, sampleFeed())
	require.NoError(t, err)
	y, err := svc.Analyze(ctx, refDate.AddDate(0, 0, 1), sampleFeed())
	require.NoError(t, err)
	require.NotEqual(t, x.Run.ID, y.Run.ID)

	latest, err := svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, y.Run.ID, latest.Run.ID)

	again, err := svc.Analyze(ctx, refDate, sampleFeed())
	require.NoError(t, err)
	assert.Equal(t, x.Run.ID, again.Run.ID)
	assert.Equal(t, 2, c.sets)

	latest, err = svc.Latest(ctx)
	require.NoError(t, err)
	assert.Equal(t, x.Run.ID, latest.Run.ID)
}

func TestAgingRiskService_CacheKeyFollowsFloors(t *testing.T) {
	c := newMemoryCache()
	ctx := context.Background()

	_, err := NewAgingRiskService(newPipeline(), nil, c).Analyze(ctx, refDate, sampleFeed())
	require.NoError(t, err)

	cfg := agingrisk.DefaultConfig()
	cfg.WorkerCount = 2
	cfg.MinDailySales = 1.5
	_, err = NewAgingRiskService(agingrisk.NewPipeline(cfg), nil, c).Analyze(ctx, refDate, sampleFeed())
	require.NoError(t, err)

	assert.Equal(t, 2, c.sets, "different floors must not share a cached result")
	assert.Len(t, c.results, 2)
}

func TestAgingRiskService_StructuralErrorNotCached(t *testing.T) {
	c := newMemoryCache()
	svc := NewAgingRiskService(newPipeline(), nil, c)

	feed := agingrisk.Feed{Batches: []agingrisk.RawRecord{{"product_code": "A"}}}
	result, err := svc.Analyze(context.Background(), refDate, feed)
	assert.Nil(t, result)
	assert.True(t, domain.IsStructuralInputError(err))
	assert.Zero(t, c.sets)

	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoLatestResult)
}

func TestAgingRiskService_LatestFallsBackToMemory(t *testing.T) {
	svc := NewAgingRiskService(newPipeline(), nil, nil)

	_, err := svc.Latest(context.Background())
	require.ErrorIs(t, err, ErrNoLatestResult)

	result, err := svc.Analyze(context.Background(), refDate, sampleFeed())
	require.NoError(t, err)

	latest, err := svc.Latest(context.Background())
	require.NoError(t, err)
	assert.Same(t, result, latest)

	require.NoError(t, svc.InvalidateCache(context.Background()))
	_, err = svc.Latest(context.Background())
	assert.ErrorIs(t, err, ErrNoLatestResult)
}

func TestAgingRiskService_AnalyzeSource(t *testing.T) {
	svc := NewAgingRiskService(newPipeline(), nil, nil)
	_, err := svc.AnalyzeSource(context.Background(), refDate)
	assert.ErrorIs(t, err, ErrNoFeedSource)

	repo := &stubRepo{feed: sampleFeed()}
	svc = NewAgingRiskService(newPipeline(), repo, nil)
	result, err := svc.AnalyzeSource(context.Background(), refDate)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls)
	assert.Equal(t, 1, result.Summary.TotalBatches)

	loadErr := errors.New("connection refused")
	svc = NewAgingRiskService(newPipeline(), &stubRepo{err: loadErr}, nil)
	_, err = svc.AnalyzeSource(context.Background(), refDate)
	assert.ErrorIs(t, err, loadErr)
}
