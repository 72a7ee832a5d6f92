package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/andresuchdata/agingrisk/internal/cache"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/andresuchdata/agingrisk/internal/repository"
	"github.com/rs/zerolog/log"
)

var (
	// ErrNoLatestResult is returned by Latest before any analysis has completed.
	ErrNoLatestResult = errors.New("no aging risk result available")
	// ErrNoFeedSource is returned by AnalyzeSource when no database source is configured.
	ErrNoFeedSource = errors.New("no feed source configured")
)

type AgingRiskService struct {
	pipeline *agingrisk.Pipeline
	repo     repository.FeedRepository
	cache    cache.AssessmentCache

	mu     sync.RWMutex
	latest *agingrisk.Result
}

// NewAgingRiskService wires the pipeline to an optional feed repository and cache.
func NewAgingRiskService(p *agingrisk.Pipeline, repo repository.FeedRepository, cacheImpl cache.AssessmentCache) *AgingRiskService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopAssessmentCache()
	}
	return &AgingRiskService{pipeline: p, repo: repo, cache: cacheImpl}
}

// Analyze scores a feed, reusing a cached result for identical input.
func (s *AgingRiskService) Analyze(ctx context.Context, referenceDate time.Time, feed agingrisk.Feed) (*agingrisk.Result, error) {
	key, err := cache.BuildResultKey(referenceDate, s.pipeline.Config(), feed)
	if err != nil {
		log.Warn().Err(err).Msg("aging risk: cache key build failed")
	}

	if key != "" {
		if result, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			log.Debug().Str("key", key).Msg("aging risk: cache hit")
			s.remember(result)
			if err := s.cache.SetLatest(ctx, result); err != nil {
				log.Warn().Err(err).Msg("aging risk: cache set latest failed")
			}
			return result, nil
		} else if err != nil {
			log.Warn().Err(err).Msg("aging risk: cache get result failed")
		}
	}

	result, err := s.pipeline.AnalyzeFeed(ctx, referenceDate, feed)
	if err != nil {
		return nil, err
	}
	s.remember(result)

	if key != "" {
		if err := s.cache.Set(ctx, key, result); err != nil {
			log.Warn().Err(err).Msg("aging risk: cache set result failed")
		}
	}

	return result, nil
}

// AnalyzeSource loads the feed from the configured repository and analyzes it.
func (s *AgingRiskService) AnalyzeSource(ctx context.Context, referenceDate time.Time) (*agingrisk.Result, error) {
	if s.repo == nil {
		return nil, ErrNoFeedSource
	}

	feed, err := s.repo.LoadFeed(ctx)
	if err != nil {
		return nil, err
	}

	return s.Analyze(ctx, referenceDate, feed)
}

// Latest returns the most recent result, preferring the shared cache over
// this process's own memory.
func (s *AgingRiskService) Latest(ctx context.Context) (*agingrisk.Result, error) {
	if result, ok, err := s.cache.Latest(ctx); err == nil && ok {
		return result, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("aging risk: cache get latest failed")
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.latest == nil {
		return nil, ErrNoLatestResult
	}
	return s.latest, nil
}

// InvalidateCache drops every cached result.
func (s *AgingRiskService) InvalidateCache(ctx context.Context) error {
	s.mu.Lock()
	s.latest = nil
	s.mu.Unlock()

	return s.cache.InvalidateAll(ctx)
}

func (s *AgingRiskService) remember(result *agingrisk.Result) {
	s.mu.Lock()
	s.latest = result
	s.mu.Unlock()
}
