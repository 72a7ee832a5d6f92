package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/andresuchdata/agingrisk/internal/api"
	"github.com/andresuchdata/agingrisk/internal/cache"
	"github.com/andresuchdata/agingrisk/internal/config"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/andresuchdata/agingrisk/internal/repository"
	"github.com/andresuchdata/agingrisk/internal/repository/postgres"
	"github.com/andresuchdata/agingrisk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// PipelineConfig maps risk settings onto the pipeline configuration.
func PipelineConfig(cfg config.RiskConfig) agingrisk.Config {
	return agingrisk.Config{
		MinDailySales:    cfg.MinDailySales,
		MinSeasonalIndex: cfg.MinSeasonalIndex,
		WorkerCount:      cfg.Workers,
	}
}

// NewAgingRiskService builds the service with its cache and, when enabled,
// the database source. The returned cleanup closes the database pool.
func NewAgingRiskService(ctx context.Context, cfg *config.Config) (*service.AgingRiskService, func(), error) {
	cleanup := func() {}

	assessmentCache, err := cache.NewAssessmentCache(cfg.Cache)
	if err != nil {
		log.Warn().Err(err).Msg("aging risk: redis unavailable, caching disabled")
		assessmentCache = cache.NewNoopAssessmentCache()
	}

	var repo repository.FeedRepository
	if cfg.Source.Enabled {
		db, err := postgres.NewDB(ctx, &cfg.Database)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() {
			if err := db.Close(); err != nil {
				log.Error().Err(err).Msg("could not close database")
			}
		}
		repo = postgres.NewFeedRepository(db, cfg.Source)
	}

	p := agingrisk.NewPipeline(PipelineConfig(cfg.Risk))
	return service.NewAgingRiskService(p, repo, assessmentCache), cleanup, nil
}

// Run serves the HTTP API until ctx is cancelled, then shuts down gracefully.
func Run(ctx context.Context, cfg *config.Config) error {
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	svc, cleanup, err := NewAgingRiskService(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	router := api.NewRouter(&api.Services{AgingRiskService: svc}, cfg.Server.AllowedOrigins)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("Server exiting")
	return nil
}
