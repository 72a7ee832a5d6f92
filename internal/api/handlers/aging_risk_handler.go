package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/andresuchdata/agingrisk/internal/domain"
	agingrisk "github.com/andresuchdata/agingrisk/internal/pipeline/aging_risk"
	"github.com/andresuchdata/agingrisk/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const referenceDateLayout = "2006-01-02"

type AgingRiskHandler struct {
	service *service.AgingRiskService
}

func NewAgingRiskHandler(service *service.AgingRiskService) *AgingRiskHandler {
	return &AgingRiskHandler{service: service}
}

// AnalyzeRequest is the JSON envelope of an analysis request. Shipment, batch
// and price rows are column-keyed.
type AnalyzeRequest struct {
	ReferenceDate string                `json:"reference_date"`
	Shipments     []agingrisk.RawRecord `json:"shipments"`
	Batches       []agingrisk.RawRecord `json:"batches"`
	Prices        []agingrisk.RawRecord `json:"prices"`
	UnitPrices    map[string]float64    `json:"unit_prices"`
}

type analyzeSourceRequest struct {
	ReferenceDate string `json:"reference_date"`
}

// Analyze handles POST /api/v1/aging_risk/analyze
func (h *AgingRiskHandler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	referenceDate, ok := parseReferenceDate(c, req.ReferenceDate)
	if !ok {
		return
	}

	result, err := h.service.Analyze(c.Request.Context(), referenceDate, agingrisk.Feed{
		Shipments:  req.Shipments,
		Batches:    req.Batches,
		Prices:     req.Prices,
		UnitPrices: req.UnitPrices,
	})
	if err != nil {
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// AnalyzeSource handles POST /api/v1/aging_risk/analyze/source
func (h *AgingRiskHandler) AnalyzeSource(c *gin.Context) {
	var req analyzeSourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body", "details": err.Error()})
		return
	}

	referenceDate, ok := parseReferenceDate(c, req.ReferenceDate)
	if !ok {
		return
	}

	result, err := h.service.AnalyzeSource(c.Request.Context(), referenceDate)
	if err != nil {
		if errors.Is(err, service.ErrNoFeedSource) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "database source is not configured"})
			return
		}
		h.analysisError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// Latest handles GET /api/v1/aging_risk/latest. Optional filters restrict the
// returned assessments; the summary is unchanged:
//   - tier: keep one risk tier
//   - horizon (30, 60 or 90) with min_risk (default 80): keep batches whose
//     risk at that horizon is at least min_risk
func (h *AgingRiskHandler) Latest(c *gin.Context) {
	result, err := h.service.Latest(c.Request.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoLatestResult) {
			c.JSON(http.StatusNotFound, gin.H{"error": "no analysis has been run yet"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to fetch latest result",
			"details": err.Error(),
		})
		return
	}

	filter, err := parseLatestFilter(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid filter", "details": err.Error()})
		return
	}
	if filter.empty() {
		c.JSON(http.StatusOK, result)
		return
	}

	filtered := *result
	filtered.Assessments = make([]domain.BatchRiskAssessment, 0)
	for _, a := range result.Assessments {
		if filter.keep(a) {
			filtered.Assessments = append(filtered.Assessments, a)
		}
	}
	c.JSON(http.StatusOK, filtered)
}

const defaultMinHorizonRisk = 80.0

type latestFilter struct {
	tier    domain.RiskTier
	horizon int
	minRisk float64
}

func parseLatestFilter(c *gin.Context) (latestFilter, error) {
	var f latestFilter

	if raw := strings.TrimSpace(c.Query("tier")); raw != "" {
		tier, ok := domain.ParseRiskTier(raw)
		if !ok {
			return f, fmt.Errorf("unknown tier %q", raw)
		}
		f.tier = tier
	}

	rawHorizon := strings.TrimSpace(c.Query("horizon"))
	rawMin := strings.TrimSpace(c.Query("min_risk"))
	if rawHorizon == "" {
		if rawMin != "" {
			return f, fmt.Errorf("min_risk requires horizon")
		}
		return f, nil
	}

	horizon, err := strconv.Atoi(rawHorizon)
	if err != nil {
		return f, fmt.Errorf("invalid horizon %q", rawHorizon)
	}
	if _, ok := (domain.BatchRiskAssessment{}).RiskForHorizon(horizon); !ok {
		return f, fmt.Errorf("horizon must be one of %v", domain.Horizons)
	}
	f.horizon = horizon

	f.minRisk = defaultMinHorizonRisk
	if rawMin != "" {
		minRisk, err := strconv.ParseFloat(rawMin, 64)
		if err != nil || minRisk < 0 || minRisk > 100 {
			return f, fmt.Errorf("min_risk must be a number between 0 and 100")
		}
		f.minRisk = minRisk
	}
	return f, nil
}

func (f latestFilter) empty() bool {
	return f.tier == "" && f.horizon == 0
}

func (f latestFilter) keep(a domain.BatchRiskAssessment) bool {
	if f.tier != "" && a.RiskTier != f.tier {
		return false
	}
	if f.horizon != 0 {
		risk, _ := a.RiskForHorizon(f.horizon)
		return risk >= f.minRisk
	}
	return true
}

// InvalidateCache handles DELETE /api/v1/aging_risk/cache
func (h *AgingRiskHandler) InvalidateCache(c *gin.Context) {
	if err := h.service.InvalidateCache(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "failed to invalidate cache",
			"details": err.Error(),
		})
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *AgingRiskHandler) analysisError(c *gin.Context, err error) {
	var structural *domain.StructuralInputError
	switch {
	case errors.As(err, &structural):
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "structural input error",
			"details": err.Error(),
			"section": structural.Section,
			"missing": structural.Missing,
		})
	default:
		log.Error().Err(err).Msg("aging risk analysis failed")
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "analysis failed",
			"details": err.Error(),
		})
	}
}

func parseReferenceDate(c *gin.Context, raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "reference_date is required"})
		return time.Time{}, false
	}

	referenceDate, err := time.Parse(referenceDateLayout, raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid reference_date", "details": err.Error()})
		return time.Time{}, false
	}
	return referenceDate, true
}
