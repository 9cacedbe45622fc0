package api

import (
	"errors"
	nethttp "net/http"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/usecase"
	"RiskLens/pkg/http"
	"RiskLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

// HealthInfo reports service status and which market-data providers
// hold a configured credential.
type HealthInfo struct {
	Status    string          `json:"status"`
	Providers map[string]bool `json:"providers"`
	Cache     string          `json:"cache"`
}

// RiskEchoHandler exposes the analysis pipeline over HTTP.
type RiskEchoHandler struct {
	analyzer *usecase.Analyzer
	health   func() HealthInfo
	log      *logger.Logger
}

// NewRiskEchoHandler creates the handler. healthFn snapshots provider
// credential presence and cache backend status.
func NewRiskEchoHandler(analyzer *usecase.Analyzer, healthFn func() HealthInfo, log *logger.Logger) *RiskEchoHandler {
	return &RiskEchoHandler{
		analyzer: analyzer,
		health:   healthFn,
		log:      log,
	}
}

// RegisterRoutes registers API routes.
func (h *RiskEchoHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	api := e.Group("/api")
	api.POST("/analyze-risk", h.AnalyzeRisk)
	api.POST("/clear-cache", h.ClearCache)
}

// AnalyzeRisk handles POST /api/analyze-risk.
func (h *RiskEchoHandler) AnalyzeRisk(c echo.Context) error {
	req := new(models.AnalyzeRequest)
	if errs := http.ReadAndValidateRequest(c, req); errs != nil {
		return http.BadRequestResponse(c, errs)
	}

	report, err := h.analyzer.Analyze(c.Request().Context(), req)
	if err != nil {
		if errors.Is(err, usecase.ErrNoData) {
			return http.AppErrorResponse(c, http.NewAppError("ERR_NO_DATA", "no price data available", nethttp.StatusInternalServerError))
		}
		h.log.Error("analysis failed", logger.Error(err))
		return http.InternalServerErrorResponse(c)
	}

	return http.SuccessResponse(c, report)
}

// ClearCache handles POST /api/clear-cache, resetting the
// request-level result cache.
func (h *RiskEchoHandler) ClearCache(c echo.Context) error {
	if err := h.analyzer.ClearResults(c.Request().Context()); err != nil {
		h.log.Error("clear cache failed", logger.Error(err))
		return http.InternalServerErrorResponse(c)
	}
	return http.SuccessResponse(c, map[string]string{"message": "cache cleared"})
}

// Health handles GET /health.
func (h *RiskEchoHandler) Health(c echo.Context) error {
	return http.SuccessResponse(c, h.health())
}
