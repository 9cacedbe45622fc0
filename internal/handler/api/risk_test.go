package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/service/histcache"
	"RiskLens/internal/service/providers"
	"RiskLens/internal/services/risk"
	"RiskLens/internal/usecase"
	"RiskLens/pkg/cache"
	"RiskLens/pkg/logger"

	"github.com/labstack/echo/v4"
)

type stubProvider struct {
	calls int
}

func (s *stubProvider) Name() string { return "stub" }

func (s *stubProvider) Fetch(_ context.Context, symbol string, _ int) (models.PriceSeries, error) {
	s.calls++
	series := make(models.PriceSeries, 0, 40)
	price := 100.0
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 40; i++ {
		if i%2 == 0 {
			price *= 1.01
		} else {
			price *= 0.996
		}
		series = append(series, models.PricePoint{Date: start.AddDate(0, 0, i), Close: price})
	}
	return series, nil
}

type stubMetrics struct{}

func (stubMetrics) RecordFetch(string, bool) {}
func (stubMetrics) RecordCacheEvent(string)  {}
func (stubMetrics) RecordAnalysis(float64)   {}
func (stubMetrics) RecordSyntheticFallback() {}

func newTestHandler(t *testing.T) (*RiskEchoHandler, *stubProvider) {
	t.Helper()

	provider := &stubProvider{}
	hist := histcache.New(nil, 30, logger.Nop())
	fetcher := usecase.NewFetcher([]repository.PriceProvider{provider}, hist, providers.NewSynthetic(), stubMetrics{}, logger.Nop())

	results := cache.NewMemory(cache.MemoryConfig{MaxEntries: 64, CleanupInterval: time.Minute})
	t.Cleanup(func() { _ = results.Close() })

	analyzer := usecase.NewAnalyzer(fetcher, risk.NewEngine(0.02), results, nil, stubMetrics{}, logger.Nop(), usecase.AnalyzerConfig{
		BenchmarkSymbol: "^GSPC",
		LookbackDays:    365,
		ResultTTL:       time.Hour,
	})

	healthFn := func() HealthInfo {
		return HealthInfo{
			Status:    "ok",
			Providers: map[string]bool{"yahoo": true, "polygon": false, "fmp": false},
			Cache:     "disabled",
		}
	}
	return NewRiskEchoHandler(analyzer, healthFn, logger.Nop()), provider
}

func doRequest(h *RiskEchoHandler, method, path, body string) *httptest.ResponseRecorder {
	e := echo.New()
	h.RegisterRoutes(e)

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestAnalyzeRiskSuccess(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"holdings":[
		{"symbol":"AAPL","shares":10,"value":1700,"sector":"Tech"},
		{"symbol":"MSFT","shares":5,"value":1500,"sector":"Tech"}
	]}`
	rec := doRequest(h, http.MethodPost, "/api/analyze-risk", body)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.RiskReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.NumHoldings != 2 {
		t.Errorf("NumHoldings = %d, want 2", resp.Data.NumHoldings)
	}
	if resp.Data.TotalValue != 3200 {
		t.Errorf("TotalValue = %v, want 3200", resp.Data.TotalValue)
	}
	if resp.Data.Cached {
		t.Error("first analysis flagged cached")
	}
}

func TestAnalyzeRiskEmptyHoldingsIsValidationError(t *testing.T) {
	h, provider := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/analyze-risk", `{"holdings":[]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if provider.calls != 0 {
		t.Fatalf("validation failure still fetched data (%d calls)", provider.calls)
	}
}

func TestAnalyzeRiskMissingSymbolIsValidationError(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/analyze-risk", `{"holdings":[{"shares":10,"value":100}]}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
}

func TestAnalyzeRiskDefaultsSector(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodPost, "/api/analyze-risk", `{"holdings":[{"symbol":"AAPL","shares":1,"value":100}]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Data models.RiskReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got := resp.Data.HoldingsBreakdown[0].Sector; got != models.SectorUnknown {
		t.Fatalf("sector = %q, want %q", got, models.SectorUnknown)
	}
}

func TestClearCache(t *testing.T) {
	h, _ := newTestHandler(t)

	body := `{"holdings":[{"symbol":"AAPL","shares":1,"value":100}]}`
	if rec := doRequest(h, http.MethodPost, "/api/analyze-risk", body); rec.Code != http.StatusOK {
		t.Fatalf("seed analyze failed: %d", rec.Code)
	}

	if rec := doRequest(h, http.MethodPost, "/api/clear-cache", ""); rec.Code != http.StatusOK {
		t.Fatalf("clear-cache status = %d", rec.Code)
	}

	rec := doRequest(h, http.MethodPost, "/api/analyze-risk", body)
	var resp struct {
		Data models.RiskReport `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Cached {
		t.Fatal("analysis served from cache after clear")
	}
}

func TestHealthReportsProviders(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doRequest(h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp struct {
		Data HealthInfo `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Data.Status != "ok" {
		t.Errorf("status = %q", resp.Data.Status)
	}
	if !resp.Data.Providers["yahoo"] || resp.Data.Providers["polygon"] {
		t.Errorf("providers = %v", resp.Data.Providers)
	}
}
