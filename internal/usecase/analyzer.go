package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/services/risk"
	"RiskLens/pkg/cache"
	"RiskLens/pkg/logger"
)

const resultKeyPrefix = "result:"

// AnalyzerConfig carries the tunables of the analysis pipeline.
type AnalyzerConfig struct {
	BenchmarkSymbol string
	LookbackDays    int
	ResultTTL       time.Duration
}

// Analyzer runs one portfolio analysis end to end: result cache
// lookup, price acquisition, metric computation, result cache write
// and optional report publication.
type Analyzer struct {
	fetcher   *Fetcher
	engine    *risk.Engine
	results   cache.Service
	publisher repository.ReportPublisher
	metrics   repository.Metrics
	log       *logger.Logger
	cfg       AnalyzerConfig
}

// NewAnalyzer wires the pipeline. publisher may be nil to disable
// report events.
func NewAnalyzer(fetcher *Fetcher, engine *risk.Engine, results cache.Service, publisher repository.ReportPublisher, metrics repository.Metrics, log *logger.Logger, cfg AnalyzerConfig) *Analyzer {
	return &Analyzer{
		fetcher:   fetcher,
		engine:    engine,
		results:   results,
		publisher: publisher,
		metrics:   metrics,
		log:       log,
		cfg:       cfg,
	}
}

// ResultKey derives the request-level cache key: sorted symbol_shares
// pairs, so the same portfolio hits the same entry regardless of
// holding order.
func ResultKey(holdings []models.Holding) string {
	pairs := make([]string, 0, len(holdings))
	for _, h := range holdings {
		pairs = append(pairs, h.Symbol+"_"+strconv.FormatFloat(h.Shares, 'f', -1, 64))
	}
	sort.Strings(pairs)
	return resultKeyPrefix + strings.Join(pairs, "_")
}

// Analyze produces a risk report for the request. A cached report is
// returned with Cached set; everything else is computed fresh.
func (a *Analyzer) Analyze(ctx context.Context, req *models.AnalyzeRequest) (*models.RiskReport, error) {
	start := time.Now()
	key := ResultKey(req.Holdings)

	if raw, err := a.results.Get(ctx, key); err == nil {
		var report models.RiskReport
		if err := json.Unmarshal(raw, &report); err == nil {
			report.Cached = true
			a.metrics.RecordCacheEvent("result_hit")
			return &report, nil
		}
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		a.log.Warn("result cache read failed", logger.Error(err))
	}

	symbols := models.Symbols(req.Holdings)

	var (
		table  *models.PriceTable
		source string
		err    error
	)
	if req.UserID != "" {
		table, err = a.fetcher.FetchWithCache(ctx, req.UserID, symbols, a.cfg.LookbackDays)
		source = models.DataSourceMarket
	} else {
		table, source, err = a.fetcher.Fetch(ctx, symbols, a.cfg.LookbackDays)
	}
	if err != nil {
		return nil, err
	}

	benchmark := a.fetcher.FetchBenchmark(ctx, req.UserID, a.cfg.BenchmarkSymbol, a.cfg.LookbackDays)

	report := a.engine.Analyze(table, benchmark, req.Holdings)
	report.DataSource = source
	report.Cached = false

	if raw, marshalErr := json.Marshal(report); marshalErr == nil {
		if err := a.results.Set(ctx, key, raw, a.cfg.ResultTTL); err != nil {
			a.log.Warn("result cache write failed", logger.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Publish(ctx, req.UserID, report); err != nil {
			a.log.Warn("report publish failed", logger.Error(err))
		}
	}

	a.metrics.RecordAnalysis(time.Since(start).Seconds())
	return report, nil
}

// ClearResults drops every entry of the request-level result cache.
func (a *Analyzer) ClearResults(ctx context.Context) error {
	return a.results.DeleteByPrefix(ctx, resultKeyPrefix)
}
