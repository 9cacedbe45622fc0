package usecase

import (
	"context"
	"errors"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/service/histcache"
	"RiskLens/internal/service/providers"
	"RiskLens/internal/timeseries"
	"RiskLens/pkg/logger"
)

// ErrNoData is returned when no symbol yields any price data. It is
// the only fatal condition in the fetch path.
var ErrNoData = errors.New("no price data available for any symbol")

// Fetcher orchestrates price acquisition: cache first, then the
// provider chain in priority order, one symbol at a time. Sequential
// fetching is deliberate, the metered providers cap requests per
// minute.
type Fetcher struct {
	providers []repository.PriceProvider
	cache     *histcache.Service
	synthetic *providers.Synthetic
	metrics   repository.Metrics
	log       *logger.Logger
}

// NewFetcher creates the orchestrator. Providers are tried in slice
// order.
func NewFetcher(chain []repository.PriceProvider, cache *histcache.Service, synthetic *providers.Synthetic, metrics repository.Metrics, log *logger.Logger) *Fetcher {
	return &Fetcher{
		providers: chain,
		cache:     cache,
		synthetic: synthetic,
		metrics:   metrics,
		log:       log,
	}
}

// tryProviders walks the chain and returns the first successful
// normalized series. Every failure is recoverable; the bool result
// distinguishes success from exhaustion.
func (f *Fetcher) tryProviders(ctx context.Context, symbol string, lookbackDays int) (models.PriceSeries, bool) {
	for _, p := range f.providers {
		series, err := p.Fetch(ctx, symbol, lookbackDays)
		if err != nil {
			f.metrics.RecordFetch(p.Name(), false)
			continue
		}
		if len(series) == 0 {
			f.metrics.RecordFetch(p.Name(), false)
			continue
		}
		f.metrics.RecordFetch(p.Name(), true)
		return series, true
	}
	return nil, false
}

// FetchWithCache builds an aligned price table for the symbols,
// serving from the per-user cache where possible and persisting every
// fresh fetch. Symbols that fail everywhere are dropped; an empty
// result is ErrNoData.
func (f *Fetcher) FetchWithCache(ctx context.Context, userID string, symbols []string, lookbackDays int) (*models.PriceTable, error) {
	collected, missing := f.cache.Get(ctx, userID, symbols, lookbackDays)
	for range collected {
		f.metrics.RecordCacheEvent("hit")
	}

	for _, symbol := range missing {
		f.metrics.RecordCacheEvent("miss")

		series, ok := f.tryProviders(ctx, symbol, lookbackDays)
		if !ok {
			f.log.Warn("all providers failed, dropping symbol",
				logger.String("symbol", symbol),
			)
			continue
		}

		collected[symbol] = series
		f.cache.Put(ctx, userID, symbol, series)
		f.metrics.RecordCacheEvent("write")
	}

	table := timeseries.NormalizeTable(collected)
	if table.Empty() {
		return nil, ErrNoData
	}
	return table, nil
}

// Fetch is the uncached path for callers without a user context. When
// every provider fails for every symbol it falls back to deterministic
// synthetic series so the pipeline still produces a table; the second
// result tells the caller which kind of data it got.
func (f *Fetcher) Fetch(ctx context.Context, symbols []string, lookbackDays int) (*models.PriceTable, string, error) {
	collected := make(map[string]models.PriceSeries, len(symbols))
	for _, symbol := range symbols {
		series, ok := f.tryProviders(ctx, symbol, lookbackDays)
		if !ok {
			f.log.Warn("all providers failed for symbol",
				logger.String("symbol", symbol),
			)
			continue
		}
		collected[symbol] = series
	}

	if len(collected) > 0 {
		table := timeseries.NormalizeTable(collected)
		if table.Empty() {
			return nil, "", ErrNoData
		}
		return table, models.DataSourceMarket, nil
	}

	if f.synthetic == nil {
		return nil, "", ErrNoData
	}

	f.log.Warn("no live data for any symbol, generating synthetic series",
		logger.Int("symbols", len(symbols)),
	)
	f.metrics.RecordSyntheticFallback()

	for _, symbol := range symbols {
		collected[symbol] = f.synthetic.Generate(symbol, lookbackDays)
	}
	table := timeseries.NormalizeTable(collected)
	if table.Empty() {
		return nil, "", ErrNoData
	}
	return table, models.DataSourceSynthetic, nil
}

// FetchBenchmark fetches the benchmark index series, going through the
// same per-user cache as the holdings when a user context exists. For
// anonymous requests the cache degrades to a miss and the chain runs
// directly. Failure is not fatal; callers degrade beta.
func (f *Fetcher) FetchBenchmark(ctx context.Context, userID, symbol string, lookbackDays int) models.PriceSeries {
	usable, _ := f.cache.Get(ctx, userID, []string{symbol}, lookbackDays)
	if cached, ok := usable[symbol]; ok {
		f.metrics.RecordCacheEvent("hit")
		return timeseries.NormalizeSeries(cached)
	}
	if userID != "" {
		f.metrics.RecordCacheEvent("miss")
	}

	series, ok := f.tryProviders(ctx, symbol, lookbackDays)
	if !ok {
		f.log.Warn("benchmark fetch failed",
			logger.String("symbol", symbol),
		)
		return nil
	}

	f.cache.Put(ctx, userID, symbol, series)
	if userID != "" {
		f.metrics.RecordCacheEvent("write")
	}
	return series
}
