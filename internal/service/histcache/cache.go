package histcache

import (
	"context"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/timeseries"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/util"
)

// Service mediates access to the per-user historical price cache. The
// cache is advisory: any store failure degrades to a miss or a dropped
// write, never an analysis failure.
type Service struct {
	store      repository.PriceStore
	log        *logger.Logger
	maxAgeDays int
	now        func() time.Time
}

// New creates the cache service. A nil store yields a service that
// always misses, which is how the app runs without ClickHouse.
func New(store repository.PriceStore, maxAgeDays int, log *logger.Logger) *Service {
	return &Service{
		store:      store,
		log:        log,
		maxAgeDays: maxAgeDays,
		now:        time.Now,
	}
}

// WithClock overrides the time source, used in tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// IsFresh reports whether a record fetched at t is still usable. Age
// counts in whole elapsed days; a record exactly maxAgeDays old is
// already stale.
func (s *Service) IsFresh(lastFetched time.Time) bool {
	return util.WholeDays(lastFetched, s.now()) < s.maxAgeDays
}

// covers reports whether a record spans the requested lookback window.
// The start bound is exact; the end may lag up to graceDays behind
// yesterday, since daily bars stop at the last trading day and never
// include weekends or holidays.
func (s *Service) covers(rec *models.CacheRecord, lookbackDays int) bool {
	now := util.Day(s.now())
	windowStart := now.AddDate(0, 0, -lookbackDays)
	windowEnd := now.AddDate(0, 0, -1)

	if rec.StartDate.After(windowStart) {
		return false
	}
	const graceDays = 5
	return !rec.EndDate.Before(windowEnd.AddDate(0, 0, -graceDays))
}

// Get returns the cached series usable for the lookback window, plus
// the symbols that must be refetched (missing, stale or short).
func (s *Service) Get(ctx context.Context, userID string, symbols []string, lookbackDays int) (map[string]models.PriceSeries, []string) {
	if s.store == nil || userID == "" {
		return map[string]models.PriceSeries{}, symbols
	}

	records, err := s.store.Get(ctx, userID, symbols)
	if err != nil {
		s.log.Warn("price cache read failed",
			logger.String("user_id", userID),
			logger.Error(err),
		)
		return map[string]models.PriceSeries{}, symbols
	}

	bySymbol := make(map[string]*models.CacheRecord, len(records))
	for _, rec := range records {
		bySymbol[rec.Symbol] = rec
	}

	usable := make(map[string]models.PriceSeries)
	var missing []string
	for _, symbol := range symbols {
		rec, ok := bySymbol[symbol]
		if !ok || len(rec.Series) == 0 {
			missing = append(missing, symbol)
			continue
		}
		if !s.IsFresh(rec.LastFetched) || !s.covers(rec, lookbackDays) {
			missing = append(missing, symbol)
			continue
		}
		usable[symbol] = rec.Series
	}
	return usable, missing
}

// Put stores a freshly fetched series. Failures are logged and
// swallowed so a cache outage never fails an analysis.
func (s *Service) Put(ctx context.Context, userID, symbol string, series models.PriceSeries) {
	if s.store == nil || userID == "" || len(series) == 0 {
		return
	}

	series = timeseries.NormalizeSeries(series)
	rec := &models.CacheRecord{
		UserID:      userID,
		Symbol:      symbol,
		Series:      series,
		StartDate:   series.Start(),
		EndDate:     series.End(),
		LastFetched: s.now(),
	}

	if err := s.store.Put(ctx, rec); err != nil {
		s.log.Warn("price cache write failed",
			logger.String("user_id", userID),
			logger.String("symbol", symbol),
			logger.Error(err),
		)
	}
}
