package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/service/histcache"
	"RiskLens/internal/service/providers"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/util"
)

type fakeProvider struct {
	name   string
	series map[string]models.PriceSeries
	calls  []string
}

func (f *fakeProvider) Name() string { return f.name }

func (f *fakeProvider) Fetch(_ context.Context, symbol string, _ int) (models.PriceSeries, error) {
	f.calls = append(f.calls, symbol)
	if s, ok := f.series[symbol]; ok {
		return s, nil
	}
	return nil, repository.ErrUnavailable
}

type fakeStore struct {
	records []*models.CacheRecord
	puts    []*models.CacheRecord
}

func (f *fakeStore) Get(context.Context, string, []string) ([]*models.CacheRecord, error) {
	return f.records, nil
}

func (f *fakeStore) Put(_ context.Context, rec *models.CacheRecord) error {
	f.puts = append(f.puts, rec)
	return nil
}

func (f *fakeStore) Health(context.Context) error { return nil }
func (f *fakeStore) Close() error                 { return nil }

type nopMetrics struct{}

func (nopMetrics) RecordFetch(string, bool) {}
func (nopMetrics) RecordCacheEvent(string)  {}
func (nopMetrics) RecordAnalysis(float64)   {}
func (nopMetrics) RecordSyntheticFallback() {}

func testSeries(base float64, n int) models.PriceSeries {
	s := make(models.PriceSeries, 0, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		s = append(s, models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: base + float64(i),
		})
	}
	return s
}

func newFetcher(store *fakeStore, chain ...repository.PriceProvider) *Fetcher {
	hist := histcache.New(store, 30, logger.Nop())
	return NewFetcher(chain, hist, providers.NewSynthetic(), nopMetrics{}, logger.Nop())
}

func TestFallbackOrderFirstSuccessWins(t *testing.T) {
	failing := &fakeProvider{name: "first"}
	working := &fakeProvider{name: "second", series: map[string]models.PriceSeries{
		"AAPL": testSeries(100, 5),
	}}
	never := &fakeProvider{name: "third", series: map[string]models.PriceSeries{
		"AAPL": testSeries(999, 5),
	}}
	store := &fakeStore{}
	f := newFetcher(store, failing, working, never)

	table, err := f.FetchWithCache(context.Background(), "u1", []string{"AAPL"}, 365)
	if err != nil {
		t.Fatalf("FetchWithCache: %v", err)
	}

	if len(failing.calls) != 1 || len(working.calls) != 1 {
		t.Fatalf("call counts: first=%d second=%d", len(failing.calls), len(working.calls))
	}
	if len(never.calls) != 0 {
		t.Fatal("chain did not stop at first success")
	}
	if got := table.Column("AAPL")[0]; got != 100 {
		t.Fatalf("table data came from the wrong provider: first close %v", got)
	}
	if len(store.puts) != 1 {
		t.Fatalf("cache puts = %d, want exactly 1", len(store.puts))
	}
}

func TestFailedSymbolIsDroppedSilently(t *testing.T) {
	p := &fakeProvider{name: "only", series: map[string]models.PriceSeries{
		"AAPL": testSeries(100, 5),
	}}
	f := newFetcher(&fakeStore{}, p)

	table, err := f.FetchWithCache(context.Background(), "u1", []string{"AAPL", "BROKEN"}, 365)
	if err != nil {
		t.Fatalf("FetchWithCache: %v", err)
	}
	if len(table.Symbols) != 1 || table.Symbols[0] != "AAPL" {
		t.Fatalf("symbols = %v, want [AAPL]", table.Symbols)
	}
}

func TestAllSymbolsFailingIsFatal(t *testing.T) {
	f := newFetcher(&fakeStore{}, &fakeProvider{name: "dead"})

	_, err := f.FetchWithCache(context.Background(), "u1", []string{"AAPL", "MSFT"}, 365)
	if !errors.Is(err, ErrNoData) {
		t.Fatalf("err = %v, want ErrNoData", err)
	}
}

// coveringRecord builds a fresh cache record spanning the full
// lookback window ending yesterday.
func coveringRecord(userID, symbol string, lookbackDays int) *models.CacheRecord {
	today := util.Day(time.Now())
	series := models.PriceSeries{
		{Date: today.AddDate(0, 0, -lookbackDays), Close: 100},
		{Date: today.AddDate(0, 0, -1), Close: 110},
	}
	return &models.CacheRecord{
		UserID:      userID,
		Symbol:      symbol,
		Series:      series,
		StartDate:   series.Start(),
		EndDate:     series.End(),
		LastFetched: time.Now().UTC(),
	}
}

func TestCachedSymbolSkipsProviders(t *testing.T) {
	store := &fakeStore{records: []*models.CacheRecord{coveringRecord("u1", "AAPL", 365)}}
	p := &fakeProvider{name: "unused"}
	f := newFetcher(store, p)

	table, err := f.FetchWithCache(context.Background(), "u1", []string{"AAPL"}, 365)
	if err != nil {
		t.Fatalf("FetchWithCache: %v", err)
	}
	if len(p.calls) != 0 {
		t.Fatalf("provider called %d times for a cached symbol", len(p.calls))
	}
	if table.Empty() {
		t.Fatal("table is empty")
	}
	if len(store.puts) != 0 {
		t.Fatal("cache hit must not trigger a put")
	}
}

func TestUncachedFetchReportsMarketSource(t *testing.T) {
	p := &fakeProvider{name: "live", series: map[string]models.PriceSeries{
		"AAPL": testSeries(100, 5),
	}}
	f := newFetcher(&fakeStore{}, p)

	_, source, err := f.Fetch(context.Background(), []string{"AAPL"}, 365)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if source != models.DataSourceMarket {
		t.Fatalf("source = %q, want %q", source, models.DataSourceMarket)
	}
}

func TestUncachedFetchFallsBackToSynthetic(t *testing.T) {
	f := newFetcher(&fakeStore{}, &fakeProvider{name: "dead"})

	table, source, err := f.Fetch(context.Background(), []string{"AAPL", "MSFT"}, 90)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if source != models.DataSourceSynthetic {
		t.Fatalf("source = %q, want %q", source, models.DataSourceSynthetic)
	}
	if len(table.Symbols) != 2 {
		t.Fatalf("symbols = %v, want both", table.Symbols)
	}
}

func TestPartialLiveDataDoesNotMixSynthetic(t *testing.T) {
	p := &fakeProvider{name: "live", series: map[string]models.PriceSeries{
		"AAPL": testSeries(100, 5),
	}}
	f := newFetcher(&fakeStore{}, p)

	table, source, err := f.Fetch(context.Background(), []string{"AAPL", "BROKEN"}, 365)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if source != models.DataSourceMarket {
		t.Fatalf("source = %q, want market", source)
	}
	if len(table.Symbols) != 1 {
		t.Fatalf("symbols = %v, want only the live one", table.Symbols)
	}
}

func TestFetchBenchmarkFailureReturnsNil(t *testing.T) {
	f := newFetcher(&fakeStore{}, &fakeProvider{name: "dead"})

	if series := f.FetchBenchmark(context.Background(), "", "^GSPC", 365); series != nil {
		t.Fatalf("expected nil series, got %d points", len(series))
	}
}

func TestFetchBenchmarkServedFromCache(t *testing.T) {
	store := &fakeStore{records: []*models.CacheRecord{coveringRecord("u1", "^GSPC", 365)}}
	p := &fakeProvider{name: "unused"}
	f := newFetcher(store, p)

	series := f.FetchBenchmark(context.Background(), "u1", "^GSPC", 365)
	if series == nil {
		t.Fatal("expected cached benchmark series")
	}
	if len(p.calls) != 0 {
		t.Fatalf("provider called %d times despite fresh cached benchmark", len(p.calls))
	}
	if len(store.puts) != 0 {
		t.Fatal("cache hit must not trigger a put")
	}
}

func TestFetchBenchmarkMissPersistsForUser(t *testing.T) {
	store := &fakeStore{}
	p := &fakeProvider{name: "live", series: map[string]models.PriceSeries{
		"^GSPC": testSeries(4000, 5),
	}}
	f := newFetcher(store, p)

	if series := f.FetchBenchmark(context.Background(), "u1", "^GSPC", 365); series == nil {
		t.Fatal("expected benchmark series")
	}
	if len(store.puts) != 1 {
		t.Fatalf("cache puts = %d, want exactly 1", len(store.puts))
	}
	if store.puts[0].Symbol != "^GSPC" {
		t.Fatalf("persisted symbol = %q", store.puts[0].Symbol)
	}
}

func TestFetchBenchmarkAnonymousSkipsCache(t *testing.T) {
	store := &fakeStore{}
	p := &fakeProvider{name: "live", series: map[string]models.PriceSeries{
		"^GSPC": testSeries(4000, 5),
	}}
	f := newFetcher(store, p)

	if series := f.FetchBenchmark(context.Background(), "", "^GSPC", 365); series == nil {
		t.Fatal("expected benchmark series")
	}
	if len(store.puts) != 0 {
		t.Fatalf("anonymous benchmark fetch persisted %d records", len(store.puts))
	}
}
