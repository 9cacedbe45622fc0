package providers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"RiskLens/internal/domain/repository"
	pkghttp "RiskLens/pkg/http"
	"RiskLens/pkg/logger"
)

func testClient() *pkghttp.Client {
	return pkghttp.NewClient(pkghttp.WithTimeout(2 * time.Second))
}

func TestYahooFetchParsesChartPayload(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v8/finance/chart/AAPL" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("interval") != "1d" {
			t.Errorf("interval = %q, want 1d", r.URL.Query().Get("interval"))
		}
		w.Header().Set("Content-Type", "application/json")
		// second bar is null and must be skipped
		_, _ = w.Write([]byte(`{"chart":{"result":[{
			"timestamp":[1704067200,1704153600,1704240000],
			"indicators":{"quote":[{"close":[185.5,null,187.25]}]}
		}],"error":null}}`))
	}))
	defer srv.Close()

	y := NewYahoo(testClient(), logger.Nop()).WithBaseURL(srv.URL)
	series, err := y.Fetch(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2 (null bar skipped)", len(series))
	}
	if series[0].Close != 185.5 || series[1].Close != 187.25 {
		t.Fatalf("closes = %v, %v", series[0].Close, series[1].Close)
	}
}

func TestYahooFetchAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data"}}}`))
	}))
	defer srv.Close()

	y := NewYahoo(testClient(), logger.Nop()).WithBaseURL(srv.URL)
	_, err := y.Fetch(context.Background(), "NOPE", 365)
	if !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestYahooFetchServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	y := NewYahoo(testClient(), logger.Nop()).WithBaseURL(srv.URL)
	if _, err := y.Fetch(context.Background(), "AAPL", 365); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestChartRangeBuckets(t *testing.T) {
	cases := []struct {
		days int
		want string
	}{
		{7, "1mo"},
		{60, "3mo"},
		{120, "6mo"},
		{365, "1y"},
		{500, "2y"},
	}
	for _, tc := range cases {
		if got := chartRange(tc.days); got != tc.want {
			t.Errorf("chartRange(%d) = %q, want %q", tc.days, got, tc.want)
		}
	}
}

func TestPolygonMissingKeyIsUnavailable(t *testing.T) {
	p := NewPolygon(testClient(), "", 5, logger.Nop())
	_, err := p.Fetch(context.Background(), "AAPL", 365)
	if !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestPolygonFetchParsesAggregates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apiKey") != "test-key" {
			t.Errorf("apiKey missing from query")
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[
			{"t":1704067200000,"c":185.5},
			{"t":1704153600000,"c":186.1}
		]}`))
	}))
	defer srv.Close()

	p := NewPolygon(testClient(), "test-key", 5, logger.Nop()).WithBaseURL(srv.URL)
	series, err := p.Fetch(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want 2", len(series))
	}
}

func TestPolygonRateLimitExhaustion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"OK","results":[{"t":1704067200000,"c":1}]}`))
	}))
	defer srv.Close()

	p := NewPolygon(testClient(), "test-key", 2, logger.Nop()).WithBaseURL(srv.URL)

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := p.Fetch(ctx, "AAPL", 30); err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
	}
	if _, err := p.Fetch(ctx, "AAPL", 30); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable after quota", err)
	}
}

func TestFMPMissingKeyIsUnavailable(t *testing.T) {
	f := NewFMP(testClient(), "", logger.Nop())
	if _, err := f.Fetch(context.Background(), "AAPL", 365); !errors.Is(err, repository.ErrUnavailable) {
		t.Fatalf("err = %v, want ErrUnavailable", err)
	}
}

func TestFMPFetchNormalizesNewestFirst(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2024-01-03","close":187.25},
			{"date":"2024-01-02","close":186.1},
			{"date":"2024-01-01","close":185.5}
		]}`))
	}))
	defer srv.Close()

	f := NewFMP(testClient(), "test-key", logger.Nop()).WithBaseURL(srv.URL)
	series, err := f.Fetch(context.Background(), "AAPL", 365)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(series) != 3 {
		t.Fatalf("len = %d, want 3", len(series))
	}
	if !series[0].Date.Before(series[2].Date) {
		t.Fatal("series not sorted ascending after normalization")
	}
	if series[0].Close != 185.5 {
		t.Fatalf("first close = %v, want 185.5", series[0].Close)
	}
}

func TestFMPTrimsToLookback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"symbol":"AAPL","historical":[
			{"date":"2024-01-05","close":5},
			{"date":"2024-01-04","close":4},
			{"date":"2024-01-03","close":3},
			{"date":"2024-01-02","close":2},
			{"date":"2024-01-01","close":1}
		]}`))
	}))
	defer srv.Close()

	f := NewFMP(testClient(), "test-key", logger.Nop()).WithBaseURL(srv.URL)
	series, err := f.Fetch(context.Background(), "AAPL", 2)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if len(series) != 2 {
		t.Fatalf("len = %d, want the 2 newest bars", len(series))
	}
	if series[1].Close != 5 {
		t.Fatalf("newest close = %v, want 5", series[1].Close)
	}
}

func TestSyntheticDeterministicPerSymbol(t *testing.T) {
	s := NewSynthetic()

	a := s.Generate("AAPL", 30)
	b := s.Generate("AAPL", 30)
	c := s.Generate("MSFT", 30)

	if len(a) != 30 {
		t.Fatalf("len = %d, want 30", len(a))
	}
	for i := range a {
		if a[i].Close != b[i].Close {
			t.Fatalf("same symbol diverged at %d: %v vs %v", i, a[i].Close, b[i].Close)
		}
	}

	same := true
	for i := range a {
		if a[i].Close != c[i].Close {
			same = false
			break
		}
	}
	if same {
		t.Fatal("different symbols produced identical walks")
	}
}

func TestSyntheticPricesStayPositive(t *testing.T) {
	s := NewSynthetic()
	for _, sym := range []string{"A", "ZZZZ", "X1", "LONGSYMBOL"} {
		for _, pt := range s.Generate(sym, 365) {
			if pt.Close < 1 {
				t.Fatalf("%s price dropped below 1: %v", sym, pt.Close)
			}
		}
	}
}
