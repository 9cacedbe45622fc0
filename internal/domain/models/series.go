package models

import (
	"time"

	"RiskLens/pkg/util"
)

// PricePoint is one daily close. Date is a UTC calendar day (midnight).
type PricePoint struct {
	Date  time.Time `json:"date"`
	Close float64   `json:"close"`
}

// PriceSeries is a date-ordered sequence of daily closes for one symbol.
// Invariant after normalization: strictly increasing dates, no duplicates.
type PriceSeries []PricePoint

// Start returns the first date of the series (zero time when empty).
func (s PriceSeries) Start() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[0].Date
}

// End returns the last date of the series (zero time when empty).
func (s PriceSeries) End() time.Time {
	if len(s) == 0 {
		return time.Time{}
	}
	return s[len(s)-1].Date
}

// SeriesPayload is the JSON shape a series takes inside the price cache.
type SeriesPayload struct {
	Dates  []string  `json:"dates"`
	Prices []float64 `json:"prices"`
}

// Payload converts the series to its cache JSON representation.
func (s PriceSeries) Payload() SeriesPayload {
	p := SeriesPayload{
		Dates:  make([]string, 0, len(s)),
		Prices: make([]float64, 0, len(s)),
	}
	for _, pt := range s {
		p.Dates = append(p.Dates, util.FormatDay(pt.Date))
		p.Prices = append(p.Prices, pt.Close)
	}
	return p
}

// Series rebuilds a PriceSeries from a cache payload. Entries with
// unparsable dates are skipped.
func (p SeriesPayload) Series() PriceSeries {
	n := len(p.Dates)
	if len(p.Prices) < n {
		n = len(p.Prices)
	}
	s := make(PriceSeries, 0, n)
	for i := 0; i < n; i++ {
		day, err := util.ParseDay(p.Dates[i])
		if err != nil {
			continue
		}
		s = append(s, PricePoint{Date: day, Close: p.Prices[i]})
	}
	return s
}

// PriceTable is a rectangular date-by-symbol table of closes: every
// symbol has a value for every date.
type PriceTable struct {
	Dates   []time.Time
	Symbols []string
	Values  map[string][]float64
}

// Empty reports whether the table has no usable data.
func (t *PriceTable) Empty() bool {
	return t == nil || len(t.Dates) == 0 || len(t.Symbols) == 0
}

// Column returns the close column for a symbol, nil when absent.
func (t *PriceTable) Column(symbol string) []float64 {
	if t == nil {
		return nil
	}
	return t.Values[symbol]
}

// CacheRecord is one per-user, per-symbol row of the historical data
// cache. Upsert semantics, last-write-wins.
type CacheRecord struct {
	UserID      string
	Symbol      string
	Series      PriceSeries
	StartDate   time.Time
	EndDate     time.Time
	LastFetched time.Time
}
