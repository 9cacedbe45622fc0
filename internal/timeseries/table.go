package timeseries

import (
	"math"
	"sort"
	"time"

	"RiskLens/internal/domain/models"
)

// NormalizeTable aligns per-symbol series onto one shared date axis and
// makes the result rectangular: the date axis is the sorted union of
// all series dates, gaps are forward-filled from the previous close,
// and rows that still have a gap afterwards (leading rows for symbols
// whose history starts later) are dropped. Each input series is
// normalized first, so the whole operation is idempotent.
func NormalizeTable(series map[string]models.PriceSeries) *models.PriceTable {
	symbols := make([]string, 0, len(series))
	normalized := make(map[string]models.PriceSeries, len(series))
	for sym, s := range series {
		s = NormalizeSeries(s)
		if len(s) == 0 {
			continue
		}
		symbols = append(symbols, sym)
		normalized[sym] = s
	}
	sort.Strings(symbols)
	if len(symbols) == 0 {
		return &models.PriceTable{Values: map[string][]float64{}}
	}

	// union date axis
	seen := make(map[time.Time]struct{})
	var dates []time.Time
	for _, sym := range symbols {
		for _, pt := range normalized[sym] {
			if _, ok := seen[pt.Date]; !ok {
				seen[pt.Date] = struct{}{}
				dates = append(dates, pt.Date)
			}
		}
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	// align columns, NaN for missing, then forward-fill
	columns := make(map[string][]float64, len(symbols))
	for _, sym := range symbols {
		col := make([]float64, len(dates))
		s := normalized[sym]
		si := 0
		prev := math.NaN()
		for di, d := range dates {
			if si < len(s) && s[si].Date.Equal(d) {
				prev = s[si].Close
				si++
			}
			col[di] = prev
		}
		columns[sym] = col
	}

	// drop rows with residual gaps
	keep := make([]int, 0, len(dates))
	for di := range dates {
		complete := true
		for _, sym := range symbols {
			if math.IsNaN(columns[sym][di]) {
				complete = false
				break
			}
		}
		if complete {
			keep = append(keep, di)
		}
	}

	table := &models.PriceTable{
		Dates:   make([]time.Time, 0, len(keep)),
		Symbols: symbols,
		Values:  make(map[string][]float64, len(symbols)),
	}
	for _, di := range keep {
		table.Dates = append(table.Dates, dates[di])
	}
	for _, sym := range symbols {
		col := make([]float64, 0, len(keep))
		for _, di := range keep {
			col = append(col, columns[sym][di])
		}
		table.Values[sym] = col
	}
	return table
}

// TableSeries converts a table back to its per-symbol series form.
func TableSeries(t *models.PriceTable) map[string]models.PriceSeries {
	out := make(map[string]models.PriceSeries, len(t.Symbols))
	for _, sym := range t.Symbols {
		col := t.Values[sym]
		s := make(models.PriceSeries, 0, len(t.Dates))
		for i, d := range t.Dates {
			s = append(s, models.PricePoint{Date: d, Close: col[i]})
		}
		out[sym] = s
	}
	return out
}
