package timeseries

import (
	"sort"

	"RiskLens/internal/domain/models"
	"RiskLens/pkg/util"
)

// NormalizeSeries canonicalizes a price series: dates truncated to UTC
// calendar days, sorted ascending, duplicate days collapsed keeping the
// first occurrence after the sort. Idempotent; an empty input comes
// back unchanged.
func NormalizeSeries(s models.PriceSeries) models.PriceSeries {
	if len(s) == 0 {
		return s
	}

	out := make(models.PriceSeries, len(s))
	copy(out, s)
	for i := range out {
		out[i].Date = util.Day(out[i].Date)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})

	// keep-first duplicate policy
	dedup := out[:1]
	for _, pt := range out[1:] {
		if pt.Date.Equal(dedup[len(dedup)-1].Date) {
			continue
		}
		dedup = append(dedup, pt)
	}
	return dedup
}
