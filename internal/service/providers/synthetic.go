package providers

import (
	"hash/fnv"
	"math/rand"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/pkg/util"
)

// Synthetic generates a deterministic geometric random walk per
// symbol. It backs analyses when every live provider fails, so the
// service can still demonstrate the full pipeline. Reports built on it
// are flagged as synthetic.
type Synthetic struct {
	now func() time.Time
}

// NewSynthetic creates a synthetic series generator.
func NewSynthetic() *Synthetic {
	return &Synthetic{now: time.Now}
}

// WithClock overrides the time source, used in tests.
func (s *Synthetic) WithClock(now func() time.Time) *Synthetic {
	s.now = now
	return s
}

func (s *Synthetic) Name() string {
	return "synthetic"
}

// Generate produces lookbackDays daily closes ending today. The same
// symbol always yields the same walk: the seed and base price derive
// from an FNV hash of the symbol.
func (s *Synthetic) Generate(symbol string, lookbackDays int) models.PriceSeries {
	h := fnv.New64a()
	_, _ = h.Write([]byte(symbol))
	seed := h.Sum64()

	rng := rand.New(rand.NewSource(int64(seed)))
	price := 100.0 + float64(seed%200)

	end := util.Day(s.now())
	start := end.AddDate(0, 0, -(lookbackDays - 1))

	series := make(models.PriceSeries, 0, lookbackDays)
	for i := 0; i < lookbackDays; i++ {
		ret := rng.NormFloat64()*0.02 + 0.0005
		price *= 1 + ret
		if price < 1 {
			price = 1
		}
		series = append(series, models.PricePoint{
			Date:  start.AddDate(0, 0, i),
			Close: price,
		})
	}
	return series
}
