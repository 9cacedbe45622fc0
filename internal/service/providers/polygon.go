package providers

import (
	"context"
	"fmt"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/service/ratelimit"
	"RiskLens/internal/timeseries"
	"RiskLens/pkg/http"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/util"
)

const defaultPolygonBaseURL = "https://api.polygon.io"

type polygonAggsResponse struct {
	Status  string `json:"status"`
	Results []struct {
		Timestamp int64   `json:"t"`
		Close     float64 `json:"c"`
	} `json:"results"`
}

// Polygon fetches daily aggregates from polygon.io. The free tier is
// rate limited, so fetches pass through a local token bucket and a
// denied call reports unavailable instead of burning the quota.
type Polygon struct {
	client  *http.Client
	apiKey  string
	limiter *ratelimit.Limiter
	baseURL string
	log     *logger.Logger
	now     func() time.Time
}

// NewPolygon creates a Polygon provider.
func NewPolygon(client *http.Client, apiKey string, ratePerMin int, log *logger.Logger) *Polygon {
	return &Polygon{
		client:  client,
		apiKey:  apiKey,
		limiter: ratelimit.NewPerMinute(ratePerMin),
		baseURL: defaultPolygonBaseURL,
		log:     log,
		now:     time.Now,
	}
}

// WithBaseURL overrides the API host, used in tests.
func (p *Polygon) WithBaseURL(base string) *Polygon {
	p.baseURL = base
	return p
}

func (p *Polygon) Name() string {
	return "polygon"
}

func (p *Polygon) Fetch(ctx context.Context, symbol string, lookbackDays int) (models.PriceSeries, error) {
	if p.apiKey == "" {
		return nil, fmt.Errorf("%w: polygon: no api key", repository.ErrUnavailable)
	}
	if !p.limiter.Allow() {
		p.log.Warn("polygon rate limit reached", logger.String("symbol", symbol))
		return nil, fmt.Errorf("%w: polygon: rate limited", repository.ErrUnavailable)
	}

	to := util.Day(p.now())
	from := to.AddDate(0, 0, -lookbackDays)

	var payload polygonAggsResponse
	err := p.client.GetJSON(ctx, &http.RequestOptions{
		URL: fmt.Sprintf("%s/v2/aggs/ticker/%s/range/1/day/%s/%s",
			p.baseURL, symbol, util.FormatDay(from), util.FormatDay(to)),
		QueryParams: map[string][]string{
			"adjusted": {"true"},
			"sort":     {"asc"},
			"limit":    {"50000"},
			"apiKey":   {p.apiKey},
		},
	}, &payload)
	if err != nil {
		p.log.Warn("polygon fetch failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: polygon: %v", repository.ErrUnavailable, err)
	}

	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: polygon: empty result for %s", repository.ErrUnavailable, symbol)
	}

	series := make(models.PriceSeries, 0, len(payload.Results))
	for _, bar := range payload.Results {
		series = append(series, models.PricePoint{
			Date:  util.Day(time.UnixMilli(bar.Timestamp).UTC()),
			Close: bar.Close,
		})
	}

	return timeseries.NormalizeSeries(series), nil
}
