package providers

import (
	"context"
	"fmt"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/timeseries"
	"RiskLens/pkg/http"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/util"
)

const defaultFMPBaseURL = "https://financialmodelingprep.com"

type fmpHistoricalResponse struct {
	Symbol     string `json:"symbol"`
	Historical []struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	} `json:"historical"`
}

// FMP fetches daily closes from Financial Modeling Prep. The API
// returns bars newest first, so the adapter takes the leading
// lookbackDays entries before normalizing.
type FMP struct {
	client  *http.Client
	apiKey  string
	baseURL string
	log     *logger.Logger
}

// NewFMP creates an FMP provider.
func NewFMP(client *http.Client, apiKey string, log *logger.Logger) *FMP {
	return &FMP{
		client:  client,
		apiKey:  apiKey,
		baseURL: defaultFMPBaseURL,
		log:     log,
	}
}

// WithBaseURL overrides the API host, used in tests.
func (f *FMP) WithBaseURL(base string) *FMP {
	f.baseURL = base
	return f
}

func (f *FMP) Name() string {
	return "fmp"
}

func (f *FMP) Fetch(ctx context.Context, symbol string, lookbackDays int) (models.PriceSeries, error) {
	if f.apiKey == "" {
		return nil, fmt.Errorf("%w: fmp: no api key", repository.ErrUnavailable)
	}

	var payload fmpHistoricalResponse
	err := f.client.GetJSON(ctx, &http.RequestOptions{
		URL: fmt.Sprintf("%s/api/v3/historical-price-full/%s", f.baseURL, symbol),
		QueryParams: map[string][]string{
			"apikey": {f.apiKey},
		},
	}, &payload)
	if err != nil {
		f.log.Warn("fmp fetch failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: fmp: %v", repository.ErrUnavailable, err)
	}

	if len(payload.Historical) == 0 {
		return nil, fmt.Errorf("%w: fmp: empty result for %s", repository.ErrUnavailable, symbol)
	}

	bars := payload.Historical
	if len(bars) > lookbackDays {
		bars = bars[:lookbackDays]
	}

	series := make(models.PriceSeries, 0, len(bars))
	for _, bar := range bars {
		day, err := util.ParseDay(bar.Date)
		if err != nil {
			continue
		}
		series = append(series, models.PricePoint{Date: day, Close: bar.Close})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: fmp: no usable bars for %s", repository.ErrUnavailable, symbol)
	}

	return timeseries.NormalizeSeries(series), nil
}
