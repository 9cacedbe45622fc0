package providers

import (
	"context"
	"fmt"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/internal/domain/repository"
	"RiskLens/internal/timeseries"
	"RiskLens/pkg/http"
	"RiskLens/pkg/logger"
	"RiskLens/pkg/util"
)

const defaultYahooBaseURL = "https://query1.finance.yahoo.com"

// yahooChartResponse mirrors the v8 chart API payload. Closes are
// pointers because the API emits null for halted or missing bars.
type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Close []*float64 `json:"close"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Yahoo fetches daily closes from the public Yahoo Finance chart API.
// It needs no credential, which is why it sits first in the chain.
type Yahoo struct {
	client  *http.Client
	baseURL string
	log     *logger.Logger
}

// NewYahoo creates a Yahoo provider.
func NewYahoo(client *http.Client, log *logger.Logger) *Yahoo {
	return &Yahoo{
		client:  client,
		baseURL: defaultYahooBaseURL,
		log:     log,
	}
}

// WithBaseURL overrides the API host, used in tests.
func (y *Yahoo) WithBaseURL(base string) *Yahoo {
	y.baseURL = base
	return y
}

func (y *Yahoo) Name() string {
	return "yahoo"
}

// chartRange maps a lookback in days onto the coarse range buckets the
// chart API accepts.
func chartRange(days int) string {
	switch {
	case days <= 31:
		return "1mo"
	case days <= 93:
		return "3mo"
	case days <= 186:
		return "6mo"
	case days <= 366:
		return "1y"
	default:
		return "2y"
	}
}

func (y *Yahoo) Fetch(ctx context.Context, symbol string, lookbackDays int) (models.PriceSeries, error) {
	var payload yahooChartResponse

	err := y.client.GetJSON(ctx, &http.RequestOptions{
		URL: fmt.Sprintf("%s/v8/finance/chart/%s", y.baseURL, symbol),
		QueryParams: map[string][]string{
			"range":    {chartRange(lookbackDays)},
			"interval": {"1d"},
		},
		Headers: map[string]string{
			"User-Agent": "Mozilla/5.0",
		},
	}, &payload)
	if err != nil {
		y.log.Warn("yahoo fetch failed",
			logger.String("symbol", symbol),
			logger.Error(err),
		)
		return nil, fmt.Errorf("%w: yahoo: %v", repository.ErrUnavailable, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("%w: yahoo: %s", repository.ErrUnavailable, payload.Chart.Error.Code)
	}
	if len(payload.Chart.Result) == 0 || len(payload.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, fmt.Errorf("%w: yahoo: empty result for %s", repository.ErrUnavailable, symbol)
	}

	result := payload.Chart.Result[0]
	closes := result.Indicators.Quote[0].Close

	series := make(models.PriceSeries, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		if i >= len(closes) || closes[i] == nil {
			continue
		}
		series = append(series, models.PricePoint{
			Date:  util.Day(time.Unix(ts, 0).UTC()),
			Close: *closes[i],
		})
	}

	if len(series) == 0 {
		return nil, fmt.Errorf("%w: yahoo: no usable bars for %s", repository.ErrUnavailable, symbol)
	}

	series = timeseries.NormalizeSeries(series)
	if len(series) > lookbackDays {
		series = series[len(series)-lookbackDays:]
	}
	return series, nil
}
