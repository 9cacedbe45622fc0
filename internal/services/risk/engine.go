package risk

import (
	"math"
	"time"

	"RiskLens/internal/domain/models"
	"RiskLens/pkg/util"
)

// minBetaObservations is the smallest number of aligned portfolio and
// benchmark return observations that makes beta meaningful.
const minBetaObservations = 20

// tradingDaysPerYear annualizes daily statistics.
const tradingDaysPerYear = 252

// Engine computes the risk metrics of a portfolio from an aligned
// price table. It is stateless and safe for concurrent use.
type Engine struct {
	riskFreeRate float64
}

// NewEngine creates an engine with the given annual risk free rate
// (e.g. 0.02 for 2%).
func NewEngine(riskFreeRate float64) *Engine {
	return &Engine{riskFreeRate: riskFreeRate}
}

// Returns converts a close column into day-over-day simple returns.
// The undefined first observation is dropped, so the result has one
// fewer element than the input.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		if prices[i-1] == 0 {
			out = append(out, 0)
			continue
		}
		out = append(out, (prices[i]-prices[i-1])/prices[i-1])
	}
	return out
}

// PortfolioReturns is the weighted sum of per-symbol returns. Symbols
// absent from the weight map contribute nothing.
func (e *Engine) PortfolioReturns(table *models.PriceTable, weights map[string]float64) []float64 {
	if table.Empty() || len(table.Dates) < 2 {
		return nil
	}

	n := len(table.Dates) - 1
	portfolio := make([]float64, n)
	for _, symbol := range table.Symbols {
		w := weights[symbol]
		if w == 0 {
			continue
		}
		rets := Returns(table.Column(symbol))
		for i := 0; i < n && i < len(rets); i++ {
			portfolio[i] += w * rets[i]
		}
	}
	return portfolio
}

// Beta regresses portfolio returns against benchmark returns over
// their common dates. Returns nil with fewer than minBetaObservations
// aligned points or a flat benchmark.
func (e *Engine) Beta(portfolioReturns []float64, portfolioDates []time.Time, benchmark models.PriceSeries) *float64 {
	if len(benchmark) < 2 || len(portfolioReturns) == 0 {
		return nil
	}

	benchReturns := make(map[time.Time]float64, len(benchmark)-1)
	for i := 1; i < len(benchmark); i++ {
		prev := benchmark[i-1].Close
		if prev == 0 {
			continue
		}
		day := util.Day(benchmark[i].Date)
		benchReturns[day] = (benchmark[i].Close - prev) / prev
	}

	var ps, bs []float64
	for i, ret := range portfolioReturns {
		if i >= len(portfolioDates) {
			break
		}
		if b, ok := benchReturns[util.Day(portfolioDates[i])]; ok {
			ps = append(ps, ret)
			bs = append(bs, b)
		}
	}

	if len(ps) < minBetaObservations {
		return nil
	}
	benchVar := sampleCov(bs, bs)
	if benchVar == 0 {
		return nil
	}

	beta := roundTo(sampleCov(ps, bs)/benchVar, 2)
	return &beta
}

// Volatility annualizes the standard deviation of daily returns and
// reports it as a percentage.
func (e *Engine) Volatility(returns []float64) float64 {
	return roundTo(sampleStd(returns)*math.Sqrt(tradingDaysPerYear)*100, 2)
}

// SharpeRatio is the annualized excess return over annualized
// volatility. Nil when the return series has zero spread.
func (e *Engine) SharpeRatio(returns []float64) *float64 {
	std := sampleStd(returns)
	if std == 0 {
		return nil
	}
	sharpe := roundTo((mean(returns)*tradingDaysPerYear-e.riskFreeRate)/(std*math.Sqrt(tradingDaysPerYear)), 2)
	return &sharpe
}

// MaxDrawdown is the deepest peak-to-trough decline of the cumulative
// return index, as a positive percentage.
func (e *Engine) MaxDrawdown(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}

	value := 1.0
	peak := 1.0
	worst := 0.0
	for _, r := range returns {
		value *= 1 + r
		if value > peak {
			peak = value
		}
		dd := (value - peak) / peak
		if dd < worst {
			worst = dd
		}
	}
	return roundTo(math.Abs(worst)*100, 2)
}

// VaR95 is the loss at the 5th percentile of the daily return
// distribution, as a positive percentage.
func (e *Engine) VaR95(returns []float64) float64 {
	if len(returns) == 0 {
		return 0
	}
	return roundTo(math.Abs(percentile(returns, 5))*100, 2)
}

// DiversificationScore grades the portfolio 0-100 from holding count,
// sector spread and concentration of the largest position.
func (e *Engine) DiversificationScore(holdings []models.Holding, weights map[string]float64) int {
	countScore := math.Min(40, float64(len(holdings))*8)

	sectors := make(map[string]struct{})
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = models.SectorUnknown
		}
		sectors[sector] = struct{}{}
	}
	sectorScore := math.Min(40, float64(len(sectors))*10)

	var maxWeight float64
	for _, w := range weights {
		if w > maxWeight {
			maxWeight = w
		}
	}
	concentrationScore := 20 * (1 - clamp((maxWeight-0.2)/0.6, 0, 1))

	return int(math.Round(countScore + sectorScore + concentrationScore))
}

// CorrelationMatrix computes pairwise Pearson correlations of daily
// returns, rounded to three decimals. Nil with fewer than two symbols.
func (e *Engine) CorrelationMatrix(table *models.PriceTable) map[string]map[string]float64 {
	if table.Empty() || len(table.Symbols) < 2 {
		return nil
	}

	returns := make(map[string][]float64, len(table.Symbols))
	for _, symbol := range table.Symbols {
		returns[symbol] = Returns(table.Column(symbol))
	}

	matrix := make(map[string]map[string]float64, len(table.Symbols))
	for _, a := range table.Symbols {
		row := make(map[string]float64, len(table.Symbols))
		for _, b := range table.Symbols {
			if a == b {
				row[b] = 1.0
				continue
			}
			row[b] = roundTo(pearson(returns[a], returns[b]), 3)
		}
		matrix[a] = row
	}
	return matrix
}

// Analyze computes the full risk report. The benchmark series may be
// empty, which degrades beta to nil.
func (e *Engine) Analyze(table *models.PriceTable, benchmark models.PriceSeries, holdings []models.Holding) *models.RiskReport {
	weights, total := models.Weights(holdings)
	portfolioReturns := e.PortfolioReturns(table, weights)

	var returnDates []time.Time
	if len(table.Dates) > 1 {
		returnDates = table.Dates[1:]
	}

	breakdown := make([]models.HoldingBreakdown, 0, len(holdings))
	for _, h := range holdings {
		sector := h.Sector
		if sector == "" {
			sector = models.SectorUnknown
		}
		breakdown = append(breakdown, models.HoldingBreakdown{
			Symbol: h.Symbol,
			Weight: roundTo(weights[h.Symbol]*100, 1),
			Sector: sector,
		})
	}

	return &models.RiskReport{
		Beta:                 e.Beta(portfolioReturns, returnDates, benchmark),
		Volatility:           e.Volatility(portfolioReturns),
		SharpeRatio:          e.SharpeRatio(portfolioReturns),
		MaxDrawdown:          e.MaxDrawdown(portfolioReturns),
		VaR95:                e.VaR95(portfolioReturns),
		DiversificationScore: e.DiversificationScore(holdings, weights),
		Correlations:         e.CorrelationMatrix(table),
		NumHoldings:          len(holdings),
		TotalValue:           total,
		HoldingsBreakdown:    breakdown,
	}
}
