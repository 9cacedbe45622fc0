package models

// Data provenance for a risk report.
const (
	DataSourceMarket    = "market"
	DataSourceSynthetic = "synthetic"
)

// HoldingBreakdown is one row of the per-holding report section.
// Weight is a percentage rounded to one decimal.
type HoldingBreakdown struct {
	Symbol string  `json:"symbol"`
	Weight float64 `json:"weight"`
	Sector string  `json:"sector"`
}

// RiskReport is the full output of one portfolio analysis. Beta and
// SharpeRatio are nil when they cannot be computed; percentages are
// rounded to two decimals, the diversification score to an integer.
type RiskReport struct {
	Beta                 *float64                      `json:"beta"`
	Volatility           float64                       `json:"volatility"`
	SharpeRatio          *float64                      `json:"sharpe_ratio"`
	MaxDrawdown          float64                       `json:"max_drawdown"`
	VaR95                float64                       `json:"var_95"`
	DiversificationScore int                           `json:"diversification_score"`
	Correlations         map[string]map[string]float64 `json:"correlations"`
	NumHoldings          int                           `json:"num_holdings"`
	TotalValue           float64                       `json:"total_value"`
	HoldingsBreakdown    []HoldingBreakdown            `json:"holdings_breakdown"`
	DataSource           string                        `json:"data_source"`
	Cached               bool                          `json:"cached"`
}
