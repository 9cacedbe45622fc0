package models

// SectorUnknown is assigned to holdings that arrive without a sector.
const SectorUnknown = "Unknown"

// Holding is one equity position in the analyzed portfolio.
type Holding struct {
	Symbol string  `json:"symbol" validate:"required"`
	Shares float64 `json:"shares" validate:"gte=0"`
	Value  float64 `json:"value" validate:"gte=0"`
	Sector string  `json:"sector" default:"Unknown"`
}

// AnalyzeRequest is the payload accepted by POST /api/analyze-risk.
// UserID is optional; without it the analysis runs on the uncached
// fetch path.
type AnalyzeRequest struct {
	Holdings []Holding `json:"holdings" validate:"required,min=1,dive"`
	UserID   string    `json:"user_id"`
}

// Symbols returns the holding symbols in request order.
func Symbols(holdings []Holding) []string {
	out := make([]string, 0, len(holdings))
	for _, h := range holdings {
		out = append(out, h.Symbol)
	}
	return out
}

// Weights computes per-symbol portfolio weights and the total value.
// All weights are 0 when the total value is 0.
func Weights(holdings []Holding) (map[string]float64, float64) {
	var total float64
	for _, h := range holdings {
		total += h.Value
	}

	weights := make(map[string]float64, len(holdings))
	for _, h := range holdings {
		if total > 0 {
			weights[h.Symbol] = h.Value / total
		} else {
			weights[h.Symbol] = 0
		}
	}
	return weights, total
}
