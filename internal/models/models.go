package models

import (
	"github.com/jwaldner/bspnl/internal/heatmap"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

// FieldValue represents a field with both raw data and formatted display
type FieldValue struct {
	Raw     interface{} `json:"raw"`     // For CSV/sorting: 1234.56
	Display string      `json:"display"` // For UI: "$1,234.56"
	Type    string      `json:"type"`    // For CSS: "currency"
}

// PriceRequest is the body of POST /api/price.
// Nil fields take the configured defaults; pointers keep an explicit 0 distinct from "missing".
type PriceRequest struct {
	Spot          *float64 `json:"spot"`
	Strike        *float64 `json:"strike"`
	Rate          *float64 `json:"rate"`
	Volatility    *float64 `json:"volatility"`
	Maturity      *float64 `json:"maturity"`
	Expiration    string   `json:"expiration,omitempty"` // YYYY-MM-DD or "monthly", overrides maturity
	DividendYield *float64 `json:"dividend_yield"`
	CallPurchase  *float64 `json:"call_purchase"`
	PutPurchase   *float64 `json:"put_purchase"`
}

// PriceResponse is returned by POST /api/price
type PriceResponse struct {
	Success   bool                  `json:"success"`
	Call      float64               `json:"call"`
	Put       float64               `json:"put"`
	Formatted map[string]FieldValue `json:"formatted"`
	Valuation heatmap.Valuation     `json:"valuation"`
	Inputs    PricingInputs         `json:"inputs"`
}

// PricingInputs echoes the fully resolved parameters a price was computed with
type PricingInputs struct {
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	Rate          float64 `json:"rate"`
	Volatility    float64 `json:"volatility"`
	Maturity      float64 `json:"maturity"`
	DividendYield float64 `json:"dividend_yield"`
	CallPurchase  float64 `json:"call_purchase"`
	PutPurchase   float64 `json:"put_purchase"`
}

// HeatmapRequest is the body of POST /api/heatmap; nil fields take configured defaults
type HeatmapRequest struct {
	SpotMin       *float64 `json:"spot_min"`
	SpotMax       *float64 `json:"spot_max"`
	VolMin        *float64 `json:"vol_min"`
	VolMax        *float64 `json:"vol_max"`
	SpotSteps     *int     `json:"spot_steps"`
	VolSteps      *int     `json:"vol_steps"`
	Strike        *float64 `json:"strike"`
	Rate          *float64 `json:"rate"`
	Maturity      *float64 `json:"maturity"`
	Expiration    string   `json:"expiration,omitempty"`
	DividendYield *float64 `json:"dividend_yield"`
	CallPurchase  *float64 `json:"call_purchase"`
	PutPurchase   *float64 `json:"put_purchase"`
}

// HeatmapResponse is returned by POST /api/heatmap
type HeatmapResponse struct {
	Success bool          `json:"success"`
	Grid    *heatmap.Grid `json:"grid"`
	Meta    ResponseMeta  `json:"meta"`
}

// ResponseMeta describes how a grid was computed
type ResponseMeta struct {
	Timestamp       string  `json:"timestamp"`
	ComputeDuration float64 `json:"compute_duration"`
	ExecutionMode   string  `json:"execution_mode"`
	Workers         int     `json:"workers"`
	Cells           int     `json:"cells"`
	CallPnLMin      float64 `json:"call_pnl_min"`
	CallPnLMax      float64 `json:"call_pnl_max"`
	PutPnLMin       float64 `json:"put_pnl_min"`
	PutPnLMax       float64 `json:"put_pnl_max"`
}

// ErrorResponse is the JSON body for failed API calls
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Request converts the resolved inputs into a pricer request
func (in PricingInputs) Request() pricer.PricingRequest {
	return pricer.PricingRequest{
		Spot:          in.Spot,
		Strike:        in.Strike,
		Rate:          in.Rate,
		Volatility:    in.Volatility,
		Maturity:      in.Maturity,
		DividendYield: in.DividendYield,
	}
}
