package heatmap

import pricer "github.com/jwaldner/bspnl/pricer_lib"

const (
	VerdictUndervalued = "undervalued"
	VerdictOvervalued  = "overvalued"
)

// Valuation compares model prices with what was paid for each leg
type Valuation struct {
	Call        float64 `json:"call"`
	Put         float64 `json:"put"`
	CallPnL     float64 `json:"call_pnl"`
	PutPnL      float64 `json:"put_pnl"`
	CallVerdict string  `json:"call_verdict"`
	PutVerdict  string  `json:"put_verdict"`
}

// Value prices req and marks each leg undervalued when the model price
// exceeds its purchase price
func Value(req pricer.PricingRequest, callPurchase, putPurchase float64) (Valuation, error) {
	res, err := req.Price()
	if err != nil {
		return Valuation{}, err
	}

	return Valuation{
		Call:        res.Call,
		Put:         res.Put,
		CallPnL:     res.Call - callPurchase,
		PutPnL:      res.Put - putPurchase,
		CallVerdict: verdict(res.Call, callPurchase),
		PutVerdict:  verdict(res.Put, putPurchase),
	}, nil
}

func verdict(model, paid float64) string {
	if model > paid {
		return VerdictUndervalued
	}
	return VerdictOvervalued
}
