package pricer

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidParameter is returned when spot or strike is not strictly positive
var ErrInvalidParameter = errors.New("invalid parameter")

const sqrt2Pi = 2.5066282746310002

// PricingRequest holds the market and contract inputs for one European option
type PricingRequest struct {
	Spot          float64 `json:"spot"`
	Strike        float64 `json:"strike"`
	Rate          float64 `json:"rate"`
	Volatility    float64 `json:"volatility"`
	Maturity      float64 `json:"maturity"`
	DividendYield float64 `json:"dividend_yield"`
}

// PricingResult holds the fair values of the call and the put
type PricingResult struct {
	Call float64 `json:"call"`
	Put  float64 `json:"put"`
}

// Price evaluates the request with Price
func (pr PricingRequest) Price() (PricingResult, error) {
	return Price(pr.Spot, pr.Strike, pr.Rate, pr.Volatility, pr.Maturity, pr.DividendYield)
}

// Price returns Black-Scholes-Merton call and put values for a European option.
//
// Parameters:
//   - S: spot price (> 0)
//   - K: strike price (> 0)
//   - r: risk-free rate, annualized continuous
//   - sigma: volatility, annualized; values <= 0 are treated as zero volatility
//   - T: time to maturity in years; values <= 0 mean the option has settled
//   - q: continuous dividend yield
//
// Expiry is checked before volatility, so an expired option always returns its
// intrinsic payoff.
func Price(S, K, r, sigma, T, q float64) (PricingResult, error) {
	if !(S > 0) {
		return PricingResult{}, fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParameter, S)
	}
	if !(K > 0) {
		return PricingResult{}, fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameter, K)
	}

	if T <= 0 {
		return PricingResult{
			Call: math.Max(S-K, 0),
			Put:  math.Max(K-S, 0),
		}, nil
	}

	forward := S * math.Exp(-q*T)
	discountedStrike := K * math.Exp(-r*T)

	if sigma <= 0 {
		return PricingResult{
			Call: math.Max(forward-discountedStrike, 0),
			Put:  math.Max(discountedStrike-forward, 0),
		}, nil
	}

	volSqrtT := sigma * math.Sqrt(T)
	d1 := (math.Log(S/K) + (r-q+0.5*sigma*sigma)*T) / volSqrtT
	d2 := d1 - volSqrtT

	call := forward*NormCDF(d1) - discountedStrike*NormCDF(d2)
	put := discountedStrike*NormCDF(-d2) - forward*NormCDF(-d1)

	// Deep in/out of the money the subtraction can round slightly below zero
	return PricingResult{
		Call: math.Max(call, 0),
		Put:  math.Max(put, 0),
	}, nil
}

// NormCDF is the standard normal cumulative distribution function
func NormCDF(x float64) float64 {
	return 0.5 * (1.0 + math.Erf(x/math.Sqrt2))
}

// NormPDF is the standard normal probability density function
func NormPDF(x float64) float64 {
	return math.Exp(-0.5*x*x) / sqrt2Pi
}
