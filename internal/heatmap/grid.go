package heatmap

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/jwaldner/bspnl/internal/logger"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

// MaxSteps bounds each grid axis so a single request cannot demand unbounded work
const MaxSteps = 500

// ErrInvalidGrid is returned for malformed sweep ranges or step counts
var ErrInvalidGrid = errors.New("invalid grid")

// Kind selects the call or the put surface of a grid
type Kind string

const (
	KindCall Kind = "call"
	KindPut  Kind = "put"
)

// ParseKind accepts "call" or "put"
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindCall, KindPut:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: unknown option kind %q", ErrInvalidGrid, s)
}

// Title is the heading used by renderers
func (k Kind) Title() string {
	if k == KindPut {
		return "Put Option PnL Heatmap"
	}
	return "Call Option PnL Heatmap"
}

// Params describes a spot × volatility sweep with everything else held fixed
type Params struct {
	SpotMin       float64 `json:"spot_min"`
	SpotMax       float64 `json:"spot_max"`
	VolMin        float64 `json:"vol_min"`
	VolMax        float64 `json:"vol_max"`
	SpotSteps     int     `json:"spot_steps"`
	VolSteps      int     `json:"vol_steps"`
	Strike        float64 `json:"strike"`
	Rate          float64 `json:"rate"`
	Maturity      float64 `json:"maturity"`
	DividendYield float64 `json:"dividend_yield"`
	CallPurchase  float64 `json:"call_purchase"`
	PutPurchase   float64 `json:"put_purchase"`
}

// Validate checks step counts and that every value is finite.
// Positivity of spot and strike is left to the pricer.
func (p Params) Validate() error {
	if p.SpotSteps < 1 || p.SpotSteps > MaxSteps {
		return fmt.Errorf("%w: spot_steps must be in [1, %d], got %d", ErrInvalidGrid, MaxSteps, p.SpotSteps)
	}
	if p.VolSteps < 1 || p.VolSteps > MaxSteps {
		return fmt.Errorf("%w: vol_steps must be in [1, %d], got %d", ErrInvalidGrid, MaxSteps, p.VolSteps)
	}

	values := map[string]float64{
		"spot_min":       p.SpotMin,
		"spot_max":       p.SpotMax,
		"vol_min":        p.VolMin,
		"vol_max":        p.VolMax,
		"strike":         p.Strike,
		"rate":           p.Rate,
		"maturity":       p.Maturity,
		"dividend_yield": p.DividendYield,
		"call_purchase":  p.CallPurchase,
		"put_purchase":   p.PutPurchase,
	}
	for name, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s must be finite", ErrInvalidGrid, name)
		}
	}
	return nil
}

// Grid holds PnL surfaces indexed [vol][spot]
type Grid struct {
	Params  Params      `json:"params"`
	Spots   []float64   `json:"spots"`
	Vols    []float64   `json:"vols"`
	CallPnL [][]float64 `json:"call_pnl"`
	PutPnL  [][]float64 `json:"put_pnl"`
}

// Surface returns the PnL matrix for kind
func (g *Grid) Surface(kind Kind) [][]float64 {
	if kind == KindPut {
		return g.PutPnL
	}
	return g.CallPnL
}

// Range returns the smallest and largest PnL on the surface
func (g *Grid) Range(kind Kind) (min, max float64) {
	min, max = math.Inf(1), math.Inf(-1)
	for _, row := range g.Surface(kind) {
		for _, v := range row {
			min = math.Min(min, v)
			max = math.Max(max, v)
		}
	}
	return min, max
}

// SymmetricBound returns the largest absolute PnL so a diverging colormap
// can be centered on zero. Never returns 0.
func (g *Grid) SymmetricBound(kind Kind) float64 {
	min, max := g.Range(kind)
	bound := math.Max(math.Abs(min), math.Abs(max))
	if bound == 0 || math.IsInf(bound, 0) {
		return 1
	}
	return bound
}

// Linspace returns n evenly spaced values from min to max inclusive
func Linspace(min, max float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: need at least one point, got %d", ErrInvalidGrid, n)
	}
	out := make([]float64, n)
	if n == 1 {
		out[0] = min
		return out, nil
	}
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out, nil
}

// Builder sweeps the pricer across a grid using a batch engine
type Builder struct {
	engine *pricer.Engine
}

// NewBuilder creates a grid builder on top of engine
func NewBuilder(engine *pricer.Engine) *Builder {
	return &Builder{engine: engine}
}

// Build prices every (spot, vol) cell. Any pricing failure aborts the build.
func (b *Builder) Build(ctx context.Context, p Params) (*Grid, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	spots, err := Linspace(p.SpotMin, p.SpotMax, p.SpotSteps)
	if err != nil {
		return nil, err
	}
	vols, err := Linspace(p.VolMin, p.VolMax, p.VolSteps)
	if err != nil {
		return nil, err
	}

	requests := make([]pricer.PricingRequest, 0, len(spots)*len(vols))
	for _, vol := range vols {
		for _, spot := range spots {
			requests = append(requests, pricer.PricingRequest{
				Spot:          spot,
				Strike:        p.Strike,
				Rate:          p.Rate,
				Volatility:    vol,
				Maturity:      p.Maturity,
				DividendYield: p.DividendYield,
			})
		}
	}

	start := time.Now()
	results, err := b.engine.PriceBatch(ctx, requests)
	if err != nil {
		return nil, fmt.Errorf("building %dx%d grid: %w", len(vols), len(spots), err)
	}
	logger.Debug.Printf("⚡ GRID: priced %d cells in %v (mode %s)", len(results), time.Since(start), b.engine.Mode())

	grid := &Grid{
		Params:  p,
		Spots:   spots,
		Vols:    vols,
		CallPnL: make([][]float64, len(vols)),
		PutPnL:  make([][]float64, len(vols)),
	}
	for i := range vols {
		grid.CallPnL[i] = make([]float64, len(spots))
		grid.PutPnL[i] = make([]float64, len(spots))
		for j := range spots {
			res := results[i*len(spots)+j]
			grid.CallPnL[i][j] = res.Call - p.CallPurchase
			grid.PutPnL[i][j] = res.Put - p.PutPurchase
		}
	}

	return grid, nil
}
