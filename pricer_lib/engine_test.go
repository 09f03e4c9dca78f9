package pricer

import (
	"context"
	"errors"
	"testing"
)

func sampleRequests(n int) []PricingRequest {
	reqs := make([]PricingRequest, n)
	for i := range reqs {
		reqs[i] = PricingRequest{
			Spot:       80 + float64(i%41),
			Strike:     100,
			Rate:       0.05,
			Volatility: 0.1 + 0.01*float64(i%40),
			Maturity:   0.5,
		}
	}
	return reqs
}

func TestNewEngineModes(t *testing.T) {
	cases := []struct {
		mode    string
		workers int
		want    ExecutionMode
	}{
		{"sequential", 8, ExecutionModeSequential},
		{"parallel", 4, ExecutionModeParallel},
		{"auto", 4, ExecutionModeParallel},
		{"auto", 1, ExecutionModeSequential},
		{"bogus", 1, ExecutionModeSequential},
	}

	for _, tc := range cases {
		e := NewEngine(tc.mode, tc.workers)
		if e.Mode() != tc.want {
			t.Errorf("NewEngine(%q, %d).Mode() = %s, want %s", tc.mode, tc.workers, e.Mode(), tc.want)
		}
		if e.Workers() != tc.workers {
			t.Errorf("Workers() = %d, want %d", e.Workers(), tc.workers)
		}
	}

	if NewEngine("auto", 0).Workers() < 1 {
		t.Error("default worker count should be at least 1")
	}
}

func TestPriceBatchMatchesSinglePricing(t *testing.T) {
	reqs := sampleRequests(1000)

	for _, mode := range []string{"sequential", "parallel"} {
		engine := NewEngine(mode, 7)
		results, err := engine.PriceBatch(context.Background(), reqs)
		if err != nil {
			t.Fatalf("%s batch failed: %v", mode, err)
		}
		if len(results) != len(reqs) {
			t.Fatalf("%s: got %d results, want %d", mode, len(results), len(reqs))
		}
		for i, req := range reqs {
			want, _ := req.Price()
			if results[i] != want {
				t.Fatalf("%s: result %d = %+v, want %+v", mode, i, results[i], want)
			}
		}
	}
}

func TestPriceBatchFailsFast(t *testing.T) {
	reqs := sampleRequests(200)
	reqs[137].Spot = 0

	for _, mode := range []string{"sequential", "parallel"} {
		results, err := NewEngine(mode, 4).PriceBatch(context.Background(), reqs)
		if !errors.Is(err, ErrInvalidParameter) {
			t.Errorf("%s: expected ErrInvalidParameter, got %v", mode, err)
		}
		if results != nil {
			t.Errorf("%s: expected no partial results", mode)
		}
	}
}

func TestPriceBatchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, mode := range []string{"sequential", "parallel"} {
		_, err := NewEngine(mode, 4).PriceBatch(ctx, sampleRequests(100))
		if !errors.Is(err, context.Canceled) {
			t.Errorf("%s: expected context.Canceled, got %v", mode, err)
		}
	}
}

func TestPriceBatchEmpty(t *testing.T) {
	results, err := NewEngine("parallel", 4).PriceBatch(context.Background(), nil)
	if err != nil || results != nil {
		t.Errorf("expected (nil, nil), got (%v, %v)", results, err)
	}
}

// BenchmarkPrice benchmarks a single at-the-money quote
func BenchmarkPrice(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = Price(100, 100, 0.05, 0.20, 0.25, 0)
	}
}

// BenchmarkPriceBatch compares execution modes on a 50x50 heatmap-sized batch
func BenchmarkPriceBatch(b *testing.B) {
	reqs := sampleRequests(2500)
	for _, mode := range []string{"sequential", "parallel"} {
		engine := NewEngine(mode, 0)
		b.Run(mode, func(b *testing.B) {
			for i := 0; i < b.N; i++ {
				if _, err := engine.PriceBatch(context.Background(), reqs); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
