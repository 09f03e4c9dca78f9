package pricer

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/stat/distuv"
)

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestPriceReferenceCase(t *testing.T) {
	res, err := Price(100, 100, 0.05, 0.2, 1.0, 0.0)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	if !almostEqual(res.Call, 10.450583572185565, 1e-8) {
		t.Errorf("call = %.10f, want 10.4505835722", res.Call)
	}
	if !almostEqual(res.Put, 5.573526022256971, 1e-8) {
		t.Errorf("put = %.10f, want 5.5735260223", res.Put)
	}
	t.Logf("✅ call=%.4f put=%.4f", res.Call, res.Put)
}

func TestPriceAtExpiryIsIntrinsic(t *testing.T) {
	res, err := Price(110, 100, 0.05, 0.2, 0, 0)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	if res.Call != 10.0 || res.Put != 0.0 {
		t.Errorf("got (%v, %v), want (10, 0)", res.Call, res.Put)
	}

	// negative maturity settles too and ignores rate, vol and dividend
	res, err = Price(90, 100, 0.5, -3, -1, 0.9)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	if res.Call != 0.0 || res.Put != 10.0 {
		t.Errorf("got (%v, %v), want (0, 10)", res.Call, res.Put)
	}
}

func TestPriceZeroVolatility(t *testing.T) {
	res, err := Price(100, 95, 0.05, 0, 1, 0)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	want := 100 - 95*math.Exp(-0.05)
	if !almostEqual(res.Call, want, 1e-12) {
		t.Errorf("call = %v, want %v", res.Call, want)
	}
	if res.Put != 0 {
		t.Errorf("put = %v, want 0", res.Put)
	}

	// negative volatility is coerced to the same branch
	neg, err := Price(100, 95, 0.05, -0.3, 1, 0)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	if neg != res {
		t.Errorf("negative vol = %+v, want %+v", neg, res)
	}
}

func TestPriceZeroVolatilityWithDividend(t *testing.T) {
	res, err := Price(100, 100, 0.01, 0, 2, 0.05)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}

	forward := 100 * math.Exp(-0.05*2)
	discounted := 100 * math.Exp(-0.01*2)
	if res.Call != 0 {
		t.Errorf("call = %v, want 0", res.Call)
	}
	if !almostEqual(res.Put, discounted-forward, 1e-12) {
		t.Errorf("put = %v, want %v", res.Put, discounted-forward)
	}
}

func TestPriceRejectsNonPositiveSpotOrStrike(t *testing.T) {
	cases := []struct {
		name string
		S, K float64
	}{
		{"zero spot", 0, 100},
		{"negative strike", 100, -5},
		{"zero strike", 100, 0},
		{"negative spot", -1, 100},
		{"NaN spot", math.NaN(), 100},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := Price(tc.S, tc.K, 0.05, 0.2, 1, 0)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Fatalf("expected ErrInvalidParameter, got %v", err)
			}
			if res != (PricingResult{}) {
				t.Errorf("expected zero result, got %+v", res)
			}
		})
	}
}

func TestPutCallParity(t *testing.T) {
	for _, S := range []float64{50, 80, 100, 120, 250} {
		for _, K := range []float64{60, 100, 140} {
			for _, sigma := range []float64{0.05, 0.2, 0.8} {
				for _, T := range []float64{0.01, 0.5, 3} {
					for _, q := range []float64{0, 0.03} {
						r := 0.04
						res, err := Price(S, K, r, sigma, T, q)
						if err != nil {
							t.Fatalf("Price failed: %v", err)
						}
						left := res.Call - res.Put
						right := S*math.Exp(-q*T) - K*math.Exp(-r*T)
						tol := 1e-6 * math.Max(1, math.Abs(right))
						if !almostEqual(left, right, tol) {
							t.Errorf("parity S=%v K=%v sigma=%v T=%v q=%v: %v != %v", S, K, sigma, T, q, left, right)
						}
					}
				}
			}
		}
	}
}

func TestContinuityAtZeroVolatility(t *testing.T) {
	for _, K := range []float64{80, 95, 100, 105, 130} {
		tiny, err := Price(100, K, 0.05, 1e-6, 1, 0.02)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		zero, err := Price(100, K, 0.05, 0, 1, 0.02)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		if !almostEqual(tiny.Call, zero.Call, 1e-3) || !almostEqual(tiny.Put, zero.Put, 1e-3) {
			t.Errorf("K=%v: sigma=1e-6 %+v vs sigma=0 %+v", K, tiny, zero)
		}
	}
}

func TestContinuityAtExpiry(t *testing.T) {
	for _, S := range []float64{80, 99, 110} {
		near, err := Price(S, 100, 0.05, 0.2, 1e-10, 0)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		expired, err := Price(S, 100, 0.05, 0.2, 0, 0)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		if !almostEqual(near.Call, expired.Call, 1e-4) || !almostEqual(near.Put, expired.Put, 1e-4) {
			t.Errorf("S=%v: T=1e-10 %+v vs T=0 %+v", S, near, expired)
		}
	}
}

func TestNonNegative(t *testing.T) {
	for _, S := range []float64{1, 10, 100, 1000, 1e5} {
		for _, sigma := range []float64{1e-4, 0.01, 0.3, 2} {
			for _, T := range []float64{1e-6, 0.1, 10} {
				res, err := Price(S, 100, 0.1, sigma, T, 0.05)
				if err != nil {
					t.Fatalf("Price failed: %v", err)
				}
				if res.Call < 0 || res.Put < 0 {
					t.Errorf("negative value S=%v sigma=%v T=%v: %+v", S, sigma, T, res)
				}
			}
		}
	}
}

func TestMonotonicInSpot(t *testing.T) {
	prev, err := Price(50, 100, 0.05, 0.25, 1, 0.01)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	for S := 51.0; S <= 200; S++ {
		cur, err := Price(S, 100, 0.05, 0.25, 1, 0.01)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		if cur.Call < prev.Call {
			t.Errorf("call decreased at S=%v: %v < %v", S, cur.Call, prev.Call)
		}
		if cur.Put > prev.Put {
			t.Errorf("put increased at S=%v: %v > %v", S, cur.Put, prev.Put)
		}
		prev = cur
	}
}

func TestMonotonicInVolatility(t *testing.T) {
	prev, err := Price(100, 105, 0.05, 0, 1, 0)
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	for sigma := 0.01; sigma <= 1.5; sigma += 0.01 {
		cur, err := Price(100, 105, 0.05, sigma, 1, 0)
		if err != nil {
			t.Fatalf("Price failed: %v", err)
		}
		if cur.Call < prev.Call-1e-12 || cur.Put < prev.Put-1e-12 {
			t.Errorf("value decreased at sigma=%v: %+v < %+v", sigma, cur, prev)
		}
		prev = cur
	}
}

func TestPriceIsDeterministic(t *testing.T) {
	first, _ := Price(123.45, 117, 0.031, 0.37, 0.77, 0.012)
	for i := 0; i < 100; i++ {
		again, _ := Price(123.45, 117, 0.031, 0.37, 0.77, 0.012)
		if math.Float64bits(again.Call) != math.Float64bits(first.Call) ||
			math.Float64bits(again.Put) != math.Float64bits(first.Put) {
			t.Fatalf("run %d differs: %+v vs %+v", i, again, first)
		}
	}
}

func TestPricingRequestPrice(t *testing.T) {
	req := PricingRequest{Spot: 100, Strike: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1}
	got, err := req.Price()
	if err != nil {
		t.Fatalf("Price failed: %v", err)
	}
	want, _ := Price(100, 100, 0.05, 0.2, 1, 0)
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestNormCDFAccuracy(t *testing.T) {
	ref := distuv.UnitNormal
	for x := -10.0; x <= 10.0; x += 0.01 {
		if diff := math.Abs(NormCDF(x) - ref.CDF(x)); diff > 1e-7 {
			t.Fatalf("NormCDF(%v) off by %g", x, diff)
		}
	}
	if NormCDF(0) != 0.5 {
		t.Errorf("NormCDF(0) = %v, want 0.5", NormCDF(0))
	}
}

func TestNormPDFAccuracy(t *testing.T) {
	ref := distuv.UnitNormal
	for x := -10.0; x <= 10.0; x += 0.01 {
		if diff := math.Abs(NormPDF(x) - ref.Prob(x)); diff > 1e-12 {
			t.Fatalf("NormPDF(%v) off by %g", x, diff)
		}
	}
}
