package services

import (
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/jwaldner/bspnl/internal/config"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Pricing = config.PricingConfig{
		Spot: 100, Strike: 100, Rate: 0.05, Volatility: 0.2, Maturity: 1,
		CallPurchase: 10, PutPurchase: 10,
	}
	cfg.Heatmap = config.HeatmapConfig{
		SpotMin: 80, SpotMax: 120, VolMin: 0.1, VolMax: 0.5, SpotSteps: 20, VolSteps: 20,
	}
	return cfg
}

func post(body string) *http.Request {
	return httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
}

func TestParsePriceRequestDefaults(t *testing.T) {
	s := NewRequestService(testConfig())

	in, err := s.ParsePriceRequest(post(`{"spot": 110, "rate": 0}`))
	if err != nil {
		t.Fatalf("ParsePriceRequest failed: %v", err)
	}
	if in.Spot != 110 {
		t.Errorf("spot = %v, want 110", in.Spot)
	}
	if in.Rate != 0 {
		t.Errorf("explicit zero rate should be kept, got %v", in.Rate)
	}
	if in.Strike != 100 || in.Volatility != 0.2 || in.CallPurchase != 10 {
		t.Errorf("defaults not applied: %+v", in)
	}

	empty, err := s.ParsePriceRequest(post(""))
	if err != nil {
		t.Fatalf("empty body should use defaults: %v", err)
	}
	if empty.Spot != 100 {
		t.Errorf("spot = %v, want default 100", empty.Spot)
	}
}

func TestParsePriceRequestErrors(t *testing.T) {
	s := NewRequestService(testConfig())

	if _, err := s.ParsePriceRequest(post(`{"spot": "abc"}`)); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for bad JSON, got %v", err)
	}
	if _, err := s.ParsePriceRequest(post(`{"spott": 1}`)); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for unknown field, got %v", err)
	}
	get := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, err := s.ParsePriceRequest(get); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for GET, got %v", err)
	}
	if _, err := s.ParsePriceRequest(post(`{"expiration": "tomorrow"}`)); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest for bad expiration, got %v", err)
	}
}

func TestExpirationOverridesMaturity(t *testing.T) {
	s := NewRequestService(testConfig())
	s.now = func() time.Time { return time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC) }

	in, err := s.ParsePriceRequest(post(`{"maturity": 3, "expiration": "2026-07-02"}`))
	if err != nil {
		t.Fatalf("ParsePriceRequest failed: %v", err)
	}
	if math.Abs(in.Maturity-182.0/365.0) > 1e-9 {
		t.Errorf("maturity = %v, want %v", in.Maturity, 182.0/365.0)
	}
}

func TestStrictVolatility(t *testing.T) {
	cfg := testConfig()
	s := NewRequestService(cfg)

	if _, err := s.ParsePriceRequest(post(`{"volatility": -0.1}`)); err != nil {
		t.Errorf("lenient mode should accept negative volatility, got %v", err)
	}

	cfg.Pricing.StrictVolatility = true
	if _, err := s.ParsePriceRequest(post(`{"volatility": -0.1}`)); !errors.Is(err, pricer.ErrInvalidParameter) {
		t.Errorf("strict mode should reject negative volatility, got %v", err)
	}
	if _, err := s.ParsePriceRequest(post(`{"volatility": 0}`)); err != nil {
		t.Errorf("strict mode should still accept zero volatility, got %v", err)
	}
	if _, err := s.ParseHeatmapRequest(post(`{"vol_min": -0.2}`)); !errors.Is(err, pricer.ErrInvalidParameter) {
		t.Errorf("strict mode should reject negative vol_min, got %v", err)
	}
}

func TestParseHeatmapRequest(t *testing.T) {
	s := NewRequestService(testConfig())

	p, err := s.ParseHeatmapRequest(post(`{"spot_steps": 5, "strike": 90, "put_purchase": 2.5}`))
	if err != nil {
		t.Fatalf("ParseHeatmapRequest failed: %v", err)
	}
	if p.SpotSteps != 5 || p.VolSteps != 20 {
		t.Errorf("steps = %dx%d, want 5x20", p.SpotSteps, p.VolSteps)
	}
	if p.Strike != 90 || p.PutPurchase != 2.5 || p.CallPurchase != 10 {
		t.Errorf("unexpected params %+v", p)
	}
	if p.SpotMin != 80 || p.VolMax != 0.5 {
		t.Errorf("range defaults not applied: %+v", p)
	}
}

func TestHeatmapFromQuery(t *testing.T) {
	s := NewRequestService(testConfig())

	q := url.Values{"spot_min": {"50"}, "vol_steps": {"7"}, "rate": {"0"}}
	p, err := s.HeatmapFromQuery(q)
	if err != nil {
		t.Fatalf("HeatmapFromQuery failed: %v", err)
	}
	if p.SpotMin != 50 || p.VolSteps != 7 || p.Rate != 0 {
		t.Errorf("unexpected params %+v", p)
	}

	if _, err := s.HeatmapFromQuery(url.Values{"vol_steps": {"x"}}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
	if _, err := s.HeatmapFromQuery(url.Values{"strike": {"1e"}}); !errors.Is(err, ErrBadRequest) {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestParseHelpers(t *testing.T) {
	s := NewRequestService(testConfig())
	if s.ParseFloat64("1.5", 0) != 1.5 || s.ParseFloat64("", 2) != 2 {
		t.Error("ParseFloat64 fallback broken")
	}
	if s.ParseInt("12", 0) != 12 || s.ParseInt("x", 3) != 3 {
		t.Error("ParseInt fallback broken")
	}
}
