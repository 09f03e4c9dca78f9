package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jwaldner/bspnl/internal/config"
	"github.com/jwaldner/bspnl/internal/heatmap"
	"github.com/jwaldner/bspnl/internal/models"
	"github.com/jwaldner/bspnl/internal/utils"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

// ErrBadRequest marks malformed request bodies and query strings
var ErrBadRequest = errors.New("bad request")

// maxBodyBytes caps JSON request bodies
const maxBodyBytes = 1 << 20

// RequestService handles HTTP request parsing and fills in configured defaults
type RequestService struct {
	cfg *config.Config
	now func() time.Time
}

// NewRequestService creates a new request service
func NewRequestService(cfg *config.Config) *RequestService {
	return &RequestService{cfg: cfg, now: time.Now}
}

// ParsePriceRequest decodes a POST /api/price body and resolves defaults
func (s *RequestService) ParsePriceRequest(r *http.Request) (models.PricingInputs, error) {
	if r.Method != http.MethodPost {
		return models.PricingInputs{}, fmt.Errorf("%w: method not allowed: %s", ErrBadRequest, r.Method)
	}

	var req models.PriceRequest
	if err := decodeBody(r.Body, &req); err != nil {
		return models.PricingInputs{}, err
	}
	return s.ResolvePrice(req)
}

// ResolvePrice applies configured defaults to a price request
func (s *RequestService) ResolvePrice(req models.PriceRequest) (models.PricingInputs, error) {
	d := s.cfg.Pricing
	in := models.PricingInputs{
		Spot:          orDefault(req.Spot, d.Spot),
		Strike:        orDefault(req.Strike, d.Strike),
		Rate:          orDefault(req.Rate, d.Rate),
		Volatility:    orDefault(req.Volatility, d.Volatility),
		Maturity:      orDefault(req.Maturity, d.Maturity),
		DividendYield: orDefault(req.DividendYield, d.DividendYield),
		CallPurchase:  orDefault(req.CallPurchase, d.CallPurchase),
		PutPurchase:   orDefault(req.PutPurchase, d.PutPurchase),
	}

	if req.Expiration != "" {
		years, err := utils.YearsToExpiration(req.Expiration, s.now())
		if err != nil {
			return models.PricingInputs{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		in.Maturity = years
	}

	if err := s.checkVolatility(in.Volatility); err != nil {
		return models.PricingInputs{}, err
	}
	return in, nil
}

// ParseHeatmapRequest decodes a POST /api/heatmap body and resolves defaults
func (s *RequestService) ParseHeatmapRequest(r *http.Request) (heatmap.Params, error) {
	if r.Method != http.MethodPost {
		return heatmap.Params{}, fmt.Errorf("%w: method not allowed: %s", ErrBadRequest, r.Method)
	}

	var req models.HeatmapRequest
	if err := decodeBody(r.Body, &req); err != nil {
		return heatmap.Params{}, err
	}
	return s.ResolveHeatmap(req)
}

// ResolveHeatmap applies configured defaults to a heatmap request
func (s *RequestService) ResolveHeatmap(req models.HeatmapRequest) (heatmap.Params, error) {
	p, h := s.cfg.Pricing, s.cfg.Heatmap
	params := heatmap.Params{
		SpotMin:       orDefault(req.SpotMin, h.SpotMin),
		SpotMax:       orDefault(req.SpotMax, h.SpotMax),
		VolMin:        orDefault(req.VolMin, h.VolMin),
		VolMax:        orDefault(req.VolMax, h.VolMax),
		SpotSteps:     orDefault(req.SpotSteps, h.SpotSteps),
		VolSteps:      orDefault(req.VolSteps, h.VolSteps),
		Strike:        orDefault(req.Strike, p.Strike),
		Rate:          orDefault(req.Rate, p.Rate),
		Maturity:      orDefault(req.Maturity, p.Maturity),
		DividendYield: orDefault(req.DividendYield, p.DividendYield),
		CallPurchase:  orDefault(req.CallPurchase, p.CallPurchase),
		PutPurchase:   orDefault(req.PutPurchase, p.PutPurchase),
	}

	if req.Expiration != "" {
		years, err := utils.YearsToExpiration(req.Expiration, s.now())
		if err != nil {
			return heatmap.Params{}, fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		params.Maturity = years
	}

	if err := s.checkVolatility(params.VolMin); err != nil {
		return heatmap.Params{}, err
	}
	if err := s.checkVolatility(params.VolMax); err != nil {
		return heatmap.Params{}, err
	}
	return params, nil
}

// HeatmapFromQuery resolves heatmap parameters from URL query values (image and CSV endpoints)
func (s *RequestService) HeatmapFromQuery(q url.Values) (heatmap.Params, error) {
	var req models.HeatmapRequest
	floats := map[string]**float64{
		"spot_min":       &req.SpotMin,
		"spot_max":       &req.SpotMax,
		"vol_min":        &req.VolMin,
		"vol_max":        &req.VolMax,
		"strike":         &req.Strike,
		"rate":           &req.Rate,
		"maturity":       &req.Maturity,
		"dividend_yield": &req.DividendYield,
		"call_purchase":  &req.CallPurchase,
		"put_purchase":   &req.PutPurchase,
	}
	for key, dst := range floats {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return heatmap.Params{}, fmt.Errorf("%w: %s: %v", ErrBadRequest, key, err)
		}
		*dst = &v
	}

	ints := map[string]**int{
		"spot_steps": &req.SpotSteps,
		"vol_steps":  &req.VolSteps,
	}
	for key, dst := range ints {
		raw := q.Get(key)
		if raw == "" {
			continue
		}
		v, err := strconv.Atoi(raw)
		if err != nil {
			return heatmap.Params{}, fmt.Errorf("%w: %s: %v", ErrBadRequest, key, err)
		}
		*dst = &v
	}

	req.Expiration = q.Get("expiration")
	return s.ResolveHeatmap(req)
}

// ParseFloat64 safely parses a float64 with default fallback
func (s *RequestService) ParseFloat64(str string, defaultValue float64) float64 {
	if val, err := strconv.ParseFloat(str, 64); err == nil {
		return val
	}
	return defaultValue
}

// ParseInt safely parses an int with default fallback
func (s *RequestService) ParseInt(str string, defaultValue int) int {
	if val, err := strconv.Atoi(str); err == nil {
		return val
	}
	return defaultValue
}

// checkVolatility rejects negative volatility when strict mode is configured;
// otherwise the pricer treats it as zero
func (s *RequestService) checkVolatility(sigma float64) error {
	if s.cfg.Pricing.StrictVolatility && sigma < 0 {
		return fmt.Errorf("%w: volatility must not be negative, got %v", pricer.ErrInvalidParameter, sigma)
	}
	return nil
}

func decodeBody(body io.Reader, dst interface{}) error {
	dec := json.NewDecoder(io.LimitReader(body, maxBodyBytes))
	dec.DisallowUnknownFields()
	// an empty body means "all defaults"
	if err := dec.Decode(dst); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: failed to decode request: %v", ErrBadRequest, err)
	}
	return nil
}

func orDefault[T any](v *T, def T) T {
	if v != nil {
		return *v
	}
	return def
}
