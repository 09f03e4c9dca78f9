package handlers

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/jwaldner/bspnl/internal/config"
	"github.com/jwaldner/bspnl/internal/export"
	"github.com/jwaldner/bspnl/internal/heatmap"
	"github.com/jwaldner/bspnl/internal/logger"
	"github.com/jwaldner/bspnl/internal/models"
	"github.com/jwaldner/bspnl/internal/render"
	"github.com/jwaldner/bspnl/internal/services"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

//go:embed templates/home.html
var templateFS embed.FS

// PricingHandler serves pricing and heatmap endpoints - HTTP layer only
type PricingHandler struct {
	config   *config.Config
	engine   *pricer.Engine
	builder  *heatmap.Builder
	requests *services.RequestService
	home     *template.Template
}

// NewPricingHandler creates a new pricing handler
func NewPricingHandler(cfg *config.Config, engine *pricer.Engine) *PricingHandler {
	h := &PricingHandler{
		config:   cfg,
		engine:   engine,
		builder:  heatmap.NewBuilder(engine),
		requests: services.NewRequestService(cfg),
	}

	funcMap := template.FuncMap{
		"appTitle": func() string {
			return "Black-Scholes Option PnL Heatmaps & Valuation"
		},
		"maxSteps": func() int {
			return heatmap.MaxSteps
		},
		"executionMode": func() string {
			return string(h.engine.Mode())
		},
		"verdictText": func(verdict string) string {
			if verdict == heatmap.VerdictUndervalued {
				return "Undervalued (usually BUY)"
			}
			return "Overvalued (usually SELL)"
		},
	}
	h.home = template.Must(template.New("home.html").Funcs(funcMap).ParseFS(templateFS, "templates/home.html"))

	return h
}

// Routes registers every endpoint on r
func (h *PricingHandler) Routes(r *mux.Router) {
	r.HandleFunc("/", h.HomeHandler).Methods("GET")
	r.HandleFunc("/api/price", h.PriceHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/heatmap", h.HeatmapHandler).Methods("POST", "OPTIONS")
	r.HandleFunc("/api/health", h.HealthHandler).Methods("GET")
	r.HandleFunc("/heatmap/{kind:call|put}.png", h.HeatmapImageHandler).Methods("GET")
	r.HandleFunc("/heatmap/{kind:call|put}.csv", h.HeatmapCSVHandler).Methods("GET")
}

type homeData struct {
	Inputs    models.PricingInputs
	Grid      heatmap.Params
	Call      models.FieldValue
	Put       models.FieldValue
	Valuation heatmap.Valuation
	Query     template.URL
	Error     string
}

// HomeHandler renders the parameter form, current valuation and both heatmaps
func (h *PricingHandler) HomeHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	d := h.config.Pricing

	data := homeData{
		Inputs: models.PricingInputs{
			Spot:          h.requests.ParseFloat64(q.Get("spot"), d.Spot),
			Strike:        h.requests.ParseFloat64(q.Get("strike"), d.Strike),
			Rate:          h.requests.ParseFloat64(q.Get("rate"), d.Rate),
			Volatility:    h.requests.ParseFloat64(q.Get("volatility"), d.Volatility),
			Maturity:      h.requests.ParseFloat64(q.Get("maturity"), d.Maturity),
			DividendYield: h.requests.ParseFloat64(q.Get("dividend_yield"), d.DividendYield),
			CallPurchase:  h.requests.ParseFloat64(q.Get("call_purchase"), d.CallPurchase),
			PutPurchase:   h.requests.ParseFloat64(q.Get("put_purchase"), d.PutPurchase),
		},
	}

	grid, err := h.requests.HeatmapFromQuery(q)
	data.Grid = grid
	if err != nil {
		data.Error = err.Error()
	} else {
		valuation, err := heatmap.Value(data.Inputs.Request(), data.Inputs.CallPurchase, data.Inputs.PutPurchase)
		if err != nil {
			data.Error = err.Error()
		} else {
			data.Valuation = valuation
			data.Call = models.FormatCurrency(valuation.Call)
			data.Put = models.FormatCurrency(valuation.Put)
		}
	}
	data.Query = template.URL(gridQuery(data.Inputs, grid).Encode())

	var buf bytes.Buffer
	if err := h.home.Execute(&buf, data); err != nil {
		logger.Error.Printf("❌ Template execution error: %v", err)
		http.Error(w, "Template execution error: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(buf.Bytes())
}

// PriceHandler prices a single option pair
func (h *PricingHandler) PriceHandler(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, "POST, OPTIONS") {
		return
	}

	in, err := h.requests.ParsePriceRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	valuation, err := heatmap.Value(in.Request(), in.CallPurchase, in.PutPurchase)
	if err != nil {
		logger.Warn.Printf("⚠️ PRICE: rejected %+v: %v", in, err)
		writeError(w, err)
		return
	}
	logger.Verbose.Printf("💰 PRICE: S=%.4f K=%.4f r=%.4f σ=%.4f T=%.4f q=%.4f → call=%.6f put=%.6f",
		in.Spot, in.Strike, in.Rate, in.Volatility, in.Maturity, in.DividendYield, valuation.Call, valuation.Put)

	writeJSON(w, http.StatusOK, models.PriceResponse{
		Success: true,
		Call:    valuation.Call,
		Put:     valuation.Put,
		Formatted: map[string]models.FieldValue{
			"call":         models.FormatCurrency(valuation.Call),
			"put":          models.FormatCurrency(valuation.Put),
			"call_pnl":     models.FormatPnL(valuation.CallPnL),
			"put_pnl":      models.FormatPnL(valuation.PutPnL),
			"volatility":   models.FormatPercentage(in.Volatility),
			"rate":         models.FormatPercentage(in.Rate),
			"call_verdict": models.FormatText(valuation.CallVerdict),
			"put_verdict":  models.FormatText(valuation.PutVerdict),
		},
		Valuation: valuation,
		Inputs:    in,
	})
}

// HeatmapHandler returns both PnL surfaces as JSON
func (h *PricingHandler) HeatmapHandler(w http.ResponseWriter, r *http.Request) {
	if setCORS(w, r, "POST, OPTIONS") {
		return
	}

	params, err := h.requests.ParseHeatmapRequest(r)
	if err != nil {
		writeError(w, err)
		return
	}

	start := time.Now()
	grid, err := h.builder.Build(r.Context(), params)
	if err != nil {
		logger.Warn.Printf("⚠️ HEATMAP: build failed: %v", err)
		writeError(w, err)
		return
	}
	duration := time.Since(start)

	callMin, callMax := grid.Range(heatmap.KindCall)
	putMin, putMax := grid.Range(heatmap.KindPut)
	logger.Info.Printf("📊 HEATMAP: %dx%d grid in %v", len(grid.Vols), len(grid.Spots), duration)

	writeJSON(w, http.StatusOK, models.HeatmapResponse{
		Success: true,
		Grid:    grid,
		Meta: models.ResponseMeta{
			Timestamp:       time.Now().Format(time.RFC3339),
			ComputeDuration: duration.Seconds(),
			ExecutionMode:   string(h.engine.Mode()),
			Workers:         h.engine.Workers(),
			Cells:           len(grid.Vols) * len(grid.Spots),
			CallPnLMin:      callMin,
			CallPnLMax:      callMax,
			PutPnLMin:       putMin,
			PutPnLMax:       putMax,
		},
	})
}

// HeatmapImageHandler renders one surface as PNG from query parameters
func (h *PricingHandler) HeatmapImageHandler(w http.ResponseWriter, r *http.Request) {
	kind, grid, ok := h.gridFromRequest(w, r)
	if !ok {
		return
	}

	q := r.URL.Query()
	width := h.requests.ParseInt(q.Get("width"), h.config.Heatmap.ImageWidth)
	height := h.requests.ParseInt(q.Get("height"), h.config.Heatmap.ImageHeight)
	if width <= 0 || width > 4000 || height <= 0 || height > 4000 {
		writeError(w, fmt.Errorf("%w: image size %dx%d out of range", services.ErrBadRequest, width, height))
		return
	}

	var buf bytes.Buffer
	if err := render.WritePNG(&buf, grid, kind, width, height); err != nil {
		logger.Error.Printf("❌ HEATMAP: rendering %s failed: %v", kind, err)
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Write(buf.Bytes())
}

// HeatmapCSVHandler downloads one surface as CSV
func (h *PricingHandler) HeatmapCSVHandler(w http.ResponseWriter, r *http.Request) {
	kind, grid, ok := h.gridFromRequest(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteGridCSV(&buf, grid, kind); err != nil {
		logger.Error.Printf("❌ CSV: export failed: %v", err)
		writeError(w, err)
		return
	}

	filename := export.Filename(h.config.CSV.FilenameFormat, kind, time.Now())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Write(buf.Bytes())
}

// HealthHandler reports liveness and the resolved engine mode
func (h *PricingHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":         "ok",
		"execution_mode": h.engine.Mode(),
		"workers":        h.engine.Workers(),
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}

func (h *PricingHandler) gridFromRequest(w http.ResponseWriter, r *http.Request) (heatmap.Kind, *heatmap.Grid, bool) {
	kind, err := heatmap.ParseKind(mux.Vars(r)["kind"])
	if err != nil {
		writeError(w, err)
		return "", nil, false
	}

	params, err := h.requests.HeatmapFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return "", nil, false
	}

	grid, err := h.builder.Build(r.Context(), params)
	if err != nil {
		logger.Warn.Printf("⚠️ HEATMAP: build failed: %v", err)
		writeError(w, err)
		return "", nil, false
	}
	return kind, grid, true
}

// gridQuery carries the form state into the image and CSV links
func gridQuery(in models.PricingInputs, p heatmap.Params) url.Values {
	f := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }
	return url.Values{
		"strike":         {f(in.Strike)},
		"rate":           {f(in.Rate)},
		"maturity":       {f(in.Maturity)},
		"dividend_yield": {f(in.DividendYield)},
		"call_purchase":  {f(in.CallPurchase)},
		"put_purchase":   {f(in.PutPurchase)},
		"spot_min":       {f(p.SpotMin)},
		"spot_max":       {f(p.SpotMax)},
		"vol_min":        {f(p.VolMin)},
		"vol_max":        {f(p.VolMax)},
		"spot_steps":     {strconv.Itoa(p.SpotSteps)},
		"vol_steps":      {strconv.Itoa(p.VolSteps)},
	}
}

// setCORS writes CORS headers and reports whether the request was a preflight
func setCORS(w http.ResponseWriter, r *http.Request, methods string) bool {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", methods)
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	jsonBytes, err := json.Marshal(v)
	if err != nil {
		logger.Error.Printf("❌ JSON encoding failed: %v", err)
		http.Error(w, "JSON encoding failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Length", strconv.Itoa(len(jsonBytes)))
	w.WriteHeader(status)
	if _, err := w.Write(jsonBytes); err != nil {
		logger.Error.Printf("❌ Failed to write JSON response: %v", err)
	}
}

// writeError maps input errors to 400 and everything else to 500
func writeError(w http.ResponseWriter, err error) {
	status, code := http.StatusInternalServerError, "INTERNAL_ERROR"
	switch {
	case errors.Is(err, pricer.ErrInvalidParameter):
		status, code = http.StatusBadRequest, "INVALID_PARAMETER"
	case errors.Is(err, heatmap.ErrInvalidGrid):
		status, code = http.StatusBadRequest, "INVALID_GRID"
	case errors.Is(err, services.ErrBadRequest):
		status, code = http.StatusBadRequest, "BAD_REQUEST"
	}

	writeJSON(w, status, models.ErrorResponse{
		Success: false,
		Error:   code,
		Message: err.Error(),
	})
}
