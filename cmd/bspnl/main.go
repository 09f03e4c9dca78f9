package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jwaldner/bspnl/internal/config"
	"github.com/jwaldner/bspnl/internal/export"
	"github.com/jwaldner/bspnl/internal/heatmap"
	"github.com/jwaldner/bspnl/internal/logger"
	"github.com/jwaldner/bspnl/internal/models"
	"github.com/jwaldner/bspnl/internal/render"
	"github.com/jwaldner/bspnl/internal/utils"
	pricer "github.com/jwaldner/bspnl/pricer_lib"
)

var errBadInput = errors.New("bad input")

type options struct {
	configPath  string
	interactive bool
	noColor     bool
	expiry      string
	csvDir      string
	pngDir      string
	steps       int
	set         map[string]bool

	inputs models.PricingInputs
	grid   heatmap.Params
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg := config.LoadFrom(opts.configPath)
	if err := logger.InitWithConfig(cfg.Logging.LogLevel, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), opts, cfg, os.Stdin, os.Stdout, time.Now()); err != nil {
		logger.Error.Printf("❌ %v", err)
		logger.Close()
		os.Exit(1)
	}
	logger.Close()
}

// run prices the option pair and prints both PnL tables to stdout
func run(ctx context.Context, opts *options, cfg *config.Config, stdin io.Reader, stdout io.Writer, now time.Time) error {
	opts.applyDefaults(cfg)

	if opts.expiry != "" {
		maturity, err := utils.YearsToExpiration(opts.expiry, now)
		if err != nil {
			return fmt.Errorf("%w: %v", errBadInput, err)
		}
		opts.inputs.Maturity = maturity
	}

	if opts.interactive {
		if err := prompt(stdin, stdout, &opts.inputs); err != nil {
			return err
		}
	}

	in := opts.inputs
	if cfg.Pricing.StrictVolatility && in.Volatility < 0 {
		return fmt.Errorf("%w: volatility must not be negative, got %v", pricer.ErrInvalidParameter, in.Volatility)
	}

	valuation, err := heatmap.Value(in.Request(), in.CallPurchase, in.PutPurchase)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Call Price: %.4f (%s, PnL %s)\n", valuation.Call, valuation.CallVerdict, models.FormatPnL(valuation.CallPnL).Display)
	fmt.Fprintf(stdout, "Put Price: %.4f (%s, PnL %s)\n", valuation.Put, valuation.PutVerdict, models.FormatPnL(valuation.PutPnL).Display)

	params := opts.grid
	params.Strike = in.Strike
	params.Rate = in.Rate
	params.Maturity = in.Maturity
	params.DividendYield = in.DividendYield
	params.CallPurchase = in.CallPurchase
	params.PutPurchase = in.PutPurchase

	engine := pricer.NewEngine(cfg.Engine.ExecutionMode, cfg.Engine.Workers)
	grid, err := heatmap.NewBuilder(engine).Build(ctx, params)
	if err != nil {
		return err
	}

	color := false
	if f, ok := stdout.(*os.File); ok && !opts.noColor {
		color = render.ColorEnabled(f)
	}
	for _, kind := range []heatmap.Kind{heatmap.KindCall, heatmap.KindPut} {
		fmt.Fprintln(stdout)
		if err := render.WriteText(stdout, grid, kind, color); err != nil {
			return err
		}
	}

	if opts.csvDir != "" {
		paths, err := export.WriteFiles(opts.csvDir, cfg.CSV.FilenameFormat, grid, now)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "📁 CSV written: %s\n", p)
		}
	}

	if opts.pngDir != "" {
		paths, err := writeImages(opts.pngDir, grid, cfg.Heatmap.ImageWidth, cfg.Heatmap.ImageHeight, now)
		if err != nil {
			return err
		}
		for _, p := range paths {
			fmt.Fprintf(stdout, "🖼️  PNG written: %s\n", p)
		}
	}

	return nil
}

func parseFlags(args []string) (*options, error) {
	opts := &options{set: make(map[string]bool)}

	fs := flag.NewFlagSet("bspnl", flag.ContinueOnError)
	fs.StringVar(&opts.configPath, "config", config.DefaultConfigFile, "path to YAML config")
	fs.BoolVar(&opts.interactive, "interactive", false, "prompt for pricing inputs on stdin")
	fs.BoolVar(&opts.noColor, "no-color", false, "disable ANSI colors")
	fs.StringVar(&opts.expiry, "expiry", "", "expiration date (YYYY-MM-DD or \"monthly\"), overrides -maturity")
	fs.StringVar(&opts.csvDir, "csv", "", "directory to write call/put PnL CSV files")
	fs.StringVar(&opts.pngDir, "png", "", "directory to write call/put PnL heatmap images")
	fs.IntVar(&opts.steps, "steps", 0, "grid resolution for both axes")

	fs.Float64Var(&opts.inputs.Spot, "spot", 0, "current spot price")
	fs.Float64Var(&opts.inputs.Strike, "strike", 0, "strike price")
	fs.Float64Var(&opts.inputs.Rate, "rate", 0, "risk-free rate (decimal)")
	fs.Float64Var(&opts.inputs.Volatility, "vol", 0, "volatility (decimal)")
	fs.Float64Var(&opts.inputs.Maturity, "maturity", 0, "time to maturity in years")
	fs.Float64Var(&opts.inputs.DividendYield, "dividend", 0, "continuous dividend yield (decimal)")
	fs.Float64Var(&opts.inputs.CallPurchase, "call-purchase", 0, "price paid for the call")
	fs.Float64Var(&opts.inputs.PutPurchase, "put-purchase", 0, "price paid for the put")

	fs.Float64Var(&opts.grid.SpotMin, "spot-min", 0, "heatmap minimum spot")
	fs.Float64Var(&opts.grid.SpotMax, "spot-max", 0, "heatmap maximum spot")
	fs.Float64Var(&opts.grid.VolMin, "vol-min", 0, "heatmap minimum volatility")
	fs.Float64Var(&opts.grid.VolMax, "vol-max", 0, "heatmap maximum volatility")
	fs.IntVar(&opts.grid.SpotSteps, "spot-steps", 0, "heatmap spot resolution")
	fs.IntVar(&opts.grid.VolSteps, "vol-steps", 0, "heatmap volatility resolution")

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", errBadInput, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", errBadInput, fs.Args())
	}

	fs.Visit(func(f *flag.Flag) { opts.set[f.Name] = true })
	return opts, nil
}

// applyDefaults fills every flag the user did not pass from cfg
func (o *options) applyDefaults(cfg *config.Config) {
	p, h := cfg.Pricing, cfg.Heatmap

	o.pick("spot", &o.inputs.Spot, p.Spot)
	o.pick("strike", &o.inputs.Strike, p.Strike)
	o.pick("rate", &o.inputs.Rate, p.Rate)
	o.pick("vol", &o.inputs.Volatility, p.Volatility)
	o.pick("maturity", &o.inputs.Maturity, p.Maturity)
	o.pick("dividend", &o.inputs.DividendYield, p.DividendYield)
	o.pick("call-purchase", &o.inputs.CallPurchase, p.CallPurchase)
	o.pick("put-purchase", &o.inputs.PutPurchase, p.PutPurchase)

	o.pick("spot-min", &o.grid.SpotMin, h.SpotMin)
	o.pick("spot-max", &o.grid.SpotMax, h.SpotMax)
	o.pick("vol-min", &o.grid.VolMin, h.VolMin)
	o.pick("vol-max", &o.grid.VolMax, h.VolMax)

	if !o.set["spot-steps"] {
		o.grid.SpotSteps = h.SpotSteps
		if o.set["steps"] {
			o.grid.SpotSteps = o.steps
		}
	}
	if !o.set["vol-steps"] {
		o.grid.VolSteps = h.VolSteps
		if o.set["steps"] {
			o.grid.VolSteps = o.steps
		}
	}
}

func (o *options) pick(name string, dst *float64, def float64) {
	if !o.set[name] {
		*dst = def
	}
}

// prompt asks for each input in turn; an empty answer keeps the current value
func prompt(stdin io.Reader, stdout io.Writer, in *models.PricingInputs) error {
	fields := []struct {
		label string
		dst   *float64
	}{
		{"Enter strike price", &in.Strike},
		{"Enter risk free rate of return", &in.Rate},
		{"Enter time to maturity", &in.Maturity},
		{"Enter spot price", &in.Spot},
		{"Enter volatility", &in.Volatility},
		{"Enter current market value of call", &in.CallPurchase},
		{"Enter current market value of put", &in.PutPurchase},
	}

	scanner := bufio.NewScanner(stdin)
	for _, f := range fields {
		fmt.Fprintf(stdout, "%s [%g]: ", f.label, *f.dst)
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return err
			}
			fmt.Fprintln(stdout)
			continue
		}

		answer := strings.TrimSpace(scanner.Text())
		if answer == "" {
			continue
		}
		v, err := strconv.ParseFloat(answer, 64)
		if err != nil {
			return fmt.Errorf("%w: %q is not a number", errBadInput, answer)
		}
		*f.dst = v
	}
	return nil
}

func writeImages(dir string, grid *heatmap.Grid, width, height int, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, kind := range []heatmap.Kind{heatmap.KindCall, heatmap.KindPut} {
		path := filepath.Join(dir, export.Filename("{time}_{kind}_pnl.png", kind, now))
		f, err := os.Create(path)
		if err != nil {
			return paths, err
		}
		if err := render.WritePNG(f, grid, kind, width, height); err != nil {
			f.Close()
			return paths, fmt.Errorf("rendering %s heatmap: %w", kind, err)
		}
		if err := f.Close(); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}
