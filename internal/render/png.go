package render

import (
	"fmt"
	"io"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/jwaldner/bspnl/internal/heatmap"
)

// paletteSize is the number of discrete colors in rendered heatmaps
const paletteSize = 255

// screenDPI converts pixel sizes to plot lengths
const screenDPI = 96

// surface adapts one PnL matrix of a grid to plotter.GridXYZ.
// Columns are spot prices, rows are volatilities.
type surface struct {
	grid *heatmap.Grid
	pnl  [][]float64
}

func (s surface) Dims() (c, r int)   { return len(s.grid.Spots), len(s.grid.Vols) }
func (s surface) Z(c, r int) float64 { return s.pnl[r][c] }
func (s surface) X(c int) float64    { return s.grid.Spots[c] }
func (s surface) Y(r int) float64    { return s.grid.Vols[r] }

// NewPlot builds the color-mapped heatmap for one surface of grid.
// The palette is centered on zero: green is profit, red is loss.
func NewPlot(grid *heatmap.Grid, kind heatmap.Kind) (*plot.Plot, error) {
	if len(grid.Spots) < 2 || len(grid.Vols) < 2 {
		return nil, fmt.Errorf("%w: plotting needs at least 2 points per axis, got %dx%d",
			heatmap.ErrInvalidGrid, len(grid.Vols), len(grid.Spots))
	}

	p := plot.New()
	p.Title.Text = kind.Title()
	p.X.Label.Text = "Spot Price"
	p.Y.Label.Text = "Volatility"

	hm := plotter.NewHeatMap(surface{grid: grid, pnl: grid.Surface(kind)}, NewDivergingPalette(paletteSize))
	bound := grid.SymmetricBound(kind)
	hm.Min, hm.Max = -bound, bound
	p.Add(hm)

	return p, nil
}

// WritePNG renders one surface of grid as a width × height pixel PNG
func WritePNG(w io.Writer, grid *heatmap.Grid, kind heatmap.Kind, width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("image size must be positive, got %dx%d", width, height)
	}

	p, err := NewPlot(grid, kind)
	if err != nil {
		return err
	}

	wt, err := p.WriterTo(pixels(width), pixels(height), "png")
	if err != nil {
		return fmt.Errorf("rendering %s heatmap: %w", kind, err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("writing %s heatmap: %w", kind, err)
	}
	return nil
}

func pixels(n int) vg.Length {
	return vg.Length(n) * vg.Inch / screenDPI
}
