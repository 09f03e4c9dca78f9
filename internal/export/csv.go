package export

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jwaldner/bspnl/internal/heatmap"
)

// Filename expands {kind} and {time} in format
func Filename(format string, kind heatmap.Kind, t time.Time) string {
	result := format
	result = strings.ReplaceAll(result, "{kind}", string(kind))
	result = strings.ReplaceAll(result, "{time}", t.Format("2006-01-02_15-04-05"))
	return result
}

// WriteGridCSV writes one surface: a header of spot prices, then one row per volatility
func WriteGridCSV(out io.Writer, grid *heatmap.Grid, kind heatmap.Kind) error {
	w := csv.NewWriter(out)

	header := make([]string, 0, len(grid.Spots)+1)
	header = append(header, "volatility")
	for _, spot := range grid.Spots {
		header = append(header, formatFloat(spot))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	pnl := grid.Surface(kind)
	for i, vol := range grid.Vols {
		row := make([]string, 0, len(grid.Spots)+1)
		row = append(row, formatFloat(vol))
		for _, v := range pnl[i] {
			row = append(row, formatFloat(v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}

	w.Flush()
	return w.Error()
}

// WriteFiles writes call and put surfaces into dir and returns the paths
func WriteFiles(dir, format string, grid *heatmap.Grid, now time.Time) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	var paths []string
	for _, kind := range []heatmap.Kind{heatmap.KindCall, heatmap.KindPut} {
		path := filepath.Join(dir, Filename(format, kind, now))
		if err := writeFile(path, grid, kind); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, grid *heatmap.Grid, kind heatmap.Kind) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := WriteGridCSV(f, grid, kind); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
