package render

import (
	"bufio"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/jwaldner/bspnl/internal/heatmap"
)

const (
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
	ansiReset = "\x1b[0m"
)

// ColorEnabled reports whether f is a terminal that understands ANSI colors
func ColorEnabled(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// WriteText prints one surface as a volatility × spot table.
// With color on, profits are green and losses red.
func WriteText(w io.Writer, grid *heatmap.Grid, kind heatmap.Kind, color bool) error {
	bw := bufio.NewWriter(w)
	pnl := grid.Surface(kind)

	fmt.Fprintf(bw, "%s\n", kind.Title())
	fmt.Fprintf(bw, "%8s |", "vol\\spot")
	for _, spot := range grid.Spots {
		fmt.Fprintf(bw, " %9.2f", spot)
	}
	fmt.Fprintln(bw)

	for i, vol := range grid.Vols {
		fmt.Fprintf(bw, "%7.1f%% |", vol*100)
		for _, v := range pnl[i] {
			cell := fmt.Sprintf(" %9.2f", v)
			if color {
				cell = colorize(cell, v)
			}
			bw.WriteString(cell)
		}
		fmt.Fprintln(bw)
	}

	return bw.Flush()
}

func colorize(s string, v float64) string {
	switch {
	case v > 0:
		return ansiGreen + s + ansiReset
	case v < 0:
		return ansiRed + s + ansiReset
	}
	return s
}
