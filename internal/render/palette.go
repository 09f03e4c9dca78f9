package render

import (
	"image/color"
	"math"
)

// rdYlGn holds the ColorBrewer RdYlGn stops, loss (red) to profit (green)
var rdYlGn = []color.RGBA{
	{0xa5, 0x00, 0x26, 0xff},
	{0xd7, 0x30, 0x27, 0xff},
	{0xf4, 0x6d, 0x43, 0xff},
	{0xfd, 0xae, 0x61, 0xff},
	{0xfe, 0xe0, 0x8b, 0xff},
	{0xff, 0xff, 0xbf, 0xff},
	{0xd9, 0xef, 0x8b, 0xff},
	{0xa6, 0xd9, 0x6a, 0xff},
	{0x66, 0xbd, 0x63, 0xff},
	{0x1a, 0x98, 0x50, 0xff},
	{0x00, 0x68, 0x37, 0xff},
}

// DivergingPalette is a red-yellow-green palette with n interpolated colors.
// It satisfies gonum's palette.Palette.
type DivergingPalette struct {
	colors []color.Color
}

// NewDivergingPalette interpolates the RdYlGn stops into n colors (n >= 2)
func NewDivergingPalette(n int) *DivergingPalette {
	if n < 2 {
		n = 2
	}
	colors := make([]color.Color, n)
	for i := range colors {
		colors[i] = At(float64(i) / float64(n-1))
	}
	return &DivergingPalette{colors: colors}
}

// Colors implements palette.Palette
func (p *DivergingPalette) Colors() []color.Color {
	return p.colors
}

// At maps t in [0, 1] onto the RdYlGn ramp; 0.5 is the neutral midpoint
func At(t float64) color.RGBA {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}

	pos := t * float64(len(rdYlGn)-1)
	lo := int(math.Floor(pos))
	if lo >= len(rdYlGn)-1 {
		return rdYlGn[len(rdYlGn)-1]
	}
	frac := pos - float64(lo)
	a, b := rdYlGn[lo], rdYlGn[lo+1]

	return color.RGBA{
		R: lerp(a.R, b.R, frac),
		G: lerp(a.G, b.G, frac),
		B: lerp(a.B, b.B, frac),
		A: 0xff,
	}
}

func lerp(a, b uint8, frac float64) uint8 {
	return uint8(math.Round(float64(a) + (float64(b)-float64(a))*frac))
}
