package graph

import (
	"fmt"
	"math"
)

const (
	seriesSaturation = 0.8
	seriesValue      = 0.8
)

// Color is an 8-bit RGB triple.
type Color struct {
	R, G, B uint8
}

// Hex formats the color as #rrggbb.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

// HSVToRGB converts hue, saturation and value, each in [0, 1], to RGB
// using the six-sector formula.
func HSVToRGB(h, s, v float64) Color {
	if s == 0 {
		return Color{R: channel(v), G: channel(v), B: channel(v)}
	}

	h6 := math.Mod(h, 1) * 6
	sector := math.Floor(h6)
	f := h6 - sector
	p := v * (1 - s)
	q := v * (1 - s*f)
	t := v * (1 - s*(1-f))

	var r, g, b float64

	switch int(sector) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}

	return Color{R: channel(r), G: channel(g), B: channel(b)}
}

func channel(x float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, x)) * 255))
}
