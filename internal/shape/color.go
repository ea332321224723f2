package shape

import (
	"errors"
	"fmt"
	"image/color"
	"strconv"
	"strings"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// ErrUnknownColor is returned for colour names outside the ROOT palette.
var ErrUnknownColor = errors.New("shape: unknown colour")

// Base colours of the ROOT colour wheel.
var rootColors = map[string]string{
	"kWhite":   "#ffffff",
	"kBlack":   "#000000",
	"kGray":    "#999999",
	"kRed":     "#ff0000",
	"kGreen":   "#00ff00",
	"kBlue":    "#0000ff",
	"kYellow":  "#ffff00",
	"kMagenta": "#ff00ff",
	"kCyan":    "#00ffff",
	"kOrange":  "#ffcc00",
	"kSpring":  "#ccff00",
	"kTeal":    "#00ffcc",
	"kAzure":   "#0099ff",
	"kViolet":  "#cc00ff",
	"kPink":    "#ff0099",
}

// ParseColor converts a ROOT colour expression ("kRed", "kAzure+6",
// "kYellow-6") or a hex string ("#1f77b4") into a colour. Positive offsets
// darken the base colour, negative offsets lighten it.
func ParseColor(expr string) (color.Color, error) {
	expr = strings.TrimSpace(expr)
	if strings.HasPrefix(expr, "#") {
		c, err := colorful.Hex(expr)
		if err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrUnknownColor, expr, err)
		}
		return c, nil
	}
	name, offset := expr, 0
	if i := strings.IndexAny(expr, "+-"); i > 0 {
		n, err := strconv.Atoi(expr[i:])
		if err != nil {
			return nil, fmt.Errorf("%w: %q", ErrUnknownColor, expr)
		}
		name, offset = expr[:i], n
	}
	hex, ok := rootColors[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownColor, expr)
	}
	base, err := colorful.Hex(hex)
	if err != nil {
		return nil, err
	}
	switch {
	case offset > 0:
		base = base.BlendLab(colorful.Color{}, clampUnit(0.11*float64(offset)))
	case offset < 0:
		base = base.BlendLab(colorful.Color{R: 1, G: 1, B: 1}, clampUnit(0.08*float64(-offset)))
	}
	return base.Clamped(), nil
}

// MustColor is ParseColor for package-level defaults.
func MustColor(expr string) color.Color {
	c, err := ParseColor(expr)
	if err != nil {
		panic(err)
	}
	return c
}

func clampUnit(v float64) float64 {
	if v > 0.9 {
		return 0.9
	}
	return v
}
