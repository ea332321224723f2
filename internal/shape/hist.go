package shape

import (
	"errors"
	"fmt"
	"math"

	"go-hep.org/x/hep/hbook"
)

// ErrBinning is returned when histograms with different binnings are
// combined.
var ErrBinning = errors.New("shape: incompatible binning")

// Binning describes a fixed-width axis.
type Binning struct {
	Bins int     `yaml:"bins" validate:"gt=0"`
	Min  float64 `yaml:"min"`
	Max  float64 `yaml:"max" validate:"gtfield=Min"`
}

// DefaultBinning is the classifier-score axis.
var DefaultBinning = Binning{Bins: 10, Min: -1, Max: 1}

// New returns an empty histogram with this binning.
func (b Binning) New() *hbook.H1D {
	return hbook.NewH1D(b.Bins, b.Min, b.Max)
}

func compatible(a, b *hbook.H1D) bool {
	const eps = 1e-9
	return a.Len() == b.Len() &&
		math.Abs(a.XMin()-b.XMin()) < eps &&
		math.Abs(a.XMax()-b.XMax()) < eps
}

// Sum adds histograms bin by bin into a fresh histogram with binning b.
func Sum(b Binning, hists ...*hbook.H1D) (*hbook.H1D, error) {
	out := b.New()
	for _, h := range hists {
		if h == nil {
			continue
		}
		if !compatible(out, h) {
			return nil, fmt.Errorf("%w: %d bins [%g, %g) vs %d bins [%g, %g)",
				ErrBinning, out.Len(), out.XMin(), out.XMax(), h.Len(), h.XMin(), h.XMax())
		}
		out = hbook.AddH1D(out, h)
	}
	return out, nil
}

// Scaled returns a scaled copy of h.
func Scaled(h *hbook.H1D, factor float64) *hbook.H1D {
	c := h.Clone()
	c.Scale(factor)
	return c
}

// Points converts h into per-bin points with statistical errors.
func Points(h *hbook.H1D) *hbook.S2D {
	pts := make([]hbook.Point2D, 0, h.Len())
	for _, bin := range h.Binning.Bins {
		hw := 0.5 * bin.XWidth()
		e := math.Sqrt(bin.SumW2())
		pts = append(pts, hbook.Point2D{
			X:    bin.XMid(),
			Y:    bin.SumW(),
			ErrX: hbook.Range{Min: hw, Max: hw},
			ErrY: hbook.Range{Min: e, Max: e},
		})
	}
	return hbook.NewS2D(pts...)
}

// Ratio divides num by den bin by bin, propagating uncorrelated statistical
// errors. Bins with an empty denominator are omitted.
func Ratio(num, den *hbook.H1D) (*hbook.S2D, error) {
	if !compatible(num, den) {
		return nil, ErrBinning
	}
	pts := make([]hbook.Point2D, 0, num.Len())
	for i, nb := range num.Binning.Bins {
		db := den.Binning.Bins[i]
		d := db.SumW()
		if d == 0 {
			continue
		}
		n := nb.SumW()
		r := n / d
		en := math.Sqrt(nb.SumW2()) / d
		ed := n * math.Sqrt(db.SumW2()) / (d * d)
		e := math.Hypot(en, ed)
		hw := 0.5 * nb.XWidth()
		pts = append(pts, hbook.Point2D{
			X:    nb.XMid(),
			Y:    r,
			ErrX: hbook.Range{Min: hw, Max: hw},
			ErrY: hbook.Range{Min: e, Max: e},
		})
	}
	return hbook.NewS2D(pts...), nil
}
