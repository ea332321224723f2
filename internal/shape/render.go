// Package shape renders classifier-score and systematic-variation plots from
// the per-channel shape files produced by the limit-setting step.
package shape

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/physics"
	"github.com/tzwi/fcncmva/internal/rootio"
)

// Source yields named histograms from one shape file.
type Source interface {
	H1D(name string) (*hbook.H1D, error)
	Close() error
}

// Opener opens the shape file at path.
type Opener func(path string) (Source, error)

func openROOT(path string) (Source, error) {
	f, err := rootio.Open(path)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ErrMissingInput reports a channel whose shape file is absent.
var ErrMissingInput = errors.New("shape: missing input")

// Option customises a Renderer.
type Option func(*Renderer)

// WithOpener replaces the ROOT file reader.
func WithOpener(open Opener) Option {
	return func(r *Renderer) {
		if open != nil {
			r.open = open
		}
	}
}

// WithLogger routes progress messages to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithWorkers bounds the number of channels rendered at once.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		if n > 0 {
			r.workers = n
		}
	}
}

// WithCanvas sets the canvas size.
func WithCanvas(w, h vg.Length) Option {
	return func(r *Renderer) {
		if w > 0 && h > 0 {
			r.width, r.height = w, h
		}
	}
}

// Renderer draws plots for one background-configuration label.
type Renderer struct {
	store   *artifact.Store
	label   string
	open    Opener
	logger  *slog.Logger
	workers int
	width   vg.Length
	height  vg.Length
}

// NewRenderer builds a renderer writing under store's layout.
func NewRenderer(store *artifact.Store, label string, opts ...Option) *Renderer {
	r := &Renderer{
		store:   store,
		label:   label,
		open:    openROOT,
		logger:  slog.Default(),
		workers: 2,
		width:   20 * vg.Centimeter,
		height:  20 * vg.Centimeter,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// forEachChannel runs fn for every channel with bounded concurrency. Each
// channel's shape file is read by exactly one goroutine. Written files are
// returned in channel order.
func (r *Renderer) forEachChannel(ctx context.Context, channels []physics.Channel, fn func(context.Context, physics.Channel) ([]string, error)) ([]string, error) {
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	written := make([][]string, len(channels))
	for i, ch := range channels {
		i, ch := i, ch
		g.Go(func() error {
			files, err := fn(ctx, ch)
			if err != nil {
				return fmt.Errorf("shape: %s: %w", ch, err)
			}
			written[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	var out []string
	for _, files := range written {
		out = append(out, files...)
	}
	return out, nil
}

// CheckInputs inspects the shape file of every channel and returns the ones
// that are not ready, in channel order. Unreadable paths are errors.
func (r *Renderer) CheckInputs(ref artifact.Ref, channels []physics.Channel) ([]artifact.CheckResult, error) {
	var pending []artifact.CheckResult
	for _, ch := range channels {
		res, err := r.store.Check(ref, r.key(ch))
		if err != nil {
			return nil, fmt.Errorf("shape: %s: %w", ch, err)
		}
		if res.State != artifact.StateReady {
			r.logger.Warn("shape file missing", "channel", ch.String(), "path", res.Path)
			pending = append(pending, res)
		}
	}
	return pending, nil
}

func (r *Renderer) key(ch physics.Channel) artifact.Key {
	return artifact.Key{Label: r.label, Channel: ch.String()}
}

func (r *Renderer) openChannel(ref artifact.Ref, ch physics.Channel) (Source, error) {
	path := r.store.Path(ref, r.key(ch))
	r.logger.Debug("opening shape file", "channel", ch.String(), "path", path)
	return r.open(path)
}

// save writes the drawer once per format and returns the written paths.
func (r *Renderer) save(d hplot.Drawer, ref artifact.Ref, key artifact.Key, formats []string) ([]string, error) {
	paths := make([]string, 0, len(formats))
	for _, ext := range formats {
		k := key
		k.Ext = ext
		path, err := r.store.Ensure(ref, k)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	if err := hplot.Save(d, r.width, r.height, paths...); err != nil {
		return nil, fmt.Errorf("save %v: %w", paths, err)
	}
	for _, p := range paths {
		r.logger.Info("plot written", "path", p)
	}
	return paths, nil
}

func get(src Source, name string) (*hbook.H1D, error) {
	h, err := src.H1D(name)
	if err != nil {
		return nil, fmt.Errorf("histogram %s: %w", name, err)
	}
	return h, nil
}

func newRatioPlot(title, ratioLabel string, rr RatioRange) *hplot.RatioPlot {
	rp := hplot.NewRatioPlot()
	rp.Ratio = 0.3
	rp.Top.Title.Text = title
	rp.Top.Y.Label.Text = "Events"
	rp.Top.Legend.Top = true
	rp.Bottom.X.Label.Text = "score"
	rp.Bottom.Y.Label.Text = ratioLabel
	rp.Bottom.Add(plotter.NewGrid())
	rp.Bottom.Y.Min = rr.Min
	rp.Bottom.Y.Max = rr.Max
	return rp
}

func ratioPoints(s *hbook.S2D, c color.Color, shape draw.GlyphDrawer) *hplot.S2D {
	pts := hplot.NewS2D(s, hplot.WithYErrBars(true))
	pts.GlyphStyle.Shape = shape
	pts.GlyphStyle.Color = c
	pts.GlyphStyle.Radius = vg.Points(2.5)
	if pts.YErrs != nil {
		pts.YErrs.LineStyle.Color = c
	}
	return pts
}

func line(h *hbook.H1D, c color.Color, width vg.Length) *hplot.H1D {
	hh := hplot.NewH1D(h)
	hh.LineStyle.Color = c
	hh.LineStyle.Width = width
	return hh
}

// fixRatioRange pins the ratio pad after plotters extended it.
func fixRatioRange(rp *hplot.RatioPlot, rr RatioRange) {
	rp.Bottom.Y.Min = rr.Min
	rp.Bottom.Y.Max = rr.Max
}
