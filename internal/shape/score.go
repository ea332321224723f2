package shape

import (
	"context"
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hbook"
	"go-hep.org/x/hep/hplot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/physics"
)

// AllModes labels the plot summed over every mode.
const AllModes = "all"

type scorePanel struct {
	title   string
	key     artifact.Key
	mc      []*hbook.H1D
	data    *hbook.H1D
	signal  *hbook.H1D
	sigName string
	sigCol  color.Color
}

// Scores renders, per channel, one plot per mode plus the all-mode sum:
// stacked MC, data points, scaled signal and a Data/MC ratio pad.
func (r *Renderer) Scores(ctx context.Context, cfg ScoreConfig) ([]string, error) {
	if err := cfg.CheckColors(); err != nil {
		return nil, err
	}
	return r.forEachChannel(ctx, cfg.Channels, func(ctx context.Context, ch physics.Channel) ([]string, error) {
		return r.scoreChannel(ctx, cfg, ch)
	})
}

func (r *Renderer) scoreChannel(ctx context.Context, cfg ScoreConfig, ch physics.Channel) ([]string, error) {
	src, err := r.openChannel(artifact.ScoreInput, ch)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	b := cfg.Binning
	mcAll := make([]*hbook.H1D, len(cfg.MC))
	for i := range mcAll {
		mcAll[i] = b.New()
	}
	dataAll, sigAll := b.New(), b.New()
	sigCol := MustColor(cfg.signalColor(ch))
	var written []string

	for _, mode := range cfg.Modes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		mcs := make([]*hbook.H1D, len(cfg.MC))
		for j, s := range cfg.MC {
			h, err := get(src, mode.String()+"_"+s.Name)
			if err != nil {
				return nil, err
			}
			mcs[j] = h
			if mcAll[j], err = Sum(b, mcAll[j], h); err != nil {
				return nil, err
			}
		}
		data, err := get(src, mode.String()+"_"+cfg.DataName)
		if err != nil {
			return nil, err
		}
		sig, err := get(src, mode.String()+"_"+ch.String())
		if err != nil {
			return nil, err
		}
		if dataAll, err = Sum(b, dataAll, data); err != nil {
			return nil, err
		}
		if sigAll, err = Sum(b, sigAll, sig); err != nil {
			return nil, err
		}
		key := r.key(ch)
		key.Mode = mode.String()
		files, err := r.drawScore(cfg, scorePanel{
			title: mode.String() + "_MVAscore", key: key,
			mc: mcs, data: data, signal: sig, sigName: ch.String(), sigCol: sigCol,
		})
		if err != nil {
			return nil, err
		}
		written = append(written, files...)
	}

	key := r.key(ch)
	key.Mode = AllModes
	files, err := r.drawScore(cfg, scorePanel{
		title: fmt.Sprintf("%s_%s_MVAscore", ch, AllModes), key: key,
		mc: mcAll, data: dataAll, signal: sigAll, sigName: ch.String(), sigCol: sigCol,
	})
	if err != nil {
		return nil, err
	}
	return append(written, files...), nil
}

func (r *Renderer) drawScore(cfg ScoreConfig, p scorePanel) ([]string, error) {
	total, err := Sum(cfg.Binning, p.mc...)
	if err != nil {
		return nil, err
	}
	ratio, err := Ratio(p.data, total)
	if err != nil {
		return nil, err
	}

	rp := newRatioPlot(p.title, "Data/MC", cfg.Ratio)
	stack := make([]*hplot.H1D, len(p.mc))
	for i, h := range p.mc {
		hh := line(h, color.Black, vg.Points(0.5))
		hh.FillColor = MustColor(cfg.MC[i].Color)
		stack[i] = hh
		rp.Top.Legend.Add(cfg.MC[i].Name, hh)
	}
	rp.Top.Add(hplot.NewHStack(stack))

	sig := line(Scaled(p.signal, cfg.SignalScale), p.sigCol, vg.Points(2))
	rp.Top.Add(sig)
	rp.Top.Legend.Add(fmt.Sprintf("%sX%g", p.sigName, cfg.SignalScale), sig)

	data := hplot.NewS2D(Points(p.data), hplot.WithYErrBars(true))
	data.GlyphStyle.Shape = draw.CircleGlyph{}
	data.GlyphStyle.Radius = vg.Points(2.5)
	data.GlyphStyle.Color = color.Black
	rp.Top.Add(data)
	rp.Top.Legend.Add("Data", data)

	if ratio.Len() > 0 {
		rp.Bottom.Add(ratioPoints(ratio, color.Black, draw.BoxGlyph{}))
	}
	fixRatioRange(rp, cfg.Ratio)
	return r.save(rp, artifact.ScorePlot, p.key, cfg.Formats)
}
