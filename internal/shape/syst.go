package shape

import (
	"context"
	"fmt"
	"image/color"

	"go-hep.org/x/hep/hbook"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/physics"
)

// Flags name the two compared samples.
const (
	FlagSignal     = "signal"
	FlagBackground = "background"
)

var (
	colorUp   = color.RGBA{B: 255, A: 255}
	colorDown = color.RGBA{R: 255, A: 255}
)

// Systematics renders, per channel and systematic, central vs up vs down for
// the summed background and for the signal, with central/syst ratios.
func (r *Renderer) Systematics(ctx context.Context, cfg SystConfig) ([]string, error) {
	return r.forEachChannel(ctx, cfg.Channels, func(ctx context.Context, ch physics.Channel) ([]string, error) {
		return r.systChannel(ctx, cfg, ch)
	})
}

// sumVariation adds <mode>_<name><suffix> over modes and names.
func sumVariation(src Source, b Binning, modes []physics.Mode, names []string, suffix string) (*hbook.H1D, error) {
	out := b.New()
	for _, mode := range modes {
		for _, name := range names {
			h, err := get(src, mode.String()+"_"+name+suffix)
			if err != nil {
				return nil, err
			}
			if out, err = Sum(b, out, h); err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}

func (r *Renderer) systChannel(ctx context.Context, cfg SystConfig, ch physics.Channel) ([]string, error) {
	src, err := r.openChannel(artifact.SystInput, ch)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	signal := []string{ch.String()}
	bkgCentral, err := sumVariation(src, cfg.Binning, cfg.Modes, cfg.MC, "")
	if err != nil {
		return nil, err
	}
	sigCentral, err := sumVariation(src, cfg.Binning, cfg.Modes, signal, "")
	if err != nil {
		return nil, err
	}

	var written []string
	for _, syst := range cfg.Systematics {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for _, sample := range []struct {
			flag    string
			names   []string
			central *hbook.H1D
		}{
			{FlagBackground, cfg.MC, bkgCentral},
			{FlagSignal, signal, sigCentral},
		} {
			up, err := sumVariation(src, cfg.Binning, cfg.Modes, sample.names, "_"+syst+"Up")
			if err != nil {
				return nil, err
			}
			down, err := sumVariation(src, cfg.Binning, cfg.Modes, sample.names, "_"+syst+"Down")
			if err != nil {
				return nil, err
			}
			key := r.key(ch)
			key.Syst = syst
			key.Flag = sample.flag
			files, err := r.drawSyst(cfg, syst, key, sample.central, up, down)
			if err != nil {
				return nil, err
			}
			written = append(written, files...)
		}
	}
	return written, nil
}

func (r *Renderer) drawSyst(cfg SystConfig, syst string, key artifact.Key, central, up, down *hbook.H1D) ([]string, error) {
	ratioUp, err := Ratio(central, up)
	if err != nil {
		return nil, err
	}
	ratioDown, err := Ratio(central, down)
	if err != nil {
		return nil, err
	}

	rp := newRatioPlot(fmt.Sprintf("%s_MVAscore", syst), "central/syst", cfg.Ratio)
	hDown := line(down, colorDown, vg.Points(1))
	hUp := line(up, colorUp, vg.Points(1))
	hCentral := line(central, color.Black, vg.Points(1))
	rp.Top.Add(hDown, hUp, hCentral)
	rp.Top.Legend.Add("central", hCentral)
	rp.Top.Legend.Add("Up", hUp)
	rp.Top.Legend.Add("Down", hDown)

	// Ratio markers use the opposite colours of their histograms.
	if ratioUp.Len() > 0 {
		rp.Bottom.Add(ratioPoints(ratioUp, colorDown, draw.BoxGlyph{}))
	}
	if ratioDown.Len() > 0 {
		rp.Bottom.Add(ratioPoints(ratioDown, colorUp, draw.BoxGlyph{}))
	}
	fixRatioRange(rp, cfg.Ratio)
	return r.save(rp, artifact.SystPlot, key, cfg.Formats)
}
