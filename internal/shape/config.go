package shape

import (
	"fmt"

	"github.com/tzwi/fcncmva/internal/physics"
)

// Sample is one stacked MC component and its fill colour.
type Sample struct {
	Name  string `yaml:"name" validate:"required"`
	Color string `yaml:"color" validate:"required"`
}

// RatioRange bounds the ratio pad.
type RatioRange struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max" validate:"gtfield=Min"`
}

// ScoreConfig drives the classifier-score plots.
type ScoreConfig struct {
	Channels     []physics.Channel `yaml:"channels" validate:"required,min=1"`
	Modes        []physics.Mode    `yaml:"modes" validate:"required,min=1"`
	MC           []Sample          `yaml:"mc" validate:"required,min=1,dive"`
	SignalScale  float64           `yaml:"signal_scale" validate:"gt=0"`
	SignalColors map[string]string `yaml:"signal_colors"`
	DataName     string            `yaml:"data_name" validate:"required"`
	Binning      Binning           `yaml:"binning"`
	Ratio        RatioRange        `yaml:"ratio"`
	Formats      []string          `yaml:"formats" validate:"required,min=1,dive,oneof=png pdf svg eps jpg tex"`
}

// SystConfig drives the systematic-variation plots.
type SystConfig struct {
	Channels    []physics.Channel `yaml:"channels" validate:"required,min=1"`
	Modes       []physics.Mode    `yaml:"modes" validate:"required,min=1"`
	MC          []string          `yaml:"mc" validate:"required,min=1"`
	Systematics []string          `yaml:"systematics" validate:"required,min=1"`
	Binning     Binning           `yaml:"binning"`
	Ratio       RatioRange        `yaml:"ratio"`
	Formats     []string          `yaml:"formats" validate:"required,min=1,dive,oneof=png pdf svg eps jpg tex"`
}

// DefaultScoreConfig reproduces the score plots of the analysis note.
func DefaultScoreConfig() ScoreConfig {
	return ScoreConfig{
		Channels: []physics.Channel{physics.TTZct, physics.STZct},
		Modes:    []physics.Mode{physics.ElElEl, physics.MuElEl, physics.ElMuMu, physics.MuMuMu},
		MC: []Sample{
			{Name: "DYJets", Color: "kOrange+1"},
			{Name: "others", Color: "kYellow-6"},
			{Name: "SingleTopV", Color: "kMagenta+2"},
			{Name: "ZZ", Color: "kCyan-1"},
			{Name: "WZ", Color: "kAzure+6"},
			{Name: "TTV", Color: "kRed+4"},
			{Name: "TTJets", Color: "kRed"},
		},
		SignalScale:  10,
		SignalColors: map[string]string{"ct": "kBlue", "ut": "kGreen"},
		DataName:     "data_obs",
		Binning:      DefaultBinning,
		Ratio:        RatioRange{Min: 0.5, Max: 1.5},
		Formats:      []string{"png", "pdf"},
	}
}

// DefaultSystConfig reproduces the systematic comparison plots.
func DefaultSystConfig() SystConfig {
	return SystConfig{
		Channels: []physics.Channel{physics.TTZct, physics.STZct},
		Modes:    []physics.Mode{physics.ElElEl, physics.MuElEl, physics.ElMuMu, physics.MuMuMu},
		MC:       []string{"DYJets", "SingleTop", "SingleTopV", "ZZ", "WZ", "WW", "TTH", "TTV", "TTJets"},
		Systematics: []string{
			"jer", "jes", "PU", "ElSF", "MuID", "MuISO", "MuR", "MuF",
			"BtagJES", "BtagLF", "BtagHF", "BtagHFStats1", "BtagHFStats2",
			"BtagLFStats1", "BtagLFStats2", "BtagCQErr1", "BtagCQErr2",
		},
		Binning: DefaultBinning,
		Ratio:   RatioRange{Min: 0.5, Max: 1.5},
		Formats: []string{"pdf"},
	}
}

// CheckColors parses every configured colour.
func (c ScoreConfig) CheckColors() error {
	for _, s := range c.MC {
		if _, err := ParseColor(s.Color); err != nil {
			return fmt.Errorf("shape: mc %s: %w", s.Name, err)
		}
	}
	for coupling, expr := range c.SignalColors {
		if _, err := ParseColor(expr); err != nil {
			return fmt.Errorf("shape: signal %s: %w", coupling, err)
		}
	}
	return nil
}

func (c ScoreConfig) signalColor(ch physics.Channel) string {
	if expr, ok := c.SignalColors[ch.Coupling()]; ok {
		return expr
	}
	return "kBlue"
}
