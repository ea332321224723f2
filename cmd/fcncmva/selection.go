package main

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/physics"
)

// selectionFlags binds -M/--mode, -C/--channel and --backgrounds.
type selectionFlags struct {
	modes       string
	channels    string
	backgrounds string

	parsedModes    []physics.Mode
	parsedChannels []physics.Channel
}

func (f *selectionFlags) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVarP(&f.modes, "mode", "M", strings.Join(physics.ModeNames(physics.AllModes), ","),
		"decay modes to use [ElElEl, MuElEl, MuMuMu, ElMuMu]")
	flags.StringVarP(&f.channels, "channel", "C", strings.Join(physics.ChannelNames(physics.AllChannels), ","),
		"signal channels (TTZct, TTZut, STZct, STZut); all four means no channel filtering")
	flags.StringVar(&f.backgrounds, "backgrounds", "",
		"comma separated background processes (default: samples.backgrounds of the configuration)")
}

// parse validates the flag values before any configuration is read.
func (f *selectionFlags) parse() error {
	modes, err := physics.ParseModes(f.modes)
	if err != nil {
		return err
	}
	channels, err := physics.ParseChannels(f.channels)
	if err != nil {
		return err
	}
	f.parsedModes, f.parsedChannels = modes, channels
	return nil
}

func (f *selectionFlags) selection(configured []string) dataset.Selection {
	backgrounds := configured
	if strings.TrimSpace(f.backgrounds) != "" {
		backgrounds = strings.FieldsFunc(f.backgrounds, func(r rune) bool { return r == ',' || r == ' ' })
	}
	return dataset.Selection{
		Channels:    f.parsedChannels,
		Modes:       f.parsedModes,
		Backgrounds: backgrounds,
	}
}
