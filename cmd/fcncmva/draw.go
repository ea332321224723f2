package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/physics"
	"github.com/tzwi/fcncmva/internal/shape"
)

// drawOptions override the shape section of the configuration.
type drawOptions struct {
	label    string
	channels string
	formats  []string
	workers  int
}

func (o *drawOptions) bind(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&o.label, "label", "", "shape label under TMVA/shape (default: shape.label)")
	flags.StringVarP(&o.channels, "channel", "C", "", "signal channels to draw (default: from the configuration)")
	flags.StringSliceVar(&o.formats, "format", nil, "image formats, e.g. png,pdf (default: from the configuration)")
	flags.IntVar(&o.workers, "workers", 0, "channels rendered concurrently (default: shape.workers)")
}

func (o *drawOptions) channelOverride() ([]physics.Channel, error) {
	if strings.TrimSpace(o.channels) == "" {
		return nil, nil
	}
	return physics.ParseChannels(o.channels)
}

func (o *drawOptions) renderer(s *session) *shape.Renderer {
	label := s.cfg.Analysis.Shape.Label
	if o.label != "" {
		label = o.label
	}
	workers := s.cfg.Analysis.Shape.Workers
	if o.workers > 0 {
		workers = o.workers
	}
	return shape.NewRenderer(artifact.NewStore(s.cfg.Layout()), label,
		shape.WithLogger(s.logger.Logger),
		shape.WithWorkers(workers),
	)
}

func newDrawScoreCmd(a *app) *cobra.Command {
	opts := &drawOptions{}
	cmd := &cobra.Command{
		Use:   "draw-score",
		Short: "Draw classifier-score distributions with a Data/MC ratio",
		Long: `draw-score reads TMVA/shape/<label>/add_shape_<channel>.root and draws, for
every mode and for all modes summed, the stacked MC, the scaled signal and
the data with a Data/MC ratio pad into plots_<channel>/MVAdist_<mode>_<channel>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDraw(cmd.Context(), a, opts, func(ctx context.Context, r *shape.Renderer, s *session, channels []physics.Channel) ([]string, error) {
				cfg := s.cfg.Analysis.Shape.Score
				if channels != nil {
					cfg.Channels = channels
				}
				if len(opts.formats) > 0 {
					cfg.Formats = opts.formats
				}
				if err := requireInputs(a, r, artifact.ScoreInput, cfg.Channels); err != nil {
					return nil, err
				}
				return r.Scores(ctx, cfg)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

func newDrawSystCmd(a *app) *cobra.Command {
	opts := &drawOptions{}
	cmd := &cobra.Command{
		Use:   "draw-syst",
		Short: "Draw systematic up/down variations against the central shape",
		Long: `draw-syst reads TMVA/shape/<label>/shape_<channel>.root, sums signal and
background over the configured modes and draws, for every systematic, the
central, up and down shapes with central/variation ratios into
plots_<channel>/MVAdist_<syst>_<signal|background>.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDraw(cmd.Context(), a, opts, func(ctx context.Context, r *shape.Renderer, s *session, channels []physics.Channel) ([]string, error) {
				cfg := s.cfg.Analysis.Shape.Syst
				if channels != nil {
					cfg.Channels = channels
				}
				if len(opts.formats) > 0 {
					cfg.Formats = opts.formats
				}
				if err := requireInputs(a, r, artifact.SystInput, cfg.Channels); err != nil {
					return nil, err
				}
				return r.Systematics(ctx, cfg)
			})
		},
	}
	opts.bind(cmd)
	return cmd
}

// requireInputs lists every channel whose shape file is missing before any
// plot is drawn.
func requireInputs(a *app, r *shape.Renderer, input artifact.Ref, channels []physics.Channel) error {
	pending, err := r.CheckInputs(input, channels)
	if err != nil {
		return err
	}
	if len(pending) == 0 {
		return nil
	}
	paths := make([]string, 0, len(pending))
	for _, res := range pending {
		fmt.Fprintf(a.stderr, "%s: %s\n", res.State, res.Path)
		paths = append(paths, res.Path)
	}
	return fmt.Errorf("%w: %s", shape.ErrMissingInput, strings.Join(paths, ", "))
}

type drawFunc func(ctx context.Context, r *shape.Renderer, s *session, channels []physics.Channel) ([]string, error)

func runDraw(ctx context.Context, a *app, opts *drawOptions, draw drawFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	channels, err := opts.channelOverride()
	if err != nil {
		return err
	}
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.Close()

	written, err := draw(ctx, opts.renderer(s), s, channels)
	for _, path := range written {
		fmt.Fprintln(a.stdout, path)
	}
	return err
}
