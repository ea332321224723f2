package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tzwi/fcncmva/internal/tui"
)

type resolveOptions struct {
	selection selectionFlags
	browse    bool
	asYAML    bool
}

func newResolveCmd(a *app) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve",
		Short: "Print the resolved signal and background samples",
		Long: `resolve runs only the dataset resolution for the selected channels and
modes and prints every matched sample directory, the skipped registry
references and the train/test split that classify would use.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runResolve(a, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.browse, "browse", false, "browse the result interactively")
	cmd.Flags().BoolVar(&opts.asYAML, "yaml", false, "print the result as YAML")
	opts.selection.bind(cmd)
	return cmd
}

func runResolve(a *app, opts *resolveOptions) error {
	if err := opts.selection.parse(); err != nil {
		return err
	}
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.Close()

	cat, err := s.catalog()
	if err != nil {
		return err
	}
	sel := opts.selection.selection(s.cfg.Analysis.Samples.Backgrounds)
	res, err := s.resolve(cat, sel)
	if err != nil {
		return err
	}
	split := s.cfg.QuotaTable().Lookup(sel.Channels, sel.Modes, len(sel.Backgrounds)).Options()
	note := "split: " + split

	switch {
	case opts.asYAML:
		out, err := yaml.Marshal(res)
		if err != nil {
			return fmt.Errorf("encode result: %w", err)
		}
		_, err = a.stdout.Write(out)
		return err
	case opts.browse && tui.IsTerminal(a.stdout):
		return tui.Run(res, tui.WithNote(note))
	}
	if opts.browse {
		s.logger.Debug("stdout is not a terminal; printing summary instead of browsing")
	}
	_, err = fmt.Fprint(a.stdout, tui.Summary(res, note))
	return err
}
