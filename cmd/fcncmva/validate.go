package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/tmva"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Load and cross-check the configuration and catalog",
		Long: `validate loads analysis.yaml and the catalog documents and reports dataset
groups that processes reference but no fragment defines, fragments that
overwrite earlier ones and transformed dataset names shared by distinct
registry entries. Name collisions fail the command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), a)
		},
	}
}

func runValidate(ctx context.Context, a *app) error {
	if ctx == nil {
		ctx = context.Background()
	}
	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.Close()
	cfg := s.cfg

	cat, err := s.catalog()
	if err != nil {
		return err
	}
	out := a.stdout
	source := cfg.Path
	if source == "" {
		source = "built-in defaults"
	}
	fmt.Fprintf(out, "configuration: %s\n", source)
	fmt.Fprintf(out, "root_dir:      %s\n", cfg.Analysis.RootDir)
	fmt.Fprintf(out, "processes:     %d\n", len(cat.Processes))
	fmt.Fprintf(out, "dataset groups: %d\n", cat.Datasets.Len())
	reg, err := s.methods()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "methods:       %v\n", reg.Names())

	missing := cat.MissingReferences()
	fmt.Fprintf(out, "missing references: %d\n", len(missing))
	for _, m := range missing {
		fmt.Fprintf(out, "  %s\n", m)
	}
	fmt.Fprintf(out, "overwritten groups: %d\n", len(cat.Overwrites))
	for _, o := range cat.Overwrites {
		fmt.Fprintf(out, "  %s: %s -> %s\n", o.Key, o.Previous, o.Winner)
	}

	_, err = dataset.ReverseIndex(cat.Datasets)
	var collisions *dataset.CollisionError
	if errors.As(err, &collisions) {
		fmt.Fprintf(out, "name collisions: %d\n", len(collisions.Collisions))
		return err
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(out, "name collisions: 0")

	if raw, code, err := tmva.DetectVersion(ctx, cfg.Analysis.Root.Config); err == nil {
		fmt.Fprintf(out, "ROOT:          %s\n", raw)
		if err := tmva.CheckVersion(code); err != nil {
			return err
		}
	}
	fmt.Fprintln(out, "ok")
	return nil
}
