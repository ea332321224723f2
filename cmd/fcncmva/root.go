package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/tzwi/fcncmva/internal/catalog"
	"github.com/tzwi/fcncmva/internal/config"
	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/logging"
	"github.com/tzwi/fcncmva/internal/method"
	"github.com/tzwi/fcncmva/plugins"
)

// app carries what every subcommand shares: output streams and the global
// flags.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configPath string
	workDir    string
	verbose    bool
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "fcncmva",
		Short: "MVA tooling for the FCNC tZ tri-lepton analysis",
		Long: `fcncmva resolves the analysis samples from the YAML catalog, assembles
TMVA classification jobs and draws classifier-score and systematic plots.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		fmt.Fprintf(stderr, "ERROR: unknown options in argument: %v\n\n%s", err, cmd.UsageString())
		return err
	})

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "path to "+config.FileName+" (default: ./"+config.FileName+" if present)")
	flags.StringVar(&a.workDir, "workdir", "", "directory relative outputs resolve against (default: current directory)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging and verbose TMVA factory")

	root.AddCommand(
		newClassifyCmd(a),
		newResolveCmd(a),
		newValidateCmd(a),
		newDrawScoreCmd(a),
		newDrawSystCmd(a),
		newInitCmd(a),
	)
	return root
}

func (a *app) dir() (string, error) {
	if a.workDir != "" {
		return a.workDir, nil
	}
	return os.Getwd()
}

func (a *app) loadConfig() (*config.Config, error) {
	dir, err := a.dir()
	if err != nil {
		return nil, err
	}
	return config.Load(a.configPath, dir)
}

// session is a loaded configuration with its run log open.
type session struct {
	cfg    *config.Config
	logger *logging.Logger
}

func (a *app) open() (*session, error) {
	cfg, err := a.loadConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(cfg.OutputDir(), a.verbose, a.stderr)
	if err != nil {
		return nil, err
	}
	if cfg.Path != "" {
		logger.Debug("configuration loaded", "path", cfg.Path)
	}
	return &session{cfg: cfg, logger: logger}, nil
}

func (s *session) Close() error {
	return s.logger.Close()
}

func (s *session) catalog() (*catalog.Catalog, error) {
	return catalog.Load(s.cfg.CatalogPaths(), catalog.WithLogger(s.logger.Logger))
}

func (s *session) resolve(cat *catalog.Catalog, sel dataset.Selection) (dataset.Result, error) {
	samples := s.cfg.Analysis.Samples
	r, err := dataset.New(cat, samples.BaseDir,
		dataset.WithLayout(samples.Layout),
		dataset.WithMarkers(samples.SignalMarker, samples.DataMarker),
		dataset.WithWeigher(s.cfg.Weigher(cat.CrossSections)),
		dataset.WithLogger(s.logger.Logger),
	)
	if err != nil {
		return dataset.Result{}, err
	}
	return r.Resolve(sel)
}

// methods returns the builtin bookings plus the configured plugins.
func (s *session) methods() (*method.Registry, error) {
	reg := method.Builtin()
	names, err := plugins.RegisterMethodPlugins(reg, s.cfg.Analysis.Methods.PluginDir)
	if err != nil {
		return nil, err
	}
	if len(names) > 0 {
		s.logger.Info("classifier method plugins registered", "dir", s.cfg.Analysis.Methods.PluginDir, "methods", names)
	}
	return reg, nil
}
