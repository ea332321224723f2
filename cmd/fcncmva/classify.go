package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/logbook"
	"github.com/tzwi/fcncmva/internal/method"
	"github.com/tzwi/fcncmva/internal/rootio"
	"github.com/tzwi/fcncmva/internal/tmva"
)

const (
	defaultInputFile  = "tmva_class_example.root"
	defaultOutputFile = tmva.DefaultOutputName + ".root"
)

type classifyOptions struct {
	methods    string
	inputFile  string
	outputFile string
	trees      string
	cut        string
	run        bool
	selection  selectionFlags
}

func newClassifyCmd(a *app) *cobra.Command {
	opts := &classifyOptions{}
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Assemble (and optionally run) a TMVA classification job",
		Long: `classify resolves the signal and background samples for the selected
channels and modes, books the requested classifier methods and writes the job
as output/<name>.job.yaml and output/<name>.C. With --run the macro is
executed by ROOT. The weight directory is result_<outputfile>.`,
		Example: `  fcncmva classify --channel TTZct --mode ElElEl --methods BDT,BDTG --outputfile fcnc_3El_TTZct_4bkg_BDT_G
  fcncmva classify -C TTZct,TTZut -M ElElEl,MuElEl -m BDT,BDTG -o fcnc_3El_1Mu2El_TTsig_4bkg_BDT_G
  fcncmva classify -C STZct,STZut -m BDT,BDTG -o fcnc_allCH_STsig_4bkg_BDT_G`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runClassify(cmd.Context(), a, opts, cmd.Flags().Changed("outputfile"))
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&opts.methods, "methods", "m", method.DefaultMethods, "classifier methods to book")
	flags.StringVarP(&opts.inputFile, "inputfile", "i", defaultInputFile, "name of the input ROOT file, recorded in the job")
	flags.StringVarP(&opts.outputFile, "outputfile", "o", defaultOutputFile, "name of the output ROOT file containing results")
	flags.StringVarP(&opts.trees, "inputtrees", "t", tmva.DefaultTreeNames.Signal+" "+tmva.DefaultTreeNames.Background,
		"signal and background tree names")
	flags.StringVar(&opts.cut, "cut", "", "selection cut applied when no particular channel is selected")
	flags.BoolVar(&opts.run, "run", false, "execute the rendered macro with ROOT")
	opts.selection.bind(cmd)
	return cmd
}

func runClassify(ctx context.Context, a *app, opts *classifyOptions, namedOutput bool) error {
	if ctx == nil {
		ctx = context.Background()
	}
	trees, err := tmva.ParseTreeNames(opts.trees)
	if err != nil {
		return err
	}
	if err := opts.selection.parse(); err != nil {
		return err
	}
	requested := method.ParseList(opts.methods)
	fmt.Fprintf(a.stdout, "=== fcncmva classify: channels %v\n", opts.selection.parsedChannels)
	fmt.Fprintln(a.stdout, "=== use method(s)...")
	for _, name := range requested {
		fmt.Fprintf(a.stdout, "=== - <%s>\n", name)
	}

	s, err := a.open()
	if err != nil {
		return err
	}
	defer s.Close()
	cfg := s.cfg

	if err := checkROOT(ctx, s); err != nil {
		return err
	}

	cat, err := s.catalog()
	if err != nil {
		return err
	}
	sel := opts.selection.selection(cfg.Analysis.Samples.Backgrounds)
	res, err := s.resolve(cat, sel)
	if err != nil {
		return err
	}

	reg, err := s.methods()
	if err != nil {
		return err
	}
	bookings, _, err := reg.Select(requested, s.logger.Logger)
	if err != nil {
		return err
	}
	if len(bookings) == 0 {
		return fmt.Errorf("no known classifier method in %q", opts.methods)
	}

	name := ""
	if namedOutput {
		name = opts.outputFile
	}
	job := tmva.NewJob(name,
		tmva.WithOutputDir(cfg.OutputDir()),
		tmva.WithVerbose(a.verbose),
		tmva.WithInputFile(opts.inputFile),
		tmva.WithTrees(trees),
	)

	store := artifact.NewStore(cfg.Layout())
	journalPath, err := store.Ensure(artifact.RunJournal, artifact.Key{})
	if err != nil {
		return err
	}
	journal, err := logbook.New(journalPath, logbook.WithRun(job.RunID))
	if err != nil {
		return err
	}
	registrar := tmva.NewRegistrar(rootio.TreeCounter{},
		tmva.WithTree(cfg.Analysis.Samples.Tree),
		tmva.WithRegistrarLogger(s.logger.Logger),
		tmva.WithJournal(journal),
	)

	plan := tmva.Plan{
		Channels: sel.Channels,
		UserCut:  opts.cut,
		Quota:    cfg.QuotaTable().Lookup(sel.Channels, sel.Modes, len(sel.Backgrounds)),
		Methods:  bookings,
	}
	stats, err := tmva.Assemble(job, &res, plan, registrar)
	if err != nil {
		return err
	}
	if err := job.WriteFiles(); err != nil {
		return err
	}
	s.logger.Info("classification job written",
		"run", job.RunID, "manifest", job.ManifestPath(), "macro", job.MacroPath(),
		"signal_files", stats.Signal, "background_files", stats.Background,
		"empty", stats.Empty, "unreadable", stats.Unreadable)

	fmt.Fprintf(a.stdout, "=== split: %s\n", job.SplitOptions)
	fmt.Fprintf(a.stdout, "=== samples: %d signal, %d background (%d empty, %d unreadable skipped)\n",
		stats.Signal, stats.Background, stats.Empty, stats.Unreadable)
	fmt.Fprintf(a.stdout, "=== wrote %s\n=== wrote %s\n", job.ManifestPath(), job.MacroPath())
	fmt.Fprintf(a.stdout, "=== weights will go to %s\n", job.WeightDir)
	printJournal(a, journal)

	if !opts.run {
		return nil
	}
	runner := tmva.Runner{
		Binary: cfg.Analysis.Root.Binary,
		Stdout: a.stdout,
		Stderr: a.stderr,
		Logger: s.logger.Logger,
	}
	if err := runner.Run(ctx, job.MacroPath()); err != nil {
		journal.Error("training failed: %v", err)
		return err
	}
	journal.Info("training finished: %s", job.OutputFile)
	return nil
}

const journalTailLines = 5

// printJournal shows the size of the run journal and its latest entries.
func printJournal(a *app, journal *logbook.Logbook) {
	lines, total := journal.Tail(journalTailLines)
	fmt.Fprintf(a.stdout, "=== journal %s: %d entries\n", journal.Path(), total)
	for _, line := range lines {
		fmt.Fprintf(a.stdout, "===   %s\n", line)
	}
}

// checkROOT enforces the version gate. A missing root-config only warns so
// jobs can be prepared on machines without ROOT.
func checkROOT(ctx context.Context, s *session) error {
	raw, code, err := tmva.DetectVersion(ctx, s.cfg.Analysis.Root.Config)
	if err != nil {
		s.logger.Warn("ROOT version unknown; skipping compatibility check", "err", err)
		return nil
	}
	s.logger.Debug("ROOT detected", "version", raw, "code", code)
	return tmva.CheckVersion(code)
}
