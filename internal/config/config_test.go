package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tzwi/fcncmva/internal/catalog"
	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/physics"
)

func TestLoadDefaultsFromCMSSWBase(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "/cvmfs/release/CMSSW_8_0_26")
	workDir := t.TempDir()

	c, err := Load("", workDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Path != "" {
		t.Fatalf("expected no config path when running on defaults, got %q", c.Path)
	}
	root := "/cvmfs/release/CMSSW_8_0_26/src/TZWi/TopAnalysis/test/fcncTriLepton"
	if c.Analysis.RootDir != root {
		t.Fatalf("unexpected root dir %q", c.Analysis.RootDir)
	}
	paths := c.CatalogPaths()
	if paths.Grouping != filepath.Join(root, "config/grouping.yaml") {
		t.Fatalf("unexpected grouping path %q", paths.Grouping)
	}
	if len(paths.Datasets) != 1 || paths.Datasets[0] != filepath.Join(root, "config/datasets/MC*16*.yaml") {
		t.Fatalf("unexpected dataset patterns %v", paths.Datasets)
	}
	if c.Analysis.Samples.BaseDir != filepath.Join(root, "ntuple_2016_tightLepVetoJet") {
		t.Fatalf("unexpected sample base %q", c.Analysis.Samples.BaseDir)
	}
	if c.Analysis.Samples.Layout != "{base}/*/{mode}/{dataset}" {
		t.Fatalf("unexpected layout %q", c.Analysis.Samples.Layout)
	}
	if c.Analysis.Methods.PluginDir != filepath.Join(root, "TMVA/methods") {
		t.Fatalf("unexpected plugin dir %q", c.Analysis.Methods.PluginDir)
	}
	if c.OutputDir() != filepath.Join(workDir, "output") {
		t.Fatalf("unexpected output dir %q", c.OutputDir())
	}
	if c.Analysis.Weighting.Luminosity != 35900 {
		t.Fatalf("unexpected luminosity %v", c.Analysis.Weighting.Luminosity)
	}
	if c.Analysis.Shape.Label != "bugfix_bkg1_half" || c.Analysis.Shape.Workers != 2 {
		t.Fatalf("unexpected shape section %+v", c.Analysis.Shape)
	}
	if len(c.Analysis.Shape.Syst.Systematics) != 17 {
		t.Fatalf("expected default systematics, got %v", c.Analysis.Shape.Syst.Systematics)
	}
}

func TestLoadRequiresRootDir(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "")
	_, err := Load("", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), EnvCMSSWBase) {
		t.Fatalf("expected root_dir error naming %s, got %v", EnvCMSSWBase, err)
	}
}

func TestLoadParsesYaml(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "")
	workDir := t.TempDir()
	configYAML := strings.TrimSpace(`
root_dir: /data/fcnc
catalog:
  datasets:
    - config/datasets/MC*16*.yaml
    - /extra/override.yaml
samples:
  base_dir: /scratch/ntuple
  backgrounds: [" WZ ", ZZ]
weighting:
  cross_section: true
  luminosity: 41500
output:
  dir: runs
quota:
  fraction: 0.25
shape:
  label: v2
  dir: shapes
  score:
    channels: [STZut]
`)
	if err := os.WriteFile(filepath.Join(workDir, FileName), []byte(configYAML), 0o644); err != nil {
		t.Fatal(err)
	}

	c, err := Load("", workDir)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if c.Path != filepath.Join(workDir, FileName) {
		t.Fatalf("unexpected config path %q", c.Path)
	}
	a := c.Analysis
	if a.Catalog.Grouping != "/data/fcnc/config/grouping.yaml" {
		t.Fatalf("default grouping path not kept: %q", a.Catalog.Grouping)
	}
	if got := a.Catalog.Datasets; len(got) != 2 || got[0] != "/data/fcnc/config/datasets/MC*16*.yaml" || got[1] != "/extra/override.yaml" {
		t.Fatalf("unexpected dataset patterns %v", got)
	}
	if a.Samples.BaseDir != "/scratch/ntuple" {
		t.Fatalf("absolute base dir changed: %q", a.Samples.BaseDir)
	}
	if len(a.Samples.Backgrounds) != 2 || a.Samples.Backgrounds[0] != "WZ" {
		t.Fatalf("backgrounds not trimmed: %v", a.Samples.Backgrounds)
	}
	if c.OutputDir() != filepath.Join(workDir, "runs") {
		t.Fatalf("unexpected output dir %q", c.OutputDir())
	}
	layout := c.Layout()
	if layout.Root != "/data/fcnc" || layout.ShapeDir != "/data/fcnc/shapes" {
		t.Fatalf("unexpected layout %+v", layout)
	}
	table := c.QuotaTable()
	if table.Fraction != 0.25 || table.BackgroundSize != 4 {
		t.Fatalf("quota overrides not merged onto defaults: %+v", table)
	}
	if _, ok := table.Signal["TTZct"]; !ok {
		t.Fatalf("default signal counts dropped")
	}
	if got := a.Shape.Score.Channels; len(got) != 1 || got[0] != physics.STZut {
		t.Fatalf("unexpected score channels %v", got)
	}
	if a.Shape.Score.SignalScale != 10 {
		t.Fatalf("score defaults not kept, signal scale %v", a.Shape.Score.SignalScale)
	}
	w, ok := c.Weigher(catalog.CrossSections{}).(dataset.CrossSectionWeight)
	if !ok || w.Luminosity != 41500 {
		t.Fatalf("expected cross-section weigher, got %#v", c.Weigher(catalog.CrossSections{}))
	}
}

func TestLoadUnitWeightByDefault(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "/opt/cmssw")
	c, err := Load("", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := c.Weigher(catalog.CrossSections{}).(dataset.UnitWeight); !ok {
		t.Fatalf("expected unit weight, got %#v", c.Weigher(catalog.CrossSections{}))
	}
	if c.QuotaTable().Fraction != 0.5 {
		t.Fatalf("expected default quota table")
	}
}

func TestLoadBlankTreeFallsBackToNtupleTree(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte("root_dir: /analysis\nsamples:\n  tree: \"\"\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	c, err := Load(path, dir)
	if err != nil {
		t.Fatal(err)
	}
	if c.Analysis.Samples.Tree != "Events" {
		t.Fatalf("expected Events, got %q", c.Analysis.Samples.Tree)
	}
}

func TestLoadExplicitPathMustExist(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "/opt/cmssw")
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml"), t.TempDir()); err == nil {
		t.Fatalf("expected error for missing explicit config")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "/opt/cmssw")
	cases := map[string]string{
		"duplicate background": "samples:\n  backgrounds: [WZ, WZ]\n",
		"layout without dataset": "samples:\n  layout: \"{base}/{mode}\"\n",
		"zero luminosity":        "weighting:\n  cross_section: true\n  luminosity: 0\n",
		"bad colour":             "shape:\n  score:\n    signal_colors:\n      ct: kPurple\n",
		"bad format":             "shape:\n  syst:\n    formats: [gif]\n",
		"bad quota fraction":     "quota:\n  fraction: 1.5\n",
		"unknown channel":        "shape:\n  score:\n    channels: [TTHct]\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), FileName)
			if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path, t.TempDir()); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestInitFileWritesLoadableDefaults(t *testing.T) {
	t.Setenv(EnvCMSSWBase, "/opt/cmssw")
	dir := t.TempDir()
	path, err := InitFile(dir)
	if err != nil {
		t.Fatalf("InitFile returned error: %v", err)
	}
	if err := os.WriteFile(path, []byte("version: 1\nroot_dir: /keep\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := InitFile(dir); err != nil {
		t.Fatal(err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "/keep") {
		t.Fatalf("InitFile overwrote an existing file")
	}

	fresh := t.TempDir()
	if _, err := InitFile(fresh); err != nil {
		t.Fatal(err)
	}
	c, err := Load("", fresh)
	if err != nil {
		t.Fatalf("default file does not load: %v", err)
	}
	if c.Analysis.Samples.Tree != "Events" {
		t.Fatalf("unexpected tree %q", c.Analysis.Samples.Tree)
	}
}
