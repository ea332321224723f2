// internal/config/config.go
//
// This package loads analysis.yaml: where the analysis lives, which catalog
// documents describe its samples, how sample directories are laid out, and
// how outputs and plots are organised.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/catalog"
	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/quota"
	"github.com/tzwi/fcncmva/internal/rootio"
	"github.com/tzwi/fcncmva/internal/shape"
)

const (
	// FileName is the analysis configuration looked up in the working directory.
	FileName = "analysis.yaml"

	// EnvCMSSWBase names the CMSSW release area.
	EnvCMSSWBase = "CMSSW_BASE"

	analysisSubdir = "src/TZWi/TopAnalysis/test/fcncTriLepton"
)

const defaultAnalysisYAML = `# fcncmva analysis configuration
version: 1

# Analysis directory. Empty means $CMSSW_BASE/src/TZWi/TopAnalysis/test/fcncTriLepton.
root_dir: ""

# Catalog documents, relative to root_dir. Dataset fragments are applied in
# pattern order, files of one pattern in sorted order; later files win.
catalog:
  grouping: config/grouping.yaml
  crosssection: config/crosssection.yaml
  datasets:
    - config/datasets/MC*16*.yaml

samples:
  base_dir: ntuple_2016_tightLepVetoJet
  layout: "{base}/*/{mode}/{dataset}"
  tree: Events
  signal_marker: FCNC
  data_marker: Data
  backgrounds: [SingleTopV, WZ, ZZ, ttV]

weighting:
  cross_section: false
  luminosity: 35900

output:
  dir: output

# Extra classifier bookings: *.yaml definitions and *.go files defining
# MethodDefinitions(), relative to root_dir.
methods:
  plugin_dir: TMVA/methods

root:
  binary: root
  config: root-config

shape:
  label: bugfix_bkg1_half
  workers: 2
`

// CatalogConfig locates the catalog documents.
type CatalogConfig struct {
	Grouping     string   `yaml:"grouping" validate:"required"`
	CrossSection string   `yaml:"crosssection" validate:"required"`
	Datasets     []string `yaml:"datasets" validate:"required,min=1,dive,required"`
}

// SampleConfig describes the sample directory tree.
type SampleConfig struct {
	BaseDir      string   `yaml:"base_dir" validate:"required"`
	Layout       string   `yaml:"layout" validate:"required,contains={dataset}"`
	Tree         string   `yaml:"tree" validate:"required"`
	SignalMarker string   `yaml:"signal_marker" validate:"required"`
	DataMarker   string   `yaml:"data_marker" validate:"required"`
	Backgrounds  []string `yaml:"backgrounds" validate:"required,min=1,dive,required"`
}

// WeightConfig toggles cross-section weighting of samples.
type WeightConfig struct {
	CrossSection bool    `yaml:"cross_section"`
	Luminosity   float64 `yaml:"luminosity" validate:"gte=0"`
}

// OutputConfig locates run outputs.
type OutputConfig struct {
	Dir string `yaml:"dir" validate:"required"`
}

// MethodsConfig locates classifier method plugins.
type MethodsConfig struct {
	PluginDir string `yaml:"plugin_dir"`
}

// RootConfig names the ROOT executables.
type RootConfig struct {
	Binary string `yaml:"binary" validate:"required"`
	Config string `yaml:"config" validate:"required"`
}

// ShapeConfig drives the plotting commands.
type ShapeConfig struct {
	Label   string            `yaml:"label" validate:"required"`
	Dir     string            `yaml:"dir"`
	Workers int               `yaml:"workers" validate:"gte=1"`
	Score   shape.ScoreConfig `yaml:"score"`
	Syst    shape.SystConfig  `yaml:"syst"`
}

// Analysis models analysis.yaml.
type Analysis struct {
	Version   int           `yaml:"version" validate:"gte=1"`
	RootDir   string        `yaml:"root_dir"`
	Catalog   CatalogConfig `yaml:"catalog"`
	Samples   SampleConfig  `yaml:"samples"`
	Weighting WeightConfig  `yaml:"weighting"`
	Output    OutputConfig  `yaml:"output"`
	Methods   MethodsConfig `yaml:"methods"`
	Root      RootConfig    `yaml:"root"`
	Quota     *quota.Table  `yaml:"quota,omitempty"`
	Shape     ShapeConfig   `yaml:"shape"`
}

// Config holds the runtime configuration.
type Config struct {
	// WorkDir is the directory fcncmva runs from; relative output paths
	// resolve against it.
	WorkDir string

	// Path is the analysis.yaml that was loaded, empty when running on
	// defaults.
	Path string

	Analysis Analysis
}

// Load reads the configuration. An empty path looks for analysis.yaml in
// workDir and falls back to defaults when it does not exist; an explicit path
// must exist.
func Load(path, workDir string) (*Config, error) {
	cfg := &Config{WorkDir: workDir, Analysis: defaultAnalysis()}

	explicit := path != ""
	if !explicit {
		path = filepath.Join(workDir, FileName)
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		cfg.Path = path
		if err := yaml.Unmarshal(data, &cfg.Analysis); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg.Analysis.applyDefaults()
	cfg.Analysis.normalize(os.Getenv(EnvCMSSWBase))
	if err := cfg.Analysis.validate(); err != nil {
		if cfg.Path != "" {
			return nil, fmt.Errorf("config: %s: %w", cfg.Path, err)
		}
		return nil, fmt.Errorf("config: %w", err)
	}
	return cfg, nil
}

// InitFile writes the default analysis.yaml into dir unless one exists and
// returns its path.
func InitFile(dir string) (string, error) {
	path := filepath.Join(dir, FileName)
	if _, err := os.Stat(path); err == nil {
		return path, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return path, os.WriteFile(path, []byte(defaultAnalysisYAML), 0o644)
}

func defaultAnalysis() Analysis {
	var a Analysis
	if err := yaml.Unmarshal([]byte(defaultAnalysisYAML), &a); err != nil {
		panic(fmt.Sprintf("config: default analysis.yaml: %v", err))
	}
	a.Shape.Score = shape.DefaultScoreConfig()
	a.Shape.Syst = shape.DefaultSystConfig()
	return a
}

func (a *Analysis) applyDefaults() {
	if a.Version == 0 {
		a.Version = 1
	}
	if a.Shape.Workers == 0 {
		a.Shape.Workers = 1
	}
	if a.Samples.Layout == "" {
		a.Samples.Layout = dataset.DefaultLayout
	}
	if strings.TrimSpace(a.Samples.Tree) == "" {
		a.Samples.Tree = rootio.DefaultTree
	}
	if a.Quota != nil {
		table := quota.DefaultTable()
		mergeQuota(&table, *a.Quota)
		*a.Quota = table
	}
}

// mergeQuota overlays the non-zero parts of override onto base.
func mergeQuota(base *quota.Table, override quota.Table) {
	if override.Fraction != 0 {
		base.Fraction = override.Fraction
	}
	if override.BackgroundSize != 0 {
		base.BackgroundSize = override.BackgroundSize
	}
	for ch, counts := range override.Signal {
		base.Signal[ch] = counts
	}
	for ch, counts := range override.Background {
		base.Background[ch] = counts
	}
}

func (a *Analysis) normalize(cmsswBase string) {
	a.RootDir = strings.TrimSpace(a.RootDir)
	if a.RootDir == "" && strings.TrimSpace(cmsswBase) != "" {
		a.RootDir = filepath.Join(strings.TrimSpace(cmsswBase), analysisSubdir)
	}
	if a.RootDir != "" {
		a.RootDir = filepath.Clean(a.RootDir)
	}
	root := a.RootDir
	a.Catalog.Grouping = resolvePath(root, a.Catalog.Grouping)
	a.Catalog.CrossSection = resolvePath(root, a.Catalog.CrossSection)
	for i, pattern := range a.Catalog.Datasets {
		a.Catalog.Datasets[i] = resolvePath(root, pattern)
	}
	a.Samples.BaseDir = resolvePath(root, a.Samples.BaseDir)
	a.Methods.PluginDir = resolvePath(root, a.Methods.PluginDir)
	a.Samples.Backgrounds = trimAll(a.Samples.Backgrounds)
	a.Shape.Label = strings.TrimSpace(a.Shape.Label)
	a.Shape.Dir = resolvePath(root, a.Shape.Dir)
}

func (a *Analysis) validate() error {
	if a.RootDir == "" {
		return fmt.Errorf("root_dir is required; set it in %s or export %s", FileName, EnvCMSSWBase)
	}
	if err := validate.Struct(a); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if a.Weighting.CrossSection && a.Weighting.Luminosity <= 0 {
		return fmt.Errorf("weighting.luminosity must be positive when cross_section weighting is on")
	}
	if a.Quota != nil {
		if err := a.Quota.Validate(); err != nil {
			return err
		}
	}
	if err := a.Shape.Score.CheckColors(); err != nil {
		return err
	}
	if dup := firstDuplicate(a.Samples.Backgrounds); dup != "" {
		return fmt.Errorf("samples.backgrounds lists %s twice", dup)
	}
	return nil
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// CatalogPaths returns the resolved catalog documents.
func (c *Config) CatalogPaths() catalog.Paths {
	return catalog.Paths{
		Grouping:     c.Analysis.Catalog.Grouping,
		CrossSection: c.Analysis.Catalog.CrossSection,
		Datasets:     append([]string(nil), c.Analysis.Catalog.Datasets...),
	}
}

// OutputDir returns the output directory resolved against WorkDir.
func (c *Config) OutputDir() string {
	return resolvePath(c.WorkDir, c.Analysis.Output.Dir)
}

// Layout returns the artifact layout of this configuration.
func (c *Config) Layout() artifact.Layout {
	return artifact.Layout{
		Root:     c.Analysis.RootDir,
		Output:   c.OutputDir(),
		ShapeDir: c.Analysis.Shape.Dir,
	}
}

// QuotaTable returns the configured table or the built-in default.
func (c *Config) QuotaTable() quota.Table {
	if c.Analysis.Quota != nil {
		return *c.Analysis.Quota
	}
	return quota.DefaultTable()
}

// Weigher returns the sample weigher for the configured weighting mode.
func (c *Config) Weigher(xs catalog.CrossSections) dataset.Weigher {
	if !c.Analysis.Weighting.CrossSection {
		return dataset.UnitWeight{}
	}
	return dataset.CrossSectionWeight{Luminosity: c.Analysis.Weighting.Luminosity, CrossSections: xs}
}

func trimAll(values []string) []string {
	out := values[:0]
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func firstDuplicate(values []string) string {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			return v
		}
		seen[v] = struct{}{}
	}
	return ""
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) || base == "" {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}
