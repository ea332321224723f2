package catalog

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Paths locates the catalog documents on disk. Datasets holds glob patterns;
// fragments matched by a later pattern take precedence over earlier ones and,
// within one pattern, lexically later files win.
type Paths struct {
	Grouping     string
	CrossSection string
	Datasets     []string
}

// Option customizes catalog loading.
type Option func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLogger sets the logger used to report fragment overwrites.
func WithLogger(l *slog.Logger) Option {
	return func(o *loadOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// Load reads and merges every catalog document.
func Load(paths Paths, opts ...Option) (*Catalog, error) {
	o := loadOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	procs, err := LoadGroupingFile(paths.Grouping)
	if err != nil {
		return nil, err
	}
	xsec, err := LoadCrossSectionFile(paths.CrossSection)
	if err != nil {
		return nil, err
	}
	files, err := ExpandFragments(paths.Datasets)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("catalog: no dataset fragments match %v", paths.Datasets)
	}
	reg, overwrites, err := LoadDatasetFragments(files)
	if err != nil {
		return nil, err
	}
	for _, ow := range overwrites {
		o.logger.Warn("dataset group redefined by later fragment",
			"group", ow.Key, "previous", ow.Previous, "winner", ow.Winner)
	}
	o.logger.Debug("catalog loaded",
		"processes", len(procs), "dataset_groups", reg.Len(), "fragments", len(files))
	return &Catalog{
		Processes:     procs,
		CrossSections: xsec,
		Datasets:      reg,
		Overwrites:    overwrites,
	}, nil
}

// LoadGroupingFile reads grouping.yaml from disk.
func LoadGroupingFile(path string) ([]Process, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	procs, err := ParseGroupingYAML(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return procs, nil
}

// LoadCrossSectionFile reads crosssection.yaml from disk.
func LoadCrossSectionFile(path string) (CrossSections, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return CrossSections{}, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	cs, err := ParseCrossSectionYAML(data)
	if err != nil {
		return CrossSections{}, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return cs, nil
}

// ExpandFragments resolves glob patterns into the ordered fragment list. A file
// matched by several patterns keeps its last position so the later pattern
// decides its precedence.
func ExpandFragments(patterns []string) ([]string, error) {
	var ordered []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("catalog: bad fragment pattern %q: %w", pattern, err)
		}
		sort.Strings(matches)
		for _, m := range matches {
			ordered = removeString(ordered, filepath.Clean(m))
			ordered = append(ordered, filepath.Clean(m))
		}
	}
	return ordered, nil
}

// LoadDatasetFragments merges fragments in the given order. Later fragments
// replace whole dataset groups declared earlier.
func LoadDatasetFragments(files []string) (*Registry, []Overwrite, error) {
	reg := NewRegistry()
	var overwrites []Overwrite
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: read %s: %w", path, err)
		}
		groups, err := ParseDatasetFragmentYAML(data)
		if err != nil {
			return nil, nil, fmt.Errorf("catalog: %s: %w", path, err)
		}
		for _, g := range groups {
			g.Source = path
			if prev := reg.Put(g); prev != nil {
				overwrites = append(overwrites, Overwrite{Key: g.Key, Previous: prev.Source, Winner: path})
			}
		}
	}
	return reg, overwrites, nil
}

func removeString(list []string, s string) []string {
	for i, v := range list {
		if v == s {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
