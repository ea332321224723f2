package dataset

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/tzwi/fcncmva/internal/catalog"
	"github.com/tzwi/fcncmva/internal/physics"
)

// Kind tells signal entries from background entries.
type Kind int

const (
	KindSignal Kind = iota
	KindBackground
)

func (k Kind) String() string {
	if k == KindSignal {
		return "signal"
	}
	return "background"
}

// MarshalText implements encoding.TextMarshaler.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "signal":
		*k = KindSignal
	case "background":
		*k = KindBackground
	default:
		return fmt.Errorf("dataset: unknown kind %q", text)
	}
	return nil
}

// Entry is one resolved (mode, dataset name) sample.
type Entry struct {
	Mode         physics.Mode `yaml:"mode"`
	Process      string       `yaml:"process"`
	Title        string       `yaml:"title"`
	DatasetGroup string       `yaml:"dataset_group"`
	DatasetName  string       `yaml:"dataset"`
	Match        string       `yaml:"match"`
	Kind         Kind         `yaml:"kind"`
	Pattern      string       `yaml:"pattern"`
	Paths        []string     `yaml:"paths"`
	Weight       float64      `yaml:"weight"`
}

// SkippedRef records a process dataset group the registry does not know.
type SkippedRef struct {
	Mode         physics.Mode `yaml:"mode"`
	Process      string       `yaml:"process"`
	DatasetGroup string       `yaml:"dataset_group"`
}

// Selection is the user's choice of signal channels, modes and the background
// allow-list.
type Selection struct {
	Channels    []physics.Channel
	Modes       []physics.Mode
	Backgrounds []string
}

// DefaultBackgrounds are the four processes with the largest yields in the
// signal regions.
var DefaultBackgrounds = []string{"SingleTopV", "WZ", "ZZ", "ttV"}

// Result is the outcome of one resolution.
type Result struct {
	Signal     []Entry      `yaml:"signal"`
	Background []Entry      `yaml:"background"`
	Skipped    []SkippedRef `yaml:"skipped,omitempty"`
	Duplicates int          `yaml:"duplicates,omitempty"`
	// Unfiltered is set when the default channel set was selected and signal
	// entries were taken without channel filtering.
	Unfiltered bool `yaml:"unfiltered"`
}

// Entries returns signal followed by background entries.
func (r Result) Entries() []Entry {
	out := make([]Entry, 0, len(r.Signal)+len(r.Background))
	out = append(out, r.Signal...)
	return append(out, r.Background...)
}

// Globber expands a file-system pattern.
type Globber func(pattern string) ([]string, error)

// Option customizes a Resolver.
type Option func(*Resolver)

// WithLayout overrides the sample path template (see DefaultLayout).
func WithLayout(layout string) Option {
	return func(r *Resolver) {
		if strings.TrimSpace(layout) != "" {
			r.layout = layout
		}
	}
}

// WithGlob replaces filepath.Glob.
func WithGlob(g Globber) Option {
	return func(r *Resolver) {
		if g != nil {
			r.glob = g
		}
	}
}

// WithWeigher sets the per-sample weighting (default UnitWeight).
func WithWeigher(w Weigher) Option {
	return func(r *Resolver) {
		if w != nil {
			r.weigher = w
		}
	}
}

// WithMarkers sets the dataset-group substring that marks signal samples and
// the process-title substring that marks collision data.
func WithMarkers(signal, data string) Option {
	return func(r *Resolver) {
		if signal != "" {
			r.signalMarker = signal
		}
		r.dataMarker = data
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// Resolver maps a catalog and a selection onto input files.
type Resolver struct {
	catalog      *catalog.Catalog
	baseDir      string
	layout       string
	signalMarker string
	dataMarker   string
	glob         Globber
	weigher      Weigher
	logger       *slog.Logger
}

// New constructs a resolver rooted at baseDir.
func New(cat *catalog.Catalog, baseDir string, opts ...Option) (*Resolver, error) {
	if cat == nil {
		return nil, fmt.Errorf("dataset: catalog is required")
	}
	if strings.TrimSpace(baseDir) == "" {
		return nil, fmt.Errorf("dataset: base directory is required")
	}
	r := &Resolver{
		catalog:      cat,
		baseDir:      baseDir,
		layout:       DefaultLayout,
		signalMarker: "FCNC",
		dataMarker:   "Data",
		glob:         filepath.Glob,
		weigher:      UnitWeight{},
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

type entryKey struct {
	mode physics.Mode
	kind Kind
	name string
}

// Resolve walks mode, process, dataset group, dataset name and then the
// channel or background names, emitting at most one entry per
// (mode, dataset name, kind).
func (r *Resolver) Resolve(sel Selection) (Result, error) {
	if len(sel.Modes) == 0 {
		return Result{}, fmt.Errorf("dataset: at least one mode is required")
	}
	if len(sel.Channels) == 0 {
		return Result{}, fmt.Errorf("dataset: at least one channel is required")
	}
	res := Result{Unfiltered: physics.IsDefaultChannelSet(sel.Channels)}
	if res.Unfiltered {
		r.logger.Info("no particular signal region selected; every signal sample is used without channel filtering")
	}
	seen := map[entryKey]bool{}
	reportedMissing := map[string]bool{}

	for _, mode := range sel.Modes {
		for _, proc := range r.catalog.Processes {
			if proc.IsRealData(r.dataMarker) {
				continue
			}
			for _, groupKey := range proc.Datasets {
				group, ok := r.catalog.Datasets.Group(groupKey)
				if !ok {
					res.Skipped = append(res.Skipped, SkippedRef{Mode: mode, Process: proc.ID, DatasetGroup: groupKey})
					if id := proc.ID + "\x00" + groupKey; !reportedMissing[id] {
						reportedMissing[id] = true
						r.logger.Warn("dataset group missing from registry; no files for this pairing",
							"process", proc.ID, "dataset_group", groupKey)
					}
					continue
				}
				isSignal := strings.Contains(groupKey, r.signalMarker)
				match, ok := r.match(proc, isSignal, sel)
				if !ok {
					continue
				}
				kind := KindBackground
				if isSignal {
					kind = KindSignal
				}
				for _, name := range group.Names {
					key := entryKey{mode: mode, kind: kind, name: name}
					if seen[key] {
						res.Duplicates++
						r.logger.Debug("dataset already resolved; dropping repeat",
							"mode", mode.String(), "dataset", name, "process", proc.ID)
						continue
					}
					seen[key] = true
					entry, err := r.entry(mode, proc, groupKey, name, match, kind)
					if err != nil {
						return Result{}, err
					}
					if kind == KindSignal {
						res.Signal = append(res.Signal, entry)
					} else {
						res.Background = append(res.Background, entry)
					}
				}
			}
		}
	}
	r.logger.Info("datasets resolved",
		"signal", len(res.Signal), "background", len(res.Background),
		"skipped", len(res.Skipped), "duplicates", res.Duplicates)
	return res, nil
}

func (r *Resolver) match(proc catalog.Process, isSignal bool, sel Selection) (string, bool) {
	if isSignal {
		if physics.IsDefaultChannelSet(sel.Channels) {
			return "*", true
		}
		for _, ch := range sel.Channels {
			if strings.Contains(proc.Title, ch.String()) {
				return ch.String(), true
			}
		}
		return "", false
	}
	for _, bkg := range sel.Backgrounds {
		if bkg != "" && strings.Contains(proc.Title, bkg) {
			return bkg, true
		}
	}
	return "", false
}

func (r *Resolver) entry(mode physics.Mode, proc catalog.Process, groupKey, name, match string, kind Kind) (Entry, error) {
	pattern := ExpandLayout(r.layout, r.baseDir, mode, name)
	paths, err := r.glob(pattern)
	if err != nil {
		return Entry{}, fmt.Errorf("dataset: expand %s: %w", pattern, err)
	}
	if len(paths) == 0 {
		r.logger.Debug("no files match sample pattern", "pattern", pattern)
	}
	weight, err := r.weigher.Weight(proc, name)
	if err != nil {
		r.logger.Warn("sample weight unavailable; using 1.0", "dataset", name, "err", err)
		weight = 1.0
	}
	return Entry{
		Mode:         mode,
		Process:      proc.ID,
		Title:        proc.Title,
		DatasetGroup: groupKey,
		DatasetName:  name,
		Match:        match,
		Kind:         kind,
		Pattern:      pattern,
		Paths:        paths,
		Weight:       weight,
	}, nil
}
