// Package artifact defines the filesystem conventions of an analysis run:
// where logs, shape inputs and rendered plots live. Each artifact has a
// stable identifier, a kind, and a resolver that maps a Layout and Key to the
// actual path.
package artifact

import (
	"fmt"
	"path/filepath"
	"sort"
)

// Kind captures the storage shape of an artifact.
type Kind string

const (
	// KindFile is a regular file.
	KindFile Kind = "file"
	// KindDirectory is a directory that must exist.
	KindDirectory Kind = "directory"
)

// Layout anchors every artifact path.
type Layout struct {
	// Root is the analysis directory (fcncTriLepton).
	Root string
	// Output receives logs and the run journal.
	Output string
	// ShapeDir holds shape/<label>/*.root inputs. Empty means <Root>/TMVA/shape.
	ShapeDir string
}

// Shapes returns the directory holding per-label shape inputs.
func (l Layout) Shapes() string {
	if l.ShapeDir != "" {
		return l.ShapeDir
	}
	return filepath.Join(l.Root, "TMVA", "shape")
}

// Key selects one instance of a parameterised artifact.
type Key struct {
	Label   string
	Channel string
	Mode    string
	Syst    string
	Flag    string
	Ext     string
}

// PathResolver maps a layout and key to a path.
type PathResolver func(Layout, Key) string

// Ref declares a stable identifier and metadata for an artifact.
type Ref struct {
	ID          string
	Name        string
	Description string
	Kind        Kind
	path        PathResolver
}

// Path resolves the artifact path.
func (r Ref) Path(l Layout, k Key) string {
	if r.path == nil {
		return ""
	}
	p := r.path(l, k)
	if p == "" {
		return ""
	}
	return filepath.Clean(p)
}

// Validate ensures the reference is well-formed.
func (r Ref) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("artifact: id is required")
	}
	if r.Kind == "" {
		return fmt.Errorf("artifact: kind is required for %s", r.ID)
	}
	if r.path == nil {
		return fmt.Errorf("artifact: path resolver missing for %s", r.ID)
	}
	return nil
}

// State captures the readiness of an artifact on disk.
type State string

const (
	StateMissing State = "missing"
	StateReady   State = "ready"
	StateInvalid State = "invalid"
	StateError   State = "error"
)

// CheckResult captures Store.Check results.
type CheckResult struct {
	Ref   Ref
	Path  string
	State State
	Err   error
}

func register(ref Ref) Ref {
	if refs == nil {
		refs = map[string]Ref{}
	}
	refs[ref.ID] = ref
	return ref
}

var refs map[string]Ref

// Lookup returns a registered artifact reference by ID.
func Lookup(id string) (Ref, bool) {
	ref, ok := refs[id]
	return ref, ok
}

// IDs returns the sorted identifiers of every registered reference.
func IDs() []string {
	ids := make([]string, 0, len(refs))
	for id := range refs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func newFileRef(id, name, desc string, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: KindFile, path: resolver}
}

func newDirectoryRef(id, name, desc string, resolver PathResolver) Ref {
	return Ref{ID: id, Name: name, Description: desc, Kind: KindDirectory, path: resolver}
}

func labelDir(l Layout, k Key) string {
	return filepath.Join(l.Shapes(), k.Label)
}

// Canonical references for classification runs and shape plotting.
var (
	LogDir = register(newDirectoryRef("log-dir", "Log Directory", "<output>/logs holding the run log and journal", func(l Layout, _ Key) string {
		return filepath.Join(l.Output, "logs")
	}))
	RunJournal = register(newFileRef("run-journal", "Run Journal", "line-oriented record of registered samples", func(l Layout, _ Key) string {
		return filepath.Join(l.Output, "logs", "run.journal")
	}))

	ScoreInput = register(newFileRef("score-input", "Score Shapes", "shape/<label>/add_shape_<channel>.root with data, MC and signal score histograms", func(l Layout, k Key) string {
		return filepath.Join(labelDir(l, k), "add_shape_"+k.Channel+".root")
	}))
	SystInput = register(newFileRef("syst-input", "Systematic Shapes", "shape/<label>/shape_<channel>.root with central and up/down histograms", func(l Layout, k Key) string {
		return filepath.Join(labelDir(l, k), "shape_"+k.Channel+".root")
	}))

	PlotDir = register(newDirectoryRef("plot-dir", "Plot Directory", "<root>/TMVA/shape/<label>/plots_<channel>", func(l Layout, k Key) string {
		return filepath.Join(l.Root, "TMVA", "shape", k.Label, "plots_"+k.Channel)
	}))
	ScorePlot = register(newFileRef("score-plot", "Score Plot", "MVAdist_<mode>_<channel>.<ext>", func(l Layout, k Key) string {
		return filepath.Join(PlotDir.Path(l, k), fmt.Sprintf("MVAdist_%s_%s.%s", k.Mode, k.Channel, k.Ext))
	}))
	SystPlot = register(newFileRef("syst-plot", "Systematic Plot", "MVAdist_<syst>_<signal|background>.<ext>", func(l Layout, k Key) string {
		return filepath.Join(PlotDir.Path(l, k), fmt.Sprintf("MVAdist_%s_%s.%s", k.Syst, k.Flag, k.Ext))
	}))
)
