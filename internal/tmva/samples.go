package tmva

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/logbook"
	"github.com/tzwi/fcncmva/internal/rootio"
)

// EntryCounter reports the number of entries of a tree.
type EntryCounter interface {
	Entries(path, tree string) (int64, error)
}

// SampleStats summarises a registration pass.
type SampleStats struct {
	Signal     int `yaml:"signal"`
	Background int `yaml:"background"`
	Empty      int `yaml:"empty"`
	Unreadable int `yaml:"unreadable"`
}

// RegistrarOption customises a Registrar.
type RegistrarOption func(*Registrar)

// WithTree sets the tree read from every sample file.
func WithTree(name string) RegistrarOption {
	return func(r *Registrar) {
		if name != "" {
			r.tree = name
		}
	}
}

// WithRegistrarLogger routes diagnostics to logger.
func WithRegistrarLogger(logger *slog.Logger) RegistrarOption {
	return func(r *Registrar) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithJournal records every registration decision in a run journal.
func WithJournal(book *logbook.Logbook) RegistrarOption {
	return func(r *Registrar) { r.journal = book }
}

// Registrar opens every file of every resolved sample directory and hands
// non-empty trees to the engine.
type Registrar struct {
	counter EntryCounter
	tree    string
	logger  *slog.Logger
	journal *logbook.Logbook
}

// NewRegistrar builds a registrar around counter.
func NewRegistrar(counter EntryCounter, opts ...RegistrarOption) *Registrar {
	r := &Registrar{counter: counter, tree: rootio.DefaultTree, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds every resolved signal and background sample to e. Zero-entry
// trees are skipped and counted; unreadable files and directories are skipped
// with a warning.
func (r *Registrar) Register(e Engine, res *dataset.Result) (SampleStats, error) {
	var stats SampleStats
	if res == nil {
		return stats, fmt.Errorf("tmva: nil resolution result")
	}
	for _, entry := range res.Signal {
		r.registerEntry(e, entry, &stats)
	}
	for _, entry := range res.Background {
		r.registerEntry(e, entry, &stats)
	}
	r.logger.Info("samples registered",
		"signal", stats.Signal,
		"background", stats.Background,
		"empty", stats.Empty,
		"unreadable", stats.Unreadable,
	)
	return stats, nil
}

func (r *Registrar) registerEntry(e Engine, entry dataset.Entry, stats *SampleStats) {
	for _, dir := range entry.Paths {
		files, err := sampleFiles(dir)
		if err != nil {
			stats.Unreadable++
			r.logger.Warn("sample directory unreadable", "path", dir, "err", err)
			r.journal.Warn("unreadable %s: %v", dir, err)
			continue
		}
		for _, file := range files {
			n, err := r.counter.Entries(file, r.tree)
			if err != nil {
				stats.Unreadable++
				r.logger.Warn("sample file unreadable", "path", file, "err", err)
				r.journal.Warn("unreadable %s: %v", file, err)
				continue
			}
			if n == 0 {
				stats.Empty++
				r.logger.Debug("zero-entry sample skipped", "path", file)
				r.journal.Info("skip empty %s", file)
				continue
			}
			s := Sample{
				Kind:    entry.Kind,
				Mode:    entry.Mode,
				Process: entry.Process,
				Dataset: entry.DatasetName,
				Path:    file,
				Tree:    r.tree,
				Entries: n,
				Weight:  entry.Weight,
			}
			if entry.Kind == dataset.KindSignal {
				e.AddSignalTree(s)
				stats.Signal++
			} else {
				e.AddBackgroundTree(s)
				stats.Background++
			}
			r.journal.Info("%s %s %s entries=%d weight=%g", entry.Kind, entry.Mode, file, n, entry.Weight)
		}
	}
}

// sampleFiles lists the regular files of a sample directory in name order. A
// path naming a file is returned as is.
func sampleFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, err
	}
	files := make([]string, 0, len(entries))
	for _, de := range entries {
		if de.IsDir() {
			continue
		}
		files = append(files, filepath.Join(path, de.Name()))
	}
	sort.Strings(files)
	return files, nil
}
