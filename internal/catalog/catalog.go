package catalog

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Process is one physics process group from grouping.yaml.
type Process struct {
	ID       string   `yaml:"-"`
	Title    string   `yaml:"title"`
	Datasets []string `yaml:"datasets"`
	Data     bool     `yaml:"data,omitempty"`
}

// IsRealData reports whether the process describes collision data rather than
// simulation. The explicit flag wins; older groupings only mark data through
// the title.
func (p Process) IsRealData(dataMarker string) bool {
	if p.Data {
		return true
	}
	return dataMarker != "" && strings.Contains(p.Title, dataMarker)
}

// CrossSections carries per-sample cross sections (pb) and generated event
// counts.
type CrossSections struct {
	XSec    map[string]float64 `yaml:"crosssection"`
	Entries map[string]float64 `yaml:"Entries"`
}

// Lookup returns the cross section and generated entries for the first key
// that has both.
func (cs CrossSections) Lookup(keys ...string) (xsec, entries float64, ok bool) {
	for _, key := range keys {
		x, okX := cs.XSec[key]
		n, okN := cs.Entries[key]
		if okX && okN {
			return x, n, true
		}
	}
	return 0, 0, false
}

// DatasetGroup maps an aggregation key to the dataset names stored on disk.
type DatasetGroup struct {
	Key    string
	Names  []string
	Meta   map[string]any
	Source string
}

// Registry is the merged dataset-group mapping.
type Registry struct {
	order  []string
	groups map[string]*DatasetGroup
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{groups: map[string]*DatasetGroup{}}
}

// Put installs group, replacing any group with the same key. The replaced
// group is returned so callers can report the overwrite.
func (r *Registry) Put(group DatasetGroup) (replaced *DatasetGroup) {
	if r.groups == nil {
		r.groups = map[string]*DatasetGroup{}
	}
	g := group
	if prev, ok := r.groups[g.Key]; ok {
		r.groups[g.Key] = &g
		return prev
	}
	r.groups[g.Key] = &g
	r.order = append(r.order, g.Key)
	return nil
}

// Group returns the group registered under key.
func (r *Registry) Group(key string) (DatasetGroup, bool) {
	if r == nil {
		return DatasetGroup{}, false
	}
	g, ok := r.groups[key]
	if !ok {
		return DatasetGroup{}, false
	}
	return *g, true
}

// Keys returns the group keys in first-declaration order.
func (r *Registry) Keys() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.order...)
}

// Len returns the number of dataset groups.
func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.order)
}

// Overwrite records a dataset group replaced by a later fragment.
type Overwrite struct {
	Key      string
	Previous string
	Winner   string
}

// Catalog bundles the three configuration documents.
type Catalog struct {
	Processes     []Process
	CrossSections CrossSections
	Datasets      *Registry
	Overwrites    []Overwrite
}

// MissingReference is a dataset group named by a process but absent from the
// registry.
type MissingReference struct {
	Process      string
	DatasetGroup string
}

func (m MissingReference) String() string {
	return fmt.Sprintf("process %s references unknown dataset group %s", m.Process, m.DatasetGroup)
}

// MissingReferences lists every process dataset group the registry lacks.
func (c *Catalog) MissingReferences() []MissingReference {
	var out []MissingReference
	for _, p := range c.Processes {
		for _, key := range p.Datasets {
			if _, ok := c.Datasets.Group(key); !ok {
				out = append(out, MissingReference{Process: p.ID, DatasetGroup: key})
			}
		}
	}
	return out
}

// ParseGroupingYAML decodes grouping.yaml, keeping process declaration order.
func ParseGroupingYAML(data []byte) ([]Process, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("catalog: grouping payload is empty")
	}
	var doc struct {
		Processes yaml.Node `yaml:"processes"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode grouping: %w", err)
	}
	if doc.Processes.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog: grouping has no processes mapping")
	}
	var out []Process
	seen := map[string]bool{}
	err := eachPair(&doc.Processes, func(key string, value *yaml.Node) error {
		var proc Process
		if err := value.Decode(&proc); err != nil {
			return fmt.Errorf("catalog: process %s: %w", key, err)
		}
		if seen[key] {
			return fmt.Errorf("catalog: duplicate process %s", key)
		}
		seen[key] = true
		proc.ID = key
		proc.Title = strings.TrimSpace(proc.Title)
		if proc.Title == "" {
			return fmt.Errorf("catalog: process %s: title is required", key)
		}
		out = append(out, proc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ParseCrossSectionYAML decodes crosssection.yaml.
func ParseCrossSectionYAML(data []byte) (CrossSections, error) {
	var cs CrossSections
	if len(bytes.TrimSpace(data)) == 0 {
		return cs, fmt.Errorf("catalog: cross-section payload is empty")
	}
	if err := yaml.Unmarshal(data, &cs); err != nil {
		return CrossSections{}, fmt.Errorf("catalog: decode cross sections: %w", err)
	}
	if cs.XSec == nil {
		cs.XSec = map[string]float64{}
	}
	if cs.Entries == nil {
		cs.Entries = map[string]float64{}
	}
	return cs, nil
}

// ParseDatasetFragmentYAML decodes one dataset fragment into its groups, in
// declaration order.
func ParseDatasetFragmentYAML(data []byte) ([]DatasetGroup, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	var doc struct {
		Dataset yaml.Node `yaml:"dataset"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("catalog: decode dataset fragment: %w", err)
	}
	if doc.Dataset.Kind == 0 {
		return nil, nil
	}
	if doc.Dataset.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("catalog: dataset must be a mapping")
	}
	var groups []DatasetGroup
	err := eachPair(&doc.Dataset, func(key string, value *yaml.Node) error {
		group := DatasetGroup{Key: key, Meta: map[string]any{}}
		switch value.Kind {
		case yaml.MappingNode:
			err := eachPair(value, func(name string, meta *yaml.Node) error {
				var decoded any
				if err := meta.Decode(&decoded); err != nil {
					return fmt.Errorf("catalog: dataset %s/%s: %w", key, name, err)
				}
				group.Names = append(group.Names, name)
				group.Meta[name] = decoded
				return nil
			})
			if err != nil {
				return err
			}
			groups = append(groups, group)
			return nil
		case yaml.SequenceNode:
			var names []string
			if err := value.Decode(&names); err != nil {
				return fmt.Errorf("catalog: dataset %s: %w", key, err)
			}
			group.Names = names
			groups = append(groups, group)
			return nil
		case yaml.ScalarNode:
			if value.Tag == "!!null" {
				groups = append(groups, group)
				return nil
			}
		}
		return fmt.Errorf("catalog: dataset %s: unsupported node", key)
	})
	if err != nil {
		return nil, err
	}
	return groups, nil
}

func eachPair(node *yaml.Node, fn func(key string, value *yaml.Node) error) error {
	for i := 0; i+1 < len(node.Content); i += 2 {
		if err := fn(node.Content[i].Value, node.Content[i+1]); err != nil {
			return err
		}
	}
	return nil
}

