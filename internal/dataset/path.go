package dataset

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tzwi/fcncmva/internal/catalog"
	"github.com/tzwi/fcncmva/internal/physics"
)

// DefaultLayout places each sample directly under its mode directory.
const DefaultLayout = "{base}/{mode}/{dataset}"

// TransformName maps a registry dataset name such as
// "/TTZct/RunII-v1/NANOAODSIM" onto its on-disk directory name
// "TTZct.RunII-v1.NANOAODSIM".
func TransformName(name string) string {
	return strings.ReplaceAll(strings.TrimPrefix(name, "/"), "/", ".")
}

// UntransformName is the inverse of TransformName for names whose path
// components carry no dots. Use ReverseIndex for an exact lookup.
func UntransformName(dir string) string {
	return "/" + strings.ReplaceAll(dir, ".", "/")
}

// ExpandLayout fills a layout template.
func ExpandLayout(layout, base string, mode physics.Mode, datasetName string) string {
	if strings.TrimSpace(layout) == "" {
		layout = DefaultLayout
	}
	r := strings.NewReplacer(
		"{base}", strings.TrimRight(base, "/"),
		"{mode}", mode.String(),
		"{dataset}", TransformName(datasetName),
	)
	return r.Replace(layout)
}

// Ref locates a dataset name inside the registry.
type Ref struct {
	DatasetGroup string
	DatasetName  string
}

// CollisionError reports transformed names shared by distinct registry
// entries.
type CollisionError struct {
	Collisions map[string][]Ref
}

func (e *CollisionError) Error() string {
	keys := make([]string, 0, len(e.Collisions))
	for k := range e.Collisions {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		var names []string
		for _, ref := range e.Collisions[k] {
			names = append(names, ref.DatasetGroup+":"+ref.DatasetName)
		}
		parts = append(parts, fmt.Sprintf("%s <- %s", k, strings.Join(names, ", ")))
	}
	return "dataset: transformed names collide: " + strings.Join(parts, "; ")
}

// ReverseIndex maps every transformed directory name back to the registry
// entry it came from. The same dataset name listed under two groups is a
// collision because the directory alone cannot tell them apart.
func ReverseIndex(reg *catalog.Registry) (map[string]Ref, error) {
	index := map[string]Ref{}
	collisions := map[string][]Ref{}
	for _, key := range reg.Keys() {
		group, _ := reg.Group(key)
		for _, name := range group.Names {
			t := TransformName(name)
			ref := Ref{DatasetGroup: key, DatasetName: name}
			if prev, ok := index[t]; ok && prev != ref {
				if len(collisions[t]) == 0 {
					collisions[t] = append(collisions[t], prev)
				}
				collisions[t] = append(collisions[t], ref)
				continue
			}
			index[t] = ref
		}
	}
	if len(collisions) > 0 {
		return index, &CollisionError{Collisions: collisions}
	}
	return index, nil
}
