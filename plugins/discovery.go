// Package plugins loads user-defined classifier methods from a directory of
// YAML files and interpreted Go files and registers them next to the builtin
// bookings.
package plugins

import (
	"fmt"

	"github.com/tzwi/fcncmva/internal/method"
)

// RegisterMethodPlugins discovers YAML and Go method definitions under dir and
// registers them. Names clashing with a registered method are rejected. The
// registered names are returned in discovery order.
func RegisterMethodPlugins(reg *method.Registry, dir string) ([]string, error) {
	if reg == nil {
		return nil, nil
	}
	defs, err := loadAllDefinitionFiles(dir)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]string, len(defs))
	names := make([]string, 0, len(defs))
	for _, file := range defs {
		def := file.Definition
		if existing, ok := seen[def.Name]; ok {
			return nil, fmt.Errorf("plugin: duplicate method %s (%s and %s)", def.Name, existing, file.Path)
		}
		seen[def.Name] = file.Path
		defCopy := def
		if err := reg.Register(defCopy.Name, defCopy.Booking); err != nil {
			return nil, fmt.Errorf("plugin: register %s from %s: %w", def.Name, file.Path, err)
		}
		names = append(names, def.Name)
	}
	return names, nil
}

func loadAllDefinitionFiles(dir string) ([]DefinitionFile, error) {
	yamlDefs, err := LoadDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	goDefs, err := LoadGoDefinitionDir(dir)
	if err != nil {
		return nil, err
	}
	return append(yamlDefs, goDefs...), nil
}
