package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefinitionFile pairs a parsed method definition with its on-disk source.
type DefinitionFile struct {
	Definition MethodDefinition
	Path       string
}

// ParseDefinitionYAML decodes and validates the definitions of one payload.
// A payload holds either a single definition or a "methods" list.
func ParseDefinitionYAML(data []byte) ([]MethodDefinition, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("plugin: definition payload is empty")
	}
	var doc struct {
		MethodDefinition `yaml:",inline"`
		Methods          []MethodDefinition `yaml:"methods"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("plugin: decode definition: %w", err)
	}
	defs := doc.Methods
	if strings.TrimSpace(doc.Name) != "" {
		if len(defs) > 0 {
			return nil, fmt.Errorf("plugin: a payload holds one definition or a methods list, not both")
		}
		defs = []MethodDefinition{doc.MethodDefinition}
	}
	if len(defs) == 0 {
		return nil, fmt.Errorf("plugin: no method definition found")
	}
	out := make([]MethodDefinition, 0, len(defs))
	for _, def := range defs {
		if err := def.Validate(); err != nil {
			return nil, err
		}
		out = append(out, def.Normalized())
	}
	return out, nil
}

// LoadDefinitionFile reads a YAML file from disk.
func LoadDefinitionFile(path string) ([]DefinitionFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	defs, err := ParseDefinitionYAML(data)
	if err != nil {
		return nil, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return definitionFiles(filepath.Clean(path), defs), nil
}

// LoadDefinitionDir scans a directory for *.yaml definitions. Missing
// directories mean no plugins.
func LoadDefinitionDir(dir string) ([]DefinitionFile, error) {
	names, err := pluginFiles(dir, isYAMLFile)
	if err != nil {
		return nil, err
	}
	var defs []DefinitionFile
	for _, path := range names {
		files, err := LoadDefinitionFile(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, files...)
	}
	return defs, nil
}

func definitionFiles(path string, defs []MethodDefinition) []DefinitionFile {
	out := make([]DefinitionFile, len(defs))
	for i, def := range defs {
		src := path
		if len(defs) > 1 {
			src = fmt.Sprintf("%s#%d", path, i+1)
		}
		out[i] = DefinitionFile{Definition: def, Path: src}
	}
	return out
}

// pluginFiles lists the regular files of dir accepted by keep, sorted.
func pluginFiles(dir string, keep func(string) bool) ([]string, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var out []string
	for _, entry := range entries {
		if entry.IsDir() || !keep(entry.Name()) {
			continue
		}
		out = append(out, filepath.Join(trimmed, entry.Name()))
	}
	sort.Strings(out)
	return out, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
