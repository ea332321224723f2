package plugins

import (
	"fmt"
	"strings"

	"github.com/tzwi/fcncmva/internal/method"
)

// MethodDefinition describes a classifier booking loaded from a plugin file.
//
// Options may be given as one TMVA option string or as a list of fragments
// that are joined with ":"; a definition must not use both.
type MethodDefinition struct {
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Type        string   `json:"type" yaml:"type"`
	Options     string   `json:"options,omitempty" yaml:"options,omitempty"`
	OptionList  []string `json:"option_list,omitempty" yaml:"option_list,omitempty"`
}

// Normalized returns a trimmed copy of the definition with OptionList folded
// into Options.
func (def MethodDefinition) Normalized() MethodDefinition {
	clone := MethodDefinition{
		Name:        strings.TrimSpace(def.Name),
		Description: strings.TrimSpace(def.Description),
		Type:        strings.TrimSpace(def.Type),
		Options:     strings.TrimSpace(def.Options),
	}
	if len(def.OptionList) > 0 {
		parts := make([]string, 0, len(def.OptionList))
		for _, part := range def.OptionList {
			if trimmed := strings.Trim(strings.TrimSpace(part), ":"); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		clone.Options = strings.Join(parts, ":")
	}
	return clone
}

// Validate checks the definition can be booked.
func (def MethodDefinition) Validate() error {
	if strings.TrimSpace(def.Name) == "" {
		return fmt.Errorf("plugin: name is required")
	}
	if strings.ContainsAny(def.Name, " ,\t") {
		return fmt.Errorf("plugin %s: name must not contain spaces or commas", def.Name)
	}
	if strings.TrimSpace(def.Options) != "" && len(def.OptionList) > 0 {
		return fmt.Errorf("plugin %s: options and option_list are mutually exclusive", def.Name)
	}
	if _, err := method.ParseType(def.Type); err != nil {
		return fmt.Errorf("plugin %s: %w", def.Name, err)
	}
	if def.Normalized().Options == "" {
		return fmt.Errorf("plugin %s: options are required", def.Name)
	}
	return nil
}

// Booking converts a validated definition.
func (def MethodDefinition) Booking() (method.Booking, error) {
	n := def.Normalized()
	t, err := method.ParseType(n.Type)
	if err != nil {
		return method.Booking{}, err
	}
	return method.Booking{Name: n.Name, Type: t, Options: n.Options}, nil
}
