package tmva

import (
	"github.com/tzwi/fcncmva/internal/dataset"
	"github.com/tzwi/fcncmva/internal/method"
	"github.com/tzwi/fcncmva/internal/physics"
)

// Engine is the subset of the TMVA factory/data-loader surface the analysis
// drives.
type Engine interface {
	AddVariable(v physics.Variable)
	AddSpectator(expression string)
	SetWeightExpressions(signal, background string)
	AddSignalTree(s Sample)
	AddBackgroundTree(s Sample)
	PrepareTrainingAndTestTree(cuts physics.Cuts, options string)
	BookMethod(b method.Booking)
}

// Sample is one non-empty tree registered with the engine.
type Sample struct {
	Kind    dataset.Kind `yaml:"kind"`
	Mode    physics.Mode `yaml:"mode"`
	Process string       `yaml:"process"`
	Dataset string       `yaml:"dataset"`
	Path    string       `yaml:"path"`
	Tree    string       `yaml:"tree"`
	Entries int64        `yaml:"entries"`
	Weight  float64      `yaml:"weight"`
}
