package dataset

import (
	"fmt"

	"github.com/tzwi/fcncmva/internal/catalog"
)

// Weigher assigns the per-sample weight registered with the engine.
type Weigher interface {
	Weight(proc catalog.Process, datasetName string) (float64, error)
}

// UnitWeight gives every sample weight 1. Event-level normalisation is carried
// by the weight expression instead.
type UnitWeight struct{}

// Weight implements Weigher.
func (UnitWeight) Weight(catalog.Process, string) (float64, error) {
	return 1.0, nil
}

// CrossSectionWeight normalises each sample to Luminosity (pb^-1) using the
// catalog cross section and generated event count. Lookups try the dataset
// name first and then the process id.
type CrossSectionWeight struct {
	Luminosity    float64
	CrossSections catalog.CrossSections
}

// Weight implements Weigher.
func (w CrossSectionWeight) Weight(proc catalog.Process, datasetName string) (float64, error) {
	xsec, entries, ok := w.CrossSections.Lookup(datasetName, proc.ID)
	if !ok {
		return 0, fmt.Errorf("dataset: no cross section for %s (process %s)", datasetName, proc.ID)
	}
	if entries <= 0 {
		return 0, fmt.Errorf("dataset: non-positive entry count for %s", datasetName)
	}
	return w.Luminosity * xsec / entries, nil
}
