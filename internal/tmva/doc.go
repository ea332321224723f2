// Package tmva assembles a TMVA classification run.
//
// The training engine itself lives in ROOT. This package drives it through
// the Engine interface: a Job records every call, renders a YAML manifest
// describing the run and an unnamed ROOT macro replaying the same calls, and
// the Runner hands that macro to `root -b -q`.
package tmva
