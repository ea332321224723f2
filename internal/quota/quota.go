// Package quota derives the train/test split handed to the classifier engine
// from historical per-channel, per-mode event counts.
package quota

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/tzwi/fcncmva/internal/physics"
)

// Counts holds one event count per mode, indexed by physics.Mode.
type Counts [physics.NumModes]int

// Total sums the per-mode counts.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Table is the injectable lookup table. Counts are keyed by channel name so the
// table can be regenerated as YAML without code changes.
type Table struct {
	Fraction       float64           `yaml:"fraction"`
	BackgroundSize int               `yaml:"background_size"`
	Signal         map[string]Counts `yaml:"signal"`
	Background     map[string]Counts `yaml:"background"`
}

// DefaultTable returns the event counts of the 2016 tight-lepton ntuples with
// the four-process background (SingleTopV, WZ, ZZ, ttV).
func DefaultTable() Table {
	bkgTT := Counts{60656, 65502, 123537, 109315}
	bkgST := Counts{49749, 35983, 71524, 95771}
	return Table{
		Fraction:       0.5,
		BackgroundSize: 4,
		Signal: map[string]Counts{
			"TTZct": {16001, 21442, 40610, 28537},
			"TTZut": {14844, 19864, 37640, 26271},
			"STZct": {10701, 14781, 25430, 17857},
			"STZut": {8315, 11360, 19847, 13997},
		},
		Background: map[string]Counts{
			"TTZct": bkgTT,
			"TTZut": bkgTT,
			"STZct": bkgST,
			"STZut": bkgST,
		},
	}
}

// Validate checks that every channel has both signal and background counts.
func (t Table) Validate() error {
	if t.Fraction <= 0 || t.Fraction > 1 {
		return fmt.Errorf("quota: fraction must be in (0, 1], got %v", t.Fraction)
	}
	if t.BackgroundSize <= 0 {
		return fmt.Errorf("quota: background_size must be positive")
	}
	for _, ch := range physics.AllChannels {
		if _, ok := t.Signal[ch.String()]; !ok {
			return fmt.Errorf("quota: signal counts missing for %s", ch)
		}
		if _, ok := t.Background[ch.String()]; !ok {
			return fmt.Errorf("quota: background counts missing for %s", ch)
		}
	}
	for name := range t.Signal {
		if _, err := physics.ParseChannel(name); err != nil {
			return fmt.Errorf("quota: signal: %w", err)
		}
	}
	for name := range t.Background {
		if _, err := physics.ParseChannel(name); err != nil {
			return fmt.Errorf("quota: background: %w", err)
		}
	}
	return nil
}

// ParseTableYAML decodes a table. Omitted fields keep their DefaultTable
// values.
func ParseTableYAML(data []byte) (Table, error) {
	t := DefaultTable()
	if len(bytes.TrimSpace(data)) == 0 {
		return t, nil
	}
	if err := yaml.Unmarshal(data, &t); err != nil {
		return Table{}, fmt.Errorf("quota: decode table: %w", err)
	}
	if err := t.Validate(); err != nil {
		return Table{}, err
	}
	return t, nil
}

// AllModes is the mode index meaning "aggregate over every mode".
const AllModes = -1

// ModeIndex maps a mode selection to a table column: the mode's own index when
// exactly one mode is selected, AllModes otherwise.
func ModeIndex(modes []physics.Mode) int {
	if len(modes) == 1 {
		return modes[0].Index()
	}
	return AllModes
}

// Quota is the split handed to the engine. Zero train counts leave the split
// to the engine's default.
type Quota struct {
	TrainSignal     float64 `yaml:"train_signal"`
	TrainBackground float64 `yaml:"train_background"`
	TestSignal      int     `yaml:"test_signal"`
	TestBackground  int     `yaml:"test_background"`
	SplitMode       string  `yaml:"split_mode"`
	NormMode        string  `yaml:"norm_mode"`
}

// Explicit reports whether the quota fixes train counts.
func (q Quota) Explicit() bool {
	return q.TrainSignal > 0 || q.TrainBackground > 0
}

// Options renders the engine option string.
func (q Quota) Options() string {
	var parts []string
	if q.Explicit() {
		parts = append(parts,
			"nTrain_Signal="+formatCount(q.TrainSignal),
			"nTrain_Background="+formatCount(q.TrainBackground),
		)
	}
	parts = append(parts,
		"nTest_Signal="+strconv.Itoa(q.TestSignal),
		"nTest_Background="+strconv.Itoa(q.TestBackground),
		"SplitMode="+q.SplitMode,
		"NormMode="+q.NormMode,
		"!V",
	)
	return strings.Join(parts, ":")
}

func formatCount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func defaultQuota() Quota {
	return Quota{SplitMode: "Random", NormMode: "NumEvents"}
}

// Lookup computes the quota for a selection. Only a single channel with a
// background list of exactly t.BackgroundSize entries gets explicit train
// counts.
func (t Table) Lookup(channels []physics.Channel, modes []physics.Mode, backgroundCount int) Quota {
	q := defaultQuota()
	if len(channels) != 1 || backgroundCount != t.BackgroundSize {
		return q
	}
	name := channels[0].String()
	sig, okSig := t.Signal[name]
	bkg, okBkg := t.Background[name]
	if !okSig || !okBkg {
		return q
	}
	idx := ModeIndex(modes)
	var nSig, nBkg int
	if idx == AllModes {
		nSig, nBkg = sig.Total(), bkg.Total()
	} else {
		nSig, nBkg = sig[idx], bkg[idx]
	}
	q.TrainSignal = float64(nSig) * t.Fraction
	q.TrainBackground = float64(nBkg) * t.Fraction
	return q
}
