// Package physics holds the closed vocabularies of the FCNC tri-lepton
// analysis: signal channels, detector modes, channel families and the selection
// and variable definitions that hang off them.
package physics

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownChannel is returned when a channel name is not one of the four
	// FCNC signal hypotheses.
	ErrUnknownChannel = errors.New("physics: unknown channel")

	// ErrUnknownMode is returned when a mode name is not a known tri-lepton
	// final state.
	ErrUnknownMode = errors.New("physics: unknown mode")
)

// Channel names a signal hypothesis.
type Channel int

const (
	TTZct Channel = iota
	TTZut
	STZct
	STZut
)

// AllChannels is the default channel selection, in the order the analysis
// lists them.
var AllChannels = []Channel{TTZct, TTZut, STZct, STZut}

func (c Channel) String() string {
	switch c {
	case TTZct:
		return "TTZct"
	case TTZut:
		return "TTZut"
	case STZct:
		return "STZct"
	case STZut:
		return "STZut"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Family groups channels that share selection cuts and input variables.
func (c Channel) Family() Family {
	switch c {
	case TTZct, TTZut:
		return FamilyTT
	case STZct, STZut:
		return FamilyST
	}
	return FamilyUnknown
}

// Coupling reports the FCNC coupling probed by the channel ("ct" or "ut").
func (c Channel) Coupling() string {
	switch c {
	case TTZct, STZct:
		return "ct"
	case TTZut, STZut:
		return "ut"
	}
	return ""
}

// MarshalText implements encoding.TextMarshaler.
func (c Channel) MarshalText() ([]byte, error) {
	if c < TTZct || c > STZut {
		return nil, fmt.Errorf("%w: %d", ErrUnknownChannel, int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Channel) UnmarshalText(text []byte) error {
	parsed, err := ParseChannel(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseChannel converts a channel name into a Channel.
func ParseChannel(name string) (Channel, error) {
	trimmed := strings.TrimSpace(name)
	for _, ch := range AllChannels {
		if ch.String() == trimmed {
			return ch, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownChannel, name)
}

// ParseChannels parses a comma or space separated channel list. Duplicates are
// collapsed and the first occurrence keeps its position.
func ParseChannels(list string) ([]Channel, error) {
	var out []Channel
	seen := map[Channel]bool{}
	for _, field := range splitList(list) {
		ch, err := ParseChannel(field)
		if err != nil {
			return nil, err
		}
		if seen[ch] {
			continue
		}
		seen[ch] = true
		out = append(out, ch)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrUnknownChannel)
	}
	return out, nil
}

// IsDefaultChannelSet reports whether the selection is the full default set,
// i.e. no particular signal region was requested.
func IsDefaultChannelSet(channels []Channel) bool {
	if len(channels) != len(AllChannels) {
		return false
	}
	seen := map[Channel]bool{}
	for _, ch := range channels {
		seen[ch] = true
	}
	for _, ch := range AllChannels {
		if !seen[ch] {
			return false
		}
	}
	return true
}

// Mode names a tri-lepton final state. The underlying value is the index used
// by the per-mode event-count tables.
type Mode int

const (
	ElElEl Mode = iota
	MuElEl
	MuMuMu
	ElMuMu
)

// AllModes is the default mode selection.
var AllModes = []Mode{ElElEl, MuElEl, MuMuMu, ElMuMu}

// NumModes is the length of every per-mode table.
const NumModes = 4

func (m Mode) String() string {
	switch m {
	case ElElEl:
		return "ElElEl"
	case MuElEl:
		return "MuElEl"
	case MuMuMu:
		return "MuMuMu"
	case ElMuMu:
		return "ElMuMu"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// Index returns the position of the mode in per-mode tables.
func (m Mode) Index() int {
	return int(m)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) {
	if m < ElElEl || m > ElMuMu {
		return nil, fmt.Errorf("%w: %d", ErrUnknownMode, int(m))
	}
	return []byte(m.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(text []byte) error {
	parsed, err := ParseMode(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}

// ParseMode converts a mode name into a Mode.
func ParseMode(name string) (Mode, error) {
	trimmed := strings.TrimSpace(name)
	for _, mo := range AllModes {
		if mo.String() == trimmed {
			return mo, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMode, name)
}

// ParseModes parses a comma or space separated mode list.
func ParseModes(list string) ([]Mode, error) {
	var out []Mode
	seen := map[Mode]bool{}
	for _, field := range splitList(list) {
		mo, err := ParseMode(field)
		if err != nil {
			return nil, err
		}
		if seen[mo] {
			continue
		}
		seen[mo] = true
		out = append(out, mo)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: empty selection", ErrUnknownMode)
	}
	return out, nil
}

// Family is the production mechanism of the FCNC signal.
type Family string

const (
	FamilyUnknown Family = ""
	FamilyTT      Family = "TT"
	FamilyST      Family = "ST"
)

// ChannelNames renders channels as strings.
func ChannelNames(channels []Channel) []string {
	out := make([]string, len(channels))
	for i, ch := range channels {
		out[i] = ch.String()
	}
	return out
}

// ModeNames renders modes as strings.
func ModeNames(modes []Mode) []string {
	out := make([]string, len(modes))
	for i, mo := range modes {
		out[i] = mo.String()
	}
	return out
}

func splitList(list string) []string {
	return strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
}
