package tmva

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrTreeNames is returned when the input-trees option does not name exactly
// one signal and one background tree.
var ErrTreeNames = errors.New("tmva: need to give two trees (each one for signal and background)")

// TreeNames is the recorded signal/background tree pair.
type TreeNames struct {
	Signal     string `yaml:"signal"`
	Background string `yaml:"background"`
}

// DefaultTreeNames is used when no pair is given.
var DefaultTreeNames = TreeNames{Signal: "TreeS", Background: "TreeB"}

// ParseTreeNames splits arg on whitespace, sorts the names in reverse order
// and assigns the first to signal and the second to background.
func ParseTreeNames(arg string) (TreeNames, error) {
	names := strings.Fields(arg)
	if len(names) != 2 {
		return TreeNames{}, fmt.Errorf("%w: got %q", ErrTreeNames, names)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(names)))
	return TreeNames{Signal: names[0], Background: names[1]}, nil
}
