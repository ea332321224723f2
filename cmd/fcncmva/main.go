// cmd/fcncmva/main.go
//
// Entry point for the fcncmva CLI. Every subcommand returns its error here;
// main prints it and exits non-zero.

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/tzwi/fcncmva/internal/tmva"
)

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		if errors.Is(err, tmva.ErrIncompatibleROOT) {
			fmt.Fprintln(os.Stderr, tmva.Remediation)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
