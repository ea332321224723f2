package tmva

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
)

// ErrIncompatibleROOT is returned for ROOT 5.18, whose Python bindings drop
// enum arguments and so cannot drive TMVA.
var ErrIncompatibleROOT = errors.New("tmva: incompatible ROOT version")

// Remediation is printed alongside ErrIncompatibleROOT.
const Remediation = `You are running ROOT version 5.18, which has problems in PyROOT such that TMVA
does not run properly (function calls with enums in the argument are ignored).
Solution: either use CINT or a C++ compiled version (see TMVA/macros or TMVA/examples),
or use another ROOT version (e.g., ROOT 5.19).`

const (
	badVersionLow  = 332288 // 5.18/00
	badVersionHigh = 332544 // 5.19/00
)

// VersionCode packs a ROOT version the way gROOT->GetVersionCode does.
func VersionCode(major, minor, patch int) int {
	return major<<16 | minor<<8 | patch
}

var versionPattern = regexp.MustCompile(`^(\d+)\.(\d+)[./](\d+)`)

// ParseVersion converts `root-config --version` output ("6.22/08",
// "6.30.04") into a version code.
func ParseVersion(s string) (int, error) {
	m := versionPattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return 0, fmt.Errorf("tmva: unrecognised ROOT version %q", s)
	}
	parts := make([]int, 3)
	for i := range parts {
		n, err := strconv.Atoi(m[i+1])
		if err != nil {
			return 0, fmt.Errorf("tmva: unrecognised ROOT version %q: %w", s, err)
		}
		parts[i] = n
	}
	return VersionCode(parts[0], parts[1], parts[2]), nil
}

// CheckVersion rejects the known-broken version range.
func CheckVersion(code int) error {
	if code >= badVersionLow && code < badVersionHigh {
		return fmt.Errorf("%w: version code %d", ErrIncompatibleROOT, code)
	}
	return nil
}

// DetectVersion runs `<rootConfig> --version` and returns the raw string and
// its version code.
func DetectVersion(ctx context.Context, rootConfig string) (string, int, error) {
	if rootConfig == "" {
		rootConfig = "root-config"
	}
	var out bytes.Buffer
	cmd := exec.CommandContext(ctx, rootConfig, "--version")
	cmd.Stdout = &out
	if err := cmd.Run(); err != nil {
		return "", 0, fmt.Errorf("tmva: %s --version: %w", rootConfig, err)
	}
	raw := strings.TrimSpace(out.String())
	code, err := ParseVersion(raw)
	if err != nil {
		return raw, 0, err
	}
	return raw, code, nil
}
