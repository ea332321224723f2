package plugins

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tzwi/fcncmva/internal/method"
)

const sampleYAML = `name: MLP_3l
description: shallow network for the tri-lepton inputs
type: kMLP
options: "H:!V:NeuronType=tanh:VarTransform=N:NCycles=600:HiddenLayers=N+5"
`

func TestRegisterMethodPlugins(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "mlp.yaml"), []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	reg := method.Builtin()
	names, err := RegisterMethodPlugins(reg, dir)
	if err != nil {
		t.Fatalf("register plugins: %v", err)
	}
	if len(names) != 1 || names[0] != "MLP_3l" {
		t.Fatalf("unexpected names %v", names)
	}
	booking, err := reg.Resolve("MLP_3l")
	if err != nil {
		t.Fatalf("resolve plugin: %v", err)
	}
	if booking.Type != method.TypeMLP || !strings.HasPrefix(booking.Options, "H:!V:NeuronType=tanh") {
		t.Fatalf("unexpected booking %+v", booking)
	}
}

func TestRegisterMethodPluginsRejectsBuiltinClash(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bdt.yaml"), []byte("name: BDTG\ntype: kBDT\noptions: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := RegisterMethodPlugins(method.Builtin(), dir); err == nil {
		t.Fatalf("expected clash with builtin BDTG")
	}
}

func TestRegisterMethodPluginsRejectsDuplicates(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.yaml", "b.yaml"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("name: X\ntype: kBDT\noptions: x\n"), 0644); err != nil {
			t.Fatal(err)
		}
	}
	_, err := RegisterMethodPlugins(method.NewRegistry(), dir)
	if err == nil || !strings.Contains(err.Error(), "duplicate method X") {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
