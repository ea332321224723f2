package method

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinNames(t *testing.T) {
	names := Builtin().Names()
	for _, want := range []string{"BDTG", "BDTG225", "BDTGt1", "BDTG_ST", "BDTG_TT", "BDTGt2", "BDT", "BDT200", "BDT100", "BDT850", "BDT50", "DNN_CPU", "DNN_GPU"} {
		assert.Contains(t, names, want)
	}
	assert.Len(t, names, 13)
}

func TestDefaultMethodsBookInOrder(t *testing.T) {
	bookings, unknown, err := Builtin().Select(ParseList(DefaultMethods), nil)
	require.NoError(t, err)
	assert.Empty(t, unknown)
	var names []string
	for _, b := range bookings {
		names = append(names, b.Name)
		assert.Equal(t, TypeBDT, b.Type)
	}
	assert.Equal(t, []string{"BDTG", "BDTG_ST", "BDTG225", "BDTGt1", "BDTG_TT", "BDTGt2"}, names)
}

func TestBDTOptions(t *testing.T) {
	b, err := Builtin().Resolve("BDT850")
	require.NoError(t, err)
	assert.Equal(t, "!H:!V:NTrees=850:MinNodeSize=5%:MaxDepth=3:BoostType=AdaBoost:AdaBoostBeta=0.5:SeparationType=GiniIndex:nCuts=20:NegWeightTreatment=Pray", b.Options)
}

func TestDNNBookedForEitherArchitecture(t *testing.T) {
	r := Builtin()

	gpuOnly, _, err := r.Select([]string{"DNN_GPU"}, nil)
	require.NoError(t, err)
	require.Len(t, gpuOnly, 1)
	assert.Equal(t, TypeDNN, gpuOnly[0].Type)
	assert.True(t, strings.HasSuffix(gpuOnly[0].Options, ":Architecture=GPU"))

	both, _, err := r.Select([]string{"DNN_GPU", "DNN_CPU"}, nil)
	require.NoError(t, err)
	require.Len(t, both, 2)
	assert.Equal(t, 1, strings.Count(both[1].Options, "Architecture="))
	assert.True(t, strings.HasSuffix(both[1].Options, ":Architecture=CPU"))
}

func TestDNNOptionsLayout(t *testing.T) {
	opts := DNNOptions(CPU)
	assert.True(t, strings.HasPrefix(opts, "!H:V:ErrorStrategy=CROSSENTROPY:VarTransform=N:WeightInitialization=XAVIERUNIFORM:Layout=TANH|128,TANH|128,TANH|128,LINEAR:TrainingStrategy="))
	strategy := TrainingStrategy()
	assert.Equal(t, 2, strings.Count(strategy, "|"))
	assert.Contains(t, strategy, "Repetitions=1,ConvergenceSteps=20,Regularization=L2,BatchSize=256,TestRepetitions=10,Multithreading=True,LearningRate=1e-1,WeightDecay=1e-4,Momentum=0.9,DropConfig=0.0+0.5+0.5+0.5")
	assert.Contains(t, strategy, "LearningRate=1e-3,WeightDecay=1e-4,Momentum=0.0")
}

func TestSelectSkipsUnknownWithWarning(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	bookings, unknown, err := Builtin().Select([]string{"Fisher", "BDT", "BDT"}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"Fisher"}, unknown)
	require.Len(t, bookings, 1)
	assert.Equal(t, "BDT", bookings[0].Name)
	assert.Contains(t, buf.String(), "method=Fisher")
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := NewRegistry()
	build := func() (Booking, error) { return Booking{Type: TypeBDT}, nil }
	require.NoError(t, r.Register("X", build))
	assert.Error(t, r.Register("X", build))
	assert.Error(t, r.Register("", build))
	assert.Error(t, r.Register("Y", nil))

	b, err := r.Resolve("X")
	require.NoError(t, err)
	assert.Equal(t, "X", b.Name)

	_, err = r.Resolve("Z")
	assert.Error(t, err)
}

func TestParseList(t *testing.T) {
	assert.Equal(t, []string{"BDT", "BDTG", "DNN_CPU"}, ParseList(" BDT, BDTG  DNN_CPU,,"))
	assert.Empty(t, ParseList(""))
}

func TestSelectSuggestsCloseNames(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	_, unknown, err := Builtin().Select([]string{"BDTG22"}, logger)
	require.NoError(t, err)
	assert.Equal(t, []string{"BDTG22"}, unknown)
	assert.Contains(t, buf.String(), "did_you_mean=BDTG225")
}

func TestSuggestSkipsExactAndUnrelated(t *testing.T) {
	reg := Builtin()
	assert.Empty(t, reg.Suggest("Likelihood", 3))
	got := reg.Suggest("BDT85", 3)
	require.NotEmpty(t, got)
	assert.Equal(t, "BDT850", got[0])
	assert.NotContains(t, reg.Suggest("BDT", 20), "BDT")
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{"kBDT": TypeBDT, "BDT": TypeBDT, "dnn": TypeDNN, " kMLP ": TypeMLP} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseType("kForest")
	assert.Error(t, err)
}
