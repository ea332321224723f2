package quota

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tzwi/fcncmva/internal/physics"
)

func TestLookupSingleChannelSingleMode(t *testing.T) {
	table := DefaultTable()
	for _, ch := range physics.AllChannels {
		for _, mode := range physics.AllModes {
			q := table.Lookup([]physics.Channel{ch}, []physics.Mode{mode}, 4)
			assert.Equal(t, 0.5*float64(table.Signal[ch.String()][mode.Index()]), q.TrainSignal, "%s %s", ch, mode)
			assert.Equal(t, 0.5*float64(table.Background[ch.String()][mode.Index()]), q.TrainBackground, "%s %s", ch, mode)
			assert.Zero(t, q.TestSignal)
			assert.Zero(t, q.TestBackground)
			assert.Equal(t, "Random", q.SplitMode)
			assert.Equal(t, "NumEvents", q.NormMode)
		}
	}
}

func TestLookupAllModesUsesAggregate(t *testing.T) {
	q := DefaultTable().Lookup([]physics.Channel{physics.TTZct}, physics.AllModes, 4)
	assert.Equal(t, 53295.0, q.TrainSignal)
	assert.Equal(t, 179505.0, q.TrainBackground)

	two := DefaultTable().Lookup([]physics.Channel{physics.STZut}, []physics.Mode{physics.ElElEl, physics.MuElEl}, 4)
	assert.Equal(t, 0.5*float64(8315+11360+19847+13997), two.TrainSignal)
}

func TestLookupFallsBackToEngineDefault(t *testing.T) {
	table := DefaultTable()
	multi := table.Lookup([]physics.Channel{physics.TTZct, physics.TTZut}, []physics.Mode{physics.ElElEl}, 4)
	assert.False(t, multi.Explicit())
	assert.Equal(t, "nTest_Signal=0:nTest_Background=0:SplitMode=Random:NormMode=NumEvents:!V", multi.Options())

	wrongBkg := table.Lookup([]physics.Channel{physics.TTZct}, []physics.Mode{physics.ElElEl}, 2)
	assert.False(t, wrongBkg.Explicit())
}

func TestOptionsString(t *testing.T) {
	q := DefaultTable().Lookup([]physics.Channel{physics.TTZct}, []physics.Mode{physics.ElElEl}, 4)
	assert.Equal(t, "nTrain_Signal=8000.5:nTrain_Background=30328:nTest_Signal=0:nTest_Background=0:SplitMode=Random:NormMode=NumEvents:!V", q.Options())
}

func TestModeIndex(t *testing.T) {
	assert.Equal(t, 2, ModeIndex([]physics.Mode{physics.MuMuMu}))
	assert.Equal(t, AllModes, ModeIndex(physics.AllModes))
}

func TestSyntheticTableFromYAML(t *testing.T) {
	content := `fraction: 0.25
background_size: 2
signal:
  TTZct: [4, 8, 12, 16]
  TTZut: [1, 1, 1, 1]
  STZct: [1, 1, 1, 1]
  STZut: [1, 1, 1, 1]
background:
  TTZct: [40, 80, 120, 160]
  TTZut: [1, 1, 1, 1]
  STZct: [1, 1, 1, 1]
  STZut: [1, 1, 1, 1]
`
	table, err := ParseTableYAML([]byte(content))
	require.NoError(t, err)

	q := table.Lookup([]physics.Channel{physics.TTZct}, []physics.Mode{physics.MuMuMu}, 2)
	assert.Equal(t, 3.0, q.TrainSignal)
	assert.Equal(t, 30.0, q.TrainBackground)

	none := table.Lookup([]physics.Channel{physics.TTZct}, []physics.Mode{physics.MuMuMu}, 4)
	assert.False(t, none.Explicit())
}

func TestParseTableRejectsUnknownChannel(t *testing.T) {
	_, err := ParseTableYAML([]byte("signal:\n  TTZxx: [1, 2, 3, 4]\n"))
	require.Error(t, err)
	assert.ErrorIs(t, err, physics.ErrUnknownChannel)
}

func TestEmptyYAMLKeepsDefaults(t *testing.T) {
	table, err := ParseTableYAML(nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultTable(), table)
}
