package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalPaths(t *testing.T) {
	l := Layout{Root: "/cms/fcncTriLepton", Output: "/work/output"}
	key := Key{Label: "bugfix_bkg1_half", Channel: "TTZct", Mode: "ElElEl", Ext: "png"}

	assert.Equal(t, "/cms/fcncTriLepton/TMVA/shape/bugfix_bkg1_half/add_shape_TTZct.root", ScoreInput.Path(l, key))
	assert.Equal(t, "/cms/fcncTriLepton/TMVA/shape/bugfix_bkg1_half/shape_TTZct.root", SystInput.Path(l, key))
	assert.Equal(t, "/cms/fcncTriLepton/TMVA/shape/bugfix_bkg1_half/plots_TTZct/MVAdist_ElElEl_TTZct.png", ScorePlot.Path(l, key))

	syst := Key{Label: "bugfix_bkg1_half", Channel: "STZct", Syst: "jes", Flag: "signal", Ext: "pdf"}
	assert.Equal(t, "/cms/fcncTriLepton/TMVA/shape/bugfix_bkg1_half/plots_STZct/MVAdist_jes_signal.pdf", SystPlot.Path(l, syst))
	assert.Equal(t, "/work/output/logs/run.journal", RunJournal.Path(l, Key{}))

	l.ShapeDir = "shape"
	assert.Equal(t, "shape/bugfix_bkg1_half/add_shape_TTZct.root", ScoreInput.Path(l, key))
	assert.Equal(t, "/cms/fcncTriLepton/TMVA/shape/bugfix_bkg1_half/plots_TTZct", PlotDir.Path(l, key))
}

func TestRegisteredRefsAreValid(t *testing.T) {
	ids := IDs()
	require.NotEmpty(t, ids)
	for _, id := range ids {
		ref, ok := Lookup(id)
		require.True(t, ok)
		assert.NoError(t, ref.Validate(), id)
	}
	assert.Error(t, Ref{ID: "x", Kind: KindFile}.Validate())
}

func TestStoreCheckAndEnsure(t *testing.T) {
	root := t.TempDir()
	store := NewStore(Layout{Root: root, Output: filepath.Join(root, "output")})
	key := Key{Label: "lbl", Channel: "TTZct", Mode: "all", Ext: "pdf"}

	res, err := store.Check(PlotDir, key)
	require.NoError(t, err)
	assert.Equal(t, StateMissing, res.State)

	dir, err := store.Ensure(PlotDir, key)
	require.NoError(t, err)
	res, err = store.Check(PlotDir, key)
	require.NoError(t, err)
	assert.Equal(t, StateReady, res.State)
	assert.Equal(t, dir, res.Path)

	plot, err := store.Ensure(ScorePlot, key)
	require.NoError(t, err)
	assert.Equal(t, dir, filepath.Dir(plot))

	require.NoError(t, os.MkdirAll(plot, 0o755))
	res, err = store.Check(ScorePlot, key)
	assert.Error(t, err)
	assert.Equal(t, StateInvalid, res.State)
}
