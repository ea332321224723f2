package rootio

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/groot"
	"go-hep.org/x/hep/groot/rhist"
	"go-hep.org/x/hep/groot/rtree"
	"go-hep.org/x/hep/hbook"
)

func writeTree(t *testing.T, path string, n int) {
	t.Helper()
	f, err := groot.Create(path)
	require.NoError(t, err)
	var pt float32
	w, err := rtree.NewWriter(f, DefaultTree, []rtree.WriteVar{{Name: "LeadingLepton_pt", Value: &pt}})
	require.NoError(t, err)
	for i := 0; i < n; i++ {
		pt = float32(25 + i)
		_, err := w.Write()
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	require.NoError(t, f.Close())
}

func TestTreeCounter(t *testing.T) {
	dir := t.TempDir()
	full := filepath.Join(dir, "full.root")
	empty := filepath.Join(dir, "empty.root")
	writeTree(t, full, 5)
	writeTree(t, empty, 0)

	n, err := TreeCounter{}.Entries(full, DefaultTree)
	require.NoError(t, err)
	assert.EqualValues(t, 5, n)

	n, err = TreeCounter{}.Entries(empty, DefaultTree)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = TreeCounter{}.Entries(full, "Missing")
	assert.Error(t, err)

	_, err = TreeCounter{}.Entries(filepath.Join(dir, "absent.root"), DefaultTree)
	assert.Error(t, err)
}

func TestH1DRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "shape.root")
	h := hbook.NewH1D(10, -1, 1)
	h.Fill(-0.95, 2)
	h.Fill(0.55, 3)
	h.Fill(0.55, 1)

	f, err := groot.Create(path)
	require.NoError(t, err)
	require.NoError(t, f.Put("ElElEl_WZ", rhist.NewH1DFrom(h)))
	require.NoError(t, f.Close())

	rf, err := Open(path)
	require.NoError(t, err)
	defer rf.Close()

	got, err := rf.H1D("ElElEl_WZ")
	require.NoError(t, err)
	assert.Equal(t, 10, got.Len())
	assert.InDelta(t, 6.0, got.SumW(), 1e-9)
	assert.InDelta(t, 2.0, got.Binning.Bins[0].SumW(), 1e-9)
	assert.InDelta(t, 4.0, got.Binning.Bins[7].SumW(), 1e-9)

	_, err = rf.H1D("ElElEl_ZZ")
	assert.Error(t, err)
}

func TestWrongType(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tree.root")
	writeTree(t, path, 1)
	f, err := Open(path)
	require.NoError(t, err)
	defer f.Close()
	_, err = f.H1D(DefaultTree)
	assert.ErrorIs(t, err, ErrWrongType)
}
