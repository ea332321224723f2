package shape

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go-hep.org/x/hep/hbook"

	"github.com/tzwi/fcncmva/internal/artifact"
	"github.com/tzwi/fcncmva/internal/physics"
)

type mapSource map[string]*hbook.H1D

func (m mapSource) H1D(name string) (*hbook.H1D, error) {
	h, ok := m[name]
	if !ok {
		return nil, errors.New("key not found")
	}
	return h, nil
}

func (mapSource) Close() error { return nil }

type fakeFiles struct {
	mu     sync.Mutex
	files  map[string]mapSource
	opened []string
}

func (f *fakeFiles) open(path string) (Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opened = append(f.opened, path)
	src, ok := f.files[filepath.Base(path)]
	if !ok {
		return nil, fmt.Errorf("open %s: no such file", path)
	}
	return src, nil
}

func filled(weights ...float64) *hbook.H1D {
	h := DefaultBinning.New()
	for i, w := range weights {
		h.Fill(-0.95+0.2*float64(i), w)
	}
	return h
}

func TestSumAndBinningCheck(t *testing.T) {
	sum, err := Sum(DefaultBinning, filled(1, 2), nil, filled(3, 4))
	require.NoError(t, err)
	assert.InDelta(t, 4.0, sum.Binning.Bins[0].SumW(), 1e-12)
	assert.InDelta(t, 6.0, sum.Binning.Bins[1].SumW(), 1e-12)

	_, err = Sum(DefaultBinning, hbook.NewH1D(20, -1, 1))
	assert.ErrorIs(t, err, ErrBinning)
}

func TestRatioPropagatesErrors(t *testing.T) {
	num := filled(4, 0, 9)
	den := filled(2, 5, 0)
	r, err := Ratio(num, den)
	require.NoError(t, err)
	require.Equal(t, 2, r.Len())

	x, y := r.XY(0)
	assert.InDelta(t, -0.9, x, 1e-12)
	assert.InDelta(t, 2.0, y, 1e-12)
	lo, hi := r.YError(0)
	want := math.Hypot(4.0/2, 4*2.0/4)
	assert.InDelta(t, want, lo, 1e-12)
	assert.InDelta(t, want, hi, 1e-12)

	_, y = r.XY(1)
	assert.Zero(t, y)

	_, err = Ratio(num, hbook.NewH1D(5, -1, 1))
	assert.ErrorIs(t, err, ErrBinning)
}

func TestPointsAndScaled(t *testing.T) {
	h := filled(3)
	pts := Points(h)
	assert.Equal(t, 10, pts.Len())
	_, y := pts.XY(0)
	assert.Equal(t, 3.0, y)

	s := Scaled(h, 10)
	assert.InDelta(t, 30.0, s.SumW(), 1e-12)
	assert.InDelta(t, 3.0, h.SumW(), 1e-12)
}

func TestParseColor(t *testing.T) {
	for _, expr := range []string{"kRed", "kOrange+1", "kYellow-6", "kAzure+6", "#1f77b4"} {
		_, err := ParseColor(expr)
		assert.NoError(t, err, expr)
	}
	for _, expr := range []string{"kPurple", "kRed+x", ""} {
		_, err := ParseColor(expr)
		assert.ErrorIs(t, err, ErrUnknownColor, expr)
	}

	base, _ := ParseColor("kRed")
	dark, _ := ParseColor("kRed+4")
	br, _, _, _ := base.RGBA()
	dr, _, _, _ := dark.RGBA()
	assert.Less(t, dr, br)
}

func TestDefaultConfigsAreConsistent(t *testing.T) {
	score := DefaultScoreConfig()
	assert.NoError(t, score.CheckColors())
	assert.Len(t, score.MC, 7)
	assert.Equal(t, "kBlue", score.signalColor(physics.STZct))
	assert.Equal(t, "kGreen", score.signalColor(physics.TTZut))

	syst := DefaultSystConfig()
	assert.Len(t, syst.Systematics, 17)
	assert.Len(t, syst.MC, 9)
}

func scoreFixture(ch physics.Channel, modes []physics.Mode, mc []Sample) mapSource {
	src := mapSource{}
	for i, mode := range modes {
		for j, s := range mc {
			src[mode.String()+"_"+s.Name] = filled(float64(10+i), float64(5+j), 2)
		}
		src[mode.String()+"_data_obs"] = filled(16, 12, 3)
		src[mode.String()+"_"+ch.String()] = filled(0.5, 1)
	}
	return src
}

func TestScoresRenderEveryModeAndSum(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultScoreConfig()
	cfg.Channels = []physics.Channel{physics.TTZct, physics.STZct}
	cfg.Modes = []physics.Mode{physics.ElElEl, physics.MuMuMu}
	cfg.MC = cfg.MC[:2]

	files := &fakeFiles{files: map[string]mapSource{
		"add_shape_TTZct.root": scoreFixture(physics.TTZct, cfg.Modes, cfg.MC),
		"add_shape_STZct.root": scoreFixture(physics.STZct, cfg.Modes, cfg.MC),
	}}
	store := artifact.NewStore(artifact.Layout{Root: root, ShapeDir: filepath.Join(root, "in")})
	r := NewRenderer(store, "bugfix_bkg1_half", WithOpener(files.open))

	written, err := r.Scores(context.Background(), cfg)
	require.NoError(t, err)
	require.Len(t, written, 2*3*2)
	assert.Equal(t, filepath.Join(root, "TMVA", "shape", "bugfix_bkg1_half", "plots_TTZct", "MVAdist_ElElEl_TTZct.png"), written[0])
	assert.Equal(t, filepath.Join(root, "TMVA", "shape", "bugfix_bkg1_half", "plots_TTZct", "MVAdist_all_TTZct.pdf"), written[5])
	for _, path := range written {
		info, err := os.Stat(path)
		require.NoError(t, err, path)
		assert.Positive(t, info.Size(), path)
	}
	assert.ElementsMatch(t, []string{
		filepath.Join(root, "in", "bugfix_bkg1_half", "add_shape_TTZct.root"),
		filepath.Join(root, "in", "bugfix_bkg1_half", "add_shape_STZct.root"),
	}, files.opened)
}

func TestScoresFailOnMissingHistogram(t *testing.T) {
	cfg := DefaultScoreConfig()
	cfg.Channels = []physics.Channel{physics.TTZct}
	cfg.Modes = []physics.Mode{physics.ElElEl}
	src := scoreFixture(physics.TTZct, cfg.Modes, cfg.MC)
	delete(src, "ElElEl_data_obs")
	files := &fakeFiles{files: map[string]mapSource{"add_shape_TTZct.root": src}}
	r := NewRenderer(artifact.NewStore(artifact.Layout{Root: t.TempDir()}), "lbl", WithOpener(files.open))

	_, err := r.Scores(context.Background(), cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ElElEl_data_obs")
}

func TestSystematicsRenderSignalAndBackground(t *testing.T) {
	root := t.TempDir()
	cfg := DefaultSystConfig()
	cfg.Channels = []physics.Channel{physics.STZct}
	cfg.Modes = []physics.Mode{physics.ElElEl, physics.MuElEl}
	cfg.MC = []string{"WZ", "ZZ"}
	cfg.Systematics = []string{"jes", "PU"}

	src := mapSource{}
	for _, mode := range cfg.Modes {
		for _, name := range append([]string{"STZct"}, cfg.MC...) {
			base := mode.String() + "_" + name
			src[base] = filled(10, 8, 6)
			for _, syst := range cfg.Systematics {
				src[base+"_"+syst+"Up"] = filled(11, 8, 5)
				src[base+"_"+syst+"Down"] = filled(9, 8, 7)
			}
		}
	}
	files := &fakeFiles{files: map[string]mapSource{"shape_STZct.root": src}}
	r := NewRenderer(artifact.NewStore(artifact.Layout{Root: root}), "lbl", WithOpener(files.open), WithWorkers(1))

	written, err := r.Systematics(context.Background(), cfg)
	require.NoError(t, err)
	dir := filepath.Join(root, "TMVA", "shape", "lbl", "plots_STZct")
	assert.Equal(t, []string{
		filepath.Join(dir, "MVAdist_jes_background.pdf"),
		filepath.Join(dir, "MVAdist_jes_signal.pdf"),
		filepath.Join(dir, "MVAdist_PU_background.pdf"),
		filepath.Join(dir, "MVAdist_PU_signal.pdf"),
	}, written)
	for _, path := range written {
		assert.FileExists(t, path)
	}
}

func TestCheckInputsReportsMissingChannels(t *testing.T) {
	root := t.TempDir()
	store := artifact.NewStore(artifact.Layout{Root: root})
	present := store.Path(artifact.ScoreInput, artifact.Key{Label: "lbl", Channel: "TTZct"})
	require.NoError(t, os.MkdirAll(filepath.Dir(present), 0o755))
	require.NoError(t, os.WriteFile(present, []byte("root"), 0o644))

	r := NewRenderer(store, "lbl")
	pending, err := r.CheckInputs(artifact.ScoreInput, []physics.Channel{physics.TTZct, physics.STZct, physics.STZut})
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Equal(t, artifact.StateMissing, pending[0].State)
	assert.Equal(t, filepath.Join(root, "TMVA", "shape", "lbl", "add_shape_STZct.root"), pending[0].Path)
	assert.Equal(t, filepath.Join(root, "TMVA", "shape", "lbl", "add_shape_STZut.root"), pending[1].Path)

	// A directory where the shape file should be is invalid, not missing.
	bad := store.Path(artifact.SystInput, artifact.Key{Label: "lbl", Channel: "TTZut"})
	require.NoError(t, os.MkdirAll(bad, 0o755))
	_, err = r.CheckInputs(artifact.SystInput, []physics.Channel{physics.TTZut})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "TTZut")
}

func TestSumVariation(t *testing.T) {
	src := mapSource{
		"ElElEl_WZ_jesUp": filled(1),
		"MuMuMu_WZ_jesUp": filled(2),
		"ElElEl_ZZ_jesUp": filled(3),
		"MuMuMu_ZZ_jesUp": filled(4),
	}
	h, err := sumVariation(src, DefaultBinning, []physics.Mode{physics.ElElEl, physics.MuMuMu}, []string{"WZ", "ZZ"}, "_jesUp")
	require.NoError(t, err)
	assert.InDelta(t, 10.0, h.SumW(), 1e-12)

	_, err = sumVariation(src, DefaultBinning, []physics.Mode{physics.MuElEl}, []string{"WZ"}, "_jesUp")
	assert.Error(t, err)
}
