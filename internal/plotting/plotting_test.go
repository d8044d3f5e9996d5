package plotting

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/tuyere-cli/internal/booster"
	"github.com/KaramelBytes/tuyere-cli/internal/correlation"
)

func requireNonEmpty(t *testing.T, path string) {
	t.Helper()
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Greater(t, fi.Size(), int64(0))
}

func TestFeatureImportance(t *testing.T) {
	dir := t.TempDir()
	scores := []booster.Score{
		{Feature: "Temperature", Value: 42},
		{Feature: "CO", Value: 17},
		{Feature: "H2", Value: 3},
	}
	for _, name := range []string{"imp.png", "nested/imp.svg"} {
		path := filepath.Join(dir, name)
		require.NoError(t, FeatureImportance(scores, "Feature Importance for Stress (COG_100.csv)", path, DefaultOptions()))
		requireNonEmpty(t, path)
	}

	assert.Error(t, FeatureImportance(nil, "empty", filepath.Join(dir, "none.png"), DefaultOptions()))
	assert.Error(t, FeatureImportance(scores, "bad", filepath.Join(dir, "imp.bmp"), DefaultOptions()))
}

func TestHeatmap(t *testing.T) {
	dir := t.TempDir()
	m := &correlation.Matrix{
		Columns: []string{"CO", "H2", "Stress"},
		Values: [][]float64{
			{1, -0.4, 0.7},
			{-0.4, 1, math.NaN()},
			{0.7, math.NaN(), 1},
		},
	}
	for _, name := range []string{"heat.png", "heat.pdf"} {
		path := filepath.Join(dir, name)
		require.NoError(t, Heatmap(m, "Correlation Matrix Heatmap for Stress > 1000 MPa - COG", path, DefaultOptions()))
		requireNonEmpty(t, path)
	}

	small := &correlation.Matrix{Columns: []string{"A"}, Values: [][]float64{{1}}}
	assert.Error(t, Heatmap(small, "one", filepath.Join(dir, "one.png"), DefaultOptions()))
}

func TestGridOrientation(t *testing.T) {
	m := &correlation.Matrix{
		Columns: []string{"A", "B"},
		Values:  [][]float64{{1, 0.5}, {0.25, 1}},
	}
	g := grid{m: m}
	c, r := g.Dims()
	assert.Equal(t, 2, c)
	assert.Equal(t, 2, r)
	// top row of the plot is the first matrix row
	assert.Equal(t, 0.5, g.Z(1, 1))
	assert.Equal(t, 0.25, g.Z(0, 0))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, "png", f)
	f, err = ParseFormat(".SVG")
	require.NoError(t, err)
	assert.Equal(t, "svg", f)
	_, err = ParseFormat("bmp")
	assert.Error(t, err)
}
