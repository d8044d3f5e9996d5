package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	c, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "{fuel}_{rate}.csv", c.FilePattern)
	assert.Equal(t, []string{"COG", "RCOG", "H2", "NormalBlast"}, c.Fuels)
	assert.Equal(t, []int{100, 125, 150, 175, 200}, c.InjectionRates)
	assert.Equal(t, DefaultInputColumns, c.InputColumns)
	assert.Equal(t, 1000.0, c.StressThreshold)
	assert.Equal(t, 0.2, c.TestSize)
	assert.Equal(t, uint64(42), c.Seed)
	assert.Equal(t, 100, c.NEstimators)
	assert.Equal(t, 6, c.MaxDepth)
	assert.InDelta(t, 0.3, c.LearningRate, 1e-12)
	assert.Equal(t, 31, c.NumLeaves)
	assert.Equal(t, 1, c.MinChildSamples)
	assert.Equal(t, "weight", c.ImportanceType)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stress_threshold: 500\nmax_depth: 3\n"), 0o644))
	t.Setenv("TUYERE_MAX_DEPTH", "4")

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 500.0, c.StressThreshold)
	assert.Equal(t, 4, c.MaxDepth)
}

func TestSaveRoundTripsThroughLoad(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	c, err := Load("")
	require.NoError(t, err)
	c.OutputDir = "plots"
	c.Fuels = []string{"H2"}
	require.NoError(t, Save(c, ""))

	_, err = os.Stat(filepath.Join(home, ".tuyere", "config.yaml"))
	require.NoError(t, err)

	again, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "plots", again.OutputDir)
	assert.Equal(t, []string{"H2"}, again.Fuels)
}

func TestLoadRejectsInvalidSettings(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("test_size: 1.5\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "test_size")
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
