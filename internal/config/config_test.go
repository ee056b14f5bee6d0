package config

import (
	"testing"

	"priorelicit/internal/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("BOOTSTRAP_ITERATIONS", "")
	t.Setenv("RNG_SEED", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.False(t, cfg.Database.Enabled())
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 100, cfg.Pipeline.BootstrapIterations)
	assert.Equal(t, 0, cfg.Pipeline.BootstrapSampleSize)
	assert.Equal(t, 3, cfg.Pipeline.FitTopN)
	assert.Equal(t, 1000, cfg.Pipeline.FitGridPoints)
	assert.Equal(t, 10, cfg.Pipeline.NumChecks)
	assert.Equal(t, 100, cfg.Pipeline.NumSamples)
	assert.Equal(t, 100, cfg.Pipeline.KDEGridPoints)
	assert.Equal(t, int64(0), cfg.Pipeline.Seed)
	assert.Equal(t, 1_000_000, cfg.Pipeline.MaxSamples)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/elicit")
	t.Setenv("BOOTSTRAP_SAMPLE_SIZE", "50")
	t.Setenv("RNG_SEED", "42")
	t.Setenv("FIT_TOP_N", "not-a-number")
	t.Setenv("MAX_SAMPLES", "5000")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, 50, cfg.Pipeline.BootstrapSampleSize)
	assert.Equal(t, int64(42), cfg.Pipeline.Seed)
	assert.Equal(t, 3, cfg.Pipeline.FitTopN)
	assert.Equal(t, 5000, cfg.Pipeline.MaxSamples)
}

func TestLoad_RejectsInvalidPipeline(t *testing.T) {
	t.Setenv("NUM_CHECKS", "0")

	_, err := Load()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}

func TestPipelineConfig_MaxSamplesCoversChecks(t *testing.T) {
	cfg := DefaultPipelineConfig()
	require.NoError(t, cfg.Validate())

	cfg.MaxSamples = cfg.NumChecks*cfg.NumSamples - 1
	err := cfg.Validate()
	require.Error(t, err)
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
