package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swiss "github.com/sazarkin/swiss-stage-sim"
)

func writeFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Len(t, cfg.SeedOrder, 16)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	path := writeFile(t, `
seed_order: [Vitality, MOUZ, Spirit, FaZe]
qual_wins: 2
elim_losses: 2
iterations: 5000
workers: 3
random_seed: 42
mid_pairing: greedy
output_dir: out/major
`)
	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"Vitality", "MOUZ", "Spirit", "FaZe"}, cfg.SeedOrder)
	assert.Equal(t, swiss.Settings{QualWins: 2, ElimLosses: 2}, cfg.Settings())
	assert.Equal(t, 5000, cfg.Iterations)
	assert.Equal(t, 3, cfg.Workers)
	assert.Equal(t, int64(42), cfg.RandomSeed)
	assert.Equal(t, "out/major", cfg.OutputDir)
	// Unset keys keep their defaults.
	assert.Equal(t, "halves", cfg.InitialPairing)
	assert.Equal(t, "data/runs.db", cfg.DBPath)

	initial, mid, err := cfg.Pairings()
	require.NoError(t, err)
	assert.Equal(t, swiss.HalvesPairing{}, initial)
	assert.Equal(t, swiss.GreedyPairing{}, mid)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	_, err := LoadConfig(writeFile(t, "seed_order: [unclosed"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RunConfig)
	}{
		{"odd seed order", func(c *RunConfig) { c.SeedOrder = []string{"a", "b", "c"} }},
		{"duplicate team", func(c *RunConfig) { c.SeedOrder = []string{"a", "a"} }},
		{"zero qual wins", func(c *RunConfig) { c.QualWins = 0 }},
		{"zero iterations", func(c *RunConfig) { c.Iterations = 0 }},
		{"negative workers", func(c *RunConfig) { c.Workers = -1 }},
		{"unknown pairing", func(c *RunConfig) { c.MidPairing = "monrad" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
