package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	swiss "github.com/sazarkin/swiss-stage-sim"
)

// RunConfig describes one simulation run and where its output goes.
type RunConfig struct {
	// SeedOrder lists team names, best seed first.
	SeedOrder  []string `yaml:"seed_order"`
	QualWins   int      `yaml:"qual_wins"`
	ElimLosses int      `yaml:"elim_losses"`
	Iterations int      `yaml:"iterations"`

	// Workers is the number of concurrent workers. 0 uses every CPU.
	Workers int `yaml:"workers"`

	// RandomSeed fixes the master seed. 0 picks one from the clock.
	RandomSeed int64 `yaml:"random_seed"`

	InitialPairing string `yaml:"initial_pairing"`
	MidPairing     string `yaml:"mid_pairing"`

	OutputDir string `yaml:"output_dir"`
	DBPath    string `yaml:"db_path"`
	Logging   string `yaml:"logging"`
}

// DefaultConfig is a 16 team Major stage: 3 wins qualify, 3 losses eliminate.
func DefaultConfig() *RunConfig {
	seeds := make([]string, 16)
	for i := range seeds {
		seeds[i] = strconv.Itoa(i + 1)
	}
	return &RunConfig{
		SeedOrder:      seeds,
		QualWins:       3,
		ElimLosses:     3,
		Iterations:     100_000,
		InitialPairing: "halves",
		MidPairing:     "walkback",
		OutputDir:      "output",
		DBPath:         "data/runs.db",
	}
}

// LoadConfig reads a run config from YAML over the defaults.
// If the file doesn't exist, returns the defaults.
func LoadConfig(path string) (*RunConfig, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return config, nil
		}
		return config, err
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return DefaultConfig(), fmt.Errorf("parse %s: %w", path, err)
	}
	return config, nil
}

func (c *RunConfig) Settings() swiss.Settings {
	return swiss.Settings{QualWins: c.QualWins, ElimLosses: c.ElimLosses}
}

// Pairings resolves the configured pairing strategy names.
func (c *RunConfig) Pairings() (initial, mid swiss.Pairing, err error) {
	initial, err = swiss.PairingByName(c.InitialPairing)
	if err != nil {
		return nil, nil, fmt.Errorf("initial_pairing: %w", err)
	}
	mid, err = swiss.PairingByName(c.MidPairing)
	if err != nil {
		return nil, nil, fmt.Errorf("mid_pairing: %w", err)
	}
	return initial, mid, nil
}

// Validate checks the run can start.
func (c *RunConfig) Validate() error {
	if err := swiss.ValidateSeedOrder(c.SeedOrder); err != nil {
		return err
	}
	if err := c.Settings().Validate(); err != nil {
		return err
	}
	if c.Iterations < 1 {
		return fmt.Errorf("iterations must be positive, got %d", c.Iterations)
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if _, _, err := c.Pairings(); err != nil {
		return err
	}
	return nil
}
