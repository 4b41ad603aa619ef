// Package store keeps the history of simulation runs in a storm (bbolt) database.
package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/asdine/storm"
	"github.com/asdine/storm/index"
	"github.com/rs/xid"

	swiss "github.com/sazarkin/swiss-stage-sim"
)

var ErrNotFound = errors.New("run not found")

// Run is one stored simulation run.
type Run struct {
	ID         string                   `json:"id" storm:"id"`
	CreatedAt  time.Time                `json:"created_at"`
	SeedOrder  []string                 `json:"seed_order"`
	QualWins   int                      `json:"qual_wins"`
	ElimLosses int                      `json:"elim_losses"`
	Iterations int                      `json:"iterations"`
	Workers    int                      `json:"workers"`
	RandomSeed int64                    `json:"random_seed"`
	Duration   time.Duration            `json:"duration"`
	Results    *swiss.SimulationResults `json:"results"`
}

// NewRun stamps a run with a fresh ID and creation time.
func NewRun(seedOrder []string, settings swiss.Settings, iterations, workers int, seed int64) *Run {
	return &Run{
		ID:         xid.New().String(),
		CreatedAt:  time.Now().UTC(),
		SeedOrder:  seedOrder,
		QualWins:   settings.QualWins,
		ElimLosses: settings.ElimLosses,
		Iterations: iterations,
		Workers:    workers,
		RandomSeed: seed,
	}
}

type Store struct {
	db *storm.DB
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	db, err := storm.Open(path)
	if err != nil {
		return nil, fmt.Errorf("unable to open run store: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) Save(run *Run) error {
	if run.ID == "" {
		return fmt.Errorf("run has no id")
	}
	if err := s.db.Save(run); err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

func (s *Store) Get(id string) (*Run, error) {
	var run Run
	if err := s.db.One("ID", id, &run); err != nil {
		if errors.Is(err, storm.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &run, nil
}

// List returns up to limit runs, newest first. A limit of 0 returns all runs.
// Run IDs are xids, so key order is creation order.
func (s *Store) List(limit int) ([]Run, error) {
	var runs []Run
	opts := []func(*index.Options){storm.Reverse()}
	if limit > 0 {
		opts = append(opts, storm.Limit(limit))
	}
	err := s.db.All(&runs, opts...)
	if err != nil && !errors.Is(err, storm.ErrNotFound) {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	if runs == nil {
		runs = []Run{}
	}
	return runs, nil
}

func (s *Store) Delete(id string) error {
	run, err := s.Get(id)
	if err != nil {
		return err
	}
	if err := s.db.DeleteStruct(run); err != nil {
		return fmt.Errorf("delete run %s: %w", id, err)
	}
	return nil
}
