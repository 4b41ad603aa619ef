package swiss

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/sazarkin/swiss-stage-sim/internal/logger"
)

type Simulation struct {
	SeedOrder []string
	Settings  Settings
	Workers   int
	Seed      int64

	progress func(fraction float64)
	newStage StageFactory
}

type Option func(*Simulation)

// WithWorkers sets the number of concurrent workers.
func WithWorkers(n int) Option {
	return func(sim *Simulation) { sim.Workers = n }
}

// WithSeed fixes the master random seed. Zero means time based.
func WithSeed(seed int64) Option {
	return func(sim *Simulation) { sim.Seed = seed }
}

// WithProgress receives the completed fraction of the run.
// It is called from the goroutine running Run. A slow callback delays
// delivery but does not hold up the workers.
func WithProgress(fn func(fraction float64)) Option {
	return func(sim *Simulation) { sim.progress = fn }
}

// WithPairings selects the opening and mid stage pairing strategies.
func WithPairings(initial, mid Pairing) Option {
	return func(sim *Simulation) { sim.newStage = NewStageFactory(initial, mid) }
}

// WithStageFactory replaces how workers build their stage.
func WithStageFactory(f StageFactory) Option {
	return func(sim *Simulation) { sim.newStage = f }
}

func NewSimulation(seedOrder []string, settings Settings, opts ...Option) (*Simulation, error) {
	if err := ValidateSeedOrder(seedOrder); err != nil {
		return nil, err
	}
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	sim := &Simulation{
		SeedOrder: seedOrder,
		Settings:  settings,
		Workers:   1,
		newStage:  NewStageFactory(nil, nil),
	}
	for _, opt := range opts {
		opt(sim)
	}
	if sim.Workers < 1 {
		return nil, fmt.Errorf("worker count must be positive, got %d", sim.Workers)
	}
	return sim, nil
}

type eventKind int

const (
	eventProgress eventKind = iota
	eventFailure
)

// workerEvent is streamed from a worker to Run while the worker is running.
type workerEvent struct {
	kind         eventKind
	completed    int
	signature    string
	roundDetails string
}

// relay forwards events from in to the returned channel in order. It keeps
// receiving while the reader is busy, so senders never wait on the reader.
// The returned channel is closed once in is closed and drained.
func relay(in <-chan workerEvent) <-chan workerEvent {
	out := make(chan workerEvent)
	go func() {
		defer close(out)
		var queue []workerEvent
		for in != nil || len(queue) > 0 {
			var send chan<- workerEvent
			var next workerEvent
			if len(queue) > 0 {
				send, next = out, queue[0]
			}
			select {
			case ev, ok := <-in:
				if !ok {
					in = nil
					continue
				}
				queue = append(queue, ev)
			case send <- next:
				queue[0] = workerEvent{}
				queue = queue[1:]
			}
		}
	}()
	return out
}

type BatchResult struct {
	Counts   *ResultCounts
	Failures int
}

// Batch runs n events sequentially on one stage. Infeasible events are counted
// and reported on events; any other error aborts the batch.
func (sim *Simulation) Batch(ctx context.Context, n int, rng *rand.Rand, events chan<- workerEvent) (*BatchResult, error) {
	stage := sim.newStage(sim.SeedOrder, sim.Settings, rng)
	res := &BatchResult{Counts: NewResultCounts()}

	interval := n / 5
	if interval < 1 {
		interval = 1
	}
	reported := 0
	for i := range n {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		event, err := stage.SimulateEvent()
		if err != nil {
			var simErr *SimulationError
			if !errors.As(err, &simErr) {
				return nil, fmt.Errorf("iteration %d: %w", i, err)
			}
			res.Failures++
			events <- workerEvent{kind: eventFailure, signature: simErr.Signature(), roundDetails: simErr.RoundDetails}
		} else {
			res.Counts.Categorize(event.Teams(), sim.Settings)
		}
		if (i+1)%interval == 0 {
			events <- workerEvent{kind: eventProgress, completed: i + 1 - reported}
			reported = i + 1
		}
	}
	if reported < n {
		events <- workerEvent{kind: eventProgress, completed: n - reported}
	}
	return res, nil
}

// Run spreads iterations over the workers, waits for all of them and merges
// their tallies. A worker failing for any reason other than an infeasible
// round fails the whole run.
func (sim *Simulation) Run(ctx context.Context, iterations int) (*SimulationResults, error) {
	if iterations < 1 {
		return nil, fmt.Errorf("iterations must be positive, got %d", iterations)
	}
	start := time.Now()
	k := sim.Workers
	batchSize := iterations / k
	remainder := iterations % k

	seed := sim.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	masterRand := rand.New(rand.NewSource(seed))

	logger.Info("Starting simulation", "teams", len(sim.SeedOrder), "iterations", iterations,
		"workers", k, "qual_wins", sim.Settings.QualWins, "elim_losses", sim.Settings.ElimLosses)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	sink := make(chan workerEvent, k)
	events := relay(sink)
	results := make([]*BatchResult, k)
	errs := make([]error, k)

	var wg sync.WaitGroup
	for i := range k {
		size := batchSize
		if i < remainder {
			size++
		}
		rng := rand.New(rand.NewSource(masterRand.Int63()))
		wg.Add(1)
		go func(idx, size int, rng *rand.Rand) {
			defer wg.Done()
			defer func() {
				if r := recover(); r != nil {
					errs[idx] = fmt.Errorf("worker panicked: %v", r)
				}
				if errs[idx] != nil {
					cancel()
				}
			}()
			results[idx], errs[idx] = sim.Batch(ctx, size, rng, sink)
		}(i, size, rng)
	}
	go func() {
		wg.Wait()
		close(sink)
	}()

	errorDetails := map[string]struct{}{}
	roundDetails := map[string]struct{}{}
	completed := 0
	for ev := range events {
		switch ev.kind {
		case eventFailure:
			errorDetails[ev.signature] = struct{}{}
			roundDetails[ev.roundDetails] = struct{}{}
			logger.Debug("Infeasible round", "signature", ev.signature)
		case eventProgress:
			completed += ev.completed
			if sim.progress != nil {
				sim.progress(float64(completed) / float64(iterations))
			}
		}
	}

	// Report the root cause, not the cancellations it triggered in other workers.
	var fatal error
	for i, err := range errs {
		if err == nil {
			continue
		}
		if fatal == nil || (errors.Is(fatal, context.Canceled) && !errors.Is(err, context.Canceled)) {
			fatal = fmt.Errorf("worker %d: %w", i, err)
		}
	}
	if fatal != nil {
		logger.Error("Simulation failed", "error", fatal)
		return nil, fatal
	}

	combined := NewResultCounts()
	for _, name := range sim.SeedOrder {
		combined.Team(name)
	}
	failed := 0
	for _, res := range results {
		combined.Merge(res.Counts)
		failed += res.Failures
	}

	logger.Info("Simulation finished", "iterations", iterations, "failed", failed,
		"unique_failures", len(errorDetails), "elapsed", time.Since(start))
	return FormatResults(combined, sim.Settings, iterations, failed, errorDetails, roundDetails), nil
}
