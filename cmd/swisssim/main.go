package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"strings"
	"time"

	swiss "github.com/sazarkin/swiss-stage-sim"
	"github.com/sazarkin/swiss-stage-sim/internal/api"
	"github.com/sazarkin/swiss-stage-sim/internal/config"
	"github.com/sazarkin/swiss-stage-sim/internal/logger"
	"github.com/sazarkin/swiss-stage-sim/internal/report"
	"github.com/sazarkin/swiss-stage-sim/internal/store"
)

func main() {
	var file, outDir, dbPath, serveAddr, profilePath, loggingPath string
	var n, k int
	var s int64
	var noStore bool
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-f <config.yaml>] [options]\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&file, "f", "config.yaml", "path to run config (.yaml)")
	flag.IntVar(&n, "n", 0, "number of iterations to run (overrides config)")
	flag.IntVar(&k, "k", 0, "number of workers (default: config, then number of CPUs)")
	flag.Int64Var(&s, "s", 0, "random seed (overrides config)")
	flag.StringVar(&outDir, "o", "", "output directory (overrides config)")
	flag.StringVar(&dbPath, "db", "", "run history database (overrides config)")
	flag.BoolVar(&noStore, "no-store", false, "do not record the run in the database")
	flag.StringVar(&serveAddr, "serve", "", "serve the run history API on this address instead of running")
	flag.StringVar(&profilePath, "profile", "", "write cpu profile to file")
	flag.StringVar(&loggingPath, "logging", "", "path to logging config (.yaml)")
	flag.Parse()

	cfg, err := config.LoadConfig(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load config: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, n, k, s, outDir, dbPath)

	if loggingPath == "" {
		loggingPath = cfg.Logging
	}
	if loggingPath == "" {
		loggingPath = file
	}
	logCfg, err := logger.LoadConfig(loggingPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not load logging config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Initialize(logCfg); err != nil {
		fmt.Fprintf(os.Stderr, "could not initialize logger: %v\n", err)
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid config", "path", file, "error", err)
		os.Exit(1)
	}

	if profilePath != "" {
		f, err := os.Create(profilePath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not create CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		if err := pprof.StartCPUProfile(f); err != nil {
			fmt.Fprintf(os.Stderr, "could not start CPU profile: %v\n", err)
			os.Exit(1)
		}
		defer pprof.StopCPUProfile()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if serveAddr != "" {
		err = serve(ctx, cfg, serveAddr)
	} else {
		err = run(ctx, cfg, noStore)
	}
	if err != nil {
		logger.Error("Exiting", "error", err)
		stop()
		pprof.StopCPUProfile()
		os.Exit(1)
	}
}

func applyFlags(cfg *config.RunConfig, n, k int, s int64, outDir, dbPath string) {
	if n > 0 {
		cfg.Iterations = n
	}
	if k > 0 {
		cfg.Workers = k
	}
	if cfg.Workers == 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if s != 0 {
		cfg.RandomSeed = s
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if dbPath != "" {
		cfg.DBPath = dbPath
	}
}

func run(ctx context.Context, cfg *config.RunConfig, noStore bool) error {
	initial, mid, err := cfg.Pairings()
	if err != nil {
		return err
	}

	lastReported := -1
	sim, err := swiss.NewSimulation(cfg.SeedOrder, cfg.Settings(),
		swiss.WithWorkers(cfg.Workers),
		swiss.WithSeed(cfg.RandomSeed),
		swiss.WithPairings(initial, mid),
		swiss.WithProgress(func(fraction float64) {
			pct := int(fraction * 100)
			if pct/10 != lastReported/10 {
				lastReported = pct
				logger.Info("Progress", "percent", pct)
			}
		}),
	)
	if err != nil {
		return err
	}

	start := time.Now()
	results, err := sim.Run(ctx, cfg.Iterations)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	if err := report.Write(cfg.OutputDir, results, report.DefaultOptions()); err != nil {
		return err
	}

	if !noStore {
		if err := saveRun(cfg, results, elapsed); err != nil {
			logger.Warning("Run not recorded", "error", err)
		}
	}

	printSummary(results, elapsed)
	logger.Always("Results written", "dir", cfg.OutputDir)
	return nil
}

func saveRun(cfg *config.RunConfig, results *swiss.SimulationResults, elapsed time.Duration) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	rec := store.NewRun(cfg.SeedOrder, cfg.Settings(), cfg.Iterations, cfg.Workers, cfg.RandomSeed)
	rec.Duration = elapsed
	rec.Results = results
	if err := db.Save(rec); err != nil {
		return err
	}
	logger.Info("Run recorded", "id", rec.ID, "db", cfg.DBPath)
	return nil
}

func serve(ctx context.Context, cfg *config.RunConfig, addr string) error {
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return err
	}
	db, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.NewServer(db, cfg.Workers, cfg.Iterations).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Serving run history", "addr", addr, "db", cfg.DBPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func printSummary(results *swiss.SimulationResults, elapsed time.Duration) {
	fmt.Printf("%d iterations in %s, %d failed\n\n", results.Iterations, elapsed.Round(time.Millisecond), results.FailedSimulations)
	fmt.Printf("%-20s %10s %10s %10s %10s\n", "team", "qualified", "eliminated", "all wins", "all losses")
	for _, q := range results.Qualified {
		fmt.Printf("%-20s %10s %10s %10s %10s\n", q.TeamName,
			percent(q.Rate),
			lookupPercent(results.Eliminated, q.TeamName),
			lookupPercent(results.AllWins, q.TeamName),
			lookupPercent(results.AllLosses, q.TeamName))
	}
	if len(results.ErrorDetails) > 0 {
		fmt.Printf("\n%d distinct infeasible rounds, e.g. %s\n", len(results.ErrorDetails),
			strings.ReplaceAll(results.ErrorDetails[0], ",", ", "))
	}
}

func lookupPercent(list []swiss.TeamResults, name string) string {
	tr, ok := swiss.Find(list, name)
	if !ok {
		return "0.00%"
	}
	return percent(tr.Rate)
}

func percent(r swiss.Rate) string {
	if r.Undefined() {
		return "-"
	}
	return fmt.Sprintf("%.2f%%", float64(r)*100)
}
