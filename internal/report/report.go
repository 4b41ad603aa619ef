// Package report writes a run's results and failure analysis to a directory.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	swiss "github.com/sazarkin/swiss-stage-sim"
)

const (
	ResultsFile       = "results.json"
	ErrorScenarios    = "error-scenarios.json"
	RoundDetailsFile  = "round-details-scenarios.txt"
	MatchupCountsFile = "matchup-counts.json"
	TopSubsetsFile    = "top-subsets.json"
	SubsetExamples    = "top-subset-examples.txt"

	// RoundHeader heads every round dump: name, difficulty, seed, record.
	RoundHeader = "nm\tdif\tsd\trecord\n"
)

// Options bound the subset analysis, which grows exponentially with the
// number of edges in a signature.
type Options struct {
	MaxSubsetSize int
	TopSubsets    int
}

func DefaultOptions() Options {
	return Options{MaxSubsetSize: 4, TopSubsets: 10}
}

// Write creates dir if needed and writes every report file into it.
func Write(dir string, results *swiss.SimulationResults, opts Options) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, ResultsFile), results); err != nil {
		return err
	}

	scenarios := make([][]string, len(results.ErrorDetails))
	for i, sig := range results.ErrorDetails {
		scenarios[i] = strings.Split(sig, ",")
	}
	if err := writeJSON(filepath.Join(dir, ErrorScenarios), scenarios); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, RoundDetailsFile), []byte(RoundDetails(results.RoundDetails)), 0o644); err != nil {
		return fmt.Errorf("write round details: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, MatchupCountsFile), swiss.MatchupCounts(results.ErrorDetails)); err != nil {
		return err
	}

	top := swiss.TopSubsetsBySize(swiss.SubsetCounts(results.ErrorDetails, opts.MaxSubsetSize), opts.TopSubsets)
	bySize := make(map[string][]swiss.MatchupCount, len(top))
	for size, list := range top {
		bySize[strconv.Itoa(size)] = list
	}
	if err := writeJSON(filepath.Join(dir, TopSubsetsFile), bySize); err != nil {
		return err
	}

	if err := os.WriteFile(filepath.Join(dir, SubsetExamples), []byte(SubsetExampleRounds(top, results.RoundDetails)), 0o644); err != nil {
		return fmt.Errorf("write subset examples: %w", err)
	}
	return nil
}

// SubsetExampleRounds lists the top subsets of the largest size with the first
// round dump that shows all of their matchups. Subsets with no such dump are left out.
func SubsetExampleRounds(top map[int][]swiss.MatchupCount, dumps []string) string {
	largest := 0
	for size := range top {
		if size > largest {
			largest = size
		}
	}
	var b strings.Builder
	for _, subset := range top[largest] {
		example, ok := swiss.FindRoundExample(dumps, subset.Key)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "%s: %d\n%s%s\n\n", subset.Key, subset.Count, RoundHeader, example)
	}
	return b.String()
}

// RoundDetails joins round dumps, each under its own header.
func RoundDetails(dumps []string) string {
	if len(dumps) == 0 {
		return ""
	}
	return RoundHeader + strings.Join(dumps, "\n\n"+RoundHeader) + "\n"
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
