package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	swiss "github.com/sazarkin/swiss-stage-sim"
)

func sampleResults() *swiss.SimulationResults {
	return &swiss.SimulationResults{
		Iterations:        10,
		QualWins:          2,
		ElimLosses:        2,
		FailedSimulations: 2,
		Qualified:         []swiss.TeamResults{{TeamName: "A", Rate: 0.5}},
		Eliminated:        []swiss.TeamResults{},
		AllWins:           []swiss.TeamResults{},
		AllLosses:         []swiss.TeamResults{},
		ErrorDetails:      []string{"A>C,B>D,C>B", "A>C,D>A,D>B"},
		RoundDetails: []string{
			"A\t0\t1\tA>C,D>A\nC\t0\t3\tA>C,C>B",
			"B\t0\t2\tB>D,C>B\nC\t0\t3\tA>C,C>B",
		},
	}
}

func readJSON(t *testing.T, path string, v any) {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(data, v))
}

func TestWrite(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "out")
	require.NoError(t, Write(dir, sampleResults(), DefaultOptions()))

	for _, name := range []string{ResultsFile, ErrorScenarios, RoundDetailsFile, MatchupCountsFile, TopSubsetsFile, SubsetExamples} {
		assert.FileExists(t, filepath.Join(dir, name))
	}

	var results swiss.SimulationResults
	readJSON(t, filepath.Join(dir, ResultsFile), &results)
	assert.Equal(t, 2, results.FailedSimulations)
	assert.Equal(t, swiss.Rate(0.5), results.Qualified[0].Rate)

	var scenarios [][]string
	readJSON(t, filepath.Join(dir, ErrorScenarios), &scenarios)
	assert.Equal(t, [][]string{{"A>C", "B>D", "C>B"}, {"A>C", "D>A", "D>B"}}, scenarios)

	var counts []swiss.MatchupCount
	readJSON(t, filepath.Join(dir, MatchupCountsFile), &counts)
	require.NotEmpty(t, counts)
	assert.Equal(t, swiss.MatchupCount{Key: "A>C", Count: 2}, counts[0])

	var top map[string][]swiss.MatchupCount
	readJSON(t, filepath.Join(dir, TopSubsetsFile), &top)
	assert.Len(t, top, 3)
	assert.Equal(t, "A>C", top["1"][0].Key)

	details, err := os.ReadFile(filepath.Join(dir, RoundDetailsFile))
	require.NoError(t, err)
	assert.Equal(t, RoundDetails(sampleResults().RoundDetails), string(details))

	// D>B shows up in no dump, so only the first three-edge subset has an example.
	examples, err := os.ReadFile(filepath.Join(dir, SubsetExamples))
	require.NoError(t, err)
	assert.Equal(t,
		"A>C,B>D,C>B: 1\n"+RoundHeader+"B\t0\t2\tB>D,C>B\nC\t0\t3\tA>C,C>B\n\n",
		string(examples))
}

func TestSubsetExampleRounds(t *testing.T) {
	dumps := sampleResults().RoundDetails
	top := map[int][]swiss.MatchupCount{
		1: {{Key: "B>D", Count: 9}},
		2: {{Key: "A>C,C>B", Count: 2}, {Key: "A>C,D>A", Count: 1}},
	}
	assert.Equal(t,
		"A>C,C>B: 2\n"+RoundHeader+dumps[0]+"\n\n"+
			"A>C,D>A: 1\n"+RoundHeader+dumps[0]+"\n\n",
		SubsetExampleRounds(top, dumps))

	assert.Equal(t, "", SubsetExampleRounds(nil, dumps))
}

func TestRoundDetails(t *testing.T) {
	assert.Equal(t, "", RoundDetails(nil))
	assert.Equal(t,
		RoundHeader+"a\t0\t1\t\n\n"+RoundHeader+"b\t0\t2\t\n",
		RoundDetails([]string{"a\t0\t1\t", "b\t0\t2\t"}))
}

func TestWriteNoFailures(t *testing.T) {
	dir := t.TempDir()
	res := sampleResults()
	res.FailedSimulations = 0
	res.ErrorDetails = []string{}
	res.RoundDetails = []string{}
	require.NoError(t, Write(dir, res, DefaultOptions()))

	var scenarios [][]string
	readJSON(t, filepath.Join(dir, ErrorScenarios), &scenarios)
	assert.Empty(t, scenarios)

	details, err := os.ReadFile(filepath.Join(dir, RoundDetailsFile))
	require.NoError(t, err)
	assert.Empty(t, details)

	examples, err := os.ReadFile(filepath.Join(dir, SubsetExamples))
	require.NoError(t, err)
	assert.Empty(t, examples)
}
