package swiss

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategorize(t *testing.T) {
	teams := NewStandings([]string{"a", "b", "c", "d"})
	s := standingsByName(teams)
	s["a"].record("c", Bo1, true)
	s["a"].record("b", Bo3, true)
	s["b"].record("d", Bo1, true)
	s["b"].record("a", Bo3, false)
	s["c"].record("a", Bo1, false)
	s["c"].record("d", Bo3, false)
	s["d"].record("b", Bo1, false)
	s["d"].record("c", Bo3, true)

	rc := NewResultCounts()
	rc.Categorize(teams, Settings{QualWins: 2, ElimLosses: 2})

	a, ok := rc.Lookup("a")
	require.True(t, ok)
	assert.Equal(t, 1, a.Qualified)
	assert.Equal(t, 1, a.AllWins)
	assert.Equal(t, []string{"c", "b"}, a.Opponents())
	ab, _ := a.LookupOpponent("b")
	assert.Equal(t, OpponentCounts{Total: 1, Bo3: 1, Won: 1}, *ab)

	c, _ := rc.Lookup("c")
	assert.Equal(t, 1, c.Eliminated)
	assert.Equal(t, 1, c.AllLosses)

	b, _ := rc.Lookup("b")
	assert.Zero(t, b.Qualified+b.Eliminated)
	assert.Equal(t, 1, b.Wins)
	assert.Equal(t, 1, b.Losses)

	assert.Equal(t, []string{"a", "b", "c", "d"}, rc.Teams())
}

// Splitting events over two tallies and merging gives the same counts as one tally.
func TestMergeMatchesSingleTally(t *testing.T) {
	settings := Settings{QualWins: 3, ElimLosses: 3}
	seeds := numberedSeeds(16)
	ss := NewSwissSystem(seeds, settings, nil, NewCoinFlip(rand.New(rand.NewSource(99))))

	whole := NewResultCounts()
	left, right := NewResultCounts(), NewResultCounts()
	for i := range 200 {
		event, err := ss.SimulateEvent()
		if err != nil {
			var simErr *SimulationError
			require.True(t, errors.As(err, &simErr))
			continue
		}
		whole.Categorize(event.Teams(), settings)
		if i%3 == 0 {
			left.Categorize(event.Teams(), settings)
		} else {
			right.Categorize(event.Teams(), settings)
		}
	}

	merged := NewResultCounts()
	merged.Merge(left)
	merged.Merge(right)
	merged.Merge(nil)

	assert.ElementsMatch(t, whole.Teams(), merged.Teams())
	for _, name := range whole.Teams() {
		want, _ := whole.Lookup(name)
		got, ok := merged.Lookup(name)
		require.True(t, ok, name)
		assert.Equal(t, want.Qualified, got.Qualified, name)
		assert.Equal(t, want.Eliminated, got.Eliminated, name)
		assert.Equal(t, want.AllWins, got.AllWins, name)
		assert.Equal(t, want.AllLosses, got.AllLosses, name)
		assert.Equal(t, want.Wins, got.Wins, name)
		assert.Equal(t, want.Losses, got.Losses, name)
		assert.ElementsMatch(t, want.Opponents(), got.Opponents(), name)
		for _, opp := range want.Opponents() {
			w, _ := want.LookupOpponent(opp)
			g, ok := got.LookupOpponent(opp)
			require.True(t, ok)
			assert.Equal(t, *w, *g, "%s vs %s", name, opp)
		}
	}
}
