package swiss

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchupCounts(t *testing.T) {
	counts := MatchupCounts([]string{"a>b,c>d", "a>b,e>f", "a>b", ""})
	assert.Equal(t, []MatchupCount{
		{Key: "a>b", Count: 3},
		{Key: "c>d", Count: 1},
		{Key: "e>f", Count: 1},
	}, counts)
}

func TestSubsetCounts(t *testing.T) {
	counts := SubsetCounts([]string{"a>b,c>d,e>f", "a>b,c>d"}, 2)
	assert.Equal(t, map[string]int{
		"a>b":     2,
		"c>d":     2,
		"e>f":     1,
		"a>b,c>d": 2,
		"a>b,e>f": 1,
		"c>d,e>f": 1,
	}, counts)

	unbounded := SubsetCounts([]string{"a>b,c>d,e>f"}, 0)
	assert.Len(t, unbounded, 7)
	assert.Equal(t, 1, unbounded["a>b,c>d,e>f"])
}

func TestEachCombination(t *testing.T) {
	var got [][]int
	eachCombination(4, 2, func(indices []int) {
		got = append(got, append([]int(nil), indices...))
	})
	assert.Equal(t, [][]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}, got)

	n := 0
	eachCombination(5, 3, func([]int) { n++ })
	assert.Equal(t, 10, n)

	eachCombination(2, 3, func([]int) { t.Fatal("no combination expected") })
}

func TestTopSubsetsBySize(t *testing.T) {
	counts := map[string]int{
		"a>b":     5,
		"c>d":     2,
		"e>f":     7,
		"a>b,c>d": 3,
		"a>b,e>f": 4,
	}
	top := TopSubsetsBySize(counts, 2)
	require.Len(t, top, 2)
	assert.Equal(t, []MatchupCount{{Key: "e>f", Count: 7}, {Key: "a>b", Count: 5}}, top[1])
	assert.Equal(t, []MatchupCount{{Key: "a>b,e>f", Count: 4}, {Key: "a>b,c>d", Count: 3}}, top[2])
}

func TestFindRoundExample(t *testing.T) {
	details := []string{
		"a\t0\t1\ta>b\nb\t0\t2\ta>b",
		"a\t1\t1\ta>b,a>c\nc\t0\t3\ta>c",
	}
	example, ok := FindRoundExample(details, "a>b,a>c")
	require.True(t, ok)
	assert.Equal(t, details[1], example)

	_, ok = FindRoundExample(details, "c>a")
	assert.False(t, ok)
}
