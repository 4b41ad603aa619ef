package swiss

import "sort"

// CalculateDifficulties scores every competitor by the summed differential of
// the opponents it has faced. Only opponents still in competitors count;
// teams that already qualified or were eliminated contribute nothing.
func CalculateDifficulties(competitors []*TeamStanding) []*RankedTeam {
	diffs := make(map[string]int, len(competitors))
	for _, t := range competitors {
		diffs[t.Name] = t.Diff()
	}
	ranked := make([]*RankedTeam, len(competitors))
	for i, t := range competitors {
		difficulty := 0
		for _, o := range t.PastOpponents {
			difficulty += diffs[o.TeamName]
		}
		ranked[i] = &RankedTeam{TeamStanding: t, Difficulty: difficulty}
	}
	return ranked
}

// RecordGroup is the set of competitors sharing a win-loss differential.
type RecordGroup struct {
	Diff  int
	Teams []*RankedTeam
}

// SplitRecordGroups buckets teams by differential, best record first.
// Each group is sorted with SortRecordGroup.
func SplitRecordGroups(teams []*RankedTeam) []RecordGroup {
	byDiff := map[int][]*RankedTeam{}
	var diffs []int
	for _, t := range teams {
		d := t.Diff()
		if _, ok := byDiff[d]; !ok {
			diffs = append(diffs, d)
		}
		byDiff[d] = append(byDiff[d], t)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(diffs)))

	groups := make([]RecordGroup, len(diffs))
	for i, d := range diffs {
		group := byDiff[d]
		SortRecordGroup(group)
		groups[i] = RecordGroup{Diff: d, Teams: group}
	}
	return groups
}

// SortRecordGroup orders by descending difficulty, then ascending seed.
func SortRecordGroup(group []*RankedTeam) {
	sort.Slice(group, func(i, j int) bool {
		if group[i].Difficulty != group[j].Difficulty {
			return group[i].Difficulty > group[j].Difficulty
		}
		return group[i].Seed < group[j].Seed
	})
}
