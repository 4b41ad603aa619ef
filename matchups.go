package swiss

import (
	"fmt"

	"github.com/sazarkin/swiss-stage-sim/internal/logger"
)

// Pairing produces the matchups for one sorted record group.
type Pairing interface {
	Pair(group []*RankedTeam) ([]Matchup, error)
}

// PairingByName returns a pairing strategy by its config name.
func PairingByName(name string) (Pairing, error) {
	switch name {
	case "halves":
		return HalvesPairing{}, nil
	case "fold":
		return FoldPairing{}, nil
	case "walkback":
		return WalkbackPairing{}, nil
	case "greedy":
		return GreedyPairing{}, nil
	default:
		return nil, fmt.Errorf("unknown pairing strategy: %q", name)
	}
}

// HalvesPairing is the opening round pairing 1v9, 2v10, 3v11, ...
type HalvesPairing struct{}

func (HalvesPairing) Pair(group []*RankedTeam) ([]Matchup, error) {
	if len(group)%2 != 0 {
		return nil, invariantf("initial group of %d teams cannot be split in halves", len(group))
	}
	half := len(group) / 2
	matchups := make([]Matchup, 0, half)
	for i := range half {
		a, b := group[i], group[i+half]
		if a == nil || b == nil {
			return nil, invariantf("missing team in initial matchup: %d vs %d", i+1, i+1+half)
		}
		matchups = append(matchups, Matchup{TeamA: a, TeamB: b})
	}
	return matchups, nil
}

// FoldPairing is the opening round pairing 1v16, 2v15, 3v14, ...
type FoldPairing struct{}

func (FoldPairing) Pair(group []*RankedTeam) ([]Matchup, error) {
	if len(group)%2 != 0 {
		return nil, invariantf("initial group of %d teams cannot be folded", len(group))
	}
	half := len(group) / 2
	matchups := make([]Matchup, 0, half)
	for i := range half {
		a, b := group[i], group[len(group)-1-i]
		if a == nil || b == nil {
			return nil, invariantf("missing team in initial matchup: %d vs %d", i+1, len(group)-i)
		}
		matchups = append(matchups, Matchup{TeamA: a, TeamB: b})
	}
	return matchups, nil
}

// WalkbackPairing pairs the top half against the reversed bottom half. When a
// high team runs out of opponents, the previous high team gives up its
// opponent and the scan resumes from that slot.
type WalkbackPairing struct{}

func (WalkbackPairing) Pair(group []*RankedTeam) ([]Matchup, error) {
	matchups, walkbacks, err := pairWithWalkback(group)
	if err != nil {
		return nil, err
	}
	if walkbacks > 1 {
		logger.Warning("walked back more than once", "walkbacks", walkbacks, "group_size", len(group))
	}
	return matchups, nil
}

func pairWithWalkback(group []*RankedTeam) ([]Matchup, int, error) {
	if len(group)%2 != 0 {
		return nil, 0, newSimulationError(fmt.Sprintf("record group of %d teams cannot be paired", len(group)), group)
	}
	half := len(group) / 2
	high := group[:half]
	low := make([]*RankedTeam, 0, half)
	for i := len(group) - 1; i >= half; i-- {
		low = append(low, group[i])
	}

	disallowed := make([]map[string]bool, half)
	for i := range disallowed {
		disallowed[i] = map[string]bool{}
	}
	taken := map[string]bool{}
	opponents := make([]*RankedTeam, half)
	walkbacks := 0

	for hi := 0; hi < half; hi++ {
		h := high[hi]
		if h == nil {
			return nil, walkbacks, invariantf("missing high seed team at %d", hi+1)
		}
		var pick *RankedTeam
		for _, l := range low {
			if disallowed[hi][l.Name] || taken[l.Name] {
				continue
			}
			if h.HasPlayed(l.Name) {
				disallowed[hi][l.Name] = true
				continue
			}
			pick = l
			break
		}
		if pick != nil {
			opponents[hi] = pick
			taken[pick.Name] = true
			continue
		}

		if hi == 0 {
			return nil, walkbacks, newSimulationError("no valid matchups for seeding found", group)
		}
		prev := opponents[hi-1]
		disallowed[hi-1][prev.Name] = true
		delete(taken, prev.Name)
		opponents[hi-1] = nil
		hi -= 2 // the loop step brings us back to hi-1
		walkbacks++
	}

	matchups := make([]Matchup, half)
	for i, h := range high {
		matchups[i] = Matchup{TeamA: h, TeamB: opponents[i]}
	}
	return matchups, walkbacks, nil
}

// GreedyPairing lets each high team, in order, take the lowest ranked team
// left that it has not played. Skipped teams go back to the pool in order.
type GreedyPairing struct{}

func (GreedyPairing) Pair(group []*RankedTeam) ([]Matchup, error) {
	if len(group)%2 != 0 {
		return nil, newSimulationError(fmt.Sprintf("record group of %d teams cannot be paired", len(group)), group)
	}
	pool := make([]*RankedTeam, len(group))
	copy(pool, group)

	matchups := make([]Matchup, 0, len(group)/2)
	for len(pool) > 0 {
		high := pool[0]
		pool = pool[1:]

		var skipped []*RankedTeam
		var low *RankedTeam
		for low == nil {
			if len(pool) == 0 {
				return nil, newSimulationError("no valid matchups for seeding found", group)
			}
			candidate := pool[len(pool)-1]
			pool = pool[:len(pool)-1]
			if high.HasPlayed(candidate.Name) {
				skipped = append([]*RankedTeam{candidate}, skipped...)
				continue
			}
			low = candidate
		}
		pool = append(pool, skipped...)
		matchups = append(matchups, Matchup{TeamA: high, TeamB: low})
	}
	return matchups, nil
}

// sixTeamPriority lists pairings of rank positions for a six team group,
// most seed-faithful first.
var sixTeamPriority = [15][3][2]int{
	{{1, 6}, {2, 5}, {3, 4}},
	{{1, 6}, {2, 4}, {3, 5}},
	{{1, 5}, {2, 6}, {3, 4}},
	{{1, 5}, {2, 4}, {3, 6}},
	{{1, 4}, {2, 6}, {3, 5}},
	{{1, 4}, {2, 5}, {3, 6}},
	{{1, 6}, {2, 3}, {4, 5}},
	{{1, 5}, {2, 3}, {4, 6}},
	{{1, 3}, {2, 6}, {4, 5}},
	{{1, 3}, {2, 5}, {4, 6}},
	{{1, 4}, {2, 3}, {5, 6}},
	{{1, 3}, {2, 4}, {5, 6}},
	{{1, 2}, {3, 6}, {4, 5}},
	{{1, 2}, {3, 5}, {4, 6}},
	{{1, 2}, {3, 4}, {5, 6}},
}

func pairSixTeams(group []*RankedTeam) ([]Matchup, error) {
	if len(group) != 6 {
		return nil, invariantf("six team table used for %d teams", len(group))
	}
	for _, row := range sixTeamPriority {
		matchups := make([]Matchup, 0, 3)
		for _, pair := range row {
			a, b := group[pair[0]-1], group[pair[1]-1]
			if a == nil || b == nil {
				return nil, invariantf("no team at rank %d or %d", pair[0], pair[1])
			}
			if a.HasPlayed(b.Name) {
				break
			}
			matchups = append(matchups, Matchup{TeamA: a, TeamB: b})
		}
		if len(matchups) == 3 {
			return matchups, nil
		}
	}
	return nil, newSimulationError("no valid matchups without rematches", group)
}

// Matcher turns the current competitors into a round of matchups.
type Matcher struct {
	Initial Pairing
	Mid     Pairing
}

// NewMatcher returns the default matcher: halves for the opening round and
// walkback for later rounds.
func NewMatcher() *Matcher {
	return &Matcher{Initial: HalvesPairing{}, Mid: WalkbackPairing{}}
}

// MatchRecordGroup pairs one sorted record group. Six team groups use the
// priority table, groups without history use the initial pairing.
func (m *Matcher) MatchRecordGroup(group []*RankedTeam) ([]Matchup, error) {
	if len(group) == 6 {
		return pairSixTeams(group)
	}
	opening := true
	for _, t := range group {
		if len(t.PastOpponents) > 0 {
			opening = false
			break
		}
	}
	if opening {
		return m.Initial.Pair(group)
	}
	return m.Mid.Pair(group)
}

// CalculateMatchups computes difficulties, forms record groups and pairs each
// group, best record first.
func (m *Matcher) CalculateMatchups(competitors []*TeamStanding) ([]Matchup, error) {
	groups := SplitRecordGroups(CalculateDifficulties(competitors))
	var matchups []Matchup
	for _, g := range groups {
		gm, err := m.MatchRecordGroup(g.Teams)
		if err != nil {
			return nil, err
		}
		matchups = append(matchups, gm...)
	}
	return matchups, nil
}
