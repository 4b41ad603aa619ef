package swiss

import (
	"math/rand"
)

// MatchDecider decides the winner of a single match.
type MatchDecider interface {
	TeamAWins(a, b *TeamStanding, bestOf BestOf) bool
}

// CoinFlip gives each side of every match an even chance.
type CoinFlip struct {
	rng *rand.Rand
}

func NewCoinFlip(rng *rand.Rand) *CoinFlip {
	return &CoinFlip{rng: rng}
}

func (c *CoinFlip) TeamAWins(_, _ *TeamStanding, _ BestOf) bool {
	return c.rng.Float64() < 0.5
}

// EventResult is the terminal partition of one simulated stage.
type EventResult struct {
	Qualified  []*TeamStanding
	Eliminated []*TeamStanding
	Rounds     [][]Matchup
}

// Teams returns qualified then eliminated teams.
func (r *EventResult) Teams() []*TeamStanding {
	teams := make([]*TeamStanding, 0, len(r.Qualified)+len(r.Eliminated))
	teams = append(teams, r.Qualified...)
	return append(teams, r.Eliminated...)
}

// Stage runs one complete event.
type Stage interface {
	SimulateEvent() (*EventResult, error)
}

// StageFactory builds the stage a worker reuses for all of its iterations.
type StageFactory func(seedOrder []string, settings Settings, rng *rand.Rand) Stage

// SwissSystem simulates a "win N to qualify, lose M to be eliminated" stage.
type SwissSystem struct {
	SeedOrder []string
	Settings  Settings
	Matcher   *Matcher
	Decider   MatchDecider

	Teams       []*TeamStanding // seed order
	Competitors []*TeamStanding
	Qualified   []*TeamStanding
	Eliminated  []*TeamStanding
	Rounds      [][]Matchup
}

func NewSwissSystem(seedOrder []string, settings Settings, matcher *Matcher, decider MatchDecider) *SwissSystem {
	if matcher == nil {
		matcher = NewMatcher()
	}
	ss := &SwissSystem{
		SeedOrder: seedOrder,
		Settings:  settings,
		Matcher:   matcher,
		Decider:   decider,
	}
	ss.Reset()
	return ss
}

// NewStageFactory returns a factory of coin flip stages using the given
// pairing strategies. Nil strategies fall back to the defaults.
func NewStageFactory(initial, mid Pairing) StageFactory {
	return func(seedOrder []string, settings Settings, rng *rand.Rand) Stage {
		m := NewMatcher()
		if initial != nil {
			m.Initial = initial
		}
		if mid != nil {
			m.Mid = mid
		}
		return NewSwissSystem(seedOrder, settings, m, NewCoinFlip(rng))
	}
}

// Reset starts a fresh event. Standings from a previous event are not reused
// since they are handed out in EventResult.
func (ss *SwissSystem) Reset() {
	ss.Teams = NewStandings(ss.SeedOrder)
	ss.Competitors = make([]*TeamStanding, len(ss.Teams))
	copy(ss.Competitors, ss.Teams)
	ss.Qualified = nil
	ss.Eliminated = nil
	ss.Rounds = nil
}

// SimulateMatch plays one matchup and records it on both teams.
func (ss *SwissSystem) SimulateMatch(m Matchup) {
	a, b := m.TeamA.TeamStanding, m.TeamB.TeamStanding
	bestOf := Bo1
	if ss.Settings.decisive(a, b) {
		bestOf = Bo3
	}
	teamAWins := ss.Decider.TeamAWins(a, b, bestOf)
	a.record(b.Name, bestOf, teamAWins)
	b.record(a.Name, bestOf, !teamAWins)
}

// SimulateRound pairs the competitors, plays every matchup and moves teams
// that reached a threshold out of the competitor pool.
func (ss *SwissSystem) SimulateRound() error {
	matchups, err := ss.Matcher.CalculateMatchups(ss.Competitors)
	if err != nil {
		return err
	}
	if len(matchups) == 0 {
		return invariantf("no matchups for %d competitors", len(ss.Competitors))
	}
	for _, m := range matchups {
		ss.SimulateMatch(m)
	}
	ss.Rounds = append(ss.Rounds, matchups)

	remaining := ss.Competitors[:0]
	for _, t := range ss.Competitors {
		switch {
		case t.Wins >= ss.Settings.QualWins:
			ss.Qualified = append(ss.Qualified, t)
		case t.Losses >= ss.Settings.ElimLosses:
			ss.Eliminated = append(ss.Eliminated, t)
		default:
			remaining = append(remaining, t)
		}
	}
	ss.Competitors = remaining
	return nil
}

// SimulateTournament plays rounds until every team qualified or was eliminated.
func (ss *SwissSystem) SimulateTournament() error {
	for len(ss.Competitors) > 0 {
		if err := ss.SimulateRound(); err != nil {
			return err
		}
	}
	return nil
}

// SimulateEvent resets the stage and plays it to completion.
func (ss *SwissSystem) SimulateEvent() (*EventResult, error) {
	ss.Reset()
	if err := ss.SimulateTournament(); err != nil {
		return nil, err
	}
	return &EventResult{Qualified: ss.Qualified, Eliminated: ss.Eliminated, Rounds: ss.Rounds}, nil
}
