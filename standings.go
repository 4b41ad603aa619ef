package swiss

import (
	"fmt"
	"strings"
)

// BestOf is the match format.
type BestOf int

const (
	Bo1 BestOf = 1
	Bo3 BestOf = 3
)

func (b BestOf) String() string {
	switch b {
	case Bo1:
		return "bo1"
	case Bo3:
		return "bo3"
	}
	return "unknown"
}

// PastOpponentDetail is one side of a played match.
type PastOpponentDetail struct {
	TeamName string `json:"team_name"`
	BestOf   BestOf `json:"best_of"`
	Won      bool   `json:"won"`
}

// Edge encodes the match as "winner>loser" from this team's point of view.
func (o PastOpponentDetail) Edge(team string) string {
	if o.Won {
		return team + ">" + o.TeamName
	}
	return o.TeamName + ">" + team
}

// TeamStanding is a team's record within one simulated stage.
// Wins+Losses always equals len(PastOpponents).
type TeamStanding struct {
	Name          string
	Seed          int
	Wins          int
	Losses        int
	PastOpponents []PastOpponentDetail
}

func (t *TeamStanding) String() string { return t.Name }

// Diff is the win-loss differential used to form record groups.
func (t *TeamStanding) Diff() int { return t.Wins - t.Losses }

// HasPlayed reports whether the team already met the named opponent in this stage.
func (t *TeamStanding) HasPlayed(name string) bool {
	for _, o := range t.PastOpponents {
		if o.TeamName == name {
			return true
		}
	}
	return false
}

func (t *TeamStanding) record(opponent string, bestOf BestOf, won bool) {
	t.PastOpponents = append(t.PastOpponents, PastOpponentDetail{TeamName: opponent, BestOf: bestOf, Won: won})
	if won {
		t.Wins++
	} else {
		t.Losses++
	}
}

// RankedTeam is a standing with the difficulty score computed for the current round.
type RankedTeam struct {
	*TeamStanding
	Difficulty int
}

// Matchup pairs the higher ranked TeamA with the lower ranked TeamB.
type Matchup struct {
	TeamA *RankedTeam
	TeamB *RankedTeam
}

func (m Matchup) String() string {
	return fmt.Sprintf("%s vs %s", m.TeamA.Name, m.TeamB.Name)
}

// Settings are the stage thresholds.
type Settings struct {
	QualWins   int `json:"qual_wins" yaml:"qual_wins"`
	ElimLosses int `json:"elim_losses" yaml:"elim_losses"`
}

func (s Settings) Validate() error {
	if s.QualWins < 1 {
		return fmt.Errorf("qual wins must be positive, got %d", s.QualWins)
	}
	if s.ElimLosses < 1 {
		return fmt.Errorf("elim losses must be positive, got %d", s.ElimLosses)
	}
	return nil
}

// decisive reports whether a match between a and b is played as a Bo3,
// i.e. it can decide qualification or elimination for either side.
func (s Settings) decisive(a, b *TeamStanding) bool {
	for _, t := range []*TeamStanding{a, b} {
		if t.Wins == s.QualWins-1 || t.Losses == s.ElimLosses-1 {
			return true
		}
	}
	return false
}

// ValidateSeedOrder checks that the seed order can start a stage.
func ValidateSeedOrder(seedOrder []string) error {
	if len(seedOrder) == 0 {
		return fmt.Errorf("seed order is empty")
	}
	if len(seedOrder)%2 != 0 {
		return fmt.Errorf("seed order needs an even number of teams, got %d", len(seedOrder))
	}
	seen := make(map[string]bool, len(seedOrder))
	for _, name := range seedOrder {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("seed order contains an empty team name")
		}
		if seen[name] {
			return fmt.Errorf("team %q is seeded twice", name)
		}
		seen[name] = true
	}
	return nil
}

// NewStandings creates fresh standings from the seed order, seeds are 1-based.
func NewStandings(seedOrder []string) []*TeamStanding {
	teams := make([]*TeamStanding, len(seedOrder))
	for i, name := range seedOrder {
		teams[i] = &TeamStanding{Name: name, Seed: i + 1, PastOpponents: make([]PastOpponentDetail, 0, 5)}
	}
	return teams
}
