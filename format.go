package swiss

import (
	"encoding/json"
	"math"
	"sort"
)

// Rate is a probability estimate. An undefined rate is NaN and encodes as null.
type Rate float64

func (r Rate) Undefined() bool { return math.IsNaN(float64(r)) }

func (r Rate) MarshalJSON() ([]byte, error) {
	if r.Undefined() || math.IsInf(float64(r), 0) {
		return []byte("null"), nil
	}
	return json.Marshal(float64(r))
}

func (r *Rate) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = Rate(math.NaN())
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*r = Rate(f)
	return nil
}

func ratio(n, d int) Rate {
	if d == 0 {
		return Rate(math.NaN())
	}
	return Rate(float64(n) / float64(d))
}

type OpponentRate struct {
	TeamName  string `json:"team_name"`
	TotalRate Rate   `json:"total_rate"`
	Bo1Rate   Rate   `json:"bo1_rate"`
	Bo3Rate   Rate   `json:"bo3_rate"`
	WinRate   Rate   `json:"win_rate"`
}

type TeamResults struct {
	TeamName  string         `json:"team_name"`
	Rate      Rate           `json:"rate"`
	WinRate   Rate           `json:"win_rate"`
	Opponents []OpponentRate `json:"opponents,omitempty"`
}

// SimulationResults is the formatted outcome of a run.
type SimulationResults struct {
	Iterations        int           `json:"iterations"`
	QualWins          int           `json:"qual_wins"`
	ElimLosses        int           `json:"elim_losses"`
	FailedSimulations int           `json:"failed_simulations"`
	Qualified         []TeamResults `json:"qualified"`
	Eliminated        []TeamResults `json:"eliminated"`
	AllWins           []TeamResults `json:"all_wins"`
	AllLosses         []TeamResults `json:"all_losses"`
	// ErrorDetails holds the unique failure signatures, sorted.
	ErrorDetails []string `json:"error_details"`
	// RoundDetails holds the unique round dumps of failed groups, sorted.
	RoundDetails []string `json:"round_details"`
}

// Find returns the results for name in list, if present.
func Find(list []TeamResults, name string) (TeamResults, bool) {
	for _, tr := range list {
		if tr.TeamName == name {
			return tr, true
		}
	}
	return TeamResults{}, false
}

// FormatResults turns raw tallies into rates over the successful iterations.
func FormatResults(counts *ResultCounts, settings Settings, iterations, failed int, errorDetails, roundDetails map[string]struct{}) *SimulationResults {
	successful := iterations - failed
	res := &SimulationResults{
		Iterations:        iterations,
		QualWins:          settings.QualWins,
		ElimLosses:        settings.ElimLosses,
		FailedSimulations: failed,
		Qualified:         []TeamResults{},
		Eliminated:        []TeamResults{},
		AllWins:           []TeamResults{},
		AllLosses:         []TeamResults{},
		ErrorDetails:      sortedKeys(errorDetails),
		RoundDetails:      sortedKeys(roundDetails),
	}
	if counts == nil {
		return res
	}

	for _, name := range counts.Teams() {
		tc, _ := counts.Lookup(name)
		opponents := make([]OpponentRate, 0, len(tc.Opponents()))
		for _, opp := range tc.Opponents() {
			oc, _ := tc.LookupOpponent(opp)
			opponents = append(opponents, OpponentRate{
				TeamName:  opp,
				TotalRate: ratio(oc.Total, successful),
				Bo1Rate:   ratio(oc.Bo1, successful),
				Bo3Rate:   ratio(oc.Bo3, successful),
				WinRate:   ratio(oc.Won, oc.Total),
			})
		}
		sort.SliceStable(opponents, func(i, j int) bool {
			return opponents[i].TotalRate > opponents[j].TotalRate
		})
		winRate := ratio(tc.Wins, tc.Wins+tc.Losses)

		entry := func(count int) TeamResults {
			return TeamResults{TeamName: name, Rate: ratio(count, successful), WinRate: winRate, Opponents: opponents}
		}
		if tc.Qualified > 0 {
			res.Qualified = append(res.Qualified, entry(tc.Qualified))
		}
		if tc.Eliminated > 0 {
			res.Eliminated = append(res.Eliminated, entry(tc.Eliminated))
		}
		if tc.AllWins > 0 {
			res.AllWins = append(res.AllWins, entry(tc.AllWins))
		}
		if tc.AllLosses > 0 {
			res.AllLosses = append(res.AllLosses, entry(tc.AllLosses))
		}
	}

	for _, list := range [][]TeamResults{res.Qualified, res.Eliminated, res.AllWins, res.AllLosses} {
		sort.SliceStable(list, func(i, j int) bool {
			return list[i].Rate > list[j].Rate
		})
	}
	return res
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
