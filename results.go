package swiss

// OpponentCounts tallies the encounters of one team against one opponent.
type OpponentCounts struct {
	Total int `json:"total"`
	Bo1   int `json:"bo1"`
	Bo3   int `json:"bo3"`
	Won   int `json:"won"`
}

func (c *OpponentCounts) add(o *OpponentCounts) {
	c.Total += o.Total
	c.Bo1 += o.Bo1
	c.Bo3 += o.Bo3
	c.Won += o.Won
}

// TeamResultCounts tallies one team's outcomes over many events.
type TeamResultCounts struct {
	Qualified  int
	Eliminated int
	AllWins    int
	AllLosses  int
	Wins       int
	Losses     int

	opponents     map[string]*OpponentCounts
	opponentOrder []string
}

func newTeamResultCounts() *TeamResultCounts {
	return &TeamResultCounts{opponents: map[string]*OpponentCounts{}}
}

// Opponent returns the counts against name, creating them on first use.
func (c *TeamResultCounts) Opponent(name string) *OpponentCounts {
	oc, ok := c.opponents[name]
	if !ok {
		oc = &OpponentCounts{}
		c.opponents[name] = oc
		c.opponentOrder = append(c.opponentOrder, name)
	}
	return oc
}

// Opponents lists opponent names in the order they were first met.
func (c *TeamResultCounts) Opponents() []string {
	return c.opponentOrder
}

// LookupOpponent returns the counts against name without creating them.
func (c *TeamResultCounts) LookupOpponent(name string) (*OpponentCounts, bool) {
	oc, ok := c.opponents[name]
	return oc, ok
}

func (c *TeamResultCounts) add(o *TeamResultCounts) {
	c.Qualified += o.Qualified
	c.Eliminated += o.Eliminated
	c.AllWins += o.AllWins
	c.AllLosses += o.AllLosses
	c.Wins += o.Wins
	c.Losses += o.Losses
	for _, name := range o.opponentOrder {
		c.Opponent(name).add(o.opponents[name])
	}
}

// ResultCounts maps team names to their tallies. It is owned by a single
// worker until merged.
type ResultCounts struct {
	teams map[string]*TeamResultCounts
	order []string
}

func NewResultCounts() *ResultCounts {
	return &ResultCounts{teams: map[string]*TeamResultCounts{}}
}

// Team returns the tallies for name, creating them on first use.
func (rc *ResultCounts) Team(name string) *TeamResultCounts {
	tc, ok := rc.teams[name]
	if !ok {
		tc = newTeamResultCounts()
		rc.teams[name] = tc
		rc.order = append(rc.order, name)
	}
	return tc
}

// Lookup returns the tallies for name without creating them.
func (rc *ResultCounts) Lookup(name string) (*TeamResultCounts, bool) {
	tc, ok := rc.teams[name]
	return tc, ok
}

// Teams lists team names in the order they were first counted.
func (rc *ResultCounts) Teams() []string {
	return rc.order
}

// Categorize folds the final standings of one event into the tallies.
func (rc *ResultCounts) Categorize(results []*TeamStanding, settings Settings) {
	for _, t := range results {
		tc := rc.Team(t.Name)
		tc.Wins += t.Wins
		tc.Losses += t.Losses
		switch {
		case t.Wins >= settings.QualWins:
			tc.Qualified++
			if t.Losses == 0 {
				tc.AllWins++
			}
		case t.Losses >= settings.ElimLosses:
			tc.Eliminated++
			if t.Wins == 0 {
				tc.AllLosses++
			}
		}
		for _, o := range t.PastOpponents {
			oc := tc.Opponent(o.TeamName)
			oc.Total++
			if o.BestOf == Bo1 {
				oc.Bo1++
			} else {
				oc.Bo3++
			}
			if o.Won {
				oc.Won++
			}
		}
	}
}

// Merge adds other into rc. Opponent tallies are unioned and summed on overlap.
func (rc *ResultCounts) Merge(other *ResultCounts) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		rc.Team(name).add(other.teams[name])
	}
}
