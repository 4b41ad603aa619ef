package swiss

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvariant marks a programming error in pairing. It is never recovered
// per iteration: the worker that hits it fails the whole run.
var ErrInvariant = errors.New("pairing invariant violated")

func invariantf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvariant, fmt.Sprintf(format, args...))
}

// SimulationError reports a record group that has no rematch-free pairing.
// The event that raised it is discarded.
type SimulationError struct {
	Reason string
	// Edges holds every match played by the group, as "winner>loser".
	Edges map[string]struct{}
	// RoundDetails is a tab separated dump of the group: name, difficulty, seed, edges.
	RoundDetails string
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("%s (%d prior matchups)", e.Reason, len(e.Edges))
}

// Signature is the sorted, comma joined edge set. Two failures with the same
// match history share a signature.
func (e *SimulationError) Signature() string {
	edges := make([]string, 0, len(e.Edges))
	for edge := range e.Edges {
		edges = append(edges, edge)
	}
	sort.Strings(edges)
	return strings.Join(edges, ",")
}

func newSimulationError(reason string, group []*RankedTeam) *SimulationError {
	edges := map[string]struct{}{}
	lines := make([]string, len(group))
	for i, t := range group {
		teamEdges := make([]string, len(t.PastOpponents))
		for j, o := range t.PastOpponents {
			edge := o.Edge(t.Name)
			teamEdges[j] = edge
			edges[edge] = struct{}{}
		}
		lines[i] = strings.Join([]string{
			t.Name,
			strconv.Itoa(t.Difficulty),
			strconv.Itoa(t.Seed),
			strings.Join(teamEdges, ","),
		}, "\t")
	}
	return &SimulationError{
		Reason:       reason,
		Edges:        edges,
		RoundDetails: strings.Join(lines, "\n"),
	}
}
