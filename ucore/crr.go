package ucore

import (
	"sort"

	mapset "github.com/deckarep/golang-set/v2"

	"taipan/satlab"
)

// DistExtremumCRRStrategy is a clause-level compress-refute-refine
// strategy: each reduction drops one core clause, picked by its
// distance from the conflict clause. With closest set the clause
// nearest the conflict is tried first, otherwise the furthest.
type DistExtremumCRRStrategy struct {
	closest bool
	tried   mapset.Set[int]
}

// NewDistExtremumCRRStrategy returns a strategy trying either the
// closest or the furthest core clause first.
func NewDistExtremumCRRStrategy(closest bool) *DistExtremumCRRStrategy {
	return &DistExtremumCRRStrategy{closest: closest, tried: mapset.NewSet[int]()}
}

// NextReduction orders the core clauses by their shortest path to the
// conflict and returns the first untried one.
func (s *DistExtremumCRRStrategy) NextReduction(t *satlab.Trace) []int {
	dist := distances(t)
	core := t.Core()
	sort.SliceStable(core, func(i, j int) bool {
		di, dj := dist[core[i].Index()], dist[core[j].Index()]
		if s.closest {
			return di < dj
		}
		return di > dj
	})
	for _, c := range core {
		if s.tried.Contains(c.Index()) {
			continue
		}
		s.tried.Add(c.Index())
		return []int{c.Index()}
	}
	return nil
}

// distances computes, for every clause reachable from the conflict, the
// length of its shortest antecedent path to the conflict clause.
func distances(t *satlab.Trace) map[int]int {
	dist := map[int]int{t.Conflict().Index(): 0}
	// Reachable returns clauses in depth-first order from the
	// conflict; relax edges until a fixpoint as the order is not
	// topological.
	for changed := true; changed; {
		changed = false
		for _, c := range t.Reachable() {
			d, ok := dist[c.Index()]
			if !ok {
				continue
			}
			for _, a := range c.Antecedents() {
				if cur, ok := dist[a]; !ok || cur > d+1 {
					dist[a] = d + 1
					changed = true
				}
			}
		}
	}
	return dist
}
