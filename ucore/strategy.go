// Package ucore provides reduction strategies that shrink an
// unsatisfiable core: the top-conjunct minimizer MinTopStrategy and a
// clause-level strategy ordered by distance from the conflict.
package ucore

import (
	mapset "github.com/deckarep/golang-set/v2"

	"taipan/satlab"
)

// CoreVars returns the variables occurring in the original clauses
// reachable from the trace's conflict clause.
func CoreVars(t *satlab.Trace) mapset.Set[int] {
	vars := mapset.NewSet[int]()
	for _, c := range t.Core() {
		for _, l := range c.Literals() {
			if l < 0 {
				l = -l
			}
			vars.Add(l)
		}
	}
	return vars
}

// findUnit returns the index of the original unit clause asserting the
// given literal, or -1 if no such clause is in the trace.
func findUnit(t *satlab.Trace, literal int) int {
	if c := t.UnitClause(literal); c != nil {
		return c.Index()
	}
	return -1
}
