package ucore

import (
	mapset "github.com/deckarep/golang-set/v2"

	"taipan/ast"
	"taipan/fol2sat"
	"taipan/satlab"
)

// MinTopStrategy shrinks the unsatisfiable core at the granularity of
// top-level conjuncts. Each reduction drops the unit clause asserting
// one conjunct, chosen untried-largest-first by the number of core
// variables its subtree contributed; the prover keeps the reduction
// only if the conflict is re-derived. When every remaining conjunct has
// been tried the core is locally minimal: no single conjunct can be
// dropped.
type MinTopStrategy struct {
	conjuncts []topConjunct
	tried     mapset.Set[int]
}

type topConjunct struct {
	formula ast.Formula
	literal int
	usage   mapset.Set[int]
}

// NewMinTopStrategy builds the strategy from a tracked translation.
func NewMinTopStrategy(t *fol2sat.Translation) *MinTopStrategy {
	if t.Log == nil {
		panic("ucore: MinTopStrategy requires a translation log")
	}
	s := &MinTopStrategy{tried: mapset.NewSet[int]()}
	for _, conjunct := range fol2sat.TopConjuncts(t.Log.Formula()) {
		lit, ok := t.RootLiteral(conjunct)
		if !ok {
			continue
		}
		s.conjuncts = append(s.conjuncts, topConjunct{
			formula: conjunct,
			literal: lit,
			usage:   subtreeUsage(t, conjunct),
		})
	}
	return s
}

// subtreeUsage unions the variable usage of every node in the
// conjunct's subtree.
func subtreeUsage(t *fol2sat.Translation, conjunct ast.Formula) mapset.Set[int] {
	usage := mapset.NewSet[int]()
	visited := make(map[ast.Node]bool)
	var walk func(n ast.Node)
	walk = func(n ast.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		if u := t.VarUsage[n]; u != nil {
			u.Each(func(v int) bool {
				usage.Add(v)
				return true
			})
		}
		for _, c := range ast.Children(n) {
			walk(c)
		}
	}
	walk(conjunct)
	return usage
}

// NextReduction picks the untried conjunct with the most core
// variables, ties broken by position, and returns its unit clause.
func (s *MinTopStrategy) NextReduction(t *satlab.Trace) []int {
	coreVars := CoreVars(t)
	best, bestClause, bestRelevance := -1, -1, -1
	for i, c := range s.conjuncts {
		if s.tried.Contains(c.literal) {
			continue
		}
		clause := findUnit(t, c.literal)
		if clause < 0 {
			continue
		}
		relevance := coreVars.Intersect(c.usage).Cardinality()
		if relevance > bestRelevance {
			best, bestClause, bestRelevance = i, clause, relevance
		}
	}
	if best < 0 {
		return nil
	}
	s.tried.Add(s.conjuncts[best].literal)
	return []int{bestClause}
}
