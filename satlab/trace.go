package satlab

import "sort"

// Clause is a clause in a resolution trace. Learned clauses record the
// antecedent clauses they were resolved from; original clauses have no
// antecedents.
type Clause struct {
	index       int
	learned     bool
	lits        []int
	antecedents []int
}

// Index returns the clause's index in the trace.
func (c *Clause) Index() int { return c.index }

// Learned reports whether the clause was derived by resolution.
func (c *Clause) Learned() bool { return c.learned }

// Literals returns the clause's literals. The slice must not be
// modified.
func (c *Clause) Literals() []int { return c.lits }

// Antecedents returns the indices of the clauses this clause was
// resolved from.
func (c *Clause) Antecedents() []int { return c.antecedents }

// Trace is a resolution refutation: a DAG of clauses ending in the
// empty conflict clause.
type Trace struct {
	clauses  map[int]*Clause
	conflict int
}

// NewTrace assembles a trace from the given clauses and the index of
// the conflict clause.
func NewTrace(clauses []*Clause, conflict int) *Trace {
	m := make(map[int]*Clause, len(clauses))
	for _, c := range clauses {
		m[c.index] = c
	}
	return &Trace{clauses: m, conflict: conflict}
}

// NewClause builds a trace clause.
func NewClause(index int, learned bool, lits, antecedents []int) *Clause {
	return &Clause{index: index, learned: learned, lits: lits, antecedents: antecedents}
}

// Conflict returns the conflict clause.
func (t *Trace) Conflict() *Clause { return t.clauses[t.conflict] }

// Clause returns the clause with the given index, or nil.
func (t *Trace) Clause(index int) *Clause { return t.clauses[index] }

// Len returns the number of clauses in the trace.
func (t *Trace) Len() int { return len(t.clauses) }

// Indexed returns all clauses in ascending index order.
func (t *Trace) Indexed() []*Clause {
	out := make([]*Clause, 0, len(t.clauses))
	for _, c := range t.clauses {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}

// Reachable returns the clauses reachable from the conflict clause
// through antecedents, in depth-first discovery order.
func (t *Trace) Reachable() []*Clause {
	seen := make(map[int]bool)
	var out []*Clause
	var walk func(idx int)
	walk = func(idx int) {
		if seen[idx] {
			return
		}
		seen[idx] = true
		c := t.clauses[idx]
		if c == nil {
			return
		}
		out = append(out, c)
		for _, a := range c.antecedents {
			walk(a)
		}
	}
	walk(t.conflict)
	return out
}

// UnitClause returns the original unit clause asserting the given
// literal, or nil.
func (t *Trace) UnitClause(literal int) *Clause {
	for _, c := range t.Indexed() {
		if !c.learned && len(c.lits) == 1 && c.lits[0] == literal {
			return c
		}
	}
	return nil
}

// Core returns the original (non-learned) clauses reachable from the
// conflict clause, in ascending index order.
func (t *Trace) Core() []*Clause {
	var out []*Clause
	for _, c := range t.Reachable() {
		if !c.learned {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].index < out[j].index })
	return out
}
