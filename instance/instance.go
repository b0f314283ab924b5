package instance

import (
	"fmt"
	"sort"
	"strings"

	"taipan/ast"
)

// Instance maps every bounded relation to a concrete tuple set between
// its lower and upper bounds.
type Instance struct {
	universe *Universe
	tuples   map[*ast.Relation]*TupleSet
	order    []*ast.Relation
	intAtoms map[int]*TupleSet
}

// NewInstance returns an empty instance over the given universe.
func NewInstance(u *Universe) *Instance {
	return &Instance{
		universe: u,
		tuples:   make(map[*ast.Relation]*TupleSet),
		intAtoms: make(map[int]*TupleSet),
	}
}

// Universe returns the instance's universe.
func (in *Instance) Universe() *Universe { return in.universe }

// Assign maps r to ts.
func (in *Instance) Assign(r *ast.Relation, ts *TupleSet) {
	if ts.Universe() != in.universe {
		panic("instance: assignment over a different universe")
	}
	if ts.Arity() != r.Arity() {
		panic(fmt.Sprintf("instance: %d-ary tuples for %d-ary relation %v", ts.Arity(), r.Arity(), r))
	}
	if _, seen := in.tuples[r]; !seen {
		in.order = append(in.order, r)
	}
	in.tuples[r] = ts
}

// AssignInt names the atom standing for integer i.
func (in *Instance) AssignInt(i int, ts *TupleSet) {
	in.intAtoms[i] = ts
}

// Tuples returns the tuple set of r, or nil if r is unassigned.
func (in *Instance) Tuples(r *ast.Relation) *TupleSet { return in.tuples[r] }

// Relations returns the assigned relations in assignment order.
func (in *Instance) Relations() []*ast.Relation {
	return append([]*ast.Relation(nil), in.order...)
}

// IntBound returns the tuple set naming integer i, or nil.
func (in *Instance) IntBound(i int) *TupleSet { return in.intAtoms[i] }

// Ints returns the bound integer values in ascending order.
func (in *Instance) Ints() []int {
	out := make([]int, 0, len(in.intAtoms))
	for i := range in.intAtoms {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

func (in *Instance) String() string {
	parts := make([]string, 0, len(in.order))
	for _, r := range in.order {
		parts = append(parts, fmt.Sprintf("%v=%v", r, in.tuples[r]))
	}
	return "instance{" + strings.Join(parts, ", ") + "}"
}
