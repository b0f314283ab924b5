package instance

import (
	"fmt"
	"sort"

	"taipan/ast"
)

// Bounds maps relations to lower and upper bounds on their extensions,
// and integer values to the singleton tuple sets naming their atoms.
// A Bounds is mutable during construction; the solver freezes it on
// submission.
type Bounds struct {
	universe *Universe
	lowers   map[*ast.Relation]*TupleSet
	uppers   map[*ast.Relation]*TupleSet
	order    []*ast.Relation
	intAtoms map[int]*TupleSet
	frozen   bool
}

// NewBounds returns empty bounds over the given universe.
func NewBounds(u *Universe) *Bounds {
	return &Bounds{
		universe: u,
		lowers:   make(map[*ast.Relation]*TupleSet),
		uppers:   make(map[*ast.Relation]*TupleSet),
		intAtoms: make(map[int]*TupleSet),
	}
}

// Universe returns the bounds' universe.
func (b *Bounds) Universe() *Universe { return b.universe }

func (b *Bounds) checkMutable() {
	if b.frozen {
		panic("instance: bounds are frozen")
	}
}

func (b *Bounds) checkSet(r *ast.Relation, ts *TupleSet) {
	if ts.Universe() != b.universe {
		panic("instance: bound over a different universe")
	}
	if ts.Arity() != r.Arity() {
		panic(fmt.Sprintf("instance: %d-ary bound for %d-ary relation %v", ts.Arity(), r.Arity(), r))
	}
}

// Bound constrains r to contain every tuple of lower and only tuples of
// upper.
func (b *Bounds) Bound(r *ast.Relation, lower, upper *TupleSet) {
	b.checkMutable()
	b.checkSet(r, lower)
	b.checkSet(r, upper)
	if !upper.ContainsAll(lower) {
		panic(fmt.Sprintf("instance: lower bound of %v is not contained in its upper bound", r))
	}
	if _, seen := b.uppers[r]; !seen {
		b.order = append(b.order, r)
	}
	b.lowers[r] = lower.Clone()
	b.uppers[r] = upper.Clone()
}

// BoundUpper constrains r to contain only tuples of upper, with an
// empty lower bound.
func (b *Bounds) BoundUpper(r *ast.Relation, upper *TupleSet) {
	b.Bound(r, b.universe.factory.NoneOf(r.Arity()), upper)
}

// BoundExactly fixes the extension of r to exactly ts.
func (b *Bounds) BoundExactly(r *ast.Relation, ts *TupleSet) {
	b.Bound(r, ts, ts)
}

// BoundInt names the atom standing for the integer value i. The tuple
// set must be a unary singleton.
func (b *Bounds) BoundInt(i int, ts *TupleSet) {
	b.checkMutable()
	if ts.Universe() != b.universe {
		panic("instance: int bound over a different universe")
	}
	if ts.Arity() != 1 || ts.Len() != 1 {
		panic("instance: int bound must be a unary singleton")
	}
	b.intAtoms[i] = ts.Clone()
}

// Relations returns the bounded relations in the order they were first
// bound.
func (b *Bounds) Relations() []*ast.Relation {
	return append([]*ast.Relation(nil), b.order...)
}

// Contains reports whether r is bounded.
func (b *Bounds) Contains(r *ast.Relation) bool {
	_, ok := b.uppers[r]
	return ok
}

// Lower returns the lower bound of r, or nil if r is unbounded.
func (b *Bounds) Lower(r *ast.Relation) *TupleSet { return b.lowers[r] }

// Upper returns the upper bound of r, or nil if r is unbounded.
func (b *Bounds) Upper(r *ast.Relation) *TupleSet { return b.uppers[r] }

// Ints returns the bound integer values in ascending order.
func (b *Bounds) Ints() []int {
	out := make([]int, 0, len(b.intAtoms))
	for i := range b.intAtoms {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// IntBound returns the tuple set naming integer i, or nil.
func (b *Bounds) IntBound(i int) *TupleSet { return b.intAtoms[i] }

// Clone returns an unfrozen deep copy of the bounds.
func (b *Bounds) Clone() *Bounds {
	out := NewBounds(b.universe)
	for _, r := range b.order {
		out.order = append(out.order, r)
		out.lowers[r] = b.lowers[r].Clone()
		out.uppers[r] = b.uppers[r].Clone()
	}
	for i, ts := range b.intAtoms {
		out.intAtoms[i] = ts.Clone()
	}
	return out
}

// Freeze makes the bounds unmodifiable.
func (b *Bounds) Freeze() { b.frozen = true }
