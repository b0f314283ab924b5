package fol2sat

import (
	"fmt"

	"taipan/ast"
	"taipan/circuit"
	"taipan/instance"
)

// Allocator supplies the translator with matrices for relations.
type Allocator interface {
	Universe() *instance.Universe
	Factory() *circuit.Factory
	Allocate(r *ast.Relation) *circuit.Matrix
	// IntBound returns the tuple set naming integer i, or nil.
	IntBound(i int) *instance.TupleSet
	// Ints returns the bound integer values in ascending order.
	Ints() []int
}

// NumPrimaryVariables returns the number of boolean variables needed to
// represent the given bounds: one per tuple between a relation's lower
// and upper bound.
func NumPrimaryVariables(b *instance.Bounds) int {
	total := 0
	for _, r := range b.Relations() {
		total += b.Upper(r).Len() - b.Lower(r).Len()
	}
	return total
}

// VarAllocator allocates one fresh boolean variable per tuple in the
// upper-minus-lower bound of each relation on first visit, and returns
// the same matrix on every subsequent visit.
type VarAllocator struct {
	bounds   *instance.Bounds
	factory  *circuit.Factory
	next     int
	matrices map[*ast.Relation]*circuit.Matrix
	vars     map[*ast.Relation][]VarAssignment
}

// VarAssignment ties a primary variable label to the tuple it stands
// for.
type VarAssignment struct {
	Label int
	Tuple int
}

// NewVarAllocator returns an allocator over the given bounds and
// factory. The factory must have been created with at least
// NumPrimaryVariables(bounds) variables.
func NewVarAllocator(b *instance.Bounds, f *circuit.Factory) *VarAllocator {
	return &VarAllocator{
		bounds:   b,
		factory:  f,
		next:     1,
		matrices: make(map[*ast.Relation]*circuit.Matrix),
		vars:     make(map[*ast.Relation][]VarAssignment),
	}
}

func (a *VarAllocator) Universe() *instance.Universe { return a.bounds.Universe() }

func (a *VarAllocator) Factory() *circuit.Factory { return a.factory }

func (a *VarAllocator) IntBound(i int) *instance.TupleSet { return a.bounds.IntBound(i) }

func (a *VarAllocator) Ints() []int { return a.bounds.Ints() }

// Allocate returns the matrix of r: TRUE at the lower bound, a fresh
// variable at each tuple between the bounds, FALSE elsewhere.
func (a *VarAllocator) Allocate(r *ast.Relation) *circuit.Matrix {
	if m, ok := a.matrices[r]; ok {
		return m
	}
	lower, upper := a.bounds.Lower(r), a.bounds.Upper(r)
	if upper == nil {
		panic(fmt.Sprintf("fol2sat: relation %v has no bounds", r))
	}
	dims := circuit.Square(r.Arity(), a.bounds.Universe().Size())
	m := a.factory.Matrix(dims)
	var assigned []VarAssignment
	upper.Indices().Each(func(i int) bool {
		if lower.ContainsIndex(i) {
			m.Set(i, circuit.True)
		} else {
			v := a.factory.Variable(a.next)
			assigned = append(assigned, VarAssignment{Label: a.next, Tuple: i})
			a.next++
			m.Set(i, v)
		}
		return true
	})
	a.matrices[r] = m
	a.vars[r] = assigned
	return m
}

// Variables returns the assignments of r's primary variables, in tuple
// order; nil if r was never allocated.
func (a *VarAllocator) Variables(r *ast.Relation) []VarAssignment { return a.vars[r] }

// Allocated reports whether r was visited during translation.
func (a *VarAllocator) Allocated(r *ast.Relation) bool {
	_, ok := a.matrices[r]
	return ok
}

// instanceAllocator backs the evaluator: relation matrices are constant
// matrices read off a concrete instance.
type instanceAllocator struct {
	inst    *instance.Instance
	factory *circuit.Factory
}

// NewInstanceAllocator returns an allocator that evaluates relations to
// the constant matrices of the given instance.
func NewInstanceAllocator(inst *instance.Instance, f *circuit.Factory) Allocator {
	return &instanceAllocator{inst: inst, factory: f}
}

func (a *instanceAllocator) Universe() *instance.Universe { return a.inst.Universe() }

func (a *instanceAllocator) Factory() *circuit.Factory { return a.factory }

func (a *instanceAllocator) IntBound(i int) *instance.TupleSet { return a.inst.IntBound(i) }

func (a *instanceAllocator) Ints() []int { return a.inst.Ints() }

func (a *instanceAllocator) Allocate(r *ast.Relation) *circuit.Matrix {
	ts := a.inst.Tuples(r)
	if ts == nil {
		panic(fmt.Sprintf("fol2sat: relation %v is not assigned by the instance", r))
	}
	dims := circuit.Square(r.Arity(), a.inst.Universe().Size())
	return a.factory.ConstantMatrix(dims, ts.Indices())
}
