package instance

import (
	"fmt"
	"strings"

	"taipan/ints"
)

// Tuple is a sequence of atoms of fixed arity over a universe,
// identified by its linear index in [0, size^arity).
type Tuple struct {
	universe *Universe
	arity    int
	index    int
}

// Arity returns the tuple's arity.
func (t Tuple) Arity() int { return t.arity }

// Index returns the tuple's linear index.
func (t Tuple) Index() int { return t.index }

// Atom returns the atom in position i.
func (t Tuple) Atom(i int) any {
	if i < 0 || i >= t.arity {
		panic("instance: tuple position out of range")
	}
	n := t.universe.Size()
	idx := t.index
	for j := t.arity - 1; j > i; j-- {
		idx /= n
	}
	return t.universe.Atom(idx % n)
}

// Atoms returns the tuple's atoms in order.
func (t Tuple) Atoms() []any {
	out := make([]any, t.arity)
	for i := range out {
		out[i] = t.Atom(i)
	}
	return out
}

func (t Tuple) String() string {
	parts := make([]string, t.arity)
	for i := range parts {
		parts[i] = fmt.Sprintf("%v", t.Atom(i))
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

// TupleFactory creates tuples and tuple sets over a single universe.
type TupleFactory struct {
	universe *Universe
}

// Universe returns the factory's universe.
func (f *TupleFactory) Universe() *Universe { return f.universe }

// Tuple returns the tuple of the given atoms.
func (f *TupleFactory) Tuple(atoms ...any) Tuple {
	if len(atoms) == 0 {
		panic("instance: tuple arity must be at least 1")
	}
	index := 0
	n := f.universe.Size()
	for _, a := range atoms {
		index = index*n + f.universe.Index(a)
	}
	return Tuple{universe: f.universe, arity: len(atoms), index: index}
}

// TupleAt returns the tuple of the given arity with the given linear
// index.
func (f *TupleFactory) TupleAt(arity, index int) Tuple {
	if arity < 1 {
		panic("instance: tuple arity must be at least 1")
	}
	if index < 0 || index >= capacity(f.universe.Size(), arity) {
		panic("instance: tuple index out of range")
	}
	return Tuple{universe: f.universe, arity: arity, index: index}
}

// NoneOf returns an empty tuple set of the given arity.
func (f *TupleFactory) NoneOf(arity int) *TupleSet {
	if arity < 1 {
		panic("instance: tuple set arity must be at least 1")
	}
	return &TupleSet{
		universe: f.universe,
		arity:    arity,
		indices:  ints.BestSet(capacity(f.universe.Size(), arity)),
	}
}

// AllOf returns the tuple set holding every tuple of the given arity.
func (f *TupleFactory) AllOf(arity int) *TupleSet {
	ts := f.NoneOf(arity)
	for i := 0; i < capacity(f.universe.Size(), arity); i++ {
		ts.indices.Add(i)
	}
	return ts
}

// SetOf returns the tuple set holding the given tuples, which must all
// have the same arity.
func (f *TupleFactory) SetOf(tuples ...Tuple) *TupleSet {
	if len(tuples) == 0 {
		panic("instance: SetOf requires at least one tuple")
	}
	ts := f.NoneOf(tuples[0].arity)
	for _, t := range tuples {
		ts.Add(t)
	}
	return ts
}

// Range returns the unary tuple set holding the atoms with indices in
// [lo, hi].
func (f *TupleFactory) Range(lo, hi any) *TupleSet {
	ts := f.NoneOf(1)
	for i := f.universe.Index(lo); i <= f.universe.Index(hi); i++ {
		ts.indices.Add(i)
	}
	return ts
}

func capacity(size, arity int) int {
	c := 1
	for i := 0; i < arity; i++ {
		c *= size
	}
	return c
}

// TupleSet is a set of tuples of one arity over one universe, backed by
// a set of linear indices.
type TupleSet struct {
	universe *Universe
	arity    int
	indices  ints.Mutable
}

// Universe returns the set's universe.
func (ts *TupleSet) Universe() *Universe { return ts.universe }

// Arity returns the set's arity.
func (ts *TupleSet) Arity() int { return ts.arity }

// Len returns the number of tuples.
func (ts *TupleSet) Len() int { return ts.indices.Len() }

// Indices returns the underlying index set.
func (ts *TupleSet) Indices() ints.IntSet { return ts.indices }

// Contains reports whether t is in the set.
func (ts *TupleSet) Contains(t Tuple) bool {
	return t.universe == ts.universe && t.arity == ts.arity && ts.indices.Contains(t.index)
}

// ContainsIndex reports whether the tuple with the given linear index
// is in the set.
func (ts *TupleSet) ContainsIndex(i int) bool { return ts.indices.Contains(i) }

// Add inserts t, which must have the set's universe and arity.
func (ts *TupleSet) Add(t Tuple) {
	if t.universe != ts.universe {
		panic("instance: tuple from a different universe")
	}
	if t.arity != ts.arity {
		panic(fmt.Sprintf("instance: cannot add %d-ary tuple to %d-ary set", t.arity, ts.arity))
	}
	ts.indices.Add(t.index)
}

// AddIndex inserts the tuple with the given linear index.
func (ts *TupleSet) AddIndex(i int) {
	if i < 0 || i >= capacity(ts.universe.Size(), ts.arity) {
		panic("instance: tuple index out of range")
	}
	ts.indices.Add(i)
}

// Each calls fn on every tuple in ascending index order until fn
// returns false.
func (ts *TupleSet) Each(fn func(Tuple) bool) {
	ts.indices.Each(func(i int) bool {
		return fn(Tuple{universe: ts.universe, arity: ts.arity, index: i})
	})
}

// Tuples returns the tuples in ascending index order.
func (ts *TupleSet) Tuples() []Tuple {
	out := make([]Tuple, 0, ts.Len())
	ts.Each(func(t Tuple) bool {
		out = append(out, t)
		return true
	})
	return out
}

// Clone returns an independent copy of the set.
func (ts *TupleSet) Clone() *TupleSet {
	out := ts.universe.factory.NoneOf(ts.arity)
	ts.indices.Each(func(i int) bool {
		out.indices.Add(i)
		return true
	})
	return out
}

// ContainsAll reports whether every tuple of other is in ts.
func (ts *TupleSet) ContainsAll(other *TupleSet) bool {
	if other.universe != ts.universe || other.arity != ts.arity {
		return false
	}
	all := true
	other.indices.Each(func(i int) bool {
		if !ts.indices.Contains(i) {
			all = false
		}
		return all
	})
	return all
}

// Equal reports whether ts and other hold the same tuples.
func (ts *TupleSet) Equal(other *TupleSet) bool {
	return ts.arity == other.arity && ts.universe == other.universe &&
		ints.Equal(ts.indices, other.indices)
}

// Product returns the cross product of ts and other.
func (ts *TupleSet) Product(other *TupleSet) *TupleSet {
	if ts.universe != other.universe {
		panic("instance: product of sets over different universes")
	}
	out := ts.universe.factory.NoneOf(ts.arity + other.arity)
	b := capacity(ts.universe.Size(), other.arity)
	ts.indices.Each(func(i int) bool {
		other.indices.Each(func(j int) bool {
			out.indices.Add(i*b + j)
			return true
		})
		return true
	})
	return out
}

// Union adds every tuple of other to ts.
func (ts *TupleSet) Union(other *TupleSet) {
	if other.universe != ts.universe || other.arity != ts.arity {
		panic("instance: union of incompatible tuple sets")
	}
	other.indices.Each(func(i int) bool {
		ts.indices.Add(i)
		return true
	})
}

func (ts *TupleSet) String() string {
	parts := make([]string, 0, ts.Len())
	ts.Each(func(t Tuple) bool {
		parts = append(parts, t.String())
		return true
	})
	return "{" + strings.Join(parts, ", ") + "}"
}
