// Package ints provides ordered sets of non-negative integers with a
// best-fit choice of representation: a constant range, a dense bitset,
// or a sorted sparse set.
package ints

// IntSet is an ordered set of non-negative integers. Iteration is
// always in ascending order.
type IntSet interface {
	Contains(i int) bool
	Len() int
	// Min and Max panic on an empty set.
	Min() int
	Max() int
	// Each calls fn on every element in ascending order until fn
	// returns false.
	Each(fn func(i int) bool)
}

// Mutable is an IntSet that supports insertion and removal.
type Mutable interface {
	IntSet
	// Add returns true if i was not already present.
	Add(i int) bool
	// Remove returns true if i was present.
	Remove(i int) bool
}

// bitSetThreshold is the largest capacity for which BestSet picks the
// dense bitset representation.
const bitSetThreshold = 1 << 16

// BestSet returns an empty mutable set able to hold values in
// [0, capacity): a dense bitset for small capacities, a sorted sparse
// set otherwise.
func BestSet(capacity int) Mutable {
	if capacity < 0 {
		panic("ints: negative capacity")
	}
	if capacity <= bitSetThreshold {
		return NewBitSet(capacity)
	}
	return NewSparseSet()
}

// Slice returns the elements of s in ascending order.
func Slice(s IntSet) []int {
	out := make([]int, 0, s.Len())
	s.Each(func(i int) bool {
		out = append(out, i)
		return true
	})
	return out
}

// Equal reports whether a and b hold the same elements.
func Equal(a, b IntSet) bool {
	if a.Len() != b.Len() {
		return false
	}
	eq := true
	a.Each(func(i int) bool {
		if !b.Contains(i) {
			eq = false
		}
		return eq
	})
	return eq
}

// Empty is the empty set.
var Empty IntSet = RangeSet{0, -1}

// RangeSet is the immutable set of all integers in [Lo, Hi]. It is
// empty when Lo > Hi.
type RangeSet struct {
	Lo, Hi int
}

// Range returns the set {lo, ..., hi}.
func Range(lo, hi int) RangeSet { return RangeSet{lo, hi} }

// Singleton returns the set {i}.
func Singleton(i int) RangeSet { return RangeSet{i, i} }

func (r RangeSet) Contains(i int) bool { return i >= r.Lo && i <= r.Hi }

func (r RangeSet) Len() int {
	if r.Lo > r.Hi {
		return 0
	}
	return r.Hi - r.Lo + 1
}

func (r RangeSet) Min() int {
	if r.Lo > r.Hi {
		panic("ints: Min of empty set")
	}
	return r.Lo
}

func (r RangeSet) Max() int {
	if r.Lo > r.Hi {
		panic("ints: Max of empty set")
	}
	return r.Hi
}

func (r RangeSet) Each(fn func(int) bool) {
	for i := r.Lo; i <= r.Hi; i++ {
		if !fn(i) {
			return
		}
	}
}
