package ints

import "sort"

// SparseSet is a sorted sparse set of ints, suitable for large and
// sparsely populated value ranges.
type SparseSet struct {
	elems []int
}

// NewSparseSet returns an empty sparse set.
func NewSparseSet(vals ...int) *SparseSet {
	s := &SparseSet{}
	for _, v := range vals {
		s.Add(v)
	}
	return s
}

func (s *SparseSet) find(i int) (int, bool) {
	pos := sort.SearchInts(s.elems, i)
	return pos, pos < len(s.elems) && s.elems[pos] == i
}

func (s *SparseSet) Contains(i int) bool {
	_, ok := s.find(i)
	return ok
}

func (s *SparseSet) Add(i int) bool {
	pos, ok := s.find(i)
	if ok {
		return false
	}
	s.elems = append(s.elems, 0)
	copy(s.elems[pos+1:], s.elems[pos:])
	s.elems[pos] = i
	return true
}

func (s *SparseSet) Remove(i int) bool {
	pos, ok := s.find(i)
	if !ok {
		return false
	}
	s.elems = append(s.elems[:pos], s.elems[pos+1:]...)
	return true
}

func (s *SparseSet) Len() int { return len(s.elems) }

func (s *SparseSet) Min() int {
	if len(s.elems) == 0 {
		panic("ints: Min of empty set")
	}
	return s.elems[0]
}

func (s *SparseSet) Max() int {
	if len(s.elems) == 0 {
		panic("ints: Max of empty set")
	}
	return s.elems[len(s.elems)-1]
}

func (s *SparseSet) Each(fn func(int) bool) {
	for _, v := range s.elems {
		if !fn(v) {
			return
		}
	}
}
