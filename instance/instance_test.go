package instance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taipan/ast"
)

func TestUniverse(t *testing.T) {
	u := NewUniverse("a", "b", "c")
	assert.Equal(t, 3, u.Size())
	assert.Equal(t, "b", u.Atom(1))
	assert.Equal(t, 2, u.Index("c"))
	assert.True(t, u.Contains("a"))
	assert.False(t, u.Contains("z"))

	assert.Panics(t, func() { NewUniverse("a", "a") }, "duplicate atom")
}

func TestTupleIndexing(t *testing.T) {
	u := NewUniverse("a", "b", "c")
	f := u.Factory()

	tu := f.Tuple("b", "c")
	assert.Equal(t, 2, tu.Arity())
	assert.Equal(t, 1*3+2, tu.Index())
	assert.Equal(t, "b", tu.Atom(0))
	assert.Equal(t, "c", tu.Atom(1))

	back := f.TupleAt(2, tu.Index())
	assert.Equal(t, []any{"b", "c"}, back.Atoms())
}

func TestTupleSet(t *testing.T) {
	u := NewUniverse("a", "b", "c")
	f := u.Factory()

	ts := f.NoneOf(1)
	ts.Add(f.Tuple("a"))
	ts.Add(f.Tuple("c"))
	assert.Equal(t, 2, ts.Len())
	assert.True(t, ts.Contains(f.Tuple("a")))
	assert.False(t, ts.Contains(f.Tuple("b")))

	all := f.AllOf(2)
	assert.Equal(t, 9, all.Len())
	assert.True(t, all.ContainsAll(ts.Product(ts)))

	prod := ts.Product(ts)
	assert.Equal(t, 4, prod.Len())
	assert.True(t, prod.Contains(f.Tuple("a", "c")))
	assert.False(t, prod.Contains(f.Tuple("a", "b")))

	assert.Panics(t, func() { ts.Add(f.Tuple("a", "b")) }, "arity mismatch")
}

func TestBounds(t *testing.T) {
	u := NewUniverse("a", "b")
	f := u.Factory()
	r := ast.NewRelation("r", 1)

	b := NewBounds(u)
	lower := f.SetOf(f.Tuple("a"))
	upper := f.AllOf(1)
	b.Bound(r, lower, upper)

	assert.True(t, b.Contains(r))
	assert.Equal(t, 1, b.Lower(r).Len())
	assert.Equal(t, 2, b.Upper(r).Len())
	assert.Equal(t, []*ast.Relation{r}, b.Relations())

	assert.Panics(t, func() {
		b.Bound(r, f.AllOf(1), f.SetOf(f.Tuple("a")))
	}, "lower must be contained in upper")

	s := ast.NewRelation("s", 2)
	assert.Panics(t, func() { b.Bound(s, f.AllOf(1), f.AllOf(1)) }, "arity mismatch")

	clone := b.Clone()
	b.Freeze()
	assert.Panics(t, func() { b.BoundExactly(r, lower) }, "frozen")
	assert.NotPanics(t, func() { clone.BoundExactly(r, lower) }, "clone stays mutable")
}

func TestIntBounds(t *testing.T) {
	u := NewUniverse("zero", "one")
	f := u.Factory()
	b := NewBounds(u)
	b.BoundInt(0, f.SetOf(f.Tuple("zero")))
	b.BoundInt(1, f.SetOf(f.Tuple("one")))
	assert.Equal(t, []int{0, 1}, b.Ints())
	assert.Equal(t, 1, b.IntBound(0).Len())

	assert.Panics(t, func() { b.BoundInt(2, f.AllOf(1)) }, "int bound must be singleton")
}

func TestInstance(t *testing.T) {
	u := NewUniverse("a", "b")
	f := u.Factory()
	r := ast.NewRelation("r", 1)

	in := NewInstance(u)
	in.Assign(r, f.SetOf(f.Tuple("b")))
	assert.Equal(t, 1, in.Tuples(r).Len())
	assert.Equal(t, []*ast.Relation{r}, in.Relations())
}
