package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taipan/ints"
)

func constantMatrix(f *Factory, dims Dimensions, indices ...int) *Matrix {
	m := f.Matrix(dims)
	for _, i := range indices {
		m.Set(i, True)
	}
	return m
}

func trueCells(m *Matrix) []int {
	var out []int
	for _, c := range m.Cells() {
		if c.Value == True {
			out = append(out, c.Index)
		}
	}
	return out
}

func TestSparseCells(t *testing.T) {
	f := NewFactory(2, 3)
	m := f.Matrix(Square(2, 3))

	assert.Equal(t, False, m.Get(4), "unmapped cells are FALSE")
	m.Set(4, f.Variable(1))
	assert.Equal(t, f.Variable(1), m.Get(4))
	assert.Equal(t, 1, m.Density())

	m.Set(4, False)
	assert.Equal(t, 0, m.Density(), "storing FALSE clears the cell")

	assert.Panics(t, func() { m.Get(9) }, "index out of range")
}

func TestUnionLaws(t *testing.T) {
	f := NewFactory(4, 3)
	dims := Square(1, 4)
	a := f.Matrix(dims)
	a.Set(0, f.Variable(1))
	a.Set(1, f.Variable(2))
	b := f.Matrix(dims)
	b.Set(1, f.Variable(3))
	b.Set(3, f.Variable(4))

	ab, ba := a.Or(b), b.Or(a)
	assert.Equal(t, True, ab.Eq(ba), "union commutes")

	c := constantMatrix(f, dims, 2)
	assert.Equal(t, True, a.Or(b).Or(c).Eq(a.Or(b.Or(c))), "union associates")
}

func TestIntersectionAndDifference(t *testing.T) {
	f := NewFactory(2, 3)
	dims := Square(1, 3)
	a := constantMatrix(f, dims, 0, 1)
	b := constantMatrix(f, dims, 1, 2)

	assert.Equal(t, []int{1}, trueCells(a.And(b)))
	assert.Equal(t, []int{0}, trueCells(a.Difference(b)))
}

func TestDotProduct(t *testing.T) {
	f := NewFactory(2, 3)
	n := 3
	// r = {(0,1), (1,2)} composed with itself is {(0,2)}
	r := constantMatrix(f, Square(2, n), 0*n+1, 1*n+2)
	rr := r.Dot(r)
	assert.Equal(t, []int{0*n + 2}, trueCells(rr))

	// join associates over constants
	left := rr.Dot(r)
	right := r.Dot(r.Dot(r))
	assert.Equal(t, True, left.Eq(right))
}

func TestCrossAndTranspose(t *testing.T) {
	f := NewFactory(2, 3)
	n := 3
	a := constantMatrix(f, Square(1, n), 1)
	b := constantMatrix(f, Square(1, n), 2)

	prod := a.Cross(b)
	assert.Equal(t, []int{1*n + 2}, trueCells(prod))
	assert.Equal(t, 2, prod.Dimensions().Arity())

	back := prod.Transpose()
	assert.Equal(t, []int{2*n + 1}, trueCells(back))
}

func TestClosure(t *testing.T) {
	f := NewFactory(2, 3)
	n := 4
	r := constantMatrix(f, Square(2, n), 0*n+1, 1*n+2, 2*n+3)
	closed := r.Closure()
	assert.Equal(t, []int{
		0*n + 1, 0*n + 2, 0*n + 3,
		1*n + 2, 1*n + 3,
		2*n + 3,
	}, trueCells(closed))

	// closure(r) = r + r.r + r.r.r + r.r.r.r over a 4-atom universe
	byPowers := r.Or(r.Dot(r)).Or(r.Dot(r).Dot(r)).Or(r.Dot(r).Dot(r).Dot(r))
	assert.Equal(t, True, closed.Eq(byPowers))

	reflexive := r.ReflexiveClosure()
	for i := 0; i < n; i++ {
		assert.Equal(t, True, reflexive.Get(i*n+i))
	}
}

func TestOverride(t *testing.T) {
	f := NewFactory(2, 3)
	n := 2
	low := constantMatrix(f, Square(2, n), 0*n+0, 1*n+1)
	high := constantMatrix(f, Square(2, n), 0*n+1)

	out := low.Override(high)
	assert.Equal(t, []int{0*n + 1, 1*n + 1}, trueCells(out), "row 0 replaced, row 1 kept")

	empty := f.Matrix(Square(2, n))
	assert.Equal(t, True, low.Override(empty).Eq(low))
}

func TestMultiplicities(t *testing.T) {
	f := NewFactory(4, 3)
	dims := Square(1, 4)

	empty := f.Matrix(dims)
	assert.Equal(t, False, empty.Some())
	assert.Equal(t, True, empty.None())
	assert.Equal(t, False, empty.One())
	assert.Equal(t, True, empty.Lone())

	one := constantMatrix(f, dims, 2)
	assert.Equal(t, True, one.Some())
	assert.Equal(t, True, one.One())
	assert.Equal(t, True, one.Lone())

	two := constantMatrix(f, dims, 1, 2)
	assert.Equal(t, True, two.Some())
	assert.Equal(t, False, two.One())
	assert.Equal(t, False, two.Lone())

	x := f.Matrix(dims)
	x.Set(0, f.Variable(1))
	assert.Equal(t, f.Variable(1), x.Some())
	assert.Equal(t, f.Variable(1), x.One())
}

func TestSubsetAndEq(t *testing.T) {
	f := NewFactory(2, 3)
	dims := Square(1, 3)
	a := constantMatrix(f, dims, 0)
	b := constantMatrix(f, dims, 0, 1)

	assert.Equal(t, True, a.Subset(b))
	assert.Equal(t, False, b.Subset(a))
	assert.Equal(t, False, a.Eq(b))
	assert.Equal(t, True, a.Eq(a.Clone()))
}

func TestChoice(t *testing.T) {
	f := NewFactory(2, 3)
	dims := Square(1, 2)
	a := constantMatrix(f, dims, 0)
	b := constantMatrix(f, dims, 1)
	cond := f.Variable(1)

	out := a.Choice(cond, b)
	assert.Equal(t, cond, out.Get(0))
	assert.Equal(t, f.Not(cond), out.Get(1))

	assert.Equal(t, True, a.Choice(True, b).Eq(a))
	assert.Equal(t, True, a.Choice(False, b).Eq(b))
}

func TestConstantMatrixHelper(t *testing.T) {
	f := NewFactory(0, 3)
	m := f.ConstantMatrix(Square(1, 4), ints.Range(1, 2))
	assert.Equal(t, []int{1, 2}, trueCells(m))
}
