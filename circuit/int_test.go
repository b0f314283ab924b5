package circuit

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIntConstRoundTrip(t *testing.T) {
	f := NewFactory(0, 3)
	for _, v := range []int{0, 1, 3, 7, -1, -8, 100} {
		assert.Equal(t, v, f.IntConst(v).ConstValue(), "twos complement %d", v)
	}

	f.IntEncoding = Unary
	for _, v := range []int{0, 1, 4} {
		assert.Equal(t, v, f.IntConst(v).ConstValue(), "unary %d", v)
	}
	assert.Panics(t, func() { f.IntConst(-1) }, "unary cannot encode negatives")
}

func TestIntArithmetic(t *testing.T) {
	f := NewFactory(0, 3)
	cases := []struct{ a, b int }{
		{0, 0}, {1, 2}, {5, 9}, {3, -4}, {-2, -3},
	}
	for _, tc := range cases {
		sum := f.IntConst(tc.a).Plus(f.IntConst(tc.b))
		assert.Equal(t, tc.a+tc.b, sum.ConstValue(), "%d + %d", tc.a, tc.b)
		diff := f.IntConst(tc.a).Minus(f.IntConst(tc.b))
		assert.Equal(t, tc.a-tc.b, diff.ConstValue(), "%d - %d", tc.a, tc.b)
	}

	f.IntEncoding = Unary
	sum := f.IntConst(2).Plus(f.IntConst(3))
	assert.Equal(t, 5, sum.ConstValue())
	assert.Panics(t, func() { f.IntConst(3).Minus(f.IntConst(1)) }, "unary subtraction")
}

func TestIntComparisons(t *testing.T) {
	for _, enc := range []Encoding{TwosComplement, Unary} {
		f := NewFactory(0, 3)
		f.IntEncoding = enc
		values := []int{0, 1, 2, 5}
		if enc == TwosComplement {
			values = append(values, -3)
		}
		for _, a := range values {
			for _, b := range values {
				ia, ib := f.IntConst(a), f.IntConst(b)
				name := fmt.Sprintf("enc=%d %d vs %d", enc, a, b)
				assert.Equal(t, a == b, ia.Eq(ib) == True, name)
				assert.Equal(t, a < b, ia.LT(ib) == True, name)
				assert.Equal(t, a <= b, ia.LTE(ib) == True, name)
				assert.Equal(t, a > b, ia.GT(ib) == True, name)
				assert.Equal(t, a >= b, ia.GTE(ib) == True, name)
			}
		}
	}
}

func TestIntChoice(t *testing.T) {
	f := NewFactory(1, 3)
	three, five := f.IntConst(3), f.IntConst(5)

	assert.Equal(t, 3, three.Choice(True, five).ConstValue())
	assert.Equal(t, 5, three.Choice(False, five).ConstValue())

	cond := f.Variable(1)
	symbolic := three.Choice(cond, five)
	assert.Equal(t, cond, symbolic.Eq(three), "equals 3 exactly when cond holds")
}

func TestCardinality(t *testing.T) {
	for _, enc := range []Encoding{TwosComplement, Unary} {
		f := NewFactory(2, 3)
		f.IntEncoding = enc
		m := f.Matrix(Square(1, 4))
		m.Set(0, True)
		m.Set(1, True)
		m.Set(2, True)

		card := m.Cardinality()
		assert.Equal(t, 3, card.ConstValue(), "enc=%d", enc)
		assert.Equal(t, True, card.Eq(f.IntConst(3)))
		assert.Equal(t, False, card.LT(f.IntConst(3)))

		empty := f.Matrix(Square(1, 4))
		assert.Equal(t, 0, empty.Cardinality().ConstValue())
	}
}

func TestSymbolicCardinality(t *testing.T) {
	f := NewFactory(2, 3)
	m := f.Matrix(Square(1, 4))
	m.Set(0, True)
	m.Set(1, f.Variable(1))

	card := m.Cardinality()
	// the count is 2 exactly when the variable cell holds
	assert.Equal(t, f.Variable(1), card.Eq(f.IntConst(2)))
}
