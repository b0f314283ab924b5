package fol2sat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taipan/ast"
	"taipan/circuit"
	"taipan/instance"
)

func TestSkolemizeOuterExistential(t *testing.T) {
	u := instance.NewUniverse("a0", "a1")
	f := u.Factory()
	a := ast.NewRelation("A", 1)
	b := instance.NewBounds(u)
	b.BoundExactly(a, f.AllOf(1))

	x := ast.NewVariable("x")
	some := ast.Exists(ast.NewDecls(ast.OneOf(x, a)), ast.In(x, a))

	out := Skolemize(some, b, 1)
	assert.NotEqual(t, some, out, "quantifier replaced")
	assert.Len(t, b.Relations(), 2, "skolem relation added to the bounds")

	sk := b.Relations()[1]
	assert.Equal(t, "$x", sk.Name())
	assert.Equal(t, 2, b.Upper(sk).Len(), "upper bound copied from the declaration")

	// no quantifier survives in the skolemized formula
	for _, c := range TopConjuncts(out) {
		_, quantified := c.(*ast.QuantifiedFormula)
		assert.False(t, quantified)
	}
}

func TestSkolemizeLeavesUniversals(t *testing.T) {
	u := instance.NewUniverse("a0")
	f := u.Factory()
	a := ast.NewRelation("A", 1)
	b := instance.NewBounds(u)
	b.BoundExactly(a, f.AllOf(1))

	x := ast.NewVariable("x")
	all := ast.ForAll(ast.NewDecls(ast.OneOf(x, a)), ast.In(x, a))
	assert.Equal(t, all, Skolemize(all, b, 3))
	assert.Len(t, b.Relations(), 1)
}

func TestSkolemizeDepthZero(t *testing.T) {
	u := instance.NewUniverse("a0")
	f := u.Factory()
	a := ast.NewRelation("A", 1)
	b := instance.NewBounds(u)
	b.BoundExactly(a, f.AllOf(1))

	x := ast.NewVariable("x")
	some := ast.Exists(ast.NewDecls(ast.OneOf(x, a)), ast.In(x, a))
	assert.Equal(t, some, Skolemize(some, b, 0))
}

func TestSkolemizePreservesSatisfiability(t *testing.T) {
	u := instance.NewUniverse("a0", "a1")
	f := u.Factory()
	a := ast.NewRelation("A", 1)
	b := instance.NewBounds(u)
	b.BoundExactly(a, f.AllOf(1))

	x := ast.NewVariable("x")
	some := ast.Exists(ast.NewDecls(ast.OneOf(x, a)), ast.In(x, a))
	out := Skolemize(some, b, 1)

	tr := translate(t, out, b, false)
	assert.NotEqual(t, circuit.False, tr.Root)
}

func TestSubstitutionShadowing(t *testing.T) {
	a := ast.NewRelation("A", 1)
	x := ast.NewVariable("x")
	inner := ast.Exists(ast.NewDecls(ast.OneOf(x, a)), ast.In(x, x))
	outer := ast.In(x, a)
	formula := ast.And(outer, inner)

	sk := ast.NewRelation("$x", 1)
	out := SubstituteFormula(formula, x, sk).(*ast.BinaryFormula)

	replaced := out.Left().(*ast.ComparisonFormula)
	assert.Equal(t, sk, replaced.Left(), "free occurrence replaced")

	kept := out.Right().(*ast.QuantifiedFormula)
	body := kept.Body().(*ast.ComparisonFormula)
	assert.Equal(t, x, body.Left(), "bound occurrence untouched")
}
