package fol2sat

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"taipan/ast"
)

func TestSharingDetection(t *testing.T) {
	a := ast.NewRelation("A", 1)
	b := ast.NewRelation("B", 1)
	shared := ast.Union(a, b)
	root := ast.And(ast.Some(shared), ast.No(shared))

	ann := Annotate(root)
	assert.True(t, ann.Shared(shared))
	assert.False(t, ann.Shared(root))

	// leaves are not tracked as shared even with many parents
	assert.False(t, ann.Shared(a))
}

func TestRelationCollection(t *testing.T) {
	a := ast.NewRelation("A", 1)
	b := ast.NewRelation("B", 1)
	root := ast.And(ast.Some(a), ast.In(b, ast.Union(a, b)))

	ann := Annotate(root)
	assert.Equal(t, []*ast.Relation{a, b}, ann.Relations(), "first-visit order")
}

func TestFreeVariables(t *testing.T) {
	a := ast.NewRelation("A", 1)
	r := ast.NewRelation("r", 2)
	x, y := ast.NewVariable("x"), ast.NewVariable("y")

	body := ast.In(ast.Join(x, r), ast.Join(y, r))
	inner := ast.Exists(ast.NewDecls(ast.OneOf(y, a)), body)
	outer := ast.ForAll(ast.NewDecls(ast.OneOf(x, a)), inner)

	ann := Annotate(outer)
	assert.Equal(t, []*ast.Variable{x, y}, ann.FreeVariables(body))
	assert.Equal(t, []*ast.Variable{x}, ann.FreeVariables(inner))
	assert.Empty(t, ann.FreeVariables(outer))
}

func TestTopConjuncts(t *testing.T) {
	a := ast.Some(ast.NewRelation("A", 1))
	b := ast.Some(ast.NewRelation("B", 1))
	c := ast.Some(ast.NewRelation("C", 1))

	conjuncts := TopConjuncts(ast.And(ast.And(a, b), c))
	assert.Equal(t, []ast.Formula{a, b, c}, conjuncts)

	assert.Equal(t, []ast.Formula{a}, TopConjuncts(a))
}

func TestPredicates(t *testing.T) {
	r := ast.NewRelation("r", 2)
	d := ast.NewRelation("D", 1)
	pred := ast.Acyclic(r)
	root := ast.And(pred, ast.Some(d))

	ann := Annotate(root)
	preds := ann.Predicates()
	assert.Len(t, preds, 1)
	assert.Equal(t, r, preds[0].Relation())
}
