package fol2sat

import (
	"fmt"

	"taipan/ast"
)

// SubstituteFormula replaces free occurrences of the variable with the
// expression, respecting shadowing by inner declarations.
func SubstituteFormula(f ast.Formula, from *ast.Variable, to ast.Expression) ast.Formula {
	switch f := f.(type) {
	case *ast.ConstantFormula:
		return f
	case ast.RelationPredicate:
		return f
	case *ast.ComparisonFormula:
		left := SubstituteExpression(f.Left(), from, to)
		right := SubstituteExpression(f.Right(), from, to)
		if f.Op() == ast.SubsetOp {
			return ast.In(left, right)
		}
		return ast.Equals(left, right)
	case *ast.MultiplicityFormula:
		e := SubstituteExpression(f.Expr(), from, to)
		switch f.Mult() {
		case ast.NoMult:
			return ast.No(e)
		case ast.SomeMult:
			return ast.Some(e)
		case ast.OneMult:
			return ast.One(e)
		default:
			return ast.Lone(e)
		}
	case *ast.QuantifiedFormula:
		decls, shadowed := substituteDecls(f.Decls(), from, to)
		body := f.Body()
		if !shadowed {
			body = SubstituteFormula(body, from, to)
		}
		if f.Quant() == ast.AllQuant {
			return ast.ForAll(decls, body)
		}
		return ast.Exists(decls, body)
	case *ast.BinaryFormula:
		left := SubstituteFormula(f.Left(), from, to)
		right := SubstituteFormula(f.Right(), from, to)
		switch f.Op() {
		case ast.AndOp:
			return ast.And(left, right)
		case ast.OrOp:
			return ast.Or(left, right)
		case ast.ImpliesOp:
			return ast.Implies(left, right)
		default:
			return ast.Iff(left, right)
		}
	case *ast.NotFormula:
		return ast.Not(SubstituteFormula(f.Body(), from, to))
	case *ast.IntComparisonFormula:
		left := SubstituteIntExpression(f.Left(), from, to)
		right := SubstituteIntExpression(f.Right(), from, to)
		switch f.Op() {
		case ast.IntEqOp:
			return ast.IntEq(left, right)
		case ast.IntLTOp:
			return ast.IntLT(left, right)
		case ast.IntLTEOp:
			return ast.IntLTE(left, right)
		case ast.IntGTOp:
			return ast.IntGT(left, right)
		default:
			return ast.IntGTE(left, right)
		}
	default:
		panic(fmt.Sprintf("fol2sat: cannot substitute in %T", f))
	}
}

// SubstituteExpression replaces free occurrences of the variable with
// the expression.
func SubstituteExpression(e ast.Expression, from *ast.Variable, to ast.Expression) ast.Expression {
	switch e := e.(type) {
	case *ast.Variable:
		if e == from {
			return to
		}
		return e
	case *ast.Relation, *ast.ConstantExpr:
		return e
	case *ast.BinaryExpr:
		left := SubstituteExpression(e.Left(), from, to)
		right := SubstituteExpression(e.Right(), from, to)
		switch e.Op() {
		case ast.UnionOp:
			return ast.Union(left, right)
		case ast.IntersectionOp:
			return ast.Intersection(left, right)
		case ast.DifferenceOp:
			return ast.Difference(left, right)
		case ast.JoinOp:
			return ast.Join(left, right)
		case ast.ProductOp:
			return ast.Product(left, right)
		default:
			return ast.Override(left, right)
		}
	case *ast.UnaryExpr:
		child := SubstituteExpression(e.Expr(), from, to)
		switch e.Op() {
		case ast.TransposeOp:
			return ast.Transpose(child)
		case ast.ClosureOp:
			return ast.Closure(child)
		default:
			return ast.ReflexiveClosure(child)
		}
	case *ast.Comprehension:
		decls, shadowed := substituteDecls(e.Decls(), from, to)
		body := e.Body()
		if !shadowed {
			body = SubstituteFormula(body, from, to)
		}
		return ast.NewComprehension(decls, body)
	case *ast.IfExpr:
		return ast.If(
			SubstituteFormula(e.Cond(), from, to),
			SubstituteExpression(e.Then(), from, to),
			SubstituteExpression(e.Else(), from, to))
	case *ast.ProjectExpr:
		cols := make([]ast.IntExpression, len(e.Columns()))
		for i, c := range e.Columns() {
			cols[i] = SubstituteIntExpression(c, from, to)
		}
		return ast.Project(SubstituteExpression(e.Expr(), from, to), cols...)
	case *ast.IntToExprCast:
		return ast.IntToExpr(SubstituteIntExpression(e.IntExpr(), from, to))
	default:
		panic(fmt.Sprintf("fol2sat: cannot substitute in %T", e))
	}
}

// SubstituteIntExpression replaces free occurrences of the variable
// with the expression.
func SubstituteIntExpression(e ast.IntExpression, from *ast.Variable, to ast.Expression) ast.IntExpression {
	switch e := e.(type) {
	case *ast.IntConstant:
		return e
	case *ast.Cardinality:
		return ast.Card(SubstituteExpression(e.Expr(), from, to))
	case *ast.BinaryIntExpr:
		left := SubstituteIntExpression(e.Left(), from, to)
		right := SubstituteIntExpression(e.Right(), from, to)
		if e.Op() == ast.PlusOp {
			return ast.Plus(left, right)
		}
		return ast.Minus(left, right)
	case *ast.IfIntExpr:
		return ast.IfInt(
			SubstituteFormula(e.Cond(), from, to),
			SubstituteIntExpression(e.Then(), from, to),
			SubstituteIntExpression(e.Else(), from, to))
	case *ast.ExprToIntCast:
		return ast.SumOf(SubstituteExpression(e.Expr(), from, to))
	case *ast.SumExpr:
		decls, shadowed := substituteDecls(e.Decls(), from, to)
		body := e.Body()
		if !shadowed {
			body = SubstituteIntExpression(body, from, to)
		}
		return ast.Sum(decls, body)
	default:
		panic(fmt.Sprintf("fol2sat: cannot substitute in %T", e))
	}
}

// substituteDecls substitutes in the declaration expressions and
// reports whether the variable is shadowed for the body. Declarations
// after a shadowing one are left untouched.
func substituteDecls(decls *ast.Decls, from *ast.Variable, to ast.Expression) (*ast.Decls, bool) {
	out := make([]*ast.Decl, decls.Len())
	shadowed := false
	for i, d := range decls.All() {
		expr := d.Expr()
		if !shadowed {
			expr = SubstituteExpression(expr, from, to)
		}
		out[i] = ast.Declare(d.Variable(), d.Mult(), expr)
		if d.Variable() == from {
			shadowed = true
		}
	}
	return ast.NewDecls(out...), shadowed
}
