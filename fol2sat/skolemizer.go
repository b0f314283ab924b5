package fol2sat

import (
	"taipan/ast"
	"taipan/instance"
)

// Skolemize replaces outermost positive existential quantifiers, up to
// depth levels deep, with fresh skolem relations added to the bounds.
// Only declarations whose expression has statically known bounds (a
// bounded relation or univ) and multiplicity one are eligible; a
// quantifier with any ineligible declaration is left unchanged, as is
// anything under negation or a universal quantifier.
func Skolemize(f ast.Formula, b *instance.Bounds, depth int) ast.Formula {
	if depth <= 0 {
		return f
	}
	return skolemize(f, b, depth)
}

func skolemize(f ast.Formula, b *instance.Bounds, depth int) ast.Formula {
	switch f := f.(type) {
	case *ast.BinaryFormula:
		if f.Op() == ast.AndOp {
			return ast.And(skolemize(f.Left(), b, depth), skolemize(f.Right(), b, depth))
		}
		return f
	case *ast.QuantifiedFormula:
		if f.Quant() != ast.SomeQuant || depth <= 0 {
			return f
		}
		uppers := make([]*instance.TupleSet, f.Decls().Len())
		for i, d := range f.Decls().All() {
			upper := declUpper(d, b)
			if upper == nil {
				return f
			}
			uppers[i] = upper
		}
		body := f.Body()
		var conjuncts []ast.Formula
		for i, d := range f.Decls().All() {
			sk := ast.NewRelation("$"+d.Variable().Name(), 1)
			b.BoundUpper(sk, uppers[i])
			conjuncts = append(conjuncts, ast.One(sk), ast.In(sk, d.Expr()))
			body = SubstituteFormula(body, d.Variable(), sk)
		}
		conjuncts = append(conjuncts, skolemize(body, b, depth-1))
		return ast.Conjunction(conjuncts...)
	default:
		return f
	}
}

// declUpper returns the statically known upper bound of a declaration's
// expression, or nil when the declaration is not skolemizable.
func declUpper(d *ast.Decl, b *instance.Bounds) *instance.TupleSet {
	if d.Mult() != ast.OneMult {
		return nil
	}
	switch e := d.Expr().(type) {
	case *ast.Relation:
		if e.Arity() != 1 || !b.Contains(e) {
			return nil
		}
		return b.Upper(e)
	case *ast.ConstantExpr:
		if e.Kind() != ast.UnivKind {
			return nil
		}
		return b.Universe().Factory().AllOf(1)
	default:
		return nil
	}
}
