// Package parser provides a compact textual notation for formulas:
//
//	all p : Pigeon | one p . assign
//	some (r & iden)
//	# r = 3
//	all x : A | some x : B | x in x
//
// Relation names are resolved against a caller-supplied table;
// quantified variables shadow relations and outer variables of the
// same name.
package parser

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"

	"taipan/ast"
)

type srcFormula struct {
	Iff *srcIff `@@`
}

type srcIff struct {
	Left *srcImplies   `@@`
	Rest []*srcImplies `( "<=>" @@ )*`
}

type srcImplies struct {
	Left  *srcOr      `@@`
	Right *srcImplies `( "=>" @@ )?`
}

type srcOr struct {
	Left *srcAnd   `@@`
	Rest []*srcAnd `( "||" @@ )*`
}

type srcAnd struct {
	Left *srcUnaryF   `@@`
	Rest []*srcUnaryF `( "&&" @@ )*`
}

type srcUnaryF struct {
	Not     *srcUnaryF  `  "!" @@`
	Quant   *srcQuant   `| @@`
	Mult    *srcMultF   `| @@`
	IntComp *srcIntComp `| @@`
	Comp    *srcComp    `| @@`
	True    bool        `| @"true"`
	False   bool        `| @"false"`
	Group   *srcFormula `| "(" @@ ")"`
}

type srcQuant struct {
	Quant string      `@("all" | "some")`
	Var   string      `@Ident ":"`
	Expr  *srcExpr    `@@ "|"`
	Body  *srcFormula `@@`
}

type srcMultF struct {
	Mult string   `@("no" | "some" | "one" | "lone")`
	Expr *srcExpr `@@`
}

type srcIntComp struct {
	Left  *srcIntExpr `@@`
	Op    string      `@("=" | "<" | "<=" | ">" | ">=")`
	Right *srcIntExpr `@@`
}

type srcIntExpr struct {
	Left *srcIntTerm   `@@`
	Rest []*srcIntTail `@@*`
}

type srcIntTail struct {
	Op   string      `@("+" | "-")`
	Term *srcIntTerm `@@`
}

type srcIntTerm struct {
	Card *srcJoin `  "#" @@`
	Num  *int     `| @Int`
}

type srcComp struct {
	Left  *srcExpr `@@`
	Op    string   `@("in" | "=" | "!=")`
	Right *srcExpr `@@`
}

type srcExpr struct {
	Left *srcInter      `@@`
	Rest []*srcExprTail `@@*`
}

type srcExprTail struct {
	Op   string    `@("+" | "-" | "++")`
	Term *srcInter `@@`
}

type srcInter struct {
	Left *srcProd   `@@`
	Rest []*srcProd `( "&" @@ )*`
}

type srcProd struct {
	Left *srcJoin   `@@`
	Rest []*srcJoin `( "->" @@ )*`
}

type srcJoin struct {
	Left *srcUnaryE   `@@`
	Rest []*srcUnaryE `( "." @@ )*`
}

type srcUnaryE struct {
	Op   *string  `@("~" | "^" | "*")?`
	Base *srcBase `@@`
}

type srcBase struct {
	Univ  bool     `  @"univ"`
	Iden  bool     `| @"iden"`
	None  bool     `| @"none"`
	Name  *string  `| @Ident`
	Group *srcExpr `| "(" @@ ")"`
}

var formulaLexer = lexer.MustSimple([]lexer.SimpleRule{
	{"Whitespace", `\s+`},
	{"Int", `\d+`},
	{"Ident", `[A-Za-z_][A-Za-z0-9_$]*`},
	{"Op", `<=>|=>|<=|>=|!=|&&|\|\||->|\+\+|[#=<>!+\-&.~^*():|,]`},
})

var formulaParser = participle.MustBuild[srcFormula](
	participle.Lexer(formulaLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(8),
)

// Parser resolves names against a relation table.
type Parser struct {
	relations map[string]*ast.Relation
}

// New returns a parser over the given relations.
func New(relations map[string]*ast.Relation) *Parser {
	return &Parser{relations: relations}
}

// ParseFormula parses src into a formula.
func (p *Parser) ParseFormula(src string) (ast.Formula, error) {
	parsed, err := formulaParser.ParseString("", src)
	if err != nil {
		return nil, err
	}
	return p.formula(parsed, nil)
}

// scope is a linked list of variable bindings, innermost first.
type scope struct {
	name     string
	variable *ast.Variable
	parent   *scope
}

func (s *scope) lookup(name string) *ast.Variable {
	for e := s; e != nil; e = e.parent {
		if e.name == name {
			return e.variable
		}
	}
	return nil
}

func (p *Parser) formula(f *srcFormula, sc *scope) (ast.Formula, error) {
	return p.iff(f.Iff, sc)
}

func (p *Parser) iff(f *srcIff, sc *scope) (ast.Formula, error) {
	out, err := p.implies(f.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Rest {
		right, err := p.implies(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.Iff(out, right)
	}
	return out, nil
}

func (p *Parser) implies(f *srcImplies, sc *scope) (ast.Formula, error) {
	left, err := p.or(f.Left, sc)
	if err != nil {
		return nil, err
	}
	if f.Right == nil {
		return left, nil
	}
	right, err := p.implies(f.Right, sc)
	if err != nil {
		return nil, err
	}
	return ast.Implies(left, right), nil
}

func (p *Parser) or(f *srcOr, sc *scope) (ast.Formula, error) {
	out, err := p.and(f.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Rest {
		right, err := p.and(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.Or(out, right)
	}
	return out, nil
}

func (p *Parser) and(f *srcAnd, sc *scope) (ast.Formula, error) {
	out, err := p.unaryF(f.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range f.Rest {
		right, err := p.unaryF(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.And(out, right)
	}
	return out, nil
}

func (p *Parser) unaryF(f *srcUnaryF, sc *scope) (ast.Formula, error) {
	switch {
	case f.Not != nil:
		inner, err := p.unaryF(f.Not, sc)
		if err != nil {
			return nil, err
		}
		return ast.Not(inner), nil
	case f.Quant != nil:
		return p.quant(f.Quant, sc)
	case f.Mult != nil:
		e, err := p.expr(f.Mult.Expr, sc)
		if err != nil {
			return nil, err
		}
		switch f.Mult.Mult {
		case "no":
			return ast.No(e), nil
		case "some":
			return ast.Some(e), nil
		case "one":
			return ast.One(e), nil
		default:
			return ast.Lone(e), nil
		}
	case f.IntComp != nil:
		return p.intComp(f.IntComp, sc)
	case f.Comp != nil:
		left, err := p.expr(f.Comp.Left, sc)
		if err != nil {
			return nil, err
		}
		right, err := p.expr(f.Comp.Right, sc)
		if err != nil {
			return nil, err
		}
		switch f.Comp.Op {
		case "in":
			return ast.In(left, right), nil
		case "=":
			return ast.Equals(left, right), nil
		default:
			return ast.Not(ast.Equals(left, right)), nil
		}
	case f.True:
		return ast.True, nil
	case f.False:
		return ast.False, nil
	default:
		return p.formula(f.Group, sc)
	}
}

func (p *Parser) quant(q *srcQuant, sc *scope) (ast.Formula, error) {
	bound, err := p.expr(q.Expr, sc)
	if err != nil {
		return nil, err
	}
	v := ast.NewVariable(q.Var)
	inner := &scope{name: q.Var, variable: v, parent: sc}
	body, err := p.formula(q.Body, inner)
	if err != nil {
		return nil, err
	}
	decls := ast.NewDecls(ast.OneOf(v, bound))
	if q.Quant == "all" {
		return ast.ForAll(decls, body), nil
	}
	return ast.Exists(decls, body), nil
}

func (p *Parser) intComp(c *srcIntComp, sc *scope) (ast.Formula, error) {
	left, err := p.intExpr(c.Left, sc)
	if err != nil {
		return nil, err
	}
	right, err := p.intExpr(c.Right, sc)
	if err != nil {
		return nil, err
	}
	switch c.Op {
	case "=":
		return ast.IntEq(left, right), nil
	case "<":
		return ast.IntLT(left, right), nil
	case "<=":
		return ast.IntLTE(left, right), nil
	case ">":
		return ast.IntGT(left, right), nil
	default:
		return ast.IntGTE(left, right), nil
	}
}

func (p *Parser) intExpr(e *srcIntExpr, sc *scope) (ast.IntExpression, error) {
	out, err := p.intTerm(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Rest {
		term, err := p.intTerm(t.Term, sc)
		if err != nil {
			return nil, err
		}
		if t.Op == "+" {
			out = ast.Plus(out, term)
		} else {
			out = ast.Minus(out, term)
		}
	}
	return out, nil
}

func (p *Parser) intTerm(t *srcIntTerm, sc *scope) (ast.IntExpression, error) {
	if t.Card != nil {
		e, err := p.join(t.Card, sc)
		if err != nil {
			return nil, err
		}
		return ast.Card(e), nil
	}
	return ast.IntConst(*t.Num), nil
}

func (p *Parser) expr(e *srcExpr, sc *scope) (ast.Expression, error) {
	out, err := p.inter(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, t := range e.Rest {
		term, err := p.inter(t.Term, sc)
		if err != nil {
			return nil, err
		}
		switch t.Op {
		case "+":
			out = ast.Union(out, term)
		case "-":
			out = ast.Difference(out, term)
		default:
			out = ast.Override(out, term)
		}
	}
	return out, nil
}

func (p *Parser) inter(e *srcInter, sc *scope) (ast.Expression, error) {
	out, err := p.prod(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		term, err := p.prod(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.Intersection(out, term)
	}
	return out, nil
}

func (p *Parser) prod(e *srcProd, sc *scope) (ast.Expression, error) {
	out, err := p.join(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		term, err := p.join(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.Product(out, term)
	}
	return out, nil
}

func (p *Parser) join(e *srcJoin, sc *scope) (ast.Expression, error) {
	out, err := p.unaryE(e.Left, sc)
	if err != nil {
		return nil, err
	}
	for _, r := range e.Rest {
		term, err := p.unaryE(r, sc)
		if err != nil {
			return nil, err
		}
		out = ast.Join(out, term)
	}
	return out, nil
}

func (p *Parser) unaryE(e *srcUnaryE, sc *scope) (ast.Expression, error) {
	base, err := p.base(e.Base, sc)
	if err != nil {
		return nil, err
	}
	if e.Op == nil {
		return base, nil
	}
	switch *e.Op {
	case "~":
		return ast.Transpose(base), nil
	case "^":
		return ast.Closure(base), nil
	default:
		return ast.ReflexiveClosure(base), nil
	}
}

func (p *Parser) base(b *srcBase, sc *scope) (ast.Expression, error) {
	switch {
	case b.Univ:
		return ast.Univ, nil
	case b.Iden:
		return ast.Iden, nil
	case b.None:
		return ast.None, nil
	case b.Name != nil:
		if v := sc.lookup(*b.Name); v != nil {
			return v, nil
		}
		if r, ok := p.relations[*b.Name]; ok {
			return r, nil
		}
		return nil, fmt.Errorf("parser: unknown name %q", *b.Name)
	default:
		return p.expr(b.Group, sc)
	}
}
